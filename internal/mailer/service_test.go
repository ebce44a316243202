package mailer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRenderVerificationTemplate(t *testing.T) {
	t.Parallel()

	body, err := renderTemplate(verificationTemplate, templateData{
		Name: "Ada",
		Link: "http://localhost:3000/verify?token=abc123",
	})
	require.NoError(t, err)

	assert.Contains(t, body, "Ada")
	assert.Contains(t, body, "http://localhost:3000/verify?token=abc123")
	assert.Contains(t, body, "Verify Email Address")
}

func TestRenderPasswordResetTemplate(t *testing.T) {
	t.Parallel()

	body, err := renderTemplate(passwordResetTemplate, templateData{
		Name: "Ada",
		Link: "http://localhost:3000/reset-password?token=xyz789",
	})
	require.NoError(t, err)

	assert.Contains(t, body, "Ada")
	assert.Contains(t, body, "http://localhost:3000/reset-password?token=xyz789")
	assert.Contains(t, body, "Reset Password")
}

func TestRenderTemplate_NoName(t *testing.T) {
	t.Parallel()

	body, err := renderTemplate(verificationTemplate, templateData{
		Link: "http://localhost:3000/verify?token=abc123",
	})
	require.NoError(t, err)

	assert.Contains(t, body, "Welcome!")
}
