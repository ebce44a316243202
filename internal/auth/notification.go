package auth

import "context"

// NotificationKind identifies which email the mail collaborator should
// dispatch.
type NotificationKind string

const (
	NotificationVerification  NotificationKind = "verification"
	NotificationPasswordReset NotificationKind = "password_reset"
)

// Notification is the record handed to the mail-dispatch side channel.
// The service only builds it; publishing is the transport layer's job, and
// delivery failures never fail the originating request.
type Notification struct {
	To          string           `json:"to"`
	Kind        NotificationKind `json:"kind"`
	Token       string           `json:"token"`
	DisplayName string           `json:"display_name"`
}

// Publisher forwards notification records to the mail collaborator.
// Implemented by notify.RedisPublisher.
type Publisher interface {
	Publish(ctx context.Context, n Notification) error
}
