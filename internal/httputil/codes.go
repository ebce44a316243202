package httputil

// Machine-readable error codes returned alongside error messages.
const (
	CodeInvalidRequestBody  = "invalid_request_body"
	CodeEmailRequired       = "email_required"
	CodeInvalidEmailFormat  = "invalid_email_format"
	CodePasswordRequired    = "password_required"
	CodePasswordTooShort    = "password_too_short"
	CodeNameRequired        = "name_required"
	CodeEmailAlreadyExists  = "email_already_exists"
	CodeInvalidCredentials  = "invalid_credentials"
	CodeEmailNotVerified    = "email_not_verified"
	CodeAccountNotFound     = "account_not_found"
	CodeInvalidToken        = "invalid_token"
	CodeTokenExpired        = "token_expired"
	CodeInvalidAuthHeader   = "invalid_auth_header"
	CodeMissingAuth         = "missing_auth"
	CodeInvalidTokenSubject = "invalid_token_subject"
	CodeInternalError       = "internal_error"
)
