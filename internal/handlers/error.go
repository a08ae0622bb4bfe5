package handlers

// ErrorResponse is the standard API error body (message only).
type ErrorResponse struct {
	Message string `json:"message"`
}

// Messages surfaced to callers. Internal failures carry no detail; the full
// error goes to server-side logs only.
const (
	msgUnexpected        = "Unexpected error, please try again"
	msgBadAuthCode       = "Bad request"
	msgPermissionMissing = "Permission not found for given channel_ID"
)
