package middleware

// Context keys used to store request metadata on echo.Context.
const (
	ContextKeySubject   = "subject"
	ContextKeyRole      = "role"
	ContextKeyRequestID = "request_id"
)
