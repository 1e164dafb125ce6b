// Package response defines the JSON bodies shared by every service's handlers.
package response

// ErrorResponse is the body returned with every 4xx/5xx status.
type ErrorResponse struct {
	Error string `json:"error"`
}

// MessageResponse is a plain acknowledgement body.
type MessageResponse struct {
	Message string `json:"message"`
}

// InternalError is the message shown for unexpected failures; details are only logged.
const InternalError = "internal server error"
