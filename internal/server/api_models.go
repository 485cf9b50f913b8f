package server

// Error messages returned by PUT /.
const (
	msgBadJSON         = "Bad JSON in request body"
	msgInvalidInstance = "The OLD provided in the update request was not valid"
)

// ErrorResponse is a uniform error payload returned by the API.
type ErrorResponse struct {
	Error string `json:"error" example:"Bad JSON in request body"`
}
