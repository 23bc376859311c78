package api

// ErrorResponse is returned for any failed command.
type ErrorResponse struct {
	Error string `json:"error"`
}
