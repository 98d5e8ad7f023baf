package httputils

// RequestError is the JSON error envelope of every failed request
type RequestError struct {
	Error string `json:"error"`
}
