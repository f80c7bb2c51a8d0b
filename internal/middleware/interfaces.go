package middleware

import "net/http"

// ErrorResponder writes an error as a problem response.
type ErrorResponder interface {
	HandleError(w http.ResponseWriter, r *http.Request, err error)
}
