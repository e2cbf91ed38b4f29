package server

import (
	"fmt"
	"net/http"

	"github.com/janelia-flyem/ngportal/portal"
)

// BadRequest writes an error message with status 400 and logs it.
func BadRequest(w http.ResponseWriter, r *http.Request, format string, args ...interface{}) {
	httpError(w, r, http.StatusBadRequest, format, args...)
}

// NotFound writes an error message with status 404 and logs it.
func NotFound(w http.ResponseWriter, r *http.Request, format string, args ...interface{}) {
	httpError(w, r, http.StatusNotFound, format, args...)
}

// ServerError writes an error message with status 500 and logs it.
func ServerError(w http.ResponseWriter, r *http.Request, format string, args ...interface{}) {
	httpError(w, r, http.StatusInternalServerError, format, args...)
}

func httpError(w http.ResponseWriter, r *http.Request, status int, format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	if status >= http.StatusInternalServerError {
		portal.Errorf("%s %s: %s\n", r.Method, r.URL.Path, msg)
	} else {
		portal.Warningf("%s %s (%d): %s\n", r.Method, r.URL.Path, status, msg)
	}
	http.Error(w, msg, status)
}
