package server

import (
	"fmt"
	"net/http"

	"github.com/greut/iiif-viewer/iiif"
)

// HTTPError represents a HTTP error to be shown to the user.
type HTTPError struct {
	StatusCode int
	Message    string
}

// Error formats the HTTPError message.
func (e HTTPError) Error() string {
	return fmt.Sprintf("%d (%s) %s", e.StatusCode, http.StatusText(e.StatusCode), e.Message)
}

// toHTTPError maps domain errors onto a status code.
func toHTTPError(err error) HTTPError {
	switch e := err.(type) {
	case HTTPError:
		return e
	case iiif.UnsupportedTypeError:
		return HTTPError{http.StatusUnprocessableEntity, e.Error()}
	case iiif.FragmentError:
		return HTTPError{http.StatusBadRequest, e.Error()}
	}
	return HTTPError{http.StatusBadRequest, err.Error()}
}

func writeError(w http.ResponseWriter, err error) {
	e := toHTTPError(err)
	http.Error(w, e.Error(), e.StatusCode)
}
