package http_test

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/carcatalog/catalog/kit/platform/errors"
	kithttp "github.com/carcatalog/catalog/kit/transport/http"
)

func TestEncodeError(t *testing.T) {
	ctx := context.TODO()

	w := httptest.NewRecorder()

	kithttp.ErrorHandler(0).HandleHTTPError(ctx, nil, w)

	if w.Code != 200 {
		t.Errorf("expected status code 200, got: %d", w.Code)
	}
}

func TestEncodeErrorWithError(t *testing.T) {
	ctx := context.TODO()
	err := &errors.Error{
		Code: errors.EInternal,
		Msg:  "an error occurred",
		Err:  fmt.Errorf("there's an error here, be aware"),
	}

	w := httptest.NewRecorder()

	kithttp.ErrorHandler(0).HandleHTTPError(ctx, err, w)

	if w.Code != 500 {
		t.Errorf("expected status code 500, got: %d", w.Code)
	}

	errHeader := w.Header().Get("X-Platform-Error-Code")
	if errHeader != errors.EInternal {
		t.Errorf("expected X-Platform-Error-Code: %s, got: %s", errors.EInternal, errHeader)
	}

	// only the message crosses the wire; the wrapped cause stays server side.
	pe := kithttp.CheckError(w.Result()).(*errors.Error)
	if want, got := errors.EInternal, pe.Code; want != got {
		t.Errorf("unexpected code -want/+got:\n\t- %q\n\t+ %q", want, got)
	}
	if want, got := "an error occurred", pe.Msg; want != got {
		t.Errorf("unexpected message -want/+got:\n\t- %q\n\t+ %q", want, got)
	}
}

func TestErrorCodeToStatusCode(t *testing.T) {
	tests := []struct {
		code string
		want int
	}{
		{errors.EInvalid, http.StatusBadRequest},
		{errors.EEmptyValue, http.StatusBadRequest},
		{errors.EUnauthorized, http.StatusUnauthorized},
		{errors.EForbidden, http.StatusForbidden},
		{errors.ENotFound, http.StatusNotFound},
		{errors.EMethodNotAllowed, http.StatusMethodNotAllowed},
		{errors.EConflict, http.StatusConflict},
		{errors.ETooLarge, http.StatusRequestEntityTooLarge},
		{errors.EUnprocessableEntity, http.StatusUnprocessableEntity},
		{errors.ETooManyRequests, http.StatusTooManyRequests},
		{errors.EInternal, http.StatusInternalServerError},
		{errors.ENotImplemented, http.StatusNotImplemented},
		{errors.EUnavailable, http.StatusServiceUnavailable},
		{"something else", http.StatusBadRequest},
	}
	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			if got := kithttp.ErrorCodeToStatusCode(tt.code); got != tt.want {
				t.Errorf("ErrorCodeToStatusCode(%q) = %d, want %d", tt.code, got, tt.want)
			}
		})
	}
}
