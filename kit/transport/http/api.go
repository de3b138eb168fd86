package http

import (
	"compress/gzip"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/carcatalog/catalog/kit/platform/errors"
	"github.com/carcatalog/catalog/logger"
	"go.uber.org/zap"
)

// API provides a consolidated means for handling API interface concerns.
// Concerns such as decoding/encoding request and response bodies as well
// as adding headers for content type and content encoding.
type API struct {
	logger *zap.Logger

	prettyJSON bool
	encodeFn   func(w io.Writer, v interface{}) error
	errFn      func(err error) (interface{}, int, error)
}

// APIOptFn is a functional option for setting fields on the API type.
type APIOptFn func(*API)

// WithLog sets the logger.
func WithLog(logger *zap.Logger) APIOptFn {
	return func(api *API) {
		api.logger = logger
	}
}

// WithPrettyJSON sets the json encoder to marshal indent or not.
func WithPrettyJSON(b bool) APIOptFn {
	return func(api *API) {
		api.prettyJSON = b
	}
}

// NewAPI creates a new API type.
func NewAPI(opts ...APIOptFn) *API {
	api := API{
		logger:     zap.NewNop(),
		prettyJSON: true,
		errFn: func(err error) (interface{}, int, error) {
			code := errors.ErrorCode(err)
			return ErrBody{
				Code: code,
				Msg:  errors.ErrorMessage(err),
			}, ErrorCodeToStatusCode(code), nil
		},
	}
	for _, o := range opts {
		o(&api)
	}
	return &api
}

// DecodeJSON decodes reader with json.
func (a *API) DecodeJSON(r io.Reader, v interface{}) error {
	return a.decode(r, v, func(r io.Reader) decoder {
		dec := json.NewDecoder(r)
		dec.DisallowUnknownFields()
		return dec
	})
}

type decoder interface {
	Decode(interface{}) error
}

func (a *API) decode(r io.Reader, v interface{}, fn func(io.Reader) decoder) error {
	var err error
	defer func() {
		if rc, ok := r.(io.ReadCloser); ok {
			if cerr := rc.Close(); err == nil && cerr != nil {
				err = cerr
			}
		}
	}()

	if err = fn(r).Decode(v); err != nil {
		return &errors.Error{
			Code: errors.EInvalid,
			Msg:  "failed to decode request body",
			Err:  err,
		}
	}

	if vv, ok := v.(interface{ OK() error }); ok {
		if err = vv.OK(); err != nil {
			return err
		}
	}

	return nil
}

// GzipReader returns the request body, decompressed when the request
// declares gzip content encoding.
func GzipReader(r *http.Request) (io.ReadCloser, error) {
	if r.Header.Get("Content-Encoding") != "gzip" {
		return r.Body, nil
	}
	gr, err := gzip.NewReader(r.Body)
	if err != nil {
		return nil, &errors.Error{
			Code: errors.EInvalid,
			Msg:  "failed to read gzip request body",
			Err:  err,
		}
	}
	return gr, nil
}

// Respond writes to the response writer, handling all errors in writing.
// A 204 response has no body.
func (a *API) Respond(w http.ResponseWriter, r *http.Request, status int, v interface{}) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	var writer io.WriteCloser = noopCloser{Writer: w}
	// we'll double close to make sure its always closed even
	// on issues before the write
	defer writer.Close()

	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(status)

	enc := a.encodeFn
	if enc == nil {
		enc = func(w io.Writer, v interface{}) error {
			e := json.NewEncoder(w)
			if a.prettyJSON {
				e.SetIndent("", "\t")
			}
			return e.Encode(v)
		}
	}
	if err := enc(writer, v); err != nil {
		a.logErr(r, "failed to encode response", err)
		return
	}

	if err := writer.Close(); err != nil {
		a.logErr(r, "failed to write response", err)
	}
}

// Err is used for writing an error to the response.
func (a *API) Err(w http.ResponseWriter, r *http.Request, err error) {
	if err == nil {
		return
	}

	a.logErr(r, "api error encountered", err)

	v, status, err := a.errFn(err)
	if err != nil {
		a.logErr(r, "failed to write err to response writer", err)
		a.Respond(w, r, http.StatusInternalServerError, ErrBody{
			Code: "internal error",
			Msg:  "an unexpected error occurred",
		})
		return
	}

	if eb, ok := v.(ErrBody); ok {
		w.Header().Set(PlatformErrorCodeHeader, eb.Code)
	}

	a.Respond(w, r, status, v)
}

// logErr prefers the request scoped logger so entries carry the request id.
func (a *API) logErr(r *http.Request, msg string, err error) {
	if a == nil || err == nil {
		return
	}
	log := a.logger
	if r != nil {
		log = logger.FromContextOr(r.Context(), log)
	}
	if log == nil {
		return
	}

	if code := errors.ErrorCode(err); code != errors.EInternal {
		log.Debug(msg, zap.String("code", code), zap.Error(err))
		return
	}

	log.Error(msg, zap.Error(err))
}

type noopCloser struct {
	io.Writer
}

func (n noopCloser) Close() error {
	return nil
}

// ErrBody is an err response body.
type ErrBody struct {
	Code string `json:"code"`
	Msg  string `json:"message"`
}

// ErrorHandler writes err the way API.Err does, for callers without an API.
type ErrorHandler int

// HandleHTTPError encodes err with the appropriate status code and sets the
// X-Platform-Error-Code header on the response.
func (h ErrorHandler) HandleHTTPError(ctx context.Context, err error, w http.ResponseWriter) {
	if err == nil {
		return
	}

	code := errors.ErrorCode(err)
	w.Header().Set(PlatformErrorCodeHeader, code)
	w.Header().Set("Content-Type", "application/json; charset=utf-8")
	w.WriteHeader(ErrorCodeToStatusCode(code))
	b, _ := json.Marshal(ErrBody{
		Code: code,
		Msg:  errors.ErrorMessage(err),
	})
	_, _ = w.Write(b)
}

var _ errors.HTTPErrorHandler = ErrorHandler(0)

// CheckError reads the http.Response and returns an error if one exists.
// It will automatically recognize the errors returned by the API and
// decode them into an *errors.Error.
func CheckError(resp *http.Response) error {
	switch resp.StatusCode / 100 {
	case 4, 5:
		// We will attempt to parse this error outside of this block.
	case 2:
		return nil
	default:
		return fmt.Errorf("unexpected status code: %d %s", resp.StatusCode, resp.Status)
	}

	var eb ErrBody
	if err := json.NewDecoder(resp.Body).Decode(&eb); err != nil {
		return &errors.Error{
			Code: errors.EInternal,
			Msg:  fmt.Sprintf("failed to decode error response: %s", resp.Status),
			Err:  err,
		}
	}
	if eb.Code == "" {
		eb.Code = resp.Header.Get(PlatformErrorCodeHeader)
	}
	return &errors.Error{
		Code: eb.Code,
		Msg:  eb.Msg,
	}
}
