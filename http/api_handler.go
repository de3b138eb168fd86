package http

import (
	"net/http"

	"github.com/carcatalog/catalog"
	brandtransport "github.com/carcatalog/catalog/brands/transport"
	cartransport "github.com/carcatalog/catalog/cars/transport"
	"github.com/carcatalog/catalog/kit/platform/errors"
	kithttp "github.com/carcatalog/catalog/kit/transport/http"
	"github.com/go-chi/chi"
	"go.uber.org/zap"
)

// APIBackend is all services and associated parameters required to construct
// an APIHandler.
type APIBackend struct {
	Logger *zap.Logger

	BrandService catalog.BrandService
	CarService   catalog.CarService
}

// APIHandler mounts every resource handler of the catalog API.
type APIHandler struct {
	chi.Router

	api *kithttp.API
}

// APIHandlerOptFn is a functional input param to set parameters on
// the APIHandler.
type APIHandlerOptFn func(*APIHandler)

// WithResourceHandler registers a resource handler on the APIHandler.
func WithResourceHandler(resHandler kithttp.ResourceHandler) APIHandlerOptFn {
	return func(h *APIHandler) {
		h.Mount(resHandler.Prefix(), resHandler)
	}
}

// NewAPIHandler constructs all api handlers beneath it and returns an APIHandler
func NewAPIHandler(b *APIBackend, opts ...APIHandlerOptFn) *APIHandler {
	h := &APIHandler{
		Router: chi.NewRouter(),
		api:    kithttp.NewAPI(kithttp.WithLog(b.Logger)),
	}

	h.NotFound(func(w http.ResponseWriter, r *http.Request) {
		h.api.Err(w, r, &errors.Error{
			Code: errors.ENotFound,
			Msg:  "path not found",
		})
	})
	h.MethodNotAllowed(func(w http.ResponseWriter, r *http.Request) {
		h.api.Err(w, r, &errors.Error{
			Code: errors.EMethodNotAllowed,
			Msg:  r.Method + " is not allowed on " + r.URL.Path,
		})
	})

	WithResourceHandler(brandtransport.NewBrandHandler(
		b.Logger.With(zap.String("handler", "brands")),
		b.BrandService,
	))(h)
	WithResourceHandler(cartransport.NewCarHandler(
		b.Logger.With(zap.String("handler", "cars")),
		b.CarService,
		b.BrandService,
	))(h)

	for _, o := range opts {
		o(h)
	}
	return h
}
