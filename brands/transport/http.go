package transport

import (
	"fmt"
	"net/http"

	"github.com/carcatalog/catalog"
	"github.com/carcatalog/catalog/kit/platform/errors"
	kithttp "github.com/carcatalog/catalog/kit/transport/http"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	prefixBrands    = "/api/v1/brands"
	errMissingParam = "url missing %s"
	errInvalidParam = "url %s is invalid"
)

// BrandHandler is the handler for the brand service
type BrandHandler struct {
	chi.Router

	log *zap.Logger
	api *kithttp.API

	brandService catalog.BrandService
}

func NewBrandHandler(log *zap.Logger, brandService catalog.BrandService) *BrandHandler {
	h := &BrandHandler{
		log:          log,
		api:          kithttp.NewAPI(kithttp.WithLog(log)),
		brandService: brandService,
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer,
		middleware.RequestID,
		middleware.RealIP,
	)

	r.Route("/", func(r chi.Router) {
		r.Get("/", h.handleGetBrands)
		r.Post("/", h.handleCreateBrand)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGetBrand)
			r.Put("/", h.handleUpdateBrand)
			r.Delete("/", h.handleDeleteBrand)
		})
	})

	h.Router = r

	return h
}

func (h *BrandHandler) Prefix() string {
	return prefixBrands
}

type brandsResponse struct {
	Brands []*catalog.Brand `json:"brands"`
}

// get a list of brands, optionally filtered by name
func (h *BrandHandler) handleGetBrands(w http.ResponseWriter, r *http.Request) {
	filter, err := decodeBrandFilter(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	bs, err := h.brandService.ListBrands(r.Context(), filter)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, brandsResponse{Brands: bs})
}

func (h *BrandHandler) handleCreateBrand(w http.ResponseWriter, r *http.Request) {
	var create catalog.BrandCreate
	if err := h.api.DecodeJSON(r.Body, &create); err != nil {
		h.api.Err(w, r, err)
		return
	}

	b, err := h.brandService.CreateBrand(r.Context(), create)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusCreated, b)
}

func (h *BrandHandler) handleGetBrand(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromReq(r, "id")
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	b, err := h.brandService.GetBrand(r.Context(), id)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, b)
}

func (h *BrandHandler) handleUpdateBrand(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromReq(r, "id")
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var update catalog.BrandUpdate
	if err := h.api.DecodeJSON(r.Body, &update); err != nil {
		h.api.Err(w, r, err)
		return
	}

	b, err := h.brandService.UpdateBrand(r.Context(), id, update)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, b)
}

func (h *BrandHandler) handleDeleteBrand(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromReq(r, "id")
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.brandService.DeleteBrand(r.Context(), id); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusNoContent, nil)
}

func decodeBrandFilter(r *http.Request) (catalog.BrandFilter, error) {
	var f catalog.BrandFilter

	page, err := catalog.DecodePage(r)
	if err != nil {
		return f, err
	}
	f.Page = page

	if name := r.URL.Query().Get("name"); name != "" {
		f.Name = &name
	}

	return f, nil
}

func getIDFromReq(r *http.Request, param string) (uuid.UUID, error) {
	id := chi.URLParam(r, param)
	if id == "" {
		return uuid.Nil, &errors.Error{
			Code: errors.EInvalid,
			Msg:  fmt.Sprintf(errMissingParam, param),
		}
	}

	i, err := uuid.Parse(id)
	if err != nil {
		return uuid.Nil, &errors.Error{
			Code: errors.EInvalid,
			Msg:  fmt.Sprintf(errInvalidParam, param),
			Err:  err,
		}
	}

	return i, nil
}
