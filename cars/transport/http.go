package transport

import (
	goerrors "errors"
	"fmt"
	"net/http"
	"strconv"

	"github.com/NYTimes/gziphandler"
	"github.com/carcatalog/catalog"
	"github.com/carcatalog/catalog/carcsv"
	"github.com/carcatalog/catalog/kit/platform/errors"
	kithttp "github.com/carcatalog/catalog/kit/transport/http"
	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	prefixCars      = "/api/v1/cars"
	errMissingParam = "url missing %s"
	errInvalidParam = "url %s is invalid"

	// MaxImportBytes bounds the body of an import request.
	MaxImportBytes = 32 << 20
)

var errImportTooLarge = &errors.Error{
	Code: errors.ETooLarge,
	Msg:  fmt.Sprintf("import body exceeds %d bytes", MaxImportBytes),
}

// CarHandler is the handler for the car service. Import and export need the
// brand service as well, to translate between brand names and IDs.
type CarHandler struct {
	chi.Router

	log *zap.Logger
	api *kithttp.API

	carService   catalog.CarService
	brandService catalog.BrandService
}

func NewCarHandler(log *zap.Logger, carService catalog.CarService, brandService catalog.BrandService) *CarHandler {
	h := &CarHandler{
		log:          log,
		api:          kithttp.NewAPI(kithttp.WithLog(log)),
		carService:   carService,
		brandService: brandService,
	}

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer,
		middleware.RequestID,
		middleware.RealIP,
	)

	r.Route("/", func(r chi.Router) {
		r.Get("/", h.handleGetCars)
		r.Post("/", h.handleCreateCar)
		r.Method(http.MethodGet, "/export", gziphandler.GzipHandler(http.HandlerFunc(h.handleExportCars)))
		r.Post("/import", h.handleImportCars)

		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", h.handleGetCar)
			r.Put("/", h.handleUpdateCar)
			r.Delete("/", h.handleDeleteCar)
		})
	})

	h.Router = r

	return h
}

func (h *CarHandler) Prefix() string {
	return prefixCars
}

type carsResponse struct {
	Cars []*catalog.Car `json:"cars"`
}

type importResponse struct {
	Imported int `json:"imported"`
}

func (h *CarHandler) handleGetCars(w http.ResponseWriter, r *http.Request) {
	filter, err := decodeCarFilter(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	cs, err := h.carService.ListCars(r.Context(), filter)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, carsResponse{Cars: cs})
}

func (h *CarHandler) handleCreateCar(w http.ResponseWriter, r *http.Request) {
	var create catalog.CarCreate
	if err := h.api.DecodeJSON(r.Body, &create); err != nil {
		h.api.Err(w, r, err)
		return
	}

	c, err := h.carService.CreateCar(r.Context(), create)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusCreated, c)
}

func (h *CarHandler) handleGetCar(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromReq(r, "id")
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	c, err := h.carService.GetCar(r.Context(), id)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, c)
}

func (h *CarHandler) handleUpdateCar(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromReq(r, "id")
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	var update catalog.CarUpdate
	if err := h.api.DecodeJSON(r.Body, &update); err != nil {
		h.api.Err(w, r, err)
		return
	}

	c, err := h.carService.UpdateCar(r.Context(), id, update)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, c)
}

// delete guard: only inactive cars can be deleted
func (h *CarHandler) handleDeleteCar(w http.ResponseWriter, r *http.Request) {
	id, err := getIDFromReq(r, "id")
	if err != nil {
		h.api.Err(w, r, err)
		return
	}

	if err := h.carService.DeleteCar(r.Context(), id); err != nil {
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusNoContent, nil)
}

func (h *CarHandler) handleExportCars(w http.ResponseWriter, r *http.Request) {
	sw := kithttp.NewStatusResponseWriter(w)
	sw.Header().Set("Content-Type", "text/csv; charset=utf-8")
	sw.Header().Set("Content-Disposition", `attachment; filename="cars.csv"`)

	n, err := carcsv.Export(r.Context(), sw, h.carService, h.brandService)
	if err != nil {
		if sw.ResponseBytes() == 0 {
			sw.Header().Del("Content-Disposition")
			h.api.Err(sw, r, err)
			return
		}
		h.log.Error("Failed to write car export", zap.Error(err))
		return
	}

	h.log.Debug("Cars exported", zap.Int("count", n))
}

func (h *CarHandler) handleImportCars(w http.ResponseWriter, r *http.Request) {
	body, err := kithttp.GzipReader(r)
	if err != nil {
		h.api.Err(w, r, err)
		return
	}
	defer body.Close()

	n, err := carcsv.Import(r.Context(), http.MaxBytesReader(w, body, MaxImportBytes), h.carService, h.brandService)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if goerrors.As(err, &tooLarge) {
			err = errImportTooLarge
		}
		if n > 0 {
			err = &errors.Error{
				Code: errors.ErrorCode(err),
				Msg:  fmt.Sprintf("%s (%d rows imported)", errors.ErrorMessage(err), n),
				Op:   errors.ErrorOp(err),
				Err:  err,
			}
		}
		h.api.Err(w, r, err)
		return
	}

	h.api.Respond(w, r, http.StatusOK, importResponse{Imported: n})
}

func decodeCarFilter(r *http.Request) (catalog.CarFilter, error) {
	var f catalog.CarFilter

	page, err := catalog.DecodePage(r)
	if err != nil {
		return f, err
	}
	f.Page = page

	qp := r.URL.Query()
	if brandID := qp.Get("brandID"); brandID != "" {
		id, err := uuid.Parse(brandID)
		if err != nil {
			return f, errors.Invalidf("brandID %q is not a valid ID", brandID)
		}
		f.BrandID = &id
	}

	if active := qp.Get("isActive"); active != "" {
		b, err := strconv.ParseBool(active)
		if err != nil {
			return f, errors.Invalidf("isActive %q is not a boolean", active)
		}
		f.IsActive = &b
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
