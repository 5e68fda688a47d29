package rest

import (
	"context"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/go-playground/locales/en"
	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	enTranslations "github.com/go-playground/validator/v10/translations/en"

	"github.com/m4ra-routing/m4ra/pkg/server/rest/service"
	"github.com/m4ra-routing/m4ra/pkg/vertexindex"
	"github.com/m4ra-routing/m4ra/pkg/weighting"
)

type WeightingService interface {
	CacheStatus(ctx context.Context, city string) (service.CityStatus, error)
	WeightFromFile(ctx context.Context, city, networkPath string) ([]string, error)
	BuildVertexIndices(ctx context.Context, city string) ([]string, error)
}

type WeightingHandler struct {
	svc WeightingService
}

func WeightingRouter(r *chi.Mux, svc WeightingService) {
	handler := &WeightingHandler{svc}

	r.Group(func(r chi.Router) {
		r.Route("/api/weighting", func(r chi.Router) {
			r.Get("/cache/{city}", handler.CacheStatus)
			r.Post("/weight", handler.Weight)
			r.Post("/vertex-index", handler.VertexIndex)
		})
	})
}

func (h *WeightingHandler) CacheStatus(w http.ResponseWriter, r *http.Request) {
	city := chi.URLParam(r, "city")
	if city == "" {
		render.Render(w, r, ErrInvalidRequest(errors.New("city is required")))
		return
	}
	status, err := h.svc.CacheStatus(r.Context(), city)
	if err != nil {
		render.Render(w, r, ErrInternalServerErrorRend(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, status)
}

// WeightRequest model info
type WeightRequest struct {
	City        string `json:"city" validate:"required"`
	NetworkPath string `json:"network_path" validate:"required"`
}

func (s *WeightRequest) Bind(r *http.Request) error {
	if s.City == "" || s.NetworkPath == "" {
		return errors.New("invalid request")
	}
	return nil
}

// WeightResponse model info
type WeightResponse struct {
	Artifacts []string `json:"artifacts"`
}

func (h *WeightingHandler) Weight(w http.ResponseWriter, r *http.Request) {
	data := &WeightRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}
	validate := validator.New()
	if err := validate.Struct(*data); err != nil {
		english := en.New()
		uni := ut.New(english, english)
		trans, _ := uni.GetTranslator("en")
		_ = enTranslations.RegisterDefaultTranslations(validate, trans)
		vv := translateError(err, trans)
		render.Render(w, r, ErrValidation(err, vv))
		return
	}

	paths, err := h.svc.WeightFromFile(r.Context(), data.City, data.NetworkPath)
	if err != nil {
		if errors.Is(err, weighting.ErrProfileTemplateMismatch) {
			render.Render(w, r, ErrInvalidRequest(err))
			return
		}
		render.Render(w, r, ErrInternalServerErrorRend(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, WeightResponse{Artifacts: paths})
}

// VertexIndexRequest model info
type VertexIndexRequest struct {
	City string `json:"city" validate:"required"`
}

func (s *VertexIndexRequest) Bind(r *http.Request) error {
	if s.City == "" {
		return errors.New("invalid request")
	}
	return nil
}

func (h *WeightingHandler) VertexIndex(w http.ResponseWriter, r *http.Request) {
	data := &VertexIndexRequest{}
	if err := render.Bind(r, data); err != nil {
		render.Render(w, r, ErrInvalidRequest(err))
		return
	}

	paths, err := h.svc.BuildVertexIndices(r.Context(), data.City)
	if err != nil {
		if errors.Is(err, vertexindex.ErrMissingPrerequisite) {
			render.Render(w, r, &ErrResponse{
				Err:            err,
				HTTPStatusCode: http.StatusConflict,
				StatusText:     "Weighted networks not ready.",
				ErrorText:      err.Error(),
			})
			return
		}
		render.Render(w, r, ErrInternalServerErrorRend(err))
		return
	}
	render.Status(r, http.StatusOK)
	render.JSON(w, r, WeightResponse{Artifacts: paths})
}

func ErrInvalidRequest(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Invalid request.",
		ErrorText:      err.Error(),
	}
}

func ErrInternalServerErrorRend(err error) render.Renderer {
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 500,
		StatusText:     "Internal server error.",
		ErrorText:      err.Error(),
	}
}

func ErrValidation(err error, validations []error) render.Renderer {
	msgs := make([]string, 0, len(validations))
	for _, v := range validations {
		msgs = append(msgs, v.Error())
	}
	return &ErrResponse{
		Err:            err,
		HTTPStatusCode: 400,
		StatusText:     "Validation failed.",
		ErrValidation:  msgs,
	}
}

// ErrResponse model info
type ErrResponse struct {
	Err            error `json:"-"`
	HTTPStatusCode int   `json:"-"`

	StatusText    string   `json:"status"`
	AppCode       int64    `json:"code,omitempty"`
	ErrorText     string   `json:"error,omitempty"`
	ErrValidation []string `json:"validation,omitempty"`
}

func (e *ErrResponse) Render(w http.ResponseWriter, r *http.Request) error {
	render.Status(r, e.HTTPStatusCode)
	return nil
}

func translateError(err error, trans ut.Translator) (errs []error) {
	if err == nil {
		return nil
	}
	var validatorErrs validator.ValidationErrors
	if !errors.As(err, &validatorErrs) {
		return []error{err}
	}
	for _, e := range validatorErrs {
		errs = append(errs, errors.New(e.Translate(trans)))
	}
	return errs
}
