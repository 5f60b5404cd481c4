package campaign

import (
	"encoding/json"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mwilde345/givehub/internal/campaign"
	"github.com/mwilde345/givehub/internal/http/middleware"
	"github.com/mwilde345/givehub/internal/http/respond"
)

var validate = validator.New()

type Handler struct {
	svc *campaign.Service
}

func NewHandler(svc *campaign.Service) *Handler {
	return &Handler{svc: svc}
}

type createCampaignRequest struct {
	Title       string    `json:"title" validate:"required,min=5,max=200"`
	Description string    `json:"description" validate:"required,min=10"`
	Category    string    `json:"category" validate:"required"`
	GoalAmount  int64     `json:"goal_amount" validate:"required,gt=0"`
	EndDate     time.Time `json:"end_date" validate:"required"`
	ImageURL    string    `json:"image_url" validate:"omitempty,url"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := validate.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	category, err := campaign.ParseCategory(req.Category)
	if err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.svc.Create(r.Context(), campaign.CreateParams{
		Title:       req.Title,
		Description: req.Description,
		Category:    category,
		GoalAmount:  req.GoalAmount,
		EndDate:     req.EndDate,
		ImageURL:    req.ImageURL,
		CreatedBy:   actor.ID,
	})
	if err != nil {
		if errors.Is(err, campaign.ErrInvalidField) {
			respond.Error(w, http.StatusBadRequest, err.Error())
			return
		}

		respond.Error(w, http.StatusInternalServerError, "internal error")

		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(c))
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	filter := campaign.ListFilter{}

	if s := r.URL.Query().Get("status"); s != "" {
		status := campaign.Status(s)
		filter.Status = &status
	}

	if s := r.URL.Query().Get("category"); s != "" {
		category := campaign.Category(s)
		filter.Category = &category
	}

	cs, err := h.svc.List(r.Context(), filter)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(cs))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	c, err := h.svc.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, campaign.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "campaign not found")
			return
		}

		respond.Error(w, http.StatusInternalServerError, "internal error")

		return
	}

	respond.JSON(w, http.StatusOK, toResponse(c))
}

type updateCampaignRequest struct {
	Title       *string            `json:"title,omitempty" validate:"omitempty,min=5,max=200"`
	Description *string            `json:"description,omitempty" validate:"omitempty,min=10"`
	Category    *campaign.Category `json:"category,omitempty"`
	GoalAmount  *int64             `json:"goal_amount,omitempty" validate:"omitempty,gt=0"`
	Status      *campaign.Status   `json:"status,omitempty"`
	EndDate     *time.Time         `json:"end_date,omitempty"`
	ImageURL    *string            `json:"image_url,omitempty" validate:"omitempty,url"`
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	var req updateCampaignRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := validate.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	c, err := h.svc.Update(r.Context(), id, actor.ID, actor.Role, campaign.UpdateParams{
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		GoalAmount:  req.GoalAmount,
		Status:      req.Status,
		EndDate:     req.EndDate,
		ImageURL:    req.ImageURL,
	})
	if err != nil {
		switch {
		case errors.Is(err, campaign.ErrNotFound):
			respond.Error(w, http.StatusNotFound, "campaign not found")
		case errors.Is(err, campaign.ErrForbidden):
			respond.Error(w, http.StatusForbidden, "not authorized to update this campaign")
		case errors.Is(err, campaign.ErrInvalidField):
			respond.Error(w, http.StatusBadRequest, err.Error())
		default:
			respond.Error(w, http.StatusInternalServerError, "internal error")
		}

		return
	}

	respond.JSON(w, http.StatusOK, toResponse(c))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, campaign.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "campaign not found")
			return
		}

		respond.Error(w, http.StatusInternalServerError, "internal error")

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
