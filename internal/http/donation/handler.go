package donation

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/mwilde345/givehub/internal/campaign"
	"github.com/mwilde345/givehub/internal/donation"
	"github.com/mwilde345/givehub/internal/http/middleware"
	"github.com/mwilde345/givehub/internal/http/respond"
)

var validate = validator.New()

type Handler struct {
	svc *donation.Service
}

func NewHandler(svc *donation.Service) *Handler {
	return &Handler{svc: svc}
}

type createDonationRequest struct {
	CampaignID  uuid.UUID `json:"campaign_id" validate:"required"`
	Amount      int64     `json:"amount" validate:"required,gt=0"`
	Message     string    `json:"message" validate:"omitempty,max=500"`
	IsAnonymous bool      `json:"is_anonymous"`
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	var req createDonationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := validate.Struct(req); err != nil {
		respond.Error(w, http.StatusBadRequest, err.Error())
		return
	}

	d, err := h.svc.Accept(r.Context(), donation.AcceptParams{
		DonorID:     actor.ID,
		CampaignID:  req.CampaignID,
		Amount:      req.Amount,
		Message:     req.Message,
		IsAnonymous: req.IsAnonymous,
	})
	if err != nil {
		writeAcceptError(w, err)
		return
	}

	respond.JSON(w, http.StatusCreated, toResponse(d, false))
}

// writeAcceptError maps the acceptance error taxonomy onto HTTP statuses.
// Validation rejections are 4xx and safe to retry; ErrInconsistent is the one
// case where the client must be told the outcome is unconfirmed.
func writeAcceptError(w http.ResponseWriter, err error) {
	var exceeds *campaign.ExceedsRemainingError

	switch {
	case errors.Is(err, donation.ErrInvalidAmount):
		respond.Error(w, http.StatusBadRequest, "invalid donation amount")
	case errors.Is(err, donation.ErrMissingDonor):
		respond.Error(w, http.StatusBadRequest, "donor is required")
	case errors.Is(err, campaign.ErrNotFound):
		respond.Error(w, http.StatusNotFound, "campaign not found")
	case errors.Is(err, campaign.ErrNotActive):
		respond.Error(w, http.StatusBadRequest, "campaign is not active")
	case errors.Is(err, campaign.ErrGoalReached):
		respond.Error(w, http.StatusConflict, "campaign goal already reached")
	case errors.As(err, &exceeds):
		respond.ErrorWithRemaining(w, http.StatusBadRequest, exceeds.Error(), exceeds.Remaining)
	case errors.Is(err, donation.ErrInconsistent):
		respond.Error(w, http.StatusInternalServerError,
			"donation state is unconfirmed; it may or may not have been applied")
	default:
		respond.Error(w, http.StatusInternalServerError, "internal error")
	}
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	actor, ok := middleware.ActorFromContext(r.Context())
	if !ok {
		respond.Error(w, http.StatusUnauthorized, "authentication required")
		return
	}

	ds, err := h.svc.ListByDonor(r.Context(), actor.ID)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(ds, false))
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
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

	d, err := h.svc.Get(r.Context(), id, actor.ID, actor.Role)
	if err != nil {
		switch {
		case errors.Is(err, donation.ErrNotFound):
			respond.Error(w, http.StatusNotFound, "donation not found")
		case errors.Is(err, donation.ErrForbidden):
			respond.Error(w, http.StatusForbidden, "not authorized to view this donation")
		default:
			respond.Error(w, http.StatusInternalServerError, "internal error")
		}

		return
	}

	respond.JSON(w, http.StatusOK, toResponse(d, false))
}

// ListByCampaign is public; anonymous donors are withheld from the output.
func (h *Handler) ListByCampaign(w http.ResponseWriter, r *http.Request) {
	campaignID, err := uuid.Parse(chi.URLParam(r, "campaignID"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid campaign id")
		return
	}

	ds, err := h.svc.ListByCampaign(r.Context(), campaignID)
	if err != nil {
		respond.Error(w, http.StatusInternalServerError, "internal error")
		return
	}

	respond.JSON(w, http.StatusOK, toResponseList(ds, true))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respond.Error(w, http.StatusBadRequest, "invalid id")
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		if errors.Is(err, donation.ErrNotFound) {
			respond.Error(w, http.StatusNotFound, "donation not found")
			return
		}

		respond.Error(w, http.StatusInternalServerError, "internal error")

		return
	}

	w.WriteHeader(http.StatusNoContent)
}
