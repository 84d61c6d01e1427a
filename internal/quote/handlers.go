package quote

import (
	"encoding/json"
	"net/http"
	"time"

	validator "github.com/go-playground/validator/v10"

	"github.com/aqilnasir/protek-api/internal/common"
	"github.com/aqilnasir/protek-api/internal/obs"
)

// Handler exposes the quoting endpoints.
type Handler struct {
	Engine   *Engine
	Validate *validator.Validate
	// Now supplies the reference date for age calculations. Defaults to
	// time.Now so production pricing tracks the wall clock.
	Now func() time.Time
}

type quoteRequest struct {
	Vehicle *VehicleProfile `json:"vehicle" validate:"required"`
	Driver  *DriverProfile  `json:"driver" validate:"required"`
}

type installmentRequest struct {
	Amount int64 `json:"amount" validate:"required,gt=0"`
	Months int   `json:"months" validate:"required,gt=0"`
}

func (h *Handler) now() time.Time {
	if h.Now != nil {
		return h.Now()
	}
	return time.Now()
}

// Quotes handles POST /api/v1/quotes.
func (h *Handler) Quotes(w http.ResponseWriter, r *http.Request) {
	if h.Engine == nil {
		common.JSONError(w, http.StatusInternalServerError, "INTERNAL", "quote engine not configured", nil)
		return
	}
	var req quoteRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			obs.RecordQuoteRequest("invalid")
			common.JSONError(w, http.StatusBadRequest, "INVALID_REQUEST", "vehicle and driver information required", nil)
			return
		}
	}
	result, err := h.Engine.Compute(h.now(), req.Vehicle, req.Driver)
	if err != nil {
		obs.RecordQuoteRequest("invalid")
		common.WriteError(w, err)
		return
	}
	obs.RecordQuoteRequest("ok")
	for _, q := range result.Quotes {
		obs.ObserveQuotedPremium(q.Name, float64(q.FinalPrice))
	}
	common.JSON(w, http.StatusOK, result)
}

// VehicleTypes handles GET /api/v1/vehicle-types.
func (h *Handler) VehicleTypes(w http.ResponseWriter, _ *http.Request) {
	common.JSON(w, http.StatusOK, VehicleTypes())
}

// Insurers handles GET /api/v1/insurers.
func (h *Handler) Insurers(w http.ResponseWriter, _ *http.Request) {
	common.JSON(w, http.StatusOK, Catalog())
}

// Installments handles POST /api/v1/installments.
func (h *Handler) Installments(w http.ResponseWriter, r *http.Request) {
	var req installmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		common.JSONError(w, http.StatusBadRequest, "INVALID_REQUEST", "invalid request payload", nil)
		return
	}
	if h.Validate != nil {
		if err := h.Validate.Struct(req); err != nil {
			common.JSONError(w, http.StatusBadRequest, "INVALID_REQUEST", "amount and months required", nil)
			return
		}
	}
	plan, err := ComputeInstallments(req.Amount, req.Months)
	if err != nil {
		common.WriteError(w, err)
		return
	}
	common.JSON(w, http.StatusOK, plan)
}
