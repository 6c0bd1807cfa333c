package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unifarm/ledger/internal/adapter/http/dto"
	"github.com/unifarm/ledger/internal/usecase"
)

// FarmingHandler handles farming position requests.
type FarmingHandler struct {
	farmingUC *usecase.FarmingUseCase
}

// NewFarmingHandler creates a new FarmingHandler.
func NewFarmingHandler(farmingUC *usecase.FarmingUseCase) *FarmingHandler {
	return &FarmingHandler{farmingUC: farmingUC}
}

// Open opens a farming position, debiting the principal.
func (h *FarmingHandler) Open(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req dto.OpenPositionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	currency, ok := parseCurrency(w, req.Currency)
	if !ok {
		return
	}

	position, err := h.farmingUC.OpenPosition(r.Context(), usecase.OpenPositionInput{
		UserID:    uid,
		Currency:  currency,
		Amount:    req.Amount,
		RequestID: req.RequestID,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to open position", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PositionFromDomain(position))
}

// Close closes a farming position, returning the principal.
func (h *FarmingHandler) Close(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing position ID", "")
		return
	}

	position, err := h.farmingUC.ClosePosition(r.Context(), uid, id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to close position", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PositionFromDomain(position))
}

// List lists the user's farming positions.
func (h *FarmingHandler) List(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	positions, err := h.farmingUC.ListPositions(r.Context(), uid)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list positions", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.PositionsFromDomain(positions))
}
