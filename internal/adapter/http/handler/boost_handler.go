package handler

import (
	"encoding/json"
	"net/http"

	"github.com/unifarm/ledger/internal/adapter/http/dto"
	"github.com/unifarm/ledger/internal/usecase"
)

// BoostHandler handles boost package purchases.
type BoostHandler struct {
	boostUC *usecase.BoostUseCase
}

// NewBoostHandler creates a new BoostHandler.
func NewBoostHandler(boostUC *usecase.BoostUseCase) *BoostHandler {
	return &BoostHandler{boostUC: boostUC}
}

// Purchase charges a boost package and credits its bonus.
func (h *BoostHandler) Purchase(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req dto.PurchaseBoostRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.boostUC.Purchase(r.Context(), uid, req.PackageID, req.RequestID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to purchase boost", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.PurchaseFromResult(result))
}
