package handler

import (
	"encoding/json"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unifarm/ledger/internal/adapter/http/dto"
	"github.com/unifarm/ledger/internal/usecase"
)

// AdminHandler handles operational endpoints: manual corrections and
// ledger consistency checks.
type AdminHandler struct {
	balanceUC        *usecase.BalanceUseCase
	reconciliationUC *usecase.ReconciliationUseCase
}

// NewAdminHandler creates a new AdminHandler.
func NewAdminHandler(balanceUC *usecase.BalanceUseCase, reconciliationUC *usecase.ReconciliationUseCase) *AdminHandler {
	return &AdminHandler{balanceUC: balanceUC, reconciliationUC: reconciliationUC}
}

// Adjust records a signed manual correction as a ledger entry.
func (h *AdminHandler) Adjust(w http.ResponseWriter, r *http.Request) {
	var req dto.AdjustmentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	currency, ok := parseCurrency(w, req.Currency)
	if !ok {
		return
	}

	result, err := h.balanceUC.Adjust(r.Context(), usecase.AdjustInput{
		UserID:         req.UserID,
		Currency:       currency,
		Delta:          req.Delta,
		IdempotencyKey: req.IdempotencyKey,
		Reason:         req.Reason,
	})
	if err != nil {
		writeError(w, mapDomainError(err), "failed to apply adjustment", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.MutationFromResult(result))
}

// ReconcileAccount checks one account's balance against its entry sum.
func (h *AdminHandler) ReconcileAccount(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing account ID", "")
		return
	}

	result, err := h.reconciliationUC.ReconcileAccount(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to reconcile account", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReconciliationFromResult(result))
}

// ReconciliationReport runs a fleet-wide consistency check.
func (h *AdminHandler) ReconciliationReport(w http.ResponseWriter, r *http.Request) {
	report, err := h.reconciliationUC.GenerateReport(r.Context())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to generate report", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.ReportFromResult(report))
}

// Mismatched lists account IDs whose balance disagrees with the entry sum.
func (h *AdminHandler) Mismatched(w http.ResponseWriter, r *http.Request) {
	limit := parseIntQuery(r, "limit", 100)

	ids, err := h.reconciliationUC.ListMismatched(r.Context(), limit)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list mismatched accounts", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{"account_ids": ids})
}
