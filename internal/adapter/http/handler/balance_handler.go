package handler

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/unifarm/ledger/internal/adapter/http/dto"
	"github.com/unifarm/ledger/internal/usecase"
)

// BalanceHandler handles balance and entry read requests.
type BalanceHandler struct {
	balanceUC *usecase.BalanceUseCase
	entryUC   *usecase.EntryUseCase
}

// NewBalanceHandler creates a new BalanceHandler.
func NewBalanceHandler(balanceUC *usecase.BalanceUseCase, entryUC *usecase.EntryUseCase) *BalanceHandler {
	return &BalanceHandler{balanceUC: balanceUC, entryUC: entryUC}
}

// GetBalance returns the user's balance in one currency.
func (h *BalanceHandler) GetBalance(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	currency, ok := parseCurrency(w, r.URL.Query().Get("currency"))
	if !ok {
		return
	}

	balance, err := h.balanceUC.GetBalance(r.Context(), uid, currency)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get balance", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.BalanceResponse{
		UserID:   uid,
		Currency: string(currency),
		Balance:  balance,
	})
}

// ListBalances returns all of the user's accounts.
func (h *BalanceHandler) ListBalances(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	accounts, err := h.balanceUC.GetBalances(r.Context(), uid)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list balances", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.AccountsFromDomain(accounts))
}

// ListEntries lists the user's ledger entries in one currency, newest first.
func (h *BalanceHandler) ListEntries(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	currency, ok := parseCurrency(w, r.URL.Query().Get("currency"))
	if !ok {
		return
	}

	limit := parseIntQuery(r, "limit", 20)
	offset := parseIntQuery(r, "offset", 0)

	entries, err := h.entryUC.ListByUser(r.Context(), uid, currency, limit, offset)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to list entries", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.EntriesFromDomain(entries))
}

// GetEntry retrieves a single ledger entry by ID.
func (h *BalanceHandler) GetEntry(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	id := chi.URLParam(r, "id")
	if id == "" {
		writeError(w, http.StatusBadRequest, "missing entry ID", "")
		return
	}

	entry, err := h.entryUC.GetEntry(r.Context(), id)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get entry", err.Error())
		return
	}

	// Entries are visible to their owner only.
	if entry.UserID != uid {
		writeError(w, http.StatusNotFound, "entry not found", "")
		return
	}

	writeJSON(w, http.StatusOK, dto.EntryFromDomain(entry))
}
