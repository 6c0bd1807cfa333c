package handler

import (
	"encoding/json"
	"net/http"

	"github.com/unifarm/ledger/internal/adapter/http/dto"
	"github.com/unifarm/ledger/internal/usecase"
)

// WalletHandler handles TON deposits and withdrawals.
type WalletHandler struct {
	depositUC *usecase.DepositUseCase
}

// NewWalletHandler creates a new WalletHandler.
func NewWalletHandler(depositUC *usecase.DepositUseCase) *WalletHandler {
	return &WalletHandler{depositUC: depositUC}
}

// Deposit credits a confirmed on-chain TON deposit. The transaction hash
// is the idempotency key, so re-delivered confirmations replay.
func (h *WalletHandler) Deposit(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req dto.TONDepositRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	result, err := h.depositUC.ProcessTONDeposit(r.Context(), uid, req.Amount, req.TxHash)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to process deposit", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.MutationFromResult(result))
}

// Withdraw debits the requested amount for an external payout.
func (h *WalletHandler) Withdraw(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req dto.WithdrawRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	currency, ok := parseCurrency(w, req.Currency)
	if !ok {
		return
	}

	result, err := h.depositUC.Withdraw(r.Context(), uid, currency, req.Amount, req.RequestID)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to process withdrawal", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.MutationFromResult(result))
}
