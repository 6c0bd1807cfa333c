package handler

import (
	"encoding/json"
	"net/http"

	"github.com/unifarm/ledger/internal/adapter/http/dto"
	"github.com/unifarm/ledger/internal/usecase"
)

// ReferralHandler handles referral registration and upline reads.
type ReferralHandler struct {
	referralUC *usecase.ReferralUseCase
}

// NewReferralHandler creates a new ReferralHandler.
func NewReferralHandler(referralUC *usecase.ReferralUseCase) *ReferralHandler {
	return &ReferralHandler{referralUC: referralUC}
}

// Register binds the authenticated user to a referrer. A user can be
// referred at most once.
func (h *ReferralHandler) Register(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	var req dto.RegisterReferralRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	if err := h.referralUC.RegisterReferral(r.Context(), uid, req.ReferrerID); err != nil {
		writeError(w, mapDomainError(err), "failed to register referral", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

// Upline returns the user's referral chain, nearest first.
func (h *ReferralHandler) Upline(w http.ResponseWriter, r *http.Request) {
	uid, ok := userID(w, r)
	if !ok {
		return
	}

	upline, err := h.referralUC.GetUpline(r.Context(), uid)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to get upline", err.Error())
		return
	}

	writeJSON(w, http.StatusOK, dto.UplineFromDomain(upline))
}
