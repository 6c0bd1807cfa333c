package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/unifarm/ledger/internal/adapter/http/dto"
	"github.com/unifarm/ledger/internal/usecase"
)

// RewardHandler handles reward grants issued by the missions and bonus
// services. These are service-to-service endpoints: the target user comes
// from the request body, not from the caller's identity.
type RewardHandler struct {
	rewardUC *usecase.RewardUseCase
}

// NewRewardHandler creates a new RewardHandler.
func NewRewardHandler(rewardUC *usecase.RewardUseCase) *RewardHandler {
	return &RewardHandler{rewardUC: rewardUC}
}

// Mission credits a mission completion reward.
func (h *RewardHandler) Mission(w http.ResponseWriter, r *http.Request) {
	var req dto.MissionRewardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	currency, ok := parseCurrency(w, req.Currency)
	if !ok {
		return
	}

	result, err := h.rewardUC.GrantMissionReward(r.Context(), req.UserID, req.MissionID, req.Amount, currency)
	if err != nil {
		writeError(w, mapDomainError(err), "failed to grant mission reward", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.MutationFromResult(result))
}

// DailyBonus credits the daily check-in bonus. At most one grant per user
// per UTC day.
func (h *RewardHandler) DailyBonus(w http.ResponseWriter, r *http.Request) {
	var req dto.DailyBonusRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body", err.Error())
		return
	}

	currency, ok := parseCurrency(w, req.Currency)
	if !ok {
		return
	}

	result, err := h.rewardUC.GrantDailyBonus(r.Context(), req.UserID, req.Amount, currency, time.Now().UTC())
	if err != nil {
		writeError(w, mapDomainError(err), "failed to grant daily bonus", err.Error())
		return
	}

	writeJSON(w, http.StatusCreated, dto.MutationFromResult(result))
}
