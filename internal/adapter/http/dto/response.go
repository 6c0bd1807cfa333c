package dto

import (
	"time"

	"github.com/shopspring/decimal"

	"github.com/unifarm/ledger/internal/domain"
	"github.com/unifarm/ledger/internal/usecase"
)

// BalanceResponse represents a single-currency balance.
type BalanceResponse struct {
	UserID   int64           `json:"user_id"`
	Currency string          `json:"currency"`
	Balance  decimal.Decimal `json:"balance"`
}

// AccountResponse represents an account in API responses.
type AccountResponse struct {
	ID        string          `json:"id"`
	UserID    int64           `json:"user_id"`
	Currency  string          `json:"currency"`
	Balance   decimal.Decimal `json:"balance"`
	Version   int64           `json:"version"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

// AccountFromDomain converts a domain account to a response.
func AccountFromDomain(a *domain.Account) *AccountResponse {
	return &AccountResponse{
		ID:        a.ID,
		UserID:    a.UserID,
		Currency:  string(a.Currency),
		Balance:   a.Balance,
		Version:   a.Version,
		CreatedAt: a.CreatedAt,
		UpdatedAt: a.UpdatedAt,
	}
}

// AccountsFromDomain converts domain accounts to responses.
func AccountsFromDomain(accounts []*domain.Account) []*AccountResponse {
	result := make([]*AccountResponse, len(accounts))
	for i, a := range accounts {
		result[i] = AccountFromDomain(a)
	}
	return result
}

// EntryResponse represents a ledger entry in API responses.
type EntryResponse struct {
	ID              string          `json:"id"`
	AccountID       string          `json:"account_id"`
	UserID          int64           `json:"user_id"`
	Currency        string          `json:"currency"`
	Type            string          `json:"type"`
	Amount          decimal.Decimal `json:"amount"`
	SourceRef       string          `json:"source_ref,omitempty"`
	PreviousBalance decimal.Decimal `json:"previous_balance"`
	CurrentBalance  decimal.Decimal `json:"current_balance"`
	AccountVersion  int64           `json:"account_version"`
	CreatedAt       time.Time       `json:"created_at"`
}

// EntryFromDomain converts a domain entry to a response.
func EntryFromDomain(e *domain.Entry) *EntryResponse {
	return &EntryResponse{
		ID:              e.ID,
		AccountID:       e.AccountID,
		UserID:          e.UserID,
		Currency:        string(e.Currency),
		Type:            string(e.Type),
		Amount:          e.Amount,
		SourceRef:       e.SourceRef,
		PreviousBalance: e.PreviousBalance,
		CurrentBalance:  e.CurrentBalance,
		AccountVersion:  e.AccountVersion,
		CreatedAt:       e.CreatedAt,
	}
}

// EntriesFromDomain converts domain entries to responses.
func EntriesFromDomain(entries []*domain.Entry) []*EntryResponse {
	result := make([]*EntryResponse, len(entries))
	for i, e := range entries {
		result[i] = EntryFromDomain(e)
	}
	return result
}

// MutationResponse represents the outcome of a balance mutation.
type MutationResponse struct {
	Entry    *EntryResponse `json:"entry"`
	Replayed bool           `json:"replayed"`
}

// MutationFromResult converts a use case mutation result to a response.
func MutationFromResult(r *usecase.MutationResult) *MutationResponse {
	return &MutationResponse{
		Entry:    EntryFromDomain(r.Entry),
		Replayed: r.Replayed,
	}
}

// PositionResponse represents a farming position in API responses.
type PositionResponse struct {
	ID            string          `json:"id"`
	UserID        int64           `json:"user_id"`
	Currency      string          `json:"currency"`
	Principal     decimal.Decimal `json:"principal"`
	RatePerPeriod decimal.Decimal `json:"rate_per_period"`
	LastAccruedAt time.Time       `json:"last_accrued_at"`
	Active        bool            `json:"active"`
	CreatedAt     time.Time       `json:"created_at"`
}

// PositionFromDomain converts a domain position to a response.
func PositionFromDomain(p *domain.FarmingPosition) *PositionResponse {
	return &PositionResponse{
		ID:            p.ID,
		UserID:        p.UserID,
		Currency:      string(p.Currency),
		Principal:     p.Principal,
		RatePerPeriod: p.RatePerPeriod,
		LastAccruedAt: p.LastAccruedAt,
		Active:        p.Active,
		CreatedAt:     p.CreatedAt,
	}
}

// PositionsFromDomain converts domain positions to responses.
func PositionsFromDomain(positions []*domain.FarmingPosition) []*PositionResponse {
	result := make([]*PositionResponse, len(positions))
	for i, p := range positions {
		result[i] = PositionFromDomain(p)
	}
	return result
}

// ReferralEdgeResponse represents one upline link.
type ReferralEdgeResponse struct {
	UplineUserID int64 `json:"upline_user_id"`
	Level        int   `json:"level"`
}

// UplineFromDomain converts referral edges to responses.
func UplineFromDomain(edges []*domain.ReferralEdge) []*ReferralEdgeResponse {
	result := make([]*ReferralEdgeResponse, len(edges))
	for i, e := range edges {
		result[i] = &ReferralEdgeResponse{
			UplineUserID: e.UplineUserID,
			Level:        e.Level,
		}
	}
	return result
}

// PurchaseResponse represents the outcome of a boost purchase.
type PurchaseResponse struct {
	PackageID string         `json:"package_id"`
	Charge    *EntryResponse `json:"charge"`
	Bonus     *EntryResponse `json:"bonus,omitempty"`
	Replayed  bool           `json:"replayed"`
}

// PurchaseFromResult converts a use case purchase result to a response.
func PurchaseFromResult(r *usecase.PurchaseResult) *PurchaseResponse {
	resp := &PurchaseResponse{
		PackageID: r.Package.ID,
		Charge:    EntryFromDomain(r.Charge),
		Replayed:  r.Replayed,
	}
	if r.Bonus != nil {
		resp.Bonus = EntryFromDomain(r.Bonus)
	}
	return resp
}

// ReconciliationResponse represents one account's consistency check.
type ReconciliationResponse struct {
	AccountID         string          `json:"account_id"`
	RecordedBalance   decimal.Decimal `json:"recorded_balance"`
	CalculatedBalance decimal.Decimal `json:"calculated_balance"`
	Difference        decimal.Decimal `json:"difference"`
	IsReconciled      bool            `json:"is_reconciled"`
	CheckedAt         time.Time       `json:"checked_at"`
}

// ReconciliationFromResult converts a use case result to a response.
func ReconciliationFromResult(r *usecase.ReconciliationResult) *ReconciliationResponse {
	return &ReconciliationResponse{
		AccountID:         r.AccountID,
		RecordedBalance:   r.RecordedBalance,
		CalculatedBalance: r.CalculatedBalance,
		Difference:        r.Difference,
		IsReconciled:      r.IsReconciled,
		CheckedAt:         r.CheckedAt,
	}
}

// ReconciliationReportResponse represents a fleet-wide check.
type ReconciliationReportResponse struct {
	TotalAccounts      int                       `json:"total_accounts"`
	ReconciledAccounts int                       `json:"reconciled_accounts"`
	Discrepancies      []*ReconciliationResponse `json:"discrepancies"`
	CheckedAt          time.Time                 `json:"checked_at"`
}

// ReportFromResult converts a use case report to a response.
func ReportFromResult(r *usecase.ReconciliationReport) *ReconciliationReportResponse {
	discrepancies := make([]*ReconciliationResponse, len(r.Discrepancies))
	for i, d := range r.Discrepancies {
		discrepancies[i] = ReconciliationFromResult(d)
	}
	return &ReconciliationReportResponse{
		TotalAccounts:      r.TotalAccounts,
		ReconciledAccounts: r.ReconciledAccounts,
		Discrepancies:      discrepancies,
		CheckedAt:          r.CheckedAt,
	}
}

// ErrorResponse represents an error in API responses.
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message,omitempty"`
}
