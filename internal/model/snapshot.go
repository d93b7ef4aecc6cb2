package model

// BankSummary aggregates transfer volume for a single provider.
type BankSummary struct {
	BankName    string  `json:"bank_name"`
	Count       int     `json:"count"`
	TotalAmount float64 `json:"total_amount"`
}

// AggregateSnapshot is a derived view over a user's transfer records.
// It is recomputed on demand and never persisted.
type AggregateSnapshot struct {
	TotalTransfers int           `json:"total_transfers"`
	TotalAmount    float64       `json:"total_amount_etb"`
	VerifiedAmount float64       `json:"verified_amount"`
	PendingCount   int           `json:"pending_count"`
	VerifiedCount  int           `json:"verified_count"`
	FraudCount     int           `json:"fraud_count"`
	CancelledCount int           `json:"cancelled_count"`
	TodayTransfers int           `json:"today_transfers"`
	TodayAmount    float64       `json:"today_amount"`
	TopBanks       []BankSummary `json:"top_banks"`
}
