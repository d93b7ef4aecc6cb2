// Package report computes aggregate views over transfer records.
package report

import (
	"sort"
	"time"

	"github.com/birrflow/birrflow/internal/model"
)

// topBankCount bounds the per-provider breakdown in a snapshot.
const topBankCount = 5

// Summarize recomputes an AggregateSnapshot from a consistent snapshot of
// records as of the given day. It is pure: empty input yields an all-zero
// snapshot, never an error.
func Summarize(records []model.TransferRecord, asOf time.Time) model.AggregateSnapshot {
	snapshot := model.AggregateSnapshot{
		TopBanks: []model.BankSummary{},
	}
	day := asOf.Format("2006-01-02")

	byBank := make(map[string]*model.BankSummary)
	for i := range records {
		record := &records[i]

		snapshot.TotalTransfers++
		snapshot.TotalAmount += record.Amount

		switch record.Status {
		case model.StatusPendingVerification:
			snapshot.PendingCount++
		case model.StatusVerified:
			snapshot.VerifiedCount++
			snapshot.VerifiedAmount += record.Amount
		case model.StatusFraud:
			snapshot.FraudCount++
		case model.StatusCancelled:
			snapshot.CancelledCount++
		}

		if record.Date.Format("2006-01-02") == day {
			snapshot.TodayTransfers++
			snapshot.TodayAmount += record.Amount
		}

		bank, ok := byBank[record.BankName]
		if !ok {
			bank = &model.BankSummary{BankName: record.BankName}
			byBank[record.BankName] = bank
		}
		bank.Count++
		bank.TotalAmount += record.Amount
	}

	for _, bank := range byBank {
		snapshot.TopBanks = append(snapshot.TopBanks, *bank)
	}
	// Descending by amount; ties broken by name ascending for determinism.
	sort.Slice(snapshot.TopBanks, func(i, j int) bool {
		a, b := snapshot.TopBanks[i], snapshot.TopBanks[j]
		if a.TotalAmount != b.TotalAmount {
			return a.TotalAmount > b.TotalAmount
		}
		return a.BankName < b.BankName
	})
	if len(snapshot.TopBanks) > topBankCount {
		snapshot.TopBanks = snapshot.TopBanks[:topBankCount]
	}

	return snapshot
}
