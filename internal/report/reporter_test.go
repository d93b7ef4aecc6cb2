package report

import (
	"testing"
	"time"

	"github.com/birrflow/birrflow/internal/model"
)

func TestSummarize_Empty(t *testing.T) {
	snapshot := Summarize(nil, time.Now())

	if snapshot.TotalTransfers != 0 || snapshot.TotalAmount != 0 {
		t.Errorf("expected all-zero snapshot, got %+v", snapshot)
	}
	if snapshot.TopBanks == nil {
		t.Error("TopBanks should be an empty slice, not nil")
	}
	if len(snapshot.TopBanks) != 0 {
		t.Errorf("TopBanks = %v, want empty", snapshot.TopBanks)
	}
}

func TestSummarize_Counts(t *testing.T) {
	asOf := time.Date(2023, 12, 15, 18, 0, 0, 0, time.UTC)
	today := time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC)
	yesterday := today.AddDate(0, 0, -1)

	records := []model.TransferRecord{
		{BankName: "Telebirr", Amount: 100, Status: model.StatusPendingVerification, Date: today},
		{BankName: "Telebirr", Amount: 200, Status: model.StatusVerified, Date: today},
		{BankName: "Awash Bank", Amount: 300, Status: model.StatusVerified, Date: yesterday},
		{BankName: "Awash Bank", Amount: 50, Status: model.StatusFraud, Date: yesterday},
		{BankName: "Dashen Bank", Amount: 75, Status: model.StatusCancelled, Date: yesterday},
	}

	snapshot := Summarize(records, asOf)

	if snapshot.TotalTransfers != 5 {
		t.Errorf("TotalTransfers = %d, want 5", snapshot.TotalTransfers)
	}
	if snapshot.TotalAmount != 725 {
		t.Errorf("TotalAmount = %v, want 725", snapshot.TotalAmount)
	}
	if snapshot.VerifiedAmount != 500 {
		t.Errorf("VerifiedAmount = %v, want 500", snapshot.VerifiedAmount)
	}
	if snapshot.PendingCount != 1 || snapshot.VerifiedCount != 2 || snapshot.FraudCount != 1 || snapshot.CancelledCount != 1 {
		t.Errorf("status counts = %d/%d/%d/%d, want 1/2/1/1",
			snapshot.PendingCount, snapshot.VerifiedCount, snapshot.FraudCount, snapshot.CancelledCount)
	}
	if snapshot.TodayTransfers != 2 || snapshot.TodayAmount != 300 {
		t.Errorf("today = (%d, %v), want (2, 300)", snapshot.TodayTransfers, snapshot.TodayAmount)
	}
}

func TestSummarize_TopBanks(t *testing.T) {
	asOf := time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC)

	// Six banks; only the top five by amount survive, ties broken by name.
	records := []model.TransferRecord{
		{BankName: "Bank F", Amount: 10, Status: model.StatusVerified, Date: asOf},
		{BankName: "Bank A", Amount: 600, Status: model.StatusVerified, Date: asOf},
		{BankName: "Bank B", Amount: 500, Status: model.StatusVerified, Date: asOf},
		{BankName: "Bank C", Amount: 400, Status: model.StatusVerified, Date: asOf},
		{BankName: "Bank E", Amount: 300, Status: model.StatusVerified, Date: asOf},
		{BankName: "Bank D", Amount: 300, Status: model.StatusVerified, Date: asOf},
	}

	snapshot := Summarize(records, asOf)

	if len(snapshot.TopBanks) != 5 {
		t.Fatalf("len(TopBanks) = %d, want 5", len(snapshot.TopBanks))
	}
	wantOrder := []string{"Bank A", "Bank B", "Bank C", "Bank D", "Bank E"}
	for i, want := range wantOrder {
		if snapshot.TopBanks[i].BankName != want {
			t.Errorf("TopBanks[%d] = %q, want %q", i, snapshot.TopBanks[i].BankName, want)
		}
	}
	// The smallest bank fell off the breakdown.
	for _, b := range snapshot.TopBanks {
		if b.BankName == "Bank F" {
			t.Error("Bank F should not be in the top five")
		}
	}
}

func TestSummarize_AggregatesPerBank(t *testing.T) {
	asOf := time.Date(2023, 12, 15, 0, 0, 0, 0, time.UTC)
	records := []model.TransferRecord{
		{BankName: "Telebirr", Amount: 100, Status: model.StatusVerified, Date: asOf},
		{BankName: "Telebirr", Amount: 150, Status: model.StatusPendingVerification, Date: asOf},
	}

	snapshot := Summarize(records, asOf)

	if len(snapshot.TopBanks) != 1 {
		t.Fatalf("len(TopBanks) = %d, want 1", len(snapshot.TopBanks))
	}
	bank := snapshot.TopBanks[0]
	if bank.Count != 2 || bank.TotalAmount != 250 {
		t.Errorf("TopBanks[0] = %+v, want Count 2 TotalAmount 250", bank)
	}
}
