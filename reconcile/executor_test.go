package reconcile

import (
	"context"
	"fmt"
	"testing"

	"github.com/leacau/aire-crm-sub001/database"
)

func testOwners() OwnerDirectory {
	return BuildOwnerDirectory([]database.Owner{
		{ID: "owner-a", DisplayName: "Laura Gomez"},
		{ID: "owner-b", DisplayName: "Carlos Ruiz"},
	})
}

func staticSnapshot(invoices []database.Invoice) SnapshotFunc {
	return func() ([]database.Invoice, error) {
		return invoices, nil
	}
}

func TestExecutorCreatesAcceptedRows(t *testing.T) {
	var created []database.Invoice
	executor := NewExecutor(staticSnapshot(nil), testOwners(), func(inv *database.Invoice) (string, error) {
		created = append(created, *inv)
		return "id", nil
	})

	rows := []InvoiceRow{
		{Number: "0001-00000001", OwnerName: "Laura Gomez", IssueDate: "2024-05-01", Amount: amt("100")},
		{Number: "0001-00000002", OwnerName: "Carlos Ruiz", IssueDate: "2024-05-02", Amount: amt("200")},
	}

	report, err := executor.Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Created != 2 || report.Total != 2 {
		t.Errorf("Report = %d created of %d, want 2 of 2", report.Created, report.Total)
	}
	if len(created) != 2 {
		t.Fatalf("Expected 2 invoices persisted, got %d", len(created))
	}
	if created[0].OwnerID != "owner-a" {
		t.Errorf("Expected owner resolved to owner-a, got %q", created[0].OwnerID)
	}
}

func TestExecutorPartialFailure(t *testing.T) {
	calls := 0
	executor := NewExecutor(staticSnapshot(nil), testOwners(), func(inv *database.Invoice) (string, error) {
		calls++
		if inv.Number == "0001-00000003" {
			return "", fmt.Errorf("entity store rejected the payload")
		}
		return "id", nil
	})

	rows := make([]InvoiceRow, 0, 5)
	for i := 1; i <= 5; i++ {
		rows = append(rows, InvoiceRow{
			Number:    fmt.Sprintf("0001-0000000%d", i),
			OwnerName: "Laura Gomez",
			IssueDate: "2024-05-01",
			Amount:    amt("100"),
		})
	}

	report, err := executor.Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Created != 4 {
		t.Errorf("Created = %d, want 4", report.Created)
	}
	if report.Failed != 1 {
		t.Errorf("Failed = %d, want 1", report.Failed)
	}
	if report.Total != 5 {
		t.Errorf("Total = %d, want 5", report.Total)
	}
	if calls != 5 {
		t.Errorf("Create called %d times, want 5 (no retries, no abort)", calls)
	}
	if report.Rows[2].Status != StatusFailed || report.Rows[2].Detail == "" {
		t.Errorf("Row 3 outcome = %+v, want failed with detail", report.Rows[2])
	}
}

func TestExecutorSkipsUnresolvedOwner(t *testing.T) {
	calls := 0
	executor := NewExecutor(staticSnapshot(nil), testOwners(), func(inv *database.Invoice) (string, error) {
		calls++
		return "id", nil
	})

	report, err := executor.Run(context.Background(), []InvoiceRow{
		{Number: "0001-00000001", OwnerName: "Nadie Conocido", IssueDate: "2024-05-01", Amount: amt("100")},
	})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Unresolved != 1 || report.Created != 0 || report.Failed != 0 {
		t.Errorf("Report = %+v, want 1 unresolved and nothing else", report)
	}
	if calls != 0 {
		t.Errorf("Create called %d times for unresolved row, want 0", calls)
	}
}

func TestExecutorCountsMatcherOutcomes(t *testing.T) {
	index := []database.Invoice{
		invoice("0001-00123456", "000100123456", "owner-a", "2024-05-01", "100.00"),
	}
	executor := NewExecutor(staticSnapshot(index), testOwners(), func(inv *database.Invoice) (string, error) {
		return "id", nil
	})

	rows := []InvoiceRow{
		// Same number, owner, date and amount: re-submission.
		{Number: "0001-00123456", OwnerName: "Laura Gomez", IssueDate: "2024-05-01", Amount: amt("100.00")},
		// Same number, different date: collision.
		{Number: "0001-00123456", OwnerName: "Laura Gomez", IssueDate: "2024-06-01", Amount: amt("100.00")},
		// Fresh number.
		{Number: "0001-00999999", OwnerName: "Laura Gomez", IssueDate: "2024-05-01", Amount: amt("50.00")},
	}

	report, err := executor.Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Identical != 1 || report.Conflicts != 1 || report.Created != 1 {
		t.Errorf("Report = %+v, want 1 identical, 1 conflict, 1 created", report)
	}
}

func TestExecutorProgressMonotone(t *testing.T) {
	executor := NewExecutor(staticSnapshot(nil), testOwners(), func(inv *database.Invoice) (string, error) {
		return "id", nil
	})

	var progress [][2]int
	executor.OnProgress(func(processed, total int) {
		progress = append(progress, [2]int{processed, total})
	})

	rows := []InvoiceRow{
		{Number: "1111111", OwnerName: "Laura Gomez", Amount: amt("1")},
		{Number: "2222222", OwnerName: "Laura Gomez", Amount: amt("2")},
		{Number: "3333333", OwnerName: "Laura Gomez", Amount: amt("3")},
	}

	if _, err := executor.Run(context.Background(), rows); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(progress) != 3 {
		t.Fatalf("Expected 3 progress calls, got %d", len(progress))
	}
	for i, p := range progress {
		if p[0] != i+1 || p[1] != 3 {
			t.Errorf("Progress call %d = (%d, %d), want (%d, 3)", i, p[0], p[1], i+1)
		}
	}
}

func TestExecutorCancellation(t *testing.T) {
	calls := 0
	executor := NewExecutor(staticSnapshot(nil), testOwners(), func(inv *database.Invoice) (string, error) {
		calls++
		return "id", nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	report, err := executor.Run(ctx, []InvoiceRow{
		{Number: "1111111", OwnerName: "Laura Gomez", Amount: amt("1")},
	})
	if err == nil {
		t.Fatal("Expected cancellation error")
	}
	if calls != 0 {
		t.Errorf("Create called %d times after cancellation, want 0", calls)
	}
	if report == nil || report.Created != 0 {
		t.Error("Expected partial report with no created rows")
	}
}

func TestExecutorReloadsSnapshotPerRun(t *testing.T) {
	loads := 0
	snapshot := func() ([]database.Invoice, error) {
		loads++
		return nil, nil
	}
	executor := NewExecutor(snapshot, testOwners(), func(inv *database.Invoice) (string, error) {
		return "id", nil
	})

	rows := []InvoiceRow{{Number: "1234567", OwnerName: "Laura Gomez", Amount: amt("1")}}

	if _, err := executor.Run(context.Background(), rows); err != nil {
		t.Fatalf("First run failed: %v", err)
	}
	// The same number passes again: a fresh run starts with a fresh
	// batch set and a fresh snapshot.
	report, err := executor.Run(context.Background(), rows)
	if err != nil {
		t.Fatalf("Second run failed: %v", err)
	}

	if loads != 2 {
		t.Errorf("Snapshot loaded %d times, want 2", loads)
	}
	if report.Created != 1 {
		t.Errorf("Second run created = %d, want 1", report.Created)
	}
}
