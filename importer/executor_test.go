package importer

import (
	"context"
	"fmt"
	"testing"

	"github.com/leacau/aire-crm-sub001/database"
	"github.com/leacau/aire-crm-sub001/tabular"
)

func importFixture(rows [][]string) ([]tabular.RawRecord, *Mapping) {
	table := tabular.NewTable([]string{"Nombre", "E-Mail", "Asesor"}, rows)
	mapping := NewInferencer().Infer(table.Headers, nil)
	return table.Rows, mapping
}

func TestExecutorBuildsPayloadFromMapping(t *testing.T) {
	rows, mapping := importFixture([][]string{
		{"Quimica del Sur", "ventas@qds.com", "Laura Gomez"},
	})

	var created []*database.Client
	executor := NewExecutor(testDirectory(), func(c *database.Client) (string, error) {
		created = append(created, c)
		return "id-1", nil
	})

	report, err := executor.Run(context.Background(), rows, mapping)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Created != 1 || report.Total != 1 {
		t.Errorf("Report = %+v, want 1 created of 1", report)
	}
	if len(created) != 1 {
		t.Fatalf("Expected 1 client persisted, got %d", len(created))
	}
	if created[0].DisplayName != "Quimica del Sur" {
		t.Errorf("DisplayName = %q", created[0].DisplayName)
	}
	if created[0].Email != "ventas@qds.com" {
		t.Errorf("Email = %q", created[0].Email)
	}
	if created[0].OwnerID != "owner-a" {
		t.Errorf("OwnerID = %q, want owner-a", created[0].OwnerID)
	}
}

func TestExecutorPartialFailure(t *testing.T) {
	rows, mapping := importFixture([][]string{
		{"Cliente 1", "", "Laura Gomez"},
		{"Cliente 2", "", "Laura Gomez"},
		{"Cliente 3", "", "Laura Gomez"},
		{"Cliente 4", "", "Laura Gomez"},
		{"Cliente 5", "", "Laura Gomez"},
	})

	calls := 0
	executor := NewExecutor(testDirectory(), func(c *database.Client) (string, error) {
		calls++
		if c.DisplayName == "Cliente 3" {
			return "", fmt.Errorf("entity store rejected the payload")
		}
		return "id", nil
	})

	report, err := executor.Run(context.Background(), rows, mapping)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Created != 4 || report.Failed != 1 || report.Total != 5 {
		t.Errorf("Report = %+v, want 4 created, 1 failed of 5", report)
	}
	if calls != 5 {
		t.Errorf("Create called %d times, want 5 (no retries, no abort)", calls)
	}
	if report.Rows[2].Detail == "" {
		t.Error("Failed row carries no detail")
	}
}

func TestExecutorSkipsUnresolvedAdvisor(t *testing.T) {
	rows, mapping := importFixture([][]string{
		{"Cliente 1", "", "Nadie Conocido"},
		{"Cliente 2", "", "Laura Gomez"},
	})

	calls := 0
	executor := NewExecutor(testDirectory(), func(c *database.Client) (string, error) {
		calls++
		return "id", nil
	})

	report, err := executor.Run(context.Background(), rows, mapping)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if report.Unresolved != 1 || report.Created != 1 {
		t.Errorf("Report = %+v, want 1 unresolved, 1 created", report)
	}
	if calls != 1 {
		t.Errorf("Create called %d times, want 1", calls)
	}
}

func TestExecutorProgress(t *testing.T) {
	rows, mapping := importFixture([][]string{
		{"Cliente 1", "", "Laura Gomez"},
		{"Cliente 2", "", "Laura Gomez"},
	})

	executor := NewExecutor(testDirectory(), func(c *database.Client) (string, error) {
		return "id", nil
	})

	var progress [][2]int
	executor.OnProgress(func(processed, total int) {
		progress = append(progress, [2]int{processed, total})
	})

	if _, err := executor.Run(context.Background(), rows, mapping); err != nil {
		t.Fatalf("Run failed: %v", err)
	}

	if len(progress) != 2 {
		t.Fatalf("Expected 2 progress calls, got %d", len(progress))
	}
	if progress[0] != [2]int{1, 2} || progress[1] != [2]int{2, 2} {
		t.Errorf("Progress = %v, want [(1,2), (2,2)]", progress)
	}
}

func TestExecutorCancellation(t *testing.T) {
	rows, mapping := importFixture([][]string{
		{"Cliente 1", "", "Laura Gomez"},
	})

	executor := NewExecutor(testDirectory(), func(c *database.Client) (string, error) {
		t.Fatal("Create called after cancellation")
		return "", nil
	})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	if _, err := executor.Run(ctx, rows, mapping); err == nil {
		t.Fatal("Expected cancellation error")
	}
}
