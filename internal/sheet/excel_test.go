package sheet

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/xuri/excelize/v2"
)

func writeTestWorkbook(t *testing.T, rows map[string]string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "routes.xlsx")
	f := excelize.NewFile()
	for cell, value := range rows {
		if err := f.SetCellValue("Sheet1", cell, value); err != nil {
			t.Fatalf("SetCellValue(%s): %v", cell, err)
		}
	}
	if err := f.SaveAs(path); err != nil {
		t.Fatalf("SaveAs: %v", err)
	}
	return path
}

func TestExcelStoreReadAllRows(t *testing.T) {
	path := writeTestWorkbook(t, map[string]string{
		"A1": "title",
		"E1": "link",
		"A2": "first video",
		"E2": "https://youtu.be/abc123",
	})
	store := NewExcelStore(path, "")

	rows, err := store.ReadAllRows(context.Background())
	if err != nil {
		t.Fatalf("ReadAllRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[1][4] != "https://youtu.be/abc123" {
		t.Errorf("link cell = %q", rows[1][4])
	}
}

func TestExcelStoreBatchUpdate(t *testing.T) {
	path := writeTestWorkbook(t, map[string]string{
		"E2": "https://youtu.be/abc123",
		"E3": "https://youtu.be/def456",
	})
	store := NewExcelStore(path, "Sheet1")

	updates := []RowUpdate{
		{Range: "M2:O2", Values: []string{"Depot A", "Route 4", "Gate 8"}},
		{Range: "M3:O3", Values: []string{"Depot B", "", "Gate 9"}},
	}
	applied, err := store.BatchUpdate(context.Background(), updates)
	if err != nil {
		t.Fatalf("BatchUpdate: %v", err)
	}
	if applied != 2 {
		t.Errorf("applied = %d, want 2", applied)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer f.Close()
	for cell, want := range map[string]string{
		"M2": "Depot A", "N2": "Route 4", "O2": "Gate 8",
		"M3": "Depot B", "N3": "", "O3": "Gate 9",
	} {
		got, err := f.GetCellValue("Sheet1", cell)
		if err != nil {
			t.Fatalf("GetCellValue(%s): %v", cell, err)
		}
		if got != want {
			t.Errorf("%s = %q, want %q", cell, got, want)
		}
	}
}

func TestExcelStoreBatchUpdateEmptyIsNoop(t *testing.T) {
	// No workbook on disk at all: an empty commit must not touch the file.
	store := NewExcelStore(filepath.Join(t.TempDir(), "missing.xlsx"), "")
	applied, err := store.BatchUpdate(context.Background(), nil)
	if err != nil {
		t.Fatalf("BatchUpdate(nil): %v", err)
	}
	if applied != 0 {
		t.Errorf("applied = %d, want 0", applied)
	}
}
