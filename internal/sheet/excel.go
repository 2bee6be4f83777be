package sheet

import (
	"context"
	"fmt"
	"strings"

	"github.com/xuri/excelize/v2"
)

// ExcelStore is the local workbook backend. Reads open the file fresh each
// time; a BatchUpdate applies all cell writes in memory and saves once, which
// is the bulk commit for this backend.
type ExcelStore struct {
	path      string
	worksheet string
}

func NewExcelStore(path, worksheet string) *ExcelStore {
	return &ExcelStore{path: path, worksheet: worksheet}
}

func (s *ExcelStore) ReadAllRows(ctx context.Context) ([][]string, error) {
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	name, err := s.resolveSheet(f)
	if err != nil {
		return nil, err
	}
	rows, err := f.GetRows(name)
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	return rows, nil
}

func (s *ExcelStore) BatchUpdate(ctx context.Context, updates []RowUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	f, err := excelize.OpenFile(s.path)
	if err != nil {
		return 0, fmt.Errorf("open workbook: %w", err)
	}
	defer f.Close()

	name, err := s.resolveSheet(f)
	if err != nil {
		return 0, err
	}
	for _, u := range updates {
		startCol, row, err := rangeStart(u.Range)
		if err != nil {
			return 0, err
		}
		for i, v := range u.Values {
			cell, err := excelize.CoordinatesToCellName(startCol+i, row)
			if err != nil {
				return 0, fmt.Errorf("cell name for %s offset %d: %w", u.Range, i, err)
			}
			if err := f.SetCellValue(name, cell, v); err != nil {
				return 0, fmt.Errorf("set %s: %w", cell, err)
			}
		}
	}
	if err := f.Save(); err != nil {
		return 0, fmt.Errorf("save workbook: %w", err)
	}
	return len(updates), nil
}

func (s *ExcelStore) resolveSheet(f *excelize.File) (string, error) {
	if s.worksheet != "" {
		return s.worksheet, nil
	}
	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return "", fmt.Errorf("workbook has no sheets")
	}
	return sheets[0], nil
}

// rangeStart parses the first cell of an A1 range ("M2:X2") into a 1-based
// column number and row number.
func rangeStart(a1 string) (int, int, error) {
	start, _, _ := strings.Cut(a1, ":")
	col, row, err := excelize.CellNameToCoordinates(start)
	if err != nil {
		return 0, 0, fmt.Errorf("parse range %q: %w", a1, err)
	}
	return col, row, nil
}
