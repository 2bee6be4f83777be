package sheet

import (
	"context"
	"fmt"

	"google.golang.org/api/option"
	"google.golang.org/api/sheets/v4"

	"route-insights-go/internal/logger"
)

// GoogleStore reads and writes a Google Sheets spreadsheet through the
// Sheets API, authenticated with a service-account key file.
type GoogleStore struct {
	svc           *sheets.Service
	spreadsheetID string
	worksheet     string
}

func NewGoogleStore(ctx context.Context, spreadsheetID, worksheet, credentialsFile string) (*GoogleStore, error) {
	svc, err := sheets.NewService(ctx,
		option.WithCredentialsFile(credentialsFile),
		option.WithScopes(sheets.SpreadsheetsScope),
	)
	if err != nil {
		return nil, fmt.Errorf("sheets service: %w", err)
	}
	if worksheet == "" {
		worksheet = "Sheet1"
	}
	return &GoogleStore{svc: svc, spreadsheetID: spreadsheetID, worksheet: worksheet}, nil
}

func (s *GoogleStore) ReadAllRows(ctx context.Context) ([][]string, error) {
	resp, err := s.svc.Spreadsheets.Values.Get(s.spreadsheetID, s.worksheet).Context(ctx).Do()
	if err != nil {
		return nil, fmt.Errorf("read rows: %w", err)
	}
	rows := make([][]string, 0, len(resp.Values))
	for _, r := range resp.Values {
		row := make([]string, 0, len(r))
		for _, cell := range r {
			row = append(row, fmt.Sprint(cell))
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func (s *GoogleStore) BatchUpdate(ctx context.Context, updates []RowUpdate) (int, error) {
	if len(updates) == 0 {
		return 0, nil
	}
	log := logger.New().WithField("component", "sheet.google")

	data := make([]*sheets.ValueRange, 0, len(updates))
	for _, u := range updates {
		values := make([]interface{}, len(u.Values))
		for i, v := range u.Values {
			values[i] = v
		}
		data = append(data, &sheets.ValueRange{
			Range:  fmt.Sprintf("%s!%s", s.worksheet, u.Range),
			Values: [][]interface{}{values},
		})
	}
	req := &sheets.BatchUpdateValuesRequest{
		ValueInputOption: "RAW",
		Data:             data,
	}
	resp, err := s.svc.Spreadsheets.Values.BatchUpdate(s.spreadsheetID, req).Context(ctx).Do()
	if err != nil {
		return 0, fmt.Errorf("batch update: %w", err)
	}
	log.WithField("updated_rows", resp.TotalUpdatedRows).Info("bulk write applied")
	return int(resp.TotalUpdatedRows), nil
}
