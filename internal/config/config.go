package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"route-insights-go/internal/sheet"
)

// Sheet backends.
const (
	BackendGoogle = "google"
	BackendExcel  = "xlsx"
)

// Config is the full run configuration, read from the environment once at
// process start. A run never starts with an invalid Config.
type Config struct {
	Backend       string
	SpreadsheetID string
	WorkbookPath  string
	Worksheet     string

	// ServiceAccountKey holds the inline service-account JSON; it is
	// materialized as a run-scoped temp file by the entrypoint.
	ServiceAccountKey string

	GeminiAPIKey string
	GeminiModel  string

	// Languages is the transcript language preference order.
	Languages []string

	URLColumn        int
	OutputStart      int
	WaypointCapacity int
}

func Load() (Config, error) {
	cfg := Config{
		Backend:           envOr("SHEET_BACKEND", BackendGoogle),
		SpreadsheetID:     os.Getenv("SPREADSHEET_ID"),
		WorkbookPath:      os.Getenv("WORKBOOK_PATH"),
		Worksheet:         os.Getenv("WORKSHEET"),
		ServiceAccountKey: os.Getenv("GCP_SERVICE_ACCOUNT_KEY"),
		GeminiAPIKey:      os.Getenv("GEMINI_API_KEY"),
		GeminiModel:       envOr("GEMINI_MODEL", "gemini-2.5-flash"),
		Languages:         splitList(envOr("TRANSCRIPT_LANGS", "ja,en")),
		URLColumn:         envInt("URL_COLUMN", 4),
		OutputStart:       envInt("OUTPUT_START_COLUMN", 12),
		WaypointCapacity:  envInt("WAYPOINT_CAPACITY", 10),
	}

	switch cfg.Backend {
	case BackendGoogle:
		if cfg.SpreadsheetID == "" {
			return Config{}, fmt.Errorf("SPREADSHEET_ID not set")
		}
		if cfg.ServiceAccountKey == "" {
			return Config{}, fmt.Errorf("GCP_SERVICE_ACCOUNT_KEY not set")
		}
	case BackendExcel:
		if cfg.WorkbookPath == "" {
			return Config{}, fmt.Errorf("WORKBOOK_PATH not set")
		}
	default:
		return Config{}, fmt.Errorf("unknown SHEET_BACKEND %q", cfg.Backend)
	}
	if cfg.GeminiAPIKey == "" {
		return Config{}, fmt.Errorf("GEMINI_API_KEY not set")
	}
	if len(cfg.Languages) == 0 {
		return Config{}, fmt.Errorf("TRANSCRIPT_LANGS is empty")
	}
	if cfg.WaypointCapacity < 1 {
		return Config{}, fmt.Errorf("WAYPOINT_CAPACITY must be at least 1, got %d", cfg.WaypointCapacity)
	}
	if cfg.URLColumn < 0 || cfg.OutputStart < 0 {
		return Config{}, fmt.Errorf("column indices must not be negative")
	}
	return cfg, nil
}

// Layout maps the configured column indices onto the sheet layout.
func (c Config) Layout() sheet.Layout {
	return sheet.Layout{
		URLColumn:   c.URLColumn,
		OutputStart: c.OutputStart,
		Capacity:    c.WaypointCapacity,
	}
}

func envOr(k, def string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return def
}

func envInt(k string, def int) int {
	v := os.Getenv(k)
	if v == "" {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
