package config

import "testing"

func setGoogleEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SHEET_BACKEND", BackendGoogle)
	t.Setenv("SPREADSHEET_ID", "sheet-123")
	t.Setenv("GCP_SERVICE_ACCOUNT_KEY", `{"type":"service_account"}`)
	t.Setenv("GEMINI_API_KEY", "key-456")
	// Make sure ambient env vars don't leak into the defaults under test.
	for _, k := range []string{"GEMINI_MODEL", "TRANSCRIPT_LANGS", "URL_COLUMN",
		"OUTPUT_START_COLUMN", "WAYPOINT_CAPACITY", "WORKSHEET"} {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	setGoogleEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.GeminiModel != "gemini-2.5-flash" {
		t.Errorf("GeminiModel = %q", cfg.GeminiModel)
	}
	if len(cfg.Languages) != 2 || cfg.Languages[0] != "ja" || cfg.Languages[1] != "en" {
		t.Errorf("Languages = %v, want [ja en]", cfg.Languages)
	}
	layout := cfg.Layout()
	if layout.URLColumn != 4 || layout.OutputStart != 12 || layout.Capacity != 10 {
		t.Errorf("layout = %+v, want E link column and M..X output block", layout)
	}
}

func TestLoadMissingCredentialsIsFatal(t *testing.T) {
	setGoogleEnv(t)
	t.Setenv("GCP_SERVICE_ACCOUNT_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load succeeded without service-account key")
	}
}

func TestLoadMissingGeminiKeyIsFatal(t *testing.T) {
	setGoogleEnv(t)
	t.Setenv("GEMINI_API_KEY", "")

	if _, err := Load(); err == nil {
		t.Fatal("Load succeeded without Gemini key")
	}
}

func TestLoadExcelBackend(t *testing.T) {
	t.Setenv("SHEET_BACKEND", BackendExcel)
	t.Setenv("WORKBOOK_PATH", "routes.xlsx")
	t.Setenv("GEMINI_API_KEY", "key-456")
	t.Setenv("TRANSCRIPT_LANGS", "en")
	t.Setenv("WAYPOINT_CAPACITY", "4")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.WaypointCapacity != 4 {
		t.Errorf("WaypointCapacity = %d, want 4", cfg.WaypointCapacity)
	}
	if len(cfg.Languages) != 1 || cfg.Languages[0] != "en" {
		t.Errorf("Languages = %v, want [en]", cfg.Languages)
	}
}

func TestLoadUnknownBackend(t *testing.T) {
	t.Setenv("SHEET_BACKEND", "csv")
	t.Setenv("GEMINI_API_KEY", "key-456")

	if _, err := Load(); err == nil {
		t.Fatal("Load accepted unknown backend")
	}
}
