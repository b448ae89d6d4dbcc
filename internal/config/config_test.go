package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/shopspring/decimal"

	"github.com/mamadbah2/apigest/internal/config"
)

// isolate clears every variable Load reads so the host environment cannot leak in.
func isolate(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"APP_PORT", "LOG_LEVEL", "STORE_DRIVER", "BOLT_PATH", "STORE_QUOTA_BYTES",
		"MONGODB_URI", "MONGODB_DB_NAME", "MATCH_PRICE_TOLERANCE",
		"WHATSAPP_TOKEN", "WHATSAPP_PHONE_NUMBER_ID", "WHATSAPP_BASE_URL", "WHATSAPP_API_VERSION", "WHATSAPP_RECIPIENT_ID",
		"GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_ID", "REPORT_CRON_SCHEDULE", "TIMEZONE",
	} {
		t.Setenv(key, "")
	}
}

func missingEnvFile(t *testing.T) string {
	return filepath.Join(t.TempDir(), "absent.env")
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)

	cfg, err := config.Load(missingEnvFile(t))
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Server.Port != "8080" || cfg.Store.Driver != config.DriverBolt || cfg.Store.BoltPath != "apigest.db" {
		t.Errorf("unexpected defaults: %+v", cfg)
	}
	if !cfg.Matching.PriceTolerance.Equal(decimal.NewFromInt(2)) {
		t.Errorf("tolerance = %s, want 2", cfg.Matching.PriceTolerance)
	}
	if cfg.Reporting.CronSchedule != "0 20 * * 5" || cfg.Reporting.Timezone != "Europe/Paris" {
		t.Errorf("reporting = %+v", cfg.Reporting)
	}
	if cfg.WhatsApp.Enabled() || cfg.Sheets.Enabled() {
		t.Error("integrations should be disabled without credentials")
	}
}

func TestLoadFromEnvFile(t *testing.T) {
	isolate(t)
	path := filepath.Join(t.TempDir(), ".env")
	content := "STORE_DRIVER=memory\nSTORE_QUOTA_BYTES=1048576\nMATCH_PRICE_TOLERANCE=1.5\n"
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	// godotenv does not override variables already present, even empty ones.
	os.Unsetenv("STORE_DRIVER")
	os.Unsetenv("STORE_QUOTA_BYTES")
	os.Unsetenv("MATCH_PRICE_TOLERANCE")

	cfg, err := config.Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.Store.Driver != config.DriverMemory || cfg.Store.QuotaBytes != 1<<20 {
		t.Errorf("store = %+v", cfg.Store)
	}
	if !cfg.Matching.PriceTolerance.Equal(decimal.RequireFromString("1.5")) {
		t.Errorf("tolerance = %s", cfg.Matching.PriceTolerance)
	}
}

func TestLoadValidation(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{"unknown driver", map[string]string{"STORE_DRIVER": "sqlite"}, "STORE_DRIVER"},
		{"mongo without uri", map[string]string{"STORE_DRIVER": "mongo"}, "MONGODB_URI"},
		{"negative quota", map[string]string{"STORE_QUOTA_BYTES": "-1"}, "STORE_QUOTA_BYTES"},
		{"bad quota", map[string]string{"STORE_QUOTA_BYTES": "lots"}, "STORE_QUOTA_BYTES"},
		{"negative tolerance", map[string]string{"MATCH_PRICE_TOLERANCE": "-0.5"}, "MATCH_PRICE_TOLERANCE"},
		{"whatsapp without recipient", map[string]string{"WHATSAPP_TOKEN": "t", "WHATSAPP_PHONE_NUMBER_ID": "1"}, "WHATSAPP_RECIPIENT_ID"},
		{"sheets without id", map[string]string{"GOOGLE_SHEETS_CREDENTIALS_PATH": "/tmp/creds.json"}, "GOOGLE_SHEET_ID"},
		{"bad cron", map[string]string{"REPORT_CRON_SCHEDULE": "every friday"}, "REPORT_CRON_SCHEDULE"},
		{"bad timezone", map[string]string{"TIMEZONE": "Mars/Olympus"}, "TIMEZONE"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}
			_, err := config.Load(missingEnvFile(t))
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("err = %v, want mention of %s", err, tt.wantErr)
			}
		})
	}
}
