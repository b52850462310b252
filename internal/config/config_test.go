package config

import (
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(smtpUserEnv, "")
	t.Setenv(smtpPassEnv, "")
	t.Setenv(emailToEnv, "")

	cfg := Load()

	if cfg.Logging.Level != "info" {
		t.Errorf("logging level = %q", cfg.Logging.Level)
	}
	if cfg.Pipeline.SourceTimeout() != 60*time.Second {
		t.Errorf("source timeout = %v", cfg.Pipeline.SourceTimeout())
	}
	if cfg.Pipeline.RunTimeout() != 10*time.Minute {
		t.Errorf("run timeout = %v", cfg.Pipeline.RunTimeout())
	}
	if len(cfg.Market.Indices) != 3 {
		t.Errorf("indices = %d", len(cfg.Market.Indices))
	}
	if len(cfg.Feeds.FigureMirrors["elonmusk"]) == 0 {
		t.Error("default figure mirrors missing")
	}
	if cfg.Mail.Configured() {
		t.Error("mail should not be configured without credentials")
	}
}

func TestLoadAppliesEnvOverrides(t *testing.T) {
	t.Setenv(configPathEnv, "")
	t.Setenv(smtpHostEnv, "smtp.example.com")
	t.Setenv(smtpPortEnv, "2525")
	t.Setenv(smtpUserEnv, "digest@example.com")
	t.Setenv(smtpPassEnv, "secret")
	t.Setenv(emailToEnv, "a@example.com, b@example.com")
	t.Setenv(finnhubKeyEnv, "fh-key")
	t.Setenv(llmModelEnv, "gpt-4o")

	cfg := Load()
	if cfg.Mail.Host != "smtp.example.com" || cfg.Mail.Port != 2525 {
		t.Errorf("mail host/port = %q/%d", cfg.Mail.Host, cfg.Mail.Port)
	}
	if !cfg.Mail.Configured() {
		t.Error("mail should be configured via env")
	}
	if got := cfg.Mail.RecipientList(); !reflect.DeepEqual(got, []string{"a@example.com", "b@example.com"}) {
		t.Errorf("recipients = %v", got)
	}
	if cfg.Market.FinnhubAPIKey != "fh-key" {
		t.Errorf("finnhub key = %q", cfg.Market.FinnhubAPIKey)
	}
	if cfg.LLM.Model != "gpt-4o" {
		t.Errorf("model = %q", cfg.LLM.Model)
	}
}

func TestLoadMergesYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	raw := []byte(`
logging:
  level: debug
scheduler:
  cronExpression: "30 7 * * *"
  timezone: America/New_York
pipeline:
  maxItemsPerFeed: 5
market:
  surgeThreshold: 5.5
feeds:
  space:
    - https://example.com/space.xml
`)
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()
	if cfg.Logging.Level != "debug" {
		t.Errorf("level = %q", cfg.Logging.Level)
	}
	if cfg.Scheduler.CronExpression != "30 7 * * *" {
		t.Errorf("cron = %q", cfg.Scheduler.CronExpression)
	}
	if cfg.Scheduler.Location().String() != "America/New_York" {
		t.Errorf("timezone = %q", cfg.Scheduler.Location().String())
	}
	if cfg.Pipeline.MaxItemsPerFeed != 5 {
		t.Errorf("maxItemsPerFeed = %d", cfg.Pipeline.MaxItemsPerFeed)
	}
	if cfg.Market.SurgeThreshold != 5.5 {
		t.Errorf("surgeThreshold = %v", cfg.Market.SurgeThreshold)
	}
	if !reflect.DeepEqual(cfg.Feeds.Space, []string{"https://example.com/space.xml"}) {
		t.Errorf("space feeds = %v", cfg.Feeds.Space)
	}
	// Sections the file omits keep their defaults.
	if cfg.Pipeline.FetchConcurrency != 4 {
		t.Errorf("fetchConcurrency = %d", cfg.Pipeline.FetchConcurrency)
	}
	if len(cfg.Feeds.Fed) == 0 {
		t.Error("fed feeds default lost")
	}
}

func TestLoadSurvivesBrokenConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte("{not yaml"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv(configPathEnv, path)

	cfg := Load()
	if cfg.Logging.Level != "info" {
		t.Errorf("level = %q, want defaults on parse failure", cfg.Logging.Level)
	}
}

func TestBindTimezoneFallsBackOnUnknownZone(t *testing.T) {
	cfg := defaultConfig()
	cfg.Scheduler.Timezone = "Mars/Olympus_Mons"
	cfg.bindTimezone()
	if cfg.Scheduler.Location().String() != "UTC" {
		t.Errorf("location = %q, want UTC fallback", cfg.Scheduler.Location().String())
	}
}
