package robotDataAgent

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"
)

var configEnvKeys = []string{
	"CONFIG_FILE", "DB_HOST", "DB_PORT", "DB_USER", "DB_PASSWORD", "DB_NAME", "API_URL",
	"POLL_INTERVAL_SECONDS", "HTTP_TIMEOUT_SECONDS", "POLL_IMMEDIATELY", "SCHEMA_REQUIRED",
	"KAFKA_BROKER", "KAFKA_TOPIC", "TG_TOKEN", "TG_CHAT_ID", "METRICS_ADDR", "LOG_LEVEL",
}

// isolate clears config variables and moves into an empty directory so no
// stray .env file is picked up.
func isolate(t *testing.T) string {
	t.Helper()
	for _, k := range configEnvKeys {
		t.Setenv(k, "")
	}
	dir := t.TempDir()
	wd, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	if err := os.WriteFile(path, []byte(content), 0o600); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadConfig_Defaults(t *testing.T) {
	isolate(t)
	t.Setenv("API_URL", "http://localhost:8080/data")

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.DBHost != "localhost" || cfg.DBPort != "5432" || cfg.DBUser != "postgres" || cfg.DBName != "robot_data_db" {
		t.Errorf("unexpected database defaults: %+v", cfg)
	}
	if cfg.PollInterval != 10*time.Second {
		t.Errorf("PollInterval = %s", cfg.PollInterval)
	}
	if cfg.HTTPTimeout != 30*time.Second {
		t.Errorf("HTTPTimeout = %s", cfg.HTTPTimeout)
	}
	if cfg.PollImmediately || cfg.SchemaRequired || cfg.KafkaEnabled() {
		t.Error("optional features should be off by default")
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q", cfg.LogLevel)
	}
}

func TestLoadConfig_File(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "agent.yaml", `
host: db.internal
port: "6543"
database: telemetry
user: agent
password: secret
apiUrl: https://robots.example.com/api/data
pollIntervalSeconds: 5
httpTimeoutSeconds: 0
pollImmediately: true
kafkaBroker: kafka:9092
kafkaTopic: robot-data
telegramChatId: -100123
`)

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}

	if cfg.DBHost != "db.internal" || cfg.DBPort != "6543" || cfg.DBName != "telemetry" || cfg.DBUser != "agent" || cfg.DBPassword != "secret" {
		t.Errorf("database settings not applied: %+v", cfg)
	}
	if cfg.APIURL != "https://robots.example.com/api/data" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.PollInterval != 5*time.Second {
		t.Errorf("PollInterval = %s", cfg.PollInterval)
	}
	if cfg.HTTPTimeout != 0 {
		t.Errorf("HTTPTimeout = %s, want disabled", cfg.HTTPTimeout)
	}
	if !cfg.PollImmediately {
		t.Error("pollImmediately not applied")
	}
	if !cfg.KafkaEnabled() {
		t.Error("kafka should be enabled")
	}
	if cfg.TgChatID != -100123 {
		t.Errorf("TgChatID = %d", cfg.TgChatID)
	}
}

func TestLoadConfig_ConfigFileEnv(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "agent.yaml", "apiUrl: http://api:3000/robots\n")
	t.Setenv("CONFIG_FILE", path)

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.APIURL != "http://api:3000/robots" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
}

func TestLoadConfig_EnvOverridesFile(t *testing.T) {
	dir := isolate(t)
	path := writeFile(t, dir, "agent.yaml", `
host: from-file
apiUrl: http://file/api
pollIntervalSeconds: 5
`)
	t.Setenv("DB_HOST", "from-env")
	t.Setenv("POLL_INTERVAL_SECONDS", "20")
	t.Setenv("SCHEMA_REQUIRED", "true")
	t.Setenv("TG_CHAT_ID", "42")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.DBHost != "from-env" {
		t.Errorf("DBHost = %q", cfg.DBHost)
	}
	if cfg.APIURL != "http://file/api" {
		t.Errorf("APIURL = %q", cfg.APIURL)
	}
	if cfg.PollInterval != 20*time.Second {
		t.Errorf("PollInterval = %s", cfg.PollInterval)
	}
	if !cfg.SchemaRequired {
		t.Error("SCHEMA_REQUIRED not applied")
	}
	if cfg.TgChatID != 42 {
		t.Errorf("TgChatID = %d", cfg.TgChatID)
	}
}

func TestLoadConfig_DotEnv(t *testing.T) {
	dir := isolate(t)
	writeFile(t, dir, ".env", "API_URL=http://dotenv/api\nDB_NAME=from_dotenv\n")
	// godotenv does not override variables that are already set
	for _, k := range []string{"API_URL", "DB_NAME"} {
		os.Unsetenv(k)
	}

	cfg, err := LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.APIURL != "http://dotenv/api" || cfg.DBName != "from_dotenv" {
		t.Errorf(".env not applied: %+v", cfg)
	}
}

func TestLoadConfig_Errors(t *testing.T) {
	tests := []struct {
		name    string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "missing api url",
			env:     map[string]string{},
			wantErr: "api url is not set",
		},
		{
			name:    "relative api url",
			env:     map[string]string{"API_URL": "/data"},
			wantErr: "absolute http(s) url",
		},
		{
			name:    "unsupported scheme",
			env:     map[string]string{"API_URL": "ftp://host/data"},
			wantErr: "absolute http(s) url",
		},
		{
			name:    "zero interval",
			env:     map[string]string{"API_URL": "http://h/d", "POLL_INTERVAL_SECONDS": "0"},
			wantErr: "poll interval must be positive",
		},
		{
			name:    "non numeric interval",
			env:     map[string]string{"API_URL": "http://h/d", "POLL_INTERVAL_SECONDS": "ten"},
			wantErr: "POLL_INTERVAL_SECONDS",
		},
		{
			name:    "negative timeout",
			env:     map[string]string{"API_URL": "http://h/d", "HTTP_TIMEOUT_SECONDS": "-1"},
			wantErr: "http timeout must not be negative",
		},
		{
			name:    "bad bool",
			env:     map[string]string{"API_URL": "http://h/d", "POLL_IMMEDIATELY": "maybe"},
			wantErr: "POLL_IMMEDIATELY",
		},
		{
			name:    "kafka topic without broker",
			env:     map[string]string{"API_URL": "http://h/d", "KAFKA_TOPIC": "robots"},
			wantErr: "kafka broker and topic",
		},
		{
			name:    "bad chat id",
			env:     map[string]string{"API_URL": "http://h/d", "TG_CHAT_ID": "abc"},
			wantErr: "TG_CHAT_ID",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			isolate(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig("")
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error %q does not contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadConfig_MissingFile(t *testing.T) {
	isolate(t)
	t.Setenv("API_URL", "http://h/d")

	if _, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml")); err == nil {
		t.Fatal("expected error for missing config file")
	}
}

func TestDSN(t *testing.T) {
	cfg := &Config{DBHost: "h", DBPort: "1", DBUser: "u", DBPassword: "p"}
	want := "host=h port=1 user=u password=p dbname=postgres sslmode=disable"
	if got := cfg.DSN("postgres"); got != want {
		t.Errorf("DSN = %q, want %q", got, want)
	}
}
