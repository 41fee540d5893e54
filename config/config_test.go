package config

import (
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/mitchellh/go-homedir"

	"github.com/jpalmerr/wastlwatch"
)

func TestParse_MinimalConfig(t *testing.T) {
	yaml := `
pages:
  - name: Test
    url: https://example.com/Land_EinsatzAktuell.asp
    type: incidents
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	// check defaults applied
	if cfg.Port != 8080 {
		t.Errorf("Port = %d, want 8080", cfg.Port)
	}
	if cfg.UpdateInterval != 60 {
		t.Errorf("UpdateInterval = %d, want 60", cfg.UpdateInterval)
	}
	if cfg.Interval() != time.Hour {
		t.Errorf("Interval() = %v, want 1h", cfg.Interval())
	}
	if len(cfg.Pages) != 1 {
		t.Errorf("len(Pages) = %d, want 1", len(cfg.Pages))
	}
}

func TestParse_FullPageConfig(t *testing.T) {
	yaml := `
title: Feuerwehr Krems
port: 9090
update_interval: 30
max_concurrency: 2

pages:
  - name: FF im Einsatz
    url: https://example.com/Land_FFimEinsatz.asp
    type: Departments
    timeout: 5s
    headers:
      Authorization: Bearer token123
      X-Custom: value
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Title != "Feuerwehr Krems" {
		t.Errorf("Title = %q", cfg.Title)
	}
	if cfg.Port != 9090 {
		t.Errorf("Port = %d, want 9090", cfg.Port)
	}
	if cfg.Interval() != 30*time.Minute {
		t.Errorf("Interval() = %v, want 30m", cfg.Interval())
	}
	if cfg.MaxConcurrency != 2 {
		t.Errorf("MaxConcurrency = %d, want 2", cfg.MaxConcurrency)
	}

	p := cfg.Pages[0]
	if p.Name != "FF im Einsatz" {
		t.Errorf("Name = %q, want %q", p.Name, "FF im Einsatz")
	}
	if p.Type != wastlwatch.Departments {
		t.Errorf("Type = %q, want %q", p.Type, wastlwatch.Departments)
	}
	if p.Timeout.Duration() != 5*time.Second {
		t.Errorf("Timeout = %v, want 5s", p.Timeout.Duration())
	}
	if p.Headers["Authorization"] != "Bearer token123" {
		t.Errorf("Headers[Authorization] = %q, want %q", p.Headers["Authorization"], "Bearer token123")
	}
}

func TestParse_Region(t *testing.T) {
	cfg, err := Parse([]byte("region: lower_austria\n"))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}
	if cfg.Region != "lower_austria" {
		t.Errorf("Region = %q", cfg.Region)
	}
	if len(cfg.Pages) != 0 {
		t.Errorf("len(Pages) = %d, want 0", len(cfg.Pages))
	}
}

func TestParse_EnvVarSubstitution(t *testing.T) {
	t.Setenv("TEST_WASTL_HOST", "wastl.test.at")
	t.Setenv("TEST_WASTL_TOKEN", "secret123")

	yaml := `
pages:
  - name: Test
    url: https://${TEST_WASTL_HOST}/Land_EinsatzAktuell.asp
    type: incidents
    headers:
      Authorization: "Bearer ${TEST_WASTL_TOKEN}"
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	p := cfg.Pages[0]
	if p.URL != "https://wastl.test.at/Land_EinsatzAktuell.asp" {
		t.Errorf("URL = %q", p.URL)
	}
	if p.Headers["Authorization"] != "Bearer secret123" {
		t.Errorf("Headers[Authorization] = %q, want 'Bearer secret123'", p.Headers["Authorization"])
	}
}

func TestParse_EnvVarDefault(t *testing.T) {
	yaml := `
pages:
  - name: Test
    url: https://${UNSET_WASTL_HOST:-fallback.example.com}/aktuell.asp
    type: incidents
`
	cfg, err := Parse([]byte(yaml))
	if err != nil {
		t.Fatalf("Parse() error = %v", err)
	}

	if cfg.Pages[0].URL != "https://fallback.example.com/aktuell.asp" {
		t.Errorf("URL = %q, want https://fallback.example.com/aktuell.asp", cfg.Pages[0].URL)
	}
}

func TestParse_EnvVarMissing(t *testing.T) {
	// MISSING_WASTL_VAR is expected to not exist in the environment
	yaml := `
pages:
  - name: Test
    url: https://${MISSING_WASTL_VAR}/aktuell.asp
    type: incidents
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("Parse() expected error for missing env var, got nil")
	}
	if !strings.Contains(err.Error(), "MISSING_WASTL_VAR") {
		t.Errorf("error should mention MISSING_WASTL_VAR: %v", err)
	}
}

func TestParse_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		wantErr string
	}{
		{
			name:    "empty config",
			yaml:    "title: nothing\n",
			wantErr: "a region or at least one page",
		},
		{
			name:    "unknown region",
			yaml:    "region: atlantis\n",
			wantErr: `unknown region "atlantis"`,
		},
		{
			name:    "region without pages",
			yaml:    "region: tyrol\n",
			wantErr: `region "tyrol" has no pages`,
		},
		{
			name: "missing name",
			yaml: `
pages:
  - url: https://example.com
    type: incidents
`,
			wantErr: "name is required",
		},
		{
			name: "missing url",
			yaml: `
pages:
  - name: Test
    type: incidents
`,
			wantErr: "url is required",
		},
		{
			name: "missing type",
			yaml: `
pages:
  - name: Test
    url: https://example.com
`,
			wantErr: "type is required",
		},
		{
			name: "unknown type",
			yaml: `
pages:
  - name: Test
    url: https://example.com
    type: vehicles
`,
			wantErr: "unknown page type",
		},
		{
			name: "ftp scheme",
			yaml: `
pages:
  - name: Test
    url: ftp://example.com/file
    type: incidents
`,
			wantErr: "url scheme must be http or https",
		},
		{
			name: "no scheme",
			yaml: `
pages:
  - name: Test
    url: example.com/aktuell.asp
    type: incidents
`,
			wantErr: "url scheme must be http or https",
		},
		{
			name: "invalid port",
			yaml: `
port: 70000
region: lower_austria
`,
			wantErr: "port must be between",
		},
		{
			name: "negative concurrency",
			yaml: `
max_concurrency: -1
region: lower_austria
`,
			wantErr: "max_concurrency cannot be negative",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			if err == nil {
				t.Fatal("Parse() expected error, got nil")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %q, want containing %q", err.Error(), tt.wantErr)
			}
		})
	}
}

func TestParse_UpdateIntervalBounds(t *testing.T) {
	tests := []struct {
		interval int
		wantErr  bool
	}{
		{interval: 14, wantErr: true},
		{interval: 15},
		{interval: 60},
		{interval: 600},
		{interval: 601, wantErr: true},
		{interval: -5, wantErr: true},
	}

	for _, tt := range tests {
		yaml := "region: lower_austria\nupdate_interval: " + strconv.Itoa(tt.interval) + "\n"
		_, err := Parse([]byte(yaml))
		if tt.wantErr && err == nil {
			t.Errorf("update_interval %d: expected error", tt.interval)
		}
		if !tt.wantErr && err != nil {
			t.Errorf("update_interval %d: unexpected error %v", tt.interval, err)
		}
	}
}

func TestParse_TimeoutValidation(t *testing.T) {
	tests := []struct {
		name    string
		timeout string
		wantErr bool
	}{
		{"one second", "1s", false},
		{"thirty seconds", "30s", false},
		{"below minimum", "500ms", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			yaml := `
pages:
  - name: Test
    url: https://example.com
    type: incidents
    timeout: ` + tt.timeout + "\n"
			_, err := Parse([]byte(yaml))
			if tt.wantErr && err == nil {
				t.Error("Parse() expected error, got nil")
			}
			if !tt.wantErr && err != nil {
				t.Errorf("Parse() error = %v", err)
			}
		})
	}
}

func TestParse_InvalidYAML(t *testing.T) {
	_, err := Parse([]byte("pages: [unclosed"))
	if err == nil {
		t.Fatal("Parse() expected error for invalid YAML")
	}
	if !strings.Contains(err.Error(), "failed to parse YAML") {
		t.Errorf("error = %v", err)
	}
}

func TestParse_InvalidDuration(t *testing.T) {
	yaml := `
pages:
  - name: Test
    url: https://example.com
    type: incidents
    timeout: soon
`
	_, err := Parse([]byte(yaml))
	if err == nil {
		t.Fatal("Parse() expected error for invalid duration")
	}
	if !strings.Contains(err.Error(), "invalid duration") {
		t.Errorf("error = %v", err)
	}
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "wastlwatch.yaml")
	if err := os.WriteFile(path, []byte("region: lower_austria\nport: 9000\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Port != 9000 {
		t.Errorf("Port = %d, want 9000", cfg.Port)
	}
}

func TestLoad_HomeDir(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	homedir.DisableCache = true
	t.Cleanup(func() { homedir.DisableCache = false })

	if err := os.WriteFile(filepath.Join(home, "wastlwatch.yaml"), []byte("region: lower_austria\n"), 0o600); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load("~/wastlwatch.yaml")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Region != "lower_austria" {
		t.Errorf("Region = %q", cfg.Region)
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	if err == nil {
		t.Fatal("Load() expected error for missing file")
	}
	if !strings.Contains(err.Error(), "failed to read config file") {
		t.Errorf("error = %v", err)
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("TEST_VAR", "value")
	t.Setenv("EMPTY_VAR", "") // set but empty

	tests := []struct {
		name    string
		input   string
		want    string
		wantErr bool
	}{
		{"no vars", "plain text", "plain text", false},
		{"simple var", "${TEST_VAR}", "value", false},
		{"var in text", "prefix ${TEST_VAR} suffix", "prefix value suffix", false},
		{"multiple vars", "${TEST_VAR}-${TEST_VAR}", "value-value", false},
		{"with default (var set)", "${TEST_VAR:-default}", "value", false},
		{"with default (var unset)", "${UNSET:-default}", "default", false},
		{"missing required", "${MISSING}", "", true},
		{"empty default (var unset)", "${UNSET:-}", "", false},
		{"set but empty var", "${EMPTY_VAR}", "", false},
		{"set but empty with default", "${EMPTY_VAR:-fallback}", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			// UNSET and MISSING are expected to not exist in environment
			got, err := expandEnvVars(tt.input)
			if tt.wantErr {
				if err == nil {
					t.Fatal("expandEnvVars() expected error, got nil")
				}
				return
			}
			if err != nil {
				t.Fatalf("expandEnvVars() error = %v", err)
			}
			if got != tt.want {
				t.Errorf("expandEnvVars() = %q, want %q", got, tt.want)
			}
		})
	}
}
