package cli

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfigSaveAndLoad(t *testing.T) {
	// Use a temp dir as home
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	cfg := CLIConfig{
		ServerURL: "http://myhost:9090",
		Token:     "sb_testtoken123",
	}

	if err := saveConfig(cfg); err != nil {
		t.Fatalf("save: %v", err)
	}

	path := filepath.Join(tmp, ".config", "sb", "config.yaml")
	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("config file not found: %v", err)
	}
	if perm := info.Mode().Perm(); perm != 0o600 {
		t.Errorf("config mode = %o, want 600", perm)
	}

	loaded, err := loadConfig()
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if loaded != cfg {
		t.Errorf("loaded = %+v, want %+v", loaded, cfg)
	}
}

func TestConfigLoadMissing(t *testing.T) {
	t.Setenv("HOME", t.TempDir())

	cfg, err := loadConfig()
	if err != nil {
		t.Fatalf("load missing: %v", err)
	}
	if cfg != (CLIConfig{}) {
		t.Error("expected zero-value config for missing file")
	}
}

func TestConfigLoadMalformed(t *testing.T) {
	tmp := t.TempDir()
	t.Setenv("HOME", tmp)

	path := filepath.Join(tmp, ".config", "sb", "config.yaml")
	if err := os.MkdirAll(filepath.Dir(path), 0o700); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(path, []byte("server_url: [unclosed"), 0o600); err != nil {
		t.Fatal(err)
	}

	if _, err := loadConfig(); err == nil {
		t.Fatal("expected parse error")
	}
}

func TestGetServerURL(t *testing.T) {
	tests := []struct {
		name   string
		env    string
		config string
		want   string
	}{
		{"env wins", "http://custom:1234", "http://fromconfig:1", "http://custom:1234"},
		{"config", "", "http://fromconfig:1", "http://fromconfig:1"},
		{"default", "", "", "http://localhost:3001"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			t.Setenv("SB_SERVER_URL", tt.env)
			if tt.config != "" {
				if err := saveConfig(CLIConfig{ServerURL: tt.config}); err != nil {
					t.Fatalf("save: %v", err)
				}
			}

			if got := getServerURL(); got != tt.want {
				t.Errorf("url = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestGetToken(t *testing.T) {
	tests := []struct {
		name   string
		env    string
		config string
		want   string
	}{
		{"env wins", "sb_envtoken", "sb_configtoken", "sb_envtoken"},
		{"config", "", "sb_configtoken", "sb_configtoken"},
		{"empty", "", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			t.Setenv("SB_TOKEN", tt.env)
			if tt.config != "" {
				if err := saveConfig(CLIConfig{Token: tt.config}); err != nil {
					t.Fatalf("save: %v", err)
				}
			}

			if got := getToken(); got != tt.want {
				t.Errorf("token = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestActiveTokenSource(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	if err := saveConfig(CLIConfig{Token: "aaa.bbb.ccc"}); err != nil {
		t.Fatalf("save: %v", err)
	}

	t.Setenv("SB_TOKEN", "")
	if token, source := activeToken(); token != "aaa.bbb.ccc" || source != tokenFromConfig {
		t.Errorf("config: token = %q, source = %q", token, source)
	}

	t.Setenv("SB_TOKEN", "sb_fromenv")
	if token, source := activeToken(); token != "sb_fromenv" || source != tokenFromEnv {
		t.Errorf("env: token = %q, source = %q", token, source)
	}
}

func TestDescribeToken(t *testing.T) {
	tests := []struct {
		token  string
		source tokenSource
		want   string
	}{
		{"sb_3f9a1c77d0e2", tokenFromEnv, "sb_3f9a1… (api key, from SB_TOKEN)"},
		{"eyJhbGci.eyJzdWIi.sig", tokenFromConfig, "eyJhbGci… (jwt, from config)"},
		{"short", tokenFromConfig, "short… (unrecognized, from config)"},
	}
	for _, tt := range tests {
		if got := describeToken(tt.token, tt.source); got != tt.want {
			t.Errorf("describeToken(%q) = %q, want %q", tt.token, got, tt.want)
		}
	}
}
