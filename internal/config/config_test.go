package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.Mode != "stdio" {
		t.Errorf("Expected default mode to be 'stdio', got '%s'", cfg.Mode)
	}

	if cfg.Host != "127.0.0.1" {
		t.Errorf("Expected default host to be '127.0.0.1', got '%s'", cfg.Host)
	}

	if cfg.Port != 8080 {
		t.Errorf("Expected default port to be 8080, got %d", cfg.Port)
	}

	if cfg.ServerName != "mcp-pdf-formfix" {
		t.Errorf("Expected default server name to be 'mcp-pdf-formfix', got '%s'", cfg.ServerName)
	}

	if cfg.LogLevel != "info" {
		t.Errorf("Expected default log level to be 'info', got '%s'", cfg.LogLevel)
	}

	if cfg.MaxFileSize != 100*1024*1024 {
		t.Errorf("Expected default max file size to be 100MB, got %d", cfg.MaxFileSize)
	}

	if cfg.SignatureFontSize != 18 {
		t.Errorf("Expected default signature font size to be 18, got %v", cfg.SignatureFontSize)
	}

	currentDir, _ := os.Getwd()
	if cfg.PDFDirectory != currentDir {
		t.Errorf("Expected default PDF directory to be '%s', got '%s'", currentDir, cfg.PDFDirectory)
	}
}

func validConfig(dir string) *Config {
	return &Config{
		Mode:              "stdio",
		Host:              "127.0.0.1",
		Port:              8080,
		PDFDirectory:      dir,
		LogLevel:          "info",
		MaxFileSize:       1024,
		SignatureFontSize: 18,
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{name: "valid stdio config", modify: func(*Config) {}},
		{name: "valid server config", modify: func(c *Config) { c.Mode = "server" }},
		{
			name:   "valid run config",
			modify: func(c *Config) { c.Mode = "run"; c.Input = "form.pdf"; c.Records = "records.yaml" },
		},
		{name: "invalid mode", modify: func(c *Config) { c.Mode = "invalid" }, wantErr: "mode must be one of"},
		{name: "run mode without input", modify: func(c *Config) { c.Mode = "run" }, wantErr: "needs --input"},
		{
			name:    "invalid port - too low (server mode)",
			modify:  func(c *Config) { c.Mode = "server"; c.Port = 0 },
			wantErr: "port must be between",
		},
		{
			name:    "invalid port - too high (server mode)",
			modify:  func(c *Config) { c.Mode = "server"; c.Port = 70000 },
			wantErr: "port must be between",
		},
		{name: "invalid port ignored in stdio mode", modify: func(c *Config) { c.Port = 0 }},
		{name: "empty PDF directory", modify: func(c *Config) { c.PDFDirectory = "" }, wantErr: "cannot be empty"},
		{name: "invalid log level", modify: func(c *Config) { c.LogLevel = "invalid" }, wantErr: "invalid log level"},
		{name: "invalid max file size", modify: func(c *Config) { c.MaxFileSize = 0 }, wantErr: "must be positive"},
		{
			name: "complete signature font",
			modify: func(c *Config) {
				c.SignatureField = "signature"
				c.SignatureFontObject = 42
				c.SignatureFontName = "Sig"
			},
		},
		{
			name:    "signature font without object",
			modify:  func(c *Config) { c.SignatureField = "signature"; c.SignatureFontName = "Sig" },
			wantErr: "--signature-font-object",
		},
		{
			name:    "signature font without name",
			modify:  func(c *Config) { c.SignatureField = "signature"; c.SignatureFontObject = 42 },
			wantErr: "--signature-font-name",
		},
		{
			name: "signature font with zero size",
			modify: func(c *Config) {
				c.SignatureField = "signature"
				c.SignatureFontObject = 42
				c.SignatureFontName = "Sig"
				c.SignatureFontSize = 0
			},
			wantErr: "font size must be positive",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig(t.TempDir())
			tt.modify(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("Config.Validate() unexpected error = %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Config.Validate() error = %v, want error containing %q", err, tt.wantErr)
			}
		})
	}
}

func TestConfigAddress(t *testing.T) {
	cfg := &Config{
		Host: "192.168.1.1",
		Port: 9090,
	}

	expected := "192.168.1.1:9090"
	if got := cfg.Address(); got != expected {
		t.Errorf("Config.Address() = %v, want %v", got, expected)
	}
}

func TestConfigIsDebug(t *testing.T) {
	tests := []struct {
		logLevel string
		want     bool
	}{
		{logLevel: "debug", want: true},
		{logLevel: "info", want: false},
		{logLevel: "warn", want: false},
		{logLevel: "error", want: false},
	}

	for _, tt := range tests {
		t.Run(tt.logLevel, func(t *testing.T) {
			cfg := &Config{LogLevel: tt.logLevel}
			if got := cfg.IsDebug(); got != tt.want {
				t.Errorf("Config.IsDebug() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestConfigString(t *testing.T) {
	cfg := &Config{
		Mode:         "server",
		Host:         "localhost",
		Port:         8080,
		PDFDirectory: "/home/user/pdfs",
		LogLevel:     "debug",
		MaxFileSize:  1024,
	}

	for _, substr := range []string{
		"Mode: server",
		"Host: localhost",
		"Port: 8080",
		"PDFDirectory: /home/user/pdfs",
		"LogLevel: debug",
		"MaxFileSize: 1024",
	} {
		if result := cfg.String(); !strings.Contains(result, substr) {
			t.Errorf("Config.String() result doesn't contain expected substring: %s\nGot: %s", substr, result)
		}
	}

	run := &Config{Mode: "run", Input: "in.pdf", Output: "out.pdf", Records: "records.json", LogLevel: "info"}
	for _, substr := range []string{"Mode: run", "Input: in.pdf", "Output: out.pdf", "Records: records.json"} {
		if result := run.String(); !strings.Contains(result, substr) {
			t.Errorf("Config.String() result doesn't contain expected substring: %s\nGot: %s", substr, result)
		}
	}
}

func TestConfigValidateDirectoryCreation(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "non-existent", "pdfs")

	cfg := validConfig(missing)
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Config.Validate() unexpected error for missing directory: %v", err)
	}

	info, err := os.Stat(missing)
	if err != nil {
		t.Fatalf("Directory should have been created: %v", err)
	}
	if !info.IsDir() {
		t.Errorf("%s should be a directory", missing)
	}
}

func TestConfigValidateLogLevels(t *testing.T) {
	dir := t.TempDir()

	for _, level := range []string{"debug", "info", "warn", "error"} {
		t.Run("valid_"+level, func(t *testing.T) {
			cfg := validConfig(dir)
			cfg.LogLevel = level
			if err := cfg.Validate(); err != nil {
				t.Errorf("Config.Validate() should accept log level '%s', got error: %v", level, err)
			}
		})
	}

	for _, level := range []string{"DEBUG", "INFO", "trace", "fatal", ""} {
		t.Run("invalid_"+level, func(t *testing.T) {
			cfg := validConfig(dir)
			cfg.LogLevel = level
			if err := cfg.Validate(); err == nil {
				t.Errorf("Config.Validate() should reject log level '%s'", level)
			}
		})
	}
}

func TestConfigModes(t *testing.T) {
	tests := []struct {
		mode       string
		wantServer bool
		wantStdio  bool
		wantRun    bool
	}{
		{mode: "server", wantServer: true},
		{mode: "stdio", wantStdio: true},
		{mode: "run", wantRun: true},
		{mode: "invalid"},
	}

	for _, tt := range tests {
		t.Run(tt.mode, func(t *testing.T) {
			cfg := &Config{Mode: tt.mode}
			if got := cfg.IsServerMode(); got != tt.wantServer {
				t.Errorf("Config.IsServerMode() = %v, want %v", got, tt.wantServer)
			}
			if got := cfg.IsStdioMode(); got != tt.wantStdio {
				t.Errorf("Config.IsStdioMode() = %v, want %v", got, tt.wantStdio)
			}
			if got := cfg.IsRunMode(); got != tt.wantRun {
				t.Errorf("Config.IsRunMode() = %v, want %v", got, tt.wantRun)
			}
		})
	}
}

func TestConfigHasSignatureFont(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.HasSignatureFont() {
		t.Error("default config should not request a signature font")
	}
	cfg.SignatureField = "signature"
	if !cfg.HasSignatureFont() {
		t.Error("HasSignatureFont() should be true once a field is named")
	}
}
