package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// Mode constants
	ModeStdio  = "stdio"
	ModeServer = "server"
	ModeRun    = "run"

	// Default values
	DefaultPort        = 8080
	DefaultHost        = "127.0.0.1"
	DefaultLogLevel    = "info"
	DefaultMaxFileSize = 100 * 1024 * 1024 // 100MB
	DefaultFontSize    = 18.0

	// Directory permissions
	DefaultDirPerm = 0o750
)

// Config holds all configuration for the form repair tool and its MCP server
type Config struct {
	// Server configuration
	Mode string // "stdio", "server" or "run"
	Host string
	Port int

	// PDF configuration
	PDFDirectory string

	// Run mode configuration
	Input            string
	Output           string
	Records          string
	ExportWidgetData bool
	StripTextBorders bool

	// Signature font patch, applied when SignatureField is set
	SignatureField      string
	SignatureFontObject int
	SignatureFontName   string
	SignatureFontSize   float64

	// Application configuration
	Version     string
	ServerName  string
	LogLevel    string
	MaxFileSize int64 // Maximum PDF file size in bytes
}

// DefaultConfig returns a configuration with sensible defaults
func DefaultConfig() *Config {
	currentDir, err := os.Getwd()
	if err != nil {
		// Fallback to current directory if working directory cannot be determined
		currentDir = "."
	}

	return &Config{
		Mode:         ModeStdio, // Default to stdio mode for MCP compatibility
		Host:         DefaultHost,
		Port:         DefaultPort,
		PDFDirectory: currentDir,
		Version:      "1.0.0",
		ServerName:   "mcp-pdf-formfix",
		LogLevel:     DefaultLogLevel,
		MaxFileSize:  DefaultMaxFileSize,

		SignatureFontSize: DefaultFontSize,
	}
}

// LoadFromFlags parses command line flags and returns a configuration
func LoadFromFlags() (*Config, error) {
	cfg := DefaultConfig()

	setupViperEnvironment(cfg)
	defineCommandLineFlags(cfg)
	bindFlagsToViper()
	setupUsageMessage()

	// Check for version flag before parsing
	if err := checkVersionFlag(); err != nil {
		return nil, err
	}

	pflag.Parse()

	populateConfigFromViper(cfg)

	// Expand paths if needed
	if cfg.PDFDirectory != "" {
		if expandedPath, err := filepath.Abs(cfg.PDFDirectory); err == nil {
			cfg.PDFDirectory = expandedPath
		}
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// setupViperEnvironment configures viper with environment variables and defaults
func setupViperEnvironment(cfg *Config) {
	// Set environment variable prefix
	viper.SetEnvPrefix("PDF_FORMFIX")
	viper.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	viper.AutomaticEnv()

	// Define flags with Viper
	viper.SetDefault("mode", cfg.Mode)
	viper.SetDefault("host", cfg.Host)
	viper.SetDefault("port", cfg.Port)
	viper.SetDefault("dir", cfg.PDFDirectory)
	viper.SetDefault("loglevel", cfg.LogLevel)
	viper.SetDefault("maxfilesize", cfg.MaxFileSize)
	viper.SetDefault("input", cfg.Input)
	viper.SetDefault("output", cfg.Output)
	viper.SetDefault("records", cfg.Records)
	viper.SetDefault("export-widget-data", cfg.ExportWidgetData)
	viper.SetDefault("strip-text-borders", cfg.StripTextBorders)
	viper.SetDefault("signature-field", cfg.SignatureField)
	viper.SetDefault("signature-font-object", cfg.SignatureFontObject)
	viper.SetDefault("signature-font-name", cfg.SignatureFontName)
	viper.SetDefault("signature-font-size", cfg.SignatureFontSize)
}

// defineCommandLineFlags sets up all command line flags
func defineCommandLineFlags(cfg *Config) {
	pflag.String("mode", cfg.Mode, "Mode: 'stdio' for MCP standard I/O, 'server' for MCP over SSE, 'run' for a one-shot pass")
	pflag.String("host", cfg.Host, "Server host address (server mode only)")
	pflag.Int("port", cfg.Port, "Server port (server mode only)")
	pflag.String("dir", cfg.PDFDirectory, "Directory containing PDF files")
	pflag.String("loglevel", cfg.LogLevel, "Log level (debug, info, warn, error)")
	pflag.Int64("maxfilesize", cfg.MaxFileSize, "Maximum PDF file size in bytes")
	pflag.String("input", cfg.Input, "Form PDF to repair (run mode only)")
	pflag.String("output", cfg.Output, "Where to write the repaired PDF (run mode, default: replace input)")
	pflag.String("records", cfg.Records, "JSON or YAML file with the radio update records (run mode only)")
	pflag.Bool("export-widget-data", cfg.ExportWidgetData, "Write widget metadata CSV next to the output")
	pflag.Bool("strip-text-borders", cfg.StripTextBorders, "Give text widgets a zero-width border")
	pflag.String("signature-field", cfg.SignatureField, "Field whose default appearance uses the signature font")
	pflag.Int("signature-font-object", cfg.SignatureFontObject, "Object number of the embedded signature font")
	pflag.String("signature-font-name", cfg.SignatureFontName, "Resource name registered for the signature font")
	pflag.Float64("signature-font-size", cfg.SignatureFontSize, "Signature font size in points")
}

// bindFlagsToViper binds command line flags to viper configuration
func bindFlagsToViper() {
	_ = viper.BindPFlag("mode", pflag.Lookup("mode"))
	_ = viper.BindPFlag("host", pflag.Lookup("host"))
	_ = viper.BindPFlag("port", pflag.Lookup("port"))
	_ = viper.BindPFlag("dir", pflag.Lookup("dir"))
	_ = viper.BindPFlag("loglevel", pflag.Lookup("loglevel"))
	_ = viper.BindPFlag("maxfilesize", pflag.Lookup("maxfilesize"))
	for _, name := range runFlags {
		_ = viper.BindPFlag(name, pflag.Lookup(name))
	}
}

var runFlags = []string{
	"input", "output", "records", "export-widget-data", "strip-text-borders",
	"signature-field", "signature-font-object", "signature-font-name", "signature-font-size",
}

// setupUsageMessage configures the custom usage message
func setupUsageMessage() {
	pflag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage of %s:\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nPDF FormFix - consolidates generated radio widgets into proper AcroForm groups\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		pflag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  %s                                         "+
			"# stdio mode, current directory (default)\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --dir=/path/to/pdfs                     "+
			"# stdio mode with custom directory\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --dir=/path/to/pdfs       # server mode\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=server --host=0.0.0.0 --port=8081 # server on all interfaces\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "  %s --mode=run --input=form.pdf --records=records.yaml --export-widget-data\n", os.Args[0])
		fmt.Fprintf(os.Stderr, "\nEnvironment Variables:\n")
		fmt.Fprintf(os.Stderr, "  PDF_FORMFIX_MODE        Mode\n")
		fmt.Fprintf(os.Stderr, "  PDF_FORMFIX_HOST        Server host\n")
		fmt.Fprintf(os.Stderr, "  PDF_FORMFIX_PORT        Server port\n")
		fmt.Fprintf(os.Stderr, "  PDF_FORMFIX_DIR         PDF directory\n")
		fmt.Fprintf(os.Stderr, "  PDF_FORMFIX_LOGLEVEL    Log level\n")
		fmt.Fprintf(os.Stderr, "  PDF_FORMFIX_MAXFILESIZE Maximum file size\n")
		fmt.Fprintf(os.Stderr, "  PDF_FORMFIX_RECORDS     Records file (run mode)\n")
	}
}

// checkVersionFlag checks if version flag was requested
func checkVersionFlag() error {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			return fmt.Errorf("version requested")
		}
	}
	return nil
}

// populateConfigFromViper fills the config struct with values from viper
func populateConfigFromViper(cfg *Config) {
	cfg.Mode = viper.GetString("mode")
	cfg.Host = viper.GetString("host")
	cfg.Port = viper.GetInt("port")
	cfg.PDFDirectory = viper.GetString("dir")
	cfg.LogLevel = viper.GetString("loglevel")
	cfg.MaxFileSize = viper.GetInt64("maxfilesize")
	cfg.Input = viper.GetString("input")
	cfg.Output = viper.GetString("output")
	cfg.Records = viper.GetString("records")
	cfg.ExportWidgetData = viper.GetBool("export-widget-data")
	cfg.StripTextBorders = viper.GetBool("strip-text-borders")
	cfg.SignatureField = viper.GetString("signature-field")
	cfg.SignatureFontObject = viper.GetInt("signature-font-object")
	cfg.SignatureFontName = viper.GetString("signature-font-name")
	cfg.SignatureFontSize = viper.GetFloat64("signature-font-size")
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	// Validate mode
	if c.Mode != ModeStdio && c.Mode != ModeServer && c.Mode != ModeRun {
		return errors.New("mode must be one of 'stdio', 'server' or 'run'")
	}

	if c.Mode == ModeRun && c.Input == "" {
		return errors.New("run mode needs --input")
	}

	if c.SignatureField != "" {
		if c.SignatureFontObject <= 0 {
			return errors.New("--signature-field needs a positive --signature-font-object")
		}
		if c.SignatureFontName == "" {
			return errors.New("--signature-field needs --signature-font-name")
		}
		if c.SignatureFontSize <= 0 {
			return errors.New("signature font size must be positive")
		}
	}

	// Validate port range (only for server mode)
	if c.Mode == ModeServer && (c.Port < 1 || c.Port > 65535) {
		return errors.New("port must be between 1 and 65535")
	}

	// Validate PDF directory
	if c.PDFDirectory == "" {
		return errors.New("PDF directory cannot be empty")
	}

	// Check if PDF directory exists, create if it doesn't
	if _, err := os.Stat(c.PDFDirectory); os.IsNotExist(err) {
		if err := os.MkdirAll(c.PDFDirectory, DefaultDirPerm); err != nil {
			return fmt.Errorf("cannot create PDF directory %s: %w", c.PDFDirectory, err)
		}
	} else if err != nil {
		return fmt.Errorf("cannot access PDF directory %s: %w", c.PDFDirectory, err)
	}

	// Validate max file size
	if c.MaxFileSize <= 0 {
		return errors.New("maximum file size must be positive")
	}

	// Validate log level
	validLogLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}
	if !validLogLevels[c.LogLevel] {
		return fmt.Errorf("invalid log level: %s (must be one of: debug, info, warn, error)", c.LogLevel)
	}

	return nil
}

// Address returns the server address as host:port
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// IsDebug returns true if debug logging is enabled
func (c *Config) IsDebug() bool {
	return c.LogLevel == "debug"
}

// String returns a string representation of the configuration
func (c *Config) String() string {
	if c.IsRunMode() {
		return fmt.Sprintf("Config{Mode: %s, Input: %s, Output: %s, Records: %s, LogLevel: %s, MaxFileSize: %d}",
			c.Mode, c.Input, c.Output, c.Records, c.LogLevel, c.MaxFileSize)
	}
	return fmt.Sprintf("Config{Mode: %s, Host: %s, Port: %d, PDFDirectory: %s, LogLevel: %s, MaxFileSize: %d}",
		c.Mode, c.Host, c.Port, c.PDFDirectory, c.LogLevel, c.MaxFileSize)
}

// IsServerMode returns true if the server is running in HTTP server mode
func (c *Config) IsServerMode() bool {
	return c.Mode == ModeServer
}

// IsStdioMode returns true if the server is running in stdio mode
func (c *Config) IsStdioMode() bool {
	return c.Mode == ModeStdio
}

// IsRunMode returns true for a one-shot pass over --input
func (c *Config) IsRunMode() bool {
	return c.Mode == ModeRun
}

// HasSignatureFont reports whether a signature font patch was requested
func (c *Config) HasSignatureFont() bool {
	return c.SignatureField != ""
}
