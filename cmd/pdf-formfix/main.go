package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"runtime"
	"syscall"

	"github.com/a3tai/mcp-pdf-formfix/internal/config"
	"github.com/a3tai/mcp-pdf-formfix/internal/mcp"
	"github.com/a3tai/mcp-pdf-formfix/internal/pdf"
	"github.com/a3tai/mcp-pdf-formfix/internal/pdf/forms"
)

var (
	version   = "dev"     // This will be set by build flags
	buildTime = "unknown" // This will be set by build flags
	gitCommit = "unknown" // This will be set by build flags
)

// setupLogging configures logging based on the mode
func setupLogging(cfg *config.Config) {
	switch {
	case cfg.IsStdioMode():
		// stdout carries the MCP protocol
		log.SetOutput(os.Stderr)
		if !cfg.IsDebug() {
			log.SetOutput(io.Discard)
		}
	case cfg.IsRunMode():
		log.SetOutput(os.Stderr)
		log.SetFlags(0)
		if cfg.IsDebug() {
			log.SetFlags(log.LstdFlags | log.Lshortfile)
		}
	default:
		log.SetFlags(log.LstdFlags | log.Lshortfile)
	}
}

// runServerMode handles server mode execution with signal handling
func runServerMode(ctx context.Context, cancel context.CancelFunc, server *mcp.Server) {
	signalCh := make(chan os.Signal, 1)
	signal.Notify(signalCh, syscall.SIGINT, syscall.SIGTERM, syscall.SIGHUP)

	serverErrCh := make(chan error, 1)
	go func() {
		serverErrCh <- server.Run(ctx)
	}()

	select {
	case sig := <-signalCh:
		log.Printf("Received signal: %s", sig)
		log.Println("Initiating graceful shutdown...")
		cancel()

		if err := <-serverErrCh; err != nil {
			log.Printf("Server shutdown with error: %v", err)
			os.Exit(1)
		}

	case err := <-serverErrCh:
		if err != nil {
			log.Printf("Server error: %v", err)
			os.Exit(1)
		}
	}

	log.Println("Server stopped successfully")
}

// runStdioMode handles stdio mode execution
func runStdioMode(ctx context.Context, _ context.CancelFunc, server *mcp.Server) {
	// The parent process controls our lifecycle
	if err := server.Run(ctx); err != nil {
		log.Printf("Server error: %v", err)
		os.Exit(1)
	}
}

// runOnce performs a single repair pass over cfg.Input and writes the summary to out
func runOnce(cfg *config.Config, pdfService *pdf.Service, out io.Writer) error {
	req := pdf.PDFConsolidateRequest{
		Path:             cfg.Input,
		OutputPath:       cfg.Output,
		RecordsPath:      cfg.Records,
		StripTextBorders: cfg.StripTextBorders,
		ExportWidgetData: cfg.ExportWidgetData,
	}
	if cfg.HasSignatureFont() {
		req.FontPatch = &forms.FontPatch{
			FieldName:    cfg.SignatureField,
			FontObjectID: cfg.SignatureFontObject,
			ResourceName: cfg.SignatureFontName,
			FontSize:     cfg.SignatureFontSize,
		}
	}

	result, err := pdfService.Consolidate(req)
	if err != nil {
		return err
	}
	_, err = fmt.Fprint(out, mcp.FormatConsolidateResult(result))
	return err
}

func main() {
	for _, arg := range os.Args[1:] {
		if arg == "-version" || arg == "--version" || arg == "-v" {
			printVersion()
			return
		}
	}

	cfg, err := config.LoadFromFlags()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	setupLogging(cfg)

	if version != "dev" {
		cfg.Version = version
	}

	if cfg.IsDebug() && !cfg.IsStdioMode() {
		log.Printf("Starting with configuration: %s", cfg.String())
	}

	pdfService, err := pdf.NewService(cfg.MaxFileSize, cfg.PDFDirectory, cfg.IsDebug())
	if err != nil {
		log.Fatalf("Failed to create PDF service: %v", err)
	}

	if cfg.IsRunMode() {
		if err := runOnce(cfg, pdfService, os.Stdout); err != nil {
			log.Fatalf("Consolidation failed: %v", err)
		}
		return
	}

	server, err := mcp.NewServer(cfg, pdfService)
	if err != nil {
		log.Fatalf("Failed to create MCP server: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if cfg.IsServerMode() {
		runServerMode(ctx, cancel, server)
	} else {
		runStdioMode(ctx, cancel, server)
	}
}

// printVersion prints version information
func printVersion() {
	fmt.Printf("PDF FormFix\n")
	fmt.Printf("Version: %s\n", version)
	fmt.Printf("Build Time: %s\n", buildTime)
	fmt.Printf("Git Commit: %s\n", gitCommit)
	fmt.Printf("Built with: %s\n", runtime.Version())
}
