package mcp

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"strings"

	"github.com/a3tai/mcp-pdf-formfix/internal/config"
	"github.com/a3tai/mcp-pdf-formfix/internal/descriptions"
	"github.com/a3tai/mcp-pdf-formfix/internal/pdf"
	"github.com/a3tai/mcp-pdf-formfix/internal/pdf/forms"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// Server represents the MCP server instance
type Server struct {
	config     *config.Config
	pdfService *pdf.Service
	mcpServer  *server.MCPServer
}

// NewServer creates a new MCP server instance
func NewServer(cfg *config.Config, pdfService *pdf.Service) (*Server, error) {
	if pdfService == nil {
		return nil, fmt.Errorf("pdfService cannot be nil")
	}

	mcpServer := server.NewMCPServer(
		cfg.ServerName,
		cfg.Version,
		server.WithToolCapabilities(false), // We don't support dynamic tool capabilities
	)

	s := &Server{
		config:     cfg,
		pdfService: pdfService,
		mcpServer:  mcpServer,
	}

	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	consolidateTool := mcp.NewTool(
		"pdf_consolidate_radio_groups",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_consolidate_radio_groups")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the form PDF, relative to the configured directory"),
		),
		mcp.WithString("output_path",
			mcp.Description("Where to write the repaired PDF (replaces the input when empty)"),
		),
		mcp.WithString("records_path",
			mcp.Description("JSON or YAML file with the update records"),
		),
		mcp.WithString("records",
			mcp.Description("Update records as inline JSON, a list or an object with a 'records' key"),
		),
		mcp.WithBoolean("strip_text_borders",
			mcp.Description("Give every text widget a zero-width border"),
		),
		mcp.WithBoolean("export_widget_data",
			mcp.Description("Write a widget metadata CSV next to the output"),
		),
		mcp.WithString("signature_field",
			mcp.Description("Field whose default appearance should use the signature font"),
		),
		mcp.WithNumber("signature_font_object",
			mcp.Description("Object number of the embedded signature font"),
		),
		mcp.WithString("signature_font_name",
			mcp.Description("Resource name to register the signature font under"),
		),
		mcp.WithNumber("signature_font_size",
			mcp.Description("Signature font size in points (default 18)"),
		),
	)
	s.mcpServer.AddTool(consolidateTool, s.handlePDFConsolidate)

	exportTool := mcp.NewTool(
		"pdf_export_widgets",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_export_widgets")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the form PDF, relative to the configured directory"),
		),
		mcp.WithBoolean("write_csv",
			mcp.Description("Also write the table as CSV next to the PDF"),
		),
	)
	s.mcpServer.AddTool(exportTool, s.handlePDFExportWidgets)

	validateTool := mcp.NewTool(
		"pdf_validate_file",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_validate_file")),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(validateTool, s.handlePDFValidateFile)

	searchTool := mcp.NewTool(
		"pdf_search_directory",
		mcp.WithDescription(descriptions.GetToolDescription("pdf_search_directory")),
		mcp.WithString("directory",
			mcp.Description("Directory to search (uses the configured directory if empty)"),
		),
		mcp.WithString("query",
			mcp.Description("Optional search query for fuzzy matching"),
		),
		mcp.WithBoolean("forms_only",
			mcp.Description("Only return files with an AcroForm"),
		),
		mcp.WithNumber("limit",
			mcp.Description("Maximum number of files to return"),
		),
	)
	s.mcpServer.AddTool(searchTool, s.handlePDFSearchDirectory)
}

func (s *Server) handlePDFConsolidate(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.PDFConsolidateRequest{
		Path:             path,
		OutputPath:       request.GetString("output_path", ""),
		RecordsPath:      request.GetString("records_path", ""),
		StripTextBorders: request.GetBool("strip_text_borders", false),
		ExportWidgetData: request.GetBool("export_widget_data", false),
	}

	if inline := request.GetString("records", ""); inline != "" {
		set, err := forms.ParseRecords([]byte(inline), "records")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		req.Records = set.Records
		req.FontPatch = set.FontPatch
	}

	if field := request.GetString("signature_field", ""); field != "" {
		req.FontPatch = &forms.FontPatch{
			FieldName:    field,
			FontObjectID: request.GetInt("signature_font_object", 0),
			ResourceName: request.GetString("signature_font_name", ""),
			FontSize:     request.GetFloat("signature_font_size", config.DefaultFontSize),
		}
		if err := req.FontPatch.Validate(); err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
	}

	result, err := s.pdfService.PDFConsolidate(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(FormatConsolidateResult(result)), nil
}

func (s *Server) handlePDFExportWidgets(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.PDFExportWidgetsRequest{Path: path, WriteCSV: request.GetBool("write_csv", false)}
	result, err := s.pdfService.PDFExportWidgets(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatExportWidgetsResult(result)), nil
}

func (s *Server) handlePDFValidateFile(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.PDFValidateFileRequest{Path: path}
	result, err := s.pdfService.PDFValidateFile(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var responseText string
	if result.Valid {
		responseText = fmt.Sprintf("PDF file %s is valid and readable\n", result.Path)
		responseText += fmt.Sprintf("Pages: %d\n", result.Pages)
		if result.HasAcroForm {
			responseText += fmt.Sprintf("AcroForm fields: %d\n", result.FieldCount)
		} else {
			responseText += "No AcroForm\n"
		}
	} else {
		responseText = fmt.Sprintf("PDF validation failed for %s: %s", result.Path, result.Message)
	}

	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handlePDFSearchDirectory(ctx context.Context, request mcp.CallToolRequest) (
	*mcp.CallToolResult, error,
) {
	req := pdf.PDFSearchDirectoryRequest{
		Directory: request.GetString("directory", ""),
		Query:     request.GetString("query", ""),
		FormsOnly: request.GetBool("forms_only", false),
		Limit:     request.GetInt("limit", 0),
	}
	result, err := s.pdfService.PDFSearchDirectory(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(s.formatSearchDirectoryResult(result)), nil
}

// FormatConsolidateResult renders a consolidation result as the text shown to
// tool callers and printed by run mode
func FormatConsolidateResult(result *pdf.PDFConsolidateResult) string {
	text := fmt.Sprintf("Wrote %s\n", result.OutputPath)
	text += fmt.Sprintf("Records: %d (unmatched: %d)\n", result.RecordCount, result.UnmatchedRecords)
	if result.BordersStripped > 0 {
		text += fmt.Sprintf("Text borders stripped: %d\n", result.BordersStripped)
	}
	if result.FontPatched {
		text += "Signature font patched\n"
	}

	if len(result.Groups) == 0 {
		text += "No radio groups rebuilt\n"
	} else {
		text += fmt.Sprintf("\nRadio groups rebuilt: %d\n", len(result.Groups))
		for _, group := range result.Groups {
			text += fmt.Sprintf("- %s (object %d): %s\n",
				group.Name, group.ParentID, strings.Join(group.ExportNames, ", "))
		}
		text += fmt.Sprintf("Fields: %s\n", result.FieldArray)
	}

	if len(result.Issues) > 0 {
		text += fmt.Sprintf("\nIssues: %d\n", len(result.Issues))
		for _, issue := range result.Issues {
			text += fmt.Sprintf("- %s\n", issue)
		}
	}

	if result.MetadataPath != "" {
		text += fmt.Sprintf("\nWidget metadata: %s\n", result.MetadataPath)
	}
	return text
}

func (s *Server) formatExportWidgetsResult(result *pdf.PDFExportWidgetsResult) string {
	text := fmt.Sprintf("Widgets in %s: %d\n\n", result.Path, len(result.Widgets))
	for _, row := range result.Widgets {
		text += fmt.Sprintf("Page %d  %-6s %s", row.Page, row.Type, row.Name)
		if row.OnValue != "" {
			text += fmt.Sprintf(" [%s]", row.OnValue)
		}
		if row.Caption != "" {
			text += fmt.Sprintf(" %q", row.Caption)
		}
		text += fmt.Sprintf(" at %.2f %.2f %.2f %.2f\n", row.Rect.X0, row.Rect.Y0, row.Rect.X1, row.Rect.Y1)
	}
	if result.CSVPath != "" {
		text += fmt.Sprintf("\nCSV written to %s\n", result.CSVPath)
	}
	return text
}

func (s *Server) formatSearchDirectoryResult(result *pdf.PDFSearchDirectoryResult) string {
	text := fmt.Sprintf("Found %d PDF file(s) in %s", result.TotalCount, result.Directory)
	if result.SearchQuery != "" {
		text += fmt.Sprintf(" matching '%s'", result.SearchQuery)
	}
	text += ":\n\n"

	for _, file := range result.Files {
		text += fmt.Sprintf("- %s (%d bytes, modified %s)", file.Path, file.Size, file.ModifiedTime)
		if file.FieldCount > 0 {
			text += fmt.Sprintf(", %d fields", file.FieldCount)
		}
		text += "\n"
	}
	return text
}

// Run starts the MCP server in the configured mode
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsServerMode() {
		return s.runServerMode(ctx)
	}
	return s.runStdioMode(ctx)
}

// runStdioMode runs the server in stdio mode
func (s *Server) runStdioMode(_ context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting PDF FormFix MCP server in stdio mode")
		log.Printf("PDF directory: %s", s.config.PDFDirectory)
	}

	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}

// runServerMode serves MCP over SSE until ctx is cancelled
func (s *Server) runServerMode(ctx context.Context) error {
	sseServer := server.NewSSEServer(s.mcpServer)

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting PDF FormFix MCP server on %s", s.config.Address())
		log.Printf("PDF directory: %s", s.config.PDFDirectory)
		errCh <- sseServer.Start(s.config.Address())
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("failed to serve SSE: %w", err)
		}
		return nil
	case <-ctx.Done():
		if err := sseServer.Shutdown(context.Background()); err != nil {
			return fmt.Errorf("failed to shut down SSE server: %w", err)
		}
		return nil
	}
}
