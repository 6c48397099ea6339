package mcp

import (
	"context"
	"fmt"
	"log"
	"path/filepath"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/acrofield/pdf-form-editor/internal/config"
	"github.com/acrofield/pdf-form-editor/internal/descriptions"
	"github.com/acrofield/pdf-form-editor/internal/form"
	"github.com/acrofield/pdf-form-editor/internal/pdf"
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

	// Create MCP server
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

	// Register tools
	s.registerTools()

	return s, nil
}

// registerTools registers all available MCP tools
func (s *Server) registerTools() {
	// Register form extract fields tool
	formExtractFieldsTool := mcp.NewTool(
		"form_extract_fields",
		mcp.WithDescription(descriptions.FormExtractFieldsDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(formExtractFieldsTool, s.handleFormExtractFields)

	// Register form export JSON tool
	formExportJSONTool := mcp.NewTool(
		"form_export_json",
		mcp.WithDescription(descriptions.FormExportJSONDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
		mcp.WithString("output",
			mcp.Required(),
			mcp.Description("Path the JSON export is written to"),
		),
	)
	s.mcpServer.AddTool(formExportJSONTool, s.handleFormExportJSON)

	// Register form update field tool
	formUpdateFieldTool := mcp.NewTool(
		"form_update_field",
		mcp.WithDescription(descriptions.FormUpdateFieldDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
		mcp.WithNumber("page",
			mcp.Required(),
			mcp.Description("1-based page number the field is on"),
		),
		mcp.WithString("patch",
			mcp.Required(),
			mcp.Description(`JSON object with the attributes to change, e.g. {"default_value": "Jane Doe"}`),
		),
		mcp.WithString("annotation_id",
			mcp.Description("Annotation id of the field to update"),
		),
		mcp.WithString("label",
			mcp.Description("Field label, used when no annotation id is given"),
		),
		mcp.WithString("output",
			mcp.Description("Path the modified PDF is saved to (overwrites the source if empty)"),
		),
	)
	s.mcpServer.AddTool(formUpdateFieldTool, s.handleFormUpdateField)

	// Register form apply JSON tool
	formApplyJSONTool := mcp.NewTool(
		"form_apply_json",
		mcp.WithDescription(descriptions.FormApplyJSONDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
		mcp.WithString("json_path",
			mcp.Required(),
			mcp.Description("Path of the edited export JSON to apply"),
		),
		mcp.WithString("output",
			mcp.Description("Path the modified PDF is saved to (overwrites the source if empty)"),
		),
	)
	s.mcpServer.AddTool(formApplyJSONTool, s.handleFormApplyJSON)

	// Register form doc info tool
	formDocInfoTool := mcp.NewTool(
		"form_doc_info",
		mcp.WithDescription(descriptions.FormDocInfoDescription),
		mcp.WithString("path",
			mcp.Required(),
			mcp.Description("Full path to the PDF file"),
		),
	)
	s.mcpServer.AddTool(formDocInfoTool, s.handleFormDocInfo)

	// Register form server info tool
	formServerInfoTool := mcp.NewTool(
		"form_server_info",
		mcp.WithDescription(descriptions.FormServerInfoDescription),
	)
	s.mcpServer.AddTool(formServerInfoTool, s.handleFormServerInfo)
}

// openForm opens the PDF at path with metadata derived from the file name.
func (s *Server) openForm(path string) (*form.Form, error) {
	meta := form.Metadata{
		Name:    filepath.Base(path),
		Year:    time.Now().Year(),
		Version: s.config.Version,
	}
	return form.Open(path, meta)
}

// Handler functions
func (s *Server) handleFormExtractFields(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	fo, err := s.openForm(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer fo.Close()

	responseText := s.formatFormFields(fo)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFormExportJSON(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	output, err := request.RequireString("output")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	fo, err := s.openForm(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer fo.Close()

	if err := fo.WriteJSON(output); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := fmt.Sprintf("Exported %d field(s) across %d page(s) from %s to %s\n",
		fo.FieldCount(), len(fo.Pages()), path, output)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFormUpdateField(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	page, err := request.RequireInt("page")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	patchText, err := request.RequireString("patch")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()

	annotationID := ""
	if id, ok := args["annotation_id"].(string); ok {
		annotationID = id
	}
	label := ""
	if l, ok := args["label"].(string); ok {
		label = l
	}
	if annotationID == "" && label == "" {
		return mcp.NewToolResultError("either annotation_id or label is required"), nil
	}

	output := ""
	if out, ok := args["output"].(string); ok {
		output = out
	}

	patch, err := form.ParseFieldPatch([]byte(patchText))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	fo, err := s.openForm(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer fo.Close()

	if annotationID != "" {
		err = fo.UpdateFieldByID(annotationID, page, patch)
	} else {
		err = fo.UpdateFieldByLabel(label, page, patch)
	}
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := fo.SavePDF(output); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	saved := output
	if saved == "" {
		saved = path
	}
	target := annotationID
	if target == "" {
		target = label
	}
	responseText := fmt.Sprintf("Updated field %q on page %d and saved %s\n", target, page, saved)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFormApplyJSON(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	jsonPath, err := request.RequireString("json_path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	args := request.GetArguments()
	output := ""
	if out, ok := args["output"].(string); ok {
		output = out
	}

	fo, err := s.openForm(path)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	defer fo.Close()

	if err := fo.LoadJSON(jsonPath); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := fo.SavePDF(output); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	saved := output
	if saved == "" {
		saved = path
	}
	responseText := fmt.Sprintf("Applied %s to %s: %d field(s) across %d page(s) written to %s\n",
		jsonPath, path, fo.FieldCount(), len(fo.Pages()), saved)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFormDocInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	path, err := request.RequireString("path")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	req := pdf.DocInfoRequest{Path: path}
	result, err := s.pdfService.DocInfo(req)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	responseText := s.formatDocInfoResult(result)
	return mcp.NewToolResultText(responseText), nil
}

func (s *Server) handleFormServerInfo(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	responseText := s.formatServerInfo()
	return mcp.NewToolResultText(responseText), nil
}

// Formatting methods
func (s *Server) formatFormFields(fo *form.Form) string {
	pages := fo.Pages()
	if len(pages) == 0 {
		return fmt.Sprintf("No fillable form fields found in %s\n", fo.PDFPath())
	}

	text := fmt.Sprintf("Found %d field(s) across %d page(s) in %s\n", fo.FieldCount(), len(pages), fo.PDFPath())
	for _, page := range pages {
		text += fmt.Sprintf("\nPage %d:\n", page.PageNumber)
		for i, field := range page.Fields {
			text += fmt.Sprintf("%d. %s\n", i+1, field.AnnotationID)
			text += fmt.Sprintf("   Type: %s\n", field.Type)
			if field.Label != "" {
				text += fmt.Sprintf("   Label: %s\n", field.Label)
			}
			if field.DefaultValue != "" {
				text += fmt.Sprintf("   Value: %s\n", field.DefaultValue)
			}
			if field.Position != nil {
				text += fmt.Sprintf("   Position: x=%.1f y=%.1f w=%.1f h=%.1f %s\n",
					field.Position.X, field.Position.Y, field.Position.Width, field.Position.Height, field.Position.Unit)
			}
		}
	}

	return text
}

func (s *Server) formatDocInfoResult(result *pdf.DocInfoResult) string {
	text := "PDF Document Info\n"
	text += fmt.Sprintf("File: %s\n", result.Path)
	text += fmt.Sprintf("Size: %d bytes\n", result.Size)
	text += fmt.Sprintf("Pages: %d\n", result.Pages)
	text += fmt.Sprintf("Modified: %s\n", result.ModifiedDate)

	if result.Title != "" {
		text += fmt.Sprintf("Title: %s\n", result.Title)
	}
	if result.Author != "" {
		text += fmt.Sprintf("Author: %s\n", result.Author)
	}
	if result.Subject != "" {
		text += fmt.Sprintf("Subject: %s\n", result.Subject)
	}
	if result.Producer != "" {
		text += fmt.Sprintf("Producer: %s\n", result.Producer)
	}
	if result.CreatedDate != "" {
		text += fmt.Sprintf("Created: %s\n", result.CreatedDate)
	}
	if result.TextPreview != "" {
		text += "\nText preview:\n"
		text += result.TextPreview
	}

	return text
}

func (s *Server) formatServerInfo() string {
	text := fmt.Sprintf("%s v%s - Server Information\n", s.config.ServerName, s.config.Version)
	text += fmt.Sprintf("Default Directory: %s\n", s.config.PDFDirectory)
	text += fmt.Sprintf("Max File Size: %d MB\n", s.config.MaxFileSize/(1024*1024))

	text += "\nAvailable Tools:\n"
	tools := []struct {
		name  string
		usage string
	}{
		{"form_extract_fields", "List all form fields of a PDF with ids, labels, values and positions"},
		{"form_export_json", "Write a PDF's form fields to a JSON file"},
		{"form_update_field", "Patch one field by annotation id or label and save the PDF"},
		{"form_apply_json", "Apply an edited export JSON back to the PDF"},
		{"form_doc_info", "Inspect a PDF's page count, metadata and text preview"},
		{"form_server_info", "Show this information"},
	}
	for _, tool := range tools {
		text += fmt.Sprintf("\n• %s\n", tool.name)
		text += fmt.Sprintf("  %s\n", tool.usage)
	}

	text += "\nTypical workflow: form_extract_fields to discover ids, form_update_field for targeted edits,\n"
	text += "form_export_json + form_apply_json for bulk edits.\n"

	return text
}

// Run starts the MCP server on standard I/O
func (s *Server) Run(ctx context.Context) error {
	if s.config.IsDebug() {
		log.Printf("Starting PDF form editor MCP server in stdio mode")
		log.Printf("PDF directory: %s", s.config.PDFDirectory)
	}

	// Use the mark3labs/mcp-go server.ServeStdio function
	if err := server.ServeStdio(s.mcpServer); err != nil {
		return fmt.Errorf("failed to serve stdio: %w", err)
	}
	return nil
}
