package main

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/acrofield/pdf-form-editor/internal/form"
	"github.com/acrofield/pdf-form-editor/internal/pdf"
)

var (
	outputFormat = flag.String("format", "text", "Output format: text, json")
	exportPath   = flag.String("export", "", "Write the field export JSON to this path")
	applyPath    = flag.String("apply", "", "Apply an edited export JSON and save the PDF")
	outputPath   = flag.String("output", "", "Path the modified PDF is saved to (overwrites the source if empty)")
	showInfo     = flag.Bool("info", false, "Show document info instead of fields")
	help         = flag.Bool("help", false, "Show help message")
)

const defaultMaxFileSize = 100 * 1024 * 1024

func main() {
	flag.Parse()

	if *help {
		printHelp()
		return
	}

	if flag.NArg() == 0 {
		fmt.Fprintf(os.Stderr, "Error: PDF file path required\n\n")
		printUsage()
		os.Exit(1)
	}

	pdfPath := flag.Arg(0)
	if _, err := os.Stat(pdfPath); os.IsNotExist(err) {
		fmt.Fprintf(os.Stderr, "Error: File not found: %s\n", pdfPath)
		os.Exit(1)
	}

	if *showInfo {
		if err := runDocInfo(pdfPath); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		return
	}

	if err := runFields(pdfPath); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func runFields(pdfPath string) error {
	meta := form.Metadata{
		Name:    filepath.Base(pdfPath),
		Year:    time.Now().Year(),
		Version: "1.0",
	}

	fo, err := form.Open(pdfPath, meta)
	if err != nil {
		return err
	}
	defer fo.Close()

	if *applyPath != "" {
		if err := fo.LoadJSON(*applyPath); err != nil {
			return err
		}
		if err := fo.SavePDF(*outputPath); err != nil {
			return err
		}
		saved := *outputPath
		if saved == "" {
			saved = pdfPath
		}
		fmt.Printf("Applied %s: %d field(s) written to %s\n", *applyPath, fo.FieldCount(), saved)
		return nil
	}

	if *exportPath != "" {
		if err := fo.WriteJSON(*exportPath); err != nil {
			return err
		}
		fmt.Printf("Exported %d field(s) to %s\n", fo.FieldCount(), *exportPath)
		return nil
	}

	switch *outputFormat {
	case "json":
		data, err := fo.ExportJSON()
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(append(data, '\n'))
		return err
	case "text":
		fmt.Print(fo.Summary())
		return nil
	default:
		return fmt.Errorf("unsupported output format: %s", *outputFormat)
	}
}

func runDocInfo(pdfPath string) error {
	service := pdf.NewService(defaultMaxFileSize)

	result, err := service.DocInfo(pdf.DocInfoRequest{Path: pdfPath})
	if err != nil {
		return err
	}

	fmt.Printf("File: %s\n", result.Path)
	fmt.Printf("Size: %d bytes\n", result.Size)
	fmt.Printf("Pages: %d\n", result.Pages)
	fmt.Printf("Modified: %s\n", result.ModifiedDate)
	if result.Title != "" {
		fmt.Printf("Title: %s\n", result.Title)
	}
	if result.Author != "" {
		fmt.Printf("Author: %s\n", result.Author)
	}
	if result.Producer != "" {
		fmt.Printf("Producer: %s\n", result.Producer)
	}
	if result.CreatedDate != "" {
		fmt.Printf("Created: %s\n", result.CreatedDate)
	}
	return nil
}

func printHelp() {
	fmt.Println("Form Fields - Inspect and edit fillable form fields in PDF documents")
	fmt.Println()
	printUsage()
	fmt.Println()
	fmt.Println("OPTIONS:")
	fmt.Println("  -format        Output format: text (default), json")
	fmt.Println("  -export        Write the field export JSON to the given path")
	fmt.Println("  -apply         Apply an edited export JSON and save the PDF")
	fmt.Println("  -output        Path the modified PDF is saved to (with -apply)")
	fmt.Println("  -info          Show document info instead of fields")
	fmt.Println("  -help          Show this help message")
	fmt.Println()
	fmt.Println("EXAMPLES:")
	fmt.Println("  form_fields document.pdf")
	fmt.Println("  form_fields -format json document.pdf")
	fmt.Println("  form_fields -export fields.json document.pdf")
	fmt.Println("  form_fields -apply fields.json -output filled.pdf document.pdf")
	fmt.Println("  form_fields -info document.pdf")
}

func printUsage() {
	fmt.Println("USAGE:")
	fmt.Println("  form_fields [OPTIONS] <pdf_file>")
}

func init() {
	// Custom flag usage
	flag.Usage = func() {
		printHelp()
	}
}
