package pdf

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestValidateFileInfo(t *testing.T) {
	validator := NewValidator(1024 * 1024)
	tempDir := t.TempDir()

	tests := []struct {
		name    string
		setup   func(t *testing.T) string
		wantErr string
	}{
		{
			name: "directory instead of file",
			setup: func(t *testing.T) string {
				return tempDir
			},
			wantErr: "directory",
		},
		{
			name: "wrong extension",
			setup: func(t *testing.T) string {
				path := filepath.Join(tempDir, "notes.txt")
				if err := os.WriteFile(path, []byte("text"), 0o644); err != nil {
					t.Fatalf("failed to write file: %v", err)
				}
				return path
			},
			wantErr: "not a PDF",
		},
		{
			name: "empty file",
			setup: func(t *testing.T) string {
				path := filepath.Join(tempDir, "empty.pdf")
				if err := os.WriteFile(path, nil, 0o644); err != nil {
					t.Fatalf("failed to write file: %v", err)
				}
				return path
			},
			wantErr: "empty",
		},
		{
			name: "file too large",
			setup: func(t *testing.T) string {
				path := filepath.Join(tempDir, "big.pdf")
				if err := os.WriteFile(path, make([]byte, 2*1024*1024), 0o644); err != nil {
					t.Fatalf("failed to write file: %v", err)
				}
				return path
			},
			wantErr: "too large",
		},
		{
			name: "acceptable file",
			setup: func(t *testing.T) string {
				path := filepath.Join(tempDir, "ok.pdf")
				if err := os.WriteFile(path, []byte("%PDF-1.4 stub"), 0o644); err != nil {
					t.Fatalf("failed to write file: %v", err)
				}
				return path
			},
			wantErr: "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := tt.setup(t)
			info, err := os.Stat(path)
			if err != nil {
				t.Fatalf("stat failed: %v", err)
			}

			err = validator.ValidateFileInfo(path, info)
			if tt.wantErr == "" {
				if err != nil {
					t.Errorf("ValidateFileInfo() unexpected error: %v", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("ValidateFileInfo() expected error containing %q", tt.wantErr)
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("ValidateFileInfo() error = %v, want substring %q", err, tt.wantErr)
			}
		})
	}
}

func TestValidateFile_NotAPDF(t *testing.T) {
	validator := NewValidator(1024 * 1024)

	// A .pdf extension with garbage content should fail the open probe
	path := filepath.Join(t.TempDir(), "fake.pdf")
	if err := os.WriteFile(path, make([]byte, 1024), 0o644); err != nil {
		t.Fatalf("failed to write file: %v", err)
	}

	result, err := validator.ValidateFile(ValidateFileRequest{Path: path})
	if err != nil {
		t.Fatalf("ValidateFile() should not return a processing error: %v", err)
	}
	if result.Valid {
		t.Error("ValidateFile() should mark garbage content as invalid")
	}
	if result.Message == "" {
		t.Error("ValidateFile() should carry a validation message")
	}
}

func TestValidateFile_MissingFile(t *testing.T) {
	validator := NewValidator(1024 * 1024)

	result, err := validator.ValidateFile(ValidateFileRequest{Path: "/nonexistent/file.pdf"})
	if err != nil {
		t.Fatalf("ValidateFile() should not return a processing error: %v", err)
	}
	if result.Valid {
		t.Error("ValidateFile() should mark a missing file as invalid")
	}
	if !strings.Contains(result.Message, "does not exist") {
		t.Errorf("unexpected message: %s", result.Message)
	}
}

func TestValidateFile_ValidPDF(t *testing.T) {
	validator := NewValidator(1024 * 1024)
	path := docFixturePDF(t)

	result, err := validator.ValidateFile(ValidateFileRequest{Path: path})
	if err != nil {
		t.Fatalf("ValidateFile() failed: %v", err)
	}
	if !result.Valid {
		t.Errorf("ValidateFile() should accept a well-formed PDF, got message: %s", result.Message)
	}
}
