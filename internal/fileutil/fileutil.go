// Package fileutil writes the files a run produces: reports, exports and
// cover images.
package fileutil

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// ErrFileExists is returned when a file exists and overwriting is off.
var ErrFileExists = errors.New("file already exists")

// SanitizeFilename cleans a filename by replacing problematic characters
func SanitizeFilename(name string) string {
	// Replace problematic characters
	name = strings.ReplaceAll(name, ":", " -")
	name = strings.ReplaceAll(name, "/", "-")
	name = strings.ReplaceAll(name, "\\", "-")
	return name
}

// FileExists checks if a file exists at the given path
func FileExists(filePath string) bool {
	info, err := os.Stat(filePath)
	if os.IsNotExist(err) {
		return false
	}
	return err == nil && !info.IsDir()
}

// WriteFileWithOverwrite writes data to a file, respecting the overwrite flag
// Returns true if the file was written, false if it was skipped
func WriteFileWithOverwrite(filePath string, data []byte, perm os.FileMode, overwrite bool) (bool, error) {
	if FileExists(filePath) && !overwrite {
		return false, nil
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return false, fmt.Errorf("failed to create directory: %w", err)
	}

	if err := os.WriteFile(filePath, data, perm); err != nil {
		return false, err
	}

	return true, nil
}

// CreateWithOverwrite creates filePath for streaming output, along with its
// directory. It fails with ErrFileExists when the file exists and overwrite
// is false.
func CreateWithOverwrite(filePath string, overwrite bool) (*os.File, error) {
	if FileExists(filePath) && !overwrite {
		return nil, fmt.Errorf("%s: %w", filePath, ErrFileExists)
	}

	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	f, err := os.Create(filePath)
	if err != nil {
		return nil, fmt.Errorf("failed to create %s: %w", filePath, err)
	}
	return f, nil
}

// WriteJSONFile writes data as JSON to a file, respecting the overwrite flag
// Returns true if the file was written, false if it was skipped
func WriteJSONFile(data any, filePath string, overwrite bool) (bool, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return false, fmt.Errorf("failed to marshal JSON: %w", err)
	}
	return writeReport(jsonData, filePath, overwrite)
}

// WriteYAMLFile writes data as YAML to a file, respecting the overwrite flag
func WriteYAMLFile(data any, filePath string, overwrite bool) (bool, error) {
	yamlData, err := yaml.Marshal(data)
	if err != nil {
		return false, fmt.Errorf("failed to marshal YAML: %w", err)
	}
	return writeReport(yamlData, filePath, overwrite)
}

// WriteReport picks JSON or YAML from the file extension.
func WriteReport(data any, filePath string, overwrite bool) (bool, error) {
	switch strings.ToLower(filepath.Ext(filePath)) {
	case ".json":
		return WriteJSONFile(data, filePath, overwrite)
	case ".yaml", ".yml":
		return WriteYAMLFile(data, filePath, overwrite)
	default:
		return false, fmt.Errorf("unsupported report format %q (use .json, .yaml or .yml)", filepath.Ext(filePath))
	}
}

func writeReport(data []byte, filePath string, overwrite bool) (bool, error) {
	written, err := WriteFileWithOverwrite(filePath, data, 0644, overwrite)
	if err != nil {
		return false, fmt.Errorf("failed to write report: %w", err)
	}
	if !written {
		slog.Info("Report file already exists, skipping", "filename", filePath, "overwrite", overwrite)
		return false, nil
	}
	slog.Info("Wrote report", "filename", filePath)
	return true, nil
}
