// Package commands implements the forge CLI commands.
package commands

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Common string constants used throughout the commands package.
const (
	NotAvailable = "N/A"

	// Output formats.
	OutputFormatJSON = "json"
	OutputFormatYAML = "yaml"

	// YAML formatting.
	defaultYAMLIndent = 2

	dateFormat = "2006-01-02"
)

// Common static errors used throughout the commands package.
var (
	ErrAPIEndpointRequired        = errors.New("API endpoint is required")
	ErrScriptGUIDRequired         = errors.New("script GUID is required (--script)")
	ErrAgentNameRequired          = errors.New("agent name is required")
	ErrScriptNameRequired         = errors.New("script name is required")
	ErrDirectoryTraversalDetected = errors.New("path contains directory traversal sequences")
)

// readScriptFile reads a local script source file after validating the path.
func readScriptFile(filePath string) (string, error) {
	cleanPath := filepath.Clean(filePath)

	if filepath.IsAbs(filePath) {
		if cleanPath != filePath {
			return "", ErrDirectoryTraversalDetected
		}
	} else if strings.HasPrefix(cleanPath, "..") {
		return "", ErrDirectoryTraversalDetected
	}

	content, err := os.ReadFile(cleanPath)
	if err != nil {
		return "", fmt.Errorf("failed to read script file: %w", err)
	}

	return string(content), nil
}

// StandardJSONRenderer encodes data to stdout as indented JSON.
func StandardJSONRenderer[T any](data T) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to JSON: %w", err)
	}

	return nil
}

// StandardYAMLRenderer encodes data to stdout as YAML.
func StandardYAMLRenderer[T any](data T) error {
	encoder := yaml.NewEncoder(os.Stdout)
	encoder.SetIndent(defaultYAMLIndent)

	err := encoder.Encode(data)
	if err != nil {
		return fmt.Errorf("encoding data to YAML: %w", err)
	}

	return nil
}

// formatDate renders a timestamp as a short date, or N/A when zero.
func formatDate(t time.Time) string {
	if t.IsZero() {
		return NotAvailable
	}

	return t.Format(dateFormat)
}

// boolLabel renders a boolean as enabled/disabled.
func boolLabel(enabled bool) string {
	if enabled {
		return "enabled"
	}

	return "disabled"
}
