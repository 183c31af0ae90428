// Package ui holds the dashboard page served at "/".
package ui

import (
	_ "embed"
	"fmt"
	"os"
)

//go:embed index.html
var index []byte

// Page returns the dashboard document. A non-empty overridePath is read
// from disk instead of the embedded copy.
func Page(overridePath string) ([]byte, error) {
	if overridePath == "" {
		return index, nil
	}
	data, err := os.ReadFile(overridePath)
	if err != nil {
		return nil, fmt.Errorf("read ui document: %w", err)
	}
	return data, nil
}
