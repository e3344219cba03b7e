// Package report renders inspection results as JSON and PDF.
package report

import (
	"encoding/json"
	"os"

	"example.com/flvgate/internal/splice"
)

func SaveInspectionJSON(in splice.Inspection, out string) error {
	b, err := json.MarshalIndent(in, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(out, b, 0644)
}

func LoadInspectionJSON(path string) (splice.Inspection, error) {
	var in splice.Inspection
	b, err := os.ReadFile(path)
	if err != nil {
		return in, err
	}
	err = json.Unmarshal(b, &in)
	return in, err
}
