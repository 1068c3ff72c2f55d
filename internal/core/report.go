package core

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"moodscope/pkg/util"
)

// WriteReport writes a batch report as indented JSON under dir and returns
// the file path.
func WriteReport(dir string, report *BatchReport) (string, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create report directory: %w", err)
	}

	raw, err := json.MarshalIndent(report, "", "  ")
	if err != nil {
		return "", fmt.Errorf("failed to marshal report: %w", err)
	}

	stamp := util.FormatDateTpl(report.StartedAt.UnixMilli(), "YYYY-MM-DD_hhmmss")
	path := filepath.Join(dir, fmt.Sprintf("run_%s.json", stamp))
	if err := os.WriteFile(path, raw, 0644); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}
	return path, nil
}
