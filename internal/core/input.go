package core

import (
	"encoding/json"
	"fmt"
	"os"

	"moodscope/internal/mood"
)

// SubjectBatch groups the conversations of one subject, oldest first.
type SubjectBatch struct {
	SubjectID     string                  `json:"subject_id"`
	Conversations []mood.ConversationData `json:"conversations"`
}

// Input is the JSON shape the batch runner consumes.
type Input struct {
	Batches      []SubjectBatch               `json:"batches"`
	HumanRecords []mood.HumanValidationRecord `json:"human_records,omitempty"`
}

// LoadInput reads and decodes a batch input file.
func LoadInput(path string) (*Input, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read input file: %w", err)
	}

	var in Input
	if err := json.Unmarshal(raw, &in); err != nil {
		return nil, fmt.Errorf("invalid input JSON: %w", err)
	}

	for i, b := range in.Batches {
		if b.SubjectID == "" {
			return nil, fmt.Errorf("batch %d has no subject_id", i)
		}
	}
	return &in, nil
}
