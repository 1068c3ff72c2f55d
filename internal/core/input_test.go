package core

import (
	"os"
	"path/filepath"
	"testing"
)

func writeInputFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "input.json")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadInput(t *testing.T) {
	path := writeInputFile(t, `{
		"batches": [
			{
				"subject_id": "alice",
				"conversations": [
					{
						"id": "conv-1",
						"timestamp": "2026-03-10T14:00:00Z",
						"messages": [
							{"id": "m1", "author_id": "alice", "content": "hello", "timestamp": "2026-03-10T14:00:00Z"}
						]
					}
				]
			}
		],
		"human_records": [
			{"conversation_id": "conv-1", "validator_id": "v1", "human_mood_score": 6}
		]
	}`)

	in, err := LoadInput(path)
	if err != nil {
		t.Fatal(err)
	}
	if len(in.Batches) != 1 || in.Batches[0].SubjectID != "alice" {
		t.Fatalf("batches = %+v, want one for alice", in.Batches)
	}
	if len(in.Batches[0].Conversations) != 1 || in.Batches[0].Conversations[0].ID != "conv-1" {
		t.Errorf("conversations = %+v, want conv-1", in.Batches[0].Conversations)
	}
	if len(in.HumanRecords) != 1 || in.HumanRecords[0].HumanMoodScore != 6 {
		t.Errorf("human records = %+v, want the rating", in.HumanRecords)
	}
}

func TestLoadInputErrors(t *testing.T) {
	t.Run("missing file", func(t *testing.T) {
		if _, err := LoadInput(filepath.Join(t.TempDir(), "absent.json")); err == nil {
			t.Error("missing file accepted")
		}
	})

	t.Run("invalid json", func(t *testing.T) {
		path := writeInputFile(t, "{not json")
		if _, err := LoadInput(path); err == nil {
			t.Error("invalid JSON accepted")
		}
	})

	t.Run("batch without subject id", func(t *testing.T) {
		path := writeInputFile(t, `{"batches": [{"conversations": []}]}`)
		if _, err := LoadInput(path); err == nil {
			t.Error("batch without subject_id accepted")
		}
	})
}
