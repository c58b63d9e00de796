package log

import (
	"encoding/json"
	"errors"
	"testing"
	"time"
)

func TestEntry_MarshalJSON_FlattensFields(t *testing.T) {
	// Arrange
	entry := NewEntry(Info, "dataset loaded")
	entry.Timestamp = time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	entry.RequestID = "abc"
	entry.With("posts", 50, "took", 1500*time.Millisecond, "error", errors.New("boom"))

	// Act
	data, err := json.Marshal(entry)

	// Assert
	if err != nil {
		t.Fatalf("Marshal() error = %v", err)
	}
	var got map[string]any
	if err := json.Unmarshal(data, &got); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	want := map[string]any{
		"timestamp":  "2024-01-02T03:04:05Z",
		"level":      "INFO",
		"msg":        "dataset loaded",
		"request_id": "abc",
		"posts":      float64(50),
		"took":       "1.5s",
		"error":      "boom",
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("%s = %v, want %v", k, got[k], v)
		}
	}
	if _, ok := got["caller"]; ok {
		t.Error("empty caller should be omitted")
	}
}

func TestEntry_MarshalJSON_ReservedKeysWin(t *testing.T) {
	entry := NewEntry(Error, "real message").With("msg", "shadow", "level", "DEBUG")

	data, _ := json.Marshal(entry)

	var got map[string]any
	_ = json.Unmarshal(data, &got)
	if got["msg"] != "real message" || got["level"] != "ERROR" {
		t.Errorf("fields must not override entry metadata, got %v", got)
	}
}

func TestEntry_With_SkipsInvalidPairs(t *testing.T) {
	entry := NewEntry(Info, "x").With("a", 1, 2, "b", "dangling")

	if len(entry.Fields) != 1 || entry.Fields["a"] != 1 {
		t.Errorf("Fields = %v, want only a=1", entry.Fields)
	}
}
