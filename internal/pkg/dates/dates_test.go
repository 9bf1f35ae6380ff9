package dates

import (
	"encoding/json"
	"testing"
	"time"
)

func TestParse_Layouts(t *testing.T) {
	cases := map[string]time.Time{
		"2025-01-01":                time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		"2025-01-01T10:30:00Z":      time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC),
		"2025-01-01T12:30:00+02:00": time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC),
		"2025-01-01 10:30:00":       time.Date(2025, 1, 1, 10, 30, 0, 0, time.UTC),
	}
	for in, want := range cases {
		got, err := Parse(in)
		if err != nil {
			t.Errorf("parse %q failed: %v", in, err)
			continue
		}
		if !got.Equal(want) {
			t.Errorf("parse %q: expected %v, got %v", in, want, got)
		}
	}

	if _, err := Parse("01/02/2025"); err == nil {
		t.Error("expected error for unsupported layout")
	}
}

func TestTime_UnmarshalJSON(t *testing.T) {
	var body struct {
		From *Time `json:"from"`
		To   *Time `json:"to"`
	}
	if err := json.Unmarshal([]byte(`{"from":"2025-01-01","to":null}`), &body); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	if body.From == nil || body.From.Year() != 2025 {
		t.Errorf("expected from date in 2025, got %v", body.From)
	}
	if body.To.Ptr() != nil {
		t.Errorf("expected nil to, got %v", body.To)
	}
}
