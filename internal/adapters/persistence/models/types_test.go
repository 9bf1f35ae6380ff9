package models

import "testing"

func TestStringList_ValueKeepsMarkup(t *testing.T) {
	v, err := StringList{"R&D", "C<T>"}.Value()
	if err != nil {
		t.Fatalf("value failed: %v", err)
	}
	if v != `["R&D","C<T>"]` {
		t.Errorf("expected %s, got %v", `["R&D","C<T>"]`, v)
	}

	var back StringList
	if err := back.Scan(v); err != nil {
		t.Fatalf("scan failed: %v", err)
	}
	if len(back) != 2 || back[0] != "R&D" || back[1] != "C<T>" {
		t.Errorf("expected [R&D C<T>], got %v", back)
	}
}

func TestJSONFragment(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Go", "Go"},
		{"R&D", "R&D"},
		{`say "hi"`, `say \"hi\"`},
		{`C:\dev`, `C:\\dev`},
	}
	for _, tt := range tests {
		if got := JSONFragment(tt.in); got != tt.want {
			t.Errorf("JSONFragment(%q): expected %q, got %q", tt.in, tt.want, got)
		}
	}
}
