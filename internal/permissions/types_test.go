package permissions

import (
	"encoding/json"
	"testing"
)

func TestLevelRoundTrip(t *testing.T) {
	for _, level := range []Level{LevelYes, LevelYesWithDelay, LevelNo} {
		parsed, err := ParseLevel(level.String())
		if err != nil {
			t.Fatalf("ParseLevel(%s): %v", level, err)
		}
		if parsed != level {
			t.Errorf("ParseLevel(%s) = %v, want %v", level, parsed, level)
		}
	}
}

func TestLevelZeroValueInvalid(t *testing.T) {
	var level Level
	if level.Valid() {
		t.Error("zero value must not validate")
	}
	if LevelUnknown.Valid() {
		t.Error("LevelUnknown must not validate")
	}
	for _, l := range []Level{LevelYes, LevelYesWithDelay, LevelNo} {
		if !l.Valid() {
			t.Errorf("%s must validate", l)
		}
	}
}

func TestParseLevelRejectsUnknown(t *testing.T) {
	for _, input := range []string{"", "Yes", "YES_WITH_DELAY", "maybe"} {
		if _, err := ParseLevel(input); err == nil {
			t.Errorf("ParseLevel(%q): expected error", input)
		}
	}
}

func TestLevelJSON(t *testing.T) {
	data, err := json.Marshal(LevelYesWithDelay)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	if string(data) != `"yes_with_delay"` {
		t.Errorf("marshal = %s", data)
	}

	var level Level
	if err := json.Unmarshal([]byte(`"no"`), &level); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if level != LevelNo {
		t.Errorf("unmarshal = %v, want LevelNo", level)
	}

	if err := json.Unmarshal([]byte(`"nope"`), &level); err == nil {
		t.Error("unmarshal of unknown label should fail")
	}
}

func TestBuildDelay(t *testing.T) {
	tests := []struct {
		value int
		unit  string
		want  string
	}{
		{3, "d", "3d"},
		{2, "w", "2w"},
		{0, "", "0"},
		// The unit token is stored verbatim; its domain is an open
		// product decision.
		{1, "fortnight", "1fortnight"},
	}
	for _, tt := range tests {
		if got := BuildDelay(tt.value, tt.unit); got != tt.want {
			t.Errorf("BuildDelay(%d, %q) = %q, want %q", tt.value, tt.unit, got, tt.want)
		}
	}
}
