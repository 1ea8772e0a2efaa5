package cli

import (
	"reflect"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

func typeKeys(m PromptModel, msgs ...tea.KeyMsg) PromptModel {
	for _, msg := range msgs {
		next, _ := m.Update(msg)
		m = next.(PromptModel)
	}
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func key(t tea.KeyType) tea.KeyMsg {
	return tea.KeyMsg{Type: t}
}

func TestPromptEmptyKeepsDefaults(t *testing.T) {
	m := NewPromptModel()
	for range m.Fields {
		m = typeKeys(m, key(tea.KeyEnter))
	}
	if !m.Done {
		t.Fatal("enter on the last field should finish the prompt")
	}
	overrides, fallbacks := m.Overrides()
	if len(overrides) != 0 || len(fallbacks) != 0 {
		t.Errorf("untouched prompt should give no overrides, got %v %v", overrides, fallbacks)
	}
}

func TestPromptValues(t *testing.T) {
	m := NewPromptModel()
	m = typeKeys(m,
		runes("42"), key(tea.KeyEnter), // seed
		runes("16x64x64"), key(tea.KeyEnter), // grid
	)
	overrides, fallbacks := m.Overrides()
	want := []string{"seed=42", "grid=16x64x64"}
	if !reflect.DeepEqual(overrides, want) {
		t.Errorf("overrides = %v, want %v", overrides, want)
	}
	if len(fallbacks) != 0 {
		t.Errorf("fallbacks = %v", fallbacks)
	}
}

func TestPromptMalformedFallsBack(t *testing.T) {
	m := NewPromptModel()
	m = typeKeys(m,
		runes("abc"), key(tea.KeyTab), // seed
		runes("8,8"), key(tea.KeyDown), // grid with two axes
	)
	overrides, fallbacks := m.Overrides()
	if len(overrides) != 0 {
		t.Errorf("malformed input should not become an override: %v", overrides)
	}
	if want := []string{"seed", "grid"}; !reflect.DeepEqual(fallbacks, want) {
		t.Errorf("fallbacks = %v, want %v", fallbacks, want)
	}
	if !strings.Contains(m.View(), "invalid, default used") {
		t.Error("view should flag malformed input")
	}
}

func TestPromptEditing(t *testing.T) {
	m := NewPromptModel()
	m = typeKeys(m, runes("123"), key(tea.KeyBackspace), key(tea.KeyDown), key(tea.KeyUp))
	if m.Cursor != 0 {
		t.Errorf("cursor = %d, want 0", m.Cursor)
	}
	if m.Fields[0].Value != "12" {
		t.Errorf("value = %q, want %q", m.Fields[0].Value, "12")
	}

	// Updates must not leak into earlier models.
	before := m
	after := typeKeys(m, runes("9"))
	if before.Fields[0].Value != "12" || after.Fields[0].Value != "129" {
		t.Errorf("values before/after = %q/%q", before.Fields[0].Value, after.Fields[0].Value)
	}

	m = typeKeys(m, key(tea.KeyUp))
	if m.Cursor != 0 {
		t.Error("cursor should stay on the first field")
	}
}

func TestPromptAbort(t *testing.T) {
	for _, k := range []tea.KeyType{tea.KeyEsc, tea.KeyCtrlC} {
		m := typeKeys(NewPromptModel(), key(k))
		if !m.Aborted {
			t.Errorf("%v should abort the prompt", k)
		}
	}
}

func TestTripleValidators(t *testing.T) {
	tests := []struct {
		in    string
		ints  bool
		float bool
	}{
		{"32,128,128", true, true},
		{"32x128x128", true, true},
		{"32 128 128", true, true},
		{"64,128.5,128", false, true},
		{"1,2", false, false},
		{"a,b,c", false, false},
	}
	for _, tt := range tests {
		if got := isIntTriple(tt.in); got != tt.ints {
			t.Errorf("isIntTriple(%q) = %v, want %v", tt.in, got, tt.ints)
		}
		if got := isFloatTriple(tt.in); got != tt.float {
			t.Errorf("isFloatTriple(%q) = %v, want %v", tt.in, got, tt.float)
		}
	}
}
