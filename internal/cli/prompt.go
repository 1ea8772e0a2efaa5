package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"slices"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/matzehuels/starscape/pkg/pipeline"
)

var (
	promptLabelStyle   = lipgloss.NewStyle().Foreground(colorGray).Width(16)
	promptActiveStyle  = lipgloss.NewStyle().Bold(true).Foreground(colorCyan).Width(16)
	promptInvalidStyle = lipgloss.NewStyle().Foreground(colorYellow)
)

// errPromptAborted is returned when the user leaves the prompt with esc or ctrl+c.
var errPromptAborted = errors.New("prompt aborted")

// promptField is one editable parameter.
type promptField struct {
	Key     string // pipeline option key
	Label   string
	Default string
	Value   string
	valid   func(string) bool
}

// resolved returns the typed value, or the default when the input is empty or
// malformed.
func (f promptField) resolved() (string, bool) {
	v := strings.TrimSpace(f.Value)
	if v == "" {
		return f.Default, true
	}
	if !f.valid(v) {
		return f.Default, false
	}
	return v, true
}

// PromptModel is the bubbletea model for entering run parameters.
type PromptModel struct {
	Fields  []promptField
	Cursor  int
	Done    bool
	Aborted bool
}

// NewPromptModel creates a prompt for the numeric run parameters, prefilled
// with nothing so that pressing enter keeps each default.
func NewPromptModel() PromptModel {
	triple := func(v [3]int) string { return fmt.Sprintf("%d,%d,%d", v[0], v[1], v[2]) }
	ftriple := func(v [3]float64) string { return fmt.Sprintf("%g,%g,%g", v[0], v[1], v[2]) }
	return PromptModel{Fields: []promptField{
		{Key: "seed", Label: "Seed (0 random)", Default: "0", valid: isInt},
		{Key: "grid", Label: "Grid", Default: triple(pipeline.DefaultGrid), valid: isIntTriple},
		{Key: "chunk", Label: "Chunk", Default: triple(pipeline.DefaultChunk), valid: isIntTriple},
		{Key: "feature", Label: "Feature size", Default: ftriple(pipeline.DefaultFeature), valid: isFloatTriple},
		{Key: "exponent", Label: "Exponent", Default: fmt.Sprint(pipeline.DefaultExponent), valid: isFloat},
		{Key: "cutoff", Label: "Cluster cutoff", Default: fmt.Sprint(pipeline.DefaultCutoff), valid: isFloat},
		{Key: "universe_age", Label: "Universe (Gyr)", Default: fmt.Sprint(pipeline.DefaultUniverseAge), valid: isFloat},
		{Key: "count", Label: "Stars", Default: fmt.Sprint(pipeline.DefaultCount), valid: isInt},
	}}
}

func (m PromptModel) Init() tea.Cmd {
	return nil
}

func (m PromptModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.Type {
	case tea.KeyCtrlC, tea.KeyEsc:
		m.Aborted = true
		return m, tea.Quit
	case tea.KeyEnter:
		if m.Cursor == len(m.Fields)-1 {
			m.Done = true
			return m, tea.Quit
		}
		m.Cursor++
	case tea.KeyDown, tea.KeyTab:
		if m.Cursor < len(m.Fields)-1 {
			m.Cursor++
		}
	case tea.KeyUp, tea.KeyShiftTab:
		if m.Cursor > 0 {
			m.Cursor--
		}
	case tea.KeyBackspace:
		m.Fields = slices.Clone(m.Fields)
		if r := []rune(m.Fields[m.Cursor].Value); len(r) > 0 {
			m.Fields[m.Cursor].Value = string(r[:len(r)-1])
		}
	case tea.KeySpace:
		m.Fields = slices.Clone(m.Fields)
		m.Fields[m.Cursor].Value += " "
	case tea.KeyRunes:
		m.Fields = slices.Clone(m.Fields)
		m.Fields[m.Cursor].Value += string(key.Runes)
	}
	return m, nil
}

func (m PromptModel) View() string {
	var b strings.Builder

	b.WriteString(StyleTitle.Render("Star field parameters"))
	b.WriteString("\n")
	b.WriteString(StyleDim.Render("⏎ next  ↑/↓ move  esc cancel  (empty keeps the default)"))
	b.WriteString("\n\n")

	for i, f := range m.Fields {
		label := promptLabelStyle.Render(f.Label)
		value := f.Value
		if i == m.Cursor {
			label = promptActiveStyle.Render(f.Label)
			value += "▌"
		}
		line := label + " " + StyleValue.Render(value) + " " + StyleDim.Render("["+f.Default+"]")
		if v := strings.TrimSpace(f.Value); v != "" && !f.valid(v) {
			line += " " + promptInvalidStyle.Render("invalid, default used")
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return b.String()
}

// Overrides returns the entered values as key=value pairs for
// pipeline.LoadOptions. Empty fields are left out so lower-precedence sources
// keep their values; malformed ones are left out too and their keys returned
// as the second result.
func (m PromptModel) Overrides() ([]string, []string) {
	var out, fallbacks []string
	for _, f := range m.Fields {
		v, ok := f.resolved()
		switch {
		case !ok:
			fallbacks = append(fallbacks, f.Key)
		case strings.TrimSpace(f.Value) != "":
			out = append(out, f.Key+"="+v)
		}
	}
	return out, fallbacks
}

// runPrompt shows the prompt on out and returns the overrides.
func runPrompt(ctx context.Context, in io.Reader, out io.Writer) ([]string, []string, error) {
	p := tea.NewProgram(NewPromptModel(), tea.WithContext(ctx), tea.WithInput(in), tea.WithOutput(out))
	final, err := p.Run()
	if err != nil {
		if ctx.Err() != nil {
			return nil, nil, ctx.Err()
		}
		return nil, nil, fmt.Errorf("prompt: %w", err)
	}
	m := final.(PromptModel)
	if m.Aborted {
		return nil, nil, errPromptAborted
	}
	overrides, fallbacks := m.Overrides()
	return overrides, fallbacks, nil
}

func isInt(s string) bool {
	_, err := strconv.ParseInt(s, 10, 64)
	return err == nil
}

func isFloat(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

func isIntTriple(s string) bool   { return isTriple(s, isInt) }
func isFloatTriple(s string) bool { return isTriple(s, isFloat) }

func isTriple(s string, elem func(string) bool) bool {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ',' || r == 'x' || r == ' ' })
	if len(parts) != 3 {
		return false
	}
	for _, p := range parts {
		if !elem(p) {
			return false
		}
	}
	return true
}
