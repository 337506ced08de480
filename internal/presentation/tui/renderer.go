package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/glamour"

	"github.com/aretw0/vivarium/pkg/domain"
)

// NewRenderer returns a function that renders markdown using glamour.
// The style follows the terminal background.
func NewRenderer() func(string) (string, error) {
	r, err := glamour.NewTermRenderer(
		glamour.WithAutoStyle(),
	)
	return func(markdown string) (string, error) {
		if err != nil {
			return markdown, err
		}
		return r.Render(markdown)
	}
}

// Summary describes a finished run.
type Summary struct {
	ExperimentID string
	Composite    string
	Time         float64
	// Series is the flat per-path time series of the run.
	Series map[string][]any
}

// Markdown renders s as a markdown report: a header and one table row per
// emitted path with its first and last values.
func (s Summary) Markdown() string {
	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", s.Composite)
	fmt.Fprintf(&sb, "Experiment `%s` reached time **%g**", s.ExperimentID, s.Time)
	if times := s.Series[domain.KeyTime]; len(times) > 0 {
		fmt.Fprintf(&sb, " after %d emitted ticks", len(times))
	}
	sb.WriteString(".\n\n")

	paths := domain.SortedKeys(s.Series)
	if len(paths) <= 1 {
		sb.WriteString("_No state was emitted._\n")
		return sb.String()
	}
	sb.WriteString("| path | first | last |\n|---|---|---|\n")
	for _, path := range paths {
		if path == domain.KeyTime {
			continue
		}
		values := s.Series[path]
		fmt.Fprintf(&sb, "| %s | %s | %s |\n", path, cell(firstSet(values)), cell(lastSet(values)))
	}
	return sb.String()
}

// Render renders the markdown report for the terminal.
func (s Summary) Render() (string, error) {
	return NewRenderer()(s.Markdown())
}

func firstSet(values []any) any {
	for _, v := range values {
		if v != nil {
			return v
		}
	}
	return nil
}

func lastSet(values []any) any {
	for i := len(values) - 1; i >= 0; i-- {
		if values[i] != nil {
			return values[i]
		}
	}
	return nil
}

func cell(v any) string {
	if v == nil {
		return "-"
	}
	return strings.ReplaceAll(fmt.Sprint(v), "|", `\|`)
}
