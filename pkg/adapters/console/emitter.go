package console

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/muesli/termenv"

	"github.com/aretw0/vivarium/pkg/domain"
)

// Format selects how envelopes are printed.
type Format string

const (
	// FormatText prints a coloured table label followed by the JSON data.
	FormatText Format = "text"
	// FormatJSON prints one JSON envelope per line.
	FormatJSON Format = "json"
)

// Emitter prints every envelope it receives. It is the sink of choice for
// quick runs and for piping history into other tools.
type Emitter struct {
	mu      sync.Mutex
	out     io.Writer
	format  Format
	profile termenv.Profile
}

// Option configures the Emitter.
type Option func(*Emitter)

// WithWriter sets the destination (default: os.Stdout).
func WithWriter(w io.Writer) Option {
	return func(e *Emitter) {
		e.out = w
	}
}

// WithFormat sets the output format (default: FormatText).
func WithFormat(format Format) Option {
	return func(e *Emitter) {
		e.format = format
	}
}

// WithProfile overrides the detected terminal colour profile.
func WithProfile(profile termenv.Profile) Option {
	return func(e *Emitter) {
		e.profile = profile
	}
}

// New creates a console emitter.
func New(opts ...Option) *Emitter {
	e := &Emitter{
		out:     os.Stdout,
		format:  FormatText,
		profile: termenv.ColorProfile(),
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Emit prints envelope. Data that cannot be encoded as JSON is an error.
func (e *Emitter) Emit(ctx context.Context, envelope domain.Envelope) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if e.format == FormatJSON {
		line, err := json.Marshal(envelope)
		if err != nil {
			return fmt.Errorf("failed to encode %s envelope: %w", envelope.Table, err)
		}
		_, err = fmt.Fprintln(e.out, string(line))
		return err
	}

	data, err := json.Marshal(envelope.Data)
	if err != nil {
		return fmt.Errorf("failed to encode %s envelope: %w", envelope.Table, err)
	}
	label := e.profile.String(e.label(envelope)).Foreground(e.color(envelope.Table)).Bold()
	_, err = fmt.Fprintf(e.out, "%s %s\n", label, data)
	return err
}

func (e *Emitter) label(envelope domain.Envelope) string {
	if t, ok := envelope.Time(); ok {
		return fmt.Sprintf("[%s t=%g]", envelope.Table, t)
	}
	return fmt.Sprintf("[%s]", envelope.Table)
}

func (e *Emitter) color(table domain.Table) termenv.Color {
	if table == domain.TableConfiguration {
		return e.profile.Color("#a78bfa")
	}
	return e.profile.Color("#818cf8")
}
