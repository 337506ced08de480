package cli

import (
	"fmt"
	"io"

	"github.com/aretw0/vivarium/internal/config"
	"github.com/aretw0/vivarium/pkg/adapters/console"
	"github.com/aretw0/vivarium/pkg/adapters/file"
	"github.com/aretw0/vivarium/pkg/adapters/memory"
	"github.com/aretw0/vivarium/pkg/adapters/redis"
	"github.com/aretw0/vivarium/pkg/ports"
)

// Sink is the emitter selected by the settings. Source is nil for sinks
// that cannot be read back (print, null).
type Sink struct {
	Emitter ports.Emitter
	Source  ports.HistorySource
	closer  io.Closer
}

// Close releases the connection held by the sink, if any.
func (s Sink) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer.Close()
}

// OpenSink creates the emitter described by s. Print output goes to out.
func OpenSink(s config.EmitterSettings, out io.Writer) (Sink, error) {
	switch s.Type {
	case config.EmitterPrint:
		format := console.FormatText
		if s.Format == string(console.FormatJSON) {
			format = console.FormatJSON
		}
		return Sink{Emitter: console.New(console.WithWriter(out), console.WithFormat(format))}, nil
	case config.EmitterNull:
		return Sink{Emitter: memory.NewNull()}, nil
	case "", config.EmitterTimeseries:
		m := memory.NewEmitter()
		return Sink{Emitter: m, Source: m}, nil
	case config.EmitterFile:
		f := file.New(s.Path)
		return Sink{Emitter: f, Source: f}, nil
	case config.EmitterRedis:
		var opts []redis.Option
		if s.Prefix != "" {
			opts = append(opts, redis.WithPrefix(s.Prefix))
		}
		r := redis.New(s.Address, s.Password, s.DB, opts...)
		return Sink{Emitter: r, Source: r, closer: r}, nil
	}
	return Sink{}, fmt.Errorf("unknown emitter type %q", s.Type)
}
