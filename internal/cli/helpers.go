package cli

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/aretw0/vivarium/internal/config"
	"github.com/aretw0/vivarium/internal/logging"
	"github.com/aretw0/vivarium/pkg/domain"
)

// SignalContext wraps a context and captures the signal that cancelled it.
type SignalContext struct {
	context.Context
	Cancel func()
	start  sync.Once
	stop   sync.Once
	sigCh  chan os.Signal
	sigVal os.Signal
	mu     sync.Mutex
}

// NewSignalContext creates a context that is cancelled on SIGINT or SIGTERM.
// It acts as a drop-in replacement for signal.NotifyContext but allows retrieving the signal.
func NewSignalContext(parent context.Context) *SignalContext {
	ctx, cancel := context.WithCancel(parent)
	sc := &SignalContext{
		Context: ctx,
		Cancel:  cancel,
		sigCh:   make(chan os.Signal, 1),
	}

	sc.start.Do(func() {
		signal.Notify(sc.sigCh, os.Interrupt, syscall.SIGTERM)
		go func() {
			select {
			case sig := <-sc.sigCh:
				sc.mu.Lock()
				sc.sigVal = sig
				sc.mu.Unlock()
				sc.Cancel()
			case <-sc.Context.Done():
			}
			sc.stop.Do(func() {
				signal.Stop(sc.sigCh)
			})
		}()
	})

	return sc
}

// Signal returns the signal that caused the context to be cancelled, or nil.
func (sc *SignalContext) Signal() os.Signal {
	sc.mu.Lock()
	defer sc.mu.Unlock()
	return sc.sigVal
}

// CreateLogger configures the application logger from settings.
// Debug forces the debug level.
func CreateLogger(s config.LogSettings, debug bool, w io.Writer) (*slog.Logger, error) {
	level, err := logging.ParseLevel(s.Level)
	if err != nil {
		return nil, err
	}
	if debug {
		level = slog.LevelDebug
	}
	format, err := logging.ParseFormat(s.Format)
	if err != nil {
		return nil, err
	}
	return logging.New(level, format, w), nil
}

// PrintSystemMessage prints a standardized system message to w.
func PrintSystemMessage(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, ">>> %s\n", fmt.Sprintf(format, args...))
}

func createDebugHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnProcessUpdate: func(ctx context.Context, e *domain.ProcessEvent) {
			logger.Debug("process update", "path", e.Path.String(), "time", e.Time, "interval", e.Interval, "deriver", e.Deriver)
		},
		OnBatchApplied: func(ctx context.Context, e *domain.BatchEvent) {
			logger.Debug("batch applied", "horizon", e.Horizon, "size", e.Size)
		},
		OnTick: func(ctx context.Context, e *domain.TickEvent) {
			logger.Debug("tick", "time", e.Time, "rounds", e.Rounds, "elapsed", e.Elapsed)
		},
	}
}
