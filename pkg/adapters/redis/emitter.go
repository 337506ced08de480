package redis

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"

	backend "github.com/redis/go-redis/v9"

	"github.com/aretw0/vivarium/pkg/domain"
)

// Emitter publishes envelopes to Redis. History records are appended to a
// stream (XADD) so several consumers can follow a running experiment; the
// configuration record is stored as a plain JSON value. Keys are
// <prefix><experiment_id>:configuration and <prefix><experiment_id>:history,
// or <prefix>configuration and <prefix>history for envelopes without an id.
//
// Reads follow the experiment set with WithExperiment, or else the one most
// recently emitted.
type Emitter struct {
	client *backend.Client
	prefix string
	maxLen int64

	mu         sync.Mutex
	experiment string
	pinned     bool
}

// Option configures the Emitter.
type Option func(*Emitter)

// WithPrefix sets the key prefix (default "vivarium:").
func WithPrefix(prefix string) Option {
	return func(e *Emitter) {
		e.prefix = prefix
	}
}

// WithMaxLen caps the history stream at n entries, dropping the oldest.
// Zero keeps every entry.
func WithMaxLen(n int64) Option {
	return func(e *Emitter) {
		e.maxLen = n
	}
}

// WithExperiment pins reads to the records of experiment id.
func WithExperiment(id string) Option {
	return func(e *Emitter) {
		e.experiment = id
		e.pinned = true
	}
}

// New creates a Redis emitter connected to address.
func New(address, password string, db int, opts ...Option) *Emitter {
	rdb := backend.NewClient(&backend.Options{
		Addr:     address,
		Password: password,
		DB:       db,
	})
	return NewFromClient(rdb, opts...)
}

// NewFromClient creates a Redis emitter from an existing client.
func NewFromClient(client *backend.Client, opts ...Option) *Emitter {
	e := &Emitter{
		client: client,
		prefix: "vivarium:",
	}
	for _, opt := range opts {
		opt(e)
	}
	return e
}

// Close releases the underlying client.
func (e *Emitter) Close() error {
	return e.client.Close()
}

func (e *Emitter) key(experimentID, table string) string {
	if experimentID == "" {
		return e.prefix + table
	}
	return e.prefix + experimentID + ":" + table
}

// reading returns the experiment whose records reads return.
func (e *Emitter) reading() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.experiment
}

func (e *Emitter) follow(experimentID string) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if !e.pinned {
		e.experiment = experimentID
	}
}

// Emit stores envelope. Unknown tables are ignored.
func (e *Emitter) Emit(ctx context.Context, envelope domain.Envelope) error {
	data, err := json.Marshal(envelope.Data)
	if err != nil {
		return fmt.Errorf("failed to marshal %s envelope: %w", envelope.Table, err)
	}

	switch envelope.Table {
	case domain.TableConfiguration:
		key := e.key(envelope.ExperimentID, string(domain.TableConfiguration))
		if err := e.client.Set(ctx, key, data, 0).Err(); err != nil {
			return fmt.Errorf("failed to save configuration to redis: %w", err)
		}
	case domain.TableHistory:
		args := &backend.XAddArgs{
			Stream: e.key(envelope.ExperimentID, string(domain.TableHistory)),
			MaxLen: e.maxLen,
			Values: map[string]any{
				"experiment_id": envelope.ExperimentID,
				"data":          data,
			},
		}
		if err := e.client.XAdd(ctx, args).Err(); err != nil {
			return fmt.Errorf("failed to append history to redis: %w", err)
		}
	default:
		return nil
	}
	e.follow(envelope.ExperimentID)
	return nil
}

// Configuration reads back the configuration record.
func (e *Emitter) Configuration(ctx context.Context) (map[string]any, error) {
	val, err := e.client.Get(ctx, e.key(e.reading(), string(domain.TableConfiguration))).Result()
	if err != nil {
		if errors.Is(err, backend.Nil) {
			return nil, domain.ErrNoConfiguration
		}
		return nil, fmt.Errorf("failed to load configuration from redis: %w", err)
	}
	var config map[string]any
	if err := json.Unmarshal([]byte(val), &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return config, nil
}

// History reads back every history record still in the stream, oldest
// first.
func (e *Emitter) History(ctx context.Context) ([]map[string]any, error) {
	messages, err := e.client.XRange(ctx, e.key(e.reading(), string(domain.TableHistory)), "-", "+").Result()
	if err != nil {
		return nil, fmt.Errorf("failed to read history from redis: %w", err)
	}
	history := make([]map[string]any, 0, len(messages))
	for _, msg := range messages {
		raw, ok := msg.Values["data"].(string)
		if !ok {
			return nil, fmt.Errorf("history entry %s has no data field", msg.ID)
		}
		var record map[string]any
		if err := json.Unmarshal([]byte(raw), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history entry %s: %w", msg.ID, err)
		}
		history = append(history, record)
	}
	return history, nil
}
