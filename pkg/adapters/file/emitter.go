package file

import (
	"bufio"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/aretw0/vivarium/pkg/domain"
)

const (
	configurationFile = "configuration.json"
	historyFile       = "history.jsonl"
)

// Emitter stores one experiment in a directory: the configuration record
// as configuration.json, replaced atomically, and the history as
// history.jsonl, one JSON object per line.
type Emitter struct {
	mu       sync.Mutex
	BasePath string
}

// New creates an Emitter writing under basePath.
// If basePath is empty, it defaults to ".vivarium/out".
func New(basePath string) *Emitter {
	if basePath == "" {
		basePath = filepath.Join(".vivarium", "out")
	}
	return &Emitter{BasePath: basePath}
}

// Emit writes envelope to the file of its table. Unknown tables are ignored.
func (e *Emitter) Emit(ctx context.Context, envelope domain.Envelope) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := os.MkdirAll(e.BasePath, 0755); err != nil {
		return fmt.Errorf("failed to ensure output directory: %w", err)
	}

	switch envelope.Table {
	case domain.TableConfiguration:
		data, err := json.MarshalIndent(envelope.Data, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal configuration: %w", err)
		}
		return e.writeAtomic(configurationFile, data)
	case domain.TableHistory:
		line, err := json.Marshal(envelope.Data)
		if err != nil {
			return fmt.Errorf("failed to marshal history record: %w", err)
		}
		return e.append(historyFile, line)
	}
	return nil
}

// writeAtomic writes to a temporary file in the same directory, syncs it
// and renames it over the destination.
func (e *Emitter) writeAtomic(name string, data []byte) error {
	destPath := filepath.Join(e.BasePath, name)

	tmpFile, err := os.CreateTemp(e.BasePath, "tmp-"+name+"-*")
	if err != nil {
		return fmt.Errorf("failed to create temp file: %w", err)
	}
	tmpPath := tmpFile.Name()
	defer func() {
		_ = tmpFile.Close()
		_ = os.Remove(tmpPath)
	}()

	if _, err := tmpFile.Write(data); err != nil {
		return fmt.Errorf("failed to write to temp file: %w", err)
	}
	if err := tmpFile.Sync(); err != nil {
		return fmt.Errorf("failed to fsync temp file: %w", err)
	}
	if err := tmpFile.Close(); err != nil {
		return fmt.Errorf("failed to close temp file: %w", err)
	}

	// os.Rename fails on Windows when the destination exists.
	if _, err := os.Stat(destPath); err == nil {
		if err := os.Remove(destPath); err != nil {
			return fmt.Errorf("failed to remove existing %s: %w", name, err)
		}
	}
	if err := os.Rename(tmpPath, destPath); err != nil {
		return fmt.Errorf("failed to rename temp file to %s: %w", name, err)
	}
	return nil
}

func (e *Emitter) append(name string, line []byte) error {
	f, err := os.OpenFile(filepath.Join(e.BasePath, name), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open %s: %w", name, err)
	}
	if _, err := f.Write(append(line, '\n')); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to append to %s: %w", name, err)
	}
	return f.Close()
}

// Configuration reads back configuration.json.
func (e *Emitter) Configuration(ctx context.Context) (map[string]any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	data, err := os.ReadFile(filepath.Join(e.BasePath, configurationFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, domain.ErrNoConfiguration
		}
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	var config map[string]any
	if err := json.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}
	return config, nil
}

// History reads back every line of history.jsonl in order.
func (e *Emitter) History(ctx context.Context) ([]map[string]any, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	f, err := os.Open(filepath.Join(e.BasePath, historyFile))
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []map[string]any{}, nil
		}
		return nil, fmt.Errorf("failed to open history: %w", err)
	}
	defer f.Close()

	history := []map[string]any{}
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)
	for scanner.Scan() {
		if len(scanner.Bytes()) == 0 {
			continue
		}
		var record map[string]any
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			return nil, fmt.Errorf("failed to unmarshal history line %d: %w", len(history)+1, err)
		}
		history = append(history, record)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("failed to read history: %w", err)
	}
	return history, nil
}
