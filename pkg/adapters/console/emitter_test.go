package console_test

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/muesli/termenv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/vivarium/pkg/adapters/console"
	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/ports"
)

func TestEmitter_Contract(t *testing.T) {
	var buf bytes.Buffer
	ports.RunEmitterContract(t, console.New(console.WithWriter(&buf), console.WithProfile(termenv.Ascii)))
	assert.NotEmpty(t, buf.String())
}

func TestEmitter_Text(t *testing.T) {
	var buf bytes.Buffer
	e := console.New(console.WithWriter(&buf), console.WithProfile(termenv.Ascii))

	err := e.Emit(context.Background(), domain.Envelope{
		Table: domain.TableHistory,
		Data:  map[string]any{"global": map[string]any{"mass": 2.5}, domain.KeyTime: 3.0},
	})
	require.NoError(t, err)
	assert.Equal(t, `[history t=3] {"global":{"mass":2.5},"time":3}`+"\n", buf.String())
}

func TestEmitter_JSONLines(t *testing.T) {
	var buf bytes.Buffer
	e := console.New(console.WithWriter(&buf), console.WithFormat(console.FormatJSON))
	ctx := context.Background()

	require.NoError(t, e.Emit(ctx, domain.Envelope{Table: domain.TableConfiguration, ExperimentID: "x", Data: map[string]any{}}))
	require.NoError(t, e.Emit(ctx, domain.Envelope{Table: domain.TableHistory, ExperimentID: "x", Data: map[string]any{"time": 1.0}}))

	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	require.Len(t, lines, 2)
	var envelope domain.Envelope
	require.NoError(t, json.Unmarshal([]byte(lines[1]), &envelope))
	assert.Equal(t, domain.TableHistory, envelope.Table)
	assert.Equal(t, "x", envelope.ExperimentID)
}

func TestEmitter_UnencodableData(t *testing.T) {
	var buf bytes.Buffer
	e := console.New(console.WithWriter(&buf))
	err := e.Emit(context.Background(), domain.Envelope{
		Table: domain.TableHistory,
		Data:  map[string]any{"ch": make(chan int)},
	})
	assert.Error(t, err)
	assert.Empty(t, buf.String())
}
