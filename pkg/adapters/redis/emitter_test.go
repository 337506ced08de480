package redis_test

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aretw0/vivarium/pkg/adapters/redis"
	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/ports"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("Failed to start miniredis: %v", err)
	}
	t.Cleanup(mr.Close)

	client := backend.NewClient(&backend.Options{
		Addr: mr.Addr(),
	})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisEmitter_Contract(t *testing.T) {
	_, client := newClient(t)
	ports.RunEmitterContract(t, redis.NewFromClient(client))
}

func TestRedisEmitter_Prefix(t *testing.T) {
	mr, client := newClient(t)
	e := redis.NewFromClient(client, redis.WithPrefix("custom:"))
	ctx := context.Background()

	require.NoError(t, e.Emit(ctx, domain.Envelope{Table: domain.TableConfiguration, ExperimentID: "run1", Data: map[string]any{}}))
	require.NoError(t, e.Emit(ctx, domain.Envelope{Table: domain.TableHistory, ExperimentID: "run1", Data: map[string]any{"time": 1.0}}))

	assert.True(t, mr.Exists("custom:run1:configuration"), "Expected configuration key with custom prefix")
	assert.True(t, mr.Exists("custom:run1:history"), "Expected history stream with custom prefix")

	entries, err := client.XRange(ctx, "custom:run1:history", "-", "+").Result()
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "run1", entries[0].Values["experiment_id"])
}

func TestRedisEmitter_SeparatesExperiments(t *testing.T) {
	_, client := newClient(t)
	e := redis.NewFromClient(client)
	ctx := context.Background()

	for _, id := range []string{"a", "b"} {
		require.NoError(t, e.Emit(ctx, domain.Envelope{
			Table: domain.TableConfiguration, ExperimentID: id,
			Data: map[string]any{"experiment_id": id},
		}))
	}
	for i, id := range []string{"a", "b", "a"} {
		require.NoError(t, e.Emit(ctx, domain.Envelope{
			Table: domain.TableHistory, ExperimentID: id,
			Data: map[string]any{"time": float64(i)},
		}))
	}

	history, err := e.History(ctx)
	require.NoError(t, err)
	assert.Len(t, history, 2, "reads follow the last emitted experiment")

	b := redis.NewFromClient(client, redis.WithExperiment("b"))
	config, err := b.Configuration(ctx)
	require.NoError(t, err)
	assert.Equal(t, "b", config["experiment_id"])
	history, err = b.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.EqualValues(t, 1.0, history[0]["time"])

	_, err = redis.NewFromClient(client, redis.WithExperiment("c")).Configuration(ctx)
	assert.ErrorIs(t, err, domain.ErrNoConfiguration)
}

func TestRedisEmitter_MaxLen(t *testing.T) {
	_, client := newClient(t)
	e := redis.NewFromClient(client, redis.WithMaxLen(2))
	ctx := context.Background()

	for i := 1; i <= 5; i++ {
		require.NoError(t, e.Emit(ctx, domain.Envelope{Table: domain.TableHistory, Data: map[string]any{"time": float64(i)}}))
	}

	history, err := e.History(ctx)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.EqualValues(t, 4.0, history[0]["time"])
	assert.EqualValues(t, 5.0, history[1]["time"])
}

func TestRedisEmitter_Unreachable(t *testing.T) {
	mr, client := newClient(t)
	mr.Close()

	err := redis.NewFromClient(client).Emit(context.Background(), domain.Envelope{
		Table: domain.TableHistory,
		Data:  map[string]any{"time": 1.0},
	})
	assert.Error(t, err)
}

func TestRedisEmitter_NewAndClose(t *testing.T) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	defer mr.Close()

	e := redis.New(mr.Addr(), "", 0)
	ctx := context.Background()
	require.NoError(t, e.Emit(ctx, domain.Envelope{Table: domain.TableConfiguration, Data: map[string]any{"experiment_id": "x"}}))
	assert.True(t, mr.Exists("vivarium:configuration"))

	require.NoError(t, e.Close())
	assert.Error(t, e.Emit(ctx, domain.Envelope{Table: domain.TableHistory, Data: map[string]any{}}))
}
