package ports_test

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/aretw0/vivarium/pkg/domain"
	"github.com/aretw0/vivarium/pkg/ports"
)

func TestTee(t *testing.T) {
	var seen []string
	record := func(name string, err error) ports.Emitter {
		return ports.EmitterFunc(func(ctx context.Context, envelope domain.Envelope) error {
			seen = append(seen, name)
			return err
		})
	}
	boom := errors.New("boom")

	err := ports.Tee(record("a", nil), nil, record("b", boom), record("c", nil)).
		Emit(context.Background(), domain.Envelope{Table: domain.TableHistory})

	assert.Equal(t, []string{"a", "b", "c"}, seen)
	assert.ErrorIs(t, err, boom)
}

func TestTee_Contract(t *testing.T) {
	ports.RunEmitterContract(t, ports.Tee(ports.EmitterFunc(func(context.Context, domain.Envelope) error {
		return nil
	})))
}
