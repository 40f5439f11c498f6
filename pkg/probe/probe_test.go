package probe

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func constant(name, v string) Probe {
	return Probe{Name: name, Run: func(context.Context) (string, error) { return v, nil }}
}

func failing(name string, err error) Probe {
	return Probe{Name: name, Run: func(context.Context) (string, error) { return "", err }}
}

func TestRunIndependentProbes(t *testing.T) {
	boom := errors.New("boom")
	var order []string
	var observed []error
	track := func(p Probe) Probe {
		run := p.Run
		p.Run = func(ctx context.Context) (string, error) {
			order = append(order, p.Name)
			return run(ctx)
		}
		return p
	}

	s := Run(context.Background(), func(name string, err error) { observed = append(observed, err) },
		track(constant("name", "Foo")),
		track(failing("symbol", boom)),
		track(constant("totalSupply", "10")),
	)

	assert.Equal(t, []string{"name", "symbol", "totalSupply"}, order)
	require.NotNil(t, s.Get("name"))
	assert.Equal(t, "Foo", *s.Get("name"))
	assert.Nil(t, s.Get("symbol"))
	require.NotNil(t, s.Get("totalSupply"))
	assert.Equal(t, "10", *s.Get("totalSupply"))
	assert.Equal(t, []string{"symbol"}, s.Absent())
	assert.Equal(t, []error{boom}, observed)
}

func TestRunEmptyValueIsPresent(t *testing.T) {
	s := Run(context.Background(), nil, constant("name", ""))
	require.NotNil(t, s.Get("name"))
	assert.Equal(t, "", *s.Get("name"))
	assert.Empty(t, s.Absent())
}

func TestGetUnknownProbe(t *testing.T) {
	var s Set
	assert.Nil(t, s.Get("decimals"))
	assert.Empty(t, s.Absent())
}
