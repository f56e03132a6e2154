package plugins

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinEpsilonProviders(t *testing.T) {
	p, err := NewEpsilonProvider("gumbel", 4711, 1)
	require.NoError(t, err)
	assert.Equal(t, p.Epsilon("7", 0, "car"), p.Epsilon("7", 0, "car"))

	z, err := NewEpsilonProvider("zero", 4711, 1)
	require.NoError(t, err)
	assert.Zero(t, z.Epsilon("7", 0, "car"))
}

func TestUnknownEpsilonProvider(t *testing.T) {
	_, err := NewEpsilonProvider("missing", 1, 1)
	assert.ErrorContains(t, err, "gumbel")
}
