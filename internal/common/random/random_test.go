package random

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeededSourcesAgree(t *testing.T) {
	a := New(&Config{Seed: 42})
	b := New(&Config{Seed: 42})

	for i := 0; i < 50; i++ {
		assert.Equal(t, a.Intn(100), b.Intn(100))
		assert.Equal(t, a.Float64(), b.Float64())
	}
}

func TestIntnBounds(t *testing.T) {
	r := New(nil)

	assert.Equal(t, 0, r.Intn(0))
	assert.Equal(t, 0, r.Intn(-3))
	for i := 0; i < 200; i++ {
		n := r.Intn(3)
		assert.GreaterOrEqual(t, n, 0)
		assert.Less(t, n, 3)
	}
}

func TestFloat64Bounds(t *testing.T) {
	r := New(&Config{Seed: 7})
	for i := 0; i < 200; i++ {
		f := r.Float64()
		assert.GreaterOrEqual(t, f, 0.0)
		assert.Less(t, f, 1.0)
	}
}
