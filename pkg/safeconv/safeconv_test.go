package safeconv

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMustIntToUint32(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   int
		want uint32
	}{
		{"zero", 0, 0},
		{"line index", 42, 42},
		{"max", math.MaxUint32, math.MaxUint32},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			assert.Equal(t, tt.want, MustIntToUint32(tt.in))
		})
	}

	assert.PanicsWithValue(t, "safeconv: int to uint32 out of bounds", func() {
		MustIntToUint32(-1)
	})

	assert.PanicsWithValue(t, "safeconv: int to uint32 out of bounds", func() {
		MustIntToUint32(math.MaxUint32 + 1)
	})
}
