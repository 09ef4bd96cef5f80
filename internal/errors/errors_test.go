package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorString(t *testing.T) {
	plain := NotFound("product", "7")
	assert.Equal(t, "[NOT_FOUND] product not found: 7", plain.Error())

	wrapped := Storage("save workspace", fmt.Errorf("disk full"))
	assert.Equal(t, "[STORAGE_ERROR] save workspace: disk full", wrapped.Error())
}

func TestIsTypeWalksChain(t *testing.T) {
	inner := Precondition("XOR not enabled for Wood")
	outer := Wrap(TypeInput, "apply selection", inner)
	viaFmt := fmt.Errorf("cli: %w", outer)

	tests := []struct {
		name string
		err  error
		typ  Type
		want bool
	}{
		{"direct match", inner, TypePrecondition, true},
		{"outer type", outer, TypeInput, true},
		{"cause type", outer, TypePrecondition, true},
		{"through fmt wrap", viaFmt, TypePrecondition, true},
		{"absent type", viaFmt, TypeStorage, false},
		{"nil error", nil, TypeInput, false},
		{"foreign error", fmt.Errorf("boom"), TypeInput, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsType(tt.err, tt.typ))
		})
	}
}

func TestWithContext(t *testing.T) {
	err := Input("bad snapshot").WithContext("uid", 3)
	assert.Equal(t, 3, err.Context["uid"])
	assert.True(t, err.Is(TypeInput))
}
