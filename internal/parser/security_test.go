package parser

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/listing-parser/internal/normalizer"
)

// TestOversizedInput checks that text past the input cap is ignored.
func TestOversizedInput(t *testing.T) {
	ex, err := NewExtractor(zap.NewNop())
	assert.NoError(t, err)

	in := "plot 12 " + strings.Repeat("x", normalizer.DefaultMaxInputBytes) + " demand 85 lac 03001234567"
	rec := ex.Extract(in, Options{})

	assert.Equal(t, "12", rec.PlotNumber)
	assert.Nil(t, rec.DemandAmount)
	assert.Empty(t, rec.PhoneE164)
}

// TestReDoSResistance checks that adversarial inputs finish quickly.
func TestReDoSResistance(t *testing.T) {
	ex, err := NewExtractor(zap.NewNop())
	assert.NoError(t, err)

	tests := []struct {
		name  string
		input string
	}{
		{"repeated digits", strings.Repeat("9", 20000)},
		{"repeated grouped numbers", strings.Repeat("1,000,", 3000)},
		{"repeated block keywords", strings.Repeat("block ", 3000)},
		{"repeated plot hashes", strings.Repeat("plot # ", 3000)},
		{"repeated phone prefixes", strings.Repeat("+92", 6000)},
		{"repeated dimensions", strings.Repeat("25x50x", 3000)},
		{"repeated price words", strings.Repeat("demand price asking ", 1000)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			start := time.Now()
			ex.Extract(tt.input, Options{FuzzySocieties: true})
			assert.Less(t, time.Since(start), 2*time.Second)
		})
	}
}
