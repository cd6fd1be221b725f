package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractPrice(t *testing.T) {
	tests := []struct {
		name     string
		in       string
		wantAmt  float64
		wantText string
	}{
		{"lac", "Demand 85 Lac", 8_500_000, "85 Lac"},
		{"crore abbreviation", "price 1.2 cr", 12_000_000, "1.2 cr"},
		{"crore word", "asking 3 crore final", 30_000_000, "3 crore"},
		{"million", "asking 2.5 million", 2_500_000, "2.5 million"},
		{"thousands", "demand 950k", 950_000, "950k"},
		{"grouped literal", "price 1,50,00,000", 15_000_000, "1,50,00,000"},
		{"unitless crore band", "demand 1.5 negotiable crore", 15_000_000, "1.5"},
		{"unitless lakh band", "85 for 5 marla, lacs only", 8_500_000, "85"},
		{"unitless demand band", "5 marla house demand 160", 16_000_000, "160"},
		{"phone is not a price", "03001234567 demand 85 lac", 8_500_000, "85 lac"},
		{"nearest to demand wins", "demand 85 lac, last year 90 lac", 8_500_000, "85 lac"},
		{"larger wins a tie", "85 lac or 90 lac", 9_000_000, "90 lac"},
		{"demand right after plot", "Plot 12 Demand 85 lac", 8_500_000, "85 lac"},
		{"price right after plot", "Plot 12 price 85 lac", 8_500_000, "85 lac"},
		{"decimal million shorthand", "asking 1.5m", 1_500_000, "1.5m"},
		{"bare m near demand", "10m demand", 10_000_000, "10m"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, ok := ExtractPrice(tt.in)
			require.True(t, ok)
			assert.InDelta(t, tt.wantAmt, got.Amount, 0.001)
			assert.Equal(t, tt.wantText, got.Text)
		})
	}
}

func TestExtractPrice_None(t *testing.T) {
	for _, in := range []string{
		"",
		"10 marla plot for sale",
		"Plot 123 45 lac",
		"10m plot for sale 03001234567",
		"call 0300 1234567",
	} {
		_, ok := ExtractPrice(in)
		assert.False(t, ok, "input %q", in)
	}
}

func TestBandAmount(t *testing.T) {
	ctx := priceContext{crore: true, lakh: true}

	got, ok := bandAmount(10, ctx)
	require.True(t, ok)
	assert.Equal(t, 100_000_000.0, got, "10 sits in both bands; crore is tried first")

	got, ok = bandAmount(2_000_000, priceContext{})
	require.True(t, ok)
	assert.Equal(t, 2_000_000.0, got)

	_, ok = bandAmount(600, ctx)
	assert.False(t, ok)
}

func TestProximityBonus(t *testing.T) {
	at := span{Start: 10, End: 12}

	assert.Equal(t, 0.0, proximityBonus(at, nil))
	assert.Equal(t, 2.0, proximityBonus(at, []span{{Start: 3, End: 9}}))
	assert.InDelta(t, 10.0/21, proximityBonus(at, []span{{Start: 32, End: 38}}), 1e-9)
}
