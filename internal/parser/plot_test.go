package parser

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractPlotNumber(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"series", "1200 series file for sale", "1200 series"},
		{"plot keyword", "Plot 45 corner", "45"},
		{"plot hash", "plot # 123 10 marla", "123"},
		{"plot no with suffix", "plot no. 12a in I-14", "12a"},
		{"hash at line start", "#45 corner 10 marla", "45"},
		{"series beats plot", "plot 7 in 900-series", "900 series"},
		{"bare number", "DHA 2 kanal house 786 available", "786"},
		{"street excluded", "street 12 house 345", "345"},
		{"unit context excluded", "10 marla 55", ""},
		{"priced number excluded", "Demand 85 Lac", ""},
		{"decimal excluded", "1.25 crore", ""},
		{"phone excluded", "call 0300 1234567", ""},
		{"dimension excluded", "25x50 open", ""},
		{"glued to letters", "b17 h12", ""},
		{"nothing", "for sale", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExtractPlotNumber(tt.in))
		})
	}
}

func TestExclusionZones(t *testing.T) {
	s := newScan("plot 12 demand 85 lac 03001234567 25x50")
	zones := s.exclusionZones()

	assert.True(t, zones.overlaps(span{Start: 5, End: 7}), "plot mention")
	assert.True(t, zones.overlaps(span{Start: 15, End: 17}), "priced amount")
	assert.True(t, zones.overlaps(span{Start: 22, End: 33}), "phone")
	assert.True(t, zones.overlaps(span{Start: 34, End: 39}), "dimension")
}
