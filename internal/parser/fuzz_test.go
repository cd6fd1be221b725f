package parser

import (
	"strings"
	"testing"

	"go.uber.org/zap"
)

func FuzzExtract(f *testing.F) {
	f.Add("BTR Phase 7 Plot # 123 10 Marla Demand 85 Lac 0300-1234567 corner plot")
	f.Add("Multi Gardens B-17 Block F Plot 45 25x50 Price 1.2 Cr 03211234567")
	f.Add("1200 series file")
	f.Add("#45\n10m\ndemand 160")
	f.Add("")
	f.Add("\xff\xfe")
	f.Add("block block block phase phase")
	f.Add("1,2,3,4,5,6 lac cr m k")

	ex, err := NewExtractor(zap.NewNop())
	if err != nil {
		f.Fatal(err)
	}

	f.Fuzz(func(t *testing.T, s string) {
		rec := ex.Extract(s, Options{FuzzySocieties: true})
		if rec.DemandAmount != nil && *rec.DemandAmount <= 0 {
			t.Fatalf("non-positive demand %v for %q", *rec.DemandAmount, s)
		}
		if rec.DemandAmount == nil && rec.DemandText != "" {
			t.Fatalf("demand text %q without amount", rec.DemandText)
		}
		if rec.PhoneE164 != "" && !strings.HasPrefix(rec.PhoneE164, "+92") {
			t.Fatalf("phone %q not normalized", rec.PhoneE164)
		}
		if rec.DimensionsText != "" && !strings.Contains(rec.Notes, "Dimensions "+rec.DimensionsText) {
			t.Fatalf("notes %q missing dimensions %q", rec.Notes, rec.DimensionsText)
		}
		if again := ex.Extract(s, Options{FuzzySocieties: true}); !recordsEqual(rec, again) {
			t.Fatalf("non-deterministic result for %q", s)
		}
	})
}

func recordsEqual(a, b Record) bool {
	if (a.SizeValue == nil) != (b.SizeValue == nil) || (a.DemandAmount == nil) != (b.DemandAmount == nil) {
		return false
	}
	if a.SizeValue != nil && *a.SizeValue != *b.SizeValue {
		return false
	}
	if a.DemandAmount != nil && *a.DemandAmount != *b.DemandAmount {
		return false
	}
	a.SizeValue, b.SizeValue, a.DemandAmount, b.DemandAmount = nil, nil, nil, nil
	return a == b
}
