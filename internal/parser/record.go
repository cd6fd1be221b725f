package parser

// Record is the structured listing extracted from one message. String fields
// are "" when unresolved; SizeValue and DemandAmount are nil when absent, never 0.
type Record struct {
	Society        string   `json:"society"`
	PhaseBlock     string   `json:"phase_block"`
	PlotNumber     string   `json:"plot_number"`
	SizeValue      *float64 `json:"size_value"`
	SizeUnit       string   `json:"size_unit"`
	DemandAmount   *float64 `json:"demand_amount"`
	DemandText     string   `json:"demand_text"`
	PhoneE164      string   `json:"phone_e164"`
	Notes          string   `json:"notes"`
	Flags          Flags    `json:"flags"`
	DimensionsText string   `json:"dimensions_text"`
}

// Flags are the boolean listing features re-detected independently of Notes.
type Flags struct {
	Corner     bool `json:"corner"`
	Park       bool `json:"park"`
	Possession bool `json:"possession"`
}

// HasSize reports whether a numeric size was resolved.
func (r Record) HasSize() bool { return r.SizeValue != nil }

// HasDemand reports whether a price was resolved.
func (r Record) HasDemand() bool { return r.DemandAmount != nil }

// Fields lists the names of the populated fields, in record order. Used for
// metrics and logging.
func (r Record) Fields() []string {
	var out []string
	add := func(name string, ok bool) {
		if ok {
			out = append(out, name)
		}
	}
	add("society", r.Society != "")
	add("phase_block", r.PhaseBlock != "")
	add("plot_number", r.PlotNumber != "")
	add("size", r.SizeValue != nil || r.SizeUnit != "")
	add("demand", r.DemandAmount != nil)
	add("phone", r.PhoneE164 != "")
	add("notes", r.Notes != "")
	return out
}

func float64Ptr(v float64) *float64 { return &v }
