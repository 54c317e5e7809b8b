package quality

// Threshold is one SLO entry. Percentage metrics use Min or Max;
// timeliness uses MaxDelay in days.
type Threshold struct {
	Min      *float64 `json:"min_threshold,omitempty" yaml:"min_threshold,omitempty" toml:"min_threshold,omitempty"`
	Max      *float64 `json:"max_threshold,omitempty" yaml:"max_threshold,omitempty" toml:"max_threshold,omitempty"`
	MaxDelay *float64 `json:"max_delay,omitempty" yaml:"max_delay,omitempty" toml:"max_delay,omitempty"`
}

// SLO holds the thresholds every metric is compared against.
type SLO struct {
	Completeness Threshold `json:"completeness" yaml:"completeness" toml:"completeness"`
	Duplicates   Threshold `json:"duplicates" yaml:"duplicates" toml:"duplicates"`
	Uniqueness   Threshold `json:"uniqueness" yaml:"uniqueness" toml:"uniqueness"`
	Timeliness   Threshold `json:"timeliness" yaml:"timeliness" toml:"timeliness"`
	Accuracy     Threshold `json:"accuracy" yaml:"accuracy" toml:"accuracy"`
	Validity     Threshold `json:"validity" yaml:"validity" toml:"validity"`
}

func ptr(v float64) *float64 { return &v }

func DefaultSLO() SLO {
	return SLO{
		Completeness: Threshold{Min: ptr(90)},
		Duplicates:   Threshold{Max: ptr(5)},
		Uniqueness:   Threshold{Min: ptr(95)},
		Timeliness:   Threshold{MaxDelay: ptr(30)},
		Accuracy:     Threshold{Min: ptr(95)},
		Validity:     Threshold{Min: ptr(90)},
	}
}

// WithDefaults fills every threshold left unset from DefaultSLO.
func (s SLO) WithDefaults() SLO {
	d := DefaultSLO()
	fill := func(dst *Threshold, def Threshold) {
		if dst.Min == nil && dst.Max == nil && dst.MaxDelay == nil {
			*dst = def
		}
	}
	fill(&s.Completeness, d.Completeness)
	fill(&s.Duplicates, d.Duplicates)
	fill(&s.Uniqueness, d.Uniqueness)
	fill(&s.Timeliness, d.Timeliness)
	fill(&s.Accuracy, d.Accuracy)
	fill(&s.Validity, d.Validity)
	return s
}
