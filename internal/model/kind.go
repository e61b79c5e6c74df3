package model

import (
	"fmt"
	"strings"
)

// Kind identifies the statistic a report computes.
type Kind int

const (
	// KindCallRate reports the fraction of non-missing calls.
	KindCallRate Kind = iota

	// KindTagLength reports the length of the trimmed tag sequence per locus.
	KindTagLength

	// KindReadDepth reports the average read depth per locus.
	KindReadDepth

	// KindReproducibility reports the average technical reproducibility per locus.
	KindReproducibility

	// KindMAF reports the minor allele frequency per locus.
	// Only defined for SNP data.
	KindMAF
)

// String returns the command-line name of the kind.
func (k Kind) String() string {
	switch k {
	case KindCallRate:
		return "callrate"
	case KindTagLength:
		return "taglength"
	case KindReadDepth:
		return "rdepth"
	case KindReproducibility:
		return "reproducibility"
	case KindMAF:
		return "maf"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler so kinds are stored by name.
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (k *Kind) UnmarshalText(text []byte) error {
	parsed, err := ParseKind(string(text))
	if err != nil {
		return err
	}
	*k = parsed
	return nil
}

// Kinds returns every report kind in display order.
func Kinds() []Kind {
	return []Kind{KindCallRate, KindTagLength, KindReadDepth, KindReproducibility, KindMAF}
}

// ParseKind converts a kind name into a Kind.
func ParseKind(s string) (Kind, error) {
	for _, k := range Kinds() {
		if strings.EqualFold(s, k.String()) {
			return k, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
}

// KindInfo contains the presentation metadata of a report kind.
type KindInfo struct {
	// Label is the human-readable statistic name, e.g. "Call Rate".
	Label string

	// AxisLabel is the x-axis label of the histogram.
	AxisLabel string

	// Methods lists the aggregation axes the kind supports.
	// The first entry is the default.
	Methods []Method
}

// kindInfoMapping is the single source of presentation metadata per kind.
var kindInfoMapping = map[Kind]KindInfo{
	KindCallRate: {
		Label:     "Call Rate",
		AxisLabel: "Call rate",
		Methods:   []Method{MethodLocus, MethodIndividual},
	},
	KindTagLength: {
		Label:     "Tag Length",
		AxisLabel: "Tag length (bp)",
		Methods:   []Method{MethodLocus},
	},
	KindReadDepth: {
		Label:     "Read Depth",
		AxisLabel: "Read depth",
		Methods:   []Method{MethodLocus},
	},
	KindReproducibility: {
		Label:     "Reproducibility",
		AxisLabel: "Reproducibility (RepAvg)",
		Methods:   []Method{MethodLocus},
	},
	KindMAF: {
		Label:     "Minor Allele Frequency",
		AxisLabel: "MAF",
		Methods:   []Method{MethodLocus},
	},
}

// Info returns the presentation metadata of the kind.
// Unknown kinds return a zero KindInfo.
func (k Kind) Info() KindInfo {
	return kindInfoMapping[k]
}

// Supports reports whether the kind can be computed with the method.
func (k Kind) Supports(m Method) bool {
	for _, supported := range k.Info().Methods {
		if supported == m {
			return true
		}
	}
	return false
}

// DefaultMethod returns the first supported method of the kind.
func (k Kind) DefaultMethod() Method {
	methods := k.Info().Methods
	if len(methods) == 0 {
		return MethodLocus
	}
	return methods[0]
}

// Method selects the aggregation axis of a report.
type Method string

const (
	// MethodLocus aggregates over individuals, yielding one value per locus.
	MethodLocus Method = "loc"

	// MethodIndividual aggregates over loci, yielding one value per individual.
	MethodIndividual Method = "ind"
)

// ParseMethod converts a method name into a Method.
func ParseMethod(s string) (Method, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "loc", "locus":
		return MethodLocus, nil
	case "ind", "individual":
		return MethodIndividual, nil
	default:
		return "", fmt.Errorf("%w: %q (use loc or ind)", ErrUnknownMethod, s)
	}
}

// Noun returns the name of one record for the method, e.g. "locus".
func (m Method) Noun() string {
	if m == MethodIndividual {
		return "individual"
	}
	return "locus"
}

// PluralNoun returns the plural record name for the method.
func (m Method) PluralNoun() string {
	if m == MethodIndividual {
		return "individuals"
	}
	return "loci"
}
