package plot

import "fmt"

// Variant is one rendering of a parameter histogram.
type Variant string

const (
	VariantLinear Variant = "linear"
	VariantLog    Variant = "log"
)

// LogPrefix is prepended to the base name of log-scale variants.
const LogPrefix = "Log_"

// ParseVariant validates a variant name from configuration.
func ParseVariant(s string) (Variant, error) {
	switch Variant(s) {
	case VariantLinear, VariantLog:
		return Variant(s), nil
	}
	return "", fmt.Errorf("unknown plot variant %q (use linear or log)", s)
}

// BaseName returns the file base name of variant v for base.
func (v Variant) BaseName(base string) string {
	if v == VariantLog {
		return LogPrefix + base
	}
	return base
}

// Variants maps parameter names to the renderings they get.
type Variants map[string][]Variant

// DefaultVariants renders the normalisation and width parameters on a log scale too.
func DefaultVariants() Variants {
	return Variants{
		"$N_1$":    {VariantLinear, VariantLog},
		`$\sigma$`: {VariantLinear, VariantLog},
	}
}

// For returns the variants of parameter name; parameters not listed get linear only.
func (v Variants) For(name string) []Variant {
	if vs, ok := v[name]; ok && len(vs) > 0 {
		return vs
	}
	return []Variant{VariantLinear}
}
