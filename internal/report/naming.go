package report

import (
	"strconv"
	"strings"
	"unicode"
)

var perturbativeOrders = map[int]string{
	0:  "LL",
	1:  "NLL",
	-1: "NLL'",
	2:  "NNLL",
	-2: "NNLL'",
	3:  "N3LL",
	-3: "N3LL'",
}

// PerturbativeOrderName maps the tables' PerturbativeOrder code to its
// logarithmic accuracy. Unknown codes are returned as numbers.
func PerturbativeOrderName(order int) string {
	if s, ok := perturbativeOrders[order]; ok {
		return s
	}
	return strconv.Itoa(order)
}

var romanNumerals = []struct {
	value  int
	symbol string
}{
	{1000, "M"}, {900, "CM"}, {500, "D"}, {400, "CD"},
	{100, "C"}, {90, "XC"}, {50, "L"}, {40, "XL"},
	{10, "X"}, {9, "IX"}, {5, "V"}, {4, "IV"}, {1, "I"},
}

// Roman formats n in Roman numerals. Non-positive n is returned as a number.
func Roman(n int) string {
	if n <= 0 {
		return strconv.Itoa(n)
	}
	var b strings.Builder
	for _, r := range romanNumerals {
		for n >= r.value {
			b.WriteString(r.symbol)
			n -= r.value
		}
	}
	return b.String()
}

var greekLetters = map[string]bool{
	"alpha": true, "beta": true, "gamma": true, "delta": true, "epsilon": true,
	"zeta": true, "eta": true, "theta": true, "iota": true, "kappa": true,
	"lambda": true, "mu": true, "nu": true, "xi": true, "pi": true, "rho": true,
	"sigma": true, "tau": true, "upsilon": true, "phi": true, "chi": true,
	"psi": true, "omega": true,
	"Gamma": true, "Delta": true, "Theta": true, "Lambda": true, "Xi": true,
	"Pi": true, "Sigma": true, "Upsilon": true, "Phi": true, "Psi": true, "Omega": true,
}

// LatexName renders a configuration parameter name the way Report.yaml spells
// it: "g2" becomes "$g_2$", "sigma" becomes "$\sigma$", "lambda1" becomes
// "$\lambda_1$". Names already in math mode and anything else are returned as is.
func LatexName(name string) string {
	if name == "" || strings.HasPrefix(name, "$") {
		return name
	}
	i := len(name)
	for i > 0 && unicode.IsDigit(rune(name[i-1])) {
		i--
	}
	stem, index := name[:i], name[i:]
	if stem == "" {
		return name
	}
	for _, r := range stem {
		if !unicode.IsLetter(r) || r > unicode.MaxASCII {
			return name
		}
	}
	if greekLetters[stem] {
		stem = `\` + stem
	} else if index == "" && len(stem) > 1 {
		return name
	}
	if index != "" {
		return "$" + stem + "_" + index + "$"
	}
	return "$" + stem + "$"
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}

func formatList(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = formatFloat(v)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}
