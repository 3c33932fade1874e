package export

import (
	"math"
	"strings"
)

// AmountInWords spells a monetary amount in French, the way the paper
// request forms are closed out ("arrêté à la somme de ...").
func AmountInWords(amount float64) string {
	if amount < 0 {
		return "moins " + AmountInWords(-amount)
	}

	francs := int(amount)
	centimes := int(math.Round((amount - float64(francs)) * 100))
	if centimes == 100 {
		francs++
		centimes = 0
	}

	result := intToFrench(francs) + " francs"
	if centimes > 0 {
		result += " et " + intToFrench(centimes) + " centimes"
	}
	return result
}

var frenchUnits = []string{
	"zéro", "un", "deux", "trois", "quatre", "cinq", "six", "sept", "huit",
	"neuf", "dix", "onze", "douze", "treize", "quatorze", "quinze", "seize",
	"dix-sept", "dix-huit", "dix-neuf",
}

var frenchTens = map[int]string{
	20: "vingt",
	30: "trente",
	40: "quarante",
	50: "cinquante",
	60: "soixante",
}

// intToFrench converts a non-negative integer below a billion billions to
// French words
func intToFrench(n int) string {
	if n == 0 {
		return "zéro"
	}

	type scale struct {
		value    int
		singular string
		plural   string
	}
	scales := []scale{
		{1_000_000_000, "milliard", "milliards"},
		{1_000_000, "million", "millions"},
		{1_000, "mille", "mille"},
	}

	var parts []string
	for _, s := range scales {
		if n < s.value {
			continue
		}
		count := n / s.value
		n %= s.value

		name := s.singular
		if count > 1 {
			name = s.plural
		}
		if s.value == 1_000 && count == 1 {
			// "mille", never "un mille"
			parts = append(parts, name)
		} else {
			// "cent" and "quatre-vingt" stay singular before a scale word
			parts = append(parts, belowThousand(count, false)+" "+name)
		}
	}

	if n > 0 {
		parts = append(parts, belowThousand(n, true))
	}
	return strings.Join(parts, " ")
}

// belowThousand converts 1-999. The final flag marks the last word of the
// number, where "cents" and "quatre-vingts" take their plural s.
func belowThousand(n int, final bool) string {
	if n >= 100 {
		hundreds := n / 100
		rest := n % 100

		var head string
		if hundreds == 1 {
			head = "cent"
		} else {
			head = frenchUnits[hundreds] + " cent"
			if rest == 0 && final {
				head += "s"
			}
		}
		if rest == 0 {
			return head
		}
		return head + " " + belowHundred(rest, final)
	}
	return belowHundred(n, final)
}

// belowHundred converts 1-99
func belowHundred(n int, final bool) string {
	switch {
	case n < 20:
		return frenchUnits[n]
	case n < 70:
		tens := n / 10 * 10
		unit := n % 10
		if unit == 0 {
			return frenchTens[tens]
		}
		if unit == 1 {
			return frenchTens[tens] + " et un"
		}
		return frenchTens[tens] + "-" + frenchUnits[unit]
	case n < 80:
		if n == 71 {
			return "soixante et onze"
		}
		return "soixante-" + frenchUnits[n-60]
	default:
		if n == 80 {
			if final {
				return "quatre-vingts"
			}
			return "quatre-vingt"
		}
		return "quatre-vingt-" + frenchUnits[n-80]
	}
}
