// Package text holds small formatting helpers for document prose: name
// joining, currency, percentages, ordinals, and dates. All functions are pure.
package text

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// JoinNames joins names with English list grammar: "A", "A and B",
// "A, B, and C".
func JoinNames(names []string) string {
	switch len(names) {
	case 0:
		return ""
	case 1:
		return names[0]
	case 2:
		return names[0] + " and " + names[1]
	default:
		return strings.Join(names[:len(names)-1], ", ") + ", and " + names[len(names)-1]
	}
}

// FormatCurrency renders an amount with thousands separators. Whole amounts
// drop the cents: 5000 is "$5,000", 5000.5 is "$5,000.50".
func FormatCurrency(amount float64) string {
	if amount == float64(int64(amount)) {
		return "$" + groupThousands(strconv.FormatInt(int64(amount), 10))
	}
	s := strconv.FormatFloat(amount, 'f', 2, 64)
	whole, cents, _ := strings.Cut(s, ".")
	return "$" + groupThousands(whole) + "." + cents
}

func groupThousands(digits string) string {
	neg := strings.HasPrefix(digits, "-")
	if neg {
		digits = digits[1:]
	}
	var b strings.Builder
	lead := len(digits) % 3
	if lead > 0 {
		b.WriteString(digits[:lead])
	}
	for i := lead; i < len(digits); i += 3 {
		if b.Len() > 0 {
			b.WriteByte(',')
		}
		b.WriteString(digits[i : i+3])
	}
	if neg {
		return "-" + b.String()
	}
	return b.String()
}

// FormatPercent renders a percentage value. Whole values drop the decimals:
// 50 is "50%", 33.333 is "33.33%".
func FormatPercent(value float64) string {
	if value == float64(int64(value)) {
		return strconv.FormatInt(int64(value), 10) + "%"
	}
	return strconv.FormatFloat(value, 'f', 2, 64) + "%"
}

// Ordinal renders 1 as "1st", 2 as "2nd", 11 as "11th", and so on.
func Ordinal(n int) string {
	suffix := "th"
	if n%100 < 10 || n%100 > 20 {
		switch n % 10 {
		case 1:
			suffix = "st"
		case 2:
			suffix = "nd"
		case 3:
			suffix = "rd"
		}
	}
	return strconv.Itoa(n) + suffix
}

var ones = []string{"", "one", "two", "three", "four", "five", "six", "seven", "eight", "nine"}

var teens = []string{"ten", "eleven", "twelve", "thirteen", "fourteen", "fifteen",
	"sixteen", "seventeen", "eighteen", "nineteen"}

var tens = []string{"", "", "twenty", "thirty", "forty", "fifty", "sixty", "seventy", "eighty", "ninety"}

// NumberToWords spells out an integer in English, as wills conventionally
// do for key quantities. Numbers of a million or more fall back to digits.
func NumberToWords(n int) string {
	if n == 0 {
		return "zero"
	}
	if n >= 1000000 {
		return strconv.Itoa(n)
	}
	if n >= 1000 {
		result := underThousand(n/1000) + " thousand"
		if rem := n % 1000; rem > 0 {
			result += " " + underThousand(rem)
		}
		return result
	}
	return underThousand(n)
}

func underThousand(n int) string {
	switch {
	case n == 0:
		return ""
	case n < 10:
		return ones[n]
	case n < 20:
		return teens[n-10]
	case n < 100:
		s := tens[n/10]
		if n%10 != 0 {
			s += "-" + ones[n%10]
		}
		return s
	default:
		s := ones[n/100] + " hundred"
		if n%100 != 0 {
			s += " and " + underThousand(n%100)
		}
		return s
	}
}

// FormatDate renders an ISO date (YYYY-MM-DD) as "02 January 2006". Values
// that do not parse are returned unchanged.
func FormatDate(iso string) string {
	t, err := time.Parse("2006-01-02", iso)
	if err != nil {
		return iso
	}
	return t.Format("02 January 2006")
}

// FormatTimestamp renders a time in the given location using the display
// convention for generation footers.
func FormatTimestamp(t time.Time, loc *time.Location) string {
	if loc != nil {
		t = t.In(loc)
	}
	return fmt.Sprintf("%s at %s", t.Format("02 January 2006"), t.Format("03:04 PM MST"))
}

// ShortHash truncates a hex digest for display.
func ShortHash(fullHash string, length int) string {
	if len(fullHash) <= length {
		return fullHash
	}
	return fullHash[:length]
}
