package cordis

import (
	"strconv"
	"strings"
	"time"
)

// dateLayout is the strict calendar format project dates must match.
const dateLayout = "2006-01-02"

// ParseAmount coerces locale-formatted numeric text to a number.
// "1.234,56" parses as 1234.56: when a comma is present it is the decimal
// separator and dots are thousands separators. Non-numeric characters are
// stripped; unparseable input defaults to zero.
func ParseAmount(raw string) float64 {
	var b strings.Builder

	for _, r := range raw {
		if (r >= '0' && r <= '9') || r == ',' || r == '.' || r == '-' {
			b.WriteRune(r)
		}
	}

	cleaned := b.String()

	if strings.Contains(cleaned, ",") {
		cleaned = strings.ReplaceAll(cleaned, ".", "")
		cleaned = strings.ReplaceAll(cleaned, ",", ".")
	}

	f, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0
	}

	return f
}

// FormatAmount renders a coerced amount back to text for the CSV output.
func FormatAmount(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// ParseDate validates a strict yyyy-mm-dd calendar date and returns it in
// canonical form. Invalid dates (including impossible months or days)
// report false.
func ParseDate(raw string) (string, bool) {
	t, err := time.Parse(dateLayout, strings.TrimSpace(raw))
	if err != nil {
		return "", false
	}

	return t.Format(dateLayout), true
}
