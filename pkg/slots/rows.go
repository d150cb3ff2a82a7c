package slots

import (
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"
)

// The SQL executor frequently hands back a stringly rendering of the
// result set, e.g. "[(26, Decimal('92082741'), Decimal('7611337'), 0)]".
// NormalizeRows parses that rendering into tuples, normalizing
// Decimal(...) wrappers and NULLs first. It never fails: input that
// cannot be parsed yields no rows, or a single numeric-token row as a
// last resort.

var (
	reDecimalSingle = regexp.MustCompile(`Decimal\('(-?\d+(?:\.\d+)?)'\)`)
	reDecimalDouble = regexp.MustCompile(`Decimal\("(-?\d+(?:\.\d+)?)"\)`)
	reTuple         = regexp.MustCompile(`\(([^()]*)\)`)
	reQuoted        = regexp.MustCompile(`^'([^']*)'$|^"([^"]*)"$`)
	reNumberToken   = regexp.MustCompile(`-?\d+(?:\.\d+)?`)
)

// NormalizeRows parses a raw result string into normalized tuples.
func NormalizeRows(raw string) [][]any {
	s := strings.TrimSpace(raw)
	if s == "" {
		return nil
	}

	s = reDecimalSingle.ReplaceAllString(s, "$1")
	s = reDecimalDouble.ReplaceAllString(s, "$1")
	s = strings.ReplaceAll(s, "NULL", "None")

	var rows [][]any
	for _, m := range reTuple.FindAllStringSubmatch(s, -1) {
		row := parseTuple(m[1])
		if len(row) > 0 {
			rows = append(rows, row)
		}
	}
	if rows != nil {
		return rows
	}

	// Fallback: collect bare numeric tokens into a single row.
	tokens := reNumberToken.FindAllString(s, -1)
	if len(tokens) == 0 {
		return nil
	}
	row := make([]any, 0, len(tokens))
	for _, tok := range tokens {
		row = append(row, parseScalar(tok))
	}
	return [][]any{row}
}

func parseTuple(inner string) []any {
	var row []any
	for _, field := range strings.Split(inner, ",") {
		field = strings.TrimSpace(field)
		if field == "" {
			continue
		}
		row = append(row, parseScalar(field))
	}
	return row
}

func parseScalar(field string) any {
	switch field {
	case "None":
		return nil
	case "True", "true", "t":
		return true
	case "False", "false", "f":
		return false
	}
	if m := reQuoted.FindStringSubmatch(field); m != nil {
		if m[1] != "" {
			return m[1]
		}
		return m[2]
	}
	if n, err := strconv.ParseInt(field, 10, 64); err == nil {
		return n
	}
	if f, err := strconv.ParseFloat(field, 64); err == nil {
		return f
	}
	return field
}

// FormatWon renders a numeric value as a grouped Korean won amount,
// e.g. 92082741 -> "92,082,741원". Non-numeric values pass through.
func FormatWon(v any) string {
	f, ok := AsFloat(v)
	if !ok {
		return fmt.Sprintf("%v", v)
	}
	n := int64(math.Round(f))
	neg := n < 0
	if neg {
		n = -n
	}
	digits := strconv.FormatInt(n, 10)
	var b strings.Builder
	if neg {
		b.WriteByte('-')
	}
	pre := len(digits) % 3
	if pre > 0 {
		b.WriteString(digits[:pre])
		if len(digits) > pre {
			b.WriteByte(',')
		}
	}
	for i := pre; i < len(digits); i += 3 {
		b.WriteString(digits[i : i+3])
		if i+3 < len(digits) {
			b.WriteByte(',')
		}
	}
	b.WriteString("원")
	return b.String()
}

// AsFloat coerces the loosely typed row values (JSON numbers, parsed
// integers, numeric strings) to float64.
func AsFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(n), 64)
		return f, err == nil
	}
	return 0, false
}

// AsInt coerces a row value to int, truncating fractional parts.
func AsInt(v any) (int, bool) {
	f, ok := AsFloat(v)
	if !ok {
		return 0, false
	}
	return int(f), true
}

// AsBool coerces a row value to bool; numbers count as != 0.
func AsBool(v any) (bool, bool) {
	if b, ok := v.(bool); ok {
		return b, true
	}
	if f, ok := AsFloat(v); ok {
		return f != 0, true
	}
	return false, false
}
