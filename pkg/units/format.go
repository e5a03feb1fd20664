package units

import (
	"strings"
	"unicode"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"golang.org/x/text/number"
)

// Formatter renders measurement values with exactly two fraction digits.
//
// Grouping follows the locale unless a literal separator is configured, in
// which case locale grouping is switched off and the separator is inserted
// every three integer digits.
type Formatter struct {
	printer   *message.Printer
	separator string
}

// NewFormatter creates a formatter for the given locale and optional grouping separator
func NewFormatter(tag language.Tag, separator string) *Formatter {
	return &Formatter{
		printer:   message.NewPrinter(tag),
		separator: separator,
	}
}

// Format formats a value with two decimals
func (f *Formatter) Format(value float64) string {
	opts := []number.Option{
		number.MinFractionDigits(2),
		number.MaxFractionDigits(2),
	}
	if f.separator != "" {
		opts = append(opts, number.NoSeparator())
	}

	out := f.printer.Sprint(number.Decimal(value, opts...))
	if f.separator != "" {
		out = group(out, f.separator)
	}
	return out
}

// Convert converts value between units and formats the result without a unit suffix
func (f *Formatter) Convert(value float64, from, to Unit) (string, error) {
	converted, err := Convert(value, from, to)
	if err != nil {
		return "", err
	}
	return f.Format(converted), nil
}

// group inserts sep between every three digits of the leading integer run of s
func group(s, sep string) string {
	runes := []rune(s)

	start := 0
	for start < len(runes) && !unicode.IsDigit(runes[start]) {
		start++
	}
	end := start
	for end < len(runes) && unicode.IsDigit(runes[end]) {
		end++
	}
	digits := runes[start:end]
	if len(digits) <= 3 {
		return s
	}

	var b strings.Builder
	b.WriteString(string(runes[:start]))
	lead := len(digits) % 3
	if lead == 0 {
		lead = 3
	}
	b.WriteString(string(digits[:lead]))
	for i := lead; i < len(digits); i += 3 {
		b.WriteString(sep)
		b.WriteString(string(digits[i : i+3]))
	}
	b.WriteString(string(runes[end:]))
	return b.String()
}
