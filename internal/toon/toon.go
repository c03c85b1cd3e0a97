// Package toon implements TOON (Token-Oriented Object Notation) encoding.
package toon

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
)

var (
	needsQuoting = regexp.MustCompile(`[,:"\\{}\[\]]`)
	looksNumeric = regexp.MustCompile(`^-?(?:0|[1-9]\d*)(?:\.\d+)?$`)
	keywords     = map[string]struct{}{
		"true":  {},
		"false": {},
		"null":  {},
	}
)

// Document is an ordered sequence of scalar fields and tables.
type Document struct {
	parts []string
}

// Field appends a key: value line. The value is quoted when needed.
func (d *Document) Field(key, value string) *Document {
	d.parts = append(d.parts, fmt.Sprintf("%s: %s", key, encodeValue(value)))
	return d
}

// Int appends an integer field.
func (d *Document) Int(key string, v int) *Document {
	return d.Field(key, strconv.Itoa(v))
}

// Float appends a fixed-precision number field.
func (d *Document) Float(key string, v float64) *Document {
	return d.Field(key, Float(v))
}

// Bool appends a boolean field. Booleans are written bare, unlike string
// values that merely spell a keyword.
func (d *Document) Bool(key string, v bool) *Document {
	d.parts = append(d.parts, fmt.Sprintf("%s: %t", key, v))
	return d
}

// Table appends a name[N]{cols}: block with one indented row per entry.
func (d *Document) Table(name string, columns []string, rows [][]string) *Document {
	d.parts = append(d.parts, formatTabular(name, columns, rows))
	return d
}

// String renders the document.
func (d *Document) String() string {
	return strings.Join(d.parts, "\n")
}

// Float formats a score the way tables print it.
func Float(v float64) string {
	return strconv.FormatFloat(v, 'f', 4, 64)
}

func formatTabular(name string, columns []string, rows [][]string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s[%d]{%s}:", name, len(rows), strings.Join(columns, ","))
	for _, row := range rows {
		encoded := make([]string, len(row))
		for i, cell := range row {
			encoded[i] = encodeValue(cell)
		}
		fmt.Fprintf(&b, "\n  %s", strings.Join(encoded, ","))
	}
	return b.String()
}

func encodeValue(value string) string {
	if value == "" {
		return `""`
	}

	if value != strings.TrimSpace(value) {
		return quote(value)
	}

	if strings.ContainsAny(value, "\n\r\t") {
		return quote(value)
	}

	if _, ok := keywords[strings.ToLower(value)]; ok {
		return quote(value)
	}

	if looksNumeric.MatchString(value) {
		return value
	}

	if needsQuoting.MatchString(value) {
		return quote(value)
	}

	if strings.HasPrefix(value, "-") {
		return quote(value)
	}

	return value
}

func quote(value string) string {
	escaped := strings.ReplaceAll(value, `\`, `\\`)
	escaped = strings.ReplaceAll(escaped, `"`, `\"`)
	escaped = strings.ReplaceAll(escaped, "\n", `\n`)
	escaped = strings.ReplaceAll(escaped, "\r", `\r`)
	escaped = strings.ReplaceAll(escaped, "\t", `\t`)
	return `"` + escaped + `"`
}
