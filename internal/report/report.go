// Package report renders analysis results as TOON or JSON.
package report

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"

	"github.com/phobologic/astdistance/internal/model"
	"github.com/phobologic/astdistance/internal/toon"
)

// Format selects the output encoding.
type Format string

// Supported formats.
const (
	FormatTOON Format = "toon"
	FormatJSON Format = "json"
)

// ErrUnknownFormat is returned by ParseFormat for unsupported names.
var ErrUnknownFormat = errors.New("unknown output format")

// ParseFormat resolves a --format value. Empty means TOON.
func ParseFormat(s string) (Format, error) {
	switch Format(s) {
	case "", FormatTOON:
		return FormatTOON, nil
	case FormatJSON:
		return FormatJSON, nil
	}
	return "", fmt.Errorf("%w %q (want toon or json)", ErrUnknownFormat, s)
}

// Report is anything that can be written in both formats. JSON output is
// the report value itself.
type Report interface {
	Document() *toon.Document
}

// Write encodes r to w.
func Write(w io.Writer, f Format, r Report) error {
	if f == FormatJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(r)
	}
	_, err := fmt.Fprintln(w, r.Document().String())
	return err
}

// Diagnostic is one per-file failure. Tree is set only in reports that
// load two trees.
type Diagnostic struct {
	Tree    string `json:"tree,omitempty"`
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	Message string `json:"message"`
}

// Diagnostics converts the diagnostics of tree, labelling them with side
// when it is non-empty.
func Diagnostics(tree *model.SourceTree, side string) []Diagnostic {
	out := make([]Diagnostic, 0, len(tree.Diagnostics))
	for _, d := range tree.Diagnostics {
		out = append(out, Diagnostic{Tree: side, Path: d.Path, Kind: string(d.Kind), Message: d.Message})
	}
	return out
}

func diagnosticTable(d *toon.Document, diags []Diagnostic, twoTrees bool) {
	if twoTrees {
		rows := make([][]string, len(diags))
		for i, x := range diags {
			rows[i] = []string{x.Tree, x.Path, x.Kind, x.Message}
		}
		d.Table("diagnostics", []string{"tree", "path", "kind", "message"}, rows)
		return
	}
	rows := make([][]string, len(diags))
	for i, x := range diags {
		rows[i] = []string{x.Path, x.Kind, x.Message}
	}
	d.Table("diagnostics", []string{"path", "kind", "message"}, rows)
}

func itoa(n int) string { return strconv.Itoa(n) }
