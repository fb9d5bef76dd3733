// Package export writes a page of search results as CSV, JSON or YAML,
// keeping the column order the backend sent.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rowfinder/rowfinder/internal/api"
)

// Format names an output encoding.
type Format string

const (
	CSV  Format = "csv"
	JSON Format = "json"
	YAML Format = "yaml"
)

// Formats lists the supported encodings.
var Formats = []Format{CSV, JSON, YAML}

// ParseFormat accepts a format name case-insensitively; "yml" is YAML.
func ParseFormat(name string) (Format, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "csv":
		return CSV, nil
	case "json":
		return JSON, nil
	case "yaml", "yml":
		return YAML, nil
	default:
		return "", fmt.Errorf("unknown export format %q (want csv, json or yaml)", name)
	}
}

// Extension returns the file extension for f, including the dot.
func (f Format) Extension() string {
	return "." + string(f)
}

// Columns returns the union of the rows' columns in first-seen order.
// Columns starting with an underscore are backend metadata and are left out.
func Columns(rows []api.Row) []string {
	seen := make(map[string]bool)
	var cols []string
	for _, r := range rows {
		for _, c := range r {
			if seen[c.Column] || strings.HasPrefix(c.Column, "_") {
				continue
			}
			seen[c.Column] = true
			cols = append(cols, c.Column)
		}
	}
	return cols
}

// Write encodes rows to w.
func Write(w io.Writer, f Format, rows []api.Row) error {
	switch f {
	case CSV:
		return writeCSV(w, rows)
	case JSON:
		return writeJSON(w, rows)
	case YAML:
		return writeYAML(w, rows)
	default:
		return fmt.Errorf("unknown export format %q", f)
	}
}

func writeCSV(w io.Writer, rows []api.Row) error {
	cols := Columns(rows)
	cw := csv.NewWriter(w)
	if err := cw.Write(cols); err != nil {
		return fmt.Errorf("write csv header: %w", err)
	}
	record := make([]string, len(cols))
	for _, r := range rows {
		for i, c := range cols {
			record[i], _ = r.Get(c)
		}
		if err := cw.Write(record); err != nil {
			return fmt.Errorf("write csv row: %w", err)
		}
	}
	cw.Flush()
	if err := cw.Error(); err != nil {
		return fmt.Errorf("flush csv: %w", err)
	}
	return nil
}

// writeJSON emits an array of objects. encoding/json sorts map keys, so each
// object is assembled by hand to keep column order.
func writeJSON(w io.Writer, rows []api.Row) error {
	var buf bytes.Buffer
	buf.WriteString("[")
	for i, r := range rows {
		if i > 0 {
			buf.WriteString(",")
		}
		buf.WriteString("\n  {")
		first := true
		for _, c := range r {
			if strings.HasPrefix(c.Column, "_") {
				continue
			}
			k, err := json.Marshal(c.Column)
			if err != nil {
				return fmt.Errorf("encode json key: %w", err)
			}
			v, err := json.Marshal(c.Value)
			if err != nil {
				return fmt.Errorf("encode json value: %w", err)
			}
			if !first {
				buf.WriteString(",")
			}
			first = false
			buf.WriteString("\n    ")
			buf.Write(k)
			buf.WriteString(": ")
			buf.Write(v)
		}
		if !first {
			buf.WriteString("\n  ")
		}
		buf.WriteString("}")
	}
	if len(rows) > 0 {
		buf.WriteString("\n")
	}
	buf.WriteString("]\n")
	_, err := w.Write(buf.Bytes())
	return err
}

func writeYAML(w io.Writer, rows []api.Row) error {
	doc := &yaml.Node{Kind: yaml.SequenceNode}
	for _, r := range rows {
		m := &yaml.Node{Kind: yaml.MappingNode}
		for _, c := range r {
			if strings.HasPrefix(c.Column, "_") {
				continue
			}
			m.Content = append(m.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c.Column},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: c.Value},
			)
		}
		doc.Content = append(doc.Content, m)
	}
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(doc); err != nil {
		return fmt.Errorf("encode yaml: %w", err)
	}
	return enc.Close()
}
