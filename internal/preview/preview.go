// Package preview reads small slices of local text files: the head of a CSV
// before it is uploaded and the tail of rowfinder's own log.
package preview

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const maxLineBytes = 1024 * 1024

// Sample is the first lines of a file.
type Sample struct {
	Lines     []string
	Header    []string // parsed CSV header; nil for other files
	Truncated bool     // more lines follow
}

// Head returns at most n lines from the start of path. XLSX workbooks are
// binary and yield an empty sample.
func Head(path string, n int) (Sample, error) {
	if n <= 0 {
		return Sample{}, nil
	}
	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return Sample{}, nil
	}
	file, err := os.Open(path)
	if err != nil {
		return Sample{}, fmt.Errorf("open preview: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	var sample Sample
	for scanner.Scan() {
		if len(sample.Lines) == n {
			sample.Truncated = true
			break
		}
		sample.Lines = append(sample.Lines, strings.TrimSuffix(scanner.Text(), "\r"))
	}
	if err := scanner.Err(); err != nil {
		return Sample{}, fmt.Errorf("read preview: %w", err)
	}
	if len(sample.Lines) > 0 {
		sample.Lines[0] = strings.TrimPrefix(sample.Lines[0], "\ufeff")
		if strings.EqualFold(filepath.Ext(path), ".csv") {
			sample.Header = parseHeader(sample.Lines[0])
		}
	}
	return sample, nil
}

func parseHeader(line string) []string {
	r := csv.NewReader(strings.NewReader(line))
	r.LazyQuotes = true
	r.FieldsPerRecord = -1
	record, err := r.Read()
	if err != nil {
		return nil
	}
	out := make([]string, 0, len(record))
	for _, f := range record {
		out = append(out, strings.TrimSpace(f))
	}
	return out
}

// Tail returns at most maxLines from the end of the file at path. A missing
// file yields no lines.
func Tail(path string, maxLines int) ([]string, error) {
	if maxLines <= 0 {
		return nil, nil
	}
	file, err := os.Open(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("open log: %w", err)
	}
	defer file.Close()

	ring := make([]string, maxLines)
	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), maxLineBytes)
	count, next := 0, 0
	for scanner.Scan() {
		ring[next] = scanner.Text()
		next = (next + 1) % maxLines
		count = min(count+1, maxLines)
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read log: %w", err)
	}

	lines := make([]string, count)
	start := 0
	if count == maxLines {
		start = next
	}
	for i := 0; i < count; i++ {
		lines[i] = ring[(start+i)%maxLines]
	}
	return lines, nil
}
