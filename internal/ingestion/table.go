// Package ingestion loads the posting table and taxonomy feed from CSV exports and
// reads and writes the tabular artifacts produced by the skill pipeline.
//
// Loading is schema tolerant: headers are matched case-insensitively under several
// known aliases, missing columns read as empty values and malformed numbers as 0.
// Only an unreadable source is an error.
package ingestion

import (
	"encoding/csv"
	"errors"
	"io"
	"math"
	"strconv"
	"strings"
)

// table is a parsed CSV with a header index.
type table struct {
	columns map[string]int
	rows    [][]string
}

func readTable(r io.Reader) (*table, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return &table{columns: map[string]int{}}, nil
	}
	if err != nil {
		return nil, err
	}

	t := &table{columns: make(map[string]int, len(header))}
	for i, name := range header {
		key := headerKey(name)
		if _, dup := t.columns[key]; !dup {
			t.columns[key] = i
		}
	}

	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		t.rows = append(t.rows, record)
	}
	return t, nil
}

// headerKey folds "Research ID", "research_id" and " RESEARCH-ID " together.
func headerKey(name string) string {
	name = strings.TrimPrefix(name, "\ufeff")
	name = strings.ToLower(strings.TrimSpace(name))
	return strings.NewReplacer(" ", "_", "-", "_").Replace(name)
}

// column returns the index of the first alias present, or -1.
func (t *table) column(aliases ...string) int {
	for _, a := range aliases {
		if i, ok := t.columns[headerKey(a)]; ok {
			return i
		}
	}
	return -1
}

func (t *table) has(aliases ...string) bool {
	return t.column(aliases...) >= 0
}

// cell returns the trimmed value at column i of row, or "" when the column is
// missing or the row is short.
func cell(row []string, i int) string {
	if i < 0 || i >= len(row) {
		return ""
	}
	return strings.TrimSpace(row[i])
}

// ParseNumber reads a numeric cell such as "52,000", "$18.50" or "1e3". Empty or
// malformed input yields 0.
func ParseNumber(s string) float64 {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	s = strings.NewReplacer(",", "", "$", "", "%", "").Replace(s)
	v, err := strconv.ParseFloat(s, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// ParseBool reads flag cells written as true/false, 1/0 or yes/no.
func ParseBool(s string) bool {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "1", "1.0", "true", "t", "yes", "y":
		return true
	}
	return false
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'g', -1, 64)
}
