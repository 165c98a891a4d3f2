package csvsource

import (
	"encoding/csv"
	"io"
	"strings"

	crerr "github.com/cockroachdb/errors"
	"github.com/riskibarqy/volley-league/internal/domain/match"
)

// ParseRows reads a header line followed by data lines. Short lines leave the
// missing columns empty, extra cells are dropped and blank lines are skipped.
// Row keys are the normalized header names.
func ParseRows(r io.Reader) ([]match.Row, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	header, err := reader.Read()
	if err == io.EOF {
		return []match.Row{}, nil
	}
	if err != nil {
		return nil, crerr.Wrap(err, "read header")
	}
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	// Headers are matched case-insensitively; the first of any duplicates wins.
	seen := make(map[string]struct{}, len(header))
	for i := range header {
		name := match.NormalizeHeader(header[i])
		if _, dup := seen[name]; dup {
			name = ""
		}
		if name != "" {
			seen[name] = struct{}{}
		}
		header[i] = name
	}

	rows := make([]match.Row, 0, 64)
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return nil, crerr.Wrap(err, "read record")
		}
		if blank(record) {
			continue
		}

		row := make(match.Row, len(header))
		for i, name := range header {
			if name == "" {
				continue
			}
			if i < len(record) {
				row[name] = record[i]
			} else {
				row[name] = ""
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func blank(record []string) bool {
	for _, cell := range record {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}
