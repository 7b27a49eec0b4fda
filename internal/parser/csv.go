package parser

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/srosato/doctran/internal/document"
)

// CSVParser handles CSV files. The header row names the keys; each data row
// adds one occurrence per column, so rows come back as repeated key groups.
type CSVParser struct{}

func (p *CSVParser) Parse(r io.Reader, filename string) (*document.Mapping, error) {
	reader := csv.NewReader(r)
	reader.LazyQuotes = true
	reader.TrimLeadingSpace = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("parse csv: %w", err)
	}

	m := document.NewMapping()
	m.Add("title", strings.TrimSuffix(filename, ".csv"))

	if len(records) == 0 {
		return m, nil
	}

	// First row is headers.
	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		key := document.Slugify(h)
		if key == "" {
			key = fmt.Sprintf("column-%d", i)
		}
		headers[i] = key
	}

	for _, row := range records[1:] {
		for j, cell := range row {
			if j >= len(headers) {
				break
			}
			m.Add(headers[j], cell)
		}
	}

	return m, nil
}
