package urlsource

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"
)

const defaultCSVColumn = "url"

func readCSV(r io.Reader, column string) ([]string, error) {
	reader := csv.NewReader(r)
	reader.TrimLeadingSpace = true
	reader.FieldsPerRecord = -1

	rows, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read CSV: %w", err)
	}
	if len(rows) == 0 {
		return nil, fmt.Errorf("CSV file is empty")
	}

	if column == "" {
		column = defaultCSVColumn
	}
	header := rows[0]
	col := -1
	for i, name := range header {
		// The first header cell may carry a UTF-8 BOM.
		name = strings.TrimPrefix(strings.TrimSpace(name), "\ufeff")
		if strings.EqualFold(name, column) {
			col = i
			break
		}
	}
	if col == -1 {
		return nil, fmt.Errorf("CSV header has no %q column", column)
	}

	urls := make([]string, 0, len(rows)-1)
	for i, row := range rows[1:] {
		if col >= len(row) {
			return nil, fmt.Errorf("row %d has %d fields, expected at least %d", i+2, len(row), col+1)
		}
		urls = append(urls, row[col])
	}
	return urls, nil
}
