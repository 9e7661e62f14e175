package services

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// SourceRow is one record handed to the ingestion loop. Err is set when the
// row could not be turned into a record at all; the loop reports it as that
// row's failure.
type SourceRow struct {
	Row    int
	Record RawRecord
	Err    error
}

// ReadCSV parses a whole batch file before anything is stored. The header must
// name every required column; extra named columns are carried but ignored by
// validation. Rows whose width differs from the header become per-row errors.
// Anything that prevents reading the file as a whole is ErrMalformedInput.
func ReadCSV(r io.Reader) ([]SourceRow, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	data = bytes.TrimPrefix(data, utf8BOM)
	if !utf8.Valid(data) {
		return nil, fmt.Errorf("%w: file is not valid UTF-8", ErrMalformedInput)
	}

	cr := csv.NewReader(bytes.NewReader(data))
	cr.FieldsPerRecord = -1
	cr.TrimLeadingSpace = true

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("%w: missing header row", ErrMalformedInput)
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
	}
	columns, err := parseHeader(header)
	if err != nil {
		return nil, err
	}

	rows := make([]SourceRow, 0)
	for n := 1; ; n++ {
		fields, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrMalformedInput, err)
		}

		row := SourceRow{Row: n}
		if len(fields) != len(columns) {
			row.Err = fmt.Errorf("%w: row has %d columns, header has %d", ErrInvalidFormat, len(fields), len(columns))
			row.Record = partialRecord(columns, fields)
			rows = append(rows, row)
			continue
		}

		row.Record = make(RawRecord, len(columns))
		for i, col := range columns {
			row.Record[col] = fields[i]
		}
		rows = append(rows, row)
	}

	return rows, nil
}

func parseHeader(header []string) ([]string, error) {
	columns := make([]string, len(header))
	seen := make(map[string]bool, len(header))
	for i, h := range header {
		col := strings.ToLower(strings.TrimSpace(h))
		if seen[col] {
			return nil, fmt.Errorf("%w: duplicate column %q", ErrMalformedInput, col)
		}
		seen[col] = true
		columns[i] = col
	}

	var missing []string
	for _, req := range RequiredFields {
		if !seen[req] {
			missing = append(missing, req)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: header is missing columns %s (expected %s)",
			ErrMalformedInput, strings.Join(missing, ", "), strings.Join(RequiredFields, ","))
	}
	return columns, nil
}

// partialRecord keeps whatever lines up with the header so the failure can
// still name the domain.
func partialRecord(columns, fields []string) RawRecord {
	rec := make(RawRecord, len(columns))
	for i, col := range columns {
		if i < len(fields) {
			rec[col] = fields[i]
		}
	}
	return rec
}
