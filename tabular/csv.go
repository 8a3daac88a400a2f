package tabular

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/transform"
)

// ParseCSV reads a delimited source into a Table. The delimiter is
// sniffed between comma and semicolon, and sources that are not valid
// UTF-8 are decoded as Latin-1, which is what older desktop exports in
// the field actually use.
func ParseCSV(r io.Reader) (*Table, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("failed to read csv source: %w", err)
	}

	if !utf8.Valid(data) {
		decoded, _, err := transform.Bytes(charmap.ISO8859_1.NewDecoder(), data)
		if err != nil {
			return nil, fmt.Errorf("failed to decode latin-1 csv source: %w", err)
		}
		data = decoded
	}

	// Strip a UTF-8 BOM left by spreadsheet exports.
	data = bytes.TrimPrefix(data, []byte{0xEF, 0xBB, 0xBF})

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = sniffDelimiter(data)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv source: %w", err)
	}

	if len(records) == 0 {
		return nil, fmt.Errorf("csv source is empty")
	}

	headers := make([]string, len(records[0]))
	for i, h := range records[0] {
		headers[i] = strings.TrimSpace(h)
	}

	return NewTable(headers, records[1:]), nil
}

// sniffDelimiter picks semicolon over comma when the first line carries
// more of them. Regional spreadsheet exports default to semicolons.
func sniffDelimiter(data []byte) rune {
	firstLine := data
	if idx := bytes.IndexByte(data, '\n'); idx >= 0 {
		firstLine = data[:idx]
	}

	if bytes.Count(firstLine, []byte{';'}) > bytes.Count(firstLine, []byte{','}) {
		return ';'
	}
	return ','
}
