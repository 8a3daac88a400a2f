// Package tabular reads operator-uploaded spreadsheets into ordered
// header/value rows for the import pipeline.
package tabular

// Cell is one header/value pair of an uploaded row.
type Cell struct {
	Header string `json:"header"`
	Value  string `json:"value"`
}

// RawRecord is one uploaded row as an ordered sequence of cells. It is
// never mutated after parsing.
type RawRecord []Cell

// Value returns the raw value under the given header, or the empty
// string when the row has no such column.
func (r RawRecord) Value(header string) string {
	for _, cell := range r {
		if cell.Header == header {
			return cell.Value
		}
	}
	return ""
}

// Table is a parsed tabular source.
type Table struct {
	Headers []string    `json:"headers"`
	Rows    []RawRecord `json:"rows"`
}

// NewTable builds a Table from headers and positional row values. Rows
// shorter than the header set are padded with empty cells, longer rows
// are truncated.
func NewTable(headers []string, rows [][]string) *Table {
	table := &Table{
		Headers: headers,
		Rows:    make([]RawRecord, 0, len(rows)),
	}

	for _, values := range rows {
		record := make(RawRecord, len(headers))
		for i, header := range headers {
			value := ""
			if i < len(values) {
				value = values[i]
			}
			record[i] = Cell{Header: header, Value: value}
		}
		table.Rows = append(table.Rows, record)
	}

	return table
}
