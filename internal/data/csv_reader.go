package data

import (
	"encoding/csv"
	"fmt"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

// RawTable holds an unparsed CSV: headers plus string records. Column typing
// and categorical encoding happen downstream in the preprocessing package.
type RawTable struct {
	Headers []string
	Records [][]string
}

func (rt *RawTable) NumRows() int {
	return len(rt.Records)
}

func (rt *RawTable) NumCols() int {
	return len(rt.Headers)
}

func (rt *RawTable) Column(j int) []string {
	col := make([]string, len(rt.Records))
	for i, record := range rt.Records {
		col[i] = record[j]
	}
	return col
}

// ColumnIndex returns the position of a named column, or -1.
func (rt *RawTable) ColumnIndex(name string) int {
	for j, h := range rt.Headers {
		if h == name {
			return j
		}
	}
	return -1
}

// IsNumeric reports whether every non-empty value in column j parses as a number.
func (rt *RawTable) IsNumeric(j int) bool {
	for _, record := range rt.Records {
		val := strings.TrimSpace(record[j])
		if val == "" {
			continue
		}
		if _, err := decimal.NewFromString(val); err != nil {
			return false
		}
	}
	return true
}

type CSVReader struct {
	filename  string
	dropEmpty bool
}

func NewCSVReader(filename string) *CSVReader {
	return &CSVReader{filename: filename, dropEmpty: true}
}

// Load reads the whole file into a RawTable. Records containing empty cells
// are dropped, matching how the ingestion step treats missing values.
func (cr *CSVReader) Load() (*RawTable, error) {
	file, err := os.Open(cr.filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("failed to parse csv: %w", err)
	}

	if len(records) < 2 {
		return nil, fmt.Errorf("insufficient data in file")
	}

	headers := records[0]
	data := make([][]string, 0, len(records)-1)

	for _, record := range records[1:] {
		if cr.dropEmpty && hasEmptyCell(record) {
			continue
		}
		data = append(data, record)
	}

	if len(data) == 0 {
		return nil, fmt.Errorf("no usable records in file")
	}

	return &RawTable{Headers: headers, Records: data}, nil
}

func hasEmptyCell(record []string) bool {
	for _, val := range record {
		if strings.TrimSpace(val) == "" {
			return true
		}
	}
	return false
}

// LoadNumeric parses a fully numeric CSV straight into a Dataset whose last
// targetCols columns are the targets. Unparseable values become zero, the
// same fallback the streaming reader uses.
func (cr *CSVReader) LoadNumeric(targetCols int) (*Dataset, error) {
	raw, err := cr.Load()
	if err != nil {
		return nil, err
	}

	if targetCols <= 0 || targetCols >= len(raw.Headers) {
		return nil, fmt.Errorf("invalid target column count: %d", targetCols)
	}

	rows := make([][]decimal.Decimal, len(raw.Records))
	for i, record := range raw.Records {
		rows[i] = make([]decimal.Decimal, len(record))
		for j, val := range record {
			d, err := decimal.NewFromString(strings.TrimSpace(val))
			if err != nil {
				d = decimal.Zero
			}
			rows[i][j] = d
		}
	}

	return NewDataset(raw.Headers, rows, len(raw.Headers)-targetCols, len(raw.Headers))
}
