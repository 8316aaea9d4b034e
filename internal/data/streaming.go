package data

import (
	"encoding/csv"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/shopspring/decimal"
)

type RecordBatch struct {
	Rows [][]decimal.Decimal
	Size int
}

// StreamingReader reads a numeric CSV in fixed-size batches so that files
// larger than memory can still be scanned for statistics or validation.
type StreamingReader struct {
	file      *os.File
	reader    *csv.Reader
	headers   []string
	batchSize int
}

func NewStreamingReader(filename string, batchSize int) (*StreamingReader, error) {
	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}

	reader := csv.NewReader(file)

	headers, err := reader.Read()
	if err != nil {
		file.Close()
		return nil, fmt.Errorf("failed to read headers: %w", err)
	}

	if batchSize <= 0 {
		batchSize = 1000
	}

	return &StreamingReader{
		file:      file,
		reader:    reader,
		headers:   headers,
		batchSize: batchSize,
	}, nil
}

// ReadBatch returns the next batch of parsed rows. Records with empty cells
// are skipped. Returns io.EOF when the file is exhausted.
func (sr *StreamingReader) ReadBatch() (*RecordBatch, error) {
	batch := &RecordBatch{
		Rows: make([][]decimal.Decimal, 0, sr.batchSize),
	}

	for len(batch.Rows) < sr.batchSize {
		record, err := sr.reader.Read()
		if err == io.EOF {
			if len(batch.Rows) == 0 {
				return nil, io.EOF
			}
			break
		}
		if err != nil {
			return nil, fmt.Errorf("error reading record: %w", err)
		}

		if hasEmptyCell(record) {
			continue
		}

		row := make([]decimal.Decimal, len(record))
		for j, val := range record {
			d, err := decimal.NewFromString(strings.TrimSpace(val))
			if err != nil {
				d = decimal.Zero
			}
			row[j] = d
		}
		batch.Rows = append(batch.Rows, row)
	}

	batch.Size = len(batch.Rows)
	return batch, nil
}

func (sr *StreamingReader) GetHeaders() []string {
	return sr.headers
}

func (sr *StreamingReader) Close() error {
	return sr.file.Close()
}

// ProcessLargeFile streams a file through the given callback batch by batch.
func ProcessLargeFile(filename string, batchSize int, processor func(*RecordBatch) error) error {
	reader, err := NewStreamingReader(filename, batchSize)
	if err != nil {
		return err
	}
	defer reader.Close()

	batchNum := 0
	for {
		batch, err := reader.ReadBatch()
		if err == io.EOF {
			break
		}
		if err != nil {
			return fmt.Errorf("error reading batch %d: %w", batchNum, err)
		}

		if err := processor(batch); err != nil {
			return fmt.Errorf("error processing batch %d: %w", batchNum, err)
		}

		batchNum++
	}

	return nil
}
