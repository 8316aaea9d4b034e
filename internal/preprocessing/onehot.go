package preprocessing

import (
	"fmt"
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/Benardi/br-deputy-elections/internal/data"
)

// Target encodings supported by the TableEncoder.
const (
	TargetNumeric = "numeric"
	TargetLabel   = "label"
	TargetOneHot  = "onehot"
)

// TableEncoder turns a raw CSV table into a fully numeric Dataset: numeric
// predictor columns pass through, categorical ones are expanded into one-hot
// indicator columns named "column=value", and the target columns are moved to
// the end of the row as a contiguous range.
type TableEncoder struct {
	TargetColumns  []string
	TargetEncoding string

	categories map[string][]string
	labels     *LabelEncoder
	fitted     bool
}

func NewTableEncoder(targetColumns []string, targetEncoding string) *TableEncoder {
	if targetEncoding == "" {
		targetEncoding = TargetNumeric
	}
	return &TableEncoder{
		TargetColumns:  targetColumns,
		TargetEncoding: targetEncoding,
		categories:     make(map[string][]string),
	}
}

func (te *TableEncoder) Labels() *LabelEncoder {
	return te.labels
}

// Fit learns the category vocabulary of every non-numeric predictor column
// and, for label/onehot targets, the target classes.
func (te *TableEncoder) Fit(raw *data.RawTable) error {
	if len(te.TargetColumns) == 0 {
		return fmt.Errorf("no target columns configured")
	}

	targetIdx := make(map[int]bool)
	for _, name := range te.TargetColumns {
		j := raw.ColumnIndex(name)
		if j < 0 {
			return fmt.Errorf("target column %q not found", name)
		}
		targetIdx[j] = true
	}

	te.categories = make(map[string][]string)
	for j, name := range raw.Headers {
		if targetIdx[j] || raw.IsNumeric(j) {
			continue
		}
		te.categories[name] = distinctSorted(raw.Column(j))
	}

	switch te.TargetEncoding {
	case TargetNumeric:
		for _, name := range te.TargetColumns {
			j := raw.ColumnIndex(name)
			if !raw.IsNumeric(j) {
				return fmt.Errorf("target column %q is not numeric", name)
			}
		}
	case TargetLabel, TargetOneHot:
		if len(te.TargetColumns) != 1 {
			return fmt.Errorf("%s target encoding requires a single target column", te.TargetEncoding)
		}
		te.labels = NewLabelEncoder()
		te.labels.Fit(raw.Column(raw.ColumnIndex(te.TargetColumns[0])))
	default:
		return fmt.Errorf("unknown target encoding: %s", te.TargetEncoding)
	}

	te.fitted = true
	return nil
}

// Transform applies the learned encoding and produces a Dataset whose target
// range sits at the end of every row.
func (te *TableEncoder) Transform(raw *data.RawTable) (*data.Dataset, error) {
	if !te.fitted {
		return nil, fmt.Errorf("TableEncoder must be fitted before transform")
	}

	targetIdx := make(map[int]bool)
	for _, name := range te.TargetColumns {
		j := raw.ColumnIndex(name)
		if j < 0 {
			return nil, fmt.Errorf("target column %q not found", name)
		}
		targetIdx[j] = true
	}

	var headers []string
	for j, name := range raw.Headers {
		if targetIdx[j] {
			continue
		}
		if cats, ok := te.categories[name]; ok {
			for _, cat := range cats {
				headers = append(headers, name+"="+cat)
			}
		} else {
			headers = append(headers, name)
		}
	}

	targetHeaders, err := te.targetHeaders()
	if err != nil {
		return nil, err
	}
	targetStart := len(headers)
	headers = append(headers, targetHeaders...)

	rows := make([][]decimal.Decimal, len(raw.Records))
	for i, record := range raw.Records {
		row := make([]decimal.Decimal, 0, len(headers))

		for j, name := range raw.Headers {
			if targetIdx[j] {
				continue
			}
			val := strings.TrimSpace(record[j])
			if cats, ok := te.categories[name]; ok {
				for _, cat := range cats {
					if val == cat {
						row = append(row, decimal.NewFromInt(1))
					} else {
						row = append(row, decimal.Zero)
					}
				}
			} else {
				d, err := decimal.NewFromString(val)
				if err != nil {
					return nil, fmt.Errorf("row %d: non-numeric value %q in column %q", i, val, name)
				}
				row = append(row, d)
			}
		}

		targets, err := te.encodeTargets(raw, record, i)
		if err != nil {
			return nil, err
		}
		row = append(row, targets...)
		rows[i] = row
	}

	return data.NewDataset(headers, rows, targetStart, len(headers))
}

func (te *TableEncoder) FitTransform(raw *data.RawTable) (*data.Dataset, error) {
	if err := te.Fit(raw); err != nil {
		return nil, err
	}
	return te.Transform(raw)
}

func (te *TableEncoder) targetHeaders() ([]string, error) {
	switch te.TargetEncoding {
	case TargetNumeric, TargetLabel:
		return append([]string(nil), te.TargetColumns...), nil
	case TargetOneHot:
		name := te.TargetColumns[0]
		classes := te.labels.Classes()
		headers := make([]string, len(classes))
		for i, class := range classes {
			headers[i] = name + "=" + class
		}
		return headers, nil
	default:
		return nil, fmt.Errorf("unknown target encoding: %s", te.TargetEncoding)
	}
}

func (te *TableEncoder) encodeTargets(raw *data.RawTable, record []string, rowIdx int) ([]decimal.Decimal, error) {
	switch te.TargetEncoding {
	case TargetNumeric:
		targets := make([]decimal.Decimal, 0, len(te.TargetColumns))
		for _, name := range te.TargetColumns {
			val := strings.TrimSpace(record[raw.ColumnIndex(name)])
			d, err := decimal.NewFromString(val)
			if err != nil {
				return nil, fmt.Errorf("row %d: non-numeric target %q in column %q", rowIdx, val, name)
			}
			targets = append(targets, d)
		}
		return targets, nil

	case TargetLabel:
		val := record[raw.ColumnIndex(te.TargetColumns[0])]
		codes, err := te.labels.Transform([]string{val})
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowIdx, err)
		}
		return []decimal.Decimal{decimal.NewFromInt(int64(codes[0]))}, nil

	case TargetOneHot:
		val := record[raw.ColumnIndex(te.TargetColumns[0])]
		codes, err := te.labels.Transform([]string{val})
		if err != nil {
			return nil, fmt.Errorf("row %d: %w", rowIdx, err)
		}
		targets := make([]decimal.Decimal, len(te.labels.IntToClass))
		for i := range targets {
			targets[i] = decimal.Zero
		}
		targets[codes[0]] = decimal.NewFromInt(1)
		return targets, nil

	default:
		return nil, fmt.Errorf("unknown target encoding: %s", te.TargetEncoding)
	}
}

func distinctSorted(values []string) []string {
	seen := make(map[string]bool)
	for _, v := range values {
		seen[strings.TrimSpace(v)] = true
	}

	out := make([]string, 0, len(seen))
	for v := range seen {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
