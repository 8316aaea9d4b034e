package data

type BatchProcessor struct {
	batchSize int
}

func NewBatchProcessor(batchSize int) *BatchProcessor {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &BatchProcessor{batchSize: batchSize}
}

// ProcessBatches walks a dataset in contiguous row windows, handing each
// window to processFn as a Dataset sharing the parent's column layout.
func (bp *BatchProcessor) ProcessBatches(ds *Dataset, processFn func(*Dataset) error) error {
	total := ds.NumRows()

	for start := 0; start < total; start += bp.batchSize {
		end := start + bp.batchSize
		if end > total {
			end = total
		}

		window := &Dataset{
			Headers:     ds.Headers,
			Rows:        ds.Rows[start:end],
			TargetStart: ds.TargetStart,
			TargetEnd:   ds.TargetEnd,
		}

		if err := processFn(window); err != nil {
			return err
		}
	}

	return nil
}

func (bp *BatchProcessor) GetBatchSize() int {
	return bp.batchSize
}
