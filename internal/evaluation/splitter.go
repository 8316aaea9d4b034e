package evaluation

import (
	"fmt"
	"math/rand"

	"github.com/Benardi/br-deputy-elections/internal/data"
)

// TrainTestSplitter carves a Dataset into train and test partitions. The
// random seed is an explicit parameter so splits are reproducible.
type TrainTestSplitter struct {
	testSize   float64
	randomSeed int64
	shuffle    bool
}

func NewTrainTestSplitter(testSize float64, randomSeed int64, shuffle bool) *TrainTestSplitter {
	return &TrainTestSplitter{
		testSize:   testSize,
		randomSeed: randomSeed,
		shuffle:    shuffle,
	}
}

func (tts *TrainTestSplitter) Split(ds *data.Dataset) (*data.Dataset, *data.Dataset, error) {
	if ds == nil || ds.NumRows() == 0 {
		return nil, nil, fmt.Errorf("cannot split empty dataset")
	}

	if tts.testSize <= 0 || tts.testSize >= 1 {
		return nil, nil, fmt.Errorf("test size must be between 0 and 1")
	}

	n := ds.NumRows()
	indices := make([]int, n)
	for i := range indices {
		indices[i] = i
	}

	if tts.shuffle {
		rng := rand.New(rand.NewSource(tts.randomSeed))
		rng.Shuffle(len(indices), func(i, j int) {
			indices[i], indices[j] = indices[j], indices[i]
		})
	}

	testCount := int(float64(n) * tts.testSize)
	if testCount == 0 {
		testCount = 1
	}
	trainCount := n - testCount
	if trainCount == 0 {
		return nil, nil, fmt.Errorf("test size %g leaves no training rows", tts.testSize)
	}

	return ds.Subset(indices[:trainCount]), ds.Subset(indices[trainCount:]), nil
}

// StratifiedSplit keeps the per-class proportions of y in both partitions.
func (tts *TrainTestSplitter) StratifiedSplit(ds *data.Dataset, y []int) (*data.Dataset, *data.Dataset, error) {
	if ds == nil || ds.NumRows() == 0 {
		return nil, nil, fmt.Errorf("cannot split empty dataset")
	}
	if ds.NumRows() != len(y) {
		return nil, nil, fmt.Errorf("dataset and labels have different lengths: %d vs %d", ds.NumRows(), len(y))
	}

	classIndices := make(map[int][]int)
	for i, label := range y {
		classIndices[label] = append(classIndices[label], i)
	}

	rng := rand.New(rand.NewSource(tts.randomSeed))

	var trainIndices, testIndices []int
	for _, class := range ExtractClasses(y) {
		indices := classIndices[class]
		if tts.shuffle {
			rng.Shuffle(len(indices), func(i, j int) {
				indices[i], indices[j] = indices[j], indices[i]
			})
		}

		testCount := int(float64(len(indices)) * tts.testSize)
		if testCount == 0 && len(indices) > 0 {
			testCount = 1
		}

		trainCount := len(indices) - testCount
		trainIndices = append(trainIndices, indices[:trainCount]...)
		testIndices = append(testIndices, indices[trainCount:]...)
	}

	if tts.shuffle {
		rng.Shuffle(len(trainIndices), func(i, j int) {
			trainIndices[i], trainIndices[j] = trainIndices[j], trainIndices[i]
		})
		rng.Shuffle(len(testIndices), func(i, j int) {
			testIndices[i], testIndices[j] = testIndices[j], testIndices[i]
		})
	}

	if len(trainIndices) == 0 || len(testIndices) == 0 {
		return nil, nil, fmt.Errorf("stratified split produced an empty partition")
	}

	return ds.Subset(trainIndices), ds.Subset(testIndices), nil
}
