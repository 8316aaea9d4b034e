package models

import (
	"fmt"
	"math"
	"sort"

	"gonum.org/v1/gonum/mat"
)

// KNNRegressor predicts the mean target of the k nearest training rows.
type KNNRegressor struct {
	BaseModel
	K        int
	Distance string
	XTrain   [][]float64
	YTrain   []float64
}

func NewKNNRegressor(k int, distance string) *KNNRegressor {
	if k <= 0 {
		k = 5
	}

	if distance != "euclidean" && distance != "manhattan" {
		distance = "euclidean"
	}

	return &KNNRegressor{
		K:        k,
		Distance: distance,
		BaseModel: BaseModel{
			Name: "KNNRegressor",
			Params: map[string]any{
				"k":        k,
				"distance": distance,
			},
		},
	}
}

func (knn *KNNRegressor) Fit(x *mat.Dense, y []float64) error {
	n, _ := x.Dims()
	if n == 0 {
		return fmt.Errorf("empty design matrix")
	}
	if n != len(y) {
		return fmt.Errorf("x and y must have the same length: %d vs %d", n, len(y))
	}

	knn.XTrain = make([][]float64, n)
	for i := 0; i < n; i++ {
		knn.XTrain[i] = mat.Row(nil, i, x)
	}

	knn.YTrain = make([]float64, len(y))
	copy(knn.YTrain, y)

	return nil
}

func (knn *KNNRegressor) Predict(x *mat.Dense) []float64 {
	n, _ := x.Dims()
	preds := make([]float64, n)

	for i := 0; i < n; i++ {
		sample := mat.Row(nil, i, x)
		neighbors := knn.findNeighbors(sample)
		preds[i] = knn.meanTarget(neighbors)
	}

	return preds
}

func (knn *KNNRegressor) findNeighbors(sample []float64) []int {
	type neighbor struct {
		index    int
		distance float64
	}

	neighbors := make([]neighbor, len(knn.XTrain))
	for i, trainSample := range knn.XTrain {
		neighbors[i] = neighbor{index: i, distance: knn.calculateDistance(sample, trainSample)}
	}

	sort.Slice(neighbors, func(i, j int) bool {
		return neighbors[i].distance < neighbors[j].distance
	})

	count := knn.K
	if count > len(neighbors) {
		count = len(neighbors)
	}

	kNearest := make([]int, count)
	for i := 0; i < count; i++ {
		kNearest[i] = neighbors[i].index
	}

	return kNearest
}

func (knn *KNNRegressor) calculateDistance(a, b []float64) float64 {
	switch knn.Distance {
	case "manhattan":
		sum := 0.0
		for i := range a {
			sum += math.Abs(a[i] - b[i])
		}
		return sum
	default:
		sum := 0.0
		for i := range a {
			diff := a[i] - b[i]
			sum += diff * diff
		}
		return math.Sqrt(sum)
	}
}

func (knn *KNNRegressor) meanTarget(neighbors []int) float64 {
	if len(neighbors) == 0 {
		return 0
	}

	sum := 0.0
	for _, idx := range neighbors {
		sum += knn.YTrain[idx]
	}
	return sum / float64(len(neighbors))
}

func (knn *KNNRegressor) Reset() {
	knn.XTrain = nil
	knn.YTrain = nil
}
