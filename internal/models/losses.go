package models

import (
	"fmt"
	"math"
)

type LossKind int

const (
	MSE LossKind = iota
	BinaryCrossEntropy
	CategoricalCrossEntropy
)

func (lk LossKind) String() string {
	switch lk {
	case MSE:
		return "mse"
	case BinaryCrossEntropy:
		return "binary_crossentropy"
	case CategoricalCrossEntropy:
		return "categorical_crossentropy"
	default:
		return fmt.Sprintf("unknown(%d)", int(lk))
	}
}

func ParseLoss(name string) (LossKind, error) {
	switch name {
	case "mse":
		return MSE, nil
	case "binary_crossentropy":
		return BinaryCrossEntropy, nil
	case "categorical_crossentropy":
		return CategoricalCrossEntropy, nil
	default:
		return 0, fmt.Errorf("unknown loss function: %s", name)
	}
}

const epsClip = 1e-12

// lossValue computes the per-sample loss between a prediction and a target.
func lossValue(kind LossKind, pred, target []float64) float64 {
	switch kind {
	case BinaryCrossEntropy:
		sum := 0.0
		for i := range pred {
			p := clamp(pred[i], epsClip, 1-epsClip)
			sum += -(target[i]*math.Log(p) + (1-target[i])*math.Log(1-p))
		}
		return sum / float64(len(pred))
	case CategoricalCrossEntropy:
		sum := 0.0
		for i := range pred {
			if target[i] > 0 {
				sum += -target[i] * math.Log(clamp(pred[i], epsClip, 1))
			}
		}
		return sum
	default:
		sum := 0.0
		for i := range pred {
			diff := pred[i] - target[i]
			sum += diff * diff
		}
		return sum / float64(len(pred))
	}
}

func clamp(v, lo, hi float64) float64 {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

type MetricKind int

const (
	Accuracy MetricKind = iota
	MAE
)

func (mk MetricKind) String() string {
	switch mk {
	case Accuracy:
		return "accuracy"
	case MAE:
		return "mae"
	default:
		return fmt.Sprintf("unknown(%d)", int(mk))
	}
}

func ParseMetric(name string) (MetricKind, error) {
	switch name {
	case "accuracy", "acc":
		return Accuracy, nil
	case "mae":
		return MAE, nil
	default:
		return 0, fmt.Errorf("unknown metric: %s", name)
	}
}

// metricValue aggregates a metric over a prediction/target batch. Accuracy
// uses argmax agreement for multi-column outputs and a 0.5 threshold for a
// single column.
func metricValue(kind MetricKind, preds, targets [][]float64) float64 {
	if len(preds) == 0 {
		return 0
	}

	switch kind {
	case MAE:
		sum := 0.0
		count := 0
		for i := range preds {
			for j := range preds[i] {
				sum += math.Abs(preds[i][j] - targets[i][j])
				count++
			}
		}
		return sum / float64(count)
	default:
		correct := 0
		for i := range preds {
			if len(preds[i]) == 1 {
				predicted := 0.0
				if preds[i][0] >= 0.5 {
					predicted = 1.0
				}
				if predicted == targets[i][0] {
					correct++
				}
			} else if argmax(preds[i]) == argmax(targets[i]) {
				correct++
			}
		}
		return float64(correct) / float64(len(preds))
	}
}

func argmax(values []float64) int {
	best := 0
	for i, v := range values {
		if v > values[best] {
			best = i
		}
	}
	return best
}
