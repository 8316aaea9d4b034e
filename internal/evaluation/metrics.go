package evaluation

import (
	"fmt"
	"math"
	"sort"
)

// RegressionMetrics summarises prediction error on a continuous target.
type RegressionMetrics struct {
	RMSE       float64 `json:"rmse"`
	MAE        float64 `json:"mae"`
	R2         float64 `json:"r2"`
	NumSamples int     `json:"num_samples"`
}

func CalculateRegressionMetrics(yTrue, yPred []float64) (*RegressionMetrics, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("y_true and y_pred must have the same length: %d vs %d", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return nil, fmt.Errorf("empty prediction set")
	}

	n := float64(len(yTrue))

	var sqSum, absSum, mean float64
	for _, v := range yTrue {
		mean += v
	}
	mean /= n

	var totalSS float64
	for i := range yTrue {
		diff := yPred[i] - yTrue[i]
		sqSum += diff * diff
		absSum += math.Abs(diff)

		dev := yTrue[i] - mean
		totalSS += dev * dev
	}

	r2 := 0.0
	if totalSS > 0 {
		r2 = 1 - sqSum/totalSS
	}

	return &RegressionMetrics{
		RMSE:       math.Sqrt(sqSum / n),
		MAE:        absSum / n,
		R2:         r2,
		NumSamples: len(yTrue),
	}, nil
}

func (m *RegressionMetrics) FormatMetrics() string {
	return fmt.Sprintf("RMSE: %.4f\nMAE: %.4f\nR2: %.4f\n", m.RMSE, m.MAE, m.R2)
}

type ClassMetrics struct {
	Precision float64 `json:"precision"`
	Recall    float64 `json:"recall"`
	F1Score   float64 `json:"f1_score"`
	Support   int     `json:"support"`
}

// ClassificationMetrics summarises accuracy and macro/weighted averages for
// a discrete target.
type ClassificationMetrics struct {
	Accuracy          float64              `json:"accuracy"`
	MacroPrecision    float64              `json:"macro_precision"`
	MacroRecall       float64              `json:"macro_recall"`
	MacroF1           float64              `json:"macro_f1"`
	WeightedPrecision float64              `json:"weighted_precision"`
	WeightedRecall    float64              `json:"weighted_recall"`
	WeightedF1        float64              `json:"weighted_f1"`
	PerClassMetrics   map[int]ClassMetrics `json:"per_class_metrics"`
	ConfusionMatrix   [][]int              `json:"confusion_matrix"`
	NumSamples        int                  `json:"num_samples"`
	NumClasses        int                  `json:"num_classes"`
}

func CalculateClassificationMetrics(yTrue, yPred, classes []int) (*ClassificationMetrics, error) {
	if len(yTrue) != len(yPred) {
		return nil, fmt.Errorf("y_true and y_pred must have the same length: %d vs %d", len(yTrue), len(yPred))
	}
	if len(yTrue) == 0 {
		return nil, fmt.Errorf("empty prediction set")
	}
	if len(classes) == 0 {
		return nil, fmt.Errorf("no classes given")
	}

	matrix := buildConfusionMatrix(yTrue, yPred, classes)

	support := make(map[int]int)
	for _, class := range yTrue {
		support[class]++
	}

	perClass := make(map[int]ClassMetrics)
	var macroPrec, macroRec, macroF1 float64
	var weightedPrec, weightedRec, weightedF1 float64
	totalSupport := 0

	for i, class := range classes {
		tp := matrix[i][i]
		fp, fn := 0, 0
		for j := range classes {
			if j != i {
				fp += matrix[j][i]
				fn += matrix[i][j]
			}
		}

		precision := safeDivide(float64(tp), float64(tp+fp))
		recall := safeDivide(float64(tp), float64(tp+fn))
		f1 := safeDivide(2*precision*recall, precision+recall)

		perClass[class] = ClassMetrics{
			Precision: precision,
			Recall:    recall,
			F1Score:   f1,
			Support:   support[class],
		}

		macroPrec += precision
		macroRec += recall
		macroF1 += f1

		weightedPrec += precision * float64(support[class])
		weightedRec += recall * float64(support[class])
		weightedF1 += f1 * float64(support[class])
		totalSupport += support[class]
	}

	numClasses := float64(len(classes))
	macroPrec /= numClasses
	macroRec /= numClasses
	macroF1 /= numClasses

	if totalSupport > 0 {
		weightedPrec /= float64(totalSupport)
		weightedRec /= float64(totalSupport)
		weightedF1 /= float64(totalSupport)
	}

	correct := 0
	for i, pred := range yPred {
		if pred == yTrue[i] {
			correct++
		}
	}

	return &ClassificationMetrics{
		Accuracy:          float64(correct) / float64(len(yTrue)),
		MacroPrecision:    macroPrec,
		MacroRecall:       macroRec,
		MacroF1:           macroF1,
		WeightedPrecision: weightedPrec,
		WeightedRecall:    weightedRec,
		WeightedF1:        weightedF1,
		PerClassMetrics:   perClass,
		ConfusionMatrix:   matrix,
		NumSamples:        len(yTrue),
		NumClasses:        len(classes),
	}, nil
}

func buildConfusionMatrix(yTrue, yPred, classes []int) [][]int {
	matrix := make([][]int, len(classes))
	for i := range matrix {
		matrix[i] = make([]int, len(classes))
	}

	classToIdx := make(map[int]int)
	for i, class := range classes {
		classToIdx[class] = i
	}

	for i := range yTrue {
		trueIdx, trueOk := classToIdx[yTrue[i]]
		predIdx, predOk := classToIdx[yPred[i]]
		if trueOk && predOk {
			matrix[trueIdx][predIdx]++
		}
	}

	return matrix
}

func safeDivide(numerator, denominator float64) float64 {
	if denominator == 0 {
		return 0.0
	}
	result := numerator / denominator
	if math.IsNaN(result) || math.IsInf(result, 0) {
		return 0.0
	}
	return result
}

func (m *ClassificationMetrics) FormatMetrics() string {
	result := fmt.Sprintf("Accuracy: %.4f\n", m.Accuracy)
	result += fmt.Sprintf("Macro Avg - Precision: %.4f, Recall: %.4f, F1: %.4f\n",
		m.MacroPrecision, m.MacroRecall, m.MacroF1)
	result += fmt.Sprintf("Weighted Avg - Precision: %.4f, Recall: %.4f, F1: %.4f\n",
		m.WeightedPrecision, m.WeightedRecall, m.WeightedF1)
	return result
}

// ExtractClasses lists the distinct labels present in y, in ascending order.
func ExtractClasses(y []int) []int {
	seen := make(map[int]bool)
	for _, label := range y {
		seen[label] = true
	}

	classes := make([]int, 0, len(seen))
	for class := range seen {
		classes = append(classes, class)
	}
	sort.Ints(classes)

	return classes
}
