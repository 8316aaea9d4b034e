package models

import (
	"bytes"
	"encoding/gob"
	"fmt"
	"math"
	"math/rand"

	"gonum.org/v1/gonum/mat"
)

type ActivationKind int

const (
	Sigmoid ActivationKind = iota
	ReLU
	Linear
	Softmax
)

func (ak ActivationKind) String() string {
	switch ak {
	case Sigmoid:
		return "sigmoid"
	case ReLU:
		return "relu"
	case Linear:
		return "linear"
	case Softmax:
		return "softmax"
	default:
		return fmt.Sprintf("unknown(%d)", int(ak))
	}
}

func ParseActivation(name string) (ActivationKind, error) {
	switch name {
	case "sigmoid":
		return Sigmoid, nil
	case "relu":
		return ReLU, nil
	case "linear":
		return Linear, nil
	case "softmax":
		return Softmax, nil
	default:
		return 0, fmt.Errorf("unknown activation: %s", name)
	}
}

// Score is the outcome of one evaluation pass.
type Score struct {
	Loss   float64
	Metric float64
}

type EpochStats struct {
	Epoch     int
	Loss      float64
	Metric    float64
	ValLoss   float64
	ValMetric float64
}

// History records per-epoch training statistics of a single fit call.
type History struct {
	Epochs []EpochStats
}

func (h *History) Last() EpochStats {
	if len(h.Epochs) == 0 {
		return EpochStats{}
	}
	return h.Epochs[len(h.Epochs)-1]
}

// Learner is the minimal capability set the cross-validator and the
// hyperparameter search need from a trainable model.
type Learner interface {
	Compile(loss LossKind, opt Optimizer, metric MetricKind) error
	Fit(x, y *mat.Dense, epochs, batchSize int, validationSplit float64) (*History, error)
	Evaluate(x, y *mat.Dense, batchSize int) (Score, error)
}

// Network is a dense feed-forward neural network trained by mini-batch
// backpropagation. Weight initialisation and epoch shuffling draw from an
// explicitly seeded RNG so training runs are reproducible.
type Network struct {
	sizes    []int
	hidden   ActivationKind
	output   ActivationKind
	weights  []*mat.Dense
	biases   []*mat.Dense
	loss     LossKind
	opt      Optimizer
	metric   MetricKind
	compiled bool
	seed     int64
}

func NewNetwork(sizes []int, hidden, output ActivationKind, seed int64) (*Network, error) {
	if len(sizes) < 2 {
		return nil, fmt.Errorf("network needs at least input and output layers, got %d sizes", len(sizes))
	}
	for i, s := range sizes {
		if s <= 0 {
			return nil, fmt.Errorf("layer %d has non-positive size %d", i, s)
		}
	}

	n := &Network{
		sizes:  append([]int(nil), sizes...),
		hidden: hidden,
		output: output,
		seed:   seed,
	}
	n.initWeights()
	return n, nil
}

func (n *Network) initWeights() {
	rng := rand.New(rand.NewSource(n.seed))
	layers := len(n.sizes) - 1
	n.weights = make([]*mat.Dense, layers)
	n.biases = make([]*mat.Dense, layers)

	for l := 0; l < layers; l++ {
		fanIn, fanOut := n.sizes[l], n.sizes[l+1]
		limit := math.Sqrt(6.0 / float64(fanIn+fanOut))

		w := make([]float64, fanOut*fanIn)
		for i := range w {
			w[i] = (rng.Float64()*2 - 1) * limit
		}
		n.weights[l] = mat.NewDense(fanOut, fanIn, w)
		n.biases[l] = mat.NewDense(fanOut, 1, nil)
	}
}

// Clone returns an uncompiled network with the same architecture and seed
// but freshly initialised weights.
func (n *Network) Clone() *Network {
	clone, _ := NewNetwork(n.sizes, n.hidden, n.output, n.seed)
	return clone
}

func (n *Network) InputSize() int {
	return n.sizes[0]
}

func (n *Network) OutputSize() int {
	return n.sizes[len(n.sizes)-1]
}

// Compile attaches the loss, optimizer and reporting metric. Must be called
// before Fit or Evaluate; calling it again rebinds the training setup and
// resets nothing else.
func (n *Network) Compile(loss LossKind, opt Optimizer, metric MetricKind) error {
	if opt == nil {
		return fmt.Errorf("optimizer is required")
	}
	n.loss = loss
	n.opt = opt
	n.metric = metric
	n.compiled = true
	return nil
}

func (n *Network) activationAt(layer int) ActivationKind {
	if layer == len(n.weights)-1 {
		return n.output
	}
	return n.hidden
}

// forward returns the pre-activations and activations of every layer.
// as[0] is the input itself.
func (n *Network) forward(x []float64) (zs, as [][]float64) {
	zs = make([][]float64, len(n.weights))
	as = make([][]float64, len(n.weights)+1)
	as[0] = x

	for l := range n.weights {
		rows, cols := n.weights[l].Dims()
		z := make([]float64, rows)
		for i := 0; i < rows; i++ {
			sum := n.biases[l].At(i, 0)
			for j := 0; j < cols; j++ {
				sum += n.weights[l].At(i, j) * as[l][j]
			}
			z[i] = sum
		}
		zs[l] = z
		as[l+1] = activate(n.activationAt(l), z)
	}

	return zs, as
}

func activate(kind ActivationKind, z []float64) []float64 {
	a := make([]float64, len(z))
	switch kind {
	case Sigmoid:
		for i, v := range z {
			a[i] = 1 / (1 + math.Exp(-v))
		}
	case ReLU:
		for i, v := range z {
			if v > 0 {
				a[i] = v
			}
		}
	case Softmax:
		max := z[0]
		for _, v := range z[1:] {
			if v > max {
				max = v
			}
		}
		sum := 0.0
		for i, v := range z {
			a[i] = math.Exp(v - max)
			sum += a[i]
		}
		for i := range a {
			a[i] /= sum
		}
	default:
		copy(a, z)
	}
	return a
}

// activateDeriv returns dA/dZ element-wise. Softmax is only used together
// with categorical cross-entropy, where the combined delta a-y bypasses it.
func activateDeriv(kind ActivationKind, z, a []float64) []float64 {
	d := make([]float64, len(z))
	switch kind {
	case Sigmoid:
		for i, v := range a {
			d[i] = v * (1 - v)
		}
	case ReLU:
		for i, v := range z {
			if v > 0 {
				d[i] = 1
			}
		}
	default:
		for i := range d {
			d[i] = 1
		}
	}
	return d
}

// outputDelta computes dLoss/dZ at the output layer. Cross-entropy paired
// with its matching output activation collapses to a - y.
func (n *Network) outputDelta(z, a, target []float64) []float64 {
	delta := make([]float64, len(a))

	switch {
	case n.loss == CategoricalCrossEntropy && n.output == Softmax,
		n.loss == BinaryCrossEntropy && n.output == Sigmoid:
		for i := range a {
			delta[i] = a[i] - target[i]
		}
	default:
		deriv := activateDeriv(n.output, z, a)
		scale := 2.0 / float64(len(a))
		for i := range a {
			delta[i] = scale * (a[i] - target[i]) * deriv[i]
		}
	}

	return delta
}

// backprop accumulates the gradients of one sample into gradW/gradB.
func (n *Network) backprop(x, target []float64, gradW, gradB []*mat.Dense) {
	zs, as := n.forward(x)
	last := len(n.weights) - 1

	delta := n.outputDelta(zs[last], as[last+1], target)

	for l := last; l >= 0; l-- {
		rows, cols := n.weights[l].Dims()
		for i := 0; i < rows; i++ {
			gradB[l].Set(i, 0, gradB[l].At(i, 0)+delta[i])
			for j := 0; j < cols; j++ {
				gradW[l].Set(i, j, gradW[l].At(i, j)+delta[i]*as[l][j])
			}
		}

		if l == 0 {
			break
		}

		deriv := activateDeriv(n.activationAt(l-1), zs[l-1], as[l])
		next := make([]float64, cols)
		for j := 0; j < cols; j++ {
			sum := 0.0
			for i := 0; i < rows; i++ {
				sum += n.weights[l].At(i, j) * delta[i]
			}
			next[j] = sum * deriv[j]
		}
		delta = next
	}
}

// Fit trains the network with mini-batch gradient descent. A trailing
// validationSplit fraction of the rows is held out and scored each epoch.
func (n *Network) Fit(x, y *mat.Dense, epochs, batchSize int, validationSplit float64) (*History, error) {
	if !n.compiled {
		return nil, fmt.Errorf("network must be compiled before fit")
	}

	rows, cols := x.Dims()
	yRows, yCols := y.Dims()
	if rows == 0 {
		return nil, fmt.Errorf("empty training set")
	}
	if rows != yRows {
		return nil, fmt.Errorf("x and y row counts differ: %d vs %d", rows, yRows)
	}
	if cols != n.InputSize() {
		return nil, fmt.Errorf("input width %d does not match network input %d", cols, n.InputSize())
	}
	if yCols != n.OutputSize() {
		return nil, fmt.Errorf("target width %d does not match network output %d", yCols, n.OutputSize())
	}
	if epochs <= 0 {
		return nil, fmt.Errorf("epochs must be positive, got %d", epochs)
	}
	if validationSplit < 0 || validationSplit >= 1 {
		return nil, fmt.Errorf("validation split must be in [0,1), got %g", validationSplit)
	}
	if batchSize <= 0 {
		batchSize = 32
	}

	valCount := int(float64(rows) * validationSplit)
	trainCount := rows - valCount
	if trainCount == 0 {
		return nil, fmt.Errorf("validation split %g leaves no training rows", validationSplit)
	}

	trainIdx := make([]int, trainCount)
	for i := range trainIdx {
		trainIdx[i] = i
	}
	valIdx := make([]int, valCount)
	for i := range valIdx {
		valIdx[i] = trainCount + i
	}

	layers := len(n.weights)
	gradW := make([]*mat.Dense, layers)
	gradB := make([]*mat.Dense, layers)
	for l := 0; l < layers; l++ {
		r, c := n.weights[l].Dims()
		gradW[l] = mat.NewDense(r, c, nil)
		gradB[l] = mat.NewDense(r, 1, nil)
	}

	rng := rand.New(rand.NewSource(n.seed + 1))
	history := &History{}

	for epoch := 0; epoch < epochs; epoch++ {
		rng.Shuffle(len(trainIdx), func(i, j int) {
			trainIdx[i], trainIdx[j] = trainIdx[j], trainIdx[i]
		})

		for start := 0; start < len(trainIdx); start += batchSize {
			end := start + batchSize
			if end > len(trainIdx) {
				end = len(trainIdx)
			}
			batch := trainIdx[start:end]

			for l := 0; l < layers; l++ {
				gradW[l].Zero()
				gradB[l].Zero()
			}

			for _, idx := range batch {
				n.backprop(mat.Row(nil, idx, x), mat.Row(nil, idx, y), gradW, gradB)
			}

			scale := 1.0 / float64(len(batch))
			for l := 0; l < layers; l++ {
				gradW[l].Scale(scale, gradW[l])
				gradB[l].Scale(scale, gradB[l])
				n.opt.Update(fmt.Sprintf("w%d", l), n.weights[l], gradW[l])
				n.opt.Update(fmt.Sprintf("b%d", l), n.biases[l], gradB[l])
			}
		}

		stats := EpochStats{Epoch: epoch + 1}
		train := n.scoreRows(trainIdx, x, y)
		stats.Loss = train.Loss
		stats.Metric = train.Metric
		if valCount > 0 {
			val := n.scoreRows(valIdx, x, y)
			stats.ValLoss = val.Loss
			stats.ValMetric = val.Metric
		}
		history.Epochs = append(history.Epochs, stats)
	}

	return history, nil
}

func (n *Network) scoreRows(indices []int, x, y *mat.Dense) Score {
	preds := make([][]float64, len(indices))
	targets := make([][]float64, len(indices))

	lossSum := 0.0
	for i, idx := range indices {
		_, as := n.forward(mat.Row(nil, idx, x))
		preds[i] = as[len(as)-1]
		targets[i] = mat.Row(nil, idx, y)
		lossSum += lossValue(n.loss, preds[i], targets[i])
	}

	return Score{
		Loss:   lossSum / float64(len(indices)),
		Metric: metricValue(n.metric, preds, targets),
	}
}

// Evaluate scores the network on a held-out set. The batch size has no
// numerical effect here; it is validated for interface parity with Fit.
func (n *Network) Evaluate(x, y *mat.Dense, batchSize int) (Score, error) {
	if !n.compiled {
		return Score{}, fmt.Errorf("network must be compiled before evaluate")
	}

	rows, cols := x.Dims()
	yRows, yCols := y.Dims()
	if rows == 0 {
		return Score{}, fmt.Errorf("empty evaluation set")
	}
	if rows != yRows {
		return Score{}, fmt.Errorf("x and y row counts differ: %d vs %d", rows, yRows)
	}
	if cols != n.InputSize() || yCols != n.OutputSize() {
		return Score{}, fmt.Errorf("evaluation set shape (%dx%d -> %d) does not match network (%d -> %d)",
			rows, cols, yCols, n.InputSize(), n.OutputSize())
	}
	if batchSize < 0 {
		return Score{}, fmt.Errorf("batch size must be non-negative, got %d", batchSize)
	}

	indices := make([]int, rows)
	for i := range indices {
		indices[i] = i
	}

	return n.scoreRows(indices, x, y), nil
}

// Predict runs a forward pass over every row.
func (n *Network) Predict(x *mat.Dense) *mat.Dense {
	rows, _ := x.Dims()
	out := mat.NewDense(rows, n.OutputSize(), nil)

	for i := 0; i < rows; i++ {
		_, as := n.forward(mat.Row(nil, i, x))
		out.SetRow(i, as[len(as)-1])
	}

	return out
}

type networkState struct {
	Sizes   []int
	Hidden  ActivationKind
	Output  ActivationKind
	Seed    int64
	Loss    LossKind
	Metric  MetricKind
	Weights [][]float64
	Biases  [][]float64
}

// GobEncode serialises architecture and weights. The optimizer and its
// running moments are not persisted; recompile after loading.
func (n *Network) GobEncode() ([]byte, error) {
	state := networkState{
		Sizes:   n.sizes,
		Hidden:  n.hidden,
		Output:  n.output,
		Seed:    n.seed,
		Loss:    n.loss,
		Metric:  n.metric,
		Weights: make([][]float64, len(n.weights)),
		Biases:  make([][]float64, len(n.biases)),
	}
	for l := range n.weights {
		state.Weights[l] = append([]float64(nil), n.weights[l].RawMatrix().Data...)
		state.Biases[l] = append([]float64(nil), n.biases[l].RawMatrix().Data...)
	}

	var buf bytes.Buffer
	if err := gob.NewEncoder(&buf).Encode(state); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

func (n *Network) GobDecode(data []byte) error {
	var state networkState
	if err := gob.NewDecoder(bytes.NewReader(data)).Decode(&state); err != nil {
		return err
	}

	n.sizes = state.Sizes
	n.hidden = state.Hidden
	n.output = state.Output
	n.seed = state.Seed
	n.loss = state.Loss
	n.metric = state.Metric
	n.compiled = false

	layers := len(n.sizes) - 1
	n.weights = make([]*mat.Dense, layers)
	n.biases = make([]*mat.Dense, layers)
	for l := 0; l < layers; l++ {
		n.weights[l] = mat.NewDense(n.sizes[l+1], n.sizes[l], state.Weights[l])
		n.biases[l] = mat.NewDense(n.sizes[l+1], 1, state.Biases[l])
	}

	return nil
}
