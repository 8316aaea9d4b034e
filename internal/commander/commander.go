package commander

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/fatih/color"
	"gonum.org/v1/gonum/mat"

	"github.com/Benardi/br-deputy-elections/internal/data"
	"github.com/Benardi/br-deputy-elections/internal/evaluation"
	"github.com/Benardi/br-deputy-elections/internal/jobs"
	"github.com/Benardi/br-deputy-elections/internal/models"
	"github.com/Benardi/br-deputy-elections/internal/persistence"
	"github.com/Benardi/br-deputy-elections/internal/preprocessing"
	"github.com/Benardi/br-deputy-elections/internal/tuning"
)

type Commander struct {
	dataset     *data.Dataset
	sourceFile  string
	labels      *preprocessing.LabelEncoder
	bundle      *persistence.ModelBundle
	lastConfig  models.RegressorConfig
	seed        int64
	jobManager  *jobs.Manager

	green  func(a ...any) string
	red    func(a ...any) string
	yellow func(a ...any) string
	cyan   func(a ...any) string
}

func NewCommander() *Commander {
	return &Commander{
		seed:       42,
		jobManager: jobs.NewManager(),
		green:      color.New(color.FgGreen).SprintFunc(),
		red:        color.New(color.FgRed).SprintFunc(),
		yellow:     color.New(color.FgYellow).SprintFunc(),
		cyan:       color.New(color.FgCyan).SprintFunc(),
	}
}

func (c *Commander) Start() {
	c.printWelcome()
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print(c.yellow("\nelections> "))
		if !scanner.Scan() {
			break
		}

		input := strings.TrimSpace(scanner.Text())
		if input == "" {
			continue
		}

		parts := strings.Fields(input)
		command := strings.ToLower(parts[0])
		args := parts[1:]

		if command == "exit" || command == "quit" {
			fmt.Println(c.cyan("Bye."))
			return
		}

		c.ExecuteCommand(command, args)
	}
}

func (c *Commander) ExecuteCommand(command string, args []string) {
	switch command {
	case "help", "h":
		c.showHelp()
	case "load":
		c.loadData(args)
	case "info":
		c.showInfo()
	case "filter":
		c.filterVariance()
	case "scale":
		c.scaleData(args)
	case "balance":
		c.balanceData()
	case "train":
		c.trainRegressor(args)
	case "network":
		c.trainNetwork(args)
	case "tune":
		c.tuneNetwork(args)
	case "cv":
		c.crossValidate(args)
	case "jobs":
		c.listJobs()
	case "job":
		c.showJob(args)
	case "cancel":
		c.cancelJob(args)
	case "predict":
		c.predict(args)
	case "save":
		c.saveModel(args)
	case "loadmodel":
		c.loadModel(args)
	case "seed":
		c.setSeed(args)
	default:
		fmt.Printf("%s Unknown command: %s (try 'help')\n", c.red("x"), command)
	}
}

func (c *Commander) printWelcome() {
	fmt.Println(c.cyan("Candidate data analysis shell. Type 'help' for commands."))
}

func (c *Commander) showHelp() {
	fmt.Println("Commands:")
	fmt.Println("  load <file> [target] [numeric|label|onehot]  load and encode a CSV")
	fmt.Println("  info                                         dataset summary")
	fmt.Println("  filter                                       drop near-zero-variance predictors")
	fmt.Println("  scale <minmax|standard>                      rescale predictors")
	fmt.Println("  balance                                      oversample minority classes")
	fmt.Println("  train <ridge|lasso|knn> [lambda|k]           train a regressor")
	fmt.Println("  network <hidden,...> [epochs]                train the feed-forward network")
	fmt.Println("  tune [folds]                                 grid-search the network (background)")
	fmt.Println("  cv [folds]                                   cross-validate the last regressor")
	fmt.Println("  predict <v1,v2,...>                          score one row with the staged model")
	fmt.Println("  jobs | job <id> | cancel <id>                background job control")
	fmt.Println("  save <file> | loadmodel <file>               model persistence")
	fmt.Println("  seed <n>                                     set the random seed")
	fmt.Println("  exit                                         leave the shell")
}

func (c *Commander) loadData(args []string) {
	if len(args) == 0 {
		fmt.Println(c.red("Usage: load <filename> [target-column] [numeric|label|onehot]"))
		return
	}

	raw, err := data.NewCSVReader(args[0]).Load()
	if err != nil {
		fmt.Printf("%s Failed to load: %v\n", c.red("x"), err)
		return
	}

	target := raw.Headers[len(raw.Headers)-1]
	if len(args) > 1 {
		target = args[1]
	}
	encoding := preprocessing.TargetNumeric
	if len(args) > 2 {
		encoding = args[2]
	}

	encoder := preprocessing.NewTableEncoder([]string{target}, encoding)
	ds, err := encoder.FitTransform(raw)
	if err != nil {
		fmt.Printf("%s Failed to encode: %v\n", c.red("x"), err)
		return
	}

	if err := data.NewDataValidator().ValidateDataset(ds); err != nil {
		fmt.Printf("%s Invalid dataset: %v\n", c.red("x"), err)
		return
	}

	c.dataset = ds
	c.sourceFile = args[0]
	c.labels = encoder.Labels()

	fmt.Printf("%s Loaded %d rows, %d predictors, target %q (%s)\n",
		c.green("ok"), ds.NumRows(), ds.NumPredictors(), target, encoding)
}

func (c *Commander) requireData() bool {
	if c.dataset == nil {
		fmt.Println(c.red("No dataset loaded. Use: load <file>"))
		return false
	}
	return true
}

func (c *Commander) showInfo() {
	if !c.requireData() {
		return
	}

	stats := data.NewDataValidator().GetDatasetStats(c.dataset)
	fmt.Printf("Source: %s\n", c.sourceFile)
	fmt.Printf("Rows: %v  Predictors: %v  Targets: %v\n", stats["rows"], stats["predictors"], stats["targets"])
	fmt.Printf("Target columns: %s\n", strings.Join(c.dataset.TargetNames(), ", "))
	if c.labels != nil && c.labels.IsFitted {
		fmt.Printf("Classes: %s\n", strings.Join(c.labels.Classes(), ", "))
	}
}

func (c *Commander) filterVariance() {
	if !c.requireData() {
		return
	}

	vf := preprocessing.NewVarianceFilter()
	ds, err := vf.FitTransform(c.dataset)
	if err != nil {
		fmt.Printf("%s Filter failed: %v\n", c.red("x"), err)
		return
	}

	c.dataset = ds
	fmt.Printf("%s Dropped %d near-zero-variance columns, %d predictors remain\n",
		c.green("ok"), len(vf.Dropped), ds.NumPredictors())
}

func (c *Commander) scaleData(args []string) {
	if !c.requireData() {
		return
	}
	if len(args) == 0 {
		fmt.Println(c.red("Usage: scale <minmax|standard>"))
		return
	}

	scaler := preprocessing.NewScaler(args[0])
	ds, err := scaler.FitTransform(c.dataset)
	if err != nil {
		fmt.Printf("%s Scaling failed: %v\n", c.red("x"), err)
		return
	}

	c.dataset = ds
	fmt.Printf("%s Applied %s scaling\n", c.green("ok"), args[0])
}

func (c *Commander) balanceData() {
	if !c.requireData() {
		return
	}

	sampler := preprocessing.NewOversampler(c.seed)
	ds, err := sampler.Balance(c.dataset)
	if err != nil {
		fmt.Printf("%s Oversampling failed: %v\n", c.red("x"), err)
		return
	}

	before := c.dataset.NumRows()
	c.dataset = ds
	fmt.Printf("%s Oversampled %d -> %d rows\n", c.green("ok"), before, ds.NumRows())
}

func (c *Commander) trainRegressor(args []string) {
	if !c.requireData() {
		return
	}
	if len(args) == 0 {
		fmt.Println(c.red("Usage: train <ridge|lasso|knn> [lambda|k]"))
		return
	}

	config := models.DefaultRegressorConfig(args[0])
	if len(args) > 1 {
		switch args[0] {
		case "knn":
			if k, err := strconv.Atoi(args[1]); err == nil {
				config.K = k
			}
		default:
			if lambda, err := strconv.ParseFloat(args[1], 64); err == nil {
				config.Lambda = lambda
			}
		}
	}

	model, err := models.CreateRegressor(config)
	if err != nil {
		fmt.Printf("%s %v\n", c.red("x"), err)
		return
	}

	splitter := evaluation.NewTrainTestSplitter(0.2, c.seed, true)
	train, test, err := splitter.Split(c.dataset)
	if err != nil {
		fmt.Printf("%s Split failed: %v\n", c.red("x"), err)
		return
	}

	trainX, _ := train.SplitXY()
	trainY, err := train.TargetVector()
	if err != nil {
		fmt.Printf("%s %v\n", c.red("x"), err)
		return
	}
	testX, _ := test.SplitXY()
	testY, _ := test.TargetVector()

	start := time.Now()
	if err := model.Fit(trainX, trainY); err != nil {
		fmt.Printf("%s Training failed: %v\n", c.red("x"), err)
		return
	}
	elapsed := time.Since(start)

	metrics, err := evaluation.CalculateRegressionMetrics(testY, model.Predict(testX))
	if err != nil {
		fmt.Printf("%s Evaluation failed: %v\n", c.red("x"), err)
		return
	}

	c.lastConfig = config
	c.bundle = persistence.NewRegressorBundle(model)
	c.bundle.Metadata.Dataset = c.sourceFile
	c.bundle.Metadata.RMSE = metrics.RMSE
	c.bundle.Metadata.TrainingTime = elapsed
	c.bundle.Metadata.Features = c.dataset.FeatureNames()

	fmt.Printf("%s %s trained in %v\n", c.green("ok"), model.GetName(), elapsed.Round(time.Millisecond))
	fmt.Print(metrics.FormatMetrics())
}

func (c *Commander) trainNetwork(args []string) {
	if !c.requireData() {
		return
	}

	hidden := []int{16, 8}
	if len(args) > 0 {
		hidden = nil
		for _, part := range strings.Split(args[0], ",") {
			size, err := strconv.Atoi(strings.TrimSpace(part))
			if err != nil {
				fmt.Printf("%s Invalid hidden size %q\n", c.red("x"), part)
				return
			}
			hidden = append(hidden, size)
		}
	}
	epochs := 50
	if len(args) > 1 {
		if e, err := strconv.Atoi(args[1]); err == nil {
			epochs = e
		}
	}

	sizes := append([]int{c.dataset.NumPredictors()}, hidden...)
	sizes = append(sizes, c.dataset.NumTargets())

	outputAct := models.Softmax
	loss := models.CategoricalCrossEntropy
	if c.dataset.NumTargets() == 1 {
		outputAct = models.Sigmoid
		loss = models.BinaryCrossEntropy
	}

	network, err := models.NewNetwork(sizes, models.ReLU, outputAct, c.seed)
	if err != nil {
		fmt.Printf("%s %v\n", c.red("x"), err)
		return
	}
	if err := network.Compile(loss, models.NewAdam(), models.Accuracy); err != nil {
		fmt.Printf("%s %v\n", c.red("x"), err)
		return
	}

	x, y := c.dataset.SplitXY()
	start := time.Now()
	history, err := network.Fit(x, y, epochs, 32, 0.2)
	if err != nil {
		fmt.Printf("%s Training failed: %v\n", c.red("x"), err)
		return
	}
	elapsed := time.Since(start)

	last := history.Last()
	c.bundle = persistence.NewNetworkBundle(network)
	c.bundle.Encoder = c.labels
	c.bundle.Metadata.Dataset = c.sourceFile
	c.bundle.Metadata.Accuracy = last.Metric
	c.bundle.Metadata.TrainingTime = elapsed

	fmt.Printf("%s Network %v trained in %v\n", c.green("ok"), sizes, elapsed.Round(time.Millisecond))
	fmt.Printf("Loss: %.4f  Accuracy: %.4f  ValLoss: %.4f  ValAccuracy: %.4f\n",
		last.Loss, last.Metric, last.ValLoss, last.ValMetric)
}

func (c *Commander) tuneNetwork(args []string) {
	if !c.requireData() {
		return
	}

	folds := 5
	if len(args) > 0 {
		if f, err := strconv.Atoi(args[0]); err == nil {
			folds = f
		}
	}

	loss := models.CategoricalCrossEntropy
	outputAct := models.Softmax
	if c.dataset.NumTargets() == 1 {
		loss = models.BinaryCrossEntropy
		outputAct = models.Sigmoid
	}

	grid := tuning.ExpandGrid(tuning.Candidates{
		Optimizers:       tuning.OptimizerTags(),
		Losses:           []models.LossKind{loss},
		BatchSizes:       []int{32},
		Epochs:           []int{30},
		ValidationSplits: []float64{0.2, 0.3, 0.4},
	})

	sizes := []int{c.dataset.NumPredictors(), 16, 8, c.dataset.NumTargets()}
	template, err := models.NewNetwork(sizes, models.ReLU, outputAct, c.seed)
	if err != nil {
		fmt.Printf("%s %v\n", c.red("x"), err)
		return
	}

	ds := c.dataset
	job, ctx := c.jobManager.CreateJob("tune", fmt.Sprintf("grid search, %d rows, %d folds", len(grid), folds))
	job.SetStatus(jobs.JobRunning)
	job.AddLog(fmt.Sprintf("searching %d combinations", len(grid)))

	go func() {
		searcher := tuning.NewSearcher(folds, c.seed)
		result, err := searcher.Search(ctx, ds, func() models.Learner { return template.Clone() }, grid)
		if err != nil {
			job.SetError(err)
			return
		}
		job.SetResult(result)
		job.AddLog(fmt.Sprintf("best row %d: %s (accuracy %.4f)",
			result.BestIndex, result.BestRow, result.BestRow.MeanAccuracy))
		job.SetStatus(jobs.JobCompleted)
	}()

	fmt.Printf("%s Started tuning job %s (check with: job %s)\n", c.green("ok"), job.ID, job.ID)
}

func (c *Commander) crossValidate(args []string) {
	if !c.requireData() {
		return
	}
	if c.lastConfig.Algorithm == "" {
		fmt.Println(c.red("No regressor trained yet. Use: train <algorithm>"))
		return
	}

	folds := 5
	if len(args) > 0 {
		if f, err := strconv.Atoi(args[0]); err == nil {
			folds = f
		}
	}

	cv := evaluation.NewCrossValidator(folds, c.seed)
	scores, mean, std, err := cv.RunRegressor(context.Background(), c.dataset, c.lastConfig)
	if err != nil {
		fmt.Printf("%s Cross-validation failed: %v\n", c.red("x"), err)
		return
	}

	fmt.Printf("%s %d-fold CV on %s\n", c.green("ok"), folds, c.lastConfig.Algorithm)
	for i, score := range scores {
		fmt.Printf("  fold %d: RMSE %.4f\n", i, score)
	}
	fmt.Printf("  mean %.4f +/- %.4f\n", mean, std)
}

func (c *Commander) listJobs() {
	all := c.jobManager.ListJobs()
	if len(all) == 0 {
		fmt.Println("No jobs.")
		return
	}
	for _, job := range all {
		fmt.Printf("%s  %-10s %-10s %s\n", job.ID, job.Type, job.GetStatus(), job.Description)
	}
}

func (c *Commander) showJob(args []string) {
	if len(args) == 0 {
		fmt.Println(c.red("Usage: job <id>"))
		return
	}
	job, ok := c.jobManager.GetJob(args[0])
	if !ok {
		fmt.Printf("%s Job %s not found\n", c.red("x"), args[0])
		return
	}

	fmt.Printf("Job %s [%s] %s\n", job.ID, job.GetStatus(), job.Description)
	for _, line := range job.GetLogs() {
		fmt.Println("  " + line)
	}
	if result, ok := job.GetResult().(*tuning.SearchResult); ok && job.GetStatus() == jobs.JobCompleted {
		fmt.Printf("Best: %s (accuracy %.4f, loss %.4f)\n",
			result.BestRow, result.BestRow.MeanAccuracy, result.BestRow.MeanLoss)
		if network, isNet := result.BestModel.(*models.Network); isNet {
			c.bundle = persistence.NewNetworkBundle(network)
			c.bundle.Encoder = c.labels
			c.bundle.Metadata.Dataset = c.sourceFile
			c.bundle.Metadata.Accuracy = result.BestRow.MeanAccuracy
			fmt.Println(c.cyan("Best model staged; use 'save <file>' to persist it."))
		}
	}
	if err := job.GetError(); err != nil {
		fmt.Printf("%s %v\n", c.red("error:"), err)
	}
}

func (c *Commander) cancelJob(args []string) {
	if len(args) == 0 {
		fmt.Println(c.red("Usage: cancel <id>"))
		return
	}
	if err := c.jobManager.CancelJob(args[0]); err != nil {
		fmt.Printf("%s %v\n", c.red("x"), err)
		return
	}
	fmt.Printf("%s Job %s cancelled\n", c.green("ok"), args[0])
}

func (c *Commander) predict(args []string) {
	if c.bundle == nil {
		fmt.Println(c.red("No model staged. Train or load one first."))
		return
	}
	if len(args) == 0 {
		fmt.Println(c.red("Usage: predict <v1,v2,...>"))
		return
	}

	parts := strings.Split(strings.Join(args, ""), ",")
	values := make([]float64, 0, len(parts))
	for _, part := range parts {
		v, err := strconv.ParseFloat(strings.TrimSpace(part), 64)
		if err != nil {
			fmt.Printf("%s Invalid value %q\n", c.red("x"), part)
			return
		}
		values = append(values, v)
	}
	x := mat.NewDense(1, len(values), values)

	switch {
	case c.bundle.Regressor != nil:
		pred := c.bundle.Regressor.Predict(x)
		fmt.Printf("%s Predicted value: %.4f\n", c.green("ok"), pred[0])
	case c.bundle.Network != nil:
		if len(values) != c.bundle.Network.InputSize() {
			fmt.Printf("%s Network expects %d inputs, got %d\n",
				c.red("x"), c.bundle.Network.InputSize(), len(values))
			return
		}
		out := c.bundle.Network.Predict(x)
		class, score := 0, out.At(0, 0)
		if c.bundle.Network.OutputSize() == 1 {
			if score >= 0.5 {
				class = 1
			}
		} else {
			for j := 1; j < c.bundle.Network.OutputSize(); j++ {
				if out.At(0, j) > score {
					class, score = j, out.At(0, j)
				}
			}
		}
		label := strconv.Itoa(class)
		if c.bundle.Encoder != nil && c.bundle.Encoder.IsFitted {
			if names, err := c.bundle.Encoder.InverseTransform([]int{class}); err == nil {
				label = names[0]
			}
		}
		fmt.Printf("%s Predicted class: %s (score %.4f)\n", c.green("ok"), label, score)
	default:
		fmt.Println(c.red("Staged bundle has no model."))
	}
}

func (c *Commander) saveModel(args []string) {
	if c.bundle == nil {
		fmt.Println(c.red("No trained model to save."))
		return
	}
	if len(args) == 0 {
		fmt.Println(c.red("Usage: save <filename>"))
		return
	}

	if err := c.bundle.Save(args[0]); err != nil {
		fmt.Printf("%s Save failed: %v\n", c.red("x"), err)
		return
	}
	fmt.Printf("%s Model saved to %s\n", c.green("ok"), args[0])
}

func (c *Commander) loadModel(args []string) {
	if len(args) == 0 {
		fmt.Println(c.red("Usage: loadmodel <filename>"))
		return
	}

	bundle, err := persistence.LoadModelBundle(args[0])
	if err != nil {
		fmt.Printf("%s Load failed: %v\n", c.red("x"), err)
		return
	}

	c.bundle = bundle
	fmt.Printf("%s Loaded %s (created %s)\n", c.green("ok"),
		bundle.Metadata.ModelName, bundle.CreatedAt.Format("2006-01-02 15:04"))
}

func (c *Commander) setSeed(args []string) {
	if len(args) == 0 {
		fmt.Printf("Current seed: %d\n", c.seed)
		return
	}
	seed, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		fmt.Printf("%s Invalid seed %q\n", c.red("x"), args[0])
		return
	}
	c.seed = seed
	fmt.Printf("%s Seed set to %d\n", c.green("ok"), seed)
}
