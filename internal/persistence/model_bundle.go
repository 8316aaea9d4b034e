package persistence

import (
	"encoding/gob"
	"fmt"
	"os"
	"time"

	"github.com/Benardi/br-deputy-elections/internal/models"
	"github.com/Benardi/br-deputy-elections/internal/preprocessing"
)

// ModelBundle packages a trained model together with the preprocessing
// state needed to score new data. Exactly one of Regressor or Network is set.
type ModelBundle struct {
	Regressor models.Regressor
	Network   *models.Network
	Scaler    *preprocessing.Scaler
	Encoder   *preprocessing.LabelEncoder
	Metadata  BundleMetadata
	CreatedAt time.Time
}

type BundleMetadata struct {
	ModelName    string
	Dataset      string
	RMSE         float64
	Accuracy     float64
	TrainingTime time.Duration
	Features     []string
	Parameters   map[string]any
}

func NewRegressorBundle(model models.Regressor) *ModelBundle {
	return &ModelBundle{
		Regressor: model,
		CreatedAt: time.Now(),
		Metadata: BundleMetadata{
			ModelName:  model.GetName(),
			Parameters: model.GetParams(),
		},
	}
}

func NewNetworkBundle(network *models.Network) *ModelBundle {
	return &ModelBundle{
		Network:   network,
		CreatedAt: time.Now(),
		Metadata: BundleMetadata{
			ModelName: "Network",
		},
	}
}

func registerTypes() {
	gob.Register(&models.Ridge{})
	gob.Register(&models.Lasso{})
	gob.Register(&models.KNNRegressor{})

	// Parameter maps carry interface-typed values.
	gob.Register(float64(0))
	gob.Register(int(0))
	gob.Register("")
}

func (mb *ModelBundle) Save(filename string) error {
	registerTypes()

	file, err := os.Create(filename)
	if err != nil {
		return fmt.Errorf("failed to create file: %w", err)
	}
	defer file.Close()

	encoder := gob.NewEncoder(file)
	if err := encoder.Encode(mb); err != nil {
		return fmt.Errorf("failed to encode bundle: %w", err)
	}

	return nil
}

func LoadModelBundle(filename string) (*ModelBundle, error) {
	registerTypes()

	file, err := os.Open(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to open file: %w", err)
	}
	defer file.Close()

	var bundle ModelBundle
	decoder := gob.NewDecoder(file)
	if err := decoder.Decode(&bundle); err != nil {
		return nil, fmt.Errorf("failed to decode bundle: %w", err)
	}

	return &bundle, nil
}

func (mb *ModelBundle) SaveMetadata(filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	fmt.Fprintf(file, "Model: %s\n", mb.Metadata.ModelName)
	fmt.Fprintf(file, "Dataset: %s\n", mb.Metadata.Dataset)
	fmt.Fprintf(file, "Created: %s\n", mb.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(file, "RMSE: %.4f\n", mb.Metadata.RMSE)
	fmt.Fprintf(file, "Accuracy: %.4f\n", mb.Metadata.Accuracy)
	fmt.Fprintf(file, "Training Time: %v\n", mb.Metadata.TrainingTime)

	return nil
}
