package models

import (
	"gonum.org/v1/gonum/mat"
)

// Regressor is the contract shared by the linear and instance-based models.
type Regressor interface {
	Fit(x *mat.Dense, y []float64) error
	Predict(x *mat.Dense) []float64
	GetType() string
	GetName() string
	GetParams() map[string]any
	Reset()
}

// ImportanceReporter is implemented by models that can rank their inputs.
type ImportanceReporter interface {
	FeatureImportances() []float64
}

type BaseModel struct {
	Name   string
	Params map[string]any
}

func (bm *BaseModel) GetType() string {
	return bm.Name
}

func (bm *BaseModel) GetName() string {
	return bm.Name
}

func (bm *BaseModel) GetParams() map[string]any {
	return bm.Params
}
