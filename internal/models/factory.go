package models

import (
	"fmt"
)

type RegressorConfig struct {
	Algorithm string
	Lambda    float64
	K         int
	Distance  string
}

func CreateRegressor(config RegressorConfig) (Regressor, error) {
	switch config.Algorithm {
	case "ridge":
		if config.Lambda <= 0 {
			config.Lambda = 1.0
		}
		return NewRidge(config.Lambda), nil

	case "lasso":
		if config.Lambda <= 0 {
			config.Lambda = 0.1
		}
		return NewLasso(config.Lambda), nil

	case "knn":
		if config.K <= 0 {
			config.K = 5
		}
		if config.Distance == "" {
			config.Distance = "euclidean"
		}
		return NewKNNRegressor(config.K, config.Distance), nil

	default:
		return nil, fmt.Errorf("unknown algorithm: %s", config.Algorithm)
	}
}

func DefaultRegressorConfig(algorithm string) RegressorConfig {
	config := RegressorConfig{Algorithm: algorithm}

	switch algorithm {
	case "ridge":
		config.Lambda = 1.0
	case "lasso":
		config.Lambda = 0.1
	case "knn":
		config.K = 5
		config.Distance = "euclidean"
	}

	return config
}
