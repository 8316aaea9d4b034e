package models

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// Optimizer applies a gradient step to one named parameter tensor. Stateful
// optimizers key their running moments by the parameter name, so a single
// optimizer instance must not be shared between networks.
type Optimizer interface {
	Name() string
	LearningRate() float64
	Update(key string, param *mat.Dense, grad *mat.Dense)
}

type SGD struct {
	LR float64
}

func NewSGD() *SGD {
	return &SGD{LR: 0.01}
}

func (o *SGD) Name() string {
	return "sgd"
}

func (o *SGD) LearningRate() float64 {
	return o.LR
}

func (o *SGD) Update(key string, param *mat.Dense, grad *mat.Dense) {
	p := param.RawMatrix().Data
	g := grad.RawMatrix().Data
	for i := range p {
		p[i] -= o.LR * g[i]
	}
}

type RMSProp struct {
	LR      float64
	Decay   float64
	Epsilon float64

	cache map[string][]float64
}

func NewRMSProp() *RMSProp {
	return &RMSProp{
		LR:      0.001,
		Decay:   0.9,
		Epsilon: 1e-8,
		cache:   make(map[string][]float64),
	}
}

func (o *RMSProp) Name() string {
	return "rmsprop"
}

func (o *RMSProp) LearningRate() float64 {
	return o.LR
}

func (o *RMSProp) Update(key string, param *mat.Dense, grad *mat.Dense) {
	p := param.RawMatrix().Data
	g := grad.RawMatrix().Data

	cache, ok := o.cache[key]
	if !ok {
		cache = make([]float64, len(p))
		o.cache[key] = cache
	}

	for i := range p {
		cache[i] = o.Decay*cache[i] + (1-o.Decay)*g[i]*g[i]
		p[i] -= o.LR * g[i] / (math.Sqrt(cache[i]) + o.Epsilon)
	}
}

type Adam struct {
	LR      float64
	Beta1   float64
	Beta2   float64
	Epsilon float64

	m    map[string][]float64
	v    map[string][]float64
	step map[string]int
}

func NewAdam() *Adam {
	return &Adam{
		LR:      0.001,
		Beta1:   0.9,
		Beta2:   0.999,
		Epsilon: 1e-8,
		m:       make(map[string][]float64),
		v:       make(map[string][]float64),
		step:    make(map[string]int),
	}
}

func (o *Adam) Name() string {
	return "adam"
}

func (o *Adam) LearningRate() float64 {
	return o.LR
}

func (o *Adam) Update(key string, param *mat.Dense, grad *mat.Dense) {
	p := param.RawMatrix().Data
	g := grad.RawMatrix().Data

	m, ok := o.m[key]
	if !ok {
		m = make([]float64, len(p))
		o.m[key] = m
	}
	v, ok := o.v[key]
	if !ok {
		v = make([]float64, len(p))
		o.v[key] = v
	}

	o.step[key]++
	t := float64(o.step[key])
	mCorr := 1 - math.Pow(o.Beta1, t)
	vCorr := 1 - math.Pow(o.Beta2, t)

	for i := range p {
		m[i] = o.Beta1*m[i] + (1-o.Beta1)*g[i]
		v[i] = o.Beta2*v[i] + (1-o.Beta2)*g[i]*g[i]

		mHat := m[i] / mCorr
		vHat := v[i] / vCorr
		p[i] -= o.LR * mHat / (math.Sqrt(vHat) + o.Epsilon)
	}
}
