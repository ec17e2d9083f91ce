// Package regression fits ordinary least-squares models with two predictors.
package regression

import (
	"errors"
	"fmt"
	"math"

	"gonum.org/v1/gonum/stat"
)

// MinObservations is the smallest sample that determines an intercept and two slopes.
const MinObservations = 3

// collinearityTolerance bounds the squared correlation between predictors;
// above 1-tolerance the normal equations are treated as singular.
const collinearityTolerance = 1e-10

// Sentinel kinds for fit failures.
var (
	ErrTooFewObservations = errors.New("too few observations")
	ErrSingular           = errors.New("predictors are constant or collinear")
	ErrLengthMismatch     = errors.New("input lengths differ")
)

// Model is a fitted y = Intercept + B1*x1 + B2*x2.
type Model struct {
	Intercept float64 `json:"intercept"`
	B1        float64 `json:"b1"`
	B2        float64 `json:"b2"`
	N         int     `json:"n"`
}

// Predict evaluates the model at (x1, x2).
func (m Model) Predict(x1, x2 float64) float64 {
	return m.Intercept + m.B1*x1 + m.B2*x2
}

// Fit solves the least-squares problem for y against x1 and x2.
//
// The normal equations are solved in centred form, which removes the intercept
// from the system and leaves a 2x2 covariance matrix:
//
//	| C11 C12 | |B1|   |C1y|
//	| C12 C22 | |B2| = |C2y|
func Fit(x1, x2, y []float64) (Model, error) {
	n := len(y)
	if len(x1) != n || len(x2) != n {
		return Model{}, fmt.Errorf("%w: x1=%d x2=%d y=%d", ErrLengthMismatch, len(x1), len(x2), n)
	}
	if n < MinObservations {
		return Model{}, fmt.Errorf("%w: have %d, need %d", ErrTooFewObservations, n, MinObservations)
	}

	c11 := stat.Variance(x1, nil)
	c22 := stat.Variance(x2, nil)
	if c11 == 0 || c22 == 0 {
		return Model{}, ErrSingular
	}
	c12 := stat.Covariance(x1, x2, nil)
	c1y := stat.Covariance(x1, y, nil)
	c2y := stat.Covariance(x2, y, nil)

	det := c11*c22 - c12*c12
	if det <= collinearityTolerance*c11*c22 {
		return Model{}, ErrSingular
	}

	b1 := (c1y*c22 - c2y*c12) / det
	b2 := (c2y*c11 - c1y*c12) / det
	model := Model{
		Intercept: stat.Mean(y, nil) - b1*stat.Mean(x1, nil) - b2*stat.Mean(x2, nil),
		B1:        b1,
		B2:        b2,
		N:         n,
	}
	if math.IsNaN(model.Intercept) || math.IsInf(model.Intercept, 0) {
		return Model{}, ErrSingular
	}
	return model, nil
}
