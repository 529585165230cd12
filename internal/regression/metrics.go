package regression

import (
	"fmt"
	"math"

	"featuredrop/pkg/errors"

	"gonum.org/v1/gonum/stat"
)

// Metrics holds held-out evaluation results
type Metrics struct {
	R2  float64
	MSE float64
}

// R2Score is 1 - SS_res/SS_tot. With zero target variance it is 1 for a
// perfect prediction and 0 otherwise; with fewer than two samples it is
// undefined and NaN is returned.
func R2Score(yTrue, yPred []float64) (float64, error) {
	if err := checkLengths(yTrue, yPred); err != nil {
		return 0, err
	}
	if len(yTrue) < 2 {
		return math.NaN(), nil
	}

	var ssRes, ssTot float64
	mean := stat.Mean(yTrue, nil)
	for i := range yTrue {
		r := yTrue[i] - yPred[i]
		d := yTrue[i] - mean
		ssRes += r * r
		ssTot += d * d
	}

	if ssTot == 0 {
		if ssRes == 0 {
			return 1, nil
		}
		return 0, nil
	}
	return 1 - ssRes/ssTot, nil
}

// MeanSquaredError is mean((yTrue - yPred)^2)
func MeanSquaredError(yTrue, yPred []float64) (float64, error) {
	if err := checkLengths(yTrue, yPred); err != nil {
		return 0, err
	}
	if len(yTrue) == 0 {
		return 0, errors.New(errors.ErrCodeInsufficientData, "cannot compute MSE on zero samples")
	}

	sq := make([]float64, len(yTrue))
	for i := range yTrue {
		d := yTrue[i] - yPred[i]
		sq[i] = d * d
	}
	return stat.Mean(sq, nil), nil
}

// Evaluate predicts x with m and scores the predictions against y
func Evaluate(m *LinearRegression, x, y []float64) (Metrics, error) {
	pred, err := m.Predict(x)
	if err != nil {
		return Metrics{}, err
	}

	r2, err := R2Score(y, pred)
	if err != nil {
		return Metrics{}, err
	}
	mse, err := MeanSquaredError(y, pred)
	if err != nil {
		return Metrics{}, err
	}
	return Metrics{R2: r2, MSE: mse}, nil
}

func checkLengths(yTrue, yPred []float64) error {
	if len(yTrue) != len(yPred) {
		return errors.New(errors.ErrCodeInvalidInput,
			fmt.Sprintf("length mismatch: %d true values, %d predictions", len(yTrue), len(yPred)))
	}
	return nil
}
