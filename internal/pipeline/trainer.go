package pipeline

import (
	"context"
	"fmt"
	"io"

	"featuredrop/internal/frame"
	"featuredrop/internal/observability"
	"featuredrop/internal/regression"
	"featuredrop/internal/ui"
	"featuredrop/internal/warehouse"
	"featuredrop/pkg/errors"
	"featuredrop/pkg/models"
)

// Result column names
const (
	ColumnR2  = "R2_SCORE"
	ColumnMSE = "MSE"
)

// TrainResult is the outcome of one training run
type TrainResult struct {
	// Table is the one-row {R2_SCORE, MSE} result
	Table       *frame.Frame
	Model       *regression.LinearRegression
	Metrics     regression.Metrics
	TrainRows   int
	TestRows    int
	DroppedRows int
}

// Trainer fits the regression model on the materialized table
type Trainer struct {
	cfg     models.Pipeline
	console *ui.Console
	logger  *observability.Logger
}

// NewTrainer creates a trainer writing progress to out
func NewTrainer(cfg models.Pipeline, out io.Writer, logger *observability.Logger) *Trainer {
	if logger == nil {
		logger = observability.GetDefaultLogger()
	}
	return &Trainer{cfg: cfg, console: ui.NewConsole(out), logger: logger}
}

// Run loads the materialized table into memory, fits the model on a seeded
// 70/30 split, scores it on the held-out rows and writes it to the model
// path. Any failure aborts the run and no result table is returned.
func (t *Trainer) Run(ctx context.Context, sess warehouse.Session) (*TrainResult, error) {
	logger, _ := t.logger.WithRunID()

	table, err := sess.Table(ctx, t.cfg.DestinationTable)
	if err != nil {
		return nil, err
	}

	t.console.Header("Sample of Feature Data")
	if err := table.Show(ctx, t.console.Writer(), t.cfg.SampleRows); err != nil {
		return nil, err
	}

	data, err := table.ToFrame(ctx)
	if err != nil {
		return nil, err
	}

	x, y, dropped, err := t.prepare(logger, table.Name(), data)
	if err != nil {
		return nil, err
	}

	trainIdx, testIdx, err := regression.TrainTestSplit(len(x), t.cfg.TestSize, t.cfg.RandomSeed)
	if err != nil {
		return nil, err
	}
	xTrain, yTrain := pick(x, trainIdx), pick(y, trainIdx)
	xTest, yTest := pick(x, testIdx), pick(y, testIdx)

	model := regression.NewLinearRegression(t.cfg.FeatureColumn, t.cfg.TargetColumn)
	if err := model.Fit(xTrain, yTrain); err != nil {
		return nil, err
	}

	metrics, err := regression.Evaluate(model, xTest, yTest)
	if err != nil {
		return nil, err
	}

	t.console.Success("Model trained successfully!")
	t.console.Metric("R² Score", metrics.R2)
	t.console.Metric("MSE", metrics.MSE)

	if err := model.Save(t.cfg.ModelPath); err != nil {
		return nil, err
	}
	t.console.Success(fmt.Sprintf("Model saved successfully at %s", t.cfg.ModelPath))

	result, err := sess.CreateDataFrame([]string{ColumnR2, ColumnMSE}, []interface{}{metrics.R2, metrics.MSE})
	if err != nil {
		return nil, err
	}

	logger.InfoWithFields("model trained", map[string]interface{}{
		"table":        table.Name(),
		"train_rows":   len(trainIdx),
		"test_rows":    len(testIdx),
		"dropped_rows": dropped,
		"slope":        model.Slope,
		"intercept":    model.Intercept,
		"r2":           metrics.R2,
		"mse":          metrics.MSE,
		"model_path":   t.cfg.ModelPath,
	})

	return &TrainResult{
		Table:       result,
		Model:       model,
		Metrics:     metrics,
		TrainRows:   len(trainIdx),
		TestRows:    len(testIdx),
		DroppedRows: dropped,
	}, nil
}

// prepare checks the two columns exist, drops incomplete rows and converts
// what is left to float64 slices
func (t *Trainer) prepare(logger *observability.Logger, table string, data *frame.Frame) (x, y []float64, dropped int, err error) {
	if missing, ok := data.HasColumns(t.cfg.FeatureColumn, t.cfg.TargetColumn); !ok {
		return nil, nil, 0, errors.SchemaMismatch(table, missing, "column not found").
			WithContext("columns", data.Columns)
	}

	filtered, dropped, err := data.DropNA(t.cfg.FeatureColumn, t.cfg.TargetColumn)
	if err != nil {
		return nil, nil, 0, err
	}
	logger.DebugWithFields("dropped rows with missing values", map[string]interface{}{
		"before":  data.Len(),
		"after":   filtered.Len(),
		"dropped": dropped,
	})

	if x, err = filtered.Float64s(t.cfg.FeatureColumn); err != nil {
		return nil, nil, 0, errors.Wrap(err, errors.ErrCodeSchemaMismatch,
			fmt.Sprintf("Column '%s' of '%s' is not numeric", t.cfg.FeatureColumn, table))
	}
	if y, err = filtered.Float64s(t.cfg.TargetColumn); err != nil {
		return nil, nil, 0, errors.Wrap(err, errors.ErrCodeSchemaMismatch,
			fmt.Sprintf("Column '%s' of '%s' is not numeric", t.cfg.TargetColumn, table))
	}
	return x, y, dropped, nil
}

// Train runs a Trainer with console output on out
func Train(ctx context.Context, sess warehouse.Session, cfg models.Pipeline, out io.Writer) (*TrainResult, error) {
	return NewTrainer(cfg, out, nil).Run(ctx, sess)
}

func pick(values []float64, idx []int) []float64 {
	out := make([]float64, len(idx))
	for i, j := range idx {
		out[i] = values[j]
	}
	return out
}
