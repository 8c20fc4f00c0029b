// Package linear_model provides the reference classifier of the workflow,
// a scikit-learn compatible LogisticRegression.
package linear_model

import (
	"math"
	"math/rand"
	"slices"

	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"github.com/YuminosukeSato/diagnosis/core/model"
	"github.com/YuminosukeSato/diagnosis/dataset"
	"github.com/YuminosukeSato/diagnosis/pkg/errors"
	"github.com/YuminosukeSato/diagnosis/pkg/log"
)

const modelName = "LogisticRegression"

// Penalty names accepted by WithLRPenalty.
const (
	PenaltyL2   = "l2"
	PenaltyNone = "none"
)

// LogisticRegression implements logistic regression for classification.
// Binary problems fit a single coefficient row; more than two classes are
// handled one-vs-rest. Once fitted, Predict and PredictProba only read the
// model and may be called concurrently.
type LogisticRegression struct {
	state *model.StateManager

	// Hyperparameters
	penalty      string  // "l2" or "none"
	C            float64 // Inverse regularization strength
	fitIntercept bool
	maxIter      int
	tol          float64 // Stop when max |gradient| falls below tol
	randomState  int64   // Seed for the initial weights, negative for random

	// Model parameters
	coef_      [][]float64 // 1 x n_features for binary, n_classes x n_features otherwise
	intercept_ []float64
	classes_   []int
	nIter_     []int

	logger log.Logger
}

// LogisticRegressionOption is a functional option for LogisticRegression
type LogisticRegressionOption func(*LogisticRegression)

// NewLogisticRegression creates a new LogisticRegression classifier
func NewLogisticRegression(opts ...LogisticRegressionOption) *LogisticRegression {
	lr := &LogisticRegression{
		state:        model.NewStateManager(),
		penalty:      PenaltyL2,
		C:            1.0,
		fitIntercept: true,
		maxIter:      1000,
		tol:          1e-4,
		randomState:  -1,
		logger:       log.GetLoggerWithName("linear_model").With(log.ModelNameKey, modelName),
	}
	for _, opt := range opts {
		opt(lr)
	}
	return lr
}

// WithLRPenalty sets the regularization type
func WithLRPenalty(penalty string) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.penalty = penalty
	}
}

// WithLRC sets the inverse regularization strength
func WithLRC(c float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.C = c
	}
}

// WithLogisticFitIntercept sets whether to fit intercept
func WithLogisticFitIntercept(fit bool) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.fitIntercept = fit
	}
}

// WithLRMaxIter sets the maximum number of iterations
func WithLRMaxIter(maxIter int) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.maxIter = maxIter
	}
}

// WithLRTol sets the tolerance for stopping criteria
func WithLRTol(tol float64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.tol = tol
	}
}

// WithLRRandomState sets the random seed
func WithLRRandomState(seed int64) LogisticRegressionOption {
	return func(lr *LogisticRegression) {
		lr.randomState = seed
	}
}

func (lr *LogisticRegression) validateParams() error {
	switch {
	case lr.penalty != PenaltyL2 && lr.penalty != PenaltyNone:
		return errors.NewValidationError("penalty", "must be 'l2' or 'none'", lr.penalty)
	case lr.C <= 0:
		return errors.NewValidationError("C", "must be positive", lr.C)
	case lr.maxIter < 1:
		return errors.NewValidationError("max_iter", "must be at least 1", lr.maxIter)
	case lr.tol <= 0:
		return errors.NewValidationError("tol", "must be positive", lr.tol)
	}
	return nil
}

// Fit trains the logistic regression model. y must hold integer class labels
// with at least two distinct values.
func (lr *LogisticRegression) Fit(X, y mat.Matrix) error {
	const op = "LogisticRegression.Fit"

	if err := lr.validateParams(); err != nil {
		return err
	}
	nSamples, nFeatures := X.Dims()
	if nSamples == 0 || nFeatures == 0 {
		return errors.Wrap(errors.ErrEmptyData, op)
	}
	yVec, err := dataset.ToVector(op, y)
	if err != nil {
		return err
	}
	if yVec.Len() != nSamples {
		return errors.NewDimensionError(op, nSamples, yVec.Len(), 0)
	}
	labels, err := dataset.Labels(op, yVec)
	if err != nil {
		return err
	}
	classes := dataset.SortedClasses(labels)
	if len(classes) < 2 {
		return errors.NewValueErrorf(op, "needs samples of at least 2 classes, got %d", len(classes))
	}

	Xd := mat.DenseCopyOf(X)
	rng := lr.newRand()

	targets := classes[1:]
	if len(classes) > 2 {
		targets = classes
	}
	coef := make([][]float64, len(targets))
	intercept := make([]float64, len(targets))
	nIter := make([]int, len(targets))
	for k, positive := range targets {
		yBinary := make([]float64, nSamples)
		for i, l := range labels {
			if l == positive {
				yBinary[i] = 1
			}
		}
		coef[k], intercept[k], nIter[k] = lr.fitBinary(Xd, yBinary, rng)
		if nIter[k] >= lr.maxIter {
			errors.Warn(errors.NewConvergenceWarning(modelName, lr.maxIter, ""))
		}
	}

	lr.coef_ = coef
	lr.intercept_ = intercept
	lr.classes_ = classes
	lr.nIter_ = nIter
	lr.state.SetFitted(nFeatures, nSamples)

	lr.logger.Info("Model fitted",
		log.OperationKey, log.OperationFit,
		log.PhaseKey, log.PhaseTraining,
		log.SamplesKey, nSamples,
		log.FeaturesKey, nFeatures,
		log.IterationKey, slices.Max(nIter),
	)
	return nil
}

func (lr *LogisticRegression) newRand() *rand.Rand {
	if lr.randomState >= 0 {
		return rand.New(rand.NewSource(lr.randomState))
	}
	return rand.New(rand.NewSource(rand.Int63()))
}

// fitBinary は勾配降下法で1本の二値ロジスティック回帰を学習する。
// 目的関数は scikit-learn と同じ C·Σloss + ½‖w‖² を n で割ったもの。
// ステップ幅はリプシッツ定数の上界の逆数。
func (lr *LogisticRegression) fitBinary(X *mat.Dense, y []float64, rng *rand.Rand) (w []float64, b float64, iter int) {
	nSamples, nFeatures := X.Dims()
	n := float64(nSamples)

	lambda := 0.0
	if lr.penalty == PenaltyL2 {
		lambda = 1.0 / (lr.C * n)
	}
	sq := mat.Norm(X, 2)
	lipschitz := 0.25*(sq*sq+n)/n + lambda
	step := 1.0 / lipschitz

	w = make([]float64, nFeatures)
	for j := range w {
		w[j] = rng.NormFloat64() * 0.01
	}

	wVec := mat.NewVecDense(nFeatures, w)
	z := mat.NewVecDense(nSamples, nil)
	residual := mat.NewVecDense(nSamples, nil)
	grad := mat.NewVecDense(nFeatures, nil)

	for iter = 1; iter <= lr.maxIter; iter++ {
		z.MulVec(X, wVec)
		gradB := 0.0
		for i := 0; i < nSamples; i++ {
			r := sigmoid(z.AtVec(i)+b) - y[i]
			residual.SetVec(i, r)
			gradB += r
		}
		gradB /= n

		grad.MulVec(X.T(), residual)
		grad.ScaleVec(1/n, grad)
		if lambda > 0 {
			grad.AddScaledVec(grad, lambda, wVec)
		}

		wVec.AddScaledVec(wVec, -step, grad)
		maxGrad := floats.Norm(grad.RawVector().Data, math.Inf(1))
		if lr.fitIntercept {
			b -= step * gradB
			maxGrad = math.Max(maxGrad, math.Abs(gradB))
		}
		if maxGrad < lr.tol {
			return w, b, iter
		}
	}
	return w, b, lr.maxIter
}

// decision returns the per-row scores of every coefficient row.
func (lr *LogisticRegression) decision(op string, X mat.Matrix) (*mat.Dense, error) {
	if err := lr.state.RequireFitted(modelName, op); err != nil {
		return nil, err
	}
	nSamples, nFeatures := X.Dims()
	if err := lr.state.RequireFeatures(modelName+"."+op, nFeatures); err != nil {
		return nil, err
	}
	if nSamples == 0 {
		return nil, errors.Wrap(errors.ErrEmptyData, modelName+"."+op)
	}

	scores := mat.NewDense(nSamples, len(lr.coef_), nil)
	for i := 0; i < nSamples; i++ {
		for k, w := range lr.coef_ {
			s := lr.intercept_[k]
			for j, wj := range w {
				s += X.At(i, j) * wj
			}
			scores.Set(i, k, s)
		}
	}
	return scores, nil
}

// DecisionFunction returns the log-odds of the positive class (binary) or
// the one-vs-rest scores (n_samples × n_classes).
func (lr *LogisticRegression) DecisionFunction(X mat.Matrix) (mat.Matrix, error) {
	return lr.decision("DecisionFunction", X)
}

// Predict makes predictions for input data
func (lr *LogisticRegression) Predict(X mat.Matrix) (mat.Matrix, error) {
	scores, err := lr.decision("Predict", X)
	if err != nil {
		return nil, err
	}
	nSamples, _ := scores.Dims()
	predictions := mat.NewVecDense(nSamples, nil)
	for i := 0; i < nSamples; i++ {
		if len(lr.coef_) == 1 {
			// scikit-learn は決定関数が 0 より大きいときのみ正クラス
			if scores.At(i, 0) > 0 {
				predictions.SetVec(i, float64(lr.classes_[1]))
			} else {
				predictions.SetVec(i, float64(lr.classes_[0]))
			}
			continue
		}
		predictions.SetVec(i, float64(lr.classes_[floats.MaxIdx(scores.RawRowView(i))]))
	}
	return predictions, nil
}

// PredictProba returns probability estimates for each class (n_samples ×
// n_classes, columns ordered like Classes). One-vs-rest probabilities are
// normalized to sum to one.
func (lr *LogisticRegression) PredictProba(X mat.Matrix) (mat.Matrix, error) {
	scores, err := lr.decision("PredictProba", X)
	if err != nil {
		return nil, err
	}
	nSamples, _ := scores.Dims()
	probas := mat.NewDense(nSamples, len(lr.classes_), nil)
	for i := 0; i < nSamples; i++ {
		if len(lr.coef_) == 1 {
			p := sigmoid(scores.At(i, 0))
			probas.Set(i, 0, 1-p)
			probas.Set(i, 1, p)
			continue
		}
		row := probas.RawRowView(i)
		for k := range row {
			row[k] = sigmoid(scores.At(i, k))
		}
		floats.Scale(1/floats.Sum(row), row)
	}
	return probas, nil
}

// Score returns the mean accuracy on the given test data and labels
func (lr *LogisticRegression) Score(X, y mat.Matrix) (float64, error) {
	predictions, err := lr.Predict(X)
	if err != nil {
		return 0, err
	}
	nSamples, _ := X.Dims()
	correct := 0
	for i := 0; i < nSamples; i++ {
		if predictions.At(i, 0) == y.At(i, 0) {
			correct++
		}
	}
	return float64(correct) / float64(nSamples), nil
}

// Coef returns a copy of the fitted coefficients.
func (lr *LogisticRegression) Coef() [][]float64 {
	out := make([][]float64, len(lr.coef_))
	for k, row := range lr.coef_ {
		out[k] = slices.Clone(row)
	}
	return out
}

// InterceptValues returns a copy of the fitted intercepts.
func (lr *LogisticRegression) InterceptValues() []float64 {
	return slices.Clone(lr.intercept_)
}

// Classes returns the sorted class labels seen during Fit.
func (lr *LogisticRegression) Classes() []int {
	return slices.Clone(lr.classes_)
}

// NIter returns the number of iterations run for each coefficient row.
func (lr *LogisticRegression) NIter() []int {
	return slices.Clone(lr.nIter_)
}

// IsFitted reports whether Fit has completed.
func (lr *LogisticRegression) IsFitted() bool {
	return lr.state.IsFitted()
}

// GetParams returns the model hyperparameters
func (lr *LogisticRegression) GetParams() map[string]interface{} {
	return map[string]interface{}{
		"penalty":       lr.penalty,
		"C":             lr.C,
		"fit_intercept": lr.fitIntercept,
		"max_iter":      lr.maxIter,
		"tol":           lr.tol,
		"random_state":  lr.randomState,
	}
}

var (
	_ model.Classifier        = (*LogisticRegression)(nil)
	_ model.LinearExplainable = (*LogisticRegression)(nil)
)

// sigmoid computes the sigmoid function
func sigmoid(z float64) float64 {
	if z >= 0 {
		return 1.0 / (1.0 + errors.StabilizeExp(-z))
	}
	e := errors.StabilizeExp(z)
	return e / (1.0 + e)
}
