// Package log defines standard attribute keys for the workflow's log records.
//
// Keys follow a hierarchical naming convention (e.g. "ml.operation",
// "data.samples") so log lines can be filtered by category.

package log

// Model and Operation Context
const (
	// ModelNameKey identifies the estimator or transformer type.
	// Examples: "LogisticRegression", "StandardScaler", "SMOTE"
	ModelNameKey = "model.name"

	// OperationKey specifies the operation being performed.
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	ComponentKey = "ml.component"

	// PhaseKey indicates the phase of the workflow.
	PhaseKey = "ml.phase"

	// MethodKey records the selected strategy (sampling or scaling method).
	MethodKey = "ml.method"
)

// Data Shape and Characteristics
const (
	// SamplesKey indicates the number of samples (rows).
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns).
	FeaturesKey = "data.features"

	// ClassCountsKey records the per-class sample counts.
	ClassCountsKey = "data.class_counts"

	// PathKey records an input or output file path.
	PathKey = "data.path"
)

// Performance and Evaluation
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// AccuracyKey records model accuracy for evaluation operations.
	AccuracyKey = "metrics.accuracy"

	// MisclassifiedKey records how many test rows were misclassified.
	MisclassifiedKey = "metrics.misclassified"

	// ROCAUCKey and LogLossKey record the probability scores of a classifier.
	ROCAUCKey  = "metrics.roc_auc"
	LogLossKey = "metrics.log_loss"

	// IterationKey records the iteration count of an iterative solver.
	IterationKey = "training.iteration"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Standard attribute value constants for common operations.
const (
	OperationFit          = "fit"
	OperationPredict      = "predict"
	OperationTransform    = "transform"
	OperationFitTransform = "fit_transform"
	OperationFitResample  = "fit_resample"
	OperationSplit        = "split"
	OperationExplain      = "explain"
	OperationRender       = "render"

	PhasePreprocessing  = "preprocessing"
	PhaseTraining       = "training"
	PhaseEvaluation     = "evaluation"
	PhaseInterpretation = "interpretation"
)
