// Package log defines standard attribute keys for softmaxloss operations.
//
// Using these keys keeps log records from the loss functions, the gradient
// checker and the example command consistent. Keys follow a hierarchical
// naming convention (e.g. "data.samples", "metrics.loss") so records can be
// filtered by prefix.

package log

// Operation Context
const (
	// OperationKey specifies the operation being performed.
	// Standard values: "loss", "gradient_check"
	OperationKey = "ml.operation"

	// ComponentKey identifies which package is performing the operation.
	// Examples: "softmax", "gradcheck"
	ComponentKey = "ml.component"

	// VariantKey distinguishes implementations sharing one contract.
	// Standard values: "naive", "vectorized"
	VariantKey = "ml.variant"
)

// Data Shape
const (
	// SamplesKey indicates the number of samples (rows of X, N).
	SamplesKey = "data.samples"

	// FeaturesKey indicates the number of features (columns of X, D).
	FeaturesKey = "data.features"

	// ClassesKey indicates the number of classes (columns of W, C).
	ClassesKey = "data.classes"
)

// Metrics
const (
	// DurationMsKey records the execution time of an operation in milliseconds.
	DurationMsKey = "perf.duration_ms"

	// LossKey records a loss value.
	LossKey = "metrics.loss"

	// RelErrorKey records a relative error between two gradient estimates.
	RelErrorKey = "metrics.rel_error"

	// GradNormKey records the Frobenius norm of a gradient.
	GradNormKey = "metrics.grad_norm"
)

// Hyperparameters
const (
	// RegularizationKey records regularization strength.
	RegularizationKey = "hyperparams.regularization"

	// RandomSeedKey records the random seed for reproducibility.
	RandomSeedKey = "config.random_seed"
)

// Error Context
const (
	// ErrorTypeKey categorizes the type of error encountered.
	ErrorTypeKey = "error.type"

	// StacktraceKey contains stack trace information for debugging.
	// Populated automatically when an error is passed to Logger.Error.
	StacktraceKey = "error.stacktrace"
)

// Standard attribute values.
const (
	OperationLoss          = "loss"
	OperationGradientCheck = "gradient_check"

	VariantNaive      = "naive"
	VariantVectorized = "vectorized"
)
