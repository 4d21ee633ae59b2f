package softmax

import (
	"github.com/e4040/softmaxloss/pkg/log"
)

// config holds the knobs shared by both loss variants.
type config struct {
	stableExp   bool
	regGradient bool
	logger      log.Logger
	// set by WithLogger; warnings then go to logger instead of errors.Warn
	ownLogger bool
}

// Option is a functional option for LossNaive and LossVectorized.
type Option func(*config)

func newConfig(opts []Option) *config {
	cfg := &config{}
	for _, opt := range opts {
		opt(cfg)
	}
	if cfg.logger == nil {
		cfg.logger = log.GetLoggerWithName("softmax")
	}
	return cfg
}

// WithStableExp subtracts each row's maximum score before exponentiating.
// The default leaves scores unshifted, so very large scores overflow to NaN.
func WithStableExp(enabled bool) Option {
	return func(c *config) {
		c.stableExp = enabled
	}
}

// WithRegGradient adds the gradient of the regularization term,
// 0.5*reg*W/||W||_F, to dW. By default dW holds only the data term.
func WithRegGradient(enabled bool) Option {
	return func(c *config) {
		c.regGradient = enabled
	}
}

// WithLogger sets the logger used for debug records and non-finite warnings.
// Without it, debug records go to the "softmax" component logger and
// warnings to the library-wide errors.Warn handler.
func WithLogger(logger log.Logger) Option {
	return func(c *config) {
		c.logger = logger
		c.ownLogger = logger != nil
	}
}
