package resilience

import (
	"github.com/wayneeseguin/treelog/pkg/types"
)

// ShieldConfig configures an error-swallowing boundary.
type ShieldConfig struct {
	Classify

	// Message announces the swallowed error; "%v" receives the error.
	// Empty defaults to "ignoring error: %v".
	Message string

	// LogLevel is the severity of the announcement.
	LogLevel types.Level

	// Logger receives the announcement. Nil means silence.
	Logger types.Logger
}

// Shield runs op and swallows any error the classification hands to it,
// logging it once instead of propagating. Errors that classify for
// propagation return unchanged. The swallowed error's own trace ("%+v",
// so pkg/errors stacks point at the raise site) is logged at debug
// severity when the announcement itself is above debug.
func Shield(cfg ShieldConfig, op func() error) error {
	err := op()
	if err == nil {
		return nil
	}
	if cfg.propagate(err) {
		return err
	}

	if cfg.Logger != nil {
		message := cfg.Message
		if message == "" {
			message = "ignoring error: %v"
		}
		cfg.Logger.Logf(cfg.LogLevel, message, err)
		if cfg.LogLevel > types.LevelDebug {
			cfg.Logger.Logf(types.LevelDebug, "Traceback:\n%+v", err)
		}
	}
	return nil
}

// Resilient wraps fn so its acceptable errors are swallowed and logged
// rather than returned.
func Resilient(cfg ShieldConfig, fn func() error) func() error {
	return func() error {
		return Shield(cfg, fn)
	}
}
