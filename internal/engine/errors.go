package engine

import (
	"errors"
	"fmt"
)

// ErrConfig is matched by every *ConfigError.
var ErrConfig = errors.New("engine: invalid configuration")

// ConfigError reports a configuration the engine cannot run. It is only
// returned from New.
type ConfigError struct {
	Field string
	Err   error
}

func (e *ConfigError) Error() string {
	return fmt.Sprintf("engine: invalid configuration: %s: %v", e.Field, e.Err)
}

func (e *ConfigError) Unwrap() error { return e.Err }

func (e *ConfigError) Is(target error) bool { return target == ErrConfig }
