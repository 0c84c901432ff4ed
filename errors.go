package fractal

import (
	"errors"
	"fmt"
	"runtime"
)

// ErrConfig is wrapped by every error caused by invalid generation parameters.
// Such errors are returned before any point is generated.
var ErrConfig = errors.New("invalid configuration")

// configErr returns an error wrapping ErrConfig annotated with the name and
// line of a function up the call stack: skip 1 is the caller of configErr.
func configErr(skip int, msg string) error {
	pc, _, line, ok := runtime.Caller(skip)
	if !ok {
		return fmt.Errorf("?: %w: %s", ErrConfig, msg)
	}
	fn := runtime.FuncForPC(pc)
	return fmt.Errorf("%s line %d: %w: %s", fn.Name(), line, ErrConfig, msg)
}

// checkLevel errors are attributed to the caller of checkLevel.
func checkLevel(level, max int) error {
	if level < 1 {
		return configErr(2, fmt.Sprintf("level must be 1 or larger, got %d", level))
	}
	if level > max {
		return configErr(2, fmt.Sprintf("level %d exceeds maximum of %d", level, max))
	}
	return nil
}
