/*package error contains simple funcitons for reporting boxio errors.

Errors that a caller may want to branch on are built around the sentinel
values below and can be tested with errors.Is. External and Internal are
the fatal reporters used by the command line tool.
*/
package error

import (
	"fmt"
	"os"
	"runtime/debug"

	"github.com/pkg/errors"
	"go.uber.org/zap"
)

var (
	// ErrUnsupportedFieldType is returned when a fluid read is asked for a
	// field outside of the dataset's fluid namespace.
	ErrUnsupportedFieldType = errors.New("unsupported field type")
	// ErrInvariantViolation is returned when a caller breaks a precondition
	// of a read, e.g. the whole-grid fast path being used with more than one
	// grid.
	ErrInvariantViolation = errors.New("invariant violation")
	// ErrUnknownField is returned when a field name reaches a decoder
	// without being in the relevant header table.
	ErrUnknownField = errors.New("unknown field")
)

// UnsupportedFieldType returns an ErrUnsupportedFieldType with a formatted
// description attached.
func UnsupportedFieldType(format string, a ...interface{}) error {
	return errors.Wrapf(ErrUnsupportedFieldType, format, a...)
}

// InvariantViolation returns an ErrInvariantViolation with a formatted
// description attached.
func InvariantViolation(format string, a ...interface{}) error {
	return errors.Wrapf(ErrInvariantViolation, format, a...)
}

// UnknownField returns an ErrUnknownField with a formatted description
// attached.
func UnknownField(format string, a ...interface{}) error {
	return errors.Wrapf(ErrUnknownField, format, a...)
}

// External reports an error and kills the program. It should be used when an
// error is something a user could reasonbly be expected to fix through
// changes in configuration/data/environement. It has the same signature at
// the standard fmt.*printf() functions.
func External(format string, a ...interface{}) {
	zap.S().Errorf("boxio exited early with the following error:\n"+format, a...)
	_ = zap.L().Sync()
	os.Exit(1)
}

// Internal reports an error along with a stack trace and kills the program.
// It should be used when the error requires a code dive to fix.
func Internal(format string, a ...interface{}) {
	zap.S().Error("boxio exited early with the following error:")
	fmt.Fprintf(os.Stderr, format, a...)
	fmt.Fprintf(os.Stderr, "\n\n")
	debug.PrintStack()
	_ = zap.L().Sync()
	os.Exit(1)
}
