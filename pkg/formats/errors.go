package formats

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

var (
	// ErrBadLabelFormat is returned when a label does not satisfy the rule of its filesystem type.
	ErrBadLabelFormat = errors.New("bad label format")
	// ErrUnsetNotSupported is returned when an absent label is written to a
	// filesystem whose tool cannot express "no label".
	ErrUnsetNotSupported = errors.New("can not unset a filesystem label")
	// ErrNoReadApplication is a permanent capability gap: there is no tool to
	// read the label back. Callers must not retry.
	ErrNoReadApplication = errors.New("no application to read label")
	// ErrExecution matches every *ExecError.
	ErrExecution = errors.New("external command failed")

	ErrUnknownType       = errors.New("unknown filesystem type")
	ErrNoDevice          = errors.New("no device specified")
	ErrNotFormatted      = errors.New("filesystem has not been created")
	ErrAlreadyFormatted  = errors.New("filesystem already exists")
	ErrNotFormattable    = errors.New("filesystem type can not be created")
	ErrBadUUIDFormat     = errors.New("bad UUID format")
	ErrNoUUID            = errors.New("no UUID specified")
	ErrNoUUIDApplication = errors.New("no application to write UUID")
)

// ExecError is returned when a delegated tool invocation fails.
type ExecError struct {
	Args   []string
	Output string
	Err    error
}

func (e *ExecError) Error() string {
	msg := fmt.Sprintf("%s: %s", strings.Join(e.Args, " "), e.Err)
	if out := strings.TrimSpace(e.Output); out != "" {
		msg = fmt.Sprintf("%s: %s", msg, out)
	}
	return msg
}

func (e *ExecError) Unwrap() error { return e.Err }

func (e *ExecError) Is(target error) bool { return target == ErrExecution }
