package cli

import (
	"errors"

	"github.com/yaklabco/gomdedit/internal/configloader"
	"github.com/yaklabco/gomdedit/pkg/fsutil"
)

// Exit codes for gomdedit.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitNotFormatted indicates fmt --check found files that would change.
	ExitNotFormatted = 1

	// ExitEditFailed indicates a replayed edit was rejected.
	ExitEditFailed = 2

	// ExitInvalidUsage indicates invalid command-line usage.
	ExitInvalidUsage = 64

	// ExitConfigError indicates configuration file errors.
	ExitConfigError = 65

	// ExitInternalError indicates an internal error.
	ExitInternalError = 70

	// ExitIOError indicates file I/O errors.
	ExitIOError = 74
)

// Sentinel errors mapped to exit codes.
var (
	// ErrNotFormatted is returned by fmt --check when a file would change.
	ErrNotFormatted = errors.New("files are not formatted")

	// ErrUsage wraps invalid arguments.
	ErrUsage = errors.New("invalid usage")

	// ErrConfig wraps configuration failures.
	ErrConfig = errors.New("configuration error")

	// ErrEdit wraps rejected edits in a keystroke script.
	ErrEdit = errors.New("edit rejected")
)

// ExitCode maps an error returned by a command to a process exit code.
func ExitCode(err error) int {
	var validation *configloader.ValidationError
	switch {
	case err == nil:
		return ExitSuccess
	case errors.Is(err, ErrNotFormatted):
		return ExitNotFormatted
	case errors.Is(err, ErrEdit):
		return ExitEditFailed
	case errors.Is(err, ErrUsage):
		return ExitInvalidUsage
	case errors.Is(err, ErrConfig), errors.As(err, &validation):
		return ExitConfigError
	case errors.Is(err, fsutil.ErrNotFound),
		errors.Is(err, fsutil.ErrPermissionDenied),
		errors.Is(err, fsutil.ErrIsDirectory),
		errors.Is(err, fsutil.ErrConflict),
		errors.Is(err, configloader.ErrExists):
		return ExitIOError
	default:
		return ExitInternalError
	}
}
