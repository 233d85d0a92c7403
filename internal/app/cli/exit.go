package cli

import "log/slog"

// Process exit codes.
const (
	ExitOK      = 0
	ExitFailure = 1
)

// Run calls fn and maps its result onto an exit code. A failure is logged
// under the command name.
func Run(name string, fn func() error) int {
	if err := fn(); err != nil {
		slog.Error(name+" failed", "error", err)
		return ExitFailure
	}
	return ExitOK
}
