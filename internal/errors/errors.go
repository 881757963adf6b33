package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/ilsang/internal/logger"
	"github.com/julianstephens/ilsang/internal/migration"
	"github.com/julianstephens/ilsang/internal/notifier"
	"github.com/julianstephens/ilsang/internal/recurrence"
	"github.com/julianstephens/ilsang/internal/routine"
	"github.com/julianstephens/ilsang/internal/storage"
	"github.com/julianstephens/ilsang/internal/storage/postgres"
)

// hints pairs well-known sentinel errors with a line telling the user what to
// do next. Order matters: the first match wins.
var hints = []struct {
	target error
	hint   string
}{
	{recurrence.ErrInvalidRepeatCycle, "supported cycles: 매일, N일마다, 매주 수요일, 매달 20일, 매달 셋째주 수요일"},
	{routine.ErrNotDue, "use 'ilsang routine next <id>' to see when it is due"},
	{routine.ErrFutureDay, "executions can only be recorded for today or earlier"},
	{storage.ErrNotFound, "use 'ilsang routine list' or 'ilsang diary list' to find valid IDs"},
	{migration.ErrSchemaTooNew, "upgrade ilsang to a version that supports this database"},
	{postgres.ErrEmbeddedCredentials, "store the connection string with 'ilsang keyring set' or ILSANG_DB_CONNECTION, or move the password to .pgpass"},
	{notifier.ErrTrayNotRunning, "start the tray app or run 'ilsang remind --dry-run'"},
}

// Hint returns a follow-up suggestion for err, or "" if none applies.
func Hint(err error) string {
	for _, h := range hints {
		if stderrors.Is(err, h.target) {
			return h.hint
		}
	}
	return ""
}

// Format formats an error message with a consistent "Error: " prefix, followed
// by a hint line when one is known.
func Format(err error) string {
	if err == nil {
		return ""
	}
	msg := fmt.Sprintf("Error: %v", err)
	if hint := Hint(err); hint != "" {
		msg += "\nHint: " + hint
	}
	return msg
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		os.Exit(1)
	}
}

// Fatalf logs and formats an error message, then exits the program with exit code 1
func Fatalf(format string, args ...interface{}) {
	msg := fmt.Sprintf(format, args...)
	logger.Error("Command execution failed", "error", msg)
	fmt.Fprintf(os.Stderr, "%s\n", Formatf(format, args...))
	os.Exit(1)
}
