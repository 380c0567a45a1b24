package logger

import (
	"io"
	"os"
	"path/filepath"
	"time"

	rotatelogs "github.com/lestrrat-go/file-rotatelogs"
	"github.com/pkg/errors"
	"github.com/rifflock/lfshook"
	"github.com/sirupsen/logrus"

	"github.com/distroforge/distroforge/common"
)

// Log is the global logger instance.
var Log *AppLog

// AppLog wraps logrus.Logger for application-specific logging.
type AppLog struct {
	*logrus.Logger
}

func init() {
	logger := logrus.New()
	logger.SetOutput(os.Stderr)
	logger.SetLevel(logrus.InfoLevel)
	logger.SetFormatter(consoleFormatter(false))
	Log = &AppLog{Logger: logger}
}

func fieldOrder() []string {
	return []string{
		common.LogFieldApp, common.LogFieldDistro, common.LogFieldManager,
		common.LogFieldOperation, common.LogFieldSession,
		common.LogFieldPackage, common.LogFieldTweak,
	}
}

func consoleFormatter(verbose bool) *Formatter {
	return &Formatter{
		TimestampFormat:        "15:04:05",
		ShowAllLevels:          verbose,
		FieldsDisplayWithOrder: fieldOrder(),
	}
}

// InitGlobalLogger reconfigures the global Log. When outputPath is non-empty
// a daily-rotated copy of every entry is also written there; files keep seven
// days of history and a stable symlink points at the current day.
func InitGlobalLogger(outputPath string, verbose bool) error {
	level := logrus.InfoLevel
	if verbose {
		level = logrus.DebugLevel
	}
	Log.SetLevel(level)
	Log.SetFormatter(consoleFormatter(verbose))

	if outputPath == "" {
		return nil
	}

	// File logging is best effort: without write access to the log directory
	// the tool still works with console logging alone.
	if err := os.MkdirAll(outputPath, 0o755); err != nil {
		Log.Warnf("file logging disabled, cannot create %s: %v", outputPath, err)
		return nil
	}
	logFilePath := filepath.Join(outputPath, common.AppName+".log")

	writer, err := rotatelogs.New(
		logFilePath+".%Y%m%d",
		rotatelogs.WithLinkName(logFilePath),
		rotatelogs.WithMaxAge(7*24*time.Hour),
		rotatelogs.WithRotationTime(24*time.Hour),
	)
	if err != nil {
		return errors.Wrapf(err, "failed to initialize rotatelogs for %s", logFilePath)
	}

	fileFormatter := &Formatter{
		TimestampFormat:        "2006-01-02 15:04:05.000 MST",
		NoColors:               true,
		ShowAllLevels:          true,
		FieldsDisplayWithOrder: fieldOrder(),
	}

	Log.AddHook(lfshook.NewHook(lfshook.WriterMap{
		logrus.TraceLevel: writer,
		logrus.DebugLevel: writer,
		logrus.InfoLevel:  writer,
		logrus.WarnLevel:  writer,
		logrus.ErrorLevel: writer,
		logrus.FatalLevel: writer,
		logrus.PanicLevel: writer,
	}, fileFormatter))

	return nil
}

// SetOutput redirects console logging, used by tests to capture entries.
func SetOutput(w io.Writer) {
	Log.SetOutput(w)
}
