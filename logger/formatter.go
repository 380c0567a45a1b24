package logger

import (
	"bytes"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	resetColorCode         = 0
	defaultFieldSeparator  = " | "
	defaultTimestampFormat = time.RFC3339
)

// Formatter implements logrus.Formatter with a compact single-line layout:
// timestamp, level, ordered fields, message.
type Formatter struct {
	// TimestampFormat specifies the format of the timestamp. Default: time.RFC3339.
	TimestampFormat string
	// NoColors disables colorized output.
	NoColors bool
	// DisableTimestamp disables timestamp output.
	DisableTimestamp bool
	// ShowAllLevels prints the level name for every entry instead of only
	// WARN and above.
	ShowAllLevels bool
	// FieldsDisplayWithOrder lists field keys to display first, in order.
	// Remaining fields are appended alphabetically.
	FieldsDisplayWithOrder []string
	// FieldSeparator separates fields. Default: " | ".
	FieldSeparator string
}

func (f *Formatter) Format(entry *logrus.Entry) ([]byte, error) {
	b := &bytes.Buffer{}

	if !f.DisableTimestamp {
		format := f.TimestampFormat
		if format == "" {
			format = defaultTimestampFormat
		}
		b.WriteString(entry.Time.Format(format))
		b.WriteString(" ")
	}

	if f.ShowAllLevels || entry.Level <= logrus.WarnLevel {
		levelStr := strings.ToUpper(entry.Level.String())
		if len(levelStr) > 4 {
			levelStr = levelStr[:4]
		}
		if !f.NoColors {
			fmt.Fprintf(b, "\x1b[%dm", colorByLevel(entry.Level))
		}
		fmt.Fprintf(b, "[%s]", levelStr)
		if !f.NoColors {
			fmt.Fprintf(b, "\x1b[%dm", resetColorCode)
		}
		b.WriteString(" ")
	}

	f.writeFields(b, entry)

	b.WriteString(entry.Message)
	b.WriteString("\n")
	return b.Bytes(), nil
}

func (f *Formatter) writeFields(b *bytes.Buffer, entry *logrus.Entry) {
	if len(entry.Data) == 0 {
		return
	}

	separator := f.FieldSeparator
	if separator == "" {
		separator = defaultFieldSeparator
	}

	written := make(map[string]bool, len(entry.Data))
	var parts []string

	for _, key := range f.FieldsDisplayWithOrder {
		if value, ok := entry.Data[key]; ok {
			parts = append(parts, fmt.Sprintf("[%s:%v]", key, value))
			written[key] = true
		}
	}

	rest := make([]string, 0, len(entry.Data))
	for key := range entry.Data {
		if !written[key] {
			rest = append(rest, key)
		}
	}
	sort.Strings(rest)
	for _, key := range rest {
		parts = append(parts, fmt.Sprintf("[%s:%v]", key, entry.Data[key]))
	}

	if len(parts) > 0 {
		b.WriteString(strings.Join(parts, separator))
		b.WriteString(" ")
	}
}

func colorByLevel(level logrus.Level) int {
	switch level {
	case logrus.TraceLevel, logrus.DebugLevel:
		return 36 // cyan
	case logrus.InfoLevel:
		return 32 // green
	case logrus.WarnLevel:
		return 33 // yellow
	default:
		return 31 // red
	}
}
