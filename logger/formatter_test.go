package logger

import (
	"strings"
	"testing"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func entryAt(level logrus.Level, message string, fields logrus.Fields) *logrus.Entry {
	entry := logrus.NewEntry(logrus.New())
	if fields != nil {
		entry = entry.WithFields(fields)
	}
	entry.Time = time.Date(2026, 8, 24, 10, 30, 0, 0, time.UTC)
	entry.Level = level
	entry.Message = message
	return entry
}

func TestFormat_InfoHidesLevelByDefault(t *testing.T) {
	f := &Formatter{NoColors: true, TimestampFormat: "15:04:05"}

	out, err := f.Format(entryAt(logrus.InfoLevel, "starting up", nil))
	require.NoError(t, err)

	assert.Equal(t, "10:30:00 starting up\n", string(out))
}

func TestFormat_WarnAndAboveShowLevel(t *testing.T) {
	f := &Formatter{NoColors: true, DisableTimestamp: true}

	out, err := f.Format(entryAt(logrus.WarnLevel, "low disk space", nil))
	require.NoError(t, err)
	assert.Equal(t, "[WARN] low disk space\n", string(out))

	out, err = f.Format(entryAt(logrus.ErrorLevel, "boom", nil))
	require.NoError(t, err)
	assert.Equal(t, "[ERRO] boom\n", string(out))
}

func TestFormat_ShowAllLevels(t *testing.T) {
	f := &Formatter{NoColors: true, DisableTimestamp: true, ShowAllLevels: true}

	out, err := f.Format(entryAt(logrus.DebugLevel, "details", nil))
	require.NoError(t, err)
	assert.Equal(t, "[DEBU] details\n", string(out))
}

func TestFormat_OrderedFieldsFirstThenAlphabetical(t *testing.T) {
	f := &Formatter{
		NoColors:               true,
		DisableTimestamp:       true,
		FieldsDisplayWithOrder: []string{"distro", "manager"},
	}

	out, err := f.Format(entryAt(logrus.InfoLevel, "installing", logrus.Fields{
		"zeta":    1,
		"manager": "apt",
		"alpha":   2,
		"distro":  "debian",
	}))
	require.NoError(t, err)

	assert.Equal(t, "[distro:debian] | [manager:apt] | [alpha:2] | [zeta:1] installing\n", string(out))
}

func TestFormat_ColorsWrapLevel(t *testing.T) {
	f := &Formatter{DisableTimestamp: true}

	out, err := f.Format(entryAt(logrus.WarnLevel, "careful", nil))
	require.NoError(t, err)

	s := string(out)
	assert.True(t, strings.HasPrefix(s, "\x1b[33m[WARN]\x1b[0m "), "got %q", s)
}

func TestFormat_CustomSeparator(t *testing.T) {
	f := &Formatter{
		NoColors:         true,
		DisableTimestamp: true,
		FieldSeparator:   ", ",
	}

	out, err := f.Format(entryAt(logrus.InfoLevel, "msg", logrus.Fields{"a": 1, "b": 2}))
	require.NoError(t, err)
	assert.Equal(t, "[a:1], [b:2] msg\n", string(out))
}
