package logger

import (
	"bytes"
	"os"
	"regexp"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withCapture(t *testing.T, format, level string) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	SetOutput(&buf)
	SetFormat(format)
	SetLevel(level)
	t.Cleanup(func() {
		SetOutput(os.Stderr)
		SetFormat("text")
		SetLevel(Info)
	})
	return &buf
}

func emitAll() {
	Tracef("trace %s", "example.com")
	Debugf("debug %s", "example.com")
	Infof("info %s", "example.com")
	Warnf("warning %s", "example.com")
	Errorf("error %s", "example.com")
}

func TestTextFormatLevelFiltering(t *testing.T) {
	buf := withCapture(t, "text", Warning)
	emitAll()

	lines := splitNonEmpty(buf.String())
	require.Len(t, lines, 2)
	assert.Regexp(t, regexp.MustCompile(`severity=WARNING message="warning example.com"`), lines[0])
	assert.Regexp(t, regexp.MustCompile(`severity=ERROR message="error example.com"`), lines[1])
}

func TestJSONFormatLevelFiltering(t *testing.T) {
	buf := withCapture(t, "json", Info)
	emitAll()

	lines := splitNonEmpty(buf.String())
	require.Len(t, lines, 3)
	assert.Regexp(t, regexp.MustCompile(`^\{"timestamp":\{"seconds":\d+,"nanos":\d+\},"severity":"INFO","message":"info example.com"\}$`), lines[0])
}

func TestLevelOffSuppressesEverything(t *testing.T) {
	buf := withCapture(t, "text", Off)
	emitAll()
	assert.Empty(t, buf.String())
}

func TestTraceVisibleOnlyAtTraceLevel(t *testing.T) {
	buf := withCapture(t, "text", Trace)
	emitAll()
	assert.Len(t, splitNonEmpty(buf.String()), 5)
}

func splitNonEmpty(s string) []string {
	var out []string
	for _, line := range regexp.MustCompile("\n").Split(s, -1) {
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}
