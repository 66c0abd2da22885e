package logging

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVerbosefRespectsFlag(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Verbosef("hidden %d", 1)
	assert.Empty(t, buf.String())

	New(&buf, true).Verbosef("shown %d", 2)
	assert.Equal(t, "Verbose: shown 2\n", buf.String())
}

func TestErrorfPrefix(t *testing.T) {
	var buf bytes.Buffer
	New(&buf, false).Errorf("[%d/%d] Failed: %s", 1, 2, "a.jpg")
	assert.Equal(t, "Error: [1/2] Failed: a.jpg\n", buf.String())
}

func TestZeroLoggerIsSilent(t *testing.T) {
	var l Logger
	l.Infof("nothing")
	l.Errorf("nothing")
	l.Measure("noop")()
	assert.NoError(t, l.Close())
}

func TestOpenAppendsTimestampedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "actbatch.log")
	var buf bytes.Buffer

	l, err := Open(&buf, false, path)
	require.NoError(t, err)
	l.Infof("Completed: %s", "a.jpg")
	l.Verbosef("not written anywhere")
	l.WithWriter(nil).Errorf("Failed: %s", "b.jpg")
	require.NoError(t, l.Close())
	require.NoError(t, l.Close())

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(string(data)), "\n")
	require.Len(t, lines, 2)
	assert.Regexp(t, `^\d{4}-\d{2}-\d{2} \d{2}:\d{2}:\d{2} \[INFO\] Completed: a.jpg$`, lines[0])
	assert.Regexp(t, `\[ERROR\] Failed: b.jpg$`, lines[1])
	assert.Equal(t, "Completed: a.jpg\n", buf.String())
}

func TestOpenWithoutPath(t *testing.T) {
	l, err := Open(nil, true, "")
	require.NoError(t, err)
	assert.True(t, l.Verbose)
	assert.NoError(t, l.Close())
}
