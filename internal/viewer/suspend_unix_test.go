//go:build !windows

package viewer

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kk-code-lab/mdview/internal/logging"
)

func TestResumeAfterStopRunsOnce(t *testing.T) {
	v, scr := newTestViewer(t, "# Title\nbody", Config{})
	var logs bytes.Buffer
	v.logger = logging.New(&logs, logging.LevelDebug, logging.FormatText)

	require.NoError(t, scr.Suspend())
	v.suspended = true

	assert.True(t, v.resumeAfterStop())
	assert.False(t, v.suspended)

	// The SIGCONT that follows the key handler's resume.
	assert.True(t, v.resumeAfterStop())
	assert.Empty(t, logs.String())
	v.draw()
	assert.Equal(t, "# Title", rowText(scr, 0))
}

func TestResumeAfterStopWithoutSuspend(t *testing.T) {
	v, scr := newTestViewer(t, "body", Config{})
	var logs bytes.Buffer
	v.logger = logging.New(&logs, logging.LevelDebug, logging.FormatText)

	assert.True(t, v.resumeAfterStop())
	assert.Empty(t, logs.String())
	v.draw()
	assert.Equal(t, "body", rowText(scr, 0))
}
