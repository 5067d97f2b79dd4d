package logger

import (
	"bytes"
	"io"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func reset() {
	SetVerbose(false)
	SetTimestamps(false)
	SetOutput(os.Stderr)
	now = time.Now
}

func TestSetVerbose(t *testing.T) {
	defer reset()

	SetVerbose(false)
	assert.False(t, IsVerbose())

	SetVerbose(true)
	assert.True(t, IsVerbose())

	SetVerbose(false)
	assert.False(t, IsVerbose())
}

func TestDebug_WhenVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Debug("test message %s", "arg")

	assert.Equal(t, "[DEBUG] test message arg\n", buf.String())
}

func TestDebug_WhenNotVerbose(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Debug("test message")
	Info("info message")
	Section("section")

	assert.Empty(t, buf.String())
}

func TestSection(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Section("Query")

	assert.Equal(t, "\n=== Query ===\n", buf.String())
}

func TestInfo(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(true)

	Info("indexed %d pages", 42)

	assert.Equal(t, "[INFO] indexed 42 pages\n", buf.String())
}

func TestWarnAndError_AlwaysWritten(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetVerbose(false)

	Warn("dropped %s", "page_1.png")
	Error("provider failed")

	assert.Equal(t, "[WARN] dropped page_1.png\n[ERROR] provider failed\n", buf.String())
}

func TestTimestamps(t *testing.T) {
	defer reset()

	var buf bytes.Buffer
	SetOutput(&buf)
	SetTimestamps(true)
	now = func() time.Time { return time.Date(2025, 3, 1, 12, 0, 0, 0, time.UTC) }

	Warn("slow provider")

	assert.Equal(t, "2025-03-01T12:00:00Z [WARN] slow provider\n", buf.String())
}

func TestConcurrentAccess(t *testing.T) {
	defer reset()

	SetOutput(io.Discard)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			SetVerbose(true)
			Debug("concurrent %d", i)
			IsVerbose()
			SetVerbose(false)
		}()
	}
	wg.Wait()
}
