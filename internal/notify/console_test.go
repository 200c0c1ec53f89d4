package notify

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/GoArmGo/CuratAI/internal/core/ports"
	"github.com/GoArmGo/CuratAI/internal/logger"
)

func TestConsole_Prefixes(t *testing.T) {
	var buf bytes.Buffer
	c := NewConsole(&buf, logger.Discard())

	c.Notify(ports.LevelSuccess, "Project created")
	c.Notify(ports.LevelError, "Project name is required")
	c.Notify(ports.LevelInfo, "Uploading")

	assert.Equal(t, "✓ Project created\n✗ Project name is required\n· Uploading\n", buf.String())
}

func TestRecorder_FiltersByLevel(t *testing.T) {
	var r Recorder
	r.Notify(ports.LevelError, "a")
	r.Notify(ports.LevelInfo, "b")
	r.Notify(ports.LevelError, "c")

	assert.Equal(t, []string{"a", "c"}, r.Messages(ports.LevelError))
	assert.Len(t, r.Entries(), 3)
}
