package logger

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"

	"go-retreat-store/internal/config"
)

func TestSetupWriterJSON(t *testing.T) {
	var buf bytes.Buffer
	log := SetupWriter(&buf, &config.Log{Level: 0, Format: "json"})

	log.Debug("hidden")
	log.Info("purchase completed", "quantity", 2)

	out := buf.String()
	assert.NotContains(t, out, "hidden")
	assert.Contains(t, out, `"msg":"purchase completed"`)
	assert.Contains(t, out, `"quantity":2`)
}
