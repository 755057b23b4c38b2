package logger

import (
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/charmbracelet/log"

	"go-retreat-store/internal/config"
)

// Setup builds the process logger from config and installs it as the slog default
func Setup(cfg *config.Log) *slog.Logger {
	return SetupWriter(os.Stdout, cfg)
}

func SetupWriter(w io.Writer, cfg *config.Log) *slog.Logger {
	formatters := map[string]log.Formatter{
		"json":   log.JSONFormatter,
		"text":   log.TextFormatter,
		"logfmt": log.LogfmtFormatter,
	}
	formatter := log.TextFormatter
	if f, ok := formatters[cfg.Format]; ok {
		formatter = f
	}

	handler := log.NewWithOptions(w, log.Options{
		ReportTimestamp: true,
		TimeFormat:      time.DateTime,
		Level:           log.Level(cfg.Level),
		Prefix:          "[retreat]",
		Formatter:       formatter,
	})

	logger := slog.New(handler)
	slog.SetDefault(logger)
	return logger
}
