package logger

import (
	"context"
	"fmt"
	"log/slog"
	"time"
)

const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorPurple = "\033[35m"
	colorWhite  = "\033[37m"
)

type LogType string

const (
	TypeService LogType = "SVC"
	TypeDB      LogType = "DB"
	TypeHTTP    LogType = "HTTP"
	TypeSystem  LogType = "SYS"
	TypeError   LogType = "ERR"
)

// CustomHandler renders slog records as colored single-line console
// output with a type discriminator taken from the "type" attribute.
type CustomHandler struct {
	opts      *slog.HandlerOptions
	service   string
	startTime time.Time
	attrs     []slog.Attr
	groups    []string
}

func NewHandler(service string) *CustomHandler {
	return &CustomHandler{
		opts:      &slog.HandlerOptions{Level: slog.LevelDebug},
		service:   service,
		startTime: time.Now(),
		attrs:     make([]slog.Attr, 0),
		groups:    make([]string, 0),
	}
}

// SetLevel raises or lowers the minimum level after construction, so
// the handler can be installed before the config file is read.
func (h *CustomHandler) SetLevel(level slog.Level) {
	h.opts.Level = level
}

func (h *CustomHandler) Enabled(_ context.Context, level slog.Level) bool {
	return level >= h.opts.Level.Level()
}

func (h *CustomHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &CustomHandler{
		opts:      h.opts,
		service:   h.service,
		startTime: h.startTime,
		attrs:     append(h.attrs, attrs...),
		groups:    h.groups,
	}
}

func (h *CustomHandler) WithGroup(name string) slog.Handler {
	return &CustomHandler{
		opts:      h.opts,
		service:   h.service,
		startTime: h.startTime,
		attrs:     h.attrs,
		groups:    append(h.groups, name),
	}
}

func (h *CustomHandler) Handle(_ context.Context, r slog.Record) error {
	timestamp := time.Now().Format("15:04:05")

	var levelColor, levelText string
	switch r.Level {
	case slog.LevelDebug:
		levelColor = colorPurple
		levelText = "DEBUG"
	case slog.LevelInfo:
		levelColor = colorGreen
		levelText = "INFO"
	case slog.LevelWarn:
		levelColor = colorYellow
		levelText = "WARN"
	case slog.LevelError:
		levelColor = colorRed
		levelText = "ERROR"
	}

	logType := getLogType(&r)

	message := r.Message
	if r.Level == slog.LevelError {
		if details := getErrorDetails(&r); details != "" {
			message = fmt.Sprintf("%s: %s", message, details)
		}
	}

	var attrsStr string
	appendAttr := func(a slog.Attr) {
		if !isInternalAttr(a.Key) {
			attrsStr += fmt.Sprintf(" %s=%v", a.Key, a.Value)
		}
	}
	for _, attr := range h.attrs {
		appendAttr(attr)
	}
	r.Attrs(func(a slog.Attr) bool {
		appendAttr(a)
		return true
	})

	fmt.Printf("%s[%s] [%s] [%s%s%s] [%s] %s%s%s\n",
		colorWhite,
		h.service,
		timestamp,
		levelColor,
		levelText,
		colorWhite,
		logType,
		message,
		attrsStr,
		colorReset,
	)

	return nil
}

func getLogType(r *slog.Record) LogType {
	var logType LogType = TypeSystem
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "type" {
			switch a.Value.String() {
			case "svc":
				logType = TypeService
			case "db":
				logType = TypeDB
			case "http":
				logType = TypeHTTP
			case "error":
				logType = TypeError
			}
			return false
		}
		return true
	})
	return logType
}

func getErrorDetails(r *slog.Record) string {
	var details string
	r.Attrs(func(a slog.Attr) bool {
		if a.Key == "error" {
			details = a.Value.String()
			return false
		}
		return true
	})
	return details
}

func isInternalAttr(key string) bool {
	internal := []string{"type", "error"}
	for _, k := range internal {
		if k == key {
			return true
		}
	}
	return false
}
