// Package log is a thin structured-logging front: action-named entries
// enriched from the fiber request context, written through zap.
package log

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var base = zap.NewNop()

// Init sets up the process logger. Entries go to stdout as JSON, plus
// the given file when one is configured. Returns a flush function for
// main to defer.
func Init(logFile string) (flush func(), err error) {
	cfg := zap.NewProductionConfig()
	cfg.EncoderConfig.TimeKey = "ts"
	cfg.EncoderConfig.EncodeTime = zapcore.RFC3339TimeEncoder
	cfg.OutputPaths = []string{"stdout"}
	if logFile != "" {
		cfg.OutputPaths = append(cfg.OutputPaths, logFile)
	}

	l, err := cfg.Build(zap.WithCaller(false))
	if err != nil {
		return nil, err
	}
	base = l
	return func() { _ = l.Sync() }, nil
}

func with(c *fiber.Ctx, err error, fields map[string]any) []zap.Field {
	out := make([]zap.Field, 0, len(fields)+6)
	if c != nil {
		out = append(out,
			zap.String("ip", c.IP()),
			zap.String("method", c.Method()),
			zap.String("path", c.Path()),
			zap.Int("status", c.Response().StatusCode()),
		)
		if rid, ok := c.Locals("requestid").(string); ok && rid != "" {
			out = append(out, zap.String("req_id", rid))
		}
	}
	if err != nil {
		out = append(out, zap.Error(err))
	}
	for k, v := range fields {
		out = append(out, zap.Any(k, v))
	}
	return out
}

func Info(c *fiber.Ctx, action string, fields map[string]any) {
	base.Info(action, with(c, nil, fields)...)
}

func Security(c *fiber.Ctx, action string, fields map[string]any) {
	base.Warn(action, with(c, nil, fields)...)
}

func Error(c *fiber.Ctx, action string, err error, fields map[string]any) {
	base.Error(action, with(c, err, fields)...)
}
