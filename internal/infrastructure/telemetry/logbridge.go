package telemetry

import (
	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.uber.org/zap/zapcore"
)

// NewZapCore returns a zapcore.Core forwarding entries at or above minLevel to
// the OTLP log pipeline. Tee it with the stdout core through logger.New. When
// log export is off the core is a no-op.
func NewZapCore(p *Providers, minLevel zapcore.Level) zapcore.Core {
	if p == nil || p.logs == nil {
		return zapcore.NewNopCore()
	}
	core := otelzap.NewCore(p.cfg.ServiceName, otelzap.WithLoggerProvider(p.logs))
	if minLevel <= zapcore.DebugLevel {
		return core
	}
	return &minLevelCore{Core: core, min: minLevel}
}

// minLevelCore drops entries below min; otelzap has no level of its own.
type minLevelCore struct {
	zapcore.Core
	min zapcore.Level
}

func (c *minLevelCore) Enabled(lvl zapcore.Level) bool {
	return lvl >= c.min && c.Core.Enabled(lvl)
}

func (c *minLevelCore) Check(entry zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if !c.Enabled(entry.Level) {
		return ce
	}
	return c.Core.Check(entry, ce)
}

func (c *minLevelCore) With(fields []zapcore.Field) zapcore.Core {
	return &minLevelCore{Core: c.Core.With(fields), min: c.min}
}
