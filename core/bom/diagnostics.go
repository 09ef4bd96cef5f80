package bom

import (
	"go.uber.org/zap"

	"bomcost/internal/logging"
)

// Diagnostic is a non-fatal condition found while accumulating cost
type Diagnostic struct {
	ProductUID  UID
	Product     string
	MaterialUID UID
	Material    string
	Message     string
}

// DiagnosticSink receives diagnostics. Reporting never aborts accumulation.
type DiagnosticSink interface {
	Report(d Diagnostic)
}

// DiagnosticFunc adapts a function to DiagnosticSink
type DiagnosticFunc func(d Diagnostic)

// Report calls f(d)
func (f DiagnosticFunc) Report(d Diagnostic) { f(d) }

// LoggerSink writes diagnostics as zap warnings. A nil Logger uses the global logger.
type LoggerSink struct {
	Logger *zap.Logger
}

// Report logs d at warn level
func (s LoggerSink) Report(d Diagnostic) {
	logger := s.Logger
	if logger == nil {
		logger = logging.Logger
	}
	logger.Warn(d.Message,
		zap.String("product", d.Product),
		zap.Stringer("product_uid", d.ProductUID),
		zap.String("material", d.Material),
		zap.Stringer("material_uid", d.MaterialUID),
	)
}
