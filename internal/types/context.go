package types

import (
	"cloud.google.com/go/civil"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// RunContext carries what every stage needs from the outside world: where
// to log and which calendar day counts as "today". Stages never read the
// wall clock themselves.
type RunContext struct {
	Logger *zap.Logger
	Today  civil.Date
	RunID  string
}

// NewRunContext creates a RunContext with a fresh run id attached to the
// logger. A nil logger is replaced by a no-op logger.
func NewRunContext(logger *zap.Logger, today civil.Date) RunContext {
	if logger == nil {
		logger = zap.NewNop()
	}
	id := uuid.NewString()
	return RunContext{
		Logger: logger.With(zap.String("run_id", id)),
		Today:  today,
		RunID:  id,
	}
}
