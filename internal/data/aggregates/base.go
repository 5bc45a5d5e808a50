package aggregates

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/response-validator/internal/platform/logger"
)

type BaseDeps struct {
	DB     *gorm.DB
	Log    *logger.Logger
	Runner TxRunner
	Hooks  Hooks
}

func (d BaseDeps) withDefaults() BaseDeps {
	if d.Runner == nil {
		d.Runner = NewGormTxRunner(d.DB)
	}
	if d.Hooks == nil {
		d.Hooks = noopHooks{}
	}
	if d.Log == nil {
		d.Log = logger.Nop()
	}
	return d
}

func executeWrite(ctx context.Context, deps BaseDeps, op string, fn func(tx *gorm.DB) error) error {
	start := time.Now()
	op = strings.TrimSpace(op)
	if op == "" {
		op = "aggregate.write"
	}
	err := deps.Runner.InTx(ctx, fn)
	mapped := MapError(op, err)

	status := "success"
	if err != nil {
		class := Classify(err)
		status = string(class)
		switch class {
		case ClassConflict:
			deps.Hooks.IncConflict(op)
		case ClassRetryable:
			deps.Hooks.IncRetry(op)
		}
		deps.Log.Warn("Aggregate write failed", "op", op, "class", status, "error", err)
	}
	deps.Hooks.ObserveOperation(op, status, time.Since(start))
	return mapped
}
