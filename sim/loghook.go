package sim

import (
	"log/slog"
)

// A LogHook is a hook that is resonsible for recording information from the
// simulation
type LogHook interface {
	Hook
}

// LogHookBase proovides the common logic for all LogHooks
type LogHookBase struct {
	*slog.Logger
}

// NewLogHook creates a hook that writes every hook invocation to the logger
// at debug level.
func NewLogHook(logger *slog.Logger) LogHook {
	return &debugLogHook{LogHookBase{Logger: logger}}
}

type debugLogHook struct {
	LogHookBase
}

func (h *debugLogHook) Func(ctx HookCtx) {
	where := ""
	if named, ok := ctx.Domain.(Named); ok {
		where = named.Name()
	}

	h.Debug(ctx.Pos.Name,
		"where", where,
		"item", ctx.Item,
	)
}
