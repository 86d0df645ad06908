package observability

import (
	"context"
	"log/slog"

	"github.com/aretw0/tgadmin/pkg/domain"
)

// LoggingHooks returns hooks that log every lifecycle event.
func LoggingHooks(logger *slog.Logger) domain.LifecycleHooks {
	return domain.LifecycleHooks{
		OnEvent: func(ctx context.Context, e *domain.Event) {
			logger.DebugContext(ctx, "event_received",
				"chat_id", e.ChatID,
				"sender_id", e.SenderID,
				"kind", e.Kind,
			)
		},
		OnTransition: func(ctx context.Context, e *domain.TransitionEvent) {
			logger.InfoContext(ctx, "transition",
				"chat_id", e.ChatID,
				"trigger", e.Trigger,
				"from", e.From,
				"to", e.To,
			)
		},
		OnMutation: func(ctx context.Context, e *domain.MutationEvent) {
			if e.Err != nil {
				logger.InfoContext(ctx, "mutation_failed",
					"chat_id", e.ChatID,
					"kind", e.Kind.String(),
					"target", e.Target,
					"err", e.Err,
				)
				return
			}
			logger.InfoContext(ctx, "mutation_applied",
				"chat_id", e.ChatID,
				"kind", e.Kind.String(),
				"target", e.Target,
			)
		},
		OnMenu: func(ctx context.Context, e *domain.MenuEvent) {
			logger.DebugContext(ctx, "menu_rendered",
				"chat_id", e.ChatID,
				"address", e.Address,
				"fallback", e.Fallback,
			)
		},
		OnDenied: func(ctx context.Context, e *domain.AccessEvent) {
			logger.InfoContext(ctx, "access_denied",
				"chat_id", e.ChatID,
				"sender_id", e.SenderID,
			)
		},
	}
}

// Merge returns hooks that call every non-nil callback of each input, in order.
func Merge(all ...domain.LifecycleHooks) domain.LifecycleHooks {
	var out domain.LifecycleHooks
	for _, h := range all {
		out.OnEvent = chain(out.OnEvent, h.OnEvent)
		out.OnTransition = chain(out.OnTransition, h.OnTransition)
		out.OnMutation = chain(out.OnMutation, h.OnMutation)
		out.OnMenu = chain(out.OnMenu, h.OnMenu)
		out.OnDenied = chain(out.OnDenied, h.OnDenied)
	}
	return out
}

func chain[E any](first, second func(context.Context, *E)) func(context.Context, *E) {
	switch {
	case first == nil:
		return second
	case second == nil:
		return first
	}
	return func(ctx context.Context, e *E) {
		first(ctx, e)
		second(ctx, e)
	}
}
