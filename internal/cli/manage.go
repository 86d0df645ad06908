package cli

import (
	"context"
	"errors"
	"io"
	"log/slog"

	"github.com/aretw0/tgadmin/internal/config"
	"github.com/aretw0/tgadmin/internal/controller"
	"github.com/aretw0/tgadmin/internal/dispatch"
	"github.com/aretw0/tgadmin/internal/metrics"
	"github.com/aretw0/tgadmin/internal/presentation/tui"
	"github.com/aretw0/tgadmin/internal/watch"
	httpadapter "github.com/aretw0/tgadmin/pkg/adapters/http"
	"github.com/aretw0/tgadmin/pkg/adapters/memory"
	"github.com/aretw0/tgadmin/pkg/domain"
	"github.com/aretw0/tgadmin/pkg/observability"
	"github.com/aretw0/tgadmin/pkg/session"
	"golang.org/x/sync/errgroup"
)

// ManageOptions contains the configuration for the manage command.
type ManageOptions struct {
	Path    string
	Config  *config.Config
	Version string

	// Banner receives the startup banner; nil prints none.
	Banner io.Writer
	// Logger overrides the logger built from Config.
	Logger *slog.Logger
	// NewTransport overrides the Telegram connection.
	NewTransport TransportFactory
}

// RunManage serves the document over chat until ctx is cancelled.
// Events still queued when ctx ends are handled before it returns.
func RunManage(ctx context.Context, opts ManageOptions) error {
	cfg := opts.Config
	if err := cfg.Validate(opts.NewTransport == nil); err != nil {
		return err
	}

	logger := opts.Logger
	if logger == nil {
		l, closer, err := createLogger(cfg)
		if err != nil {
			return err
		}
		defer closer.Close()
		logger = l
	}

	if opts.Banner != nil {
		tui.PrintBanner(opts.Banner, opts.Version, opts.Path)
	}

	locker, closeLocker, err := createLocker(ctx, cfg, logger)
	if err != nil {
		return err
	}
	defer closeLocker()

	doc, err := createDocument(opts.Path, cfg, locker, logger)
	if err != nil {
		return err
	}
	logger.Info("Document loaded", "path", doc.Path(), "format", doc.Format())
	if opts.Banner != nil {
		printSystemMessage(opts.Banner, "Managing '%s' as %s. Send /admin to the bot.", doc.Path(), doc.Format())
	}

	allow := controller.NewAllowList(cfg.Telegram.AdminList)
	if !allow.Configured() {
		logger.Warn("telegram.admin_list is empty, every chat may edit the document")
	}

	reg := createRegistry()
	hooks := metrics.New(reg).Hooks()
	if logger.Enabled(ctx, slog.LevelDebug) {
		hooks = observability.Merge(hooks, observability.LoggingHooks(logger))
	}

	newTransport := opts.NewTransport
	if newTransport == nil {
		newTransport = telegramTransport
	}
	transport, err := newTransport(cfg, logger)
	if err != nil {
		return err
	}

	sessions := session.NewManager(memory.NewStore(), session.WithLogger(logger))
	ctrl := controller.New(doc, sessions, transport,
		controller.WithAllowList(allow),
		controller.WithLifecycleHooks(hooks),
		controller.WithLogger(logger),
		controller.WithMaxInputSize(cfg.MaxInput),
	)

	// Handlers outlive ctx so that queued events finish during shutdown.
	disp := dispatch.New(context.WithoutCancel(ctx), func(ctx context.Context, ev domain.Event) {
		_ = ctrl.Handle(ctx, ev)
	},
		dispatch.WithQueueSize(cfg.QueueSize),
		dispatch.WithConcurrency(cfg.Concurrency),
		dispatch.WithLogger(logger),
	)

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Watch {
		wopts := []watch.Option{watch.WithLogger(logger), watch.WithDebounce(cfg.WatchDebounce)}
		if opts.Banner != nil {
			wopts = append(wopts, watch.WithOnReload(func() {
				printSystemMessage(opts.Banner, "'%s' changed on disk and was reloaded.", doc.Path())
			}))
		}
		w := watch.New(doc, wopts...)
		g.Go(func() error { return w.Run(gctx) })
	}

	if cfg.Metrics.Addr != "" {
		handler := httpadapter.NewHandler(reg, func(ctx context.Context) (httpadapter.Status, error) {
			chats, err := sessions.List(ctx)
			if err != nil {
				return httpadapter.Status{}, err
			}
			if locker != nil {
				if err := locker.Ping(ctx); err != nil {
					return httpadapter.Status{}, err
				}
			}
			return httpadapter.Status{
				Document: doc.Path(),
				Format:   string(doc.Format()),
				Chats:    len(chats),
				Busy:     disp.Active(),
			}, nil
		})
		g.Go(func() error { return httpadapter.Serve(gctx, cfg.Metrics.Addr, handler, logger) })
	}

	g.Go(func() error {
		logger.Info("Listening for chat updates")
		return transport.Listen(gctx, func(ev domain.Event) {
			if err := disp.Enqueue(ev); err != nil {
				logger.Warn("Event dropped", "chat_id", ev.ChatID, "err", err)
			}
		})
	})

	err = g.Wait()
	disp.Drain()
	if err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	logger.Info("Stopped")
	return nil
}
