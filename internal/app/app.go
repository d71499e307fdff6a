// Package app wires configuration, storage, the conversation engine and the
// Telegram runtime into a runnable bot.
package app

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/jmoiron/sqlx"

	"github.com/m3rciful/adventbot/core/bootstrap"
	corecmd "github.com/m3rciful/adventbot/core/cmd"
	"github.com/m3rciful/adventbot/core/logger"
	"github.com/m3rciful/adventbot/core/metrics"
	coretelegram "github.com/m3rciful/adventbot/core/telegram"
	"github.com/m3rciful/adventbot/core/telegram/commands"
	"github.com/m3rciful/adventbot/core/telegram/middleware"
	"github.com/m3rciful/adventbot/core/telegram/router"
	"github.com/m3rciful/adventbot/core/telegram/sender"
	"github.com/m3rciful/adventbot/core/telegram/state"
	"github.com/m3rciful/adventbot/core/telegram/ui"
	"github.com/m3rciful/adventbot/internal/bot"
	"github.com/m3rciful/adventbot/internal/challenge"
	"github.com/m3rciful/adventbot/internal/config"
	"github.com/m3rciful/adventbot/internal/conversation"
	"github.com/m3rciful/adventbot/internal/notify"
	"github.com/m3rciful/adventbot/internal/storage/postgres"
	"github.com/m3rciful/adventbot/migrations"

	tele "gopkg.in/telebot.v4"
)

// Deps are the collaborators New does not build itself.
type Deps struct {
	Bot          *tele.Bot
	Participants conversation.Participants
	Tickets      conversation.Tickets
	// DB is closed on shutdown when set.
	DB *sqlx.DB
	// Now drives the challenge calendar; time.Now by default.
	Now func() time.Time
}

// App is the assembled bot.
type App struct {
	cfg *config.Config
	db  *sqlx.DB

	bot        *tele.Bot
	dispatcher *sender.Dispatcher
	notifier   *notify.Notifier
	handlers   *bot.Handlers
	registry   *coretelegram.Registry
	fallbacks  ui.StaticFallbacks
	locker     *state.Locker

	metricsSrv *metrics.Server
}

// Bootstrap initializes logging and the database, then assembles the App.
// It matches corecmd.Options.Bootstrap.
func Bootstrap(carrier corecmd.ConfigCarrier) (corecmd.TelegramApp, error) {
	cfg, ok := carrier.(*config.Config)
	if !ok {
		return nil, fmt.Errorf("app: unexpected config type %T", carrier)
	}

	res, err := bootstrap.Run(bootstrap.Options{
		Config:     &cfg.Config,
		Database:   cfg.Database,
		Migrations: migrations.FS,
	})
	if err != nil {
		return nil, err
	}

	tgBot, err := coretelegram.BuildBot(&cfg.Config)
	if err != nil {
		_ = res.DB.Close()
		return nil, err
	}

	return New(cfg, Deps{
		Bot:          tgBot,
		Participants: postgres.NewParticipants(res.DB),
		Tickets:      postgres.NewTickets(res.DB),
		DB:           res.DB,
	})
}

// New assembles the App from cfg and deps.
func New(cfg *config.Config, deps Deps) (*App, error) {
	if cfg == nil {
		return nil, fmt.Errorf("app: nil config")
	}
	if deps.Bot == nil {
		return nil, fmt.Errorf("app: telegram bot is required")
	}

	ch := cfg.Challenge
	calendar, err := challenge.NewCalendar(ch.Timezone, ch.FirstDay, ch.LastDay, deps.Now)
	if err != nil {
		return nil, err
	}

	dispatcher := sender.NewDispatcher(sender.Options{MaxRetries: 2})
	notifier := notify.New(deps.Bot, dispatcher, cfg.Telegram.AdminID)

	engine, err := conversation.New(conversation.Options{
		Participants: deps.Participants,
		Tickets:      deps.Tickets,
		Notifier:     notifier,
		Calendar:     calendar,
		MonthLabel:   ch.MonthLabel,
		ChatURL:      ch.ChatURL,
		TasksURL:     ch.TasksURL,
		FAQ:          ch.FAQ,
		Rules:        ch.Rules,
	})
	if err != nil {
		dispatcher.Close()
		return nil, err
	}

	a := &App{
		cfg:        cfg,
		db:         deps.DB,
		bot:        deps.Bot,
		dispatcher: dispatcher,
		notifier:   notifier,
		handlers:   bot.New(engine, deps.Bot),
		fallbacks: ui.StaticFallbacks{
			Media:    conversation.TextTextOnly,
			Callback: conversation.TextUnavailable,
		},
		locker: state.NewLocker(),
	}
	if a.registry, err = a.buildRegistry(); err != nil {
		dispatcher.Close()
		return nil, err
	}
	return a, nil
}

func (a *App) buildRegistry() (*coretelegram.Registry, error) {
	h := a.handlers
	reg := coretelegram.NewRegistry()

	reg.RegisterCommand("/start", commands.Command{Handler: h.Start, Description: "Начать"})
	reg.RegisterCommand("/register", commands.Command{Handler: h.Register, Description: "Регистрация", Hidden: true})
	reg.RegisterCommand("/support", commands.Command{Handler: h.Support, Description: "Написать в поддержку"})
	reg.RegisterCommand("/faq", commands.Command{Handler: h.FAQ, Description: "Частые вопросы", Aliases: []string{"/help"}})
	reg.RegisterCommand("/rules", commands.Command{Handler: h.Rules, Description: "Правила"})
	reg.RegisterCommand("/stats", commands.Command{Handler: h.Stats, Description: "Статистика", AdminOnly: true})

	if err := reg.RegisterText(conversation.MenuSubmit, h.TaskPicker); err != nil {
		return nil, err
	}
	callbacks := map[string]tele.HandlerFunc{
		conversation.KeyStart:  h.Register,
		conversation.KeyTask:   h.SelectTask,
		conversation.KeyCancel: h.Cancel,
		conversation.KeyBack:   h.Back,
	}
	for key, fn := range callbacks {
		if err := reg.RegisterCallback(key, fn); err != nil {
			return nil, err
		}
	}
	reg.SetTextFallback(h.Text)
	reg.SetCallbackNotFound(a.fallbacks.UnknownCallback())
	return reg, nil
}

// TelegramRunOptions implements corecmd.TelegramApp.
func (a *App) TelegramRunOptions() (coretelegram.RunOptions, error) {
	core := &a.cfg.Config

	routes := router.CommandRoutes(a.registry, router.CommandRouteOptions{
		AdminID: core.Telegram.AdminID,
		OnAdminReject: func(c tele.Context) error {
			return c.Send(conversation.TextAdminOnly)
		},
	})
	routes = append(routes, router.TextRoutes(a.registry, router.TextOptions{
		UnknownMedia: a.fallbacks.UnknownMedia(),
	})...)
	routes = append(routes, router.CallbackRoute(a.registry, router.CallbackOptions{}))

	return coretelegram.RunOptions{
		Config:     core,
		Registry:   a.registry,
		Bot:        a.bot,
		Dispatcher: a.dispatcher,
		Middlewares: coretelegram.DefaultMiddlewares(core, coretelegram.MiddlewareOptions{
			Boundary: middleware.BoundaryOptions{
				Apology:       conversation.TextApology,
				OnError:       a.reportError,
				OnUnreachable: a.handlers.Unreachable,
			},
			OnLimited: func(c tele.Context) error {
				if c.Callback() != nil {
					return c.Respond(&tele.CallbackResponse{Text: conversation.TextRateLimited})
				}
				return c.Send(conversation.TextRateLimited)
			},
			Locker: a.locker,
		}),
		Routes:  routes,
		OnStart: a.start,
		OnStop:  a.stop,
	}, nil
}

// reportError forwards a handler failure to the operator.
func (a *App) reportError(c tele.Context, err error) {
	a.notifier.NotifyError(bot.UpdateContext(c), c.Update().ID, err)
}

func (a *App) start(context.Context, coretelegram.Runtime) error {
	m := a.cfg.Metrics
	if m.Listen == "" {
		return nil
	}
	srv, err := metrics.Start(m.Listen, m.Path)
	if err != nil {
		return err
	}
	a.metricsSrv = srv
	return nil
}

func (a *App) stop(ctx context.Context, rt coretelegram.Runtime) error {
	var errs []error
	if err := a.metricsSrv.Shutdown(ctx); err != nil {
		errs = append(errs, fmt.Errorf("metrics shutdown: %w", err))
	}
	if a.db != nil {
		if err := a.db.Close(); err != nil {
			errs = append(errs, fmt.Errorf("db close: %w", err))
		}
	}
	logger.LogEvent(ctx, logger.Component("app"), slog.LevelInfo, "stop",
		slog.Uint64("dispatch_errors", rt.Dispatcher.ErrorCount()),
		slog.Int("locks_held", a.locker.Len()),
	)
	return errors.Join(errs...)
}
