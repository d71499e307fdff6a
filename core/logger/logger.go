package logger

import (
	"context"
	"errors"
	"io"
	"log"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"

	"github.com/m3rciful/adventbot/core/buildinfo"
	coreconfig "github.com/m3rciful/adventbot/core/config"
)

var (
	initOnce   sync.Once
	shutdownMu sync.Mutex
	shutdown   bool

	writers []*asyncWriter
	closers []io.Closer

	levelVar slog.LevelVar

	debugSampler  = newRatioSampler(1, 50)
	traceOverride bool

	// L is the base logger.
	L *slog.Logger

	// DB logs database connectivity.
	DB *slog.Logger
	// TG logs Telegram transport events.
	TG *slog.Logger
	// MIG logs database migrations.
	MIG *slog.Logger
	// TWire logs Telegram wiring steps.
	TWire *slog.Logger
	// SVCParticipants logs registration and answer flow.
	SVCParticipants *slog.Logger
	// SVCSupport logs support flow.
	SVCSupport *slog.Logger
	// Notify logs admin notifications.
	Notify *slog.Logger
	// Tickets writes the support ticket audit stream. It goes to
	// logging.tickets_file when configured, otherwise to the main sinks.
	Tickets *slog.Logger
)

// Until InitLogger runs every logger writes through slog's default handler,
// which keeps packages usable from tests.
func init() {
	L = slog.Default()
	Tickets = L.With("component", "support.tickets")
	wireComponents()
}

// InitLogger configures the global structured logger. It may be called only once.
func InitLogger(cfg *coreconfig.Config) error {
	var initErr error
	initOnce.Do(func() {
		var lc coreconfig.LoggingConfig
		if cfg != nil {
			lc = cfg.Logging
		}
		levelVar.Set(selectLevel(lc))
		debugSampler.Set(parseDebugSample(lc))
		traceOverride = isTruthy(os.Getenv("TRACE")) || isTruthy(os.Getenv("LOG_TRACE"))

		primary := newAsyncWriter(append([]io.Writer{os.Stdout}, openFiles(lc.Dir, lc.BotFile)...), 64*1024)
		writers = append(writers, primary)
		sinks := []sink{{writer: primary, min: slog.LevelDebug}}
		if files := openFiles(lc.Dir, lc.ErrorsFile); len(files) > 0 {
			errs := newAsyncWriter(files, 16*1024)
			writers = append(writers, errs)
			sinks = append(sinks, sink{writer: errs, min: slog.LevelError})
		}

		L = slog.New(newStructuredHandler(handlerConfig{
			level:    &levelVar,
			sinks:    sinks,
			format:   selectFormat(lc),
			keyOrder: selectKeyOrder(lc),
		}))
		slog.SetDefault(L)

		Tickets = L.With("component", "support.tickets")
		if files := openFiles(lc.Dir, lc.TicketsFile); len(files) > 0 {
			audit := newAsyncWriter(files, 16*1024)
			writers = append(writers, audit)
			Tickets = slog.New(newStructuredHandler(handlerConfig{
				level:  slog.LevelInfo,
				sinks:  []sink{{writer: audit, min: slog.LevelInfo}},
				format: formatJSON,
			})).With("component", "support.tickets")
		}

		wireComponents()
		logStartup(lc)
	})
	return initErr
}

func wireComponents() {
	DB = L.With("component", "db")
	TG = L.With("component", "tg")
	MIG = L.With("component", "db.migrate")
	TWire = L.With("component", "tg.wire")
	SVCParticipants = L.With("component", "service.participants")
	SVCSupport = L.With("component", "service.support")
	Notify = L.With("component", "notify")
}

func logStartup(lc coreconfig.LoggingConfig) {
	L.LogAttrs(context.Background(), slog.LevelInfo, "startup",
		slog.String("component", "app"),
		slog.String("event", "startup"),
		slog.String("go_version", runtime.Version()),
		slog.String("build_version", buildinfo.Version),
		slog.String("build_commit", buildinfo.Commit),
		slog.String("build_time", buildinfo.Date),
		slog.String("cfg_profile", selectProfile(lc)),
	)
}

// Shutdown flushes buffered log output and closes opened sinks.
func Shutdown() error {
	shutdownMu.Lock()
	defer shutdownMu.Unlock()
	if shutdown {
		return nil
	}
	shutdown = true

	var errs []error
	for _, w := range writers {
		if err := w.Flush(); err != nil {
			errs = append(errs, err)
		}
		if err := w.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	for _, c := range closers {
		if err := c.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// openFiles opens dir/name for appending. Failures are reported on the
// standard logger and yield no writer so the bot still starts.
func openFiles(dir, name string) []io.Writer {
	dir, name = strings.TrimSpace(dir), strings.TrimSpace(name)
	if dir == "" || name == "" {
		return nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		log.Printf("logger: failed to create log dir %s: %v", dir, err)
		return nil
	}
	path := filepath.Join(dir, name)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("logger: failed to open log file %s: %v", path, err)
		return nil
	}
	closers = append(closers, f)
	return []io.Writer{f}
}

func selectFormat(lc coreconfig.LoggingConfig) logFormat {
	switch strings.ToLower(strings.TrimSpace(lc.Format)) {
	case "kv", "text", "pretty":
		return formatKV
	case "json":
		return formatJSON
	}
	switch strings.ToLower(lc.Profile) {
	case "debug", "dev":
		return formatKV
	}
	return formatJSON
}

func selectKeyOrder(lc coreconfig.LoggingConfig) []string {
	raw := strings.TrimSpace(lc.KeysOrder)
	var order []string
	if raw != "" && raw != "default" {
		for _, p := range strings.Split(raw, ",") {
			if p = strings.TrimSpace(p); p != "" {
				order = append(order, p)
			}
		}
	}
	if len(order) == 0 {
		return append([]string(nil), defaultKeyOrder...)
	}
	return order
}

func selectLevel(lc coreconfig.LoggingConfig) slog.Level {
	switch strings.ToLower(strings.TrimSpace(lc.Level)) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

func selectProfile(lc coreconfig.LoggingConfig) string {
	if profile := strings.TrimSpace(lc.Profile); profile != "" {
		return strings.ToLower(profile)
	}
	return "prod"
}

func parseDebugSample(lc coreconfig.LoggingConfig) (int, int) {
	if strings.TrimSpace(lc.DebugSample) == "" {
		return 1, 50
	}
	num, den := parseRatioSpec(lc.DebugSample)
	if num <= 0 || den <= 0 {
		return 0, 0
	}
	return num, den
}

func isTruthy(value string) bool {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "on", "yes":
		return true
	}
	return false
}

// LogEvent writes an event-keyed record with the given logger, falling back
// to the context logger and then to L.
func LogEvent(ctx context.Context, logg *slog.Logger, level slog.Level, event string, attrs ...slog.Attr) {
	if logg == nil {
		logg = FromContext(ctx)
	}
	if logg == nil {
		return
	}
	if event != "" {
		attrs = append([]slog.Attr{slog.String("event", event)}, attrs...)
	}
	logg.LogAttrs(orBackground(ctx), level, "", attrs...)
}

// Component constructs a logger scoped to the provided component attribute.
func Component(name string) *slog.Logger {
	if L == nil {
		return nil
	}
	if trimmed := strings.TrimSpace(name); trimmed != "" {
		return L.With("component", trimmed)
	}
	return L
}

// Event logs with component scope resolved automatically.
func Event(ctx context.Context, component string, level slog.Level, event string, attrs ...slog.Attr) {
	LogEvent(ctx, Component(component), level, event, attrs...)
}

// Debug logs a debug-level event for the given component.
func Debug(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelDebug, event, attrs...)
}

// Info logs an info-level event for the given component.
func Info(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelInfo, event, attrs...)
}

// Warn logs a warn-level event for the given component.
func Warn(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelWarn, event, attrs...)
}

// Error logs an error-level event for the given component.
func Error(ctx context.Context, component, event string, attrs ...slog.Attr) {
	Event(ctx, component, slog.LevelError, event, attrs...)
}

// ShouldSampleDebug reports whether debug-level details should be logged for high-volume events.
func ShouldSampleDebug() bool {
	return traceOverride || debugSampler.Allow()
}
