package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/google/uuid"
	slackapi "github.com/slack-go/slack"

	"github.com/jonny/hookbridge/internal/adapter/inbound/eventstream"
	"github.com/jonny/hookbridge/internal/adapter/inbound/hookio"
	slacknotifier "github.com/jonny/hookbridge/internal/adapter/outbound/notification/slack"
	"github.com/jonny/hookbridge/internal/adapter/outbound/persistence/noop"
	"github.com/jonny/hookbridge/internal/adapter/outbound/persistence/sqlite"
	"github.com/jonny/hookbridge/internal/config"
	"github.com/jonny/hookbridge/internal/domain/port/outbound"
	"github.com/jonny/hookbridge/internal/domain/service"
	"github.com/jonny/hookbridge/pkg/exitcode"
	"github.com/jonny/hookbridge/pkg/health"
	"github.com/jonny/hookbridge/pkg/version"
)

func main() {
	configPath := flag.String("config", "", "path to an optional YAML config file")
	printVersion := flag.Bool("version", false, "print version and exit")
	flag.Parse()

	if *printVersion {
		fmt.Println(version.String())
		os.Exit(exitcode.OK)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	err := run(ctx, *configPath, os.Stdin, os.Stdout)
	stop()

	code := exitcode.CodeOf(err)
	if code != exitcode.OK {
		fmt.Fprintf(os.Stderr, "hookbridge: %v\n", err)
	}
	os.Exit(code)
}

// run handles exactly one request. Errors carry their exit code; a nil error
// means either a decision was written to stdout or the request timed out.
func run(ctx context.Context, configPath string, stdin io.Reader, stdout io.Writer) error {
	cfg, err := config.Load(configPath)
	if err != nil {
		return exitcode.Config(err)
	}

	logger, closeLog, err := buildLogger(cfg.Logging)
	if err != nil {
		return exitcode.Config(err)
	}
	defer closeLog()

	invocationID := uuid.NewString()
	logger = logger.With("invocation", invocationID)

	req, err := hookio.ReadRequest(stdin)
	if err != nil {
		return exitcode.BadRequest(err)
	}
	logger = logger.With("tool", req.ToolName, "session", req.SessionID)
	logger.Debug("request received", "version", version.Version)

	audits, store, err := openAudits(cfg.Audit, logger)
	if err != nil {
		return exitcode.Config(err)
	}
	if store != nil {
		defer store.Close()
	}

	api := slackapi.New(cfg.Slack.BotToken, slackapi.OptionAppLevelToken(cfg.Slack.AppToken))

	// --- Preflight ---
	var botUserID string
	checker := health.NewChecker()
	checker.Register("slack", func(ctx context.Context) error {
		resp, err := api.AuthTestContext(ctx)
		if err != nil {
			return err
		}
		botUserID = resp.UserID
		return nil
	})
	if store != nil {
		checker.Register("audit", store.Ping)
	}
	preflightCtx, cancel := context.WithTimeout(ctx, cfg.Interaction.HandshakeTimeout)
	result := checker.Check(preflightCtx)
	cancel()
	if err := result.Err(); err != nil {
		logger.Warn("preflight failed, deferring to the terminal prompt", "details", result.Details)
		return exitcode.Unavailable(err)
	}

	// --- Event stream ---
	session, err := eventstream.Open(ctx, api, eventstream.Config{
		HandshakeTimeout: cfg.Interaction.HandshakeTimeout,
		BotUserID:        botUserID,
	}, logger)
	if err != nil {
		var ce *eventstream.ConnectionError
		if errors.As(err, &ce) {
			logger.Warn("socket mode unavailable, deferring to the terminal prompt", "op", ce.Op, "error", ce.Err)
		}
		return exitcode.Unavailable(err)
	}
	defer session.Close()

	// --- Domain services ---
	gateway := slacknotifier.NewGateway(api, cfg.Slack.ChannelID, logger)
	matcher := service.NewMatcher(session, logger)
	flow := service.NewController(gateway, matcher, logger)
	bridge := service.NewBridge(flow, session, audits, service.BridgeConfig{
		Budget:       cfg.Interaction.Timeout,
		InvocationID: invocationID,
	}, logger)

	outcome, err := bridge.Handle(ctx, req)
	if err != nil {
		logger.Error("request failed", "error", err)
	}
	if outcome.TimedOut {
		logger.Info("no response within budget, deferring to the terminal prompt", "budget", cfg.Interaction.Timeout)
		return nil
	}

	if err := hookio.WriteDecision(stdout, req, outcome.Decision); err != nil {
		return err
	}
	logger.Info("decision written", "behavior", outcome.Decision.Behavior, "decided_by", outcome.Decision.DecidedBy)
	return nil
}

// openAudits returns the SQLite audit repository, or a logging no-op when no
// path is configured. The store is nil in the latter case.
func openAudits(cfg config.AuditConfig, logger *slog.Logger) (outbound.AuditRepository, *sqlite.Store, error) {
	if cfg.Path == "" {
		return noop.NewAuditRepo(logger), nil, nil
	}
	store, err := sqlite.NewStore(sqlite.Config{
		Path:              cfg.Path,
		MaxOpenConns:      1,
		PragmaJournalMode: cfg.PragmaJournalMode,
		PragmaBusyTimeout: cfg.PragmaBusyTimeout,
	})
	if err != nil {
		return nil, nil, fmt.Errorf("opening audit store: %w", err)
	}
	return sqlite.NewAuditRepo(store), store, nil
}

// buildLogger constructs a slog.Logger based on config. Logs never go to
// stdout, which carries the decision.
func buildLogger(cfg config.LoggingConfig) (*slog.Logger, func(), error) {
	var level slog.Level
	switch cfg.Level {
	case "debug":
		level = slog.LevelDebug
	case "warn", "warning":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	var w io.Writer = os.Stderr
	closeFn := func() {}
	if cfg.Output != "" && cfg.Output != "stderr" {
		f, err := os.OpenFile(cfg.Output, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
		if err != nil {
			return nil, nil, fmt.Errorf("opening log file: %w", err)
		}
		w = f
		closeFn = func() { _ = f.Close() }
	}

	opts := &slog.HandlerOptions{Level: level}
	if cfg.Format == "text" {
		return slog.New(slog.NewTextHandler(w, opts)), closeFn, nil
	}
	return slog.New(slog.NewJSONHandler(w, opts)), closeFn, nil
}
