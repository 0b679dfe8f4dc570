// Command appsync is a small client for an app services backend. It
// logs users in and out, manages API keys and subscription sets, and
// watches connectivity and authentication changes.
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/alexjbarnes/appsync/appsync"
	"github.com/alexjbarnes/appsync/internal/config"
	"github.com/alexjbarnes/appsync/internal/logging"
	"github.com/alexjbarnes/appsync/netstate"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

var Version = "dev"

const usage = `usage: appsync <command> [flags]

commands:
  login         log in and make the user current
  logout        log out the current user (--all for every user)
  users         list known users
  apikey        create|list|get|delete|enable|disable API keys
  refresh-data  refresh and print the current user's custom data
  call          call a server function: call NAME [JSON-ARG...]
  subs          list|add|remove subscriptions of a realm
  probe         check connectivity once
  watch         print authentication and connectivity changes
  version       print the version
`

func main() {
	if err := run(os.Args[1:], os.Stdout); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return
		}

		if errors.Is(err, errUsage) {
			fmt.Fprint(os.Stderr, usage)
			os.Exit(2)
		}

		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

var errUsage = errors.New("usage")

// env bundles what every command needs.
type env struct {
	cfg    *config.Config
	logger *slog.Logger
	app    *appsync.App
	obs    *netstate.Observer
	out    io.Writer
}

type command func(ctx context.Context, e *env, args []string) error

var commands = map[string]command{
	"login":        runLogin,
	"logout":       runLogout,
	"users":        runUsers,
	"apikey":       runAPIKey,
	"refresh-data": runRefreshData,
	"call":         runCall,
	"subs":         runSubs,
	"probe":        runProbe,
	"watch":        runWatch,
}

func run(args []string, out io.Writer) error {
	if len(args) == 0 {
		return errUsage
	}

	if args[0] == "version" || args[0] == "--version" {
		fmt.Fprintln(out, Version)
		return nil
	}

	cmd, ok := commands[args[0]]
	if !ok {
		return errUsage
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	logger := logging.NewLogger(cfg.Environment, cfg.LogLevel)
	logger.Debug("appsync starting", slog.String("version", Version), slog.String("command", args[0]))

	key, err := cfg.MetadataKeyBytes()
	if err != nil {
		return err
	}

	obs := netstate.New()

	app, err := appsync.New(appsync.Config{
		AppID:             cfg.AppID,
		BaseURL:           cfg.BaseURL,
		StateDir:          cfg.StateDir,
		MetadataKey:       key,
		HTTPTimeout:       cfg.HTTPTimeout,
		ReconnectDebounce: cfg.ReconnectDebounce,
		SyncProtocols:     cfg.SyncProtocols,
		MaxMessageBytes:   cfg.MaxMessageBytes,
		Logger:            logger,
	}, appsync.WithNetworkObserver(obs))
	if err != nil {
		return fmt.Errorf("creating app: %w", err)
	}
	defer app.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	return cmd(ctx, &env{cfg: cfg, logger: logger, app: app, obs: obs, out: out}, args[1:])
}

func printYAML(out io.Writer, v any) error {
	enc := yaml.NewEncoder(out)
	enc.SetIndent(2)

	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("encoding output: %w", err)
	}

	return enc.Close()
}

func (e *env) currentUser() (*appsync.User, error) {
	u := e.app.CurrentUser()
	if u == nil {
		return nil, fmt.Errorf("%w: run appsync login first", appsync.ErrNotLoggedIn)
	}

	return u, nil
}
