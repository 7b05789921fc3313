// RobotCLI is a natural-language file assistant for the terminal.
//
// It resolves free-form requests ("tidy up my downloads folder",
// "how's the CPU doing?") into safe, validated file and system
// operations confined to an allow-listed directory subtree. Deletion
// only ever moves entries to the trash. Configuration is loaded from a
// YAML file discovered automatically (see [config.DefaultSearchPaths]);
// the OpenRouter API key comes from OPENROUTER_API_KEY or a .env file.
//
// Usage:
//
//	robotcli                 Start the interactive session
//	robotcli start           Same as above, explicitly
//	robotcli models          List models available on the configured endpoint
//	robotcli version         Print version and build information
//	robotcli -o json version Output version information as JSON
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/robotcli/robotcli/internal/buildinfo"
	"github.com/robotcli/robotcli/internal/config"
	"github.com/robotcli/robotcli/internal/executor"
	"github.com/robotcli/robotcli/internal/fileops"
	"github.com/robotcli/robotcli/internal/guard"
	"github.com/robotcli/robotcli/internal/llm"
	"github.com/robotcli/robotcli/internal/paths"
	"github.com/robotcli/robotcli/internal/resolver"
	"github.com/robotcli/robotcli/internal/session"
	"github.com/robotcli/robotcli/internal/sysinfo"
)

// main is intentionally minimal. It constructs the OS-level environment
// (context, stdio, argv) and delegates immediately to [run] so the full
// startup-to-shutdown lifecycle can be driven from tests.
func main() {
	ctx := context.Background()

	if err := run(ctx, os.Stdin, os.Stdout, os.Stderr, os.Args[1:]); err != nil {
		fmt.Fprintf(os.Stderr, "%s\n", err)
		os.Exit(1)
	}
}

// run is the real entry point. All OS-level dependencies are injected:
// stdin feeds the interactive session, stdout receives program output
// and structured logs, stderr receives fatal errors (printed by main),
// and args is os.Args[1:].
//
// run returns nil on a clean exit and a non-nil error for any failure.
func run(ctx context.Context, stdin io.Reader, stdout, stderr io.Writer, args []string) error {
	// Parse arguments by hand. The flag package relies on package-level
	// globals (flag.CommandLine), which makes it impossible to call
	// run() concurrently from tests. The argument surface is small
	// enough that manual parsing is clearer than a CLI framework.
	var configPath string
	var outputFmt string // "text" (default) or "json"
	var command string

	for i := 0; i < len(args); i++ {
		switch {
		case args[i] == "-config" && i+1 < len(args):
			configPath = args[i+1]
			i++ // skip the value
		case strings.HasPrefix(args[i], "-config="):
			configPath = strings.TrimPrefix(args[i], "-config=")
		case (args[i] == "-o" || args[i] == "--output") && i+1 < len(args):
			outputFmt = args[i+1]
			i++
		case strings.HasPrefix(args[i], "-o="):
			outputFmt = strings.TrimPrefix(args[i], "-o=")
		case strings.HasPrefix(args[i], "--output="):
			outputFmt = strings.TrimPrefix(args[i], "--output=")
		case args[i] == "-h" || args[i] == "-help" || args[i] == "--help":
			return printUsage(stdout)
		case !strings.HasPrefix(args[i], "-") && command == "":
			command = args[i]
		default:
			return fmt.Errorf("unknown flag: %s", args[i])
		}
	}

	if outputFmt == "" {
		outputFmt = "text"
	}
	if outputFmt != "text" && outputFmt != "json" {
		return fmt.Errorf("unknown output format: %q (expected text or json)", outputFmt)
	}

	switch command {
	case "", "start":
		return runStart(ctx, stdin, stdout, configPath)
	case "models":
		return runModels(ctx, stdout, configPath)
	case "version":
		return runVersion(stdout, outputFmt)
	case "help":
		return printUsage(stdout)
	default:
		return fmt.Errorf("unknown command: %s", command)
	}
}

// runStart boots the interactive session: config, scope, reasoning
// client, and the session controller, then blocks until the user exits
// or a shutdown signal arrives.
func runStart(ctx context.Context, stdin io.Reader, stdout io.Writer, configPath string) error {
	cfg, cfgPath, err := loadConfig(configPath)
	if err != nil {
		return err
	}

	logger := newLogger(stdout, cfg.LogLevel)
	if cfgPath != "" {
		logger.Debug("config loaded", "path", cfgPath)
	}

	if cfg.OpenRouter.APIKey == "" {
		return fmt.Errorf("no API key: set OPENROUTER_API_KEY (a .env file works) or openrouter.api_key in config")
	}

	// The scope root is the one startup check that is allowed to be
	// fatal. Everything after this point degrades per-turn instead.
	root := cfg.Scope.Root
	if root == "" {
		root = "~"
	}
	scope, err := paths.New(root)
	if err != nil {
		return fmt.Errorf("initialize scope: %w", err)
	}
	if err := scope.Verify(); err != nil {
		return fmt.Errorf("scope root unusable: %w", err)
	}
	logger.Info("session starting", "version", buildinfo.Version, "scope", scope.Root(), "model", cfg.OpenRouter.Model)

	client := llm.NewOpenRouterClient(cfg.OpenRouter.BaseURL, cfg.OpenRouter.APIKey, logger)
	collector := sysinfo.NewCollector()

	// One snapshot up front gives the resolver a host context line
	// without paying the sampling cost on every turn. Health requests
	// always collect fresh.
	var sysContext string
	if snap, err := collector.Collect(ctx); err == nil {
		sysContext = snap.Summary()
	} else {
		logger.Warn("startup snapshot failed", "error", err)
	}

	ctrl := session.New(session.Options{
		Input:         stdin,
		Output:        stdout,
		Resolver:      resolver.New(client, cfg.OpenRouter.Model, scope, logger),
		Gate:          guard.New(scope),
		Executor:      executor.New(logger, fileops.New(), collector),
		Logger:        logger,
		CloseDelay:    cfg.CloseDelay(),
		HistoryWindow: cfg.HistoryWindow(),
		SysContext:    sysContext,
	})

	// SIGINT/SIGTERM cancel the session context; the controller then
	// falls through its Closing path.
	ctx, cancel := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	if err := ctrl.Run(ctx); err != nil && ctx.Err() == nil {
		return fmt.Errorf("session: %w", err)
	}
	logger.Info("session ended")
	return nil
}

// runModels lists the model identifiers the configured endpoint offers.
func runModels(ctx context.Context, stdout io.Writer, configPath string) error {
	cfg, _, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if cfg.OpenRouter.APIKey == "" {
		return fmt.Errorf("no API key: set OPENROUTER_API_KEY or openrouter.api_key in config")
	}

	logger := newLogger(stdout, "warn")
	client := llm.NewOpenRouterClient(cfg.OpenRouter.BaseURL, cfg.OpenRouter.APIKey, logger)

	models, err := client.ListModels(ctx)
	if err != nil {
		return fmt.Errorf("list models: %w", err)
	}
	for _, m := range models {
		marker := " "
		if m == cfg.OpenRouter.Model {
			marker = "*"
		}
		fmt.Fprintf(stdout, "%s %s\n", marker, m)
	}
	return nil
}

// runVersion prints build metadata in the requested output format.
func runVersion(w io.Writer, outputFmt string) error {
	info := buildinfo.Info()
	if outputFmt == "json" {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	fmt.Fprintln(w, buildinfo.String())
	for _, k := range []string{"version", "git_commit", "build_time", "go_version", "os", "arch"} {
		if v, ok := info[k]; ok {
			fmt.Fprintf(w, "  %-12s %s\n", k+":", v)
		}
	}
	return nil
}

// printUsage writes the top-level help text to w.
func printUsage(w io.Writer) error {
	fmt.Fprintln(w, "RobotCLI - natural-language file assistant")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage: robotcli [flags] [command]")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  start     Start the interactive session (default)")
	fmt.Fprintln(w, "  models    List models on the configured endpoint")
	fmt.Fprintln(w, "  version   Show version information")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -config <path>    Path to config file (default: auto-discover)")
	fmt.Fprintln(w, "  -o, --output fmt  Output format: text (default) or json")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Config search order:")
	fmt.Fprintln(w, "  ./robotcli.yaml, ~/.config/robotcli/config.yaml, /etc/robotcli/config.yaml")
	return nil
}

// newLogger creates the structured logger. All log output goes through
// slog; levels below the configured threshold (including the custom
// trace level used for wire payloads) are dropped.
func newLogger(w io.Writer, levelName string) *slog.Logger {
	level := slog.LevelInfo
	if levelName != "" {
		if parsed, err := config.ParseLogLevel(levelName); err == nil {
			level = parsed
		}
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{
		Level:       level,
		ReplaceAttr: config.ReplaceLogLevelNames,
	}))
}

// loadConfig locates and parses the YAML configuration file. A missing
// file is not an error; defaults plus environment cover everything
// except the API key.
func loadConfig(explicit string) (*config.Config, string, error) {
	cfgPath, err := config.FindConfig(explicit)
	if err != nil {
		return nil, "", err
	}
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return nil, cfgPath, fmt.Errorf("load config %s: %w", cfgPath, err)
	}
	return cfg, cfgPath, nil
}
