package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	tea "charm.land/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/google/uuid"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	serveradapter "github.com/hylla/phaseboard/internal/adapters/server"
	servercommon "github.com/hylla/phaseboard/internal/adapters/server/common"
	"github.com/hylla/phaseboard/internal/adapters/storage/sqlite"
	"github.com/hylla/phaseboard/internal/app"
	"github.com/hylla/phaseboard/internal/board"
	"github.com/hylla/phaseboard/internal/config"
	"github.com/hylla/phaseboard/internal/platform"
	"github.com/hylla/phaseboard/internal/tui"
)

// version stores a package-level helper value.
var version = "dev"

// program is the subset of *tea.Program the CLI drives.
type program interface {
	Run() (tea.Model, error)
	Send(tea.Msg)
}

// programFactory stores a package-level helper value.
var programFactory = func(ctx context.Context, m tea.Model) program {
	return tea.NewProgram(m, tea.WithContext(ctx))
}

// serveCommandRunner starts the HTTP+MCP serve flow.
var serveCommandRunner = func(ctx context.Context, cfg serveradapter.Config, deps serveradapter.Dependencies) error {
	return serveradapter.Run(ctx, cfg, deps)
}

// main handles main.
func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	if err := run(ctx, os.Args[1:], os.Stdout, os.Stderr); err != nil {
		os.Exit(1)
	}
}

// run builds the command tree and executes it with args.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) error {
	if stdout == nil {
		stdout = io.Discard
	}
	if stderr == nil {
		stderr = io.Discard
	}
	root := newRootCommand(stdout, stderr)
	root.SetArgs(args)
	root.SetOut(stdout)
	root.SetErr(stderr)
	return fang.Execute(ctx, root, fang.WithVersion(version))
}

// rootOptions holds the persistent flags shared by every command.
type rootOptions struct {
	configPath string
	dbPath     string
	appName    string
	devMode    bool
}

// newRootCommand wires the command tree.
func newRootCommand(stdout, stderr io.Writer) *cobra.Command {
	opts := &rootOptions{appName: platform.DefaultAppName, devMode: version == "dev"}
	if envApp := strings.TrimSpace(os.Getenv("PHASEBOARD_APP_NAME")); envApp != "" {
		opts.appName = envApp
	}
	if envDev, ok := parseBoolEnv("PHASEBOARD_DEV_MODE"); ok {
		opts.devMode = envDev
	}

	root := &cobra.Command{
		Use:           "phaseboard",
		Short:         "Qualification phase board for the terminal",
		Long:          "phaseboard shows a project's tasks across the URS, FRS, DQ, IQ, PQ and OQ stages and lets you reorder them within a stage.",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runTUI(cmd.Context(), opts, stderr)
		},
	}
	flags := root.PersistentFlags()
	flags.StringVar(&opts.configPath, "config", "", "path to config TOML")
	flags.StringVar(&opts.dbPath, "db", "", "path to sqlite database")
	flags.StringVar(&opts.appName, "app", opts.appName, "application name for config/data path resolution")
	flags.BoolVar(&opts.devMode, "dev", opts.devMode, "use dev mode paths (<app>-dev)")

	root.AddCommand(
		newPathsCommand(opts, stdout),
		newStagesCommand(opts, stdout),
		newExportCommand(opts, stdout, stderr),
		newImportCommand(opts, stderr),
		newServeCommand(opts, stderr),
	)
	return root
}

// newPathsCommand prints resolved config and data locations.
func newPathsCommand(opts *rootOptions, stdout io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "paths",
		Short: "Print resolved config and data paths",
		Args:  cobra.NoArgs,
		RunE: func(*cobra.Command, []string) error {
			res, err := resolveRuntimePaths(opts)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintf(stdout, "app: %s\n", opts.appName)
			_, _ = fmt.Fprintf(stdout, "dev_mode: %t\n", opts.devMode)
			_, _ = fmt.Fprintf(stdout, "config: %s\n", res.configPath)
			_, _ = fmt.Fprintf(stdout, "data_dir: %s\n", res.paths.DataDir)
			_, _ = fmt.Fprintf(stdout, "db: %s\n", res.dbPath)
			_, _ = fmt.Fprintf(stdout, "exports: %s\n", res.paths.ExportDir)
			return nil
		},
	}
}

// newExportCommand writes a snapshot of every project and task.
func newExportCommand(opts *rootOptions, stdout, stderr io.Writer) *cobra.Command {
	var (
		outPath string
		format  string
	)
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Export projects and tasks as a JSON or YAML snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), opts, stderr, "export", func(ctx context.Context, env *runtimeEnv) error {
				return runExport(ctx, env.svc, outPath, app.SnapshotFormat(format), stdout)
			})
		},
	}
	cmd.Flags().StringVar(&outPath, "out", "-", "output file path ('-' for stdout)")
	cmd.Flags().StringVar(&format, "format", "", "snapshot format: json or yaml (default from --out extension)")
	return cmd
}

// newImportCommand loads a snapshot into the database.
func newImportCommand(opts *rootOptions, stderr io.Writer) *cobra.Command {
	var inPath string
	cmd := &cobra.Command{
		Use:   "import",
		Short: "Import projects and tasks from a JSON or YAML snapshot",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), opts, stderr, "import", func(ctx context.Context, env *runtimeEnv) error {
				return runImport(ctx, env.svc, inPath)
			})
		},
	}
	cmd.Flags().StringVar(&inPath, "in", "", "input snapshot file (.json, .yaml or .yml)")
	_ = cmd.MarkFlagRequired("in")
	return cmd
}

// newServeCommand runs the HTTP API and MCP endpoints.
func newServeCommand(opts *rootOptions, stderr io.Writer) *cobra.Command {
	var (
		httpBind    string
		apiEndpoint string
		mcpEndpoint string
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the board over HTTP and MCP",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return withRuntime(cmd.Context(), opts, stderr, "serve", func(ctx context.Context, env *runtimeEnv) error {
				serverCfg := env.cfg.Server
				if httpBind != "" {
					serverCfg.HTTPBind = httpBind
				}
				if apiEndpoint != "" {
					serverCfg.APIEndpoint = apiEndpoint
				}
				if mcpEndpoint != "" {
					serverCfg.MCPEndpoint = mcpEndpoint
				}
				return runServe(ctx, env, serverCfg)
			})
		},
	}
	cmd.Flags().StringVar(&httpBind, "http", "", "listen address (default from config)")
	cmd.Flags().StringVar(&apiEndpoint, "api-endpoint", "", "REST API base path (default from config)")
	cmd.Flags().StringVar(&mcpEndpoint, "mcp-endpoint", "", "MCP endpoint path (default from config)")
	return cmd
}

// runtimePaths captures resolved file locations for one invocation.
type runtimePaths struct {
	paths        platform.Paths
	configPath   string
	dbPath       string
	dbOverridden bool
}

// resolveRuntimePaths applies flag, env and platform precedence to config and db paths.
func resolveRuntimePaths(opts *rootOptions) (runtimePaths, error) {
	paths, err := platform.DefaultPathsWithOptions(platform.Options{
		AppName: opts.appName,
		DevMode: opts.devMode,
	})
	if err != nil {
		return runtimePaths{}, err
	}
	res := runtimePaths{paths: paths, configPath: opts.configPath, dbPath: opts.dbPath}
	if strings.TrimSpace(res.configPath) == "" {
		res.configPath = paths.ConfigPath
		if envPath := strings.TrimSpace(os.Getenv("PHASEBOARD_CONFIG")); envPath != "" {
			res.configPath = envPath
		}
	}
	res.dbOverridden = strings.TrimSpace(res.dbPath) != ""
	if !res.dbOverridden {
		res.dbPath = paths.DBPath
		if envPath := strings.TrimSpace(os.Getenv("PHASEBOARD_DB_PATH")); envPath != "" {
			res.dbPath = envPath
			res.dbOverridden = true
		}
	}
	return res, nil
}

// runtimeEnv holds the resources opened for one command flow.
type runtimeEnv struct {
	runtimePaths
	defaults config.Config
	cfg      config.Config
	logger   *runtimeLogger
	repo     *sqlite.Repository
	svc      *app.Service
}

// openRuntime resolves config, logging and storage for a command flow.
func openRuntime(opts *rootOptions, stderr io.Writer, command string) (*runtimeEnv, error) {
	res, err := resolveRuntimePaths(opts)
	if err != nil {
		return nil, err
	}
	env := &runtimeEnv{runtimePaths: res, defaults: config.Default(res.dbPath)}
	env.cfg, err = loadConfig(res, env.defaults)
	if err != nil {
		return nil, err
	}

	env.logger, err = newRuntimeLogger(stderr, opts.appName, opts.devMode, env.cfg.Logging, time.Now)
	if err != nil {
		return nil, fmt.Errorf("configure runtime logger: %w", err)
	}
	if command == "tui" {
		env.logger.MuteConsole(true)
	}
	env.logger.Info("startup configuration resolved", "app", opts.appName, "dev_mode", opts.devMode, "command", command)
	env.logger.Debug("runtime paths resolved", "config_path", res.configPath, "data_dir", res.paths.DataDir, "db_path", res.dbPath)
	if devPath := env.logger.DevLogPath(); devPath != "" {
		env.logger.Info("dev file logging enabled", "path", devPath)
	}

	env.logger.Info("opening sqlite repository", "db_path", env.cfg.Database.Path)
	env.repo, err = sqlite.Open(env.cfg.Database.Path)
	if err != nil {
		env.logger.Error("sqlite open failed", "db_path", env.cfg.Database.Path, "err", err)
		_ = env.logger.Close()
		return nil, fmt.Errorf("open sqlite repository: %w", err)
	}
	env.svc = app.NewService(env.repo, uuid.NewString, nil, app.ServiceConfig{
		SeedDemoTasks: env.cfg.Database.SeedDemo,
	})
	return env, nil
}

// Close releases storage and log sinks.
func (e *runtimeEnv) Close(stderr io.Writer) {
	if closeErr := e.repo.Close(); closeErr != nil {
		e.logger.Warn("sqlite close failed", "db_path", e.cfg.Database.Path, "err", closeErr)
	}
	if closeErr := e.logger.Close(); closeErr != nil {
		_, _ = fmt.Fprintf(stderr, "warning: close runtime log sink: %v\n", closeErr)
	}
}

// withRuntime opens a runtime, runs fn with start/finish logging, and closes it.
func withRuntime(ctx context.Context, opts *rootOptions, stderr io.Writer, command string, fn func(context.Context, *runtimeEnv) error) error {
	env, err := openRuntime(opts, stderr, command)
	if err != nil {
		return err
	}
	defer env.Close(stderr)

	env.logger.Info("command flow start", "command", command)
	if err := fn(ctx, env); err != nil {
		env.logger.Error("command flow failed", "command", command, "err", err)
		return fmt.Errorf("run %s command: %w", command, err)
	}
	env.logger.Info("command flow complete", "command", command)
	return nil
}

// loadConfig reads the TOML config and reapplies an explicit db override.
func loadConfig(res runtimePaths, defaults config.Config) (config.Config, error) {
	cfg, err := config.Load(res.configPath, defaults)
	if err != nil {
		return config.Config{}, fmt.Errorf("load config %q: %w", res.configPath, err)
	}
	if res.dbOverridden {
		cfg.Database.Path = res.dbPath
	}
	return cfg, nil
}

// runTUI runs the board until the user quits, reloading board settings when the config file changes.
func runTUI(ctx context.Context, opts *rootOptions, stderr io.Writer) error {
	return withRuntime(ctx, opts, stderr, "tui", func(ctx context.Context, env *runtimeEnv) error {
		if env.cfg.Database.SeedDemo {
			if _, err := env.svc.EnsureDefaultProject(ctx); err != nil {
				return fmt.Errorf("ensure default project: %w", err)
			}
		}

		m := tui.NewModel(env.svc, tui.WithRuntimeConfig(toTUIRuntimeConfig(env.cfg)))
		p := programFactory(ctx, m)

		g, gctx := errgroup.WithContext(ctx)
		watchCtx, stopWatch := context.WithCancel(gctx)
		g.Go(func() error {
			defer stopWatch()
			env.logger.Info("starting tui program loop")
			if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
				env.logger.Error("tui program terminated with error", "err", err)
				return fmt.Errorf("run tui program: %w", err)
			}
			return nil
		})
		g.Go(func() error {
			watchRuntimeConfig(watchCtx, env, p)
			return nil
		})
		return g.Wait()
	})
}

// watchRuntimeConfig forwards config file reloads to the running program until ctx ends.
// Watch failures are logged and leave the board running on its startup settings.
func watchRuntimeConfig(ctx context.Context, env *runtimeEnv, p program) {
	if err := config.EnsureConfigDir(env.configPath); err != nil {
		env.logger.Warn("config watch disabled", "config_path", env.configPath, "err", err)
		return
	}
	err := config.Watch(ctx, env.configPath, env.defaults, func(cfg config.Config, err error) {
		if err != nil {
			env.logger.Error("runtime config reload failed", "config_path", env.configPath, "err", err)
			p.Send(tui.RuntimeConfigMsg{Err: err})
			return
		}
		env.logger.Info("runtime config reload complete", "config_path", env.configPath)
		p.Send(tui.RuntimeConfigMsg{Config: toTUIRuntimeConfig(cfg)})
	})
	if err != nil {
		env.logger.Warn("config watch disabled", "config_path", env.configPath, "err", err)
	}
}

// runServe starts the HTTP and MCP transports over the app service.
func runServe(ctx context.Context, env *runtimeEnv, serverCfg config.ServerConfig) error {
	if env.cfg.Database.SeedDemo {
		if _, err := env.svc.EnsureDefaultProject(ctx); err != nil {
			return fmt.Errorf("ensure default project: %w", err)
		}
	}
	adapter := servercommon.NewAppServiceAdapter(env.svc, servercommon.AdapterConfig{
		MinColumnWidth: env.cfg.Board.MinColumnWidth,
		Completed:      completedPlacement(env.cfg.Board.CompletedPolicy),
	})
	env.logger.Info("serving board", "http_bind", serverCfg.HTTPBind, "api_endpoint", serverCfg.APIEndpoint, "mcp_endpoint", serverCfg.MCPEndpoint)
	return serveCommandRunner(ctx, serveradapter.Config{
		HTTPBind:      serverCfg.HTTPBind,
		APIEndpoint:   serverCfg.APIEndpoint,
		MCPEndpoint:   serverCfg.MCPEndpoint,
		ServerName:    platform.DefaultAppName,
		ServerVersion: version,
	}, serveradapter.Dependencies{
		Boards: adapter,
	})
}

// runExport writes a snapshot to outPath, or stdout for "-".
func runExport(ctx context.Context, svc *app.Service, outPath string, format app.SnapshotFormat, stdout io.Writer) error {
	snap, err := svc.ExportSnapshot(ctx)
	if err != nil {
		return fmt.Errorf("export snapshot: %w", err)
	}
	if format == "" {
		format = app.SnapshotFormatFromPath(outPath)
	}
	if outPath == "-" || outPath == "" {
		return app.EncodeSnapshot(stdout, snap, format)
	}
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("create export output dir: %w", err)
	}
	f, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("create export file: %w", err)
	}
	if err := app.EncodeSnapshot(f, snap, format); err != nil {
		_ = f.Close()
		return fmt.Errorf("write export file: %w", err)
	}
	return f.Close()
}

// runImport reads a snapshot from inPath and upserts its contents.
func runImport(ctx context.Context, svc *app.Service, inPath string) error {
	f, err := os.Open(inPath)
	if err != nil {
		return fmt.Errorf("open import file: %w", err)
	}
	defer f.Close()

	snap, err := app.DecodeSnapshot(f, app.SnapshotFormatFromPath(inPath))
	if err != nil {
		return err
	}
	if err := svc.ImportSnapshot(ctx, snap); err != nil {
		return fmt.Errorf("import snapshot: %w", err)
	}
	return nil
}

// toTUIRuntimeConfig maps persisted config values into runtime model options.
func toTUIRuntimeConfig(cfg config.Config) tui.RuntimeConfig {
	return tui.RuntimeConfig{
		MinColumnCells:  cfg.Board.MinColumnCells,
		Completed:       completedPlacement(cfg.Board.CompletedPolicy),
		ReorderModifier: cfg.Board.ReorderModifier,
	}
}

// completedPlacement maps a config policy to a board placement.
func completedPlacement(policy config.CompletedPolicy) board.CompletedPlacement {
	if policy == config.CompletedPolicyRandom {
		return board.RandomCompletedPlacement(nil)
	}
	return board.StableCompletedPlacement
}

// parseBoolEnv parses input into a normalized form.
func parseBoolEnv(name string) (bool, bool) {
	raw := strings.TrimSpace(os.Getenv(name))
	if raw == "" {
		return false, false
	}
	v, err := strconv.ParseBool(raw)
	if err != nil {
		return false, false
	}
	return v, true
}
