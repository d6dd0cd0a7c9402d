package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/1broseidon/setwin/internal/actionlog"
	"github.com/1broseidon/setwin/internal/cliargs"
	"github.com/1broseidon/setwin/internal/config"
	"github.com/1broseidon/setwin/internal/platform"
	"github.com/1broseidon/setwin/internal/window"
)

const (
	moduleName = "SetWin"
	version    = "0.9"
)

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stdout)
		os.Exit(0)
	}
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

func printUsage(w io.Writer) {
	fmt.Fprintf(w, "%s v%s\n", moduleName, version)
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintln(w, "  setwin [-n] [-t | -g] [-cX] [Width] [Height] [FGColor] [BGColor] [BColor]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Flags:")
	fmt.Fprintln(w, "  -n       Create a new window instead of modifying the current one")
	fmt.Fprintln(w, "  -t       Text-only window")
	fmt.Fprintln(w, "  -g       Graphics text window")
	fmt.Fprintln(w, "  -cX      Number of colors for a graphics window (2, 4, or 16)")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  FGColor  Text foreground color")
	fmt.Fprintln(w, "  BGColor  Screen background color")
	fmt.Fprintln(w, "  BColor   Screen border color")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Parameters left out are taken from the current window, so changing one")
	fmt.Fprintln(w, "or two characteristics of an existing window only needs those values.")
	fmt.Fprintln(w, "")
	fmt.Fprintf(w, "Configuration: $%s or ~/.config/setwin/config.yaml\n", config.EnvConfigPath)
}

func run(args []string, stdout, stderr io.Writer) int {
	spec, err := cliargs.Parse(args)
	if err == nil {
		err = cliargs.RequireDimensions(spec)
	}
	if err != nil {
		return fail(stderr, err)
	}

	res, err := config.LoadWithSources()
	if err != nil {
		return fail(stderr, err)
	}
	cfg := res.Config
	logger := newLogger(cfg.LogLevel, stderr)
	if res.File != "" {
		logger.Debug("loaded config", "file", res.File)
	}

	dev, closeDev, err := openBackend(cfg, stdout)
	if err != nil {
		return fail(stderr, err)
	}
	defer closeDev()

	actions, err := newActionLogger(cfg)
	if err != nil {
		fmt.Fprintf(stderr, "warning: failed to initialize action logger: %v\n", err)
	}
	if actions != nil {
		defer actions.Close()
		wrapped := actionlog.Wrap(dev, actions)
		logger = logger.With("run", wrapped.Invocation())
		dev = wrapped
	}

	if err := apply(spec, cfg, dev, logger); err != nil {
		return fail(stderr, err)
	}
	return 0
}

func apply(spec window.PartialSpec, cfg *config.Config, dev platform.Backend, logger *slog.Logger) error {
	cur := window.NewCurrent(dev)
	desc, err := window.Resolve(spec, cur, logger)
	if err != nil {
		return err
	}
	seq, err := window.Encode(desc)
	if err != nil {
		return err
	}

	prov := &window.Provisioner{Dev: dev, Device: cfg.NewWindowDevice}
	target, err := prov.Provision(spec.NewWindow, cur)
	if err != nil {
		return fmt.Errorf("could not open a new window: %w", err)
	}

	applier := &window.Applier{
		Dev:         dev,
		ConsolePath: platform.Path(cfg.ConsolePath),
		SettleTicks: cfg.SettleTicks,
		Shell:       cfg.Shell.Command,
		ShellArgs:   cfg.Shell.Args,
		Logger:      logger,
	}
	return applier.Apply(target, seq)
}

func openBackend(cfg *config.Config, stdout io.Writer) (platform.Backend, func(), error) {
	switch cfg.Backend {
	case config.BackendDryRun:
		mem := platform.NewMemoryBackend(platform.WindowState{
			Width:      cfg.DryRun.Width,
			Height:     cfg.DryRun.Height,
			TypeCode:   cfg.DryRun.ScreenType,
			Foreground: cfg.DryRun.Foreground,
			Background: cfg.DryRun.Background,
			Border:     cfg.DryRun.Border,
			DeviceName: cfg.DryRun.DeviceName,
		})
		mem.NewWindows = []platform.WindowState{{
			Width:      cfg.DryRun.Width,
			Height:     cfg.DryRun.Height,
			TypeCode:   cfg.DryRun.ScreenType,
			DeviceName: cfg.DryRun.NewDeviceName,
		}}
		mem.Trace = stdout
		return mem, func() {}, nil
	case config.BackendHost:
		return newHostBackend(cfg)
	default:
		return nil, nil, fmt.Errorf("unknown backend %q", cfg.Backend)
	}
}

func newActionLogger(cfg *config.Config) (*actionlog.Logger, error) {
	logCfg := cfg.GetLoggingConfig()
	if !logCfg.Enabled {
		return nil, nil
	}
	return actionlog.NewLogger(actionlog.LogConfig{
		Enabled:        logCfg.Enabled,
		Level:          actionlog.ParseLogLevel(logCfg.Level),
		FilePath:       logCfg.File,
		MaxSizeMB:      logCfg.MaxSizeMB,
		MaxFiles:       logCfg.MaxFiles,
		IncludeContent: logCfg.IncludeContent,
		PreviewLength:  logCfg.PreviewLength,
	})
}

func newLogger(level string, w io.Writer) *slog.Logger {
	lvl := slog.LevelWarn
	switch level {
	case "debug":
		lvl = slog.LevelDebug
	case "info":
		lvl = slog.LevelInfo
	case "error":
		lvl = slog.LevelError
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: lvl}))
}

// fail prints one diagnostic for err and returns the exit status.
func fail(w io.Writer, err error) int {
	var (
		inputErr  *cliargs.InputError
		validErr  *window.ValidationError
		spawnErr  *window.SpawnError
		deviceErr *platform.DeviceError
		configErr *config.ValidationError
	)
	switch {
	case errors.As(err, &inputErr):
		fmt.Fprintf(w, "setwin: %v. Aborted.\n", inputErr)
	case errors.As(err, &validErr):
		fmt.Fprintf(w, "setwin: %v. Aborted.\n", validErr)
	case errors.As(err, &spawnErr):
		// err may also carry a settle failure joined to the spawn error.
		fmt.Fprintf(w, "setwin: window configured, but %v\n", err)
	case errors.As(err, &deviceErr):
		fmt.Fprintf(w, "setwin: device operation failed: %v\n", err)
	case errors.As(err, &configErr):
		fmt.Fprintf(w, "setwin: config: %v\n", configErr)
	default:
		fmt.Fprintf(w, "setwin: %v\n", err)
	}
	return 1
}
