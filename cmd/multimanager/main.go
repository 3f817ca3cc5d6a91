package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strconv"

	"github.com/1broseidon/multimanager/internal/config"
	"github.com/1broseidon/multimanager/internal/hotkeys"
	"github.com/1broseidon/multimanager/internal/platform"
	"github.com/1broseidon/multimanager/internal/prompt"
	"github.com/1broseidon/multimanager/internal/workspace"
	"github.com/1broseidon/multimanager/internal/x11"
	"github.com/spf13/pflag"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

func main() {
	if len(os.Args) < 2 {
		printMainUsage(os.Stdout)
		os.Exit(0)
	}

	switch os.Args[1] {
	case "daemon":
		os.Exit(runDaemon(os.Args[2:]))
	case "workspace":
		os.Exit(runWorkspace(os.Args[2:]))
	case "toggle":
		os.Exit(runToggle(os.Args[2:]))
	case "home":
		os.Exit(runHome(os.Args[2:]))
	case "bindings":
		os.Exit(runBindings(os.Args[2:]))
	case "desktops":
		os.Exit(runDesktops(os.Args[2:]))
	case "center":
		os.Exit(runCenter(os.Args[2:]))
	case "reload":
		os.Exit(runReload(os.Args[2:]))
	case "config":
		os.Exit(runConfig(os.Args[2:]))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: multimanager <command> [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  daemon                    Watch workspace hotkeys (foreground)")
	fmt.Fprintln(w, "  reload                    Ask the running daemon to reload workspaces")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  workspace list            List workspaces and their windows")
	fmt.Fprintln(w, "  workspace new             Create a workspace")
	fmt.Fprintln(w, "  workspace delete          Delete a workspace")
	fmt.Fprintln(w, "  workspace rename          Rename a workspace")
	fmt.Fprintln(w, "  workspace move            Move a workspace to another list position")
	fmt.Fprintln(w, "  workspace hotkey          Set or clear a workspace hotkey")
	fmt.Fprintln(w, "  workspace enable|disable  Enable or disable a workspace hotkey")
	fmt.Fprintln(w, "  workspace rotate          Turn rotation on or off")
	fmt.Fprintln(w, "  workspace add-window      Capture the focused window (or --window ID)")
	fmt.Fprintln(w, "  workspace remove-window   Remove a window entry")
	fmt.Fprintln(w, "  workspace move-window     Reorder a window entry")
	fmt.Fprintln(w, "  workspace recapture       Rebind a window entry to the focused window")
	fmt.Fprintln(w, "  workspace set-home        Record a window's current rectangle as home")
	fmt.Fprintln(w, "  workspace set-target      Record a window's current rectangle as target")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  toggle <workspace>        Toggle a workspace once")
	fmt.Fprintln(w, "  home [workspace]          Send one or all workspaces home")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  bindings save|load        Save or apply window bindings")
	fmt.Fprintln(w, "  desktops save|load        Save or restore the whole desktop layout")
	fmt.Fprintln(w, "  center                    Center every window on the primary monitor")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "  config validate           Validate configuration")
	fmt.Fprintln(w, "  config print              Print effective configuration")
	fmt.Fprintln(w, "  config explain            Explain a config value")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'multimanager <command> --help' for command-specific options.")
}

// newFlagSet builds a subcommand flag set with the shared --config flag.
func newFlagSet(name, usage string) (*pflag.FlagSet, *string) {
	fs := pflag.NewFlagSet(name, pflag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	fs.Usage = func() {
		fmt.Fprintf(os.Stderr, "Usage: multimanager %s\n", usage)
		if fs.HasFlags() {
			fmt.Fprintln(os.Stderr, "")
			fmt.Fprintln(os.Stderr, "Flags:")
			fs.PrintDefaults()
		}
	}
	path := fs.String("config", "", "Config file path (default: ~/.config/multimanager/config.yaml)")
	return fs, path
}

// parseFlags returns -1 to continue, otherwise the exit code.
func parseFlags(fs *pflag.FlagSet, args []string, nargs int) int {
	if err := fs.Parse(args); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return 0
		}
		return 2
	}
	if nargs >= 0 && fs.NArg() != nargs {
		fs.Usage()
		return 2
	}
	return -1
}

func loadConfig(path string) (*config.LoadResult, error) {
	if path == "" {
		return config.LoadWithSources()
	}
	return config.LoadFromPath(path)
}

// newLogger writes text to a terminal and JSON otherwise. log_file, when
// set, replaces stderr.
func newLogger(cfg *config.Config) (*slog.Logger, func(), error) {
	options := &slog.HandlerOptions{Level: cfg.SlogLevel()}
	if cfg.LogFile != "" {
		f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to open log file: %w", err)
		}
		return slog.New(slog.NewTextHandler(f, options)), func() { f.Close() }, nil
	}

	var handler slog.Handler
	if term.IsTerminal(int(os.Stderr.Fd())) {
		handler = slog.NewTextHandler(os.Stderr, options)
	} else {
		handler = slog.NewJSONHandler(os.Stderr, options)
	}
	return slog.New(handler), func() {}, nil
}

// session is one connection to the display plus the services built on it.
type session struct {
	cfg      *config.Config
	logger   *slog.Logger
	conn     *x11.Connection
	backend  *platform.LinuxBackend
	port     *platform.Port
	prompter prompt.Prompter
	manager  *workspace.Manager

	closeLog func()
}

func openSession(configPath string) (*session, error) {
	res, err := loadConfig(configPath)
	if err != nil {
		return nil, err
	}
	cfg := res.Config
	logger, closeLog, err := newLogger(cfg)
	if err != nil {
		return nil, err
	}
	conn, err := x11.NewConnection(cfg.Display)
	if err != nil {
		closeLog()
		return nil, err
	}
	backend := platform.NewLinuxBackend(conn)
	return &session{
		cfg:      cfg,
		logger:   logger,
		conn:     conn,
		backend:  backend,
		port:     platform.NewPort(backend),
		prompter: prompt.NewTerminal(logger),
		closeLog: closeLog,
	}, nil
}

// useManager builds the workspace manager. A nil registry never grabs keys.
func (s *session) useManager(registry *hotkeys.Registry) *workspace.Manager {
	s.manager = workspace.NewManager(workspace.ManagerOptions{
		Geometry:       s.port,
		Windows:        s.backend,
		Registry:       registry,
		Prompter:       s.prompter,
		Logger:         s.logger,
		WorkspacesPath: s.cfg.WorkspacesFile,
		BindingsPath:   s.cfg.BindingsFile,
	})
	return s.manager
}

// openManager opens a session and loads the workspace list for a one-shot
// command.
func openManager(configPath string) (*session, error) {
	s, err := openSession(configPath)
	if err != nil {
		return nil, err
	}
	if err := s.useManager(nil).Load(); err != nil {
		s.Close()
		return nil, err
	}
	return s, nil
}

func (s *session) Close() {
	s.conn.Close()
	s.closeLog()
}

// commit persists an edit and asks a running daemon to pick it up.
func (s *session) commit() int {
	if err := s.manager.Save(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if _, err := s.manager.SaveBindings(); err != nil {
		s.logger.Warn("failed to save bindings", "error", err)
	}
	if err := signalDaemon(reloadSignal); err != nil {
		s.logger.Debug("daemon not notified", "error", err)
	}
	return 0
}

// resolveWorkspace accepts a workspace name or, failing that, its index.
func resolveWorkspace(m *workspace.Manager, arg string) (int, error) {
	index, err := m.Find(arg)
	if err == nil {
		return index, nil
	}
	n, convErr := strconv.Atoi(arg)
	if convErr != nil || n < 0 || n >= len(m.Workspaces()) {
		return -1, err
	}
	return n, nil
}

func parseWindowIndex(arg string) (int, error) {
	n, err := strconv.Atoi(arg)
	if err != nil || n < 0 {
		return -1, fmt.Errorf("invalid window index %q", arg)
	}
	return n, nil
}

func runConfig(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		fmt.Fprintln(os.Stderr, "Usage:")
		fmt.Fprintln(os.Stderr, "  multimanager config validate [--config PATH]")
		fmt.Fprintln(os.Stderr, "  multimanager config print [--config PATH] [--defaults]")
		fmt.Fprintln(os.Stderr, "  multimanager config explain [--config PATH] <key>")
		return 2
	}

	switch args[0] {
	case "validate":
		fs, path := newFlagSet("validate", "config validate [--config PATH]")
		if code := parseFlags(fs, args[1:], 0); code >= 0 {
			return code
		}
		if _, err := loadConfig(*path); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Println("config: ok")
		return 0

	case "print":
		fs, path := newFlagSet("print", "config print [--config PATH] [--defaults]")
		printDefaults := fs.Bool("defaults", false, "Print built-in defaults (no files)")
		if code := parseFlags(fs, args[1:], 0); code >= 0 {
			return code
		}

		cfg := config.DefaultConfig()
		if !*printDefaults {
			res, err := loadConfig(*path)
			if err != nil {
				fmt.Fprintln(os.Stderr, err)
				return 1
			}
			cfg = res.Config
		}
		data, err := yaml.Marshal(cfg)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Print(string(data))
		return 0

	case "explain":
		fs, path := newFlagSet("explain", "config explain [--config PATH] <key>")
		if code := parseFlags(fs, args[1:], 1); code >= 0 {
			return code
		}
		res, err := loadConfig(*path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		value, src, err := config.Explain(res, fs.Arg(0))
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			fmt.Fprintf(os.Stderr, "known keys: %v\n", config.Keys())
			return 1
		}
		out, err := yaml.Marshal(value)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("path: %s\n", fs.Arg(0))
		fmt.Printf("source: %s\n", formatSource(src))
		fmt.Printf("value: %s", string(out))
		return 0

	default:
		fmt.Fprintf(os.Stderr, "Unknown config subcommand: %s\n", args[0])
		return 2
	}
}

func formatSource(src config.Source) string {
	switch src.Kind {
	case config.SourceFile:
		if src.File == "" {
			return "file"
		}
		if src.Line > 0 {
			return fmt.Sprintf("file:%s:%d:%d", src.File, src.Line, src.Column)
		}
		return "file:" + src.File
	case config.SourceDefault:
		return "default"
	default:
		return string(src.Kind)
	}
}
