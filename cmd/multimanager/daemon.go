package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"

	"github.com/1broseidon/multimanager/internal/daemon"
	"github.com/1broseidon/multimanager/internal/fsutil"
	"github.com/1broseidon/multimanager/internal/hotkeys"
	"github.com/1broseidon/multimanager/internal/runtimepath"
)

const reloadSignal = syscall.SIGHUP

func runDaemon(args []string) int {
	fs, configPath := newFlagSet("daemon", "daemon [--config PATH]")
	if code := parseFlags(fs, args, 0); code >= 0 {
		return code
	}

	s, err := openSession(*configPath)
	if err != nil {
		log.Fatalf("Failed to start daemon: %v", err)
	}
	defer s.Close()
	logger := s.logger

	// grabbed keys arrive as events that must be drained
	go s.conn.EventLoop()

	keyboard := hotkeys.NewX11Keyboard(s.conn)
	var grabber hotkeys.Grabber
	if s.cfg.GrabHotkeys {
		grabber = keyboard
	}
	registry := hotkeys.NewRegistry(grabber, logger)
	m := s.useManager(registry)
	if err := m.Load(); err != nil {
		log.Fatalf("Failed to load workspaces: %v", err)
	}
	defer m.UnregisterHotkeys()

	pidPath, err := runtimepath.PIDPath()
	if err != nil {
		log.Fatalf("Failed to resolve pid file: %v", err)
	}
	if err := writePIDFile(pidPath); err != nil {
		log.Fatalf("Failed to write pid file: %v", err)
	}
	defer os.Remove(pidPath)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	poller := daemon.NewPoller(daemon.PollerConfig{
		Interval: s.cfg.PollInterval,
		Logger:   logger,
	}, keyboard, m)
	go poller.Run(ctx)

	if s.cfg.ValidateInterval > 0 {
		reconciler := daemon.NewReconciler(daemon.ReconcilerConfig{
			Interval: s.cfg.ValidateInterval,
			Logger:   logger,
		}, m)
		go reconciler.Run(ctx)
	}

	logger.Info("multimanager daemon started",
		"workspaces", len(m.Workspaces()),
		"hotkeys", registry.Len(),
		"poll_interval", s.cfg.PollInterval,
		"grab_hotkeys", s.cfg.GrabHotkeys)

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, os.Interrupt, syscall.SIGTERM, reloadSignal)
	defer signal.Stop(sigCh)

	for sig := range sigCh {
		if sig == reloadSignal {
			logger.Info("received SIGHUP, reloading workspaces")
			if err := m.Reload(); err != nil {
				logger.Error("reload failed", "error", err)
			}
			continue
		}

		logger.Info("shutting down", "signal", sig.String())
		if s.cfg.SaveOnExit {
			if err := m.Save(); err != nil {
				logger.Error("failed to save workspaces", "error", err)
			}
			if _, err := m.SaveBindings(); err != nil {
				logger.Error("failed to save bindings", "error", err)
			}
		}
		break
	}
	return 0
}

func runReload(args []string) int {
	fs, _ := newFlagSet("reload", "reload")
	if code := parseFlags(fs, args, 0); code >= 0 {
		return code
	}
	if err := signalDaemon(reloadSignal); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Println("daemon: reload requested")
	return 0
}

func writePIDFile(path string) error {
	return fsutil.WriteFileAtomic(path, []byte(strconv.Itoa(os.Getpid())+"\n"), 0644)
}

func readPIDFile(path string) (int, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return 0, err
	}
	pid, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil || pid <= 0 {
		return 0, fmt.Errorf("invalid pid file %s", path)
	}
	return pid, nil
}

// signalDaemon delivers sig to the daemon named in the pid file.
func signalDaemon(sig syscall.Signal) error {
	path, err := runtimepath.PIDPath()
	if err != nil {
		return err
	}
	pid, err := readPIDFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("daemon is not running")
		}
		return err
	}
	if err := syscall.Kill(pid, sig); err != nil {
		return fmt.Errorf("daemon (pid %d) is not running: %w", pid, err)
	}
	return nil
}
