package main

import (
	"fmt"
	"os"

	"github.com/1broseidon/multimanager/internal/desktops"
)

func runBindings(args []string) int {
	if len(args) == 0 || (args[0] != "save" && args[0] != "load") {
		fmt.Fprintln(os.Stderr, "Usage: multimanager bindings save|load [--config PATH]")
		return 2
	}
	fs, configPath := newFlagSet("bindings "+args[0], "bindings "+args[0]+" [--config PATH]")
	if code := parseFlags(fs, args[1:], 0); code >= 0 {
		return code
	}
	s, err := openManager(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	if args[0] == "save" {
		n, err := s.manager.SaveBindings()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("Saved %d window bindings to %s\n", n, s.cfg.BindingsFile)
		return 0
	}

	stats, err := s.manager.LoadBindings()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("Applied bindings: %s\n", stats)
	return s.commit()
}

func runDesktops(args []string) int {
	if len(args) == 0 || (args[0] != "save" && args[0] != "load") {
		fmt.Fprintln(os.Stderr, "Usage: multimanager desktops save|load [--config PATH] [--file PATH]")
		return 2
	}
	fs, configPath := newFlagSet("desktops "+args[0], "desktops "+args[0]+" [--config PATH] [--file PATH]")
	file := fs.String("file", "", "Layout file (default: desktop_layout_file from config)")
	if code := parseFlags(fs, args[1:], 0); code >= 0 {
		return code
	}
	s, err := openSession(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	path := *file
	if path == "" {
		path = s.cfg.DesktopLayoutFile
	}
	svc := desktops.NewService(s.backend, s.port, s.prompter, s.logger)

	if args[0] == "save" {
		n, err := svc.Save(path)
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		fmt.Printf("Saved %d windows to %s\n", n, path)
		return 0
	}

	stats, err := svc.Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("Restored %d windows (%d missing, %d failed)\n", stats.Restored, stats.Missing, stats.Failed)
	return 0
}

func runCenter(args []string) int {
	fs, configPath := newFlagSet("center", "center [--config PATH]")
	if code := parseFlags(fs, args, 0); code >= 0 {
		return code
	}
	s, err := openSession(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	svc := desktops.NewService(s.backend, s.port, s.prompter, s.logger)
	if _, err := svc.CenterAll(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}
