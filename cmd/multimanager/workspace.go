package main

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/1broseidon/multimanager/internal/platform"
	"github.com/1broseidon/multimanager/internal/workspace"
)

func printWorkspaceUsage() {
	fmt.Fprintln(os.Stderr, "Usage:")
	fmt.Fprintln(os.Stderr, "  multimanager workspace list")
	fmt.Fprintln(os.Stderr, "  multimanager workspace new [--hotkey CHORD] <name>")
	fmt.Fprintln(os.Stderr, "  multimanager workspace delete <workspace>")
	fmt.Fprintln(os.Stderr, "  multimanager workspace rename <workspace> <new-name>")
	fmt.Fprintln(os.Stderr, "  multimanager workspace move <workspace> <position>")
	fmt.Fprintln(os.Stderr, "  multimanager workspace hotkey <workspace> [CHORD]")
	fmt.Fprintln(os.Stderr, "  multimanager workspace enable|disable <workspace>")
	fmt.Fprintln(os.Stderr, "  multimanager workspace rotate <workspace> on|off")
	fmt.Fprintln(os.Stderr, "  multimanager workspace add-window [--window ID] <workspace>")
	fmt.Fprintln(os.Stderr, "  multimanager workspace remove-window <workspace> <window>")
	fmt.Fprintln(os.Stderr, "  multimanager workspace move-window <workspace> <from> <to>")
	fmt.Fprintln(os.Stderr, "  multimanager workspace recapture <workspace> <window>")
	fmt.Fprintln(os.Stderr, "  multimanager workspace set-home|set-target <workspace> <window>")
	fmt.Fprintln(os.Stderr, "")
	fmt.Fprintln(os.Stderr, "<workspace> is a name or a list index; <window> is an index within the workspace.")
	fmt.Fprintln(os.Stderr, "Chords look like Ctrl+Alt+H or Win+Shift+F1.")
}

func runWorkspace(args []string) int {
	if len(args) == 0 || args[0] == "help" || args[0] == "-h" || args[0] == "--help" {
		printWorkspaceUsage()
		return 2
	}

	switch args[0] {
	case "list":
		return runWorkspaceList(args[1:])
	case "new":
		return runWorkspaceNew(args[1:])
	case "delete":
		return editWorkspace("delete", "workspace delete <workspace>", args[1:], 0,
			func(s *session, index int, _ []string) error {
				return s.manager.Delete(index)
			})
	case "rename":
		return editWorkspace("rename", "workspace rename <workspace> <new-name>", args[1:], 1,
			func(s *session, index int, rest []string) error {
				return s.manager.Rename(index, rest[0])
			})
	case "move":
		return editWorkspace("move", "workspace move <workspace> <position>", args[1:], 1,
			func(s *session, index int, rest []string) error {
				to, err := strconv.Atoi(rest[0])
				if err != nil || to < 0 {
					return fmt.Errorf("invalid workspace position %q", rest[0])
				}
				return s.manager.MoveWorkspace(index, to)
			})
	case "hotkey":
		return runWorkspaceHotkey(args[1:])
	case "enable", "disable":
		disabled := args[0] == "disable"
		return editWorkspace(args[0], "workspace "+args[0]+" <workspace>", args[1:], 0,
			func(s *session, index int, _ []string) error {
				return s.manager.SetDisabled(index, disabled)
			})
	case "rotate":
		return editWorkspace("rotate", "workspace rotate <workspace> on|off", args[1:], 1,
			func(s *session, index int, rest []string) error {
				on, err := parseOnOff(rest[0])
				if err != nil {
					return err
				}
				return s.manager.SetRotate(index, on)
			})
	case "add-window":
		return runWorkspaceAddWindow(args[1:])
	case "remove-window":
		return editWorkspace("remove-window", "workspace remove-window <workspace> <window>", args[1:], 1,
			func(s *session, index int, rest []string) error {
				w, err := parseWindowIndex(rest[0])
				if err != nil {
					return err
				}
				return s.manager.RemoveWindow(index, w)
			})
	case "move-window":
		return editWorkspace("move-window", "workspace move-window <workspace> <from> <to>", args[1:], 2,
			func(s *session, index int, rest []string) error {
				from, err := parseWindowIndex(rest[0])
				if err != nil {
					return err
				}
				to, err := parseWindowIndex(rest[1])
				if err != nil {
					return err
				}
				return s.manager.MoveWindow(index, from, to)
			})
	case "recapture":
		return editWorkspace("recapture", "workspace recapture <workspace> <window>", args[1:], 1,
			func(s *session, index int, rest []string) error {
				w, err := parseWindowIndex(rest[0])
				if err != nil {
					return err
				}
				entry, err := s.manager.RecaptureWindow(index, w)
				if err != nil {
					return err
				}
				fmt.Printf("Recaptured %q (0x%08x)\n", entry.Title, uint32(entry.ID))
				return nil
			})
	case "set-home", "set-target":
		cmd := args[0]
		return editWorkspace(cmd, "workspace "+cmd+" <workspace> <window>", args[1:], 1,
			func(s *session, index int, rest []string) error {
				w, err := parseWindowIndex(rest[0])
				if err != nil {
					return err
				}
				var r platform.Rect
				if cmd == "set-home" {
					r, err = s.manager.SetHome(index, w)
				} else {
					r, err = s.manager.SetTarget(index, w)
				}
				if err != nil {
					return err
				}
				fmt.Printf("%s %s\n", strings.TrimPrefix(cmd, "set-"), r)
				return nil
			})
	default:
		fmt.Fprintf(os.Stderr, "Unknown workspace subcommand: %s\n\n", args[0])
		printWorkspaceUsage()
		return 2
	}
}

// editWorkspace runs fn against the workspace named by the first argument
// and commits the result. extra is the number of arguments after it.
func editWorkspace(name, usage string, args []string, extra int, fn func(s *session, index int, rest []string) error) int {
	fs, configPath := newFlagSet(name, usage)
	if code := parseFlags(fs, args, extra+1); code >= 0 {
		return code
	}

	s, err := openManager(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	index, err := resolveWorkspace(s.manager, fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := fn(s, index, fs.Args()[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return s.commit()
}

func runWorkspaceList(args []string) int {
	fs, configPath := newFlagSet("list", "workspace list [--config PATH]")
	if code := parseFlags(fs, args, 0); code >= 0 {
		return code
	}
	s, err := openManager(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	list := s.manager.Workspaces()
	if len(list) == 0 {
		fmt.Println("no workspaces")
		return 0
	}
	for i, ws := range list {
		var flags []string
		if ws.Disabled {
			flags = append(flags, "disabled")
		}
		if ws.Rotate {
			flags = append(flags, "rotate")
		}
		hotkey := ws.Hotkey
		if hotkey == "" {
			hotkey = "-"
		}
		line := fmt.Sprintf("%d. %s [%s]", i, ws.Name, hotkey)
		if len(flags) > 0 {
			line += " (" + strings.Join(flags, ", ") + ")"
		}
		fmt.Println(line)
		for j, w := range ws.Windows {
			state := "ok"
			if !w.Valid {
				state = "missing"
			}
			fmt.Printf("   %d. %-7s 0x%08x %q home %s target %s\n", j, state, uint32(w.ID), w.Title, w.Home, w.Target)
		}
	}
	return 0
}

func runWorkspaceNew(args []string) int {
	fs, configPath := newFlagSet("new", "workspace new [--hotkey CHORD] <name>")
	hotkey := fs.String("hotkey", "", "Hotkey chord, e.g. Ctrl+Alt+1")
	if code := parseFlags(fs, args, 1); code >= 0 {
		return code
	}

	s, err := openManager(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	index, err := s.manager.Add(fs.Arg(0), *hotkey)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("Created workspace %d: %s\n", index, fs.Arg(0))
	return s.commit()
}

func runWorkspaceHotkey(args []string) int {
	fs, configPath := newFlagSet("hotkey", "workspace hotkey <workspace> [CHORD]")
	if code := parseFlags(fs, args, -1); code >= 0 {
		return code
	}
	if fs.NArg() < 1 || fs.NArg() > 2 {
		fs.Usage()
		return 2
	}

	s, err := openManager(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	index, err := resolveWorkspace(s.manager, fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	if err := s.manager.SetHotkey(index, fs.Arg(1)); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return s.commit()
}

func runWorkspaceAddWindow(args []string) int {
	fs, configPath := newFlagSet("add-window", "workspace add-window [--window ID] <workspace>")
	windowFlag := fs.String("window", "", "Window id (decimal or 0x hex); default is the focused window")
	if code := parseFlags(fs, args, 1); code >= 0 {
		return code
	}

	s, err := openManager(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	index, err := resolveWorkspace(s.manager, fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}

	var entry workspace.WindowEntry
	if *windowFlag == "" {
		entry, err = s.manager.CaptureActiveWindow(index)
	} else {
		id, perr := strconv.ParseUint(*windowFlag, 0, 32)
		if perr != nil {
			fmt.Fprintf(os.Stderr, "invalid window id %q\n", *windowFlag)
			return 2
		}
		entry, err = s.manager.CaptureWindow(index, platform.WindowID(id))
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Printf("Added %q (0x%08x) at %s\n", entry.Title, uint32(entry.ID), entry.Home)
	return s.commit()
}

func parseOnOff(v string) (bool, error) {
	switch strings.ToLower(v) {
	case "on", "true", "yes", "1":
		return true, nil
	case "off", "false", "no", "0":
		return false, nil
	}
	return false, fmt.Errorf("expected on or off, got %q", v)
}

func runToggle(args []string) int {
	fs, configPath := newFlagSet("toggle", "toggle [--config PATH] <workspace>")
	if code := parseFlags(fs, args, 1); code >= 0 {
		return code
	}
	s, err := openManager(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	index, err := resolveWorkspace(s.manager, fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	res, err := s.manager.Toggle(index)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	printResult(res)
	// the rotation cursor moved
	return s.commit()
}

func runHome(args []string) int {
	fs, configPath := newFlagSet("home", "home [--config PATH] [workspace]")
	if code := parseFlags(fs, args, -1); code >= 0 {
		return code
	}
	if fs.NArg() > 1 {
		fs.Usage()
		return 2
	}
	s, err := openManager(*configPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	defer s.Close()

	if fs.NArg() == 0 {
		printResult(s.manager.SendAllHome())
		return 0
	}
	index, err := resolveWorkspace(s.manager, fs.Arg(0))
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	res, err := s.manager.SendHome(index)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	printResult(res)
	return 0
}

func printResult(res workspace.ToggleResult) {
	fmt.Printf("%s: moved %d, skipped %d, failed %d\n", res.Direction, res.Moved, res.Skipped, res.Failed)
}
