// Package prompt shows blocking yes/no questions and advisory notices.
package prompt

import (
	"fmt"
	"io"
	"log/slog"
	"os"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Prompter asks the user to confirm actions and shows advisory messages.
type Prompter interface {
	Confirm(message, title string) bool
	Notify(message, title string)
}

// Terminal prompts on the controlling terminal. When stdin is not a
// terminal, Confirm declines and Notify only logs.
type Terminal struct {
	out         io.Writer
	logger      *slog.Logger
	interactive func() bool
}

var _ Prompter = (*Terminal)(nil)

// NewTerminal returns a prompter writing notices to stderr.
func NewTerminal(logger *slog.Logger) *Terminal {
	if logger == nil {
		logger = slog.Default()
	}
	return &Terminal{
		out:    os.Stderr,
		logger: logger,
		interactive: func() bool {
			return term.IsTerminal(int(os.Stdin.Fd())) && term.IsTerminal(int(os.Stderr.Fd()))
		},
	}
}

var (
	titleStyle = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("15"))
	boxStyle   = lipgloss.NewStyle().
			Border(lipgloss.RoundedBorder()).
			BorderForeground(lipgloss.Color("62")).
			Padding(0, 1)
)

// Confirm blocks until the user answers. It returns false when there is no
// terminal to ask on or the prompt is aborted.
func (t *Terminal) Confirm(message, title string) bool {
	if !t.interactive() {
		t.logger.Warn("confirmation declined: no interactive terminal", "title", title, "message", message)
		return false
	}

	var ok bool
	err := huh.NewConfirm().
		Title(title).
		Description(message).
		Affirmative("Yes").
		Negative("No").
		Value(&ok).
		Run()
	if err != nil {
		t.logger.Debug("confirmation aborted", "title", title, "error", err)
		return false
	}
	return ok
}

// Notify prints a boxed notice. The message is always logged.
func (t *Terminal) Notify(message, title string) {
	t.logger.Info(message, "title", title)
	if !t.interactive() {
		return
	}
	fmt.Fprintln(t.out, Render(message, title))
}

// Render formats a notice the way Notify prints it.
func Render(message, title string) string {
	return boxStyle.Render(titleStyle.Render(title) + "\n" + message)
}

// Auto answers every confirmation with a fixed value and logs notices. It
// backs non-interactive commands and the daemon.
type Auto struct {
	Answer bool
	Logger *slog.Logger
}

var _ Prompter = Auto{}

func (a Auto) Confirm(message, title string) bool {
	a.log().Info("auto-answered confirmation", "title", title, "message", message, "answer", a.Answer)
	return a.Answer
}

func (a Auto) Notify(message, title string) {
	a.log().Info(message, "title", title)
}

func (a Auto) log() *slog.Logger {
	if a.Logger == nil {
		return slog.Default()
	}
	return a.Logger
}
