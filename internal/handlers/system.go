package handlers

import (
	"context"
	"os/exec"
	"strings"

	"friday/internal/session"
)

// CommandRunner abstracts process launching so the system handler can
// be tested without side effects. Output runs to completion and returns
// stdout; Start fires and forgets.
type CommandRunner interface {
	Output(ctx context.Context, name string, args ...string) (string, error)
	Start(name string, args ...string) error
}

// ExecRunner is the real CommandRunner over os/exec.
type ExecRunner struct{}

func (ExecRunner) Output(ctx context.Context, name string, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, name, args...).Output()
	return strings.TrimSpace(string(out)), err
}

func (ExecRunner) Start(name string, args ...string) error {
	return exec.Command(name, args...).Start()
}

func newSystemHandler(svc Services) Handler {
	return func(ctx context.Context, _ *session.Session, utterance string) string {
		if svc.Runner == nil {
			return "System commands aren't available here."
		}
		lower := strings.ToLower(utterance)

		launch := func(reply, name string, args ...string) string {
			if err := svc.Runner.Start(name, args...); err != nil {
				return "Couldn't run that: " + err.Error()
			}
			return reply
		}

		switch {
		case strings.Contains(lower, "firefox"):
			return launch("Opening Firefox.", "firefox")
		case strings.Contains(lower, "chrome"):
			return launch("Opening Chrome.", "google-chrome")
		case strings.Contains(lower, "code"):
			return launch("Opening VS Code.", "code")
		case strings.Contains(lower, "terminal"):
			return launch("Opening a terminal.", "gnome-terminal")
		case strings.Contains(lower, "shutdown"):
			if _, err := svc.Runner.Output(ctx, "shutdown", "now"); err != nil {
				return "Couldn't run that: " + err.Error()
			}
			return "Shutting down the system. Goodbye!"
		case strings.Contains(lower, "restart"), strings.Contains(lower, "reboot"):
			if _, err := svc.Runner.Output(ctx, "reboot"); err != nil {
				return "Couldn't run that: " + err.Error()
			}
			return "Restarting the system."
		case strings.Contains(lower, "volume up"):
			if _, err := svc.Runner.Output(ctx, "pactl", "set-sink-volume", "@DEFAULT_SINK@", "+10%"); err != nil {
				return "Couldn't run that: " + err.Error()
			}
			return "Volume increased."
		case strings.Contains(lower, "volume down"):
			if _, err := svc.Runner.Output(ctx, "pactl", "set-sink-volume", "@DEFAULT_SINK@", "-10%"); err != nil {
				return "Couldn't run that: " + err.Error()
			}
			return "Volume decreased."
		case strings.Contains(lower, "system info"):
			out, err := svc.Runner.Output(ctx, "uname", "-a")
			if err != nil {
				return "Couldn't read system info: " + err.Error()
			}
			return "System info: " + out
		case strings.Contains(lower, "ip"):
			out, err := svc.Runner.Output(ctx, "hostname", "-I")
			if err != nil {
				return "Couldn't read the IP address: " + err.Error()
			}
			fields := strings.Fields(out)
			if len(fields) == 0 {
				return "No IP address found."
			}
			return "Your IP address is " + fields[0] + "."
		default:
			return "System command not recognized."
		}
	}
}

// RunShell executes a raw "!command" escape line through the shell and
// returns combined output, truncated to something speakable.
func RunShell(ctx context.Context, line string) string {
	out, err := exec.CommandContext(ctx, "sh", "-c", line).CombinedOutput()
	text := strings.TrimSpace(string(out))
	if err != nil {
		if text == "" {
			return "Command failed: " + err.Error()
		}
		return "Command failed: " + text
	}
	if text == "" {
		return "Done."
	}
	if len(text) > 400 {
		text = text[:400] + "..."
	}
	return text
}
