package report

import (
	"context"
	"fmt"
	"os/exec"
	"runtime"

	"github.com/rs/zerolog"
)

// Notifier is told about each artifact once it has been written.
type Notifier interface {
	Notify(ctx context.Context, a Artifact) error
}

// LogNotifier logs the artifact path.
type LogNotifier struct {
	Log zerolog.Logger
}

func (n LogNotifier) Notify(_ context.Context, a Artifact) error {
	n.Log.Info().Str("artifact", a.Name).Str("path", a.Path).Int("rows", a.Rows).Int("total_records", a.TotalRecords).Msg("Artifact written")
	return nil
}

// OpenNotifier logs the artifact and opens it with the host's default viewer.
type OpenNotifier struct {
	Log zerolog.Logger
	// GOOS selects the viewer command; runtime.GOOS when empty.
	GOOS string
	// Run starts the command; exec.CommandContext(...).Start when nil.
	Run func(ctx context.Context, name string, args ...string) error
}

func (n OpenNotifier) Notify(ctx context.Context, a Artifact) error {
	_ = LogNotifier{Log: n.Log}.Notify(ctx, a)

	name, args, err := OpenCommand(n.goos(), a.Path)
	if err != nil {
		return err
	}
	run := n.Run
	if run == nil {
		run = startCommand
	}
	if err := run(ctx, name, args...); err != nil {
		return fmt.Errorf("report: open %s: %w", a.Path, err)
	}
	return nil
}

func (n OpenNotifier) goos() string {
	if n.GOOS != "" {
		return n.GOOS
	}
	return runtime.GOOS
}

// OpenCommand returns the command that opens path on goos.
func OpenCommand(goos, path string) (string, []string, error) {
	switch goos {
	case "darwin":
		return "open", []string{path}, nil
	case "windows":
		return "cmd", []string{"/c", "start", "", path}, nil
	case "linux", "freebsd", "openbsd", "netbsd":
		return "xdg-open", []string{path}, nil
	default:
		return "", nil, fmt.Errorf("report: no viewer command for %s", goos)
	}
}

func startCommand(ctx context.Context, name string, args ...string) error {
	cmd := exec.CommandContext(ctx, name, args...)
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
