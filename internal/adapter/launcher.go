package adapter

import (
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"runtime"
	"strings"

	"github.com/mmcdole/lectern/internal/domain"
)

// ErrNoFileURL is returned when a content has nothing to open
var ErrNoFileURL = errors.New("content has no file URL")

// Launcher opens content files in an external viewer
type Launcher struct {
	command string   // configured viewer command, empty to auto-detect
	args    []string // additional arguments for the viewer
	logger  *slog.Logger

	// swapped in tests
	lookPath func(file string) (string, error)
	start    func(cmd *exec.Cmd) error
}

// launchPath defines a single way to launch a viewer
type launchPath struct {
	path      string   // Command path: "mpv", "zathura", or "open-a:AppName"
	openFlags []string // For "open-a:" paths only - flags for macOS open command
}

// viewers registry - platform -> launch paths to try in order
var viewers = map[string]map[string][]launchPath{
	"mpv": {
		"darwin":  {{path: "mpv"}},
		"linux":   {{path: "mpv"}},
		"windows": {{path: "mpv"}},
	},
	"vlc": {
		"darwin":  {{path: "vlc"}, {path: "open-a:VLC"}},
		"linux":   {{path: "vlc"}},
		"windows": {{path: "vlc"}},
	},
	"iina": {
		"darwin": {{path: "open-a:IINA", openFlags: []string{"-n"}}},
	},
	"zathura": {
		"linux": {{path: "zathura"}},
	},
	"evince": {
		"linux": {{path: "evince"}},
	},
	"okular": {
		"linux": {{path: "okular"}},
	},
	"preview": {
		"darwin": {{path: "open-a:Preview"}},
	},
	"sumatra": {
		"windows": {{path: "SumatraPDF.exe"}},
	},
}

// candidateViewers defines the preferred viewer order per content type and platform
var candidateViewers = map[domain.ContentType]map[string][]string{
	domain.ContentTypeVideo: {
		"darwin":  {"iina", "vlc", "mpv"},
		"linux":   {"mpv", "vlc"},
		"windows": {"vlc", "mpv"},
	},
	domain.ContentTypePDF: {
		"darwin":  {"preview"},
		"linux":   {"zathura", "evince", "okular"},
		"windows": {"sumatra"},
	},
}

// NewLauncher creates a new Launcher
func NewLauncher(command string, args []string, logger *slog.Logger) *Launcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Launcher{
		command:  command,
		args:     args,
		logger:   logger,
		lookPath: exec.LookPath,
		start:    (*exec.Cmd).Start,
	}
}

// Open opens a content's file in the configured viewer, a detected viewer
// for its type, or the system default handler.
func (l *Launcher) Open(content domain.Content) error {
	url := content.FileURL
	if url == "" {
		return ErrNoFileURL
	}

	// Tier 1: User configured a specific viewer
	if l.command != "" {
		args := append(append([]string{}, l.args...), url)
		l.logger.Info("launching viewer", "command", l.command, "args", args)
		return l.start(exec.Command(l.command, args...))
	}

	// Tier 2: Try the candidate chain for this content type
	if name, err := l.detectAndLaunch(content.Type, url); err == nil {
		l.logger.Info("launched with detected viewer", "viewer", name, "contentID", content.ID)
		return nil
	}

	// Tier 3: Fall back to system default (open/xdg-open/start)
	l.logger.Info("no candidate viewers found, using system default")
	return l.start(defaultOpenCommand(runtime.GOOS, url))
}

// detectAndLaunch tries candidate viewers in order.
// Returns the viewer name that succeeded.
func (l *Launcher) detectAndLaunch(typ domain.ContentType, url string) (string, error) {
	candidates := candidateViewers[typ][runtime.GOOS]
	for _, name := range candidates {
		for _, lp := range viewers[name][runtime.GOOS] {
			var err error
			if app, ok := strings.CutPrefix(lp.path, "open-a:"); ok {
				args := append(append([]string{}, lp.openFlags...), "-a", app, url)
				err = exec.Command("open", args...).Run()
			} else if _, err = l.lookPath(lp.path); err == nil {
				err = l.start(exec.Command(lp.path, url))
			}
			if err == nil {
				return name, nil
			}
			l.logger.Debug("launch path not available", "viewer", name, "path", lp.path, "error", err)
		}
	}
	return "", fmt.Errorf("no candidate viewers for %s", typ)
}

// defaultOpenCommand returns the system default handler for url
func defaultOpenCommand(goos, url string) *exec.Cmd {
	switch goos {
	case "darwin":
		return exec.Command("open", url)
	case "windows":
		return exec.Command("cmd", "/c", "start", "", url)
	default:
		return exec.Command("xdg-open", url)
	}
}
