// Package console renders progress events as prefixed lines for the
// command-line front end.
package console

import (
	"fmt"
	"io"
	"os"
	"sync"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"
	"golang.org/x/term"

	"github.com/handiism/yt-harvester/internal/download"
	"github.com/handiism/yt-harvester/internal/model"
)

var (
	infoStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("#A8DADC"))
	successStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#95E1A3"))
	warningStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#FFE66D"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("#FF6B6B"))
	dimStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("#6C757D"))
)

// Prefix returns the line prefix for level.
func Prefix(level model.ProgressLevel) string {
	switch level {
	case model.LevelWarning:
		return "[WARN]: "
	case model.LevelError:
		return "[ERROR]: "
	case model.LevelVerbose:
		return "[DEBUG]: "
	default:
		return "[INFO]: "
	}
}

// Renderer writes progress events to a terminal or a plain stream.
//
// Each stream is styled only when it is a terminal, so redirected output
// stays free of escape sequences. Errors go to errOut.
type Renderer struct {
	out     stream
	errOut  stream
	verbose bool

	mu sync.Mutex
}

type stream struct {
	w      io.Writer
	styled bool
}

// New creates a Renderer. Verbose events are dropped unless verbose is set.
func New(out, errOut io.Writer, verbose bool) *Renderer {
	return &Renderer{
		out:     stream{w: out, styled: isTerminal(out)},
		errOut:  stream{w: errOut, styled: isTerminal(errOut)},
		verbose: verbose,
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}

// Handle renders one event. Its signature matches model.ProgressFunc and
// it is safe for concurrent use.
func (r *Renderer) Handle(event model.ProgressEvent) {
	if event.Level == model.LevelVerbose && !r.verbose {
		return
	}

	r.println(r.streamFor(event.Level), event.Level, event.Message)
}

func (r *Renderer) streamFor(level model.ProgressLevel) stream {
	if level == model.LevelError {
		return r.errOut
	}
	return r.out
}

// Info prints an informational line.
func (r *Renderer) Info(format string, args ...any) {
	r.println(r.out, model.LevelInfo, fmt.Sprintf(format, args...))
}

// Error prints err on the error stream.
func (r *Renderer) Error(err error) {
	r.println(r.errOut, model.LevelError, err.Error())
}

func (r *Renderer) println(s stream, level model.ProgressLevel, message string) {
	line := Prefix(level) + message
	if s.styled {
		line = styleFor(level).Render(line)
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	fmt.Fprintln(s.w, line)
}

func styleFor(level model.ProgressLevel) lipgloss.Style {
	switch level {
	case model.LevelSuccess:
		return successStyle
	case model.LevelWarning:
		return warningStyle
	case model.LevelError:
		return errorStyle
	case model.LevelVerbose:
		return dimStyle
	default:
		return infoStyle
	}
}

// Summary prints the closing lines of a run.
func (r *Renderer) Summary(report *download.Report, elapsed time.Duration) {
	if report != nil {
		r.Info("Downloaded %d/%d files (%s)", report.Downloaded, report.Planned, humanize.Bytes(uint64(report.Bytes)))
		if report.Failed > 0 {
			r.println(r.out, model.LevelWarning, fmt.Sprintf("%d item(s) failed", report.Failed))
		}
		if report.Playlist != "" {
			r.Info("Playlist: %s", report.Playlist)
		}
	}
	r.Info("Execution time: %s", elapsed.Round(time.Millisecond))
}
