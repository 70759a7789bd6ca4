package osa

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/roach88/notes-sidecar/internal/logger"
	"github.com/roach88/notes-sidecar/internal/sidecar"
)

// DefaultPath is where macOS ships osascript.
const DefaultPath = "/usr/bin/osascript"

// Language is an OSA language understood by osascript -l.
type Language string

const (
	AppleScript Language = "AppleScript"
	JavaScript  Language = "JavaScript"
)

// Executor runs a program, feeding stdin when non-nil, and returns its
// standard output and standard error. It is the seam between the runner and
// the operating system.
type Executor interface {
	Exec(ctx context.Context, name string, args []string, stdin []byte) (stdout []byte, stderr []byte, err error)
}

// ExecExecutor runs programs with os/exec.
type ExecExecutor struct{}

// Exec runs name synchronously. There is no timeout: the call blocks until
// the target application answers.
func (ExecExecutor) Exec(ctx context.Context, name string, args []string, stdin []byte) ([]byte, []byte, error) {
	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	if stdin != nil {
		cmd.Stdin = bytes.NewReader(stdin)
	}
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	err := cmd.Run()
	return stdout.Bytes(), stderr.Bytes(), err
}

// ScriptError is a native failure reported by osascript.
type ScriptError struct {
	// Number is the OSA/Apple Event error number, 0 when none was printed.
	Number int

	// Message is the native message with position prefixes removed.
	Message string
}

func (e *ScriptError) Error() string {
	return fmt.Sprintf("%s (%d)", e.Message, e.Number)
}

var (
	errNumberPattern = regexp.MustCompile(`\((-?\d+)\)\s*$`)
	positionPrefix   = regexp.MustCompile(`^\d+:\d+:\s*`)
)

// ParseScriptError extracts the error number and message from osascript stderr.
func ParseScriptError(stderr string) *ScriptError {
	text := strings.TrimSpace(stderr)
	se := &ScriptError{}

	if m := errNumberPattern.FindStringSubmatchIndex(text); m != nil {
		se.Number, _ = strconv.Atoi(text[m[2]:m[3]])
		text = strings.TrimSpace(text[:m[0]])
	}

	text = positionPrefix.ReplaceAllString(text, "")
	text = strings.TrimPrefix(text, "execution error: ")
	text = strings.TrimPrefix(text, "syntax error: ")
	se.Message = text
	return se
}

// Runner executes scripts through osascript.
type Runner struct {
	// Path is the osascript binary; DefaultPath when empty.
	Path string

	// AppName is used in permission-denied messages.
	AppName string

	Exec   Executor
	Logger *logger.Logger
}

// NewRunner returns a Runner that executes real processes.
func NewRunner(path, appName string, log *logger.Logger) *Runner {
	if log == nil {
		log = logger.Nop()
	}
	return &Runner{Path: path, AppName: appName, Exec: ExecExecutor{}, Logger: log}
}

// Run executes source in lang and returns standard output.
// Extra args are delivered to the script's run handler as argv.
func (r *Runner) Run(ctx context.Context, channel Channel, lang Language, source string, args ...string) ([]byte, error) {
	return r.RunInput(ctx, channel, lang, source, nil, args...)
}

// RunInput is Run with input written to the script's standard input, for
// values too large to pass as arguments.
func (r *Runner) RunInput(ctx context.Context, channel Channel, lang Language, source string, input []byte, args ...string) ([]byte, error) {
	path := r.Path
	if path == "" {
		path = DefaultPath
	}

	argv := []string{"-l", string(lang)}
	if lang == AppleScript {
		// Recompilable source form keeps list results unambiguous.
		argv = append(argv, "-s", "s")
	}
	argv = append(argv, "-e", source)
	argv = append(argv, args...)

	start := time.Now()
	stdout, stderr, err := r.Exec.Exec(ctx, path, argv, input)
	r.Logger.Debug().
		Str("channel", channel.String()).
		Str("language", string(lang)).
		Int("source_bytes", len(source)).
		Int("args", len(args)).
		Int("input_bytes", len(input)).
		Dur("duration", time.Since(start)).
		Bool("failed", err != nil).
		Msg("osascript")

	if err != nil {
		return nil, r.translate(channel, stderr, err)
	}
	return stdout, nil
}

// RunScript executes an AppleScript command on the scripted channel and
// decodes its result.
func (r *Runner) RunScript(ctx context.Context, source string) (Descriptor, error) {
	out, err := r.Run(ctx, ChannelScript, AppleScript, source)
	if err != nil {
		return Descriptor{}, err
	}
	return ParseDescriptor(string(out)), nil
}

func (r *Runner) translate(channel Channel, stderr []byte, cause error) error {
	var execErr *exec.Error
	if errors.As(cause, &execErr) {
		return sidecar.Wrap(sidecar.CodeInternal, cause, "Failed to start osascript.")
	}

	se := ParseScriptError(string(stderr))
	if se.Number == 0 && se.Message == "" {
		return sidecar.Wrap(sidecar.CodeInternal, cause, "osascript failed.")
	}

	code := Classify(channel, se.Number)
	msg := se.Message
	if code == sidecar.CodeNotAuthorized {
		msg = fmt.Sprintf("Automation permission denied for %s.app.", r.appName())
	}
	if msg == "" {
		msg = fmt.Sprintf("OSA error %d", se.Number)
	}
	return sidecar.Wrap(code, se, "%s", msg)
}

func (r *Runner) appName() string {
	if r.AppName == "" {
		return "Notes"
	}
	return r.AppName
}
