package cli

import (
	"context"
	"io"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/roach88/notes-sidecar/internal/config"
	"github.com/roach88/notes-sidecar/internal/journal"
	"github.com/roach88/notes-sidecar/internal/lock"
	"github.com/roach88/notes-sidecar/internal/logger"
	"github.com/roach88/notes-sidecar/internal/notes"
	"github.com/roach88/notes-sidecar/internal/notesapp"
	"github.com/roach88/notes-sidecar/internal/osa"
	"github.com/roach88/notes-sidecar/internal/sidecar"
)

// Backend supplies the two automation ports for a configuration.
type Backend func(cfg *config.Config, log *logger.Logger) (notes.Reader, notes.Writer)

// Deps are the process-level collaborators. Zero values select the real
// implementations.
type Deps struct {
	Stdout io.Writer
	Stderr io.Writer

	// Environ replaces the process environment for configuration.
	Environ map[string]string

	NewInvocationID func() string
	Backend         Backend
	Locker          lock.Acquirer
}

// RootOptions holds global flags and the state shared by all commands of
// one invocation.
type RootOptions struct {
	Flags config.Config

	deps         Deps
	cfg          *config.Config
	log          *logger.Logger
	invocationID string
	journal      *journal.Store

	result  any
	written bool
}

// NewRootCommand creates the root command for the sidecar.
func NewRootCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes-sidecar",
		Short: "Notes sidecar",
		Long: `A stateless command sidecar for Notes.app.

Every invocation prints exactly one JSON object to standard output:
  {"ok": true, "result": ...}
  {"ok": false, "error": {"code": ..., "message": ...}}`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return opts.setup(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return sidecar.InvalidArguments("A command is required.")
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return sidecar.Wrap(sidecar.CodeInvalidArguments, err, "%s", err.Error())
	})

	pf := cmd.PersistentFlags()
	pf.StringVar(&opts.Flags.File, "config", "", "YAML configuration file")
	pf.StringVar(&opts.Flags.LockDir, "lock-dir", "", "directory holding lock files")
	pf.StringVar(&opts.Flags.Osascript, "osascript", "", "path to osascript")
	pf.StringVar(&opts.Flags.AppName, "app-name", "", "scripting name of the Notes application")
	pf.IntVar(&opts.Flags.MaxFolderDepth, "max-folder-depth", 0, "deepest folder nesting to traverse")
	pf.StringVar(&opts.Flags.JournalPath, "journal-path", "", "SQLite mutation journal (disabled when empty)")
	pf.StringVar(&opts.Flags.LogLevel, "log-level", "", "log level for standard error")

	cmd.AddCommand(NewPingCommand(opts))
	cmd.AddCommand(NewNotesCommand(opts))
	cmd.AddCommand(NewJournalCommand(opts))

	return cmd
}

// Execute runs one invocation and returns the process exit code.
func Execute(ctx context.Context, args []string, deps Deps) int {
	if deps.Stdout == nil {
		deps.Stdout = io.Discard
	}
	if deps.Stderr == nil {
		deps.Stderr = io.Discard
	}
	if deps.NewInvocationID == nil {
		deps.NewInvocationID = newInvocationID
	}

	opts := &RootOptions{deps: deps, invocationID: deps.NewInvocationID()}
	opts.log = logger.New(deps.Stderr, logger.DefaultLevel, opts.invocationID)

	cmd := NewRootCommand(opts)
	if args == nil {
		// cobra falls back to os.Args for a nil slice.
		args = []string{}
	}
	cmd.SetArgs(args)
	cmd.SetOut(deps.Stderr)
	cmd.SetErr(deps.Stderr)

	err := usageError(cmd.ExecuteContext(ctx))
	opts.close()

	out := &OutputFormatter{Writer: deps.Stdout}
	if err != nil {
		opts.log.Error().
			Str("code", string(sidecar.CodeOf(err))).
			Err(err).
			Msg(sidecar.MessageOf(err))
		_ = out.Error(err)
		return ExitFailure
	}
	if !opts.written {
		// Help output only.
		return ExitSuccess
	}
	if werr := out.Success(opts.result); werr != nil {
		return ExitFailure
	}
	return ExitSuccess
}

func newInvocationID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// setup resolves configuration and the logger for the command about to run.
func (o *RootOptions) setup(cmd *cobra.Command) error {
	// Flag defaults are zero values, so unset flags never mask lower layers.
	cfg, err := config.Load(config.Sources{Flags: &o.Flags, Environ: o.deps.Environ})
	if err != nil {
		return sidecar.Wrap(sidecar.CodeInvalidArguments, err, "Invalid configuration: %v", err)
	}
	o.cfg = cfg

	level, _ := logger.ParseLevel(cfg.LogLevel)
	o.log = logger.New(o.deps.Stderr, level, o.invocationID).WithField("command", commandName(cmd))
	return nil
}

// commandName is the command path without the binary name.
func commandName(cmd *cobra.Command) string {
	name := cmd.Name()
	for p := cmd.Parent(); p != nil && p.HasParent(); p = p.Parent() {
		name = p.Name() + " " + name
	}
	return name
}

// respond records the result envelope for a successful command.
func (o *RootOptions) respond(result any) error {
	o.result = result
	o.written = true
	return nil
}

// service wires the Notes service for this invocation.
func (o *RootOptions) service() (*notes.Service, error) {
	backend := o.deps.Backend
	if backend == nil {
		backend = macBackend
	}
	reader, writer := backend(o.cfg, o.log)

	locker := o.deps.Locker
	if locker == nil {
		locker = lock.NewFileLocker(o.cfg.LockDir)
	}

	svcOpts := notes.Options{
		AppName:        o.cfg.AppName,
		MaxFolderDepth: o.cfg.MaxFolderDepth,
		InvocationID:   o.invocationID,
		Logger:         o.log,
	}
	if o.cfg.JournalPath != "" {
		st, err := o.openJournal()
		if err != nil {
			return nil, err
		}
		svcOpts.Journal = st
	}
	return notes.NewService(reader, writer, locker, svcOpts), nil
}

func (o *RootOptions) openJournal() (*journal.Store, error) {
	if o.journal != nil {
		return o.journal, nil
	}
	st, err := journal.Open(o.cfg.JournalPath)
	if err != nil {
		return nil, sidecar.Wrap(sidecar.CodeInternal, err, "Failed to open journal: %s", o.cfg.JournalPath)
	}
	o.journal = st
	return st, nil
}

func (o *RootOptions) close() {
	if o.journal == nil {
		return
	}
	if err := o.journal.Close(); err != nil {
		o.log.Warn().Err(err).Msg("journal close failed")
	}
	o.journal = nil
}

func macBackend(cfg *config.Config, log *logger.Logger) (notes.Reader, notes.Writer) {
	b := notesapp.New(osa.NewRunner(cfg.Osascript, cfg.AppName, log), cfg.AppName)
	return b, b
}
