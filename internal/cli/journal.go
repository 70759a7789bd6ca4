package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/notes-sidecar/internal/journal"
	"github.com/roach88/notes-sidecar/internal/sidecar"
)

// JournalOptions holds flags for the journal command.
type JournalOptions struct {
	*RootOptions
	Limit int
}

// NewJournalCommand creates the command that lists recent mutations.
func NewJournalCommand(rootOpts *RootOptions) *cobra.Command {
	opts := &JournalOptions{RootOptions: rootOpts}

	cmd := &cobra.Command{
		Use:   "journal",
		Short: "List recent Notes mutations",
		Long: `List the most recent entries of the mutation journal, newest first.

The journal is written only when journal_path is configured.

Examples:
  notes-sidecar journal --journal-path ~/.cache/notes-sidecar/journal.db
  notes-sidecar journal --limit 5`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runJournal(cmd, opts)
		},
	}

	cmd.Flags().IntVar(&opts.Limit, "limit", 50, "maximum number of entries")
	return cmd
}

func runJournal(cmd *cobra.Command, opts *JournalOptions) error {
	if opts.Limit <= 0 {
		return sidecar.InvalidArguments("--limit must be > 0")
	}
	if opts.cfg.JournalPath == "" {
		return sidecar.InvalidArguments("journal_path is not configured.")
	}

	st, err := opts.openJournal()
	if err != nil {
		return err
	}
	entries, err := st.Recent(cmd.Context(), opts.Limit)
	if err != nil {
		return sidecar.Wrap(sidecar.CodeInternal, err, "Failed to read journal.")
	}
	if entries == nil {
		entries = []journal.Entry{}
	}
	return opts.respond(map[string]any{"entries": entries})
}
