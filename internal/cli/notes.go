package cli

import (
	"github.com/spf13/cobra"

	"github.com/roach88/notes-sidecar/internal/notes"
	"github.com/roach88/notes-sidecar/internal/sidecar"
)

// NewNotesCommand creates the notes command group.
func NewNotesCommand(opts *RootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "notes",
		Short: "Operate on Notes.app",
		Long: `Read and modify accounts, folders, notes and attachments in Notes.app.

Every subcommand holds the process-wide notes lock while it talks to
Notes.app, so concurrent invocations run one at a time.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			return sidecar.InvalidArguments("A notes subcommand is required.")
		},
	}

	cmd.AddCommand(
		newAccountsCommand(opts),
		newFoldersCommand(opts),
		newListNotesCommand(opts),
		newGetNoteCommand(opts),
		newCreateNoteCommand(opts),
		newUpdateNoteCommand(opts),
		newDeleteNoteCommand(opts),
		newAttachmentsCommand(opts),
		newAddAttachmentCommand(opts),
		newSaveAttachmentCommand(opts),
	)
	return cmd
}

// notesCommand builds a leaf command whose body receives the wired service.
func notesCommand(opts *RootOptions, use, short string, run func(cmd *cobra.Command, svc *notes.Service) (any, error)) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := opts.service()
			if err != nil {
				return err
			}
			result, err := run(cmd, svc)
			if err != nil {
				return err
			}
			return opts.respond(result)
		},
	}
}

// optional returns a pointer to value when the flag was given.
func optional(cmd *cobra.Command, name, value string) *string {
	if !cmd.Flags().Changed(name) {
		return nil
	}
	return &value
}

func newAccountsCommand(opts *RootOptions) *cobra.Command {
	return notesCommand(opts, "accounts", "List accounts", func(cmd *cobra.Command, svc *notes.Service) (any, error) {
		accounts, err := svc.ListAccounts(cmd.Context())
		if err != nil {
			return nil, err
		}
		return map[string]any{"accounts": accounts}, nil
	})
}

func newFoldersCommand(opts *RootOptions) *cobra.Command {
	var p notes.ListFoldersParams
	cmd := notesCommand(opts, "folders", "List folders", func(cmd *cobra.Command, svc *notes.Service) (any, error) {
		folders, err := svc.ListFolders(cmd.Context(), p)
		if err != nil {
			return nil, err
		}
		return map[string]any{"folders": folders}, nil
	})

	f := cmd.Flags()
	f.StringArrayVar(&p.AccountIDs, "account-id", nil, "restrict to an account (repeatable)")
	f.StringVar(&p.ParentFolderID, "parent-folder-id", "", "list the children of this folder")
	f.BoolVar(&p.Recursive, "recursive", false, "descend into subfolders")
	f.BoolVar(&p.IncludeShared, "include-shared", false, "include shared folders")
	f.BoolVar(&p.IncludeRecentlyDeleted, "include-recently-deleted", false, "include the Recently Deleted folder")
	return cmd
}

func newListNotesCommand(opts *RootOptions) *cobra.Command {
	var p notes.ListNotesParams
	cmd := notesCommand(opts, "notes", "List and search notes", func(cmd *cobra.Command, svc *notes.Service) (any, error) {
		list, err := svc.ListNotes(cmd.Context(), p)
		if err != nil {
			return nil, err
		}
		return map[string]any{"notes": list}, nil
	})

	f := cmd.Flags()
	f.StringArrayVar(&p.AccountIDs, "account-id", nil, "restrict to an account (repeatable)")
	f.StringArrayVar(&p.FolderIDs, "folder-id", nil, "restrict to a folder (repeatable)")
	f.StringVar(&p.Query, "query", "", "case-insensitive match on title, then plaintext")
	f.BoolVar(&p.IncludeExcerpt, "include-plaintext-excerpt", false, "include a plaintext excerpt")
	f.IntVar(&p.ExcerptMaxLength, "plaintext-excerpt-max-len", notes.DefaultExcerptMaxLength, "excerpt length in characters")
	f.BoolVar(&p.IncludeShared, "include-shared", false, "include shared notes")
	f.BoolVar(&p.IncludeRecentlyDeleted, "include-recently-deleted", false, "include notes in Recently Deleted")
	f.IntVar(&p.Limit, "limit", notes.DefaultNoteLimit, "maximum number of notes")
	return cmd
}

func newGetNoteCommand(opts *RootOptions) *cobra.Command {
	var (
		p             notes.GetNoteParams
		noPlaintext   bool
		noAttachments bool
	)
	cmd := notesCommand(opts, "get-note", "Fetch one note", func(cmd *cobra.Command, svc *notes.Service) (any, error) {
		params := p
		params.IncludePlaintext = p.IncludePlaintext && !noPlaintext
		params.IncludeAttachments = p.IncludeAttachments && !noAttachments
		d, err := svc.GetNote(cmd.Context(), params)
		if err != nil {
			return nil, err
		}
		return map[string]any{"note": d}, nil
	})

	f := cmd.Flags()
	f.StringVar(&p.NoteID, "note-id", "", "note identifier (required)")
	_ = cmd.MarkFlagRequired("note-id")
	f.BoolVar(&p.IncludePlaintext, "include-plaintext", true, "include plaintext")
	f.BoolVar(&noPlaintext, "no-include-plaintext", false, "omit plaintext")
	f.BoolVar(&p.IncludeBody, "include-body-html", false, "include the HTML body")
	f.BoolVar(&p.IncludeAttachments, "include-attachments", true, "include attachments")
	f.BoolVar(&noAttachments, "no-include-attachments", false, "omit attachments")
	return cmd
}

func newCreateNoteCommand(opts *RootOptions) *cobra.Command {
	var (
		p                          notes.CreateNoteParams
		title, plaintext, markdown string
	)
	cmd := notesCommand(opts, "create-note", "Create a note", func(cmd *cobra.Command, svc *notes.Service) (any, error) {
		params := p
		params.Title = optional(cmd, "title", title)
		params.Plaintext = optional(cmd, "plaintext", plaintext)
		params.Markdown = optional(cmd, "markdown", markdown)
		d, err := svc.CreateNote(cmd.Context(), params)
		if err != nil {
			return nil, err
		}
		return map[string]any{"note": d}, nil
	})

	f := cmd.Flags()
	f.StringVar(&p.FolderID, "folder-id", "", "target folder (default folder of the default account when omitted)")
	f.StringVar(&title, "title", "", "note title")
	f.StringVar(&plaintext, "plaintext", "", "body as plaintext")
	f.StringVar(&markdown, "markdown", "", "body as Markdown")
	f.StringArrayVar(&p.AttachFiles, "attach-file", nil, "file to attach (repeatable)")
	return cmd
}

func newUpdateNoteCommand(opts *RootOptions) *cobra.Command {
	var (
		p                                      notes.UpdateNoteParams
		title                                  string
		setPlain, setMD, appendPlain, appendMD string
	)
	cmd := notesCommand(opts, "update-note", "Update a note", func(cmd *cobra.Command, svc *notes.Service) (any, error) {
		params := p
		params.Title = optional(cmd, "title", title)
		params.SetPlaintext = optional(cmd, "set-plaintext", setPlain)
		params.SetMarkdown = optional(cmd, "set-markdown", setMD)
		params.AppendPlaintext = optional(cmd, "append-plaintext", appendPlain)
		params.AppendMarkdown = optional(cmd, "append-markdown", appendMD)
		d, err := svc.UpdateNote(cmd.Context(), params)
		if err != nil {
			return nil, err
		}
		return map[string]any{"note": d}, nil
	})

	f := cmd.Flags()
	f.StringVar(&p.NoteID, "note-id", "", "note identifier (required)")
	_ = cmd.MarkFlagRequired("note-id")
	f.StringVar(&title, "title", "", "new title")
	f.BoolVar(&p.AllowDestructive, "allow-destructive", false, "permit --set-* to replace the body")
	f.StringVar(&setPlain, "set-plaintext", "", "replace the body with plaintext")
	f.StringVar(&setMD, "set-markdown", "", "replace the body with Markdown")
	f.StringVar(&appendPlain, "append-plaintext", "", "append plaintext to the body")
	f.StringVar(&appendMD, "append-markdown", "", "append Markdown to the body")
	f.StringArrayVar(&p.AttachFiles, "attach-file", nil, "file to attach (repeatable)")
	return cmd
}

func newDeleteNoteCommand(opts *RootOptions) *cobra.Command {
	var noteID string
	cmd := notesCommand(opts, "delete-note", "Delete a note", func(cmd *cobra.Command, svc *notes.Service) (any, error) {
		id, err := svc.DeleteNote(cmd.Context(), noteID)
		if err != nil {
			return nil, err
		}
		return map[string]any{"deleted_note_id": id}, nil
	})

	cmd.Flags().StringVar(&noteID, "note-id", "", "note identifier (required)")
	_ = cmd.MarkFlagRequired("note-id")
	return cmd
}

func newAttachmentsCommand(opts *RootOptions) *cobra.Command {
	var (
		noteID        string
		includeShared bool
	)
	cmd := notesCommand(opts, "attachments", "List the attachments of a note", func(cmd *cobra.Command, svc *notes.Service) (any, error) {
		atts, err := svc.ListAttachments(cmd.Context(), noteID, includeShared)
		if err != nil {
			return nil, err
		}
		return map[string]any{"attachments": atts}, nil
	})

	f := cmd.Flags()
	f.StringVar(&noteID, "note-id", "", "note identifier (required)")
	_ = cmd.MarkFlagRequired("note-id")
	f.BoolVar(&includeShared, "include-shared", false, "include shared attachments")
	return cmd
}

func newAddAttachmentCommand(opts *RootOptions) *cobra.Command {
	var (
		noteID string
		files  []string
	)
	cmd := notesCommand(opts, "add-attachment", "Attach files to a note", func(cmd *cobra.Command, svc *notes.Service) (any, error) {
		atts, err := svc.AddAttachments(cmd.Context(), noteID, files)
		if err != nil {
			return nil, err
		}
		return map[string]any{"attachments": atts}, nil
	})

	f := cmd.Flags()
	f.StringVar(&noteID, "note-id", "", "note identifier (required)")
	_ = cmd.MarkFlagRequired("note-id")
	f.StringArrayVar(&files, "attach-file", nil, "file to attach (repeatable)")
	return cmd
}

func newSaveAttachmentCommand(opts *RootOptions) *cobra.Command {
	var (
		attachmentID, output string
		overwrite            bool
	)
	cmd := notesCommand(opts, "save-attachment", "Export an attachment to a file", func(cmd *cobra.Command, svc *notes.Service) (any, error) {
		path, err := svc.SaveAttachment(cmd.Context(), attachmentID, output, overwrite)
		if err != nil {
			return nil, err
		}
		return map[string]any{"output_path": path}, nil
	})

	f := cmd.Flags()
	f.StringVar(&attachmentID, "attachment-id", "", "attachment identifier (required)")
	_ = cmd.MarkFlagRequired("attachment-id")
	f.StringVar(&output, "output-path", "", "destination file (required)")
	_ = cmd.MarkFlagRequired("output-path")
	f.BoolVar(&overwrite, "overwrite", false, "replace an existing destination file")
	return cmd
}
