package notes

import (
	"context"

	"github.com/roach88/notes-sidecar/internal/richtext"
	"github.com/roach88/notes-sidecar/internal/sidecar"
)

// GetNoteParams selects a note and the optional parts of its detail.
type GetNoteParams struct {
	NoteID             string
	IncludePlaintext   bool
	IncludeBody        bool
	IncludeAttachments bool
}

// CreateNoteParams describes a new note. Nil pointers are absent options.
type CreateNoteParams struct {
	// FolderID is empty for the default folder of the default account.
	FolderID string

	Title     *string
	Plaintext *string
	Markdown  *string

	AttachFiles []string
}

// UpdateNoteParams describes an update. At most one content mode may be set,
// and the Set modes replace the body so they need AllowDestructive.
type UpdateNoteParams struct {
	NoteID           string
	Title            *string
	AllowDestructive bool

	SetPlaintext    *string
	SetMarkdown     *string
	AppendPlaintext *string
	AppendMarkdown  *string

	AttachFiles []string
}

// GetNote returns a note. Password-protected notes are LOCKED.
func (s *Service) GetNote(ctx context.Context, p GetNoteParams) (NoteDetail, error) {
	return guarded(ctx, s, "get-note", func() (NoteDetail, error) {
		n, err := s.resolveNote(ctx, p.NoteID)
		if err != nil {
			return NoteDetail{}, err
		}
		if n.PasswordProtected() {
			return NoteDetail{}, sidecar.Locked("Note is password protected.")
		}
		return s.detail(ctx, n, p.IncludePlaintext, p.IncludeBody, p.IncludeAttachments)
	})
}

// CreateNote makes a note, stores its sanitized body, then applies the
// title and attachments.
func (s *Service) CreateNote(ctx context.Context, p CreateNoteParams) (NoteDetail, error) {
	if p.Plaintext != nil && p.Markdown != nil {
		return NoteDetail{}, sidecar.InvalidArguments("Provide at most one of --plaintext and --markdown.")
	}
	files, err := absFiles(p.AttachFiles)
	if err != nil {
		return NoteDetail{}, err
	}

	body := richtext.PlaintextToHTML("")
	switch {
	case p.Plaintext != nil:
		body = richtext.PlaintextToHTML(*p.Plaintext)
	case p.Markdown != nil:
		body = richtext.MarkdownToSafeHTML(*p.Markdown)
	}

	var target string
	return mutating(ctx, s, "create-note", &target, func() (NoteDetail, error) {
		if p.FolderID != "" {
			f, err := s.resolveFolder(ctx, p.FolderID)
			if err != nil {
				return NoteDetail{}, err
			}
			if f.Shared() {
				return NoteDetail{}, sidecar.NotWritable("Shared folder is read-only.")
			}
		}

		title := ""
		if p.Title != nil {
			title = *p.Title
		}
		res, err := s.writer.RunScript(ctx, createNoteScript(s.appName, p.FolderID, title))
		if err != nil {
			return NoteDetail{}, err
		}
		id := res.StringValue()
		if id == "" {
			return NoteDetail{}, sidecar.Internal("Notes.app returned an empty note identifier.")
		}
		target = id

		n, err := s.resolveNote(ctx, id)
		if err != nil {
			return NoteDetail{}, err
		}
		if err := setText(ctx, n, FieldBody, body, "Failed to set note body."); err != nil {
			return NoteDetail{}, err
		}
		if p.Title != nil {
			if err := setText(ctx, n, FieldName, *p.Title, "Failed to set note title."); err != nil {
				return NoteDetail{}, err
			}
		}
		if len(files) > 0 {
			if _, err := s.attach(ctx, id, files); err != nil {
				return NoteDetail{}, err
			}
		}
		return s.refreshed(ctx, id)
	})
}

// UpdateNote retitles, rewrites or extends a note and optionally attaches
// files.
func (s *Service) UpdateNote(ctx context.Context, p UpdateNoteParams) (NoteDetail, error) {
	if err := validateUpdate(p); err != nil {
		return NoteDetail{}, err
	}
	files, err := absFiles(p.AttachFiles)
	if err != nil {
		return NoteDetail{}, err
	}

	target := p.NoteID
	return mutating(ctx, s, "update-note", &target, func() (NoteDetail, error) {
		n, err := s.writableNote(ctx, p.NoteID)
		if err != nil {
			return NoteDetail{}, err
		}

		if p.Title != nil {
			if err := setText(ctx, n, FieldName, *p.Title, "Failed to set note title."); err != nil {
				return NoteDetail{}, err
			}
		}
		if err := s.updateBody(ctx, n, p); err != nil {
			return NoteDetail{}, err
		}
		if len(files) > 0 {
			if _, err := s.attach(ctx, p.NoteID, files); err != nil {
				return NoteDetail{}, err
			}
		}
		return s.refreshed(ctx, p.NoteID)
	})
}

func validateUpdate(p UpdateNoteParams) error {
	modes := 0
	for _, v := range []*string{p.SetPlaintext, p.SetMarkdown, p.AppendPlaintext, p.AppendMarkdown} {
		if v != nil {
			modes++
		}
	}
	if modes > 1 {
		return sidecar.InvalidArguments("Provide at most one content update mode.")
	}
	if (p.SetPlaintext != nil || p.SetMarkdown != nil) && !p.AllowDestructive {
		return sidecar.InvalidArguments("--allow-destructive is required for --set-* operations.")
	}
	if p.Title == nil && modes == 0 && len(p.AttachFiles) == 0 {
		return sidecar.InvalidArguments("No updates provided.")
	}
	return nil
}

func (s *Service) updateBody(ctx context.Context, n Note, p UpdateNoteParams) error {
	switch {
	case p.SetPlaintext != nil:
		return setText(ctx, n, FieldBody, richtext.PlaintextToHTML(*p.SetPlaintext), "Failed to set note body.")
	case p.SetMarkdown != nil:
		return setText(ctx, n, FieldBody, richtext.MarkdownToSafeHTML(*p.SetMarkdown), "Failed to set note body.")
	case p.AppendPlaintext != nil:
		return appendBody(ctx, n, richtext.PlaintextToHTML(*p.AppendPlaintext))
	case p.AppendMarkdown != nil:
		return appendBody(ctx, n, richtext.MarkdownToSafeHTML(*p.AppendMarkdown))
	}
	return nil
}

func appendBody(ctx context.Context, n Note, addition string) error {
	existing, err := n.Text(ctx, FieldBody)
	if err != nil {
		return err
	}
	return setText(ctx, n, FieldBody, richtext.Append(existing, addition), "Failed to append note body.")
}

// DeleteNote removes a note and returns its identifier.
func (s *Service) DeleteNote(ctx context.Context, noteID string) (string, error) {
	target := noteID
	return mutating(ctx, s, "delete-note", &target, func() (string, error) {
		if _, err := s.writableNote(ctx, noteID); err != nil {
			return "", err
		}
		if _, err := s.writer.RunScript(ctx, deleteNoteScript(s.appName, noteID)); err != nil {
			return "", err
		}
		return noteID, nil
	})
}

// writableNote resolves a mutation target. Protected notes are LOCKED;
// shared notes and notes in shared folders are NOT_WRITABLE.
func (s *Service) writableNote(ctx context.Context, id string) (Note, error) {
	n, err := s.resolveNote(ctx, id)
	if err != nil {
		return nil, err
	}
	if n.PasswordProtected() {
		return nil, sidecar.Locked("Note is password protected.")
	}
	if n.Shared() {
		return nil, sidecar.NotWritable("Shared note is read-only.")
	}

	f, err := containerOf(ctx, n)
	if err != nil {
		return nil, err
	}
	if f.Shared() {
		return nil, sidecar.NotWritable("Note is in a shared folder and is read-only.")
	}
	return n, nil
}

// refreshed re-resolves a note after mutation and returns its detail with
// plaintext and attachments.
func (s *Service) refreshed(ctx context.Context, id string) (NoteDetail, error) {
	n, err := s.resolveNote(ctx, id)
	if err != nil {
		return NoteDetail{}, err
	}
	return s.detail(ctx, n, true, false, true)
}

func (s *Service) detail(ctx context.Context, n Note, plaintext, body, attachments bool) (NoteDetail, error) {
	f, err := containerOf(ctx, n)
	if err != nil {
		return NoteDetail{}, err
	}

	d := NoteDetail{
		NoteID:              n.ID(),
		FolderID:            f.ID(),
		Name:                n.Name(),
		CreationDate:        FormatDate(n.CreationDate()),
		ModificationDate:    FormatDate(n.ModificationDate()),
		IsPasswordProtected: n.PasswordProtected(),
		IsShared:            n.Shared(),
	}
	if plaintext {
		text, err := n.Text(ctx, FieldPlaintext)
		if err != nil {
			return NoteDetail{}, err
		}
		d.Plaintext = &text
	}
	if body {
		html, err := n.Text(ctx, FieldBody)
		if err != nil {
			return NoteDetail{}, err
		}
		d.BodyHTML = &html
	}
	if attachments {
		recs, err := attachmentRecords(ctx, n, true)
		if err != nil {
			return NoteDetail{}, err
		}
		d.Attachments = recs
	}
	return d, nil
}

func setText(ctx context.Context, n Note, field Field, value, failure string) error {
	if err := n.Set(ctx, field, value); err != nil {
		if sidecar.CodeOf(err) != sidecar.CodeInternal {
			return err
		}
		return sidecar.Wrap(sidecar.CodeInternal, err, "%s", failure)
	}
	return nil
}
