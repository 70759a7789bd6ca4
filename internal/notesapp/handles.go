package notesapp

import (
	"context"
	"time"

	"github.com/roach88/notes-sidecar/internal/notes"
	"github.com/roach88/notes-sidecar/internal/sidecar"
)

type account struct {
	b   *Binding
	rec accountJSON
}

func (a *account) ID() string     { return a.rec.ID }
func (a *account) Name() string   { return a.rec.Name }
func (a *account) Upgraded() bool { return a.rec.Upgraded }

func (a *account) DefaultFolder(ctx context.Context) (notes.Folder, error) {
	var rec folderJSON
	if err := a.b.query(ctx, &rec, "account-default-folder", a.rec.ID); err != nil {
		return nil, err
	}
	return &folder{b: a.b, rec: rec}, nil
}

func (a *account) Folders(ctx context.Context) ([]notes.Folder, error) {
	return a.b.subtree(ctx, "account-tree", a.rec.ID)
}

// folder is a folder handle. tree is set when the folder was read as part of
// a forest, in which case its subfolders are already known.
type folder struct {
	b    *Binding
	rec  folderJSON
	tree *folderTreeJSON
}

func (f *folder) ID() string   { return f.rec.ID }
func (f *folder) Name() string { return f.rec.Name }
func (f *folder) Shared() bool { return f.rec.Shared }

func (f *folder) Folders(ctx context.Context) ([]notes.Folder, error) {
	if f.tree != nil {
		if node, ok := f.tree.Folders[f.rec.ID]; ok {
			return f.tree.handles(f.b, node.Children), nil
		}
	}
	return f.b.subtree(ctx, "folder-tree", f.rec.ID)
}

// note carries the scalar properties read when it was resolved.
type note struct {
	b        *Binding
	rec      noteJSON
	created  time.Time
	modified time.Time
}

func (n *note) ID() string                  { return n.rec.ID }
func (n *note) Name() string                { return n.rec.Name }
func (n *note) CreationDate() time.Time     { return n.created }
func (n *note) ModificationDate() time.Time { return n.modified }
func (n *note) PasswordProtected() bool     { return n.rec.Protected }
func (n *note) Shared() bool                { return n.rec.Shared }
func (n *note) AttachmentCount() int        { return n.rec.Attachments }

// Container returns the folder read together with the note, falling back to
// a lookup when the enumeration could not read it.
func (n *note) Container(ctx context.Context) (notes.Folder, error) {
	if n.rec.Folder != nil {
		return &folder{b: n.b, rec: *n.rec.Folder}, nil
	}
	var rec folderJSON
	if err := n.b.query(ctx, &rec, "note-container", n.rec.ID); err != nil {
		return nil, err
	}
	return &folder{b: n.b, rec: rec}, nil
}

func (n *note) Text(ctx context.Context, field notes.Field) (string, error) {
	key, ok := nativeKeys[field]
	if !ok {
		return "", sidecar.Internal("Unknown note field: %s", field)
	}
	var rec textJSON
	if err := n.b.query(ctx, &rec, "note-text", n.rec.ID, key); err != nil {
		return "", err
	}
	return rec.Value, nil
}

func (n *note) Set(ctx context.Context, field notes.Field, value string) error {
	if field == notes.FieldPlaintext {
		return sidecar.Internal("Note plaintext is read-only.")
	}
	key, ok := nativeKeys[field]
	if !ok {
		return sidecar.Internal("Unknown note field: %s", field)
	}
	var rec struct{}
	if err := n.b.queryInput(ctx, &rec, "note-set", []byte(value), n.rec.ID, key); err != nil {
		return err
	}
	if field == notes.FieldName {
		n.rec.Name = value
	}
	return nil
}

func (n *note) Attachments(ctx context.Context) ([]notes.Attachment, error) {
	var recs []attachmentJSON
	if err := n.b.query(ctx, &recs, "note-attachments", n.rec.ID); err != nil {
		return nil, err
	}
	out := make([]notes.Attachment, len(recs))
	for i, r := range recs {
		out[i] = newAttachment(r)
	}
	return out, nil
}

type attachment struct {
	rec      attachmentJSON
	created  time.Time
	modified time.Time
}

func newAttachment(r attachmentJSON) *attachment {
	return &attachment{rec: r, created: parseDate(r.Created), modified: parseDate(r.Modified)}
}

func (a *attachment) ID() string                  { return a.rec.ID }
func (a *attachment) Name() string                { return a.rec.Name }
func (a *attachment) ContentIdentifier() string   { return a.rec.CID }
func (a *attachment) CreationDate() time.Time     { return a.created }
func (a *attachment) ModificationDate() time.Time { return a.modified }
func (a *attachment) URL() string                 { return a.rec.URL }
func (a *attachment) Shared() bool                { return a.rec.Shared }
