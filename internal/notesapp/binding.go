package notesapp

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"time"

	"github.com/roach88/notes-sidecar/internal/notes"
	"github.com/roach88/notes-sidecar/internal/osa"
	"github.com/roach88/notes-sidecar/internal/sidecar"
)

//go:embed jxa/reader.js
var readerSource string

// nativeKeys maps note fields to Notes scripting properties. It is the only
// place property names appear on the Go side.
var nativeKeys = map[notes.Field]string{
	notes.FieldName:      "name",
	notes.FieldBody:      "body",
	notes.FieldPlaintext: "plaintext",
}

// Binding implements notes.Reader and notes.Writer against Notes.app.
type Binding struct {
	runner  *osa.Runner
	appName string
}

// New returns a Binding that drives appName through runner.
func New(runner *osa.Runner, appName string) *Binding {
	if appName == "" {
		appName = "Notes"
	}
	return &Binding{runner: runner, appName: appName}
}

type accountJSON struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	Upgraded bool   `json:"upgraded"`
}

type folderJSON struct {
	ID     string `json:"id"`
	Name   string `json:"name"`
	Shared bool   `json:"shared"`
}

// folderTreeJSON is a subfolder forest read in one reader call. Folders
// holds every folder below the roots once, keyed by id.
type folderTreeJSON struct {
	Roots   []string                  `json:"roots"`
	Folders map[string]folderNodeJSON `json:"folders"`
}

type folderNodeJSON struct {
	folderJSON
	Children []string `json:"children"`
}

type noteJSON struct {
	ID          string      `json:"id"`
	Folder      *folderJSON `json:"folder"`
	Name        string `json:"name"`
	Created     string `json:"created"`
	Modified    string `json:"modified"`
	Protected   bool   `json:"protected"`
	Shared      bool   `json:"shared"`
	Attachments int    `json:"attachments"`
}

type attachmentJSON struct {
	ID       string `json:"id"`
	Name     string `json:"name"`
	CID      string `json:"cid"`
	Created  string `json:"created"`
	Modified string `json:"modified"`
	URL      string `json:"url"`
	Shared   bool   `json:"shared"`
}

type textJSON struct {
	Value string `json:"value"`
}

// query runs one reader operation and decodes its JSON result into out.
func (b *Binding) query(ctx context.Context, out any, op string, args ...string) error {
	return b.queryInput(ctx, out, op, nil, args...)
}

// queryInput is query with input delivered on the script's standard input.
func (b *Binding) queryInput(ctx context.Context, out any, op string, input []byte, args ...string) error {
	argv := append([]string{op, b.appName}, args...)
	stdout, err := b.runner.RunInput(ctx, osa.ChannelQuery, osa.JavaScript, readerSource, input, argv...)
	if err != nil {
		if sidecar.Is(err, sidecar.CodeNotFound) {
			return fmt.Errorf("%s: %w: %w", op, notes.ErrNoSuchObject, err)
		}
		return err
	}
	if err := json.Unmarshal(stdout, out); err != nil {
		return sidecar.Wrap(sidecar.CodeInternal, err, "Unexpected reply from Notes.app for %s.", op)
	}
	return nil
}

func (b *Binding) Accounts(ctx context.Context) ([]notes.Account, error) {
	var recs []accountJSON
	if err := b.query(ctx, &recs, "accounts"); err != nil {
		return nil, err
	}
	out := make([]notes.Account, len(recs))
	for i, r := range recs {
		out[i] = &account{b: b, rec: r}
	}
	return out, nil
}

func (b *Binding) Notes(ctx context.Context) ([]notes.Note, error) {
	var recs []noteJSON
	if err := b.query(ctx, &recs, "notes"); err != nil {
		return nil, err
	}
	out := make([]notes.Note, len(recs))
	for i, r := range recs {
		out[i] = b.newNote(r)
	}
	return out, nil
}

func (b *Binding) Folder(ctx context.Context, id string) (notes.Folder, error) {
	var rec folderJSON
	if err := b.query(ctx, &rec, "folder", id); err != nil {
		return nil, err
	}
	return &folder{b: b, rec: rec}, nil
}

func (b *Binding) Note(ctx context.Context, id string) (notes.Note, error) {
	var rec noteJSON
	if err := b.query(ctx, &rec, "note", id); err != nil {
		return nil, err
	}
	if rec.ID == "" {
		return nil, fmt.Errorf("note %s: %w", id, notes.ErrNoSuchObject)
	}
	return b.newNote(rec), nil
}

func (b *Binding) Attachment(ctx context.Context, id string) (notes.Attachment, error) {
	var rec attachmentJSON
	if err := b.query(ctx, &rec, "attachment", id); err != nil {
		return nil, err
	}
	return newAttachment(rec), nil
}

// RunScript executes an AppleScript command built by the notes package.
func (b *Binding) RunScript(ctx context.Context, source string) (osa.Descriptor, error) {
	return b.runner.RunScript(ctx, source)
}

// subtree reads the whole forest below an account or folder. The returned
// handles answer Folders from that forest without further calls.
func (b *Binding) subtree(ctx context.Context, op, id string) ([]notes.Folder, error) {
	tree := &folderTreeJSON{}
	if err := b.query(ctx, tree, op, id); err != nil {
		return nil, err
	}
	return tree.handles(b, tree.Roots), nil
}

// handles returns folder handles for ids, skipping ids the forest lacks.
func (t *folderTreeJSON) handles(b *Binding, ids []string) []notes.Folder {
	out := make([]notes.Folder, 0, len(ids))
	for _, id := range ids {
		node, ok := t.Folders[id]
		if !ok {
			continue
		}
		out = append(out, &folder{b: b, rec: node.folderJSON, tree: t})
	}
	return out
}

func (b *Binding) newNote(r noteJSON) *note {
	return &note{
		b:        b,
		rec:      r,
		created:  parseDate(r.Created),
		modified: parseDate(r.Modified),
	}
}

// parseDate reads the ISO timestamps the reader script emits. Missing or
// malformed dates are the zero time.
func parseDate(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}
	}
	return t
}

var (
	_ notes.Reader = (*Binding)(nil)
	_ notes.Writer = (*Binding)(nil)
)
