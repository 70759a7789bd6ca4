package testutil

import (
	"context"
	"fmt"
	"html"
	"os"
	"regexp"
	"strings"
	"sync"
	"time"

	"github.com/roach88/notes-sidecar/internal/notes"
	"github.com/roach88/notes-sidecar/internal/osa"
	"github.com/roach88/notes-sidecar/internal/sidecar"
)

// FakeApp is an in-memory Notes application. It implements notes.Reader
// and notes.Writer; the Writer understands exactly the scripts the notes
// package generates.
//
// Thread-safety: all methods are safe for concurrent use.
type FakeApp struct {
	mu sync.Mutex

	accounts    []*FakeAccount
	folders     map[string]*FakeFolder
	notes       map[string]*FakeNote
	attachments map[string]*FakeAttachment

	// enumeration is the order Notes() reports, duplicates included.
	enumeration []*FakeNote

	clock     *Clock
	nextID    int
	scripts   []string
	sets      int
	textReads map[string]int

	accountsErr error
	textErrs    map[string]error
	guard       func() bool
	unguarded   int
}

// NewFakeApp returns an empty store whose timestamps come from clock.
func NewFakeApp(clock *Clock) *FakeApp {
	if clock == nil {
		clock = NewClock(time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC), time.Second)
	}
	return &FakeApp{
		folders:     map[string]*FakeFolder{},
		notes:       map[string]*FakeNote{},
		attachments: map[string]*FakeAttachment{},
		clock:       clock,
		textReads:   map[string]int{},
		textErrs:    map[string]error{},
	}
}

type FakeAccount struct {
	app           *FakeApp
	id            string
	name          string
	upgraded      bool
	roots         []*FakeFolder
	defaultFolder *FakeFolder
}

type FakeFolder struct {
	app      *FakeApp
	id       string
	name     string
	shared   bool
	children []*FakeFolder
	notes    []*FakeNote
}

type FakeNote struct {
	app       *FakeApp
	id        string
	name      string
	body      string
	plaintext string
	created   time.Time
	modified  time.Time
	protected bool
	shared    bool
	folder    *FakeFolder
	atts      []*FakeAttachment
}

type FakeAttachment struct {
	id       string
	name     string
	cid      string
	created  time.Time
	modified time.Time
	url      string
	shared   bool
	data     []byte
	note     *FakeNote
}

// Builders. They are meant for test setup and take the app lock like
// every other method.

func (a *FakeApp) AddAccount(id, name string) *FakeAccount {
	a.mu.Lock()
	defer a.mu.Unlock()
	acc := &FakeAccount{app: a, id: id, name: name, upgraded: true}
	a.accounts = append(a.accounts, acc)
	return acc
}

// AddFolder adds a root folder. The first root becomes the default folder.
func (acc *FakeAccount) AddFolder(id, name string) *FakeFolder {
	a := acc.app
	a.mu.Lock()
	defer a.mu.Unlock()
	f := a.newFolder(id, name)
	acc.roots = append(acc.roots, f)
	if acc.defaultFolder == nil {
		acc.defaultFolder = f
	}
	return f
}

func (acc *FakeAccount) SetDefaultFolder(f *FakeFolder) *FakeAccount {
	acc.app.mu.Lock()
	defer acc.app.mu.Unlock()
	acc.defaultFolder = f
	return acc
}

func (acc *FakeAccount) SetUpgraded(v bool) *FakeAccount {
	acc.app.mu.Lock()
	defer acc.app.mu.Unlock()
	acc.upgraded = v
	return acc
}

func (f *FakeFolder) AddFolder(id, name string) *FakeFolder {
	a := f.app
	a.mu.Lock()
	defer a.mu.Unlock()
	child := a.newFolder(id, name)
	f.children = append(f.children, child)
	return child
}

// Link makes an existing folder a child of f, which can form a cycle.
func (f *FakeFolder) Link(child *FakeFolder) *FakeFolder {
	f.app.mu.Lock()
	defer f.app.mu.Unlock()
	f.children = append(f.children, child)
	return f
}

func (f *FakeFolder) MarkShared() *FakeFolder {
	f.app.mu.Lock()
	defer f.app.mu.Unlock()
	f.shared = true
	return f
}

// AddNote adds a note with the given title and plaintext.
func (f *FakeFolder) AddNote(id, name, plaintext string) *FakeNote {
	a := f.app
	a.mu.Lock()
	defer a.mu.Unlock()
	now := a.clock.Now()
	n := &FakeNote{
		app:       a,
		id:        id,
		name:      name,
		plaintext: plaintext,
		body:      "<div>" + html.EscapeString(plaintext) + "</div>",
		created:   now,
		modified:  now,
		folder:    f,
	}
	a.addNote(n)
	return n
}

func (n *FakeNote) MarkProtected() *FakeNote {
	n.app.mu.Lock()
	defer n.app.mu.Unlock()
	n.protected = true
	return n
}

func (n *FakeNote) MarkShared() *FakeNote {
	n.app.mu.Lock()
	defer n.app.mu.Unlock()
	n.shared = true
	return n
}

func (n *FakeNote) SetModified(t time.Time) *FakeNote {
	n.app.mu.Lock()
	defer n.app.mu.Unlock()
	n.modified = t
	return n
}

func (n *FakeNote) AddAttachment(id, name string, data []byte) *FakeAttachment {
	a := n.app
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.addAttachment(n, id, name, data)
}

func (att *FakeAttachment) MarkShared() *FakeAttachment {
	att.note.app.mu.Lock()
	defer att.note.app.mu.Unlock()
	att.shared = true
	return att
}

func (att *FakeAttachment) SetURL(u string) *FakeAttachment {
	att.note.app.mu.Lock()
	defer att.note.app.mu.Unlock()
	att.url = u
	return att
}

// EnumerateAgain makes Notes() report n a second time.
func (a *FakeApp) EnumerateAgain(n *FakeNote) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enumeration = append(a.enumeration, n)
}

// AddUnreadableNote makes Notes() report an entry without an identifier.
func (a *FakeApp) AddUnreadableNote(f *FakeFolder) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.enumeration = append(a.enumeration, &FakeNote{app: a, name: "unreadable", folder: f})
}

// FailAccounts makes Accounts() return err.
func (a *FakeApp) FailAccounts(err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.accountsErr = err
}

// FailText makes every Text() call on the note fail with err.
func (a *FakeApp) FailText(noteID string, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.textErrs[noteID] = err
}

// RequireGuard counts every store access made while held reports false.
func (a *FakeApp) RequireGuard(held func() bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.guard = held
}

// Inspection.

// Scripts returns every script source the Writer received.
func (a *FakeApp) Scripts() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.scripts...)
}

// Mutations counts scripts run plus attribute assignments.
func (a *FakeApp) Mutations() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.scripts) + a.sets
}

// TextReads counts Text() calls for a note field.
func (a *FakeApp) TextReads(noteID string, field notes.Field) int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.textReads[noteID+"/"+string(field)]
}

// Unguarded counts store accesses made outside the guard.
func (a *FakeApp) Unguarded() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.unguarded
}

// NoteBody returns the stored markup of a note.
func (a *FakeApp) NoteBody(noteID string) (string, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	n, ok := a.notes[noteID]
	if !ok {
		return "", false
	}
	return n.body, true
}

// HasNote reports whether a live note carries the identifier.
func (a *FakeApp) HasNote(noteID string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()
	_, ok := a.notes[noteID]
	return ok
}

// notes.Reader

func (a *FakeApp) Accounts(context.Context) ([]notes.Account, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.touch()
	if a.accountsErr != nil {
		return nil, a.accountsErr
	}
	out := make([]notes.Account, len(a.accounts))
	for i, acc := range a.accounts {
		out[i] = acc
	}
	return out, nil
}

func (a *FakeApp) Notes(context.Context) ([]notes.Note, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.touch()
	out := make([]notes.Note, 0, len(a.enumeration))
	for _, n := range a.enumeration {
		if n.id != "" && a.notes[n.id] == nil {
			continue
		}
		out = append(out, n)
	}
	return out, nil
}

func (a *FakeApp) Folder(_ context.Context, id string) (notes.Folder, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.touch()
	f, ok := a.folders[id]
	if !ok {
		return nil, fmt.Errorf("folder %s: %w", id, notes.ErrNoSuchObject)
	}
	return f, nil
}

func (a *FakeApp) Note(_ context.Context, id string) (notes.Note, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.touch()
	n, ok := a.notes[id]
	if !ok {
		return nil, fmt.Errorf("note %s: %w", id, notes.ErrNoSuchObject)
	}
	return n, nil
}

func (a *FakeApp) Attachment(_ context.Context, id string) (notes.Attachment, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.touch()
	att, ok := a.attachments[id]
	if !ok {
		return nil, fmt.Errorf("attachment %s: %w", id, notes.ErrNoSuchObject)
	}
	return att, nil
}

// notes.Writer

var (
	literal         = `("(?:[^"\\]|\\.)*")`
	reFolderByID    = regexp.MustCompile(`set theFolder to first folder whose id is ` + literal)
	reNewNote       = regexp.MustCompile(`set theNote to make new note at theFolder(?: with properties \{name:` + literal + `\})?\n`)
	reNoteByID      = regexp.MustCompile(`set theNote to first note whose id is ` + literal)
	reNewAttachment = regexp.MustCompile(`make new attachment at end of attachments of theNote with data \(POSIX file ` + literal + `\)`)
	reAttByID       = regexp.MustCompile(`set theAtt to first attachment whose id is ` + literal)
	reSaveAtt       = regexp.MustCompile(`save theAtt in \(POSIX file ` + literal + `\)`)
)

func (a *FakeApp) RunScript(_ context.Context, source string) (osa.Descriptor, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.touch()
	a.scripts = append(a.scripts, source)

	switch {
	case reNewNote.MatchString(source):
		return a.scriptCreate(source)
	case strings.Contains(source, "\ndelete theNote\n"):
		return a.scriptDelete(source)
	case reNewAttachment.MatchString(source):
		return a.scriptAttach(source)
	case reSaveAtt.MatchString(source):
		return a.scriptSave(source)
	}
	return osa.Descriptor{}, sidecar.InvalidArguments("fake: unrecognized script")
}

func (a *FakeApp) scriptCreate(source string) (osa.Descriptor, error) {
	var folder *FakeFolder
	if m := reFolderByID.FindStringSubmatch(source); m != nil {
		id := mustUnquote(m[1])
		folder = a.folders[id]
		if folder == nil {
			return osa.Descriptor{}, sidecar.NotFound("fake: folder %s", id)
		}
	} else {
		if len(a.accounts) == 0 || a.accounts[0].defaultFolder == nil {
			return osa.Descriptor{}, sidecar.NotFound("fake: no default folder")
		}
		folder = a.accounts[0].defaultFolder
	}

	name := "New Note"
	if m := reNewNote.FindStringSubmatch(source); m != nil && m[1] != "" {
		name = mustUnquote(m[1])
	}

	a.nextID++
	now := a.clock.Now()
	n := &FakeNote{
		app:      a,
		id:       fmt.Sprintf("x-coredata://fake/ICNote/p%d", a.nextID),
		name:     name,
		created:  now,
		modified: now,
		folder:   folder,
	}
	a.addNote(n)
	return osa.Text(n.id), nil
}

func (a *FakeApp) scriptDelete(source string) (osa.Descriptor, error) {
	m := reNoteByID.FindStringSubmatch(source)
	if m == nil {
		return osa.Descriptor{}, sidecar.InvalidArguments("fake: delete without note")
	}
	id := mustUnquote(m[1])
	n := a.notes[id]
	if n == nil {
		return osa.Descriptor{}, sidecar.NotFound("fake: note %s", id)
	}

	delete(a.notes, id)
	for _, att := range n.atts {
		delete(a.attachments, att.id)
	}
	f := n.folder
	for i, other := range f.notes {
		if other == n {
			f.notes = append(f.notes[:i], f.notes[i+1:]...)
			break
		}
	}
	return osa.Text(id), nil
}

func (a *FakeApp) scriptAttach(source string) (osa.Descriptor, error) {
	m := reNoteByID.FindStringSubmatch(source)
	if m == nil {
		return osa.Descriptor{}, sidecar.InvalidArguments("fake: attach without note")
	}
	id := mustUnquote(m[1])
	n := a.notes[id]
	if n == nil {
		return osa.Descriptor{}, sidecar.NotFound("fake: note %s", id)
	}

	var ids []osa.Descriptor
	for _, fm := range reNewAttachment.FindAllStringSubmatch(source, -1) {
		path := mustUnquote(fm[1])
		data, err := os.ReadFile(path)
		if err != nil {
			return osa.Descriptor{}, sidecar.Wrap(sidecar.CodeInternal, err, "fake: read %s", path)
		}
		a.nextID++
		att := a.addAttachment(n, fmt.Sprintf("x-coredata://fake/ICAttachment/p%d", a.nextID), baseName(path), data)
		ids = append(ids, osa.Text(att.id))
	}
	n.modified = a.clock.Now()
	return osa.List(ids...), nil
}

func (a *FakeApp) scriptSave(source string) (osa.Descriptor, error) {
	m := reAttByID.FindStringSubmatch(source)
	if m == nil {
		return osa.Descriptor{}, sidecar.InvalidArguments("fake: save without attachment")
	}
	id := mustUnquote(m[1])
	att := a.attachments[id]
	if att == nil {
		return osa.Descriptor{}, sidecar.NotFound("fake: attachment %s", id)
	}

	path := mustUnquote(reSaveAtt.FindStringSubmatch(source)[1])
	if _, err := os.Stat(path); err == nil {
		return osa.Descriptor{}, sidecar.Internal("fake: refusing to replace %s", path)
	}
	if err := os.WriteFile(path, att.data, 0o600); err != nil {
		return osa.Descriptor{}, sidecar.Wrap(sidecar.CodeInternal, err, "fake: write %s", path)
	}
	return osa.Text(path), nil
}

// Handles. Each returns live values under the app lock.

func (acc *FakeAccount) ID() string     { return acc.id }
func (acc *FakeAccount) Name() string   { return acc.name }
func (acc *FakeAccount) Upgraded() bool { return acc.upgraded }

func (acc *FakeAccount) DefaultFolder(context.Context) (notes.Folder, error) {
	acc.app.mu.Lock()
	defer acc.app.mu.Unlock()
	acc.app.touch()
	if acc.defaultFolder == nil {
		return nil, notes.ErrNoSuchObject
	}
	return acc.defaultFolder, nil
}

func (acc *FakeAccount) Folders(context.Context) ([]notes.Folder, error) {
	acc.app.mu.Lock()
	defer acc.app.mu.Unlock()
	acc.app.touch()
	return folderList(acc.roots), nil
}

func (f *FakeFolder) ID() string   { return f.id }
func (f *FakeFolder) Name() string { return f.name }

func (f *FakeFolder) Shared() bool {
	f.app.mu.Lock()
	defer f.app.mu.Unlock()
	return f.shared
}

func (f *FakeFolder) Folders(context.Context) ([]notes.Folder, error) {
	f.app.mu.Lock()
	defer f.app.mu.Unlock()
	f.app.touch()
	return folderList(f.children), nil
}

func (n *FakeNote) ID() string { return n.id }

func (n *FakeNote) Name() string {
	n.app.mu.Lock()
	defer n.app.mu.Unlock()
	return n.name
}

func (n *FakeNote) CreationDate() time.Time { return n.created }

func (n *FakeNote) ModificationDate() time.Time {
	n.app.mu.Lock()
	defer n.app.mu.Unlock()
	return n.modified
}

func (n *FakeNote) PasswordProtected() bool {
	n.app.mu.Lock()
	defer n.app.mu.Unlock()
	return n.protected
}

func (n *FakeNote) Shared() bool {
	n.app.mu.Lock()
	defer n.app.mu.Unlock()
	return n.shared
}

func (n *FakeNote) AttachmentCount() int {
	n.app.mu.Lock()
	defer n.app.mu.Unlock()
	return len(n.atts)
}

func (n *FakeNote) Container(context.Context) (notes.Folder, error) {
	n.app.mu.Lock()
	defer n.app.mu.Unlock()
	n.app.touch()
	if n.folder == nil {
		return nil, notes.ErrNoSuchObject
	}
	return n.folder, nil
}

func (n *FakeNote) Text(_ context.Context, field notes.Field) (string, error) {
	a := n.app
	a.mu.Lock()
	defer a.mu.Unlock()
	a.touch()
	a.textReads[n.id+"/"+string(field)]++
	if err := a.textErrs[n.id]; err != nil {
		return "", err
	}
	if a.notes[n.id] == nil {
		return "", notes.ErrNoSuchObject
	}

	switch field {
	case notes.FieldName:
		return n.name, nil
	case notes.FieldBody:
		return n.body, nil
	case notes.FieldPlaintext:
		return n.plaintext, nil
	}
	return "", sidecar.Internal("fake: unknown field %s", field)
}

func (n *FakeNote) Set(_ context.Context, field notes.Field, value string) error {
	a := n.app
	a.mu.Lock()
	defer a.mu.Unlock()
	a.touch()
	a.sets++
	if a.notes[n.id] == nil {
		return notes.ErrNoSuchObject
	}

	switch field {
	case notes.FieldName:
		n.name = value
	case notes.FieldBody:
		n.body = value
		n.plaintext = markupText(value)
	default:
		return sidecar.Internal("fake: field %s is read-only", field)
	}
	n.modified = a.clock.Now()
	return nil
}

func (n *FakeNote) Attachments(context.Context) ([]notes.Attachment, error) {
	n.app.mu.Lock()
	defer n.app.mu.Unlock()
	n.app.touch()
	out := make([]notes.Attachment, len(n.atts))
	for i, att := range n.atts {
		out[i] = att
	}
	return out, nil
}

func (att *FakeAttachment) ID() string                  { return att.id }
func (att *FakeAttachment) Name() string                { return att.name }
func (att *FakeAttachment) ContentIdentifier() string   { return att.cid }
func (att *FakeAttachment) CreationDate() time.Time     { return att.created }
func (att *FakeAttachment) ModificationDate() time.Time { return att.modified }

func (att *FakeAttachment) URL() string {
	att.note.app.mu.Lock()
	defer att.note.app.mu.Unlock()
	return att.url
}

func (att *FakeAttachment) Shared() bool {
	att.note.app.mu.Lock()
	defer att.note.app.mu.Unlock()
	return att.shared
}

// Internals. Callers hold a.mu.

func (a *FakeApp) newFolder(id, name string) *FakeFolder {
	f := &FakeFolder{app: a, id: id, name: name}
	a.folders[id] = f
	return f
}

func (a *FakeApp) addNote(n *FakeNote) {
	a.notes[n.id] = n
	a.enumeration = append(a.enumeration, n)
	n.folder.notes = append(n.folder.notes, n)
}

func (a *FakeApp) addAttachment(n *FakeNote, id, name string, data []byte) *FakeAttachment {
	now := a.clock.Now()
	att := &FakeAttachment{
		id:       id,
		name:     name,
		cid:      "cid-" + id,
		created:  now,
		modified: now,
		data:     data,
		note:     n,
	}
	a.attachments[id] = att
	n.atts = append(n.atts, att)
	return att
}

func (a *FakeApp) touch() {
	if a.guard != nil && !a.guard() {
		a.unguarded++
	}
}

func folderList(fs []*FakeFolder) []notes.Folder {
	out := make([]notes.Folder, len(fs))
	for i, f := range fs {
		out[i] = f
	}
	return out
}

var (
	reBreak = regexp.MustCompile(`<br\s*/?>`)
	reTag   = regexp.MustCompile(`<[^>]*>`)
)

// markupText approximates the plaintext projection Notes derives.
func markupText(markup string) string {
	s := reBreak.ReplaceAllString(markup, "\n")
	s = reTag.ReplaceAllString(s, "")
	return html.UnescapeString(s)
}

func mustUnquote(lit string) string {
	s, err := osa.Unquote(lit)
	if err != nil {
		panic(fmt.Sprintf("fake: bad literal %s: %v", lit, err))
	}
	return s
}

func baseName(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[i+1:]
	}
	return path
}
