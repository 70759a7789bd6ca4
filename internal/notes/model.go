package notes

import (
	"context"
	"errors"
	"time"

	"github.com/roach88/notes-sidecar/internal/osa"
)

// ErrNoSuchObject is returned (possibly wrapped) by Reader implementations
// when no live object carries the requested identifier.
var ErrNoSuchObject = errors.New("no such object")

// Field names a text attribute of a note. Bindings map fields to native
// property keys.
type Field string

const (
	FieldName      Field = "name"
	FieldBody      Field = "body"
	FieldPlaintext Field = "plaintext"
)

// Account is an external namespace owning a tree of folders.
type Account interface {
	ID() string
	Name() string
	Upgraded() bool

	// DefaultFolder resolves the account's default folder.
	DefaultFolder(ctx context.Context) (Folder, error)

	// Folders returns the account's root folders.
	Folders(ctx context.Context) ([]Folder, error)
}

// Folder is a named container of notes.
type Folder interface {
	ID() string
	Name() string
	Shared() bool

	// Folders returns the direct subfolders.
	Folders(ctx context.Context) ([]Folder, error)
}

// Note is a handle to one note. The scalar accessors return values captured
// when the handle was resolved; Text fetches on demand.
type Note interface {
	ID() string
	Name() string
	CreationDate() time.Time
	ModificationDate() time.Time
	PasswordProtected() bool
	Shared() bool
	AttachmentCount() int

	// Container resolves the folder holding the note.
	Container(ctx context.Context) (Folder, error)

	// Text fetches a text field. Plaintext and body are expensive.
	Text(ctx context.Context, field Field) (string, error)

	// Set assigns a text field through the attribute channel.
	Set(ctx context.Context, field Field, value string) error

	Attachments(ctx context.Context) ([]Attachment, error)
}

// Attachment is a binary or linked resource of a note.
type Attachment interface {
	ID() string
	Name() string
	ContentIdentifier() string
	CreationDate() time.Time
	ModificationDate() time.Time

	// URL is empty when the attachment has no external URL.
	URL() string
	Shared() bool
}

// Reader is the attribute-query channel.
type Reader interface {
	Accounts(ctx context.Context) ([]Account, error)

	// Notes enumerates every note in the store. Entries may repeat, and an
	// entry whose identifier could not be read has an empty ID.
	Notes(ctx context.Context) ([]Note, error)

	Folder(ctx context.Context, id string) (Folder, error)
	Note(ctx context.Context, id string) (Note, error)
	Attachment(ctx context.Context, id string) (Attachment, error)
}

// Writer is the scripted command channel. Source must already have every
// interpolated value escaped with osa.Quote.
type Writer interface {
	RunScript(ctx context.Context, source string) (osa.Descriptor, error)
}
