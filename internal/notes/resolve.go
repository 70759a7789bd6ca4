package notes

import (
	"context"
	"errors"

	"github.com/roach88/notes-sidecar/internal/sidecar"
)

// Resolution always asks the Reader for a fresh handle; nothing is cached
// between calls because handles can go stale between enumeration and use.

func (s *Service) resolveFolder(ctx context.Context, id string) (Folder, error) {
	f, err := s.reader.Folder(ctx, id)
	return resolved(f, err, "Folder", id)
}

func (s *Service) resolveNote(ctx context.Context, id string) (Note, error) {
	n, err := s.reader.Note(ctx, id)
	return resolved(n, err, "Note", id)
}

func (s *Service) resolveAttachment(ctx context.Context, id string) (Attachment, error) {
	a, err := s.reader.Attachment(ctx, id)
	return resolved(a, err, "Attachment", id)
}

// resolved normalizes a Reader lookup: a missing object or a nil handle is
// NOT_FOUND, other failures keep the code the binding assigned.
func resolved[T any](handle T, err error, kind, id string) (T, error) {
	var zero T
	if err != nil {
		if isMissing(err) {
			return zero, sidecar.Wrap(sidecar.CodeNotFound, err, "%s not found: %s", kind, id)
		}
		return zero, err
	}
	if any(handle) == nil {
		return zero, sidecar.NotFound("%s not found: %s", kind, id)
	}
	return handle, nil
}

func isMissing(err error) bool {
	return errors.Is(err, ErrNoSuchObject) || sidecar.Is(err, sidecar.CodeNotFound)
}

// containerOf resolves the folder of a note. A note whose folder cannot be
// resolved is an inconsistency in the store, not a missing user object.
func containerOf(ctx context.Context, n Note) (Folder, error) {
	f, err := n.Container(ctx)
	if err != nil {
		if isMissing(err) {
			return nil, sidecar.Wrap(sidecar.CodeInternal, err, "Failed to resolve note folder.")
		}
		return nil, err
	}
	if f == nil || f.ID() == "" {
		return nil, sidecar.Internal("Failed to resolve note folder identifier.")
	}
	return f, nil
}
