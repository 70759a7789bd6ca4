package notes

import (
	"context"
	"errors"
	"io/fs"
	"os"

	"github.com/roach88/notes-sidecar/internal/sidecar"
)

// ListAttachments returns the attachments of an unprotected note.
func (s *Service) ListAttachments(ctx context.Context, noteID string, includeShared bool) ([]AttachmentRecord, error) {
	return guarded(ctx, s, "attachments", func() ([]AttachmentRecord, error) {
		n, err := s.resolveNote(ctx, noteID)
		if err != nil {
			return nil, err
		}
		if n.PasswordProtected() {
			return nil, sidecar.Locked("Note is password protected.")
		}
		return attachmentRecords(ctx, n, includeShared)
	})
}

// AddAttachments attaches local files to a note. Every path is checked
// before the store is touched.
func (s *Service) AddAttachments(ctx context.Context, noteID string, paths []string) ([]AttachmentRecord, error) {
	if len(paths) == 0 {
		return nil, sidecar.InvalidArguments("--attach-file is required.")
	}
	files, err := absFiles(paths)
	if err != nil {
		return nil, err
	}

	target := noteID
	return mutating(ctx, s, "add-attachment", &target, func() ([]AttachmentRecord, error) {
		if _, err := s.writableNote(ctx, noteID); err != nil {
			return nil, err
		}
		return s.attach(ctx, noteID, files)
	})
}

// attach runs one script for all files, then re-resolves each new
// attachment. Attachments that no longer resolve are left out.
func (s *Service) attach(ctx context.Context, noteID string, files []string) ([]AttachmentRecord, error) {
	res, err := s.writer.RunScript(ctx, addAttachmentsScript(s.appName, noteID, files))
	if err != nil {
		return nil, err
	}

	out := make([]AttachmentRecord, 0, len(files))
	for _, id := range res.Strings() {
		if id == "" {
			continue
		}
		a, err := s.resolveAttachment(ctx, id)
		if err != nil {
			s.log.Debug().Err(err).Str("attachment_id", id).Msg("new attachment did not resolve")
			continue
		}
		out = append(out, attachmentRecord(a, noteID))
	}
	return out, nil
}

// SaveAttachment exports an attachment to a local path and returns the
// absolute path written.
func (s *Service) SaveAttachment(ctx context.Context, attachmentID, path string, overwrite bool) (string, error) {
	out, exists, err := outputPath(path, overwrite)
	if err != nil {
		return "", err
	}

	target := attachmentID
	return mutating(ctx, s, "save-attachment", &target, func() (string, error) {
		if _, err := s.resolveAttachment(ctx, attachmentID); err != nil {
			return "", err
		}
		if exists {
			if err := os.Remove(out); err != nil && !errors.Is(err, fs.ErrNotExist) {
				return "", sidecar.Wrap(sidecar.CodeInternal, err, "Failed to remove existing output file.")
			}
		}
		if _, err := s.writer.RunScript(ctx, saveAttachmentScript(s.appName, attachmentID, out)); err != nil {
			return "", err
		}
		return out, nil
	})
}

func attachmentRecords(ctx context.Context, n Note, includeShared bool) ([]AttachmentRecord, error) {
	atts, err := n.Attachments(ctx)
	if err != nil {
		if isMissing(err) {
			return []AttachmentRecord{}, nil
		}
		return nil, err
	}

	noteID := n.ID()
	out := make([]AttachmentRecord, 0, len(atts))
	for _, a := range atts {
		if a.Shared() && !includeShared {
			continue
		}
		out = append(out, attachmentRecord(a, noteID))
	}
	return out, nil
}
