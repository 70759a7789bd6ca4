package notes

import (
	"context"
	"slices"
	"strings"
	"time"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/roach88/notes-sidecar/internal/sidecar"
)

// Listing defaults.
const (
	DefaultNoteLimit        = 200
	DefaultExcerptMaxLength = 200
)

// ListNotesParams selects and shapes a note listing.
type ListNotesParams struct {
	AccountIDs []string
	FolderIDs  []string

	// Query is a case-insensitive substring matched against the name, then
	// the plaintext of unprotected notes.
	Query string

	IncludeExcerpt   bool
	ExcerptMaxLength int

	IncludeShared          bool
	IncludeRecentlyDeleted bool

	Limit int
}

// candidate carries the cheap metadata gathered before filtering so the
// expensive plaintext fetch happens only for notes that reach the scan.
type candidate struct {
	note     Note
	id       string
	name     string
	folderID string
	modified time.Time

	plaintext *string
}

// ListNotes filters, orders and truncates the notes of the store.
func (s *Service) ListNotes(ctx context.Context, p ListNotesParams) ([]NoteSummary, error) {
	if err := validateListNotes(p); err != nil {
		return nil, err
	}

	return guarded(ctx, s, "notes", func() ([]NoteSummary, error) {
		index, err := s.folderAccounts(ctx)
		if err != nil {
			return nil, err
		}

		cands, err := s.candidates(ctx, p, index)
		if err != nil {
			return nil, err
		}
		sortCandidates(cands)

		return s.scan(ctx, p, cands)
	})
}

func validateListNotes(p ListNotesParams) error {
	if p.ExcerptMaxLength <= 0 {
		return sidecar.InvalidArguments("--plaintext-excerpt-max-len must be > 0")
	}
	if p.Limit <= 0 {
		return sidecar.InvalidArguments("--limit must be > 0")
	}
	return nil
}

func (s *Service) candidates(ctx context.Context, p ListNotesParams, index map[string]string) ([]*candidate, error) {
	all, err := s.reader.Notes(ctx)
	if err != nil {
		return nil, err
	}

	seen := make(map[string]bool, len(all))
	out := make([]*candidate, 0, len(all))
	for _, n := range all {
		id := n.ID()
		if id == "" || seen[id] {
			continue
		}
		seen[id] = true

		if n.Shared() && !p.IncludeShared {
			continue
		}

		folder, err := n.Container(ctx)
		if err != nil {
			if isMissing(err) {
				continue
			}
			return nil, err
		}
		if folder == nil || folder.ID() == "" {
			continue
		}
		folderID := folder.ID()

		if !p.IncludeRecentlyDeleted && IsRecentlyDeleted(folder.Name()) {
			continue
		}
		if len(p.FolderIDs) > 0 && !slices.Contains(p.FolderIDs, folderID) {
			continue
		}
		if len(p.AccountIDs) > 0 && !slices.Contains(p.AccountIDs, index[folderID]) {
			continue
		}

		out = append(out, &candidate{
			note:     n,
			id:       id,
			name:     n.Name(),
			folderID: folderID,
			modified: n.ModificationDate(),
		})
	}
	return out, nil
}

// sortCandidates orders by modification time descending, then name, then
// identifier, which is a total order.
func sortCandidates(cands []*candidate) {
	c := collate.New(language.Und, collate.IgnoreCase)
	slices.SortFunc(cands, func(a, b *candidate) int {
		if cmp := b.modified.Compare(a.modified); cmp != 0 {
			return cmp
		}
		if cmp := c.CompareString(a.name, b.name); cmp != 0 {
			return cmp
		}
		return strings.Compare(a.id, b.id)
	})
}

func (s *Service) scan(ctx context.Context, p ListNotesParams, cands []*candidate) ([]NoteSummary, error) {
	query := fold(p.Query)
	out := make([]NoteSummary, 0, min(len(cands), p.Limit))

	for _, c := range cands {
		if len(out) == p.Limit {
			break
		}

		ok, err := s.matches(ctx, c, query)
		if err != nil {
			if isMissing(err) {
				continue
			}
			return nil, err
		}
		if !ok {
			continue
		}

		sum := NoteSummary{
			NoteID:              c.id,
			FolderID:            c.folderID,
			Name:                c.name,
			CreationDate:        FormatDate(c.note.CreationDate()),
			ModificationDate:    FormatDate(c.modified),
			IsPasswordProtected: c.note.PasswordProtected(),
			IsShared:            c.note.Shared(),
			AttachmentCount:     c.note.AttachmentCount(),
		}
		if p.IncludeExcerpt && !sum.IsPasswordProtected {
			text, err := c.text(ctx)
			if err != nil {
				if isMissing(err) {
					continue
				}
				return nil, err
			}
			sum.PlaintextExcerpt = strPtr(excerpt(text, p.ExcerptMaxLength))
		}
		out = append(out, sum)
	}
	return out, nil
}

// matches applies the query predicate. Protected notes match by name only.
func (s *Service) matches(ctx context.Context, c *candidate, query string) (bool, error) {
	if query == "" || strings.Contains(fold(c.name), query) {
		return true, nil
	}
	if c.note.PasswordProtected() {
		return false, nil
	}
	text, err := c.text(ctx)
	if err != nil {
		return false, err
	}
	return strings.Contains(fold(text), query), nil
}

// text fetches the plaintext once per candidate.
func (c *candidate) text(ctx context.Context) (string, error) {
	if c.plaintext != nil {
		return *c.plaintext, nil
	}
	text, err := c.note.Text(ctx, FieldPlaintext)
	if err != nil {
		return "", err
	}
	c.plaintext = &text
	return text, nil
}

// excerpt returns the first n runes of s.
func excerpt(s string, n int) string {
	i := 0
	for pos := range s {
		if i == n {
			return s[:pos]
		}
		i++
	}
	return s
}
