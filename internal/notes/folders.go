package notes

import (
	"context"
	"slices"
	"strings"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/roach88/notes-sidecar/internal/sidecar"
)

// ListFoldersParams selects folders for ListFolders.
type ListFoldersParams struct {
	// AccountIDs restricts enumeration to these accounts; empty means all.
	AccountIDs []string

	// ParentFolderID starts enumeration at this folder's children.
	ParentFolderID string

	Recursive              bool
	IncludeShared          bool
	IncludeRecentlyDeleted bool
}

// ListAccounts returns every account.
func (s *Service) ListAccounts(ctx context.Context) ([]AccountRecord, error) {
	return guarded(ctx, s, "accounts", func() ([]AccountRecord, error) {
		accounts, err := s.reader.Accounts(ctx)
		if err != nil {
			return nil, err
		}

		out := make([]AccountRecord, 0, len(accounts))
		for _, acc := range accounts {
			rec := AccountRecord{
				AccountID: acc.ID(),
				Name:      acc.Name(),
				Upgraded:  acc.Upgraded(),
			}
			if f, err := acc.DefaultFolder(ctx); err == nil && f != nil && f.ID() != "" {
				rec.DefaultFolderID = strPtr(f.ID())
			}
			out = append(out, rec)
		}
		return out, nil
	})
}

// ListFolders walks the folder forest.
//
// Without a parent, results across all accounts are sorted by
// case-insensitive name, then identifier. With a parent, the parent's
// children (and descendants when recursive) are returned in store order.
func (s *Service) ListFolders(ctx context.Context, p ListFoldersParams) ([]FolderRecord, error) {
	return guarded(ctx, s, "folders", func() ([]FolderRecord, error) {
		return s.listFolders(ctx, p)
	})
}

func (s *Service) listFolders(ctx context.Context, p ListFoldersParams) ([]FolderRecord, error) {
	out := make([]FolderRecord, 0)
	w := &walker{
		recursive:              p.Recursive,
		includeShared:          p.IncludeShared,
		includeRecentlyDeleted: p.IncludeRecentlyDeleted,
		maxDepth:               s.maxDepth,
		onPath:                 map[string]bool{},
		emit: func(f Folder, container ContainerRef, _ string) {
			out = append(out, FolderRecord{
				FolderID:  f.ID(),
				Name:      f.Name(),
				IsShared:  f.Shared(),
				Container: container,
			})
		},
	}

	if p.ParentFolderID != "" {
		parent, err := s.resolveFolder(ctx, p.ParentFolderID)
		if err != nil {
			return nil, err
		}
		if err := w.children(ctx, parent, "", 0); err != nil {
			return nil, err
		}
		return out, nil
	}

	if err := s.walkAccounts(ctx, w, p.AccountIDs); err != nil {
		return nil, err
	}
	sortFolders(out)
	return out, nil
}

// walkAccounts visits the root folders of every selected account.
func (s *Service) walkAccounts(ctx context.Context, w *walker, accountIDs []string) error {
	accounts, err := s.reader.Accounts(ctx)
	if err != nil {
		return err
	}

	for _, acc := range accounts {
		accID := acc.ID()
		if len(accountIDs) > 0 && !slices.Contains(accountIDs, accID) {
			continue
		}

		roots, err := acc.Folders(ctx)
		if err != nil {
			if isMissing(err) {
				continue
			}
			return err
		}
		for _, f := range roots {
			if err := w.visit(ctx, f, ContainerRef{Type: ContainerAccount, ID: accID}, accID, 1); err != nil {
				return err
			}
		}
	}
	return nil
}

// folderAccounts maps every reachable folder identifier to its account.
func (s *Service) folderAccounts(ctx context.Context) (map[string]string, error) {
	index := map[string]string{}
	w := &walker{
		recursive:              true,
		includeShared:          true,
		includeRecentlyDeleted: true,
		maxDepth:               s.maxDepth,
		onPath:                 map[string]bool{},
		emit: func(f Folder, _ ContainerRef, accountID string) {
			if id := f.ID(); id != "" {
				index[id] = accountID
			}
		},
	}
	if err := s.walkAccounts(ctx, w, nil); err != nil {
		return nil, err
	}
	return index, nil
}

// walker is a depth-first folder traversal. Exclusion rules prune whole
// subtrees; a folder already on the current path is skipped, so cyclic
// graphs terminate, and paths longer than maxDepth fail.
type walker struct {
	recursive              bool
	includeShared          bool
	includeRecentlyDeleted bool
	maxDepth               int

	onPath map[string]bool
	emit   func(f Folder, container ContainerRef, accountID string)
}

func (w *walker) visit(ctx context.Context, f Folder, container ContainerRef, accountID string, depth int) error {
	if !w.includeRecentlyDeleted && IsRecentlyDeleted(f.Name()) {
		return nil
	}
	if f.Shared() && !w.includeShared {
		return nil
	}

	id := f.ID()
	if id != "" && w.onPath[id] {
		return nil
	}

	w.emit(f, container, accountID)
	if !w.recursive {
		return nil
	}
	return w.children(ctx, f, accountID, depth)
}

// children visits the direct subfolders of f, which sits at depth.
func (w *walker) children(ctx context.Context, f Folder, accountID string, depth int) error {
	kids, err := f.Folders(ctx)
	if err != nil {
		if isMissing(err) {
			return nil
		}
		return err
	}
	if len(kids) == 0 {
		return nil
	}
	if depth >= w.maxDepth {
		return sidecar.Internal("Folder hierarchy exceeds %d levels below folder %s.", w.maxDepth, f.ID())
	}

	id := f.ID()
	if id != "" {
		w.onPath[id] = true
		defer delete(w.onPath, id)
	}

	container := ContainerRef{Type: ContainerFolder, ID: id}
	for _, kid := range kids {
		if err := w.visit(ctx, kid, container, accountID, depth+1); err != nil {
			return err
		}
	}
	return nil
}

func sortFolders(folders []FolderRecord) {
	c := collate.New(language.Und, collate.IgnoreCase)
	slices.SortStableFunc(folders, func(a, b FolderRecord) int {
		if cmp := c.CompareString(a.Name, b.Name); cmp != 0 {
			return cmp
		}
		return strings.Compare(a.FolderID, b.FolderID)
	})
}
