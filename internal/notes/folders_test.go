package notes_test

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/notes-sidecar/internal/notes"
	"github.com/roach88/notes-sidecar/internal/sidecar"
)

func folderIDs(folders []notes.FolderRecord) []string {
	out := make([]string, len(folders))
	for i, f := range folders {
		out[i] = f.FolderID
	}
	return out
}

func TestListAccounts(t *testing.T) {
	f := newFixture(t)
	icloud := f.app.AddAccount("acc-1", "iCloud")
	icloud.AddFolder("f-1", "Notes")
	f.app.AddAccount("acc-2", "On My Mac").SetUpgraded(false)

	accounts, err := f.svc.ListAccounts(context.Background())
	require.NoError(t, err)
	require.Len(t, accounts, 2)

	assert.Equal(t, "acc-1", accounts[0].AccountID)
	assert.Equal(t, "iCloud", accounts[0].Name)
	assert.True(t, accounts[0].Upgraded)
	require.NotNil(t, accounts[0].DefaultFolderID)
	assert.Equal(t, "f-1", *accounts[0].DefaultFolderID)

	assert.False(t, accounts[1].Upgraded)
	assert.Nil(t, accounts[1].DefaultFolderID)
}

func TestListAccounts_PropagatesReaderError(t *testing.T) {
	f := newFixture(t)
	f.app.FailAccounts(sidecar.NotAuthorized("Automation permission denied for Notes.app."))

	_, err := f.svc.ListAccounts(context.Background())
	requireCode(t, err, sidecar.CodeNotAuthorized)
}

func TestListFolders_TopLevelSortedByNameThenID(t *testing.T) {
	f := newFixture(t)
	a := f.app.AddAccount("acc-1", "iCloud")
	a.AddFolder("f-3", "beta")
	a.AddFolder("f-2", "Alpha")
	b := f.app.AddAccount("acc-2", "Gmail")
	b.AddFolder("f-1", "alpha")
	b.AddFolder("f-0", "Gamma")

	folders, err := f.svc.ListFolders(context.Background(), notes.ListFoldersParams{})
	require.NoError(t, err)

	assert.Equal(t, []string{"f-1", "f-2", "f-3", "f-0"}, folderIDs(folders))
	for _, rec := range folders {
		assert.Equal(t, notes.ContainerAccount, rec.Container.Type)
	}
	assert.Equal(t, "acc-2", folders[0].Container.ID)
}

func TestListFolders_AccountFilter(t *testing.T) {
	f := newFixture(t)
	f.app.AddAccount("acc-1", "iCloud").AddFolder("f-1", "Notes")
	f.app.AddAccount("acc-2", "Gmail").AddFolder("f-2", "Notes")

	folders, err := f.svc.ListFolders(context.Background(), notes.ListFoldersParams{AccountIDs: []string{"acc-2"}})
	require.NoError(t, err)
	assert.Equal(t, []string{"f-2"}, folderIDs(folders))
}

func TestListFolders_RecursiveTagsChildrenWithFolderContainer(t *testing.T) {
	f := newFixture(t)
	root := f.app.AddAccount("acc-1", "iCloud").AddFolder("f-1", "Work")
	child := root.AddFolder("f-2", "Projects")
	child.AddFolder("f-3", "Archive")

	folders, err := f.svc.ListFolders(context.Background(), notes.ListFoldersParams{Recursive: true})
	require.NoError(t, err)
	require.Len(t, folders, 3)

	byID := map[string]notes.FolderRecord{}
	for _, rec := range folders {
		byID[rec.FolderID] = rec
	}
	assert.Equal(t, notes.ContainerRef{Type: notes.ContainerAccount, ID: "acc-1"}, byID["f-1"].Container)
	assert.Equal(t, notes.ContainerRef{Type: notes.ContainerFolder, ID: "f-1"}, byID["f-2"].Container)
	assert.Equal(t, notes.ContainerRef{Type: notes.ContainerFolder, ID: "f-2"}, byID["f-3"].Container)
}

func TestListFolders_NonRecursiveStopsAtRoots(t *testing.T) {
	f := newFixture(t)
	f.app.AddAccount("acc-1", "iCloud").AddFolder("f-1", "Work").AddFolder("f-2", "Projects")

	folders, err := f.svc.ListFolders(context.Background(), notes.ListFoldersParams{})
	require.NoError(t, err)
	assert.Equal(t, []string{"f-1"}, folderIDs(folders))
}

func TestListFolders_ParentKeepsStoreOrder(t *testing.T) {
	f := newFixture(t)
	parent := f.app.AddAccount("acc-1", "iCloud").AddFolder("f-p", "Parent")
	parent.AddFolder("f-z", "Zulu").AddFolder("f-z1", "Nested")
	parent.AddFolder("f-a", "Alpha")

	folders, err := f.svc.ListFolders(context.Background(), notes.ListFoldersParams{ParentFolderID: "f-p"})
	require.NoError(t, err)
	assert.Equal(t, []string{"f-z", "f-a"}, folderIDs(folders))

	folders, err = f.svc.ListFolders(context.Background(), notes.ListFoldersParams{ParentFolderID: "f-p", Recursive: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"f-z", "f-z1", "f-a"}, folderIDs(folders))
	assert.Equal(t, notes.ContainerRef{Type: notes.ContainerFolder, ID: "f-p"}, folders[0].Container)
}

func TestListFolders_UnknownParent(t *testing.T) {
	f := newFixture(t)

	_, err := f.svc.ListFolders(context.Background(), notes.ListFoldersParams{ParentFolderID: "nope"})
	requireCode(t, err, sidecar.CodeNotFound)
	assert.Equal(t, "Folder not found: nope", sidecar.MessageOf(err))
}

func TestListFolders_ExcludesRecentlyDeletedInEveryLocale(t *testing.T) {
	for _, name := range notes.RecentlyDeletedNames() {
		for _, variant := range []string{name, strings.ToUpper(name), strings.ToLower(name)} {
			t.Run(variant, func(t *testing.T) {
				f := newFixture(t)
				acc := f.app.AddAccount("acc-1", "iCloud")
				acc.AddFolder("f-1", "Notes")
				acc.AddFolder("f-trash", variant).AddFolder("f-inside", "Child")

				params := notes.ListFoldersParams{Recursive: true}
				folders, err := f.svc.ListFolders(context.Background(), params)
				require.NoError(t, err)
				assert.Equal(t, []string{"f-1"}, folderIDs(folders))

				params.IncludeRecentlyDeleted = true
				folders, err = f.svc.ListFolders(context.Background(), params)
				require.NoError(t, err)
				assert.ElementsMatch(t, []string{"f-1", "f-trash", "f-inside"}, folderIDs(folders))
			})
		}
	}
}

func TestListFolders_RecentlyDeletedNeedsExactName(t *testing.T) {
	f := newFixture(t)
	f.app.AddAccount("acc-1", "iCloud").AddFolder("f-1", "Recently Deleted Stuff")

	folders, err := f.svc.ListFolders(context.Background(), notes.ListFoldersParams{})
	require.NoError(t, err)
	assert.Equal(t, []string{"f-1"}, folderIDs(folders))
}

func TestListFolders_SharedPrunesSubtree(t *testing.T) {
	f := newFixture(t)
	acc := f.app.AddAccount("acc-1", "iCloud")
	acc.AddFolder("f-1", "Mine")
	acc.AddFolder("f-s", "Team").MarkShared().AddFolder("f-s1", "Team Child")

	folders, err := f.svc.ListFolders(context.Background(), notes.ListFoldersParams{Recursive: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"f-1"}, folderIDs(folders))

	folders, err = f.svc.ListFolders(context.Background(), notes.ListFoldersParams{Recursive: true, IncludeShared: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"f-1", "f-s", "f-s1"}, folderIDs(folders))
	assert.True(t, folders[1].IsShared)
}

func TestListFolders_CycleTerminates(t *testing.T) {
	f := newFixture(t)
	a := f.app.AddAccount("acc-1", "iCloud").AddFolder("f-a", "A")
	b := a.AddFolder("f-b", "B")
	c := b.AddFolder("f-c", "C")
	c.Link(a)
	b.Link(b)

	folders, err := f.svc.ListFolders(context.Background(), notes.ListFoldersParams{Recursive: true})
	require.NoError(t, err)
	assert.Equal(t, []string{"f-a", "f-b", "f-c"}, folderIDs(folders))
}

func TestListFolders_DepthLimit(t *testing.T) {
	f := newFixture(t, func(o *notes.Options) { o.MaxFolderDepth = 3 })
	f1 := f.app.AddAccount("acc-1", "iCloud").AddFolder("f-1", "L1")
	f3 := f1.AddFolder("f-2", "L2").AddFolder("f-3", "L3")

	folders, err := f.svc.ListFolders(context.Background(), notes.ListFoldersParams{Recursive: true})
	require.NoError(t, err)
	assert.Len(t, folders, 3)

	f3.AddFolder("f-4", "L4")
	_, err = f.svc.ListFolders(context.Background(), notes.ListFoldersParams{Recursive: true})
	requireCode(t, err, sidecar.CodeInternal)
	assert.Contains(t, sidecar.MessageOf(err), "exceeds 3 levels")
}

func TestListFolders_ReaderErrorIsNotSwallowed(t *testing.T) {
	f := newFixture(t)
	f.app.FailAccounts(errors.New("connection reset"))

	_, err := f.svc.ListFolders(context.Background(), notes.ListFoldersParams{})
	requireCode(t, err, sidecar.CodeInternal)
}
