package notes_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/notes-sidecar/internal/sidecar"
)

func writeFile(t *testing.T, name, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o600))
	return path
}

func TestListAttachments_FiltersShared(t *testing.T) {
	f := newFixture(t)
	n := f.app.AddAccount("acc-1", "iCloud").AddFolder("f-1", "Notes").AddNote("n-1", "T", "")
	n.AddAttachment("att-1", "mine.png", nil).SetURL("https://example.com/a")
	n.AddAttachment("att-2", "ours.png", nil).MarkShared()

	atts, err := f.svc.ListAttachments(context.Background(), "n-1", false)
	require.NoError(t, err)
	require.Len(t, atts, 1)
	assert.Equal(t, "att-1", atts[0].AttachmentID)
	assert.Equal(t, "n-1", atts[0].NoteID)
	assert.Equal(t, "cid-att-1", atts[0].ContentIdentifier)
	require.NotNil(t, atts[0].URL)
	assert.Equal(t, "https://example.com/a", *atts[0].URL)

	atts, err = f.svc.ListAttachments(context.Background(), "n-1", true)
	require.NoError(t, err)
	require.Len(t, atts, 2)
	assert.Nil(t, atts[1].URL)
	assert.True(t, atts[1].IsShared)
}

func TestListAttachments_ProtectedIsLocked(t *testing.T) {
	f := newFixture(t)
	f.app.AddAccount("acc-1", "iCloud").AddFolder("f-1", "Notes").AddNote("n-1", "T", "").MarkProtected()

	_, err := f.svc.ListAttachments(context.Background(), "n-1", true)
	requireCode(t, err, sidecar.CodeLocked)
}

func TestAddAttachments(t *testing.T) {
	f := newFixture(t)
	f.app.AddAccount("acc-1", "iCloud").AddFolder("f-1", "Notes").AddNote("n-1", "T", "")
	a := writeFile(t, "a.txt", "alpha")
	b := writeFile(t, "b with space.txt", "beta")

	atts, err := f.svc.AddAttachments(context.Background(), "n-1", []string{a, b})
	require.NoError(t, err)
	require.Len(t, atts, 2)
	assert.Equal(t, "a.txt", atts[0].Name)
	assert.Equal(t, "b with space.txt", atts[1].Name)

	scripts := f.app.Scripts()
	require.Len(t, scripts, 1, "one script for all files")
	assert.Contains(t, scripts[0], `(POSIX file "`+a+`")`)
}

func TestAddAttachments_RelativePathsBecomeAbsolute(t *testing.T) {
	f := newFixture(t)
	f.app.AddAccount("acc-1", "iCloud").AddFolder("f-1", "Notes").AddNote("n-1", "T", "")
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "rel.txt"), []byte("r"), 0o600))
	t.Chdir(dir)

	_, err := f.svc.AddAttachments(context.Background(), "n-1", []string{"rel.txt"})
	require.NoError(t, err)

	abs, err := filepath.Abs("rel.txt")
	require.NoError(t, err)
	assert.Contains(t, f.app.Scripts()[0], `(POSIX file "`+abs+`")`)
}

func TestAddAttachments_ValidatesBeforeTouchingStore(t *testing.T) {
	dir := t.TempDir()
	good := writeFile(t, "ok.txt", "ok")

	tests := []struct {
		name    string
		paths   []string
		message string
	}{
		{name: "none", paths: nil, message: "--attach-file is required."},
		{name: "missing", paths: []string{"/does/not/exist"}, message: "File does not exist: /does/not/exist"},
		{name: "missing after good", paths: []string{good, "/does/not/exist"}, message: "File does not exist: /does/not/exist"},
		{name: "directory", paths: []string{dir}, message: "Expected file but got directory: " + dir},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture(t)
			f.app.AddAccount("acc-1", "iCloud").AddFolder("f-1", "Notes").AddNote("n-1", "T", "")

			_, err := f.svc.AddAttachments(context.Background(), "n-1", tt.paths)
			requireCode(t, err, sidecar.CodeInvalidArguments)
			assert.Equal(t, tt.message, sidecar.MessageOf(err))
			assert.Zero(t, f.app.Mutations())
			assert.Empty(t, f.locker.Names())
		})
	}
}

func TestSaveAttachment(t *testing.T) {
	f := newFixture(t)
	n := f.app.AddAccount("acc-1", "iCloud").AddFolder("f-1", "Notes").AddNote("n-1", "T", "")
	n.AddAttachment("att-1", "a.bin", []byte("payload"))
	out := filepath.Join(t.TempDir(), "a.bin")

	got, err := f.svc.SaveAttachment(context.Background(), "att-1", out, false)
	require.NoError(t, err)
	assert.Equal(t, out, got)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "payload", string(data))
}

func TestSaveAttachment_ExistingOutput(t *testing.T) {
	f := newFixture(t)
	n := f.app.AddAccount("acc-1", "iCloud").AddFolder("f-1", "Notes").AddNote("n-1", "T", "")
	n.AddAttachment("att-1", "a.bin", []byte("new"))
	out := writeFile(t, "a.bin", "old")

	_, err := f.svc.SaveAttachment(context.Background(), "att-1", out, false)
	requireCode(t, err, sidecar.CodeInvalidArguments)
	assert.Equal(t, "Output file exists. Use --overwrite.", sidecar.MessageOf(err))
	assert.Empty(t, f.app.Scripts())

	_, err = f.svc.SaveAttachment(context.Background(), "att-1", out, true)
	require.NoError(t, err)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "new", string(data))
}

func TestSaveAttachment_UnknownAttachmentKeepsExistingFile(t *testing.T) {
	f := newFixture(t)
	out := writeFile(t, "keep.bin", "old")

	_, err := f.svc.SaveAttachment(context.Background(), "att-missing", out, true)
	requireCode(t, err, sidecar.CodeNotFound)

	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "old", string(data))
}
