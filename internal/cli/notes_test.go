package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/roach88/notes-sidecar/internal/notes"
	"github.com/roach88/notes-sidecar/internal/sidecar"
)

func decodeResult(t *testing.T, env envelope, out any) {
	t.Helper()
	require.True(t, env.OK, "error: %+v", env.Error)
	require.NoError(t, json.Unmarshal(env.Result, out))
}

func TestNotes_AccountsAndFolders(t *testing.T) {
	h := newHarness(t)
	acc := h.app.AddAccount("acc-1", "iCloud")
	acc.AddFolder("f-b", "Work")
	acc.AddFolder("f-a", "Archive").AddFolder("f-c", "2025")

	code, _, env := h.run(t, "notes", "accounts")
	require.Equal(t, ExitSuccess, code)
	var accounts struct {
		Accounts []notes.AccountRecord `json:"accounts"`
	}
	decodeResult(t, env, &accounts)
	require.Len(t, accounts.Accounts, 1)
	require.NotNil(t, accounts.Accounts[0].DefaultFolderID)
	assert.Equal(t, "f-b", *accounts.Accounts[0].DefaultFolderID)

	_, _, env = h.run(t, "notes", "folders", "--recursive")
	var folders struct {
		Folders []notes.FolderRecord `json:"folders"`
	}
	decodeResult(t, env, &folders)
	ids := make([]string, 0, len(folders.Folders))
	for _, f := range folders.Folders {
		ids = append(ids, f.FolderID)
	}
	assert.ElementsMatch(t, []string{"f-a", "f-b", "f-c"}, ids)

	_, _, env = h.run(t, "notes", "folders")
	decodeResult(t, env, &folders)
	assert.Len(t, folders.Folders, 2)
}

func TestNotes_ListNotesFlags(t *testing.T) {
	h := newHarness(t)
	f := h.app.AddAccount("acc-1", "iCloud").AddFolder("f-1", "Notes")
	f.AddNote("n-1", "Groceries", "milk and eggs")
	f.AddNote("n-2", "Trip", "passport")

	_, _, env := h.run(t, "notes", "notes", "--query", "EGGS",
		"--include-plaintext-excerpt", "--plaintext-excerpt-max-len", "4")
	var result struct {
		Notes []notes.NoteSummary `json:"notes"`
	}
	decodeResult(t, env, &result)
	require.Len(t, result.Notes, 1)
	assert.Equal(t, "n-1", result.Notes[0].NoteID)
	require.NotNil(t, result.Notes[0].PlaintextExcerpt)
	assert.Equal(t, "milk", *result.Notes[0].PlaintextExcerpt)

	code, _, env := h.run(t, "notes", "notes", "--limit", "0")
	requireFailure(t, code, env, sidecar.CodeInvalidArguments)
	assert.Equal(t, "--limit must be > 0", env.Error.Message)
}

func TestNotes_GetNoteIncludeFlags(t *testing.T) {
	h := newHarness(t)
	f := h.app.AddAccount("acc-1", "iCloud").AddFolder("f-1", "Notes")
	n := f.AddNote("n-1", "Groceries", "milk")
	n.AddAttachment("att-1", "list.txt", []byte("x"))

	_, _, env := h.run(t, "notes", "get-note", "--note-id", "n-1")
	var result struct {
		Note notes.NoteDetail `json:"note"`
	}
	decodeResult(t, env, &result)
	require.NotNil(t, result.Note.Plaintext)
	assert.Equal(t, "milk", *result.Note.Plaintext)
	assert.Nil(t, result.Note.BodyHTML)
	assert.Len(t, result.Note.Attachments, 1)

	_, _, env = h.run(t, "notes", "get-note", "--note-id", "n-1",
		"--no-include-plaintext", "--no-include-attachments", "--include-body-html")
	result.Note = notes.NoteDetail{}
	decodeResult(t, env, &result)
	assert.Nil(t, result.Note.Plaintext)
	require.NotNil(t, result.Note.BodyHTML)
	assert.Equal(t, "<div>milk</div>", *result.Note.BodyHTML)
	assert.Nil(t, result.Note.Attachments)

	_, _, env = h.run(t, "notes", "get-note", "--note-id", "n-1", "--include-plaintext=false")
	result.Note = notes.NoteDetail{}
	decodeResult(t, env, &result)
	assert.Nil(t, result.Note.Plaintext)
}

func TestNotes_GetProtectedNoteIsLocked(t *testing.T) {
	h := newHarness(t)
	f := h.app.AddAccount("acc-1", "iCloud").AddFolder("f-1", "Notes")
	f.AddNote("n-1", "Diary", "secret").MarkProtected()

	code, out, env := h.run(t, "notes", "get-note", "--note-id", "n-1")
	requireFailure(t, code, env, sidecar.CodeLocked)
	assert.NotContains(t, out, "secret")
}

func TestNotes_CreateNoteFromMarkdown(t *testing.T) {
	h := newHarness(t)
	h.app.AddAccount("acc-1", "iCloud").AddFolder("f-1", "Notes")

	code, _, env := h.run(t, "notes", "create-note", "--title", "Plan",
		"--markdown", "# Goals\n\n**ship**\n\n<script>alert(1)</script>")
	require.Equal(t, ExitSuccess, code)
	var result struct {
		Note notes.NoteDetail `json:"note"`
	}
	decodeResult(t, env, &result)
	assert.Equal(t, "Plan", result.Note.Name)
	assert.Equal(t, "f-1", result.Note.FolderID)

	body, ok := h.app.NoteBody(result.Note.NoteID)
	require.True(t, ok)
	assert.Contains(t, body, "<strong>ship</strong>")
	assert.NotContains(t, body, "<script")
}

func TestNotes_CreateNoteRejectsBothBodies(t *testing.T) {
	h := newHarness(t)
	h.app.AddAccount("acc-1", "iCloud").AddFolder("f-1", "Notes")

	code, _, env := h.run(t, "notes", "create-note", "--plaintext", "a", "--markdown", "b")
	requireFailure(t, code, env, sidecar.CodeInvalidArguments)
	assert.Empty(t, h.locker.Names(), "validation runs before the lock")
}

func TestNotes_UpdateNote(t *testing.T) {
	h := newHarness(t)
	f := h.app.AddAccount("acc-1", "iCloud").AddFolder("f-1", "Notes")
	f.AddNote("n-1", "Groceries", "milk")

	code, _, env := h.run(t, "notes", "update-note", "--note-id", "n-1", "--set-plaintext", "bread")
	requireFailure(t, code, env, sidecar.CodeInvalidArguments)
	assert.Zero(t, h.app.Mutations())

	code, _, env = h.run(t, "notes", "update-note", "--note-id", "n-1",
		"--set-plaintext", "bread", "--allow-destructive", "--title", "Bakery")
	require.Equal(t, ExitSuccess, code, "error: %+v", env.Error)
	var result struct {
		Note notes.NoteDetail `json:"note"`
	}
	decodeResult(t, env, &result)
	assert.Equal(t, "Bakery", result.Note.Name)
	require.NotNil(t, result.Note.Plaintext)
	assert.Equal(t, "bread", *result.Note.Plaintext)
}

func TestNotes_UpdateAcceptsEmptyAppend(t *testing.T) {
	h := newHarness(t)
	f := h.app.AddAccount("acc-1", "iCloud").AddFolder("f-1", "Notes")
	f.AddNote("n-1", "Groceries", "milk")

	_, _, env := h.run(t, "notes", "update-note", "--note-id", "n-1", "--append-plaintext", "")
	assert.True(t, env.OK, "error: %+v", env.Error)
}

func TestNotes_DeleteNote(t *testing.T) {
	h := newHarness(t)
	f := h.app.AddAccount("acc-1", "iCloud").AddFolder("f-1", "Notes")
	f.AddNote("n-1", "Groceries", "milk")

	code, out, _ := h.run(t, "notes", "delete-note", "--note-id", "n-1")
	assert.Equal(t, ExitSuccess, code)
	assert.Equal(t, `{"ok":true,"result":{"deleted_note_id":"n-1"}}`+"\n", out)
	assert.False(t, h.app.HasNote("n-1"))
	assert.Equal(t, []string{notes.LockName}, h.locker.Names())
}

func TestNotes_SharedNoteIsNotWritable(t *testing.T) {
	h := newHarness(t)
	f := h.app.AddAccount("acc-1", "iCloud").AddFolder("f-1", "Notes")
	f.AddNote("n-1", "Team", "agenda").MarkShared()

	code, _, env := h.run(t, "notes", "delete-note", "--note-id", "n-1")
	requireFailure(t, code, env, sidecar.CodeNotWritable)
	assert.True(t, h.app.HasNote("n-1"))
}

func TestNotes_Attachments(t *testing.T) {
	h := newHarness(t)
	f := h.app.AddAccount("acc-1", "iCloud").AddFolder("f-1", "Notes")
	n := f.AddNote("n-1", "Receipts", "")
	n.AddAttachment("att-1", "a.pdf", []byte("pdf"))
	n.AddAttachment("att-2", "b.pdf", []byte("pdf")).MarkShared()

	_, _, env := h.run(t, "notes", "attachments", "--note-id", "n-1")
	var result struct {
		Attachments []notes.AttachmentRecord `json:"attachments"`
	}
	decodeResult(t, env, &result)
	assert.Len(t, result.Attachments, 1)

	_, _, env = h.run(t, "notes", "attachments", "--note-id", "n-1", "--include-shared")
	decodeResult(t, env, &result)
	assert.Len(t, result.Attachments, 2)

	file := filepath.Join(t.TempDir(), "scan.png")
	require.NoError(t, os.WriteFile(file, []byte("png"), 0o644))
	_, _, env = h.run(t, "notes", "add-attachment", "--note-id", "n-1", "--attach-file", file)
	decodeResult(t, env, &result)
	require.Len(t, result.Attachments, 1)
	assert.Equal(t, "scan.png", result.Attachments[0].Name)

	code, _, env := h.run(t, "notes", "add-attachment", "--note-id", "n-1")
	requireFailure(t, code, env, sidecar.CodeInvalidArguments)
	assert.Equal(t, "--attach-file is required.", env.Error.Message)
}

func TestNotes_SaveAttachment(t *testing.T) {
	h := newHarness(t)
	f := h.app.AddAccount("acc-1", "iCloud").AddFolder("f-1", "Notes")
	f.AddNote("n-1", "Receipts", "").AddAttachment("att-1", "a.pdf", []byte("pdf"))

	dest := filepath.Join(t.TempDir(), "out.pdf")
	_, _, env := h.run(t, "notes", "save-attachment", "--attachment-id", "att-1", "--output-path", dest)
	var result struct {
		OutputPath string `json:"output_path"`
	}
	decodeResult(t, env, &result)
	assert.Equal(t, dest, result.OutputPath)

	data, err := os.ReadFile(dest)
	require.NoError(t, err)
	assert.Equal(t, "pdf", string(data))

	code, _, env := h.run(t, "notes", "save-attachment", "--attachment-id", "att-1", "--output-path", dest)
	requireFailure(t, code, env, sidecar.CodeInvalidArguments)
	assert.Equal(t, "Output file exists. Use --overwrite.", env.Error.Message)

	_, _, env = h.run(t, "notes", "save-attachment", "--attachment-id", "att-1", "--output-path", dest, "--overwrite")
	assert.True(t, env.OK, "error: %+v", env.Error)
}

func TestNotes_ConflictingContentModes(t *testing.T) {
	h := newHarness(t)
	f := h.app.AddAccount("acc-1", "iCloud").AddFolder("f-1", "Notes")
	f.AddNote("n-1", "Groceries", "milk")

	code, _, env := h.run(t, "notes", "update-note", "--note-id", "n-1",
		"--set-plaintext", "x", "--append-markdown", "y", "--allow-destructive")
	requireFailure(t, code, env, sidecar.CodeInvalidArguments)
	assert.Zero(t, h.app.Mutations())
}

func TestNotes_AddMissingFileMutatesNothing(t *testing.T) {
	h := newHarness(t)
	f := h.app.AddAccount("acc-1", "iCloud").AddFolder("f-1", "Notes")
	f.AddNote("n-1", "Groceries", "milk")

	code, _, env := h.run(t, "notes", "add-attachment", "--note-id", "n-1", "--attach-file", "/does/not/exist")
	requireFailure(t, code, env, sidecar.CodeInvalidArguments)
	assert.Equal(t, "File does not exist: /does/not/exist", env.Error.Message)
	assert.Zero(t, h.app.Mutations())
	assert.Empty(t, h.locker.Names())
}
