package notes

import (
	"fmt"
	"strings"

	"github.com/roach88/notes-sidecar/internal/osa"
)

// Scripts for the operations the attribute channel cannot perform. Every
// interpolated value goes through osa.Quote.

type script struct {
	lines []string
}

func newScript(appName string) *script {
	return &script{lines: []string{"tell application " + osa.Quote(appName)}}
}

func (s *script) add(format string, values ...string) *script {
	quoted := make([]any, len(values))
	for i, v := range values {
		quoted[i] = osa.Quote(v)
	}
	s.lines = append(s.lines, fmt.Sprintf(format, quoted...))
	return s
}

func (s *script) raw(line string) *script {
	s.lines = append(s.lines, line)
	return s
}

func (s *script) String() string {
	return strings.Join(append(s.lines, "end tell"), "\n")
}

// createNoteScript makes a note in folderID, or in the default folder of
// the default account when folderID is empty, and returns its identifier.
func createNoteScript(appName, folderID, title string) string {
	s := newScript(appName)
	if folderID != "" {
		s.add("set theFolder to first folder whose id is %s", folderID)
	} else {
		s.raw("set theAccount to default account")
		s.raw("set theFolder to default folder of theAccount")
	}
	if title != "" {
		s.add("set theNote to make new note at theFolder with properties {name:%s}", title)
	} else {
		s.raw("set theNote to make new note at theFolder")
	}
	s.raw("return id of theNote")
	return s.String()
}

func deleteNoteScript(appName, noteID string) string {
	return newScript(appName).
		add("set theNote to first note whose id is %s", noteID).
		raw("delete theNote").
		add("return %s", noteID).
		String()
}

// addAttachmentsScript attaches every path to the note and returns the new
// attachment identifiers in path order.
func addAttachmentsScript(appName, noteID string, paths []string) string {
	s := newScript(appName).
		add("set theNote to first note whose id is %s", noteID).
		raw("set outIds to {}")
	for i, p := range paths {
		v := fmt.Sprintf("a%d", i+1)
		s.add("set "+v+" to make new attachment at end of attachments of theNote with data (POSIX file %s)", p)
		s.raw("copy id of " + v + " to end of outIds")
	}
	s.raw("return outIds")
	return s.String()
}

func saveAttachmentScript(appName, attachmentID, outputPath string) string {
	return newScript(appName).
		add("set theAtt to first attachment whose id is %s", attachmentID).
		add("save theAtt in (POSIX file %s)", outputPath).
		add("return %s", outputPath).
		String()
}
