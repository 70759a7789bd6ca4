// Package notesapp binds the notes ports to the macOS Notes application.
//
// Reads go through an embedded JavaScript for Automation script whose
// inputs arrive as argv, so no user value is ever spliced into source.
// Writes run the AppleScript the notes package builds.
package notesapp
