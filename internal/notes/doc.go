// Package notes is the adapter between sidecar commands and the Notes
// application's live object graph.
//
// The application is reached through two ports. Reader is the
// attribute-query channel: it enumerates and resolves accounts, folders,
// notes and attachments and reads or assigns their fields. Writer is the
// scripted command channel: it runs the AppleScript commands the query
// channel cannot express (create, delete, attach, export). Scripts are built
// in this package, and every interpolated value passes through osa.Quote.
//
// Handles are never kept across operations. Every public Service method
// acquires the process-wide "notes" lock, resolves the objects it needs by
// identifier, and returns plain records.
package notes
