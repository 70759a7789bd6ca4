// Package osa drives Open Scripting Architecture languages through osascript.
//
// Two automation channels share this package:
//
//   - the attribute-query channel runs JavaScript for Automation scripts that
//     take their inputs through argv and print JSON;
//   - the scripted command channel runs AppleScript assembled from templates.
//     Every value interpolated into such a template must pass through Quote,
//     which is the only injection boundary of the channel.
//
// Native failures are reported by osascript as a trailing "(-NNNN)" error
// number on stderr. Classify is the single place that turns those numbers into
// the sidecar taxonomy.
package osa
