// Package sidecar defines the error taxonomy shared by every sidecar command.
//
// Every failure that reaches the response envelope carries exactly one Code.
// Packages below the CLI construct errors with the helpers in this package and
// wrap them with fmt.Errorf("...: %w") when adding context; CodeOf recovers
// the code through any amount of wrapping.
package sidecar
