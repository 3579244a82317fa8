// Package core is the orchestration layer.  It composes the event loop,
// the network client and the operator input into complete operational
// modes and provides a builder that selects the right mode from a
// Config.
//
// Architecture layers (bottom → top):
//
//	loop, mailbox  →  client, work, dispatch, input  →  core  →  cmd (CLI)
package core

import "context"

// Mode represents a complete operational mode of nbclient (the
// interactive client or the echo peer).  Each mode owns its full
// lifecycle from setup to teardown.
type Mode interface {
	Run(ctx context.Context) error
}
