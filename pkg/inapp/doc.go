// Package inapp retrieves in-app notifications and drives the display
// decision for each one.
//
// A cycle runs through these states:
//
//	Idle -> Fetching -> Deciding -> Showing | Consuming | Skipping
//	Skipping -> Fetching
//	Consuming -> Fetching (chaining) | Idle
//	Showing -> Consuming (read on show) | Idle
//
// Fetching lists the user's notifications and picks the first one that has
// not been skipped during the pipeline's lifetime and has not expired. The
// Delegate's OnNew hook decides what happens to it:
//
//   - Show presents it on the registered Target. Notifications flagged
//     read_on_show are consumed right after the handoff.
//   - Consume marks it read and, unless chaining is suppressed, fetches the
//     next candidate.
//   - Skip remembers its id in the skip set and fetches again.
//
// Without an OnNew hook the cycle stops after fetching. Consume failures and
// any other error in a cycle are reported to Delegate.OnError and end the
// cycle; nothing is retried.
//
// The host registers the surface that owns UI presentation:
//
//	p.RegisterTarget(ctx, myTarget)
//	defer p.UnregisterTarget(myTarget)
//
// Presentation always runs inside Target.Post, and any surface already on
// screen is dismissed before a new one is presented. The pipeline never
// keeps a target after it is unregistered.
package inapp
