// Package events delivers tracked events to the Parcelvoy API.
//
// Track is fire-and-forget: the batch is submitted to a dispatch.Queue and the
// call returns at once. Delivery makes one attempt plus three retries of the
// identical payload, immediately by default. When every attempt fails the
// batch is logged and dropped; no error reaches the caller and nothing is
// queued for later.
//
//	d := events.New(client, queue, events.WithBackoff(events.FixedBackoff{Interval: time.Second}))
//	d.Track(ctx, api.Event{Name: "purchase", AnonymousID: anon, Properties: props})
package events
