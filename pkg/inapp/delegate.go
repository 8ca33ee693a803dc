package inapp

import (
	"context"
	"fmt"

	"github.com/parcelvoy/go-sdk/pkg/content"
)

// Decision is the delegate's verdict on a fetched notification.
type Decision int

const (
	Show Decision = iota + 1
	Skip
	Consume
)

func (d Decision) String() string {
	switch d {
	case Show:
		return "show"
	case Skip:
		return "skip"
	case Consume:
		return "consume"
	default:
		return fmt.Sprintf("decision(%d)", int(d))
	}
}

// Action is a user interaction reported by a surface.
type Action string

const (
	ActionDismiss Action = "dismiss"
	ActionCustom  Action = "custom"
)

// Delegate is a set of optional hooks. Leave any field nil to opt out.
type Delegate struct {
	// OnNew decides what to do with a fetched notification. When nil,
	// cycles stop after fetching.
	OnNew func(ctx context.Context, n content.Notification) Decision

	// Handle receives every action taken on a surface, after the pipeline
	// has processed it.
	Handle func(ctx context.Context, action Action, params map[string]any, n content.Notification)

	// OnError receives consume failures, missing targets and any other
	// error that ends a cycle.
	OnError func(err error)

	// OnShown is called once a surface reports it is visible.
	OnShown func(n content.Notification)

	// AutoShow runs one cycle when the first target is registered.
	AutoShow bool

	// DarkMode is forwarded to surfaces.
	DarkMode bool
}

// AlwaysShow is an OnNew hook that shows every notification.
func AlwaysShow(context.Context, content.Notification) Decision { return Show }
