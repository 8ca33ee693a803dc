package identity

import "errors"

var (
	ErrStore      = errors.New("identity: storage failure")
	ErrExternalID = errors.New("identity: external id is required")
)
