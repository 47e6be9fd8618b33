package sentinel

import "errors"

// Sentinel errors for infrastructure facts. Stores return these (optionally
// wrapped) so services can translate them into domain errors.
//
// - ErrNotFound: record does not exist, or its expiry has passed
// - ErrInvalidState: store asked to do something its contents do not allow
// - ErrUnavailable: backing store temporarily unreachable
var (
	ErrNotFound     = errors.New("not found")
	ErrInvalidState = errors.New("invalid state")
	ErrUnavailable  = errors.New("unavailable")
)
