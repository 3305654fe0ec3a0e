package core

import "errors"

var (
	// ErrGroupNotOwned is returned when a caller-supplied callback group is
	// not registered with the node performing an entity creation. The entity
	// is not registered anywhere and no middleware handle is created when
	// this error is returned.
	ErrGroupNotOwned = errors.New("callback group not owned by node")
)
