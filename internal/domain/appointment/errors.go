package appointment

import "errors"

// Backend answers the use cases react to. Repositories report them through
// errors.Is so callers never see transport details.
var (
	ErrSlotTaken = errors.New("appointment: time slot already taken")
	ErrNotFound  = errors.New("appointment: not found")
)
