package domain

var allowedTransitions = map[RequestStatus][]RequestStatus{
	StatusPending:   {StatusApproved, StatusRejected, StatusCancelled},
	StatusApproved:  {StatusCompleted, StatusCancelled},
	StatusRejected:  {},
	StatusCompleted: {},
	StatusCancelled: {},
}

// adminSettable lists the statuses an administrator may write.
var adminSettable = map[RequestStatus]struct{}{
	StatusPending:   {},
	StatusApproved:  {},
	StatusRejected:  {},
	StatusCompleted: {},
}

// Valid reports whether the status is a known state.
func (s RequestStatus) Valid() bool {
	_, ok := allowedTransitions[s]
	return ok
}

// Terminal reports whether no further transitions leave this status.
func (s RequestStatus) Terminal() bool {
	next, ok := allowedTransitions[s]
	return ok && len(next) == 0
}

// AdminSettable reports whether an administrator may set this status directly.
func (s RequestStatus) AdminSettable() bool {
	_, ok := adminSettable[s]
	return ok
}

// CanTransition reports whether current may move to next. Re-applying a
// non-terminal status is allowed so comments can be edited.
func CanTransition(current, next RequestStatus) bool {
	if current == next {
		return !current.Terminal() && current.Valid()
	}
	for _, candidate := range allowedTransitions[current] {
		if candidate == next {
			return true
		}
	}
	return false
}

// CanCancel reports whether a requester may cancel from the current status.
func CanCancel(current RequestStatus) bool {
	return CanTransition(current, StatusCancelled) && current != StatusCancelled
}
