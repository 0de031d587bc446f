// internal/domain/order/status.go
package order

import "fmt"

// transitions lists the statuses reachable from each status. Anything not
// listed, including staying in place, is refused.
var transitions = map[Status][]Status{
	StatusPending: {
		StatusProcessing,
		StatusFailed,
		StatusCancelled,
	},
	StatusFailed: {
		StatusProcessing,
		StatusCancelled,
	},
	StatusProcessing: {
		StatusShipped,
		StatusCancelled,
	},
	StatusShipped: {
		StatusDelivered,
	},
	StatusDelivered: {
		StatusCompleted,
	},
}

// CanTransition reports whether an order may move from one status to another
func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// ParseStatus validates a status name
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusPending, StatusProcessing, StatusShipped, StatusDelivered,
		StatusCompleted, StatusCancelled, StatusFailed:
		return st, nil
	default:
		return "", fmt.Errorf("%w %q", ErrUnknownStatus, s)
	}
}

// IsTerminal reports whether no further transition is possible
func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}
