package order

import "errors"

var ErrInvalidTransition = errors.New("invalid order status transition")

type Status string

const (
	StatusPending    Status = "pending"
	StatusProcessing Status = "processing"
	StatusShipped    Status = "shipped"
	StatusDelivered  Status = "delivered"
	StatusCancelled  Status = "cancelled"
	StatusFailed     Status = "failed"
	StatusReturned   Status = "returned"
)

func (s Status) String() string {
	return string(s)
}

func (s Status) IsValid() bool {
	_, ok := transitions[s]
	return ok
}

func NewStatus(v string) (Status, error) {
	s := Status(v)
	if !s.IsValid() {
		return "", ErrInvalidTransition
	}
	return s, nil
}

// transitions is the fixed directed graph of allowed status moves. The only
// edge that revisits a state is the failed -> pending retry.
var transitions = map[Status][]Status{
	StatusPending:    {StatusProcessing, StatusCancelled, StatusFailed},
	StatusProcessing: {StatusShipped, StatusCancelled},
	StatusShipped:    {StatusDelivered, StatusCancelled},
	StatusDelivered:  {StatusReturned},
	StatusFailed:     {StatusPending},
	StatusCancelled:  {},
	StatusReturned:   {},
}

func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

func (s Status) IsTerminal() bool {
	return len(transitions[s]) == 0
}

// ReleasesStock reports whether entering this status must return the
// order's reserved quantities to the catalog.
func (s Status) ReleasesStock() bool {
	return s == StatusCancelled || s == StatusReturned
}

func (s Status) IsCancellable() bool {
	return s == StatusPending || s == StatusProcessing
}

func (s Status) IsReturnable() bool {
	return s == StatusDelivered
}
