package notify

import (
	"context"
	"errors"
)

// Message is addressed to an account; Email is optional and only used by
// transports that need it.
type Message struct {
	AccountID uint
	Email     string
	Title     string
	Body      string
}

type Notifier interface {
	Notify(ctx context.Context, msg Message) error
}

// Multi delivers to every notifier and joins their errors.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, msg Message) error {
	var errs []error
	for _, n := range m {
		if n == nil {
			continue
		}
		if err := n.Notify(ctx, msg); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
