package notifier

import (
	"context"
	"errors"
)

// Multi notifies every wrapped notifier in order. One failure does not
// stop the rest; all failures are joined.
type Multi []Notifier

func (m Multi) Notify(ctx context.Context, input *NotifyInput) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ctx, input); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
