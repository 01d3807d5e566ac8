package notifier

import (
	"errors"

	"github.com/amishk599/jobscout/internal/model"
)

var _ model.Notifier = Multi(nil)

// Multi fans an event out to every notifier. All notifiers are called even if
// some fail; the failures are joined.
type Multi []model.Notifier

func (m Multi) Notify(ev model.Event) error {
	var errs []error
	for _, n := range m {
		if err := n.Notify(ev); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
