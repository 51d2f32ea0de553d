package notifier

import "context"

// Nop drops every alert. Used when no notifier is configured.
type Nop struct{}

func (Nop) Notify(ctx context.Context, message string) error {
	return nil
}
