package reconcile

import "log/slog"

type Option func(r *Reconciler)

// WithLogger specifies the logger for the reconciler
func WithLogger(l *slog.Logger) Option {
	return func(r *Reconciler) {
		r.logger = l
	}
}
