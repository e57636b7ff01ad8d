package scheduler

import (
	"context"
	"time"

	orderapp "github.com/storefront/backend/internal/application/order"
	"go.uber.org/zap"
)

// PaymentReconciler confirms pending orders the gateway reports as paid
type PaymentReconciler interface {
	ReconcilePending(ctx context.Context, grace time.Duration, limit int) (orderapp.ReconcileResult, error)
}

// ReconcileRecorder receives reconciliation counts
type ReconcileRecorder interface {
	RecordReconciled(ctx context.Context, outcome string, n int)
}

// OTPPurger removes expired signup challenges
type OTPPurger interface {
	PurgeExpiredOTPs(ctx context.Context) (int64, error)
}

// PaymentReconcileJob picks up payments whose webhook never arrived
func PaymentReconcileJob(r PaymentReconciler, interval, grace time.Duration, batch int, rec ReconcileRecorder, logger *zap.Logger) Job {
	if logger == nil {
		logger = zap.NewNop()
	}
	return Job{
		Name:     "payment-reconcile",
		Interval: interval,
		Run: func(ctx context.Context) error {
			res, err := r.ReconcilePending(ctx, grace, batch)
			if rec != nil {
				rec.RecordReconciled(ctx, "confirmed", res.Confirmed)
				rec.RecordReconciled(ctx, "failed", res.Failed)
				rec.RecordReconciled(ctx, "pending", res.Checked-res.Confirmed-res.Failed)
			}
			if err != nil {
				return err
			}
			if res.Checked > 0 {
				logger.Info("pending payments reconciled",
					zap.Int("checked", res.Checked),
					zap.Int("confirmed", res.Confirmed),
					zap.Int("failed", res.Failed))
			}
			return nil
		},
	}
}

// OTPCleanupJob deletes expired signup codes
func OTPCleanupJob(p OTPPurger, interval time.Duration) Job {
	return Job{
		Name:       "otp-cleanup",
		Interval:   interval,
		RunOnStart: true,
		Run: func(ctx context.Context) error {
			_, err := p.PurgeExpiredOTPs(ctx)
			return err
		},
	}
}
