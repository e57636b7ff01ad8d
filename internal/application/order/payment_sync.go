package order

import (
	"context"
	"errors"
	"time"

	"github.com/storefront/backend/internal/domain/payment"
	"github.com/storefront/backend/internal/domain/shared"
	"go.uber.org/zap"
)

// WebhookDedupTTL is how long a delivered webhook event id is remembered
const WebhookDedupTTL = 24 * time.Hour

// HandleWebhook verifies and applies a gateway notification. Repeated
// deliveries of the same event are acknowledged without side effects. The
// event id is claimed before applying so concurrent deliveries run once, and
// released again when applying fails so the gateway's retry is processed.
func (s *OrderService) HandleWebhook(ctx context.Context, payload []byte, timestamp, signature string) error {
	n, err := s.gateway.VerifyWebhook(payload, timestamp, signature)
	if err != nil {
		s.logger.Warn("rejected payment webhook", zap.Error(err))
		return err
	}

	key := webhookKeyPrefix + n.EventID
	claimed := false
	if s.idempotency != nil && n.EventID != "" {
		isNew, err := s.idempotency.MarkProcessed(ctx, key, WebhookDedupTTL)
		switch {
		case err != nil:
			s.logger.Warn("failed to check webhook idempotency, processing anyway",
				zap.String("event_id", n.EventID),
				zap.Error(err))
		case !isNew:
			s.logger.Debug("duplicate payment webhook skipped", zap.String("event_id", n.EventID))
			return nil
		default:
			claimed = true
		}
	}

	if err := s.applyNotification(ctx, n); err != nil {
		if claimed {
			s.releaseWebhook(ctx, key, n.EventID)
		}
		return err
	}
	return nil
}

const webhookKeyPrefix = "payment_webhook:"

func (s *OrderService) applyNotification(ctx context.Context, n *payment.Notification) error {
	if !n.IsPaymentSuccess() {
		s.logger.Info("payment webhook ignored",
			zap.String("type", n.Type),
			zap.String("payment_status", n.PaymentStatus),
			zap.String("gateway_order_id", n.GatewayOrderID))
		return nil
	}

	o, err := s.orderRepo.FindByGatewayOrderID(ctx, n.GatewayOrderID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			s.logger.Warn("payment webhook for unknown order", zap.String("gateway_order_id", n.GatewayOrderID))
			return nil
		}
		return err
	}
	if !n.Amount.IsZero() && !n.Amount.Equal(o.TotalAmount) {
		s.logger.Error("payment webhook amount mismatch",
			zap.String("order_id", o.ID.String()),
			zap.String("expected", o.TotalAmount.String()),
			zap.String("received", n.Amount.String()))
		return shared.NewDomainError(shared.CodePayment, "Paid amount does not match the order total")
	}

	_, err = s.markPaid(ctx, o, n.ReceivedAt)
	return err
}

// releaseWebhook drops the claim even when the request context is gone
func (s *OrderService) releaseWebhook(ctx context.Context, key, eventID string) {
	if err := s.idempotency.Release(context.WithoutCancel(ctx), key); err != nil {
		s.logger.Warn("failed to release webhook claim; redelivery will be skipped until it expires",
			zap.String("event_id", eventID),
			zap.Error(err))
	}
}

// ReconcileResult counts what one reconciliation pass did
type ReconcileResult struct {
	Checked   int
	Confirmed int
	Failed    int
}

// ReconcilePending asks the gateway about unpaid orders older than grace
// and confirms those it reports as paid.
func (s *OrderService) ReconcilePending(ctx context.Context, grace time.Duration, limit int) (ReconcileResult, error) {
	var result ReconcileResult
	orders, err := s.orderRepo.FindAwaitingPayment(ctx, s.now().Add(-grace), limit)
	if err != nil {
		return result, err
	}

	for i := range orders {
		if ctx.Err() != nil {
			return result, ctx.Err()
		}
		o := &orders[i]
		result.Checked++

		status, err := s.gateway.FetchOrder(ctx, o.GatewayOrderID)
		if err != nil {
			result.Failed++
			s.logger.Warn("reconcile: gateway lookup failed",
				zap.String("order_id", o.ID.String()),
				zap.Error(err))
			continue
		}
		if !status.Status.IsSuccess() {
			if status.Status.IsFinal() {
				s.logger.Debug("reconcile: payment closed without success",
					zap.String("order_id", o.ID.String()),
					zap.String("status", string(status.Status)))
			}
			continue
		}

		paidAt := s.now()
		if status.PaidAt != nil {
			paidAt = *status.PaidAt
		}
		if _, err := s.markPaid(ctx, o, paidAt); err != nil {
			result.Failed++
			s.logger.Warn("reconcile: confirm failed",
				zap.String("order_id", o.ID.String()),
				zap.Error(err))
			continue
		}
		result.Confirmed++
	}

	if result.Checked > 0 {
		s.logger.Info("payment reconciliation finished",
			zap.Int("checked", result.Checked),
			zap.Int("confirmed", result.Confirmed),
			zap.Int("failed", result.Failed))
	}
	return result, nil
}
