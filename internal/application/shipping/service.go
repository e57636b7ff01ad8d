package shipping

import (
	"context"
	"regexp"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/storefront/backend/internal/domain/shared"
	"github.com/storefront/backend/internal/domain/shared/valueobject"
	"github.com/storefront/backend/internal/domain/shipping"
	"go.uber.org/zap"
)

var postcodeRegex = regexp.MustCompile(`^[1-9][0-9]{5}$`)

// ServiceabilityRequest is the body of a serviceability check.
// Field names follow the courier API.
type ServiceabilityRequest struct {
	PickupPostcode   string          `json:"pickup_postcode"`
	DeliveryPostcode string          `json:"delivery_postcode" binding:"required"`
	Weight           decimal.Decimal `json:"weight"`
	COD              bool            `json:"cod"`
}

// CourierResponse is one quote in the serviceability response
type CourierResponse struct {
	CourierCompanyID      int             `json:"courier_company_id"`
	CourierName           string          `json:"courier_name"`
	Rate                  decimal.Decimal `json:"rate"`
	EstimatedDeliveryDays int             `json:"estimated_delivery_days"`
}

// ServiceabilityResponse lists couriers in provider order
type ServiceabilityResponse struct {
	Success  bool              `json:"success"`
	Couriers []CourierResponse `json:"couriers"`
}

// QuoteRecorder observes courier lookups
type QuoteRecorder interface {
	RecordQuote(ctx context.Context, d time.Duration, couriers int)
}

// Service answers shipping quotes through a courier provider
type Service struct {
	provider       shipping.CourierProvider
	originPostcode string
	recorder       QuoteRecorder
	logger         *zap.Logger
}

// Option configures a Service
type Option func(*Service)

// WithQuoteRecorder reports the latency of each successful lookup
func WithQuoteRecorder(r QuoteRecorder) Option {
	return func(s *Service) { s.recorder = r }
}

// NewService creates a shipping service. originPostcode is used when a
// request does not name a pickup postcode.
func NewService(provider shipping.CourierProvider, originPostcode string, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{provider: provider, originPostcode: originPostcode, logger: logger}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// OriginPostcode returns the warehouse postcode
func (s *Service) OriginPostcode() string {
	return s.originPostcode
}

// CheckServiceability queries the courier provider. An empty courier list
// is a successful answer; callers decide how to report it.
func (s *Service) CheckServiceability(ctx context.Context, req ServiceabilityRequest) (*ServiceabilityResponse, error) {
	pickup := strings.TrimSpace(req.PickupPostcode)
	if pickup == "" {
		pickup = s.originPostcode
	}
	delivery := strings.TrimSpace(req.DeliveryPostcode)

	var invalid []string
	if !postcodeRegex.MatchString(pickup) {
		invalid = append(invalid, "pickup_postcode")
	}
	if !postcodeRegex.MatchString(delivery) {
		invalid = append(invalid, "delivery_postcode")
	}
	if len(invalid) > 0 {
		return nil, shared.NewValidationError("Postcodes must be 6 digits", invalid...)
	}

	weight := req.Weight
	if weight.LessThan(shipping.MinWeightKg) {
		weight = shipping.MinWeightKg
	}

	start := time.Now()
	options, err := s.provider.Serviceability(ctx, shipping.Query{
		PickupPostcode:   pickup,
		DeliveryPostcode: delivery,
		WeightKg:         weight,
		COD:              req.COD,
	})
	if err != nil {
		s.logger.Warn("serviceability check failed",
			zap.String("pickup", pickup),
			zap.String("delivery", delivery),
			zap.Error(err))
		return nil, err
	}
	if s.recorder != nil {
		s.recorder.RecordQuote(ctx, time.Since(start), len(options))
	}

	s.logger.Debug("serviceability checked",
		zap.String("delivery", delivery),
		zap.String("weight", weight.String()),
		zap.Int("couriers", len(options)))

	couriers := make([]CourierResponse, len(options))
	for i, o := range options {
		couriers[i] = CourierResponse{
			CourierCompanyID:      o.CourierID,
			CourierName:           o.CourierName,
			Rate:                  o.Rate,
			EstimatedDeliveryDays: o.EstimatedDeliveryDays,
		}
	}
	return &ServiceabilityResponse{Success: true, Couriers: couriers}, nil
}

// QuoteItems quotes a parcel of items to a postcode using the weight estimate
func (s *Service) QuoteItems(ctx context.Context, deliveryPostcode string, items []valueobject.LineItem) ([]shipping.Option, error) {
	resp, err := s.CheckServiceability(ctx, ServiceabilityRequest{
		DeliveryPostcode: deliveryPostcode,
		Weight:           shipping.EstimateWeight(items),
	})
	if err != nil {
		return nil, err
	}
	options := make([]shipping.Option, len(resp.Couriers))
	for i, c := range resp.Couriers {
		options[i] = shipping.Option{
			CourierID:             c.CourierCompanyID,
			CourierName:           c.CourierName,
			Rate:                  c.Rate,
			EstimatedDeliveryDays: c.EstimatedDeliveryDays,
		}
	}
	return options, nil
}
