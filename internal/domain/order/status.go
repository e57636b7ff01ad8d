package order

// Status is the fulfilment status of an order
type Status string

const (
	StatusPending        Status = "Pending"
	StatusProcessing     Status = "Processing"
	StatusShipped        Status = "Shipped"
	StatusOutForDelivery Status = "Out for Delivery"
	StatusDelivered      Status = "Delivered"
	StatusCanceled       Status = "Canceled"
)

// AllStatuses lists statuses in pipeline order
func AllStatuses() []Status {
	return []Status{
		StatusPending,
		StatusProcessing,
		StatusShipped,
		StatusOutForDelivery,
		StatusDelivered,
		StatusCanceled,
	}
}

// IsValid checks if the status is one of the six known statuses
func (s Status) IsValid() bool {
	switch s {
	case StatusPending, StatusProcessing, StatusShipped, StatusOutForDelivery, StatusDelivered, StatusCanceled:
		return true
	}
	return false
}

// String returns the string representation of Status
func (s Status) String() string {
	return string(s)
}

// IsCancellable reports whether a customer may cancel in this status
func (s Status) IsCancellable() bool {
	return s == StatusPending || s == StatusProcessing
}

// PaymentStatus tracks the gateway payment of an order
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "PENDING"
	PaymentStatusCompleted PaymentStatus = "COMPLETED"
)

// IsValid checks if the payment status is known
func (s PaymentStatus) IsValid() bool {
	return s == PaymentStatusPending || s == PaymentStatusCompleted
}

// String returns the string representation of PaymentStatus
func (s PaymentStatus) String() string {
	return string(s)
}
