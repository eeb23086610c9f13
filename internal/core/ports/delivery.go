package ports

import "context"

// Delivery is one verification code waiting to be sent out-of-band.
type Delivery struct {
	Email string
	Code  string
}

// DeliveryQueue accepts deliveries for asynchronous, best-effort dispatch.
// Enqueue never fails; send errors are logged by the consumer.
type DeliveryQueue interface {
	Enqueue(d Delivery)
}

// CodeSender transmits a verification code to an address.
type CodeSender interface {
	Send(ctx context.Context, email, code string) error
}

// DeliveryDedup suppresses repeat sends of the same (email, code) pair.
type DeliveryDedup interface {
	IsDuplicate(ctx context.Context, email, code string) (bool, error)
	Mark(ctx context.Context, email, code string) error
}
