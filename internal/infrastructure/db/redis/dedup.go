package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// deliveryTTL bounds how long a (email, code) pair suppresses repeat sends.
// It only throttles duplicate mail; the code itself never expires.
const deliveryTTL = time.Hour

// DeliveryDedup suppresses duplicate verification mails backed by Redis.
// Key format: delivery:<email>:<code>
type DeliveryDedup struct {
	client *redis.Client
}

// NewDeliveryDedup creates a DeliveryDedup wrapping the given Redis client.
func NewDeliveryDedup(client *redis.Client) *DeliveryDedup {
	return &DeliveryDedup{client: client}
}

// IsDuplicate reports whether this exact code was already sent to the address.
func (d *DeliveryDedup) IsDuplicate(ctx context.Context, email, code string) (bool, error) {
	n, err := d.client.Exists(ctx, d.key(email, code)).Result()
	if err != nil {
		return false, fmt.Errorf("dedup check: %w", err)
	}
	return n > 0, nil
}

// Mark records that the code was delivered (expires after deliveryTTL).
func (d *DeliveryDedup) Mark(ctx context.Context, email, code string) error {
	return d.client.Set(ctx, d.key(email, code), "1", deliveryTTL).Err()
}

func (d *DeliveryDedup) key(email, code string) string {
	return fmt.Sprintf("delivery:%s:%s", email, code)
}
