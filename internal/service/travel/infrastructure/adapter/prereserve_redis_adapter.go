package adapter

import (
	"context"
	"fmt"

	"github.com/redis/go-redis/v9"

	"voyage/internal/service/travel/port"
)

// attemptScript pre-deducts one unit and records the customer so the same
// customer cannot pre-reserve twice. Both keys share a hash tag so the script
// works on a Redis cluster.
var attemptScript = redis.NewScript(`
if redis.call('sismember', KEYS[2], ARGV[1]) == 1 then
    return 2
end
local stock = tonumber(redis.call('get', KEYS[1]))
if stock and stock > 0 then
    redis.call('decr', KEYS[1])
    redis.call('sadd', KEYS[2], ARGV[1])
    return 1
else
    return 0
end
`)

// releaseScript is the compensation: the unit goes back and the customer may
// try again.
var releaseScript = redis.NewScript(`
if redis.call('srem', KEYS[2], ARGV[1]) == 1 then
    redis.call('incr', KEYS[1])
end
return 1
`)

// PrereserveRedisAdapter implements port.SeatPrereserveService on a shared
// Redis counter, so high-demand commodities fail fast before the saga starts
// booking remote legs.
type PrereserveRedisAdapter struct {
	client *redis.Client
}

func NewPrereserveRedisAdapter(client *redis.Client) *PrereserveRedisAdapter {
	return &PrereserveRedisAdapter{client: client}
}

func stockKey(commodityID int64) string {
	return fmt.Sprintf("prereserve:stock:{%d}", commodityID)
}

func customersKey(commodityID int64) string {
	return fmt.Sprintf("prereserve:customers:{%d}", commodityID)
}

func (a *PrereserveRedisAdapter) Attempt(ctx context.Context, commodityID, customerID int64) (port.PrereserveResult, error) {
	keys := []string{stockKey(commodityID), customersKey(commodityID)}
	result, err := attemptScript.Run(ctx, a.client, keys, customerID).Result()
	if err != nil {
		return 0, fmt.Errorf("prereserve attempt: %w", err)
	}
	code, ok := result.(int64)
	if !ok {
		return 0, fmt.Errorf("unexpected result type from prereserve script: %T", result)
	}
	switch code {
	case 1:
		return port.PrereserveSuccess, nil
	case 0:
		return port.PrereserveSoldOut, nil
	case 2:
		return port.PrereserveDuplicate, nil
	default:
		return 0, fmt.Errorf("unknown result code from prereserve script: %d", code)
	}
}

func (a *PrereserveRedisAdapter) Release(ctx context.Context, commodityID, customerID int64) error {
	keys := []string{stockKey(commodityID), customersKey(commodityID)}
	if err := releaseScript.Run(ctx, a.client, keys, customerID).Err(); err != nil {
		return fmt.Errorf("prereserve release: %w", err)
	}
	return nil
}

// Prepare initializes the shared counter for a commodity (admin/test helper).
func (a *PrereserveRedisAdapter) Prepare(ctx context.Context, commodityID int64, stock int) error {
	pipe := a.client.Pipeline()
	pipe.Set(ctx, stockKey(commodityID), stock, 0)
	pipe.Del(ctx, customersKey(commodityID))
	_, err := pipe.Exec(ctx)
	if err != nil {
		return fmt.Errorf("prepare prereserve stock: %w", err)
	}
	return nil
}
