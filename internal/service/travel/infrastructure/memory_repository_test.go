package infrastructure

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"voyage/internal/service/travel/domain"
)

func TestMemoryStoreRollsBackFailedUnit(t *testing.T) {
	store := NewMemoryStore()

	var commodityID int64
	err := store.Execute(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
		commodity, err := domain.NewCommodity("seat", "", 100, 3)
		if err != nil {
			return err
		}
		if err := repos.Commodities.Save(ctx, commodity); err != nil {
			return err
		}
		commodityID = commodity.ID
		return nil
	})
	require.NoError(t, err)

	// A unit that writes and then fails must leave no trace.
	boom := errors.New("boom")
	err = store.Execute(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
		if _, err := repos.Commodities.DecrementQuantity(ctx, commodityID); err != nil {
			return err
		}
		booking := domain.NewBooking(1, commodityID)
		if err := repos.Bookings.Save(ctx, booking); err != nil {
			return err
		}
		return boom
	})
	assert.ErrorIs(t, err, boom)

	err = store.Execute(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
		commodity, err := repos.Commodities.FindByID(ctx, commodityID)
		if err != nil {
			return err
		}
		assert.Equal(t, 3, commodity.Quantity)

		bookings, err := repos.Bookings.FindAll(ctx)
		if err != nil {
			return err
		}
		assert.Empty(t, bookings)
		return nil
	})
	require.NoError(t, err)
}

func TestMemoryStoreRespectsCancelledContext(t *testing.T) {
	store := NewMemoryStore()
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	err := store.Execute(ctx, func(context.Context, domain.Repositories) error {
		t.Fatal("unit must not run on a dead context")
		return nil
	})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestMemoryStoreGuardedDecrement(t *testing.T) {
	store := NewMemoryStore()

	err := store.Execute(context.Background(), func(ctx context.Context, repos domain.Repositories) error {
		commodity, err := domain.NewCommodity("seat", "", 100, 1)
		if err != nil {
			return err
		}
		if err := repos.Commodities.Save(ctx, commodity); err != nil {
			return err
		}

		left, err := repos.Commodities.DecrementQuantity(ctx, commodity.ID)
		if err != nil {
			return err
		}
		assert.Equal(t, 0, left)

		_, err = repos.Commodities.DecrementQuantity(ctx, commodity.ID)
		assert.ErrorIs(t, err, domain.ErrOutOfStock)

		_, err = repos.Commodities.DecrementQuantity(ctx, 999)
		assert.ErrorIs(t, err, domain.ErrCommodityNotFound)
		return nil
	})
	require.NoError(t, err)
}
