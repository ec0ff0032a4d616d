package port

import "context"

// CommodityLocker serializes ledger mutations for one commodity across service
// instances. Lock blocks until the lock is held and returns its release
// function. A nil locker means the unit of work alone provides the exclusion,
// which is sufficient for a single instance.
type CommodityLocker interface {
	Lock(ctx context.Context, commodityID int64) (release func(), err error)
}
