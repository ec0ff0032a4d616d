package zookeeper

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/go-zookeeper/zk"
	"github.com/pkg/errors"
)

const lockRoot = "/voyage/commodity_locks"

// CommodityLocker implements cross-instance mutual exclusion per commodity on
// ZooKeeper ephemeral sequential nodes. A single travel-service instance does
// not need it; multiple instances sharing one database do, because each
// instance's unit of work only serializes within its own process when the
// store is not transactional.
type CommodityLocker struct {
	conn *zk.Conn
}

func NewCommodityLocker(conn *zk.Conn) (*CommodityLocker, error) {
	if err := ensurePath(conn, lockRoot); err != nil {
		return nil, err
	}
	return &CommodityLocker{conn: conn}, nil
}

// Lock blocks until the commodity lock is held or ctx is done, and returns
// the release function.
func (l *CommodityLocker) Lock(ctx context.Context, commodityID int64) (func(), error) {
	lockPath := lockRoot + "/" + strconv.FormatInt(commodityID, 10)
	if err := ensurePath(l.conn, lockPath); err != nil {
		return nil, err
	}

	nodePath, err := l.conn.CreateProtectedEphemeralSequential(lockPath+"/lock-", []byte{}, zk.WorldACL(zk.PermAll))
	if err != nil {
		return nil, errors.Wrap(err, "create lock node")
	}
	release := func() {
		// Best effort; the ephemeral node dies with the session anyway.
		l.conn.Delete(nodePath, -1)
	}

	myNode := strings.TrimPrefix(nodePath, lockPath+"/")
	for {
		children, _, err := l.conn.Children(lockPath)
		if err != nil {
			release()
			return nil, errors.Wrap(err, "list lock nodes")
		}
		// Protected nodes carry a random prefix, so order by the sequence
		// suffix rather than the full name.
		sort.Slice(children, func(i, j int) bool {
			return seqOf(children[i]) < seqOf(children[j])
		})

		if children[0] == myNode {
			return release, nil
		}

		prev := ""
		for i, child := range children {
			if child == myNode {
				prev = children[i-1]
				break
			}
		}
		if prev == "" {
			release()
			return nil, fmt.Errorf("lock node %s missing from children", myNode)
		}

		exists, _, eventCh, err := l.conn.ExistsW(lockPath + "/" + prev)
		if err != nil {
			release()
			return nil, errors.Wrap(err, "watch previous lock node")
		}
		if !exists {
			continue
		}

		select {
		case <-eventCh:
			continue
		case <-ctx.Done():
			release()
			return nil, ctx.Err()
		}
	}
}

// seqOf extracts the sequence number ZooKeeper appended to a lock node name.
func seqOf(name string) int {
	idx := strings.LastIndex(name, "-")
	if idx < 0 {
		return -1
	}
	seq, err := strconv.Atoi(name[idx+1:])
	if err != nil {
		return -1
	}
	return seq
}

// ensurePath creates each missing segment of path.
func ensurePath(conn *zk.Conn, path string) error {
	segments := strings.Split(strings.TrimPrefix(path, "/"), "/")
	current := ""
	for _, segment := range segments {
		current += "/" + segment
		_, err := conn.Create(current, []byte{}, 0, zk.WorldACL(zk.PermAll))
		if err != nil && err != zk.ErrNodeExists {
			return errors.Wrapf(err, "create lock path %s", current)
		}
	}
	return nil
}
