package util

import (
	"context"
	"net"

	"nbclient/internal/errors"
)

// DefaultBufSize is the standard buffer size for network I/O (32 KiB).
const DefaultBufSize = 32 * 1024

// Echo writes everything read from conn back to it until the peer
// closes or ctx is cancelled.  observe, if non-nil, is called with the
// size of every chunk after it has been written back.  It returns the
// total bytes echoed; a peer close or cancellation is not an error.
func Echo(ctx context.Context, conn net.Conn, observe func(n int)) (int64, error) {
	stop := context.AfterFunc(ctx, func() {
		conn.Close() // unblock the pending read
	})
	defer stop()

	buf := GetBuf()
	defer PutBuf(buf)

	var total int64
	for {
		n, rerr := conn.Read(*buf)
		if n > 0 {
			w, werr := conn.Write((*buf)[:n])
			total += int64(w)
			if observe != nil && w > 0 {
				observe(w)
			}
			if werr != nil {
				return total, harmless(ctx, werr)
			}
		}
		if rerr != nil {
			return total, harmless(ctx, rerr)
		}
	}
}

// harmless drops errors that are expected during shutdown.
func harmless(ctx context.Context, err error) error {
	if ctx.Err() != nil || errors.IsPeerClosed(err) {
		return nil
	}
	return err
}
