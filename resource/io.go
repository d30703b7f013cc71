package resource

import (
	"context"
	"io"
)

// DefaultChunkSize is the largest piece WriteThrottled hands to the
// destination writer in one call.
const DefaultChunkSize = 32 * 1024

// WriteThrottled writes src to w in chunks, waiting on the controller's IO
// limit before each one. A chunk never exceeds the limiter burst, so large
// snapshots make steady progress instead of waiting for one big reservation.
//
// It returns the number of bytes written. When ctx is canceled between
// chunks, the bytes already written are reported along with ctx's error.
// A nil controller writes without throttling.
func WriteThrottled(ctx context.Context, c *Controller, w io.Writer, src []byte) (int64, error) {
	chunk := DefaultChunkSize
	if c != nil && c.ioLimiter != nil {
		chunk = min(chunk, c.ioLimiter.Burst())
	}

	var written int64
	for len(src) > 0 {
		n := min(len(src), chunk)
		if err := c.AcquireIO(ctx, n); err != nil {
			return written, err
		}

		m, err := w.Write(src[:n])
		written += int64(m)
		if err != nil {
			return written, err
		}
		if m != n {
			return written, io.ErrShortWrite
		}
		src = src[n:]
	}
	return written, nil
}
