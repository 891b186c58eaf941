package crypto

import (
	crand "crypto/rand"
	"fmt"
	"io"

	alexsync "github.com/sophiatx/alexandria/libs/sync"
)

// CReader returns the operating system's CSPRNG. It is safe for concurrent
// use.
func CReader() io.Reader {
	return crand.Reader
}

// LockedReader serializes reads from a reader that is not safe for concurrent
// use, such as a deterministic stream installed by tests.
type LockedReader struct {
	mtx alexsync.Mutex
	r   io.Reader
}

var _ io.Reader = (*LockedReader)(nil)

// NewLockedReader wraps r. Passing crypto/rand.Reader is allowed but
// pointless.
func NewLockedReader(r io.Reader) *LockedReader {
	return &LockedReader{r: r}
}

func (lr *LockedReader) Read(p []byte) (int, error) {
	lr.mtx.Lock()
	defer lr.mtx.Unlock()
	return lr.r.Read(p)
}

// ReadFull fills b from r, failing on a short read.
func ReadFull(r io.Reader, b []byte) error {
	if _, err := io.ReadFull(r, b); err != nil {
		return fmt.Errorf("crypto: reading randomness: %w", err)
	}
	return nil
}

// Zero overwrites b with zeros. Secrets are wiped with it on every return
// path.
func Zero(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
