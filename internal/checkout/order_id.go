package checkout

import (
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

type IDGenerator interface {
	NewOrderID() string
}

// SequenceIDs builds ids as ORD-<unix millis>-<counter>-<8 hex>. The counter keeps
// ids from one generator distinct within a millisecond, the uuid suffix keeps
// separate generators apart.
type SequenceIDs struct {
	counter atomic.Uint64
	now     func() time.Time
}

func NewSequenceIDs(now func() time.Time) *SequenceIDs {
	if now == nil {
		now = time.Now
	}
	return &SequenceIDs{now: now}
}

func (g *SequenceIDs) NewOrderID() string {
	seq := g.counter.Add(1)
	suffix := strings.ReplaceAll(uuid.NewString(), "-", "")[:8]

	return fmt.Sprintf("ORD-%d-%d-%s", g.now().UnixMilli(), seq, suffix)
}
