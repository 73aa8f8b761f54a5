package bufferpool

import (
	"github.com/go-faster/errors"

	"github.com/Whitebeard2319/PoolKit/src/pkg/common"
)

var (
	ErrFrameOutOfRange   = errors.New("frame id is out of range")
	ErrFrameNotEvictable = errors.New("frame is not evictable")
)

// Replacer picks which in-memory frame to evict when the pool is full.
// "Nothing evictable" is a normal outcome, reported through the bool result
// of Evict rather than an error.
type Replacer interface {
	RecordAccess(frameID common.FrameID) error
	Evict() (common.FrameID, bool)
	SetEvictable(frameID common.FrameID, evictable bool)
	Remove(frameID common.FrameID) error
	Size() uint64
}
