package bench

import (
	"context"
	"math/rand"
	"sync"

	"github.com/go-faster/errors"
	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/panjf2000/ants"
	"golang.org/x/sync/errgroup"

	"github.com/Whitebeard2319/PoolKit/src"
	"github.com/Whitebeard2319/PoolKit/src/bufferpool"
	"github.com/Whitebeard2319/PoolKit/src/cfg"
	"github.com/Whitebeard2319/PoolKit/src/pkg/common"
	"github.com/Whitebeard2319/PoolKit/src/storage/index"
)

const workloadFileID = common.FileID(1)

// Zipf skew of the simulated page traffic.
const (
	zipfS = 1.1
	zipfV = 1.0
)

// Runner drives a page-access simulation against the hash index and the
// LRU-K replacer, orchestrating them the way a buffer pool manager would:
// look the page up in the index, and on a miss take a free frame or evict
// one through the replacer. A plain LRU cache of the same frame budget runs
// alongside as a hit-rate baseline.
type Runner struct {
	log src.Logger
	cfg cfg.BenchConfig
}

func NewRunner(log src.Logger, cfg cfg.BenchConfig) *Runner {
	return &Runner{
		log: log,
		cfg: cfg,
	}
}

// pool mimics the manager's page table: one lock around the index, the
// replacer and the frame bookkeeping, matching the serialized call pattern
// both components are designed for.
type pool struct {
	mu sync.Mutex

	idx      *index.ExtendibleHashIndex[common.PageIdentity, common.FrameID]
	replacer bufferpool.Replacer
	baseline *lru.Cache[common.PageIdentity, struct{}]

	frameToPage map[common.FrameID]common.PageIdentity
	freeFrames  []common.FrameID

	hits         uint64
	misses       uint64
	baselineHits uint64
}

func (p *pool) touch(page common.PageIdentity) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	frame, ok := p.idx.Find(page)
	if ok {
		p.hits++

		if err := p.replacer.RecordAccess(frame); err != nil {
			return errors.Wrap(err, "record access on hit")
		}
	} else {
		p.misses++

		if len(p.freeFrames) > 0 {
			frame = p.freeFrames[len(p.freeFrames)-1]
			p.freeFrames = p.freeFrames[:len(p.freeFrames)-1]
		} else {
			victim, ok := p.replacer.Evict()
			if !ok {
				return errors.New("no evictable frame in a fully unpinned pool")
			}

			p.idx.Remove(p.frameToPage[victim])
			frame = victim
		}

		p.frameToPage[frame] = page
		if err := p.idx.Insert(page, frame); err != nil {
			return errors.Wrap(err, "insert into page table")
		}
		if err := p.replacer.RecordAccess(frame); err != nil {
			return errors.Wrap(err, "record access on miss")
		}
	}

	if _, ok := p.baseline.Get(page); ok {
		p.baselineHits++
	} else {
		p.baseline.Add(page, struct{}{})
	}

	return nil
}

func (r *Runner) Run(ctx context.Context) error {
	baseline, err := lru.New[common.PageIdentity, struct{}](int(r.cfg.NumFrames))
	if err != nil {
		return errors.Wrap(err, "create baseline cache")
	}

	freeFrames := make([]common.FrameID, 0, r.cfg.NumFrames)
	for i := r.cfg.NumFrames; i > 0; i-- {
		freeFrames = append(freeFrames, common.FrameID(i-1))
	}

	p := &pool{
		idx: index.NewExtendibleHashIndex[common.PageIdentity, common.FrameID](
			r.cfg.BucketSize,
			index.PageIdentityHashFunc(r.cfg.Seed),
		),
		replacer:    bufferpool.NewLRUKReplacer(r.cfg.NumFrames, r.cfg.K),
		baseline:    baseline,
		frameToPage: make(map[common.FrameID]common.PageIdentity, r.cfg.NumFrames),
		freeFrames:  freeFrames,
	}

	workers, err := ants.NewPool(r.cfg.Workers)
	if err != nil {
		return errors.Wrap(err, "create worker pool")
	}
	defer workers.Release()

	opsPerWorker := r.cfg.Operations / r.cfg.Workers
	if opsPerWorker == 0 {
		opsPerWorker = 1
	}

	g, gctx := errgroup.WithContext(ctx)
	for w := 0; w < r.cfg.Workers; w++ {
		w := w
		g.Go(func() error {
			done := make(chan error, 1)

			submitErr := workers.Submit(func() {
				done <- r.worker(gctx, p, uint64(w), opsPerWorker)
			})
			if submitErr != nil {
				return errors.Wrap(submitErr, "submit worker")
			}

			return <-done
		})
	}

	if err := g.Wait(); err != nil {
		return errors.Wrap(err, "bench workload")
	}

	total := p.hits + p.misses
	r.log.Infof(
		"bench finished: ops=%d frames=%d k=%d lruk_hit_rate=%.4f lru_hit_rate=%.4f",
		total,
		r.cfg.NumFrames,
		r.cfg.K,
		float64(p.hits)/float64(total),
		float64(p.baselineHits)/float64(total),
	)
	r.log.Debugf(
		"page table: global_depth=%d buckets=%d evictable=%d",
		p.idx.GetGlobalDepth(),
		p.idx.GetNumBuckets(),
		p.replacer.Size(),
	)

	return nil
}

func (r *Runner) worker(ctx context.Context, p *pool, id uint64, ops int) error {
	rng := rand.New(rand.NewSource(int64(r.cfg.Seed + id))) //nolint:gosec
	zipf := rand.NewZipf(rng, zipfS, zipfV, r.cfg.KeySpace-1)

	for i := 0; i < ops; i++ {
		if err := ctx.Err(); err != nil {
			return err
		}

		page := common.PageIdentity{
			FileID: workloadFileID,
			PageID: common.PageID(zipf.Uint64()),
		}

		if err := p.touch(page); err != nil {
			return errors.Wrapf(err, "worker %d", id)
		}
	}

	return nil
}
