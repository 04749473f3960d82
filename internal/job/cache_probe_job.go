package job

import (
	"context"
	"sync"
	"time"

	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

const defaultProbeTimeout = 3 * time.Second

type CachePinger interface {
	Ping(ctx context.Context) error
}

// CacheProbeJob pings the post cache and logs when its reachability
// changes. Requests keep working against the database either way.
type CacheProbeJob struct {
	cache   CachePinger
	timeout time.Duration

	mu      sync.Mutex
	healthy bool
	checked bool
}

func NewCacheProbeJob(cache CachePinger, timeout time.Duration) *CacheProbeJob {
	if timeout <= 0 {
		timeout = defaultProbeTimeout
	}
	return &CacheProbeJob{cache: cache, timeout: timeout}
}

func (j *CacheProbeJob) Name() string {
	return "cache_probe"
}

func (j *CacheProbeJob) Run(ctx context.Context) error {
	if j.cache == nil {
		return nil
	}
	pingCtx, cancel := context.WithTimeout(ctx, j.timeout)
	defer cancel()
	err := j.cache.Ping(pingCtx)

	j.mu.Lock()
	changed := !j.checked || j.healthy != (err == nil)
	j.healthy = err == nil
	j.checked = true
	j.mu.Unlock()

	logger := logutil.GetLogger(ctx)
	switch {
	case err != nil && changed:
		logger.Warn("post cache unreachable, serving from database", zap.Error(err))
	case err == nil && changed:
		logger.Info("post cache reachable")
	}
	// an unreachable cache is a degraded state, not a job failure
	return nil
}

// Healthy reports the result of the last probe; false before the first run.
func (j *CacheProbeJob) Healthy() bool {
	j.mu.Lock()
	defer j.mu.Unlock()
	return j.checked && j.healthy
}
