package quotesvc

import (
	"context"
	"time"

	quoterepo "equiprental/repository/quote"
)

// Cleaner drops drafts nobody touched for longer than the TTL.
type Cleaner interface {
	ReleaseStale(ctx context.Context) (int64, error)
}

type cleaner struct {
	r   quoterepo.Repo
	ttl time.Duration
}

func NewCleaner(r quoterepo.Repo, ttl time.Duration) Cleaner { return &cleaner{r: r, ttl: ttl} }

func (c *cleaner) ReleaseStale(ctx context.Context) (int64, error) {
	return c.r.DeleteStaleDrafts(ctx, time.Now().UTC().Add(-c.ttl))
}
