package common

import (
	"context"
	"log"
	"time"
)

const (
	jobTimeout    = 2 * time.Minute
	retryTraBatch = 50
)

type LinkExpirer interface {
	ExpireStale(ctx context.Context) (int64, error)
}

type TraRetrier interface {
	RetryPending(ctx context.Context, limit int) (int, error)
}

func ExpireStaleLinks(links LinkExpirer) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	n, err := links.ExpireStale(ctx)
	if err != nil {
		log.Printf("[jobs] Error expiring links: %s\n", err.Error())
		return
	}
	if n > 0 {
		log.Printf("[jobs] Marked %d links as expired\n", n)
	}
}

func RetryPendingTra(tra TraRetrier) {
	ctx, cancel := context.WithTimeout(context.Background(), jobTimeout)
	defer cancel()
	n, err := tra.RetryPending(ctx, retryTraBatch)
	if err != nil {
		log.Printf("[jobs] Error retrying tra registrations: %s\n", err.Error())
		return
	}
	if n > 0 {
		log.Printf("[jobs] Registered %d pending formularios in tra\n", n)
	}
}
