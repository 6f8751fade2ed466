package ratelimits

import (
	"errors"
	"sync"
	"time"
)

const (
	// Keys a member starts with when their bucket is created
	BUCKET_INITIAL_FILL = 8

	// Ceiling of keys a member may save up
	BUCKET_UPPER_BOUND = 16

	// How often new keys drip into the buckets
	DROP_INTERVAL = 10 * time.Second

	// How many keys drip at a time
	DROP_SIZE = 1
)

// Global pointer to a container instance
var Container = &BucketContainer{}

// BucketContainer maps member ids to how many commands they may still
// run. Every club command drains one key, an empty bucket means the
// member waits for the refiller.
type BucketContainer struct {
	sync.RWMutex

	buckets map[string]int8
}

// Init allocates the map and starts the refill routine
func (b *BucketContainer) Init() {
	b.Lock()
	b.buckets = make(map[string]int8)
	b.Unlock()

	go b.Refiller()
}

// Refiller tops up member buckets in a set interval
func (b *BucketContainer) Refiller() {
	for {
		b.Lock()
		for user, keys := range b.buckets {
			switch {
			// members parked at -1 sit out a penalty round first
			case keys == -1:
				b.buckets[user]++

			case keys == 0:
				b.buckets[user] = BUCKET_INITIAL_FILL

			case keys < BUCKET_UPPER_BOUND:
				b.buckets[user] += DROP_SIZE
			}
		}
		b.Unlock()

		time.Sleep(DROP_INTERVAL)
	}
}

// CreateBucketIfNotExists makes sure the member has a bucket
func (b *BucketContainer) CreateBucketIfNotExists(user string) {
	b.RLock()
	_, e := b.buckets[user]
	b.RUnlock()

	if !e {
		b.Lock()
		b.buckets[user] = BUCKET_INITIAL_FILL
		b.Unlock()
	}
}

// Drain takes $amount keys from the member's bucket if enough are left
func (b *BucketContainer) Drain(amount int8, user string) error {
	b.CreateBucketIfNotExists(user)

	b.RLock()
	userAmount := b.buckets[user]
	b.RUnlock()

	if amount > userAmount {
		return errors.New("no keys left")
	}

	b.Lock()
	b.buckets[user] -= amount
	b.Unlock()

	return nil
}

// HasKeys checks if the member may still run commands
func (b *BucketContainer) HasKeys(user string) bool {
	b.CreateBucketIfNotExists(user)

	b.RLock()
	defer b.RUnlock()

	return b.buckets[user] > 0
}

// Set overrides the member's key count, -1 parks them in the penalty
// zone until the refiller lets them back in
func (b *BucketContainer) Set(user string, value int8) {
	b.Lock()
	b.buckets[user] = value
	b.Unlock()
}
