package core

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"github.com/stretchr/testify/mock"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func mustTime(s string) time.Time {
	t, err := ParseInstant(s, time.UTC)
	if err != nil {
		panic(err)
	}

	return t
}

func sequentialIds() IDGenerator {
	var n atomic.Int64

	return func() string {
		return fmt.Sprintf("event_%d", n.Add(1))
	}
}

// memCache is an in-memory CacheStorage with an optional write failure.
type memCache struct {
	mu      sync.Mutex
	data    []byte
	found   bool
	failSet bool
	sets    int
}

func (c *memCache) Get(context.Context) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	return slices.Clone(c.data), c.found, nil
}

func (c *memCache) Set(_ context.Context, blob []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.failSet {
		return errors.New("disk full")
	}

	c.data = slices.Clone(blob)
	c.found = true
	c.sets++

	return nil
}

func (c *memCache) events() []Event {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.found {
		return nil
	}

	events, err := decodeEvents(c.data, time.UTC)
	if err != nil {
		panic(err)
	}

	return events
}

// MockRemote is a mock of the RemoteStore
type MockRemote struct {
	mock.Mock
}

func (m *MockRemote) ListEvents(ctx context.Context) ([]RawEvent, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}

	return args.Get(0).([]RawEvent), args.Error(1)
}

func (m *MockRemote) CreateEvent(ctx context.Context, event Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockRemote) UpdateEvent(ctx context.Context, event Event) error {
	return m.Called(ctx, event).Error(0)
}

func (m *MockRemote) DeleteEvent(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

var errUnreachable = NewTransportError("GET /events", errors.New("connection refused"))

type fixture struct {
	cache  *memCache
	remote *MockRemote
	sync   SyncController
	repo   Repository
	clock  fixedClock
}

func newFixture(now time.Time, withRemote bool) *fixture {
	f := &fixture{
		cache: &memCache{},
		clock: fixedClock{now: now},
	}
	f.sync = NewSyncController(f.clock)

	opts := []RepositoryOption{
		WithClock(f.clock),
		WithIDGenerator(sequentialIds()),
		WithLocation(time.UTC),
		WithMirrorTimeout(time.Second),
	}

	if withRemote {
		f.remote = new(MockRemote)
		opts = append(opts, WithRemote(f.remote))
	}

	f.repo = NewRepository(context.Background(), f.cache, f.sync, opts...)

	return f
}
