package feed

import (
	"context"
	"errors"
	"sync"

	"github.com/KirkDiggler/spinwin/internal/models"
)

const subscriberBuffer = 16

// Memory is an in-process feed used when no Redis is configured. Slow
// subscribers miss entries rather than block publishers.
type Memory struct {
	mu          sync.Mutex
	nextID      int
	subscribers map[int]chan *models.Entry
}

// NewMemory creates an empty in-process feed
func NewMemory() *Memory {
	return &Memory{
		subscribers: make(map[int]chan *models.Entry),
	}
}

func (m *Memory) Publish(_ context.Context, entry *models.Entry) error {
	if entry == nil {
		return errors.New("entry cannot be nil")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	for _, ch := range m.subscribers {
		e := *entry
		select {
		case ch <- &e:
		default:
		}
	}

	return nil
}

func (m *Memory) Subscribe(ctx context.Context) (<-chan *models.Entry, error) {
	ch := make(chan *models.Entry, subscriberBuffer)

	m.mu.Lock()
	id := m.nextID
	m.nextID++
	m.subscribers[id] = ch
	m.mu.Unlock()

	go func() {
		<-ctx.Done()
		m.mu.Lock()
		delete(m.subscribers, id)
		close(ch)
		m.mu.Unlock()
	}()

	return ch, nil
}
