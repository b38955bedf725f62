package event

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/fluxline-cloud/fluxline/internal/models"
)

// Type represents the type of event.
type Type string

const (
	TypeDependencyCreated Type = "dependency_created"
	TypeDependencyRemoved Type = "dependency_removed"
	TypeRunCreated        Type = "run_created"
	TypeRunStarted        Type = "run_started"
	TypeRunSucceeded      Type = "run_succeeded"
	TypeRunFailed         Type = "run_failed"
	TypeRunCancelled      Type = "run_cancelled"
	TypeAdmissionRetry    Type = "admission_retry"
)

// Event represents a system event.
type Event struct {
	Type      Type            `json:"type"`
	OrgID     int64           `json:"org_id,omitempty"`
	RunID     int64           `json:"run_id,omitempty"`
	Node      models.NodeRef  `json:"node,omitempty"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload,omitempty"`
}

// Filter defines criteria for receiving events.
type Filter struct {
	OrgID int64
	RunID int64
	Types []Type
}

// Bus defines the event bus interface.
type Bus interface {
	Publish(e Event)
	Subscribe(ctx context.Context, filter Filter) (<-chan Event, error)
}

type bus struct {
	subscribers map[chan Event]Filter
	mu          sync.RWMutex
}

// New creates a new event bus.
func New() Bus {
	return &bus{
		subscribers: make(map[chan Event]Filter),
	}
}

var defaultBus = New()

// Default returns the process-wide event bus.
func Default() Bus {
	return defaultBus
}

func (b *bus) Publish(e Event) {
	if e.Timestamp.IsZero() {
		e.Timestamp = time.Now().UTC()
	}

	b.mu.RLock()
	defer b.mu.RUnlock()

	for ch, filter := range b.subscribers {
		if b.matches(filter, e) {
			select {
			case ch <- e:
			default:
				// Drop event if channel is full to prevent blocking
			}
		}
	}
}

func (b *bus) Subscribe(ctx context.Context, filter Filter) (<-chan Event, error) {
	ch := make(chan Event, 100)

	b.mu.Lock()
	b.subscribers[ch] = filter
	b.mu.Unlock()

	go func() {
		<-ctx.Done()
		b.mu.Lock()
		delete(b.subscribers, ch)
		close(ch)
		b.mu.Unlock()
	}()

	return ch, nil
}

func (b *bus) matches(filter Filter, e Event) bool {
	if filter.OrgID != 0 && filter.OrgID != e.OrgID {
		return false
	}

	if filter.RunID != 0 && filter.RunID != e.RunID {
		return false
	}

	if len(filter.Types) > 0 {
		found := false
		for _, t := range filter.Types {
			if t == e.Type {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}

	return true
}
