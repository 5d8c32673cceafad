package mocks

import (
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/mcoot/dartsync/internal/dependencies/random"
)

// MockRandom returns queued values first and deterministic fallbacks once a
// queue is drained, so tests only queue the values they assert on.
type MockRandom struct {
	mu sync.Mutex

	codes []string
	uuids []string

	codeSeq int
	uuidSeq int
}

var _ random.Random = (*MockRandom)(nil)

// NewMockRandom creates a new MockRandom
func NewMockRandom() *MockRandom {
	return &MockRandom{}
}

// RoomCode returns the next queued code, or a sequential one like "ROOM01"
func (r *MockRandom) RoomCode(int) string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.codes) == 0 {
		r.codeSeq++
		return fmt.Sprintf("ROOM%02d", r.codeSeq)
	}
	v := r.codes[0]
	r.codes = r.codes[1:]
	return v
}

// UUID returns the next queued result, or a name-based UUID derived from a
// counter so that ids are stable across test runs.
func (r *MockRandom) UUID() string {
	r.mu.Lock()
	defer r.mu.Unlock()
	if len(r.uuids) == 0 {
		r.uuidSeq++
		return uuid.NewSHA1(uuid.NameSpaceOID, fmt.Appendf(nil, "mock-%d", r.uuidSeq)).String()
	}
	v := r.uuids[0]
	r.uuids = r.uuids[1:]
	return v
}

// QueueRoomCode adds values to the RoomCode result queue
func (r *MockRandom) QueueRoomCode(codes ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes = append(r.codes, codes...)
}

// QueueUUID adds values to the UUID result queue
func (r *MockRandom) QueueUUID(values ...string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.uuids = append(r.uuids, values...)
}

// Reset clears all queues and counters
func (r *MockRandom) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.codes, r.uuids = nil, nil
	r.codeSeq, r.uuidSeq = 0, 0
}
