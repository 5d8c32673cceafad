package factory

import (
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/mcoot/dartsync/internal/dependencies/mocks"
	"github.com/mcoot/dartsync/internal/services/auth"
	"github.com/mcoot/dartsync/internal/storage/memory"
	"github.com/mcoot/dartsync/internal/testutil"
)

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
// and memory storage. Passwords are hashed at the lowest bcrypt cost.
func NewTestApp() *TestApp {
	store := memory.New()
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	authCfg := auth.DefaultConfig()
	authCfg.BcryptCost = bcrypt.MinCost
	app := newWithDependencies(store, mockClock, mockRandom, authCfg, testutil.NopLogger())

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
