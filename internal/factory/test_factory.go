package factory

import (
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/mcoot/battleship-go/internal/dependencies/mocks"
	"github.com/mcoot/battleship-go/internal/metrics"
	"github.com/mcoot/battleship-go/internal/services/auth"
	"github.com/mcoot/battleship-go/internal/storage"
	"github.com/mcoot/battleship-go/internal/storage/memory"
	redisstorage "github.com/mcoot/battleship-go/internal/storage/redis"
	"github.com/mcoot/battleship-go/internal/testutil"
)

// TestTokenSecret signs tokens issued by test apps
const TestTokenSecret = "test-secret"

// TestApp extends App with test-specific helpers
type TestApp struct {
	*App

	// Mocks for test control
	MockClock  *mocks.MockClock
	MockRandom *mocks.MockRandom
}

// NewTestApp creates an App configured for testing with mocked dependencies
func NewTestApp() *TestApp {
	return newTestApp(memory.New())
}

// NewRedisTestApp creates a TestApp backed by an in-process Redis server
// that is shut down when the test ends
func NewRedisTestApp(t testing.TB) *TestApp {
	mini := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mini.Addr()})
	store := redisstorage.NewWithClient(client, redisstorage.DefaultConfig(), testutil.NopLogger())
	t.Cleanup(func() { _ = store.Close() })
	return newTestApp(store)
}

func newTestApp(store storage.Storage) *TestApp {
	mockClock := mocks.NewMockClock(time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
	mockRandom := mocks.NewMockRandom()

	app := newWithDependencies(
		store,
		mockClock,
		mockRandom,
		metrics.New(),
		auth.Config{Secret: TestTokenSecret},
		time.Hour,
		testutil.NopLogger(),
	)

	return &TestApp{
		App:        app,
		MockClock:  mockClock,
		MockRandom: mockRandom,
	}
}
