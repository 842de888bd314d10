package repository

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// BackendState records the outcome of the single startup connection attempt.
type BackendState string

const (
	// StateUnconfigured means no durable backend was configured.
	StateUnconfigured BackendState = "unconfigured"
	// StateConnected means a durable backend serves calls, with per-call fallback.
	StateConnected BackendState = "connected"
	// StateDegraded means a backend was configured but unreachable at startup;
	// the in-memory store serves the rest of the process lifetime.
	StateDegraded BackendState = "degraded"
)

// Backend names reported by Store.Backend.
const (
	BackendPostgres = "postgres"
	BackendRedis    = "redis"
	BackendMemory   = "memory"
)

// Backends carries the durable clients resolved at startup. Nil handles mean
// the backend is unavailable; Configured says whether any was requested.
type Backends struct {
	Postgres   *pgxpool.Pool
	Redis      *redis.Client
	Configured bool
}

// Store bundles the repositories chosen for this process.
type Store struct {
	Users         UserRepository
	MediaRequests MediaRequestRepository
	State         BackendState
	Backend       string
	Memory        *MemoryStore
}

// NewStore selects the backing store once. Postgres wins over Redis; with
// neither available the in-memory store is used for the process lifetime.
func NewStore(b Backends, logger *zap.Logger) *Store {
	mem := NewMemoryStore()
	store := &Store{Memory: mem}

	switch {
	case b.Postgres != nil:
		store.Backend = BackendPostgres
		store.State = StateConnected
		store.Users = NewFallbackUserRepository(NewUserRepository(b.Postgres), mem.Users(), logger)
		store.MediaRequests = NewFallbackMediaRequestRepository(NewMediaRequestRepository(b.Postgres), mem.MediaRequests(), logger)
	case b.Redis != nil:
		store.Backend = BackendRedis
		store.State = StateConnected
		store.Users = NewFallbackUserRepository(NewRedisUserRepository(b.Redis), mem.Users(), logger)
		store.MediaRequests = NewFallbackMediaRequestRepository(NewRedisMediaRequestRepository(b.Redis), mem.MediaRequests(), logger)
	default:
		store.Backend = BackendMemory
		store.State = StateUnconfigured
		if b.Configured {
			store.State = StateDegraded
		}
		store.Users = mem.Users()
		store.MediaRequests = mem.MediaRequests()
	}

	logger.Info("record store selected", zap.String("backend", store.Backend), zap.String("state", string(store.State)))
	return store
}
