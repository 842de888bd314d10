package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/spec-kit/media-request-service/internal/domain"
)

// Key layout used by the Redis store.
const (
	redisUsersKey          = "users"
	redisRequestIndexKey   = "media_requests"
	redisRequestKeyPrefix  = "media_request:"
	redisTrackingKeyPrefix = "media_request:tracking:"
)

func requestKey(id string) string          { return redisRequestKeyPrefix + id }
func trackingKey(trackingID string) string { return redisTrackingKeyPrefix + trackingID }

type redisUserRepository struct {
	client *redis.Client
}

// NewRedisUserRepository stores users as JSON values in a hash keyed by username.
func NewRedisUserRepository(client *redis.Client) UserRepository {
	return &redisUserRepository{client: client}
}

func (r *redisUserRepository) List(ctx context.Context) ([]domain.User, error) {
	values, err := r.client.HVals(ctx, redisUsersKey).Result()
	if err != nil {
		return nil, err
	}
	users := make([]domain.User, 0, len(values))
	for _, raw := range values {
		var user domain.User
		if err := json.Unmarshal([]byte(raw), &user); err != nil {
			return nil, fmt.Errorf("decode user: %w", err)
		}
		users = append(users, user)
	}
	sort.SliceStable(users, func(i, j int) bool {
		return users[i].CreatedAt.After(users[j].CreatedAt)
	})
	return users, nil
}

func (r *redisUserRepository) GetByID(ctx context.Context, id string) (*domain.User, error) {
	users, err := r.List(ctx)
	if err != nil {
		return nil, err
	}
	for i := range users {
		if users[i].ID == id {
			return &users[i], nil
		}
	}
	return nil, ErrNotFound
}

func (r *redisUserRepository) GetByUsername(ctx context.Context, username string) (*domain.User, error) {
	raw, err := r.client.HGet(ctx, redisUsersKey, username).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var user domain.User
	if err := json.Unmarshal([]byte(raw), &user); err != nil {
		return nil, fmt.Errorf("decode user: %w", err)
	}
	return &user, nil
}

func (r *redisUserRepository) Create(ctx context.Context, user *domain.User) error {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	if user.CreatedAt.IsZero() {
		user.CreatedAt = time.Now().UTC()
	}
	payload, err := json.Marshal(user)
	if err != nil {
		return err
	}
	created, err := r.client.HSetNX(ctx, redisUsersKey, user.Username, payload).Result()
	if err != nil {
		return err
	}
	if !created {
		return ErrDuplicateKey
	}
	return nil
}

func (r *redisUserRepository) Delete(ctx context.Context, id string) (bool, error) {
	user, err := r.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	removed, err := r.client.HDel(ctx, redisUsersKey, user.Username).Result()
	if err != nil {
		return false, err
	}
	return removed > 0, nil
}

type redisMediaRequestRepository struct {
	client *redis.Client
	now    func() time.Time
}

// NewRedisMediaRequestRepository stores each request as a JSON string with a
// tracking-id pointer and a creation-ordered index.
func NewRedisMediaRequestRepository(client *redis.Client) MediaRequestRepository {
	return &redisMediaRequestRepository{client: client, now: time.Now}
}

func (r *redisMediaRequestRepository) List(ctx context.Context) ([]domain.MediaRequest, error) {
	ids, err := r.client.ZRevRange(ctx, redisRequestIndexKey, 0, -1).Result()
	if err != nil {
		return nil, err
	}
	if len(ids) == 0 {
		return []domain.MediaRequest{}, nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = requestKey(id)
	}
	values, err := r.client.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	result := make([]domain.MediaRequest, 0, len(values))
	for _, v := range values {
		raw, ok := v.(string)
		if !ok {
			continue
		}
		var req domain.MediaRequest
		if err := json.Unmarshal([]byte(raw), &req); err != nil {
			return nil, fmt.Errorf("decode media request: %w", err)
		}
		result = append(result, req)
	}
	sortByCreatedDesc(result)
	return result, nil
}

func (r *redisMediaRequestRepository) GetByID(ctx context.Context, id string) (*domain.MediaRequest, error) {
	raw, err := r.client.Get(ctx, requestKey(id)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	var req domain.MediaRequest
	if err := json.Unmarshal([]byte(raw), &req); err != nil {
		return nil, fmt.Errorf("decode media request: %w", err)
	}
	return &req, nil
}

func (r *redisMediaRequestRepository) GetByTrackingID(ctx context.Context, trackingID string) (*domain.MediaRequest, error) {
	id, err := r.client.Get(ctx, trackingKey(trackingID)).Result()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *redisMediaRequestRepository) Create(ctx context.Context, req *domain.MediaRequest) error {
	if req.ID == "" {
		req.ID = uuid.NewString()
	}
	if req.CreatedAt.IsZero() {
		req.CreatedAt = r.now().UTC()
	}
	if req.UpdatedAt.IsZero() {
		req.UpdatedAt = req.CreatedAt
	}

	claimed, err := r.client.SetNX(ctx, trackingKey(req.TrackingID), req.ID, 0).Result()
	if err != nil {
		return err
	}
	if !claimed {
		return ErrDuplicateKey
	}

	payload, err := json.Marshal(req)
	if err != nil {
		return err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Set(ctx, requestKey(req.ID), payload, 0)
		pipe.ZAdd(ctx, redisRequestIndexKey, redis.Z{
			Score:  float64(req.CreatedAt.UnixMilli()),
			Member: req.ID,
		})
		return nil
	})
	if err != nil {
		r.client.Del(ctx, trackingKey(req.TrackingID))
		return err
	}
	return nil
}

// Update reads, merges and writes back the record. Concurrent writers are
// last-write-wins.
func (r *redisMediaRequestRepository) Update(ctx context.Context, id string, patch domain.MediaRequestPatch) (*domain.MediaRequest, error) {
	req, err := r.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	patch.Apply(req, r.now().UTC())
	payload, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}
	if err := r.client.Set(ctx, requestKey(id), payload, 0).Err(); err != nil {
		return nil, err
	}
	return req, nil
}

func (r *redisMediaRequestRepository) Delete(ctx context.Context, id string) (bool, error) {
	req, err := r.GetByID(ctx, id)
	if errors.Is(err, ErrNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	_, err = r.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, requestKey(id), trackingKey(req.TrackingID))
		pipe.ZRem(ctx, redisRequestIndexKey, id)
		return nil
	})
	if err != nil {
		return false, err
	}
	return true, nil
}
