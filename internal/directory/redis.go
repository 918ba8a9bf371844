package directory

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/ridelinkapp/ridelink/internal/common"
	"github.com/ridelinkapp/ridelink/internal/logging"
	"github.com/ridelinkapp/ridelink/internal/models"
)

const (
	keyPrefix     = "users:"
	changeChannel = "users:changes"
)

// RedisStore implements Store over Redis: one hash per record under
// users:<id>, change notifications over the users:changes pub/sub channel.
type RedisStore struct {
	rdb *redis.Client
	log logging.Logger
}

// NewRedisStore returns a store bound to the given Redis client.
func NewRedisStore(rdb *redis.Client, log logging.Logger) *RedisStore {
	return &RedisStore{rdb: rdb, log: log.With("component", "directory")}
}

func recordKey(documentID string) string {
	return keyPrefix + documentID
}

func recordToHash(r models.DirectoryRecord) map[string]string {
	h := map[string]string{
		"email":    r.Email,
		"password": r.Password,
		"role":     r.Role,
	}
	if r.FullName != "" {
		h["fullName"] = r.FullName
	}
	if r.PhoneNumber != "" {
		h["phoneNumber"] = r.PhoneNumber
	}
	if r.Username != "" {
		h["username"] = r.Username
	}
	if !r.CreatedAt.IsZero() {
		h["createdAt"] = strconv.FormatInt(r.CreatedAt.Unix(), 10)
	}
	return h
}

func hashToRecord(documentID string, h map[string]string) models.DirectoryRecord {
	r := models.DirectoryRecord{
		ID:          documentID,
		Email:       h["email"],
		Password:    h["password"],
		Role:        h["role"],
		FullName:    h["fullName"],
		PhoneNumber: h["phoneNumber"],
		Username:    h["username"],
	}
	if raw, ok := h["createdAt"]; ok {
		if ts, err := strconv.ParseInt(raw, 10, 64); err == nil {
			r.CreatedAt = time.Unix(ts, 0).UTC()
		}
	}
	return r
}

func (s *RedisStore) Get(ctx context.Context, documentID string) (*models.DirectoryRecord, error) {
	h, err := s.rdb.HGetAll(ctx, recordKey(documentID)).Result()
	if err != nil {
		return nil, fmt.Errorf("%w: %w", common.ErrUnavailable, err)
	}
	if len(h) == 0 {
		return nil, common.ErrNotFound
	}
	r := hashToRecord(documentID, h)
	return &r, nil
}

func (s *RedisStore) scanRecords(ctx context.Context, visit func(models.DirectoryRecord) bool) error {
	iter := s.rdb.Scan(ctx, 0, keyPrefix+"*", 100).Iterator()
	for iter.Next(ctx) {
		key := iter.Val()
		h, err := s.rdb.HGetAll(ctx, key).Result()
		if err != nil {
			return fmt.Errorf("%w: %w", common.ErrUnavailable, err)
		}
		if len(h) == 0 {
			continue
		}
		if !visit(hashToRecord(strings.TrimPrefix(key, keyPrefix), h)) {
			return nil
		}
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrUnavailable, err)
	}
	return nil
}

func (s *RedisStore) QueryByEmail(ctx context.Context, email string) ([]models.DirectoryRecord, error) {
	var result []models.DirectoryRecord
	err := s.scanRecords(ctx, func(r models.DirectoryRecord) bool {
		if strings.EqualFold(r.Email, email) {
			result = append(result, r)
		}
		return true
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *RedisStore) GetAll(ctx context.Context) ([]models.DirectoryRecord, error) {
	var result []models.DirectoryRecord
	err := s.scanRecords(ctx, func(r models.DirectoryRecord) bool {
		result = append(result, r)
		return true
	})
	if err != nil {
		return nil, err
	}
	return result, nil
}

func (s *RedisStore) Upsert(ctx context.Context, documentID string, record models.DirectoryRecord) error {
	if err := s.rdb.Del(ctx, recordKey(documentID)).Err(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrUnavailable, err)
	}
	if err := s.rdb.HSet(ctx, recordKey(documentID), recordToHash(record)).Err(); err != nil {
		return fmt.Errorf("%w: %w", common.ErrUnavailable, err)
	}
	s.publishChange(ctx, 1)
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, documentID string) error {
	n, err := s.rdb.Del(ctx, recordKey(documentID)).Result()
	if err != nil {
		return fmt.Errorf("%w: %w", common.ErrUnavailable, err)
	}
	if n > 0 {
		s.publishChange(ctx, int(n))
	}
	return nil
}

func (s *RedisStore) Count(ctx context.Context) (int64, error) {
	var n int64
	err := s.scanRecords(ctx, func(models.DirectoryRecord) bool {
		n++
		return true
	})
	if err != nil {
		return 0, err
	}
	return n, nil
}

func (s *RedisStore) publishChange(ctx context.Context, n int) {
	if err := s.rdb.Publish(ctx, changeChannel, strconv.Itoa(n)).Err(); err != nil {
		s.log.Warn(ctx, "failed to publish change notification", "error", err)
	}
}

// Subscribe consumes the users:changes channel until stop is called or ctx
// is canceled. Malformed payloads are logged and skipped.
func (s *RedisStore) Subscribe(ctx context.Context, onChange func(n int)) (func(), error) {
	pubsub := s.rdb.Subscribe(ctx, changeChannel)

	// Force the subscription to be established before returning so callers
	// never miss a notification published right after Subscribe.
	if _, err := pubsub.Receive(ctx); err != nil {
		_ = pubsub.Close()
		return nil, fmt.Errorf("%w: %w", common.ErrUnavailable, err)
	}

	go func() {
		for msg := range pubsub.Channel() {
			n, err := strconv.Atoi(msg.Payload)
			if err != nil {
				s.log.Warn(ctx, "ignoring malformed change notification", "payload", msg.Payload)
				continue
			}
			if n > 0 {
				onChange(n)
			}
		}
	}()

	return func() { _ = pubsub.Close() }, nil
}
