package redisstore

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	sessionauth "github.com/interviewly/sessionauth"
)

const (
	createStatusDuplicate int64 = 0
	createStatusCreated   int64 = 1

	rotateStatusNotFound int64 = 0
	rotateStatusMismatch int64 = 1
	rotateStatusRotated  int64 = 2
)

// createUserScript installs the user hash and both lookup indexes only if
// neither the username nor the email is already taken.
const createUserScript = `
if redis.call("EXISTS", KEYS[2]) == 1 or redis.call("EXISTS", KEYS[3]) == 1 then
  return 0
end
redis.call("HSET", KEYS[1],
  "username", ARGV[1],
  "email", ARGV[2],
  "full_name", ARGV[3],
  "role", ARGV[4],
  "password_hash", ARGV[5],
  "refresh_token", "",
  "created_at", ARGV[6],
  "updated_at", ARGV[6])
redis.call("SET", KEYS[2], ARGV[7])
redis.call("SET", KEYS[3], ARGV[7])
return 1
`

// rotateRefreshScript is the compare-and-swap at the heart of rotation: the
// stored token must be non-empty and byte-equal to the presented one, and
// the replacement happens in the same script so no interleaving is possible.
const rotateRefreshScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
local current = redis.call("HGET", KEYS[1], "refresh_token")
if not current or current == "" or current ~= ARGV[1] then
  return 1
end
redis.call("HSET", KEYS[1], "refresh_token", ARGV[2], "updated_at", ARGV[3])
return 2
`

const setFieldScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return 0
end
redis.call("HSET", KEYS[1], ARGV[1], ARGV[2], "updated_at", ARGV[3])
return 1
`

const getRefreshScript = `
if redis.call("EXISTS", KEYS[1]) == 0 then
  return {0, ""}
end
local token = redis.call("HGET", KEYS[1], "refresh_token")
if not token then
  token = ""
end
return {1, token}
`

var (
	createUserLua    = redis.NewScript(createUserScript)
	rotateRefreshLua = redis.NewScript(rotateRefreshScript)
	setFieldLua      = redis.NewScript(setFieldScript)
	getRefreshLua    = redis.NewScript(getRefreshScript)
)

// Store keeps user records in Redis hashes with username and email index
// keys. It implements [sessionauth.UserStore].
type Store struct {
	client *redis.Client
	prefix string
}

// New returns a Store using the given client. prefix namespaces all keys;
// empty means "auth".
func New(client *redis.Client, prefix string) *Store {
	if prefix == "" {
		prefix = "auth"
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) userKey(userID string) string {
	return s.prefix + ":user:" + userID
}

func (s *Store) usernameKey(username string) string {
	return s.prefix + ":uname:" + username
}

func (s *Store) emailKey(email string) string {
	return s.prefix + ":email:" + email
}

// CreateUser assigns an ID and timestamps and installs the record together
// with its two index keys in one script, so a racing duplicate registration
// cannot slip between the existence check and the write.
func (s *Store) CreateUser(ctx context.Context, user sessionauth.UserRecord) (sessionauth.UserRecord, error) {
	if user.ID == "" {
		user.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	user.CreatedAt = now
	user.UpdatedAt = now

	status, err := createUserLua.Run(ctx, s.client,
		[]string{s.userKey(user.ID), s.usernameKey(user.Username), s.emailKey(user.Email)},
		user.Username,
		user.Email,
		user.FullName,
		user.Role,
		user.PasswordHash,
		now.Unix(),
		user.ID,
	).Int64()
	if err != nil {
		return sessionauth.UserRecord{}, fmt.Errorf("%w: %v", sessionauth.ErrStoreUnavailable, err)
	}

	switch status {
	case createStatusDuplicate:
		return sessionauth.UserRecord{}, sessionauth.ErrUserExists
	case createStatusCreated:
		return user, nil
	default:
		return sessionauth.UserRecord{}, fmt.Errorf("%w: unknown create status %d", sessionauth.ErrStoreUnavailable, status)
	}
}

// GetUserByIdentifier resolves identifier via the username index first,
// then the email index.
func (s *Store) GetUserByIdentifier(ctx context.Context, identifier string) (sessionauth.UserRecord, error) {
	identifier = strings.ToLower(identifier)

	userID, err := s.client.Get(ctx, s.usernameKey(identifier)).Result()
	if errors.Is(err, redis.Nil) {
		userID, err = s.client.Get(ctx, s.emailKey(identifier)).Result()
	}
	if errors.Is(err, redis.Nil) {
		return sessionauth.UserRecord{}, sessionauth.ErrUserNotFound
	}
	if err != nil {
		return sessionauth.UserRecord{}, fmt.Errorf("%w: %v", sessionauth.ErrStoreUnavailable, err)
	}

	return s.GetUserByID(ctx, userID)
}

// GetUserByID loads the full user hash.
func (s *Store) GetUserByID(ctx context.Context, userID string) (sessionauth.UserRecord, error) {
	fields, err := s.client.HGetAll(ctx, s.userKey(userID)).Result()
	if err != nil {
		return sessionauth.UserRecord{}, fmt.Errorf("%w: %v", sessionauth.ErrStoreUnavailable, err)
	}
	if len(fields) == 0 {
		return sessionauth.UserRecord{}, sessionauth.ErrUserNotFound
	}
	return recordFromFields(userID, fields), nil
}

// UpdatePasswordHash replaces the stored hash.
func (s *Store) UpdatePasswordHash(ctx context.Context, userID, newHash string) error {
	return s.setField(ctx, userID, "password_hash", newHash)
}

// SetRefreshToken unconditionally installs token as the user's current
// refresh token, superseding any previous one.
func (s *Store) SetRefreshToken(ctx context.Context, userID, token string) error {
	return s.setField(ctx, userID, "refresh_token", token)
}

// GetRefreshToken returns the stored refresh token, which is empty when the
// user has no live session.
func (s *Store) GetRefreshToken(ctx context.Context, userID string) (string, error) {
	result, err := getRefreshLua.Run(ctx, s.client, []string{s.userKey(userID)}).Slice()
	if err != nil {
		return "", fmt.Errorf("%w: %v", sessionauth.ErrStoreUnavailable, err)
	}
	if len(result) != 2 {
		return "", fmt.Errorf("%w: invalid get-refresh response", sessionauth.ErrStoreUnavailable)
	}
	status, ok := result[0].(int64)
	if !ok {
		return "", fmt.Errorf("%w: invalid get-refresh status", sessionauth.ErrStoreUnavailable)
	}
	if status == 0 {
		return "", sessionauth.ErrUserNotFound
	}
	token, _ := result[1].(string)
	return token, nil
}

// RotateRefreshToken swaps presented for next atomically. Exactly one of N
// concurrent calls with the same presented token succeeds; the rest return
// [sessionauth.ErrTokenReused].
func (s *Store) RotateRefreshToken(ctx context.Context, userID, presented, next string) error {
	status, err := rotateRefreshLua.Run(ctx, s.client,
		[]string{s.userKey(userID)},
		presented,
		next,
		time.Now().UTC().Unix(),
	).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", sessionauth.ErrStoreUnavailable, err)
	}

	switch status {
	case rotateStatusNotFound:
		return sessionauth.ErrUserNotFound
	case rotateStatusMismatch:
		return sessionauth.ErrTokenReused
	case rotateStatusRotated:
		return nil
	default:
		return fmt.Errorf("%w: unknown rotate status %d", sessionauth.ErrStoreUnavailable, status)
	}
}

// ClearRefreshToken empties the stored refresh token.
func (s *Store) ClearRefreshToken(ctx context.Context, userID string) error {
	return s.setField(ctx, userID, "refresh_token", "")
}

func (s *Store) setField(ctx context.Context, userID, field, value string) error {
	status, err := setFieldLua.Run(ctx, s.client,
		[]string{s.userKey(userID)},
		field,
		value,
		time.Now().UTC().Unix(),
	).Int64()
	if err != nil {
		return fmt.Errorf("%w: %v", sessionauth.ErrStoreUnavailable, err)
	}
	if status == 0 {
		return sessionauth.ErrUserNotFound
	}
	return nil
}

func recordFromFields(userID string, fields map[string]string) sessionauth.UserRecord {
	record := sessionauth.UserRecord{
		ID:           userID,
		Username:     fields["username"],
		Email:        fields["email"],
		FullName:     fields["full_name"],
		Role:         fields["role"],
		PasswordHash: fields["password_hash"],
		RefreshToken: fields["refresh_token"],
	}
	if sec, err := strconv.ParseInt(fields["created_at"], 10, 64); err == nil {
		record.CreatedAt = time.Unix(sec, 0).UTC()
	}
	if sec, err := strconv.ParseInt(fields["updated_at"], 10, 64); err == nil {
		record.UpdatedAt = time.Unix(sec, 0).UTC()
	}
	return record
}
