// Package session holds the console's server-side login state. It is
// the only state the console keeps between requests: an opaque token
// for the upstream API plus the user's name and role.
package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/trace"

	"github.com/sistemacitas/consola/pkg/logging"
)

const (
	keyPrefix     = "session:"
	revokeChannel = "session:revoked"
)

// Roles understood by the route guard. The upstream API never sees
// these; they only gate console routes.
const (
	RoleCliente = "cliente"
	RoleOwner   = "owner"
)

var (
	// ErrNotFound is returned when no session exists for a session ID.
	ErrNotFound = errors.New("session: not found")
	// ErrTokenExpired is returned when a login token is already past
	// its expiry at store time.
	ErrTokenExpired = errors.New("session: token already expired")
)

// Session mirrors the three values the historical client kept in
// browser storage.
type Session struct {
	Token    string `json:"token"`
	UserName string `json:"user_name"`
	Role     string `json:"role"`
}

// IsAuthenticated reports whether the session carries a token. An
// absent token means unauthenticated regardless of the other fields.
func (s Session) IsAuthenticated() bool {
	return s.Token != ""
}

// HomePath is the default route for the session's role. Role
// mismatches redirect here rather than to an error page.
func (s Session) HomePath() string {
	if s.Role == RoleOwner {
		return "/owner/dashboard"
	}
	return "/"
}

// LoginPath is where an unauthenticated request for this role's area
// should land.
func (s Session) LoginPath() string {
	if s.Role == RoleOwner {
		return "/owner/login"
	}
	return "/login"
}

// Store persists sessions in redis, one JSON value per session ID.
type Store struct {
	redis  *redis.Client
	tracer trace.Tracer
	logger *logging.Logger
	ttl    time.Duration
}

// NewStore creates a session store. ttl bounds how long a session may
// live; it is further clamped per session by the token's own expiry.
func NewStore(redisClient *redis.Client, ttl time.Duration, logger *logging.Logger) *Store {
	if logger == nil {
		logger = logging.Default()
	}
	return &Store{
		redis:  redisClient,
		tracer: otel.Tracer("consola.internal.session"),
		logger: logger,
		ttl:    ttl,
	}
}

// NewID returns a fresh opaque session ID for the cookie.
func NewID() string {
	return uuid.NewString()
}

// Set writes the session under sid. If the upstream token is a JWT
// with an exp claim, the redis TTL is clamped so the console session
// never outlives the token.
func (s *Store) Set(ctx context.Context, sid string, sess Session) error {
	if sid == "" {
		return errors.New("session: sid required")
	}

	ttl := s.ttl
	if exp, ok := tokenExpiry(sess.Token); ok {
		until := time.Until(exp)
		if until <= 0 {
			return ErrTokenExpired
		}
		if until < ttl {
			ttl = until
		}
	}

	data, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("session: marshal: %w", err)
	}

	ctx, span := s.tracer.Start(ctx, "session.set")
	defer span.End()

	if err := s.redis.Set(ctx, keyPrefix+sid, data, ttl).Err(); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: set: %w", err)
	}
	s.logger.Info("session stored", "user", sess.UserName, "role", sess.Role, "ttl", ttl.String())
	return nil
}

// Get loads the session for sid. Returns ErrNotFound when the session
// is absent or has expired.
func (s *Store) Get(ctx context.Context, sid string) (Session, error) {
	if sid == "" {
		return Session{}, ErrNotFound
	}

	ctx, span := s.tracer.Start(ctx, "session.get")
	defer span.End()

	raw, err := s.redis.Get(ctx, keyPrefix+sid).Result()
	if err != nil {
		if err == redis.Nil {
			return Session{}, ErrNotFound
		}
		span.RecordError(err)
		return Session{}, fmt.Errorf("session: get: %w", err)
	}

	var sess Session
	if err := json.Unmarshal([]byte(raw), &sess); err != nil {
		span.RecordError(err)
		return Session{}, fmt.Errorf("session: unmarshal: %w", err)
	}
	return sess, nil
}

// Clear deletes the session and announces the revocation so any open
// screen watching the session can redirect to login.
func (s *Store) Clear(ctx context.Context, sid string) error {
	if sid == "" {
		return nil
	}

	ctx, span := s.tracer.Start(ctx, "session.clear")
	defer span.End()

	pipe := s.redis.TxPipeline()
	pipe.Del(ctx, keyPrefix+sid)
	pipe.Publish(ctx, revokeChannel, sid)
	if _, err := pipe.Exec(ctx); err != nil {
		span.RecordError(err)
		return fmt.Errorf("session: clear: %w", err)
	}
	return nil
}

// Watch subscribes to session revocations. The returned channel emits
// the revoked session IDs until ctx is cancelled.
func (s *Store) Watch(ctx context.Context) <-chan string {
	out := make(chan string)
	sub := s.redis.Subscribe(ctx, revokeChannel)

	go func() {
		defer close(out)
		defer sub.Close()
		ch := sub.Channel()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				select {
				case out <- msg.Payload:
				case <-ctx.Done():
					return
				}
			}
		}
	}()

	return out
}

// tokenExpiry extracts the exp claim from a JWT without verifying the
// signature. The console holds no signing secret; the upstream server
// remains the authority on token validity.
func tokenExpiry(token string) (time.Time, bool) {
	if token == "" {
		return time.Time{}, false
	}
	claims := jwt.RegisteredClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(token, &claims); err != nil {
		return time.Time{}, false
	}
	if claims.ExpiresAt == nil {
		return time.Time{}, false
	}
	return claims.ExpiresAt.Time, true
}
