package application

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-marketplace-api/internal/domain/entity"
	repo "github.com/oksasatya/go-marketplace-api/internal/domain/repository"
	"github.com/oksasatya/go-marketplace-api/pkg/events"
	"github.com/oksasatya/go-marketplace-api/pkg/helpers"
)

var (
	ErrInvalidCredentials = errors.New("invalid credentials")
	ErrUserNotFound       = errors.New("user not found")
	ErrUsernameTaken      = errors.New("username already taken")
)

// UserService implements registration and credential-based login.
type UserService struct {
	Repo   repo.UserRepository
	Tokens *helpers.TokenManager
	Redis  *redis.Client
	Pub    *helpers.RabbitPublisher
	Logger *logrus.Logger
}

func NewUserService(r repo.UserRepository, tm *helpers.TokenManager, rdb *redis.Client, pub *helpers.RabbitPublisher, logger *logrus.Logger) *UserService {
	return &UserService{Repo: r, Tokens: tm, Redis: rdb, Pub: pub, Logger: logger}
}

func sessionKey(id int64) string {
	return "user:session:" + strconv.FormatInt(id, 10)
}

// Register hashes the password and creates the user. The stored record
// never contains the plaintext.
func (s *UserService) Register(ctx context.Context, username, email, password string) (*entity.User, error) {
	hash, err := helpers.HashPassword(password)
	if err != nil {
		return nil, err
	}
	u := &entity.User{Username: username, Email: email, Password: hash}
	if err := s.Repo.Create(u); err != nil {
		if errors.Is(err, repo.ErrDuplicateUsername) {
			return nil, ErrUsernameTaken
		}
		return nil, err
	}

	if s.Pub != nil {
		ev := events.Event{Type: events.UserRegistered, At: time.Now().UTC(), UserID: u.ID, Username: u.Username, Email: u.Email}
		if err := s.Pub.PublishJSON(ctx, ev); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Warn("publish user.registered failed")
		}
	}
	return u, nil
}

// Authenticate resolves basic-auth credentials to a user. Lookup miss
// and password mismatch are indistinguishable to the caller.
func (s *UserService) Authenticate(ctx context.Context, username, password string) (*entity.User, error) {
	u, err := s.Repo.FindByUsername(username)
	if err != nil || u == nil {
		return nil, ErrInvalidCredentials
	}
	if !helpers.CompareHashAndPassword(u.Password, password) {
		return nil, ErrInvalidCredentials
	}
	return u, nil
}

// Login issues a bearer token for an authenticated user and records a
// session hash in Redis (best-effort).
func (s *UserService) Login(ctx context.Context, u *entity.User) (string, time.Time, error) {
	token, exp, err := s.Tokens.Generate(u)
	if err != nil {
		if s.Logger != nil {
			s.Logger.WithError(err).WithField("user_id", u.ID).Error("generate token failed")
		}
		return "", time.Time{}, err
	}

	if s.Redis != nil {
		key := sessionKey(u.ID)
		pipe := s.Redis.Pipeline()
		pipe.HSet(ctx, key, map[string]any{
			"user_id":   u.ID,
			"username":  u.Username,
			"email":     u.Email,
			"logged_in": true,
		})
		pipe.Expire(ctx, key, time.Until(exp))
		if _, err := pipe.Exec(ctx); err != nil && s.Logger != nil {
			s.Logger.WithError(err).WithField("key", key).Warn("redis pipeline failed")
		}
	}
	return token, exp, nil
}

// ListUsers returns every registered user, for diagnostic enumeration.
func (s *UserService) ListUsers(ctx context.Context) ([]*entity.User, error) {
	return s.Repo.ListAll()
}

// Exists reports whether the user id still resolves against the
// credential store. Used by the bearer gate when re-validation is on.
func (s *UserService) Exists(ctx context.Context, id int64) bool {
	u, err := s.Repo.FindByID(id)
	return err == nil && u != nil
}
