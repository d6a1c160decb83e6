package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/mail"
	"strings"
	"sync"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/segmentio/ksuid"

	"github.com/nouscopy/nouscopy/internal/models"
	"github.com/nouscopy/nouscopy/internal/storage"
)

// MinPasswordLength is the shortest password accepted at sign-up.
const MinPasswordLength = 6

// DefaultSessionTTL is used when the configured session lifetime is zero.
const DefaultSessionTTL = 7 * 24 * time.Hour

// verifyPassword is swapped in tests to observe sign-in hashing.
var verifyPassword = VerifyPassword

var (
	ErrInvalidEmail       = errors.New("auth: invalid email")
	ErrWeakPassword       = errors.New("auth: password too short")
	ErrPasswordMismatch   = errors.New("auth: passwords do not match")
	ErrEmailTaken         = errors.New("auth: email already registered")
	ErrInvalidCredentials = errors.New("auth: invalid email or password")
	ErrUnauthenticated    = errors.New("auth: not authenticated")
)

// Store is the persistence the auth service needs. *storage.Store
// implements it.
type Store interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, id string) (*models.User, error)
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	RevokeSession(ctx context.Context, userID, id string) error
}

// EventType names a session change.
type EventType string

const (
	EventSignedUp  EventType = "SIGNED_UP"
	EventSignedIn  EventType = "SIGNED_IN"
	EventSignedOut EventType = "SIGNED_OUT"
)

// Event is delivered to subscribers whenever a session starts or ends.
type Event struct {
	Type    EventType
	User    *models.User
	Session *models.Session
}

// Token is the result of a successful sign-up or sign-in.
type Token struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresAt   time.Time    `json:"expires_at"`
	User        *models.User `json:"user"`
}

// Service signs users up, in and out, and resolves access tokens.
type Service struct {
	store  Store
	secret []byte
	ttl    time.Duration
	now    func() time.Time

	mu     sync.Mutex
	nextID int
	subs   map[int]func(Event)
}

// NewService creates a Service that signs tokens with secret. A zero ttl
// uses DefaultSessionTTL.
func NewService(store Store, secret string, ttl time.Duration) *Service {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &Service{
		store:  store,
		secret: []byte(secret),
		ttl:    ttl,
		now:    time.Now,
		subs:   make(map[int]func(Event)),
	}
}

// Subscribe registers fn to receive session events and returns a function
// that removes it. Events are delivered synchronously, in no particular
// order across subscribers.
func (s *Service) Subscribe(fn func(Event)) (unsubscribe func()) {
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = fn
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			delete(s.subs, id)
			s.mu.Unlock()
		})
	}
}

func (s *Service) emit(ev Event) {
	s.mu.Lock()
	fns := make([]func(Event), 0, len(s.subs))
	for _, fn := range s.subs {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(ev)
	}
}

// NormalizeEmail trims and lowercases an email address.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// SignUp registers a new account and starts a session for it.
func (s *Service) SignUp(ctx context.Context, email, password string) (*Token, error) {
	email = NormalizeEmail(email)
	if addr, err := mail.ParseAddress(email); err != nil || addr.Address != email {
		return nil, ErrInvalidEmail
	}
	if utf8.RuneCountInString(password) < MinPasswordLength {
		return nil, ErrWeakPassword
	}

	hash, err := HashPassword(password)
	if err != nil {
		return nil, fmt.Errorf("hashing password: %w", err)
	}

	user := &models.User{
		ID:           uuid.NewString(),
		Email:        email,
		PasswordHash: hash,
		CreatedAt:    s.now().UTC(),
	}
	if err := s.store.CreateUser(ctx, user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			return nil, ErrEmailTaken
		}
		return nil, fmt.Errorf("creating user: %w", err)
	}

	tok, sess, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}
	slog.Info("user signed up", "user_id", user.ID)
	s.emit(Event{Type: EventSignedUp, User: user, Session: sess})
	return tok, nil
}

// SignIn checks the credentials and starts a new session.
func (s *Service) SignIn(ctx context.Context, email, password string) (*Token, error) {
	user, err := s.store.GetUserByEmail(ctx, NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			_, _ = verifyPassword(password, dummyHash)
			return nil, ErrInvalidCredentials
		}
		return nil, fmt.Errorf("looking up user: %w", err)
	}

	ok, err := verifyPassword(password, user.PasswordHash)
	if err != nil {
		return nil, fmt.Errorf("verifying password: %w", err)
	}
	if !ok {
		return nil, ErrInvalidCredentials
	}

	tok, sess, err := s.startSession(ctx, user)
	if err != nil {
		return nil, err
	}
	s.emit(Event{Type: EventSignedIn, User: user, Session: sess})
	return tok, nil
}

func (s *Service) startSession(ctx context.Context, user *models.User) (*Token, *models.Session, error) {
	now := s.now()
	sess := &models.Session{
		ID:        ksuid.New().String(),
		UserID:    user.ID,
		ExpiresAt: now.Add(s.ttl).UTC().Truncate(time.Second),
		CreatedAt: now.UTC(),
	}
	if err := s.store.CreateSession(ctx, sess); err != nil {
		return nil, nil, fmt.Errorf("creating session: %w", err)
	}

	access, err := issueToken(s.secret, user.ID, user.Email, sess.ID, now, sess.ExpiresAt)
	if err != nil {
		return nil, nil, err
	}
	return &Token{
		AccessToken: access,
		TokenType:   "bearer",
		ExpiresAt:   sess.ExpiresAt,
		User:        user,
	}, sess, nil
}

// Session resolves an access token to its user and session. Tokens whose
// session was revoked or has expired are rejected with ErrUnauthenticated.
func (s *Service) Session(ctx context.Context, accessToken string) (*models.User, *models.Session, error) {
	now := s.now()
	claims, err := parseToken(s.secret, accessToken, now)
	if err != nil {
		return nil, nil, fmt.Errorf("%w: %v", ErrUnauthenticated, err)
	}

	sess, err := s.store.GetSession(ctx, claims.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: unknown session", ErrUnauthenticated)
		}
		return nil, nil, fmt.Errorf("getting session: %w", err)
	}
	if sess.UserID != claims.Subject || !sess.Active(now) {
		return nil, nil, fmt.Errorf("%w: session ended", ErrUnauthenticated)
	}

	user, err := s.store.GetUserByID(ctx, sess.UserID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, nil, fmt.Errorf("%w: unknown user", ErrUnauthenticated)
		}
		return nil, nil, fmt.Errorf("getting user: %w", err)
	}
	return user, sess, nil
}

// SignOut revokes the session behind the access token.
func (s *Service) SignOut(ctx context.Context, accessToken string) error {
	user, sess, err := s.Session(ctx, accessToken)
	if err != nil {
		return err
	}
	if err := s.store.RevokeSession(ctx, user.ID, sess.ID); err != nil {
		return fmt.Errorf("revoking session: %w", err)
	}
	s.emit(Event{Type: EventSignedOut, User: user, Session: sess})
	return nil
}

// UserMessage returns the Portuguese message shown for an auth error.
func UserMessage(err error) string {
	switch {
	case errors.Is(err, ErrInvalidEmail):
		return "Informe um e-mail válido"
	case errors.Is(err, ErrWeakPassword):
		return fmt.Sprintf("A senha deve ter pelo menos %d caracteres", MinPasswordLength)
	case errors.Is(err, ErrPasswordMismatch):
		return "As senhas não coincidem"
	case errors.Is(err, ErrEmailTaken):
		return "Este e-mail já está cadastrado"
	case errors.Is(err, ErrInvalidCredentials):
		return "E-mail ou senha inválidos"
	case errors.Is(err, ErrUnauthenticated):
		return "Sessão expirada ou inválida. Faça login novamente."
	default:
		return "Erro ao realizar autenticação"
	}
}
