package auth

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nouscopy/nouscopy/internal/storage"
)

func newTestService(t *testing.T) (*Service, *storage.Store) {
	t.Helper()

	db, err := storage.OpenDatabase(":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, storage.RunMigrations(db))

	store := storage.NewStore(db)
	return NewService(store, "test-secret", time.Hour), store
}

func TestSignUp(t *testing.T) {
	svc, store := newTestService(t)
	ctx := context.Background()

	tok, err := svc.SignUp(ctx, "  Ana@Example.COM ", "segredo")
	require.NoError(t, err)
	assert.Equal(t, "bearer", tok.TokenType)
	assert.NotEmpty(t, tok.AccessToken)
	assert.Equal(t, "ana@example.com", tok.User.Email)
	assert.Len(t, tok.User.ID, 36, "uuid")

	stored, err := store.GetUserByEmail(ctx, "ana@example.com")
	require.NoError(t, err)
	assert.Equal(t, tok.User.ID, stored.ID)
	assert.NotEqual(t, "segredo", stored.PasswordHash)

	user, sess, err := svc.Session(ctx, tok.AccessToken)
	require.NoError(t, err)
	assert.Equal(t, tok.User.ID, user.ID)
	assert.Equal(t, tok.User.ID, sess.UserID)
}

func TestSignUp_Validation(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tests := []struct {
		name     string
		email    string
		password string
		want     error
	}{
		{"invalid email", "ana", "segredo", ErrInvalidEmail},
		{"display name", "Ana <ana@example.com>", "segredo", ErrInvalidEmail},
		{"short password", "ana@example.com", "12345", ErrWeakPassword},
		{"short multibyte password", "ana@example.com", "ãéíõú", ErrWeakPassword},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := svc.SignUp(ctx, tt.email, tt.password)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestSignUp_EmailTaken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "ana@example.com", "segredo")
	require.NoError(t, err)
	_, err = svc.SignUp(ctx, "ANA@example.com", "outrasenha")
	assert.ErrorIs(t, err, ErrEmailTaken)
}

func TestSignIn(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "ana@example.com", "segredo")
	require.NoError(t, err)

	tok, err := svc.SignIn(ctx, "Ana@example.com", "segredo")
	require.NoError(t, err)
	assert.Equal(t, "ana@example.com", tok.User.Email)

	_, err = svc.SignIn(ctx, "ana@example.com", "errada")
	assert.ErrorIs(t, err, ErrInvalidCredentials)

	_, err = svc.SignIn(ctx, "bia@example.com", "segredo")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
}

func TestSignIn_UnknownEmailVerifiesDummyHash(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	_, err := svc.SignUp(ctx, "ana@example.com", "segredo")
	require.NoError(t, err)

	var hashes []string
	orig := verifyPassword
	verifyPassword = func(password, encodedHash string) (bool, error) {
		hashes = append(hashes, encodedHash)
		return orig(password, encodedHash)
	}
	t.Cleanup(func() { verifyPassword = orig })

	_, err = svc.SignIn(ctx, "bia@example.com", "segredo")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	require.Len(t, hashes, 1, "unknown email must still run a verify")
	assert.Equal(t, dummyHash, hashes[0])

	_, err = svc.SignIn(ctx, "ana@example.com", "errada")
	assert.ErrorIs(t, err, ErrInvalidCredentials)
	require.Len(t, hashes, 2)
	assert.NotEqual(t, dummyHash, hashes[1])
}

func TestSignOut_RevokesSession(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	first, err := svc.SignUp(ctx, "ana@example.com", "segredo")
	require.NoError(t, err)
	second, err := svc.SignIn(ctx, "ana@example.com", "segredo")
	require.NoError(t, err)

	require.NoError(t, svc.SignOut(ctx, first.AccessToken))

	_, _, err = svc.Session(ctx, first.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)
	assert.ErrorIs(t, svc.SignOut(ctx, first.AccessToken), ErrUnauthenticated)

	_, _, err = svc.Session(ctx, second.AccessToken)
	assert.NoError(t, err, "other sessions stay signed in")
}

func TestSession_Expired(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tok, err := svc.SignUp(ctx, "ana@example.com", "segredo")
	require.NoError(t, err)

	svc.now = func() time.Time { return time.Now().Add(2 * time.Hour) }
	_, _, err = svc.Session(ctx, tok.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSession_ForgedToken(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	tok, err := svc.SignUp(ctx, "ana@example.com", "segredo")
	require.NoError(t, err)

	other := NewService(svc.store, "other-secret", time.Hour)
	_, _, err = other.Session(ctx, tok.AccessToken)
	assert.ErrorIs(t, err, ErrUnauthenticated)
}

func TestSubscribe(t *testing.T) {
	svc, _ := newTestService(t)
	ctx := context.Background()

	var (
		mu     sync.Mutex
		events []EventType
	)
	unsubscribe := svc.Subscribe(func(ev Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, ev.Type)
		assert.Equal(t, "ana@example.com", ev.User.Email)
		assert.NotNil(t, ev.Session)
	})

	tok, err := svc.SignUp(ctx, "ana@example.com", "segredo")
	require.NoError(t, err)
	_, err = svc.SignIn(ctx, "ana@example.com", "segredo")
	require.NoError(t, err)
	require.NoError(t, svc.SignOut(ctx, tok.AccessToken))

	unsubscribe()
	unsubscribe()
	_, err = svc.SignIn(ctx, "ana@example.com", "segredo")
	require.NoError(t, err)

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, []EventType{EventSignedUp, EventSignedIn, EventSignedOut}, events)
}

func TestUserMessage(t *testing.T) {
	assert.Equal(t, "As senhas não coincidem", UserMessage(ErrPasswordMismatch))
	assert.Equal(t, "A senha deve ter pelo menos 6 caracteres", UserMessage(ErrWeakPassword))
	assert.Equal(t, "E-mail ou senha inválidos", UserMessage(ErrInvalidCredentials))
}
