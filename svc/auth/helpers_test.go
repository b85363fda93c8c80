package auth_test

import (
	"context"
	"regexp"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/dmitrymomot/fintrack/pkg/audit"
	"github.com/dmitrymomot/fintrack/pkg/jwt"
	"github.com/dmitrymomot/fintrack/svc/auth"
	"github.com/dmitrymomot/fintrack/svc/auth/memstore"
)

var codeRegex = regexp.MustCompile(`\b\d{6}\b`)

type clock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) Send(ctx context.Context, to, subject, body string) error {
	args := m.Called(ctx, to, subject, body)
	return args.Error(0)
}

// expectCode captures the code of the next successfully sent message.
func (m *mockNotifier) expectCode(to string) *string {
	code := new(string)
	m.On("Send", mock.Anything, to, mock.Anything, mock.Anything).
		Run(func(args mock.Arguments) { *code = codeRegex.FindString(args.String(3)) }).
		Return(nil).Once()
	return code
}

type env struct {
	svc      *auth.Service
	store    *memstore.Store
	clock    *clock
	notifier *mockNotifier
	audit    *audit.MemoryStorage
	otp      *auth.OTPEngine
}

func newEnv(t *testing.T, opts ...auth.Option) *env {
	t.Helper()

	// 15 seconds into a 30 second TOTP step.
	c := &clock{now: time.Date(2024, 6, 1, 12, 0, 15, 0, time.UTC)}

	signer, err := jwt.NewFromString("test-signing-key", jwt.WithIssuer("fintrack"), jwt.WithClock(c.Now))
	require.NoError(t, err)
	otp, err := auth.NewOTPEngine("FinTrack", []byte("pepper"))
	require.NoError(t, err)

	auditStorage := audit.NewMemoryStorage()
	auditLog, err := audit.NewLogger(auditStorage, audit.WithClock(c.Now))
	require.NoError(t, err)

	store := memstore.New()
	notifier := &mockNotifier{}
	base := []auth.Option{
		auth.WithClock(c.Now),
		auth.WithHasher(auth.NewBcryptHasher(bcrypt.MinCost)),
		auth.WithAudit(auditLog),
	}
	svc, err := auth.NewService(store, auth.NewSessionTokens(signer, 24*time.Hour, 5*time.Minute), otp, notifier, append(base, opts...)...)
	require.NoError(t, err)

	return &env{svc: svc, store: store, clock: c, notifier: notifier, audit: auditStorage, otp: otp}
}

func (e *env) register(t *testing.T, email, password string) *auth.Account {
	t.Helper()
	acc, err := e.svc.Register(context.Background(), auth.RegisterInput{Name: "Alice", Email: email, Password: password})
	require.NoError(t, err)
	return acc
}

func mustSigner(t *testing.T) *jwt.Service {
	t.Helper()
	signer, err := jwt.NewFromString("other-signing-key")
	require.NoError(t, err)
	return signer
}
