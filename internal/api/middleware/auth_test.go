package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/mikleaka/intonation-identity/internal/core/domain"
	"github.com/mikleaka/intonation-identity/internal/pkg/token"
)

type stubRepo struct {
	accounts map[string]*domain.Account
}

func newStubRepo(accounts ...*domain.Account) *stubRepo {
	r := &stubRepo{accounts: make(map[string]*domain.Account)}
	for _, a := range accounts {
		r.accounts[a.ID] = a
	}
	return r
}

func (r *stubRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	if a, ok := r.accounts[id]; ok {
		return a, nil
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubRepo) FindByUsernameOrEmail(context.Context, string, string) (*domain.Account, error) {
	return nil, domain.ErrAccountNotFound
}

func (r *stubRepo) FindByEmail(context.Context, string) (*domain.Account, error) {
	return nil, domain.ErrAccountNotFound
}

func (r *stubRepo) UpsertPending(_ context.Context, a *domain.Account) (*domain.Account, error) {
	return a, nil
}

func (r *stubRepo) MarkVerified(context.Context, string, string) (bool, error) {
	return false, nil
}

func (r *stubRepo) UpdatePasswordHash(context.Context, string, string) error {
	return nil
}

func newTestCodec() *token.Codec {
	return token.NewCodec("secret", "intonation-app", "intonation-users", time.Hour)
}

func verifiedAccount() *domain.Account {
	return &domain.Account{ID: "acc-1", Username: "alice", Email: "a@x.com", Verified: true}
}

func runAuth(t *testing.T, repo *stubRepo, authorization string) (*httptest.ResponseRecorder, bool) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	if authorization != "" {
		req.Header.Set("Authorization", authorization)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Auth(newTestCodec(), repo)
	handler := mw(func(c echo.Context) error {
		called = true
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		e.HTTPErrorHandler(err, c)
	}
	return rec, called
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	account := verifiedAccount()
	raw, err := newTestCodec().Issue(account)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer "+raw)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	called := false
	mw := Auth(newTestCodec(), newStubRepo(account))
	handler := mw(func(c echo.Context) error {
		called = true
		if c.Get("account_id") != "acc-1" {
			t.Fatalf("account_id not set")
		}
		if c.Get("username") != "alice" {
			t.Fatalf("username not set")
		}
		if c.Get("email") != "a@x.com" {
			t.Fatalf("email not set")
		}
		return c.NoContent(http.StatusOK)
	})

	if err := handler(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if !called {
		t.Fatalf("next not called")
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
}

func TestAuthMiddleware_MissingHeader(t *testing.T) {
	rec, called := runAuth(t, newStubRepo(), "")
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without next, got %d (called=%v)", rec.Code, called)
	}
}

func TestAuthMiddleware_InvalidHeaderFormat(t *testing.T) {
	rec, called := runAuth(t, newStubRepo(), "Token abc")
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without next, got %d (called=%v)", rec.Code, called)
	}
}

func TestAuthMiddleware_TamperedToken(t *testing.T) {
	other := token.NewCodec("other-secret", "intonation-app", "intonation-users", time.Hour)
	raw, err := other.Issue(verifiedAccount())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	rec, called := runAuth(t, newStubRepo(verifiedAccount()), "Bearer "+raw)
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without next, got %d (called=%v)", rec.Code, called)
	}
}

func TestAuthMiddleware_DeletedAccount(t *testing.T) {
	raw, err := newTestCodec().Issue(verifiedAccount())
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	// The token itself is still valid; the account behind it is gone.
	rec, called := runAuth(t, newStubRepo(), "Bearer "+raw)
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without next, got %d (called=%v)", rec.Code, called)
	}
}

func TestAuthMiddleware_UnverifiedAccount(t *testing.T) {
	account := verifiedAccount()
	raw, err := newTestCodec().Issue(account)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	account.Verified = false
	rec, called := runAuth(t, newStubRepo(account), "Bearer "+raw)
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without next, got %d (called=%v)", rec.Code, called)
	}
}

func TestAuthMiddleware_UsernameMismatch(t *testing.T) {
	account := verifiedAccount()
	raw, err := newTestCodec().Issue(account)
	if err != nil {
		t.Fatalf("issue token: %v", err)
	}

	// Stored username diverged from the claim after issuance.
	stored := verifiedAccount()
	stored.Username = "renamed"
	rec, called := runAuth(t, newStubRepo(stored), "Bearer "+raw)
	if called || rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401 without next, got %d (called=%v)", rec.Code, called)
	}
}
