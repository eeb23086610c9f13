package service

import (
	"context"
	"strconv"
	"testing"

	"github.com/rs/zerolog"

	"github.com/mikleaka/intonation-identity/internal/core/domain"
	"github.com/mikleaka/intonation-identity/internal/core/ports"
	"github.com/mikleaka/intonation-identity/internal/pkg/password"
)

type stubAccountRepo struct {
	accounts map[string]*domain.Account // keyed by id
}

func newStubAccountRepo() *stubAccountRepo {
	return &stubAccountRepo{accounts: make(map[string]*domain.Account)}
}

func cloneAccount(a *domain.Account) *domain.Account {
	if a == nil {
		return nil
	}
	clone := *a
	return &clone
}

func (r *stubAccountRepo) FindByUsernameOrEmail(_ context.Context, username, email string) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.Username == username || a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByEmail(_ context.Context, email string) (*domain.Account, error) {
	for _, a := range r.accounts {
		if a.Email == email {
			return cloneAccount(a), nil
		}
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) FindByID(_ context.Context, id string) (*domain.Account, error) {
	if a, ok := r.accounts[id]; ok {
		return cloneAccount(a), nil
	}
	return nil, domain.ErrAccountNotFound
}

func (r *stubAccountRepo) UpsertPending(_ context.Context, account *domain.Account) (*domain.Account, error) {
	if existing, ok := r.accounts[account.ID]; ok {
		existing.PasswordHash = account.PasswordHash
		existing.VerificationCode = account.VerificationCode
		existing.Verified = false
		return cloneAccount(existing), nil
	}
	for _, a := range r.accounts {
		if a.Username == account.Username || a.Email == account.Email {
			return nil, domain.ErrAccountExists
		}
	}
	r.accounts[account.ID] = cloneAccount(account)
	return cloneAccount(account), nil
}

func (r *stubAccountRepo) MarkVerified(_ context.Context, email, code string) (bool, error) {
	for _, a := range r.accounts {
		if a.Email == email && a.VerificationCode != "" && a.VerificationCode == code {
			a.Verified = true
			a.VerificationCode = ""
			return true, nil
		}
	}
	return false, nil
}

func (r *stubAccountRepo) UpdatePasswordHash(_ context.Context, id, hash string) error {
	a, ok := r.accounts[id]
	if !ok {
		return domain.ErrAccountNotFound
	}
	a.PasswordHash = hash
	return nil
}

type stubQueue struct {
	deliveries []ports.Delivery
}

func (q *stubQueue) Enqueue(d ports.Delivery) {
	q.deliveries = append(q.deliveries, d)
}

func newRegistrationService(repo *stubAccountRepo, queue *stubQueue) *RegistrationService {
	return NewRegistrationService(repo, password.NewHasher(), queue, zerolog.Nop())
}

func TestRegistrationService_Register_Success(t *testing.T) {
	repo := newStubAccountRepo()
	queue := &stubQueue{}
	svc := newRegistrationService(repo, queue)

	account, code, err := svc.Register(context.Background(), "alice", "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("register returned error: %v", err)
	}
	if account.ID == "" {
		t.Fatalf("expected generated account id")
	}
	if account.Verified {
		t.Fatalf("new account must not be verified")
	}
	if account.PasswordHash == "secret1" {
		t.Fatalf("expected password to be hashed")
	}

	n, convErr := strconv.Atoi(code)
	if convErr != nil || len(code) != 6 || n < 100000 || n > 999999 {
		t.Fatalf("expected 6-digit code in 100000..999999, got %q", code)
	}

	if len(queue.deliveries) != 1 {
		t.Fatalf("expected one delivery, got %d", len(queue.deliveries))
	}
	if d := queue.deliveries[0]; d.Email != "a@x.com" || d.Code != code {
		t.Fatalf("unexpected delivery: %+v", d)
	}
}

func TestRegistrationService_Register_Validation(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newRegistrationService(repo, &stubQueue{})

	cases := []struct {
		name     string
		username string
		email    string
		password string
	}{
		{"short username", "al", "a@x.com", "secret1"},
		{"long username", "aaaaaaaaaaaaaaaaaaaaaaaaaa", "a@x.com", "secret1"},
		{"short password", "alice", "a@x.com", "12345"},
		{"empty email", "alice", "", "secret1"},
	}
	for _, tc := range cases {
		if _, _, err := svc.Register(context.Background(), tc.username, tc.email, tc.password); err != domain.ErrInvalidInput {
			t.Fatalf("%s: expected ErrInvalidInput, got %v", tc.name, err)
		}
	}
	if len(repo.accounts) != 0 {
		t.Fatalf("validation failures must not touch storage")
	}
}

func TestRegistrationService_Register_OverwritesPending(t *testing.T) {
	repo := newStubAccountRepo()
	queue := &stubQueue{}
	svc := newRegistrationService(repo, queue)

	first, firstCode, err := svc.Register(context.Background(), "alice", "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("first register failed: %v", err)
	}

	second, secondCode, err := svc.Register(context.Background(), "alice", "a@x.com", "changed1")
	if err != nil {
		t.Fatalf("second register failed: %v", err)
	}

	if second.ID != first.ID {
		t.Fatalf("expected pending account to be overwritten in place, got new id")
	}
	if len(repo.accounts) != 1 {
		t.Fatalf("expected one stored account, got %d", len(repo.accounts))
	}
	if firstCode == secondCode {
		t.Fatalf("expected a fresh verification code on re-registration")
	}

	// The first code was invalidated by the overwrite.
	if ok, _ := svc.Verify(context.Background(), "a@x.com", firstCode); ok {
		t.Fatalf("stale code must not verify")
	}
	if ok, _ := svc.Verify(context.Background(), "a@x.com", secondCode); !ok {
		t.Fatalf("current code must verify")
	}
}

func TestRegistrationService_Register_VerifiedConflict(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newRegistrationService(repo, &stubQueue{})

	_, code, err := svc.Register(context.Background(), "alice", "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if ok, _ := svc.Verify(context.Background(), "a@x.com", code); !ok {
		t.Fatalf("verify failed")
	}

	if _, _, err := svc.Register(context.Background(), "alice", "other@x.com", "secret1"); err != domain.ErrAccountExists {
		t.Fatalf("expected ErrAccountExists for taken username, got %v", err)
	}
	if _, _, err := svc.Register(context.Background(), "someone", "a@x.com", "secret1"); err != domain.ErrAccountExists {
		t.Fatalf("expected ErrAccountExists for taken email, got %v", err)
	}
}

func TestRegistrationService_Verify_SingleUse(t *testing.T) {
	repo := newStubAccountRepo()
	svc := newRegistrationService(repo, &stubQueue{})

	_, code, err := svc.Register(context.Background(), "alice", "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if ok, _ := svc.Verify(context.Background(), "a@x.com", "000000"); ok {
		t.Fatalf("wrong code must not verify")
	}
	if ok, _ := svc.Verify(context.Background(), "a@x.com", code); !ok {
		t.Fatalf("correct code must verify")
	}
	if ok, _ := svc.Verify(context.Background(), "a@x.com", code); ok {
		t.Fatalf("code must be single-use")
	}
}

func TestGenerateCode_Range(t *testing.T) {
	for i := 0; i < 100; i++ {
		code, err := generateCode()
		if err != nil {
			t.Fatalf("generateCode failed: %v", err)
		}
		n, err := strconv.Atoi(code)
		if err != nil || len(code) != 6 || n < 100000 || n > 999999 {
			t.Fatalf("code out of range: %q", code)
		}
	}
}
