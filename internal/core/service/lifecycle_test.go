package service

import (
	"context"
	"testing"
)

// TestAccountLifecycle walks the full register → verify → login → profile
// path against the in-memory repository.
func TestAccountLifecycle(t *testing.T) {
	ctx := context.Background()
	repo := newStubAccountRepo()
	queue := &stubQueue{}
	regSvc := newRegistrationService(repo, queue)
	authSvc := newAuthService(repo)

	account, code, err := regSvc.Register(ctx, "alice", "a@x.com", "secret1")
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	if ok, _ := regSvc.Verify(ctx, "a@x.com", "000000"); ok {
		t.Fatalf("wrong code must not verify")
	}
	if ok, _ := regSvc.Verify(ctx, "a@x.com", code); !ok {
		t.Fatalf("issued code must verify")
	}

	raw, logged, err := authSvc.Login(ctx, "alice", "secret1")
	if err != nil {
		t.Fatalf("login failed: %v", err)
	}
	if logged.ID != account.ID {
		t.Fatalf("login returned a different account")
	}

	claims, err := authSvc.codec.Parse(raw)
	if err != nil {
		t.Fatalf("token does not validate: %v", err)
	}

	profile, err := authSvc.Profile(ctx, claims.AccountID)
	if err != nil {
		t.Fatalf("profile failed: %v", err)
	}
	if profile.Username != "alice" || profile.Email != "a@x.com" {
		t.Fatalf("unexpected profile: %+v", profile)
	}

	// Deleting the account invalidates live sessions on the next
	// repository re-check (exercised by the auth middleware).
	delete(repo.accounts, account.ID)
	if _, err := authSvc.Profile(ctx, claims.AccountID); err == nil {
		t.Fatalf("profile of deleted account must fail")
	}
}
