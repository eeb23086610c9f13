package password

import "testing"

func TestHasher_RoundTrip(t *testing.T) {
	h := NewHasher()

	digest, err := h.Hash("secret1")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if digest == "secret1" {
		t.Fatalf("digest equals plaintext")
	}
	if !h.Verify("secret1", digest) {
		t.Fatalf("expected digest to verify")
	}
	if h.Verify("secret2", digest) {
		t.Fatalf("wrong password verified")
	}
}

func TestHasher_SaltPerCall(t *testing.T) {
	h := NewHasher()

	a, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	b, err := h.Hash("same-password")
	if err != nil {
		t.Fatalf("hash failed: %v", err)
	}
	if a == b {
		t.Fatalf("two hashes of the same password are equal")
	}
}

func TestHasher_MalformedDigest(t *testing.T) {
	h := NewHasher()

	for _, digest := range []string{"", "not-a-bcrypt-digest", "$2a$garbage"} {
		if h.Verify("secret1", digest) {
			t.Fatalf("malformed digest %q verified", digest)
		}
	}
}
