package auth

import (
	"testing"

	"pgregory.net/rapid"
)

// TestPassword_HashVerify_Roundtrip tests that hashed passwords can be verified.
// Uses FakeInsecureHasher to test the PasswordHasher interface contract without Argon2 overhead.
func TestPassword_HashVerify_Roundtrip(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		var hasher PasswordHasher = FakeInsecureHasher{}
		password := rapid.StringN(8, 100, 200).Draw(t, "password")

		hash, err := hasher.HashPassword(password)
		if err != nil {
			t.Fatalf("HashPassword failed: %v", err)
		}

		if !hasher.VerifyPassword(password, hash) {
			t.Fatalf("VerifyPassword failed for password %q", password)
		}
	})
}

// TestPassword_WrongPassword_FailsVerify tests that wrong passwords don't verify.
func TestPassword_WrongPassword_FailsVerify(t *testing.T) {
	t.Parallel()
	rapid.Check(t, func(t *rapid.T) {
		var hasher PasswordHasher = FakeInsecureHasher{}
		password1 := rapid.StringN(8, 50, 100).Draw(t, "password1")
		password2 := rapid.StringN(8, 50, 100).Filter(func(s string) bool {
			return s != password1
		}).Draw(t, "password2")

		hash, err := hasher.HashPassword(password1)
		if err != nil {
			t.Fatalf("HashPassword failed: %v", err)
		}

		if hasher.VerifyPassword(password2, hash) {
			t.Fatalf("VerifyPassword should fail for wrong password")
		}
	})
}

// TestArgon2_HashVerify exercises the real hasher once. Kept small because
// Argon2id is deliberately slow.
func TestArgon2_HashVerify(t *testing.T) {
	t.Parallel()
	var hasher PasswordHasher = Argon2Hasher{}

	hash, err := hasher.HashPassword("correct horse battery staple")
	if err != nil {
		t.Fatalf("HashPassword failed: %v", err)
	}
	if !hasher.VerifyPassword("correct horse battery staple", hash) {
		t.Fatalf("VerifyPassword failed for correct password")
	}
	if hasher.VerifyPassword("wrong password", hash) {
		t.Fatalf("VerifyPassword should fail for wrong password")
	}
}

func TestVerifyPassword_MalformedHash(t *testing.T) {
	t.Parallel()
	for _, hash := range []string{
		"",
		"not-a-hash",
		"$argon2id$v=19$m=19456,t=2,p=1$salt-only",
		"$bcrypt$v=19$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=18$m=19456,t=2,p=1$c2FsdA$aGFzaA",
		"$argon2id$v=19$bogus$c2FsdA$aGFzaA",
		"$argon2id$v=19$m=19456,t=2,p=1$!!!$aGFzaA",
	} {
		if VerifyPassword("anything", hash) {
			t.Fatalf("VerifyPassword should reject malformed hash %q", hash)
		}
	}
}

func TestValidatePasswordStrength(t *testing.T) {
	t.Parallel()
	if err := ValidatePasswordStrength("short"); err == nil {
		t.Fatalf("expected error for short password")
	}
	if err := ValidatePasswordStrength("longenough"); err != nil {
		t.Fatalf("unexpected error for valid password: %v", err)
	}
}
