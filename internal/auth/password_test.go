package auth

import "testing"

func TestHashPassword_VerifyRoundTrip(t *testing.T) {
	hash, err := HashPassword("hunter22")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	if hash == "hunter22" {
		t.Error("Hash should not equal the plaintext")
	}
	if !CheckPassword("hunter22", hash) {
		t.Error("CheckPassword should accept the original password")
	}
	if CheckPassword("hunter23", hash) {
		t.Error("CheckPassword should reject a wrong password")
	}
}

func TestHashPassword_Salted(t *testing.T) {
	hash1, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}
	hash2, err := HashPassword("same-password")
	if err != nil {
		t.Fatalf("HashPassword() error = %v", err)
	}

	// bcrypt salts internally, so equal inputs must hash differently
	if hash1 == hash2 {
		t.Error("Two hashes of the same password should differ")
	}
}

func TestCheckPassword_MalformedHash(t *testing.T) {
	if CheckPassword("anything", "not-a-bcrypt-hash") {
		t.Error("CheckPassword should reject a malformed stored hash")
	}
	if CheckPassword("anything", "") {
		t.Error("CheckPassword should reject an empty stored hash")
	}
}
