package helpers

import "testing"

func TestHashPassword_VerifiesAndNeverStoresPlaintext(t *testing.T) {
	t.Parallel()

	hash, err := HashPassword("testPassword")
	if err != nil {
		t.Fatalf("HashPassword error: %v", err)
	}
	if hash == "testPassword" {
		t.Fatal("hash equals the plaintext")
	}
	if !CompareHashAndPassword(hash, "testPassword") {
		t.Fatal("hash does not verify against the original plaintext")
	}
	if CompareHashAndPassword(hash, "wrongPassword") {
		t.Fatal("hash verified against a wrong password")
	}
}
