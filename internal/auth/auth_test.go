package auth

import (
	"crypto/rand"
	"crypto/rsa"
	"testing"
)

func testKeys(t *testing.T) *Keys {
	t.Helper()
	privateKey, err := rsa.GenerateKey(rand.Reader, 2048)
	if err != nil {
		t.Fatalf("generating rsa key: %v", err)
	}
	keys, err := NewKeys(privateKey, &privateKey.PublicKey)
	if err != nil {
		t.Fatalf("NewKeys: %v", err)
	}
	return keys
}

func TestTokenRoundTrip(t *testing.T) {
	keys := testKeys(t)

	tokenStr, err := keys.GenerateToken("user-42", []string{RoleUser})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	claims, err := keys.ValidateToken(tokenStr)
	if err != nil {
		t.Fatalf("ValidateToken: %v", err)
	}
	if claims.Subject != "user-42" {
		t.Errorf("subject = %s, want user-42", claims.Subject)
	}
	if claims.Issuer != "treasure-trove" {
		t.Errorf("issuer = %s, want treasure-trove", claims.Issuer)
	}
	if !claims.HasRole(RoleUser) {
		t.Error("claims missing USER role")
	}
	if claims.HasRole(RoleAdmin) {
		t.Error("claims carry ADMIN role that was never granted")
	}
}

func TestValidateTokenWrongKey(t *testing.T) {
	signer := testKeys(t)
	verifier := testKeys(t)

	tokenStr, err := signer.GenerateToken("user-42", []string{RoleUser})
	if err != nil {
		t.Fatalf("GenerateToken: %v", err)
	}

	if _, err := verifier.ValidateToken(tokenStr); err == nil {
		t.Error("token signed by another key pair was accepted")
	}
}

func TestValidateTokenGarbage(t *testing.T) {
	keys := testKeys(t)
	for _, tokenStr := range []string{"", "not-a-token", "a.b.c"} {
		if _, err := keys.ValidateToken(tokenStr); err == nil {
			t.Errorf("ValidateToken(%q) accepted garbage", tokenStr)
		}
	}
}

func TestNewKeysNil(t *testing.T) {
	if _, err := NewKeys(nil, nil); err == nil {
		t.Error("NewKeys accepted nil keys")
	}
}
