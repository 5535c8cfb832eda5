package auth

import (
	"testing"
	"time"
)

const testSecret = "segredo-de-teste-com-32-caracteres!!"

func TestAccessTokenRoundTrip(t *testing.T) {
	manager := NewJWTManager(testSecret, time.Minute)

	signed, jti, err := manager.GenerateAccessToken("42", "SUPERVISOR")
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if jti == "" {
		t.Fatal("jti vazio")
	}

	claims, err := manager.ParseAndValidate(signed)
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if claims.Subject != "42" {
		t.Fatalf("subject = %q, esperado 42", claims.Subject)
	}
	if claims.Role != "SUPERVISOR" {
		t.Fatalf("role = %q, esperado SUPERVISOR", claims.Role)
	}
}

func TestParseRejectsWrongSecret(t *testing.T) {
	signer := NewJWTManager(testSecret, time.Minute)
	verifier := NewJWTManager("outro-segredo-igualmente-longo-aqui", time.Minute)

	signed, _, err := signer.GenerateAccessToken("42", "ADMIN")
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	if _, err := verifier.ParseAndValidate(signed); err == nil {
		t.Fatal("assinatura errada deveria falhar")
	}
}

func TestParseRejectsExpired(t *testing.T) {
	manager := NewJWTManager(testSecret, -time.Minute)

	signed, _, err := manager.GenerateAccessToken("42", "ADMIN")
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}

	if _, err := manager.ParseAndValidate(signed); err == nil {
		t.Fatal("token expirado deveria falhar")
	}
}

func TestRefreshTokenHashIsStable(t *testing.T) {
	raw, hashed, err := GenerateRefreshToken()
	if err != nil {
		t.Fatalf("erro inesperado: %v", err)
	}
	if raw == "" || hashed == "" {
		t.Fatal("token ou hash vazios")
	}
	if raw == hashed {
		t.Fatal("hash não deveria ser o valor bruto")
	}
	if HashRefreshToken(raw) != hashed {
		t.Fatal("hash deveria ser determinístico")
	}
}
