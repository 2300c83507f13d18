package app

import (
	"testing"

	"github.com/form3tech-oss/jwt-go"
)

func TestReceiptServiceGenerateAndVerify(t *testing.T) {
	secret := "test-secret"
	issuer := "numclash"
	user := "user123"
	match := "match-456"

	svc := NewReceiptService(secret, issuer)
	tokenString, err := svc.GenerateReceipt(user, match, true, 95)
	if err != nil {
		t.Fatalf("generate receipt error: %v", err)
	}

	claims, err := svc.VerifyReceipt(tokenString)
	if err != nil {
		t.Fatalf("verify receipt error: %v", err)
	}

	if got := stringClaim(t, claims, "sub"); got != user {
		t.Fatalf("sub = %s, want %s", got, user)
	}
	if got := stringClaim(t, claims, "mid"); got != match {
		t.Fatalf("mid = %s, want %s", got, match)
	}
	if got := stringClaim(t, claims, "iss"); got != issuer {
		t.Fatalf("iss = %s, want %s", got, issuer)
	}
	if won, _ := claims["won"].(bool); !won {
		t.Fatalf("won claim = %v, want true", claims["won"])
	}
	// Numeric claims round-trip as float64 through JSON.
	if net, _ := claims["net"].(float64); net != 95 {
		t.Fatalf("net claim = %v, want 95", claims["net"])
	}
}

func TestReceiptServiceRejectsTamperedSignature(t *testing.T) {
	svc := NewReceiptService("secret-a", "numclash")
	tokenString, err := svc.GenerateReceipt("user", "match", false, -100)
	if err != nil {
		t.Fatalf("generate receipt error: %v", err)
	}

	other := NewReceiptService("secret-b", "numclash")
	if _, err := other.VerifyReceipt(tokenString); err == nil {
		t.Fatal("expected verification failure with a different secret")
	}
}

func TestReceiptServiceRejectsForeignIssuer(t *testing.T) {
	secret := "shared-secret"
	foreign := NewReceiptService(secret, "someone-else")
	tokenString, err := foreign.GenerateReceipt("user", "match", true, 10)
	if err != nil {
		t.Fatalf("generate receipt error: %v", err)
	}

	svc := NewReceiptService(secret, "numclash")
	if _, err := svc.VerifyReceipt(tokenString); err == nil {
		t.Fatal("expected verification failure for a foreign issuer")
	}
}

func TestReceiptServiceGenerateRequiresConfig(t *testing.T) {
	svc := NewReceiptService("", "numclash")
	if _, err := svc.GenerateReceipt("user", "match", true, 0); err == nil {
		t.Fatal("expected error for missing receipt config")
	}
}

func TestReceiptServiceGenerateRequiresIdentifiers(t *testing.T) {
	svc := NewReceiptService("secret", "numclash")
	if _, err := svc.GenerateReceipt("", "match", true, 0); err == nil {
		t.Fatal("expected error for empty user id")
	}
	if _, err := svc.GenerateReceipt("user", "", true, 0); err == nil {
		t.Fatal("expected error for empty match id")
	}
}

func stringClaim(t *testing.T, claims jwt.MapClaims, name string) string {
	t.Helper()
	value, ok := claims[name]
	if !ok {
		t.Fatalf("missing %s claim", name)
	}
	str, ok := value.(string)
	if !ok {
		t.Fatalf("%s claim is not a string", name)
	}
	return str
}
