package security

import (
	"strings"
	"testing"

	"github.com/medirush/medirush-backend/pkg/config"
)

func otpConfig() config.OTPConfig {
	return config.OTPConfig{
		Digits:           6,
		ArgonMemoryKB:    1024,
		ArgonTime:        1,
		ArgonParallelism: 1,
		ArgonSaltLen:     16,
		ArgonKeyLen:      32,
	}
}

func TestGenerateOTPLengthAndCharset(t *testing.T) {
	code, err := GenerateOTP(6)
	if err != nil {
		t.Fatalf("GenerateOTP returned error: %v", err)
	}
	if len(code) != 6 {
		t.Fatalf("expected 6 digits, got %q", code)
	}
	if strings.Trim(code, "0123456789") != "" {
		t.Fatalf("expected numeric code, got %q", code)
	}
}

func TestGenerateOTPRejectsNonPositive(t *testing.T) {
	if _, err := GenerateOTP(0); err == nil {
		t.Fatal("expected error for zero digits")
	}
}

func TestHashAndVerifyOTP(t *testing.T) {
	cfg := otpConfig()

	encoded, err := HashOTP("482913", cfg)
	if err != nil {
		t.Fatalf("HashOTP returned error: %v", err)
	}
	if !strings.HasPrefix(encoded, "$argon2id$") {
		t.Fatalf("unexpected hash format: %q", encoded)
	}

	ok, err := VerifyOTP("482913", encoded)
	if err != nil {
		t.Fatalf("VerifyOTP returned error: %v", err)
	}
	if !ok {
		t.Fatal("expected matching code to verify")
	}

	ok, err = VerifyOTP("000000", encoded)
	if err != nil {
		t.Fatalf("VerifyOTP returned error: %v", err)
	}
	if ok {
		t.Fatal("expected mismatched code to fail")
	}
}

func TestVerifyOTPMalformedHash(t *testing.T) {
	if _, err := VerifyOTP("123456", "not-a-hash"); err != ErrInvalidHash {
		t.Fatalf("expected ErrInvalidHash, got %v", err)
	}
}

func TestHashOTPUniqueSalts(t *testing.T) {
	cfg := otpConfig()
	first, err := HashOTP("123456", cfg)
	if err != nil {
		t.Fatalf("HashOTP returned error: %v", err)
	}
	second, err := HashOTP("123456", cfg)
	if err != nil {
		t.Fatalf("HashOTP returned error: %v", err)
	}
	if first == second {
		t.Fatal("expected distinct hashes for the same code")
	}
}
