package signature

import "testing"

func TestVerify_ValidSignature(t *testing.T) {
	body := []byte(`{"message_id":"m1","from":"+919876543210","to":"+14155550100","ts":"2025-01-15T10:00:00Z","text":"Hello"}`)
	// echo -n '<body>' | openssl dgst -sha256 -hmac 'testsecret'
	sig := "ff1016e524bc9299d18988ecf27a880af9428140e3850af0c73ea1eef091a4cb"
	if !Verify("testsecret", body, sig) {
		t.Error("Verify returns false for a valid signature")
	}
}

func TestVerify_InvalidSignature(t *testing.T) {
	body := []byte(`{"message_id":"m1"}`)
	sig := "0000000000000000000000000000000000000000000000000000000000000000"
	if Verify("testsecret", body, sig) {
		t.Error("Verify returns true for an invalid signature")
	}
}

func TestVerify_MissingSignature(t *testing.T) {
	if Verify("testsecret", []byte(`{}`), "") {
		t.Error("Verify returns true for a missing signature")
	}
}

func TestVerify_EmptySecret(t *testing.T) {
	body := []byte("hello world")
	sig := "d9b5f3e840587b0ea010e1b4c77ed7a8a3bae99ef7bb153ddb7ab31075b8ca80"
	if Verify("", body, sig) {
		t.Error("Verify returns true with an unconfigured secret")
	}
}

func TestVerify_RoundTripsWithCompute(t *testing.T) {
	body := []byte("hello world")
	got := Compute("s3cr3t", body)
	want := "d9b5f3e840587b0ea010e1b4c77ed7a8a3bae99ef7bb153ddb7ab31075b8ca80"
	if got != want {
		t.Fatalf("Compute = %s, want %s", got, want)
	}
	if !Verify("s3cr3t", body, got) {
		t.Error("Verify rejects its own computed signature")
	}
}

func TestVerify_BodyMutationInvalidates(t *testing.T) {
	body := []byte(`{"a":1}`)
	sig := Compute("k", body)
	if !Verify("k", body, sig) {
		t.Fatal("baseline verify failed")
	}
	if Verify("k", []byte(`{"a":2}`), sig) {
		t.Error("Verify accepts a signature computed over different bytes")
	}
}
