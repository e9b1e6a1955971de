package password

import "testing"

func TestHashVerify_RoundTrip(t *testing.T) {
	digest, err := Hash("s3cret-pass")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if digest == "s3cret-pass" {
		t.Fatal("digest must not equal plaintext")
	}
	if !Verify("s3cret-pass", digest) {
		t.Error("expected matching password to verify")
	}
}

func TestVerify_WrongPassword(t *testing.T) {
	digest, err := Hash("s3cret-pass")
	if err != nil {
		t.Fatalf("Hash: %v", err)
	}
	if Verify("wrong-pass", digest) {
		t.Error("expected wrong password to fail verification")
	}
	if Verify("", digest) {
		t.Error("expected empty password to fail verification")
	}
}

func TestHash_SaltedOutputDiffers(t *testing.T) {
	a, err := Hash("same-input")
	if err != nil {
		t.Fatal(err)
	}
	b, err := Hash("same-input")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Error("expected different digests for the same input (salted)")
	}
	if !Verify("same-input", a) || !Verify("same-input", b) {
		t.Error("both digests must still verify")
	}
}

func TestVerify_GarbageDigest(t *testing.T) {
	if Verify("anything", "not-a-bcrypt-digest") {
		t.Error("expected garbage digest to fail verification")
	}
}
