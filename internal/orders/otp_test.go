package orders

import "testing"

func TestPrehashPIN(t *testing.T) {
	// SHA-256("123456"), lowercase hex.
	want := "8d969eef6ecad3c29a3a629280e686cf0c3f5d5a86aff3ca12020c923adc6c92"
	got := PrehashPIN("123456")
	if got != want {
		t.Errorf("PrehashPIN(\"123456\") = %s, want %s", got, want)
	}
	if got != PrehashPIN("123456") {
		t.Error("PrehashPIN is not deterministic")
	}
	if len(got) != digestHexLength {
		t.Errorf("digest length = %d, want %d", len(got), digestHexLength)
	}
}

func TestHashDigestRoundTrip(t *testing.T) {
	digest := PrehashPIN("654321")

	hash, err := HashDigest(digest)
	if err != nil {
		t.Fatalf("HashDigest: %v", err)
	}
	if hash == digest {
		t.Error("stored hash must not equal the digest")
	}

	if !CompareDigest(hash, digest) {
		t.Error("CompareDigest rejected the matching digest")
	}
	if CompareDigest(hash, PrehashPIN("654320")) {
		t.Error("CompareDigest accepted a digest of a different pin")
	}
	// The raw pin itself never matches: only its digest does.
	if CompareDigest(hash, "654321") {
		t.Error("CompareDigest accepted the raw pin")
	}
}

func TestValidPIN(t *testing.T) {
	tests := []struct {
		pin  string
		want bool
	}{
		{"123456", true},
		{"000000", true},
		{"12345", false},
		{"1234567", false},
		{"12345a", false},
		{"12 456", false},
		{"", false},
	}
	for _, tc := range tests {
		if got := ValidPIN(tc.pin); got != tc.want {
			t.Errorf("ValidPIN(%q) = %v, want %v", tc.pin, got, tc.want)
		}
	}
}

func TestValidDigest(t *testing.T) {
	good := PrehashPIN("123456")
	tests := []struct {
		name   string
		digest string
		want   bool
	}{
		{"real digest", good, true},
		{"too short", good[:63], false},
		{"too long", good + "0", false},
		{"uppercase hex", "8D969EEF6ECAD3C29A3A629280E686CF0C3F5D5A86AFF3CA12020C923ADC6C92", false},
		{"non hex rune", good[:63] + "g", false},
		{"empty", "", false},
	}
	for _, tc := range tests {
		if got := ValidDigest(tc.digest); got != tc.want {
			t.Errorf("%s: ValidDigest = %v, want %v", tc.name, got, tc.want)
		}
	}
}
