package services

import (
	"net/url"
	"strings"
	"testing"
)

func TestComposeWhatsAppLink(t *testing.T) {
	link, err := ComposeWhatsAppLink("+243 812-345-678", "ALM-Q9-014-2026", "Acme Corp", 24.79, "USD")
	if err != nil {
		t.Fatalf("ComposeWhatsAppLink returned error: %v", err)
	}

	if !strings.HasPrefix(link, "https://wa.me/243812345678?text=") {
		t.Errorf("link = %q, want wa.me with digits-only phone", link)
	}

	u, err := url.Parse(link)
	if err != nil {
		t.Fatalf("link does not parse: %v", err)
	}
	text := u.Query().Get("text")
	if !strings.Contains(text, "ALM-Q9-014-2026") {
		t.Errorf("message missing quotation code: %q", text)
	}
	if !strings.Contains(text, "Acme Corp") {
		t.Errorf("message missing customer name: %q", text)
	}
	if !strings.Contains(text, "$24.79") {
		t.Errorf("message missing formatted total: %q", text)
	}
}

func TestComposeWhatsAppLink_NoCustomerName(t *testing.T) {
	link, err := ComposeWhatsAppLink("243812345678", "ALM-Q9-001-2026", "", 100, "USD")
	if err != nil {
		t.Fatalf("ComposeWhatsAppLink returned error: %v", err)
	}

	u, _ := url.Parse(link)
	text := u.Query().Get("text")
	if strings.Contains(text, "Hello ,") {
		t.Errorf("empty customer name left a dangling greeting: %q", text)
	}
}

func TestComposeWhatsAppLink_RejectsShortNumbers(t *testing.T) {
	tests := []string{"", "123", "+1-2-3", "abc"}
	for _, phone := range tests {
		if _, err := ComposeWhatsAppLink(phone, "ALM-Q9-001-2026", "Acme", 10, "USD"); err == nil {
			t.Errorf("ComposeWhatsAppLink(%q) accepted an unusable phone number", phone)
		}
	}
}

func TestDigitsOnly(t *testing.T) {
	tests := []struct {
		in     string
		expect string
	}{
		{"+243 812 345 678", "243812345678"},
		{"(081) 234-5678", "0812345678"},
		{"no digits", ""},
	}
	for _, tt := range tests {
		if got := digitsOnly(tt.in); got != tt.expect {
			t.Errorf("digitsOnly(%q) = %q, want %q", tt.in, got, tt.expect)
		}
	}
}
