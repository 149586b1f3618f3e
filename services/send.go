package services

import (
	"fmt"
	"net/url"
	"strings"
)

// ComposeWhatsAppLink builds a wa.me link that opens a chat with the given
// phone number and a pre-filled message about the quotation. The phone number
// is reduced to digits only; wa.me rejects formatting characters.
func ComposeWhatsAppLink(phone, code, customerName string, total float64, currency string) (string, error) {
	digits := digitsOnly(phone)
	if len(digits) < 7 {
		return "", fmt.Errorf("phone number %q has too few digits", phone)
	}

	message := fmt.Sprintf(
		"Hello %s, please find quotation %s for %s. Let us know if you have any questions.",
		customerName, code, FormatMoney(total, currency),
	)
	if customerName == "" {
		message = fmt.Sprintf(
			"Hello, please find quotation %s for %s. Let us know if you have any questions.",
			code, FormatMoney(total, currency),
		)
	}

	return "https://wa.me/" + digits + "?text=" + url.QueryEscape(message), nil
}

func digitsOnly(s string) string {
	var b strings.Builder
	for _, r := range s {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		}
	}
	return b.String()
}
