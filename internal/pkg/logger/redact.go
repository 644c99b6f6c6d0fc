package logger

import "strings"

// RedactEmail masks the local part of an address, keeping two characters
// when there are more than two: "john.doe@example.com" becomes
// "jo***@example.com". Anything that is not an address becomes "***@***".
func RedactEmail(email string) string {
	local, domain, ok := strings.Cut(email, "@")
	if !ok || strings.Contains(domain, "@") {
		return "***@***"
	}
	if r := []rune(local); len(r) > 2 {
		return string(r[:2]) + "***@" + domain
	}
	return "***@" + domain
}
