package security

import "strings"

// BearerFromHeader extracts the credential from an Authorization header
// value. Returns false for an empty header, a non-Bearer scheme, or an empty
// credential.
func BearerFromHeader(header string) (string, bool) {
	token, ok := strings.CutPrefix(header, "Bearer ")
	if !ok || token == "" {
		return "", false
	}
	return token, true
}
