package auth

import "strings"

// CredentialKind tells which verification path a raw credential takes.
type CredentialKind int

const (
	CredentialIDToken CredentialKind = iota
	CredentialAccessToken
)

// accessTokenPrefix is how Google OAuth access tokens currently start.
// This is a heuristic tied to Google's token format, not a grammar: if
// Google changes the prefix, access tokens fall through to the ID-token
// path and fail verification there.
const accessTokenPrefix = "ya29."

func (k CredentialKind) String() string {
	switch k {
	case CredentialAccessToken:
		return "access_token"
	default:
		return "id_token"
	}
}

// Classify picks the verification path for raw. It never fails.
func Classify(raw string) CredentialKind {
	if strings.HasPrefix(raw, accessTokenPrefix) {
		return CredentialAccessToken
	}
	return CredentialIDToken
}
