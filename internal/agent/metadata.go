package agent

import (
	"encoding/json"

	"voicebank-server/internal/clients/banking"
	"voicebank-server/internal/lang"
)

// Metadata is the JSON blob a client sends when opening a session. The
// access token is forwarded to the banking API on every call and is never
// persisted.
type Metadata struct {
	AccessToken string `json:"access_token"`
	Language    string `json:"language"`
}

// ParseMetadata extracts session auth and language from raw client metadata.
// The fallback language applies when metadata is empty, malformed, or names
// no language; an explicit unsupported code still resolves to English.
// Malformed metadata yields an unauthenticated session rather than an
// error; the banking API rejects unauthenticated calls itself.
func ParseMetadata(raw string, fallback lang.Language) (banking.SessionAuth, lang.Language) {
	if raw == "" {
		return banking.SessionAuth{}, fallback
	}
	var m Metadata
	if err := json.Unmarshal([]byte(raw), &m); err != nil {
		return banking.SessionAuth{}, fallback
	}
	if m.Language == "" {
		return banking.SessionAuth{AccessToken: m.AccessToken}, fallback
	}
	return banking.SessionAuth{AccessToken: m.AccessToken}, lang.Parse(m.Language)
}
