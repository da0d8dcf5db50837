package logger

import (
	"log/slog"
	"net/url"
	"strings"
)

const redactedValue = "***REDACTED***"

// secretWords are key segments that mark an attribute as secret. Keys are
// split on '_', '-' and '.', so "author" or "key_file" are left alone while
// "auth_token" and "api_key" are not.
var secretWords = map[string]bool{
	"password":    true,
	"passwd":      true,
	"secret":      true,
	"token":       true,
	"credential":  true,
	"credentials": true,
	"bearer":      true,
	"apikey":      true,
}

// redactAttr masks string attributes that are secret by name or that
// embed credentials in a URL.
func redactAttr(a slog.Attr) slog.Attr {
	if a.Value.Kind() != slog.KindString {
		return a
	}
	v := a.Value.String()
	if v == "" {
		return a
	}
	if IsSensitiveKey(a.Key) {
		return slog.String(a.Key, redactedValue)
	}
	if masked, ok := maskURLCredentials(v); ok {
		return slog.String(a.Key, masked)
	}
	return a
}

// maskURLCredentials hides the secret part of a URL's userinfo. ok is false
// when value carries no credentials.
func maskURLCredentials(value string) (string, bool) {
	if !strings.Contains(value, "://") || !strings.Contains(value, "@") {
		return value, false
	}
	u, err := url.Parse(value)
	if err != nil || u.User == nil {
		return value, false
	}

	// https://token@host/repo keeps nothing; https://user:pw@host/repo keeps
	// the user. Built by hand since url.Userinfo escapes the marker.
	userinfo := redactedValue
	if _, ok := u.User.Password(); ok {
		userinfo = url.User(u.User.Username()).String() + ":" + redactedValue
	}
	u.User = nil
	return u.Scheme + "://" + userinfo + "@" + strings.TrimPrefix(u.String(), u.Scheme+"://"), true
}

// RedactString masks credentials embedded in a git remote URL. Other values
// are returned unchanged.
func RedactString(value string) string {
	masked, _ := maskURLCredentials(value)
	return masked
}

// IsSensitiveKey reports whether an attribute key names a secret.
func IsSensitiveKey(key string) bool {
	parts := strings.FieldsFunc(strings.ToLower(key), func(r rune) bool {
		return r == '_' || r == '-' || r == '.'
	})
	for i, p := range parts {
		if secretWords[p] {
			return true
		}
		if p == "key" && i > 0 && (parts[i-1] == "api" || parts[i-1] == "private") {
			return true
		}
	}
	return false
}
