package pipeline

import (
	"errors"
	"fmt"
	"net/url"
	"strings"
)

// ErrInvalidURL is returned when an input cannot be parsed into a
// scheme and host. Malformed URLs are rejected outright; everything
// downstream assumes canonical identity.
var ErrInvalidURL = errors.New("invalid URL")

// Canonicalize normalizes a raw link into its canonical identity: the
// scheme defaults to https, the trailing slash of the path is stripped,
// and characters outside the safe set are percent-encoded. The result
// is the Link primary key used everywhere downstream.
//
// Canonicalize is idempotent: feeding its own output back returns the
// same string. Existing percent-escapes are preserved, not re-encoded.
func Canonicalize(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return "", fmt.Errorf("%w: empty input", ErrInvalidURL)
	}

	if !strings.HasPrefix(raw, "http://") && !strings.HasPrefix(raw, "https://") {
		raw = "https://" + raw
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidURL, err)
	}
	if parsed.Scheme == "" || parsed.Host == "" {
		return "", fmt.Errorf("%w: missing scheme or host in %q", ErrInvalidURL, raw)
	}

	path := strings.TrimSuffix(parsed.EscapedPath(), "/")

	canonical := parsed.Scheme + "://" + parsed.Host + path
	if parsed.RawQuery != "" {
		canonical += "?" + parsed.RawQuery
	}

	return quoteURL(canonical), nil
}

// quoteURL percent-encodes every byte outside the safe set. Letters,
// digits, the unreserved marks and ":/?=&" pass through unescaped, and
// well-formed %XX escapes are kept intact so the function can be
// applied repeatedly without double-encoding.
func quoteURL(s string) string {
	var b strings.Builder
	b.Grow(len(s))

	for i := 0; i < len(s); i++ {
		c := s[i]
		switch {
		case c == '%' && i+2 < len(s) && isHex(s[i+1]) && isHex(s[i+2]):
			b.WriteByte(c)
		case isSafeByte(c):
			b.WriteByte(c)
		default:
			fmt.Fprintf(&b, "%%%02X", c)
		}
	}

	return b.String()
}

func isSafeByte(c byte) bool {
	switch {
	case c >= 'a' && c <= 'z', c >= 'A' && c <= 'Z', c >= '0' && c <= '9':
		return true
	}
	switch c {
	case '-', '.', '_', '~', ':', '/', '?', '=', '&':
		return true
	}
	return false
}

func isHex(c byte) bool {
	return (c >= '0' && c <= '9') || (c >= 'a' && c <= 'f') || (c >= 'A' && c <= 'F')
}
