package util

import (
	"encoding/base64"
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

var base64Encodings = []*base64.Encoding{
	base64.StdEncoding,
	base64.RawStdEncoding,
	base64.URLEncoding,
	base64.RawURLEncoding,
}

// DecodeBase64MaybeDataURL decodes a base64 payload in any of the standard
// or URL-safe alphabets, padded or not, ignoring embedded whitespace. For a
// data: URI it also returns the lower-cased MIME type from the prefix.
func DecodeBase64MaybeDataURL(s string) ([]byte, string, error) {
	payload, hint := splitDataURL(strings.TrimSpace(s))
	payload = strings.Join(strings.Fields(payload), "")
	var firstErr error
	for _, enc := range base64Encodings {
		b, err := enc.DecodeString(payload)
		if err == nil {
			return b, hint, nil
		}
		if firstErr == nil {
			firstErr = err
		}
	}
	return nil, "", firstErr
}

// splitDataURL separates data:<mime>[;params],<payload>. Anything else is
// returned unchanged with an empty hint.
func splitDataURL(s string) (payload, mime string) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return s, ""
	}
	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return s, ""
	}
	return payload, BaseMIME(meta)
}

// PickMIME prefers the explicit type, then the data: URI hint, then sniffs the bytes.
func PickMIME(explicit, hint string, data []byte) string {
	if exp := strings.TrimSpace(explicit); exp != "" {
		return exp
	}
	if h := strings.TrimSpace(hint); h != "" {
		return h
	}
	if len(data) > 0 {
		return mimetype.Detect(data).String()
	}
	return "application/octet-stream"
}

// BaseMIME strips parameters such as "; charset=utf-8".
func BaseMIME(m string) string {
	if i := strings.IndexByte(m, ';'); i >= 0 {
		m = m[:i]
	}
	return strings.ToLower(strings.TrimSpace(m))
}
