package util

import (
	"encoding/base64"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStripCodeFences(t *testing.T) {
	assert.Equal(t, `{"a":1}`, StripCodeFences("```json\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences("  {\"a\":1} "))
	assert.Equal(t, "x", StripCodeFences("```x```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences("```JSON\n{\"a\":1}\n```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences("```json5 \n{\"a\":1}```"))
	assert.Equal(t, `{"a":1}`, StripCodeFences("```json{\"a\":1}```"))
	assert.Equal(t, "{\"a\":1}\n{\"b\":2}", StripCodeFences("```\n{\"a\":1}\n{\"b\":2}\n```"))
	assert.Equal(t, "[1,\n2]", StripCodeFences("```[1,\n2]\n```"))
}

func TestClampRunes(t *testing.T) {
	assert.Equal(t, "héllo", ClampRunes("héllo", 5))
	assert.Equal(t, "hé…", ClampRunes("héllo", 2))
}

func TestDecodeBase64MaybeDataURL(t *testing.T) {
	raw := []byte("%PDF-1.4 report")
	enc := base64.StdEncoding.EncodeToString(raw)

	b, mime, err := DecodeBase64MaybeDataURL("data:application/pdf;base64," + enc)
	require.NoError(t, err)
	assert.Equal(t, raw, b)
	assert.Equal(t, "application/pdf", mime)

	b, mime, err = DecodeBase64MaybeDataURL(enc)
	require.NoError(t, err)
	assert.Equal(t, raw, b)
	assert.Empty(t, mime)

	_, _, err = DecodeBase64MaybeDataURL("%%%not base64")
	assert.Error(t, err)
}

func TestDecodeBase64MaybeDataURL_Variants(t *testing.T) {
	raw := []byte{0xfb, 0xff, 0xfe, 'h', 'i'}

	tests := []struct {
		name string
		in   string
		mime string
	}{
		{"unpadded", base64.RawStdEncoding.EncodeToString(raw), ""},
		{"url safe", base64.URLEncoding.EncodeToString(raw), ""},
		{"url safe unpadded", base64.RawURLEncoding.EncodeToString(raw), ""},
		{"wrapped lines", "+//+\naGk=\n", ""},
		{"upper-case data uri", "data:Image/PNG;base64," + base64.StdEncoding.EncodeToString(raw), "image/png"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b, mime, err := DecodeBase64MaybeDataURL(tt.in)
			require.NoError(t, err)
			assert.Equal(t, raw, b)
			assert.Equal(t, tt.mime, mime)
		})
	}
}

func TestPickMIME(t *testing.T) {
	png := []byte{0x89, 'P', 'N', 'G', 0x0D, 0x0A, 0x1A, 0x0A, 0, 0, 0, 0}
	assert.Equal(t, "image/jpeg", PickMIME("image/jpeg", "image/png", png))
	assert.Equal(t, "image/png", PickMIME("", "image/png", nil))
	assert.Equal(t, "image/png", PickMIME("", "", png))
	assert.Equal(t, "application/pdf", PickMIME("", "", []byte("%PDF-1.7\n")))
	assert.Equal(t, "application/octet-stream", PickMIME("", "", nil))
}

func TestBaseMIME(t *testing.T) {
	assert.Equal(t, "text/plain", BaseMIME("Text/Plain; charset=utf-8"))
}
