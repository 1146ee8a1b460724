package gemini

import (
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/generative-ai-go/genai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medassist/api/internal/assist"
)

func TestKeys_FallBackToShared(t *testing.T) {
	k := Keys{Shared: "shared", Report: "rep", Maps: " "}
	assert.Equal(t, "rep", k.For(assist.OpReport))
	assert.Equal(t, "shared", k.For(assist.OpHospitals))
	assert.Equal(t, "shared", k.For(assist.OpSymptoms))
	assert.Equal(t, "shared", k.For(assist.OpTips))
}

func TestSchemaOf_Report(t *testing.T) {
	s := SchemaOf(assist.ReportContract)

	assert.Equal(t, genai.TypeObject, s.Type)
	assert.Equal(t, []string{"summary", "predictions", "healthScore", "recommendations"}, s.Required)
	assert.Equal(t, genai.TypeInteger, s.Properties["healthScore"].Type)

	preds := s.Properties["predictions"]
	require.Equal(t, genai.TypeArray, preds.Type)
	require.NotNil(t, preds.Items)
	assert.Equal(t, genai.TypeObject, preds.Items.Type)
	assert.Equal(t, genai.TypeNumber, preds.Items.Properties["probability"].Type)
	assert.ElementsMatch(t, []string{"disease", "probability"}, preds.Items.Required)

	recs := s.Properties["recommendations"]
	assert.Equal(t, genai.TypeString, recs.Items.Type)
}

func TestGrounded_ParsesPlaces(t *testing.T) {
	var got restRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/models/maps-model:generateContent", r.URL.Path)
		assert.Equal(t, "maps-key", r.Header.Get("x-goog-api-key"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"parts":[{"text":"Two hospitals "},{"text":"nearby."}]},
			"groundingMetadata":{"groundingChunks":[
				{"maps":{"uri":"https://maps.google.com/?cid=1","title":"City General"}},
				{"maps":{"uri":"https://maps.google.com/?cid=1","title":"City General"}},
				{"web":{"uri":"https://stmarys.example","title":"St Mary's"}},
				{}
			]}}]}`))
	}))
	defer srv.Close()

	e := New(Keys{Shared: "shared", Maps: "maps-key"}).WithBaseURL(srv.URL)
	resp, err := e.Generate(context.Background(), assist.GenerateRequest{
		Op: assist.OpHospitals, Model: "maps-model", Text: "hospitals", Grounded: true,
		Geo: &assist.Geo{Lat: 10, Lng: 20},
	})
	require.NoError(t, err)
	assert.Equal(t, "Two hospitals nearby.", resp.Text)
	assert.Equal(t, []assist.Place{
		{Name: "City General", URI: "https://maps.google.com/?cid=1"},
		{Name: "St Mary's", URI: "https://stmarys.example"},
	}, resp.Places)

	require.Len(t, got.Tools, 1)
	assert.Contains(t, got.Tools[0], "googleMaps")
	assert.NotNil(t, got.ToolConfig["retrievalConfig"])
}

func TestPost_StatusError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		_, _ = w.Write([]byte(`{"error":{"code":503,"message":"The model is overloaded.","status":"UNAVAILABLE"}}`))
	}))
	defer srv.Close()

	e := New(Keys{Shared: "k"}).WithBaseURL(srv.URL)
	_, err := e.Generate(context.Background(), assist.GenerateRequest{Op: assist.OpHospitals, Model: "m", Text: "x", Grounded: true})

	status, ok := assist.StatusOf(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusServiceUnavailable, status)
	assert.Contains(t, err.Error(), "The model is overloaded.")
}

func TestPost_MissingKey(t *testing.T) {
	e := New(Keys{})
	_, err := e.Synthesize(context.Background(), assist.SpeechRequest{Model: "m", Text: "hi"})
	status, ok := assist.StatusOf(err)
	require.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, status)
}

func TestSynthesize_WrapsPCM(t *testing.T) {
	pcm := []byte{1, 0, 2, 0, 3, 0}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req restRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, []any{"AUDIO"}, req.GenerationConfig["responseModalities"])
		_ = json.NewEncoder(w).Encode(map[string]any{
			"candidates": []any{map[string]any{"content": map[string]any{"parts": []any{
				map[string]any{"inlineData": map[string]any{
					"mimeType": "audio/L16;codec=pcm;rate=16000",
					"data":     base64.StdEncoding.EncodeToString(pcm),
				}},
			}}}},
		})
	}))
	defer srv.Close()

	e := New(Keys{Speech: "k"}).WithBaseURL(srv.URL)
	a, err := e.Synthesize(context.Background(), assist.SpeechRequest{Model: "tts", Voice: "Kore", Text: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "audio/wav", a.MIMEType)
	require.Len(t, a.Data, 44+len(pcm))
	assert.Equal(t, "RIFF", string(a.Data[:4]))
	assert.Equal(t, uint32(16000), binary.LittleEndian.Uint32(a.Data[24:28]))
	assert.Equal(t, pcm, a.Data[44:])
}

func TestSampleRate(t *testing.T) {
	assert.Equal(t, 24000, sampleRate("audio/L16;codec=pcm;rate=24000"))
	assert.Equal(t, 24000, sampleRate("audio/pcm"))
	assert.Equal(t, 8000, sampleRate("audio/L16; rate=8000"))
}
