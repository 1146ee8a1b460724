package gemini

import (
	"bytes"
	"context"
	"encoding/base64"
	"encoding/binary"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strconv"
	"strings"

	"medassist/api/internal/assist"
	"medassist/api/internal/util"
)

type restPart struct {
	Text       string      `json:"text,omitempty"`
	InlineData *inlineData `json:"inlineData,omitempty"`
}

type inlineData struct {
	MIMEType string `json:"mimeType"`
	Data     string `json:"data"` // base64
}

type restContent struct {
	Role  string     `json:"role,omitempty"`
	Parts []restPart `json:"parts"`
}

type restRequest struct {
	Contents          []restContent    `json:"contents"`
	SystemInstruction *restContent     `json:"systemInstruction,omitempty"`
	Tools             []map[string]any `json:"tools,omitempty"`
	ToolConfig        map[string]any   `json:"toolConfig,omitempty"`
	GenerationConfig  map[string]any   `json:"generationConfig,omitempty"`
}

type groundingChunk struct {
	Web *struct {
		URI   string `json:"uri"`
		Title string `json:"title"`
	} `json:"web,omitempty"`
	Maps *struct {
		URI   string `json:"uri"`
		Title string `json:"title"`
	} `json:"maps,omitempty"`
}

type restResponse struct {
	Candidates []struct {
		Content           restContent `json:"content"`
		GroundingMetadata *struct {
			GroundingChunks []groundingChunk `json:"groundingChunks"`
		} `json:"groundingMetadata,omitempty"`
	} `json:"candidates"`
}

type restError struct {
	Error struct {
		Code    int    `json:"code"`
		Message string `json:"message"`
		Status  string `json:"status"`
	} `json:"error"`
}

// grounded issues a maps-grounded generateContent call.
func (e *Engine) grounded(ctx context.Context, req assist.GenerateRequest) (assist.GenerateResponse, error) {
	body := restRequest{
		Contents: []restContent{{Role: assist.RoleUser, Parts: []restPart{{Text: req.Text}}}},
		Tools:    []map[string]any{{"googleMaps": map[string]any{}}},
	}
	if req.System != "" {
		body.SystemInstruction = &restContent{Parts: []restPart{{Text: req.System}}}
	}
	if req.Geo != nil {
		body.ToolConfig = map[string]any{
			"retrievalConfig": map[string]any{
				"latLng": map[string]any{"latitude": req.Geo.Lat, "longitude": req.Geo.Lng},
			},
		}
	}

	var out restResponse
	if err := e.post(ctx, req.Op, req.Model, body, &out); err != nil {
		return assist.GenerateResponse{}, err
	}

	var res assist.GenerateResponse
	if len(out.Candidates) == 0 {
		return res, nil
	}
	c := out.Candidates[0]
	var b strings.Builder
	for _, p := range c.Content.Parts {
		b.WriteString(p.Text)
	}
	res.Text = b.String()
	if c.GroundingMetadata != nil {
		res.Places = places(c.GroundingMetadata.GroundingChunks)
	}
	return res, nil
}

func places(chunks []groundingChunk) []assist.Place {
	seen := map[string]bool{}
	var out []assist.Place
	for _, ch := range chunks {
		var name, uri string
		switch {
		case ch.Maps != nil:
			name, uri = ch.Maps.Title, ch.Maps.URI
		case ch.Web != nil:
			name, uri = ch.Web.Title, ch.Web.URI
		default:
			continue
		}
		if uri == "" || seen[uri] {
			continue
		}
		seen[uri] = true
		out = append(out, assist.Place{Name: name, URI: uri})
	}
	return out
}

// Synthesize renders text to speech. Gemini returns raw 16-bit PCM which is
// wrapped into a WAV container.
func (e *Engine) Synthesize(ctx context.Context, req assist.SpeechRequest) (assist.Audio, error) {
	body := restRequest{
		Contents: []restContent{{Parts: []restPart{{Text: req.Text}}}},
		GenerationConfig: map[string]any{
			"responseModalities": []string{"AUDIO"},
			"speechConfig": map[string]any{
				"voiceConfig": map[string]any{
					"prebuiltVoiceConfig": map[string]any{"voiceName": req.Voice},
				},
			},
		},
	}
	var out restResponse
	if err := e.post(ctx, assist.OpSpeech, req.Model, body, &out); err != nil {
		return assist.Audio{}, err
	}
	for _, c := range out.Candidates {
		for _, p := range c.Content.Parts {
			if p.InlineData == nil || p.InlineData.Data == "" {
				continue
			}
			pcm, err := base64.StdEncoding.DecodeString(p.InlineData.Data)
			if err != nil {
				return assist.Audio{}, fmt.Errorf("gemini speech: bad audio payload: %w", err)
			}
			mime := util.BaseMIME(p.InlineData.MIMEType)
			if strings.HasPrefix(mime, "audio/l16") || mime == "audio/pcm" {
				return assist.Audio{Data: wav(pcm, sampleRate(p.InlineData.MIMEType)), MIMEType: "audio/wav"}, nil
			}
			return assist.Audio{Data: pcm, MIMEType: mime}, nil
		}
	}
	return assist.Audio{}, nil
}

func (e *Engine) post(ctx context.Context, op assist.Operation, model string, body any, out any) error {
	key := e.keys.For(op)
	if key == "" {
		return &assist.StatusError{Code: http.StatusUnauthorized, Message: "GEMINI_API_KEY is empty"}
	}
	payload, err := json.Marshal(body)
	if err != nil {
		return err
	}
	url := fmt.Sprintf("%s/models/%s:generateContent", e.baseURL, strings.TrimSpace(model))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, url, bytes.NewReader(payload))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("x-goog-api-key", key)

	resp, err := e.httpc.Do(req)
	if err != nil {
		return fmt.Errorf("gemini %s: %w", op, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode/100 != 2 {
		x, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))
		msg := strings.TrimSpace(string(x))
		var re restError
		if json.Unmarshal(x, &re) == nil && re.Error.Message != "" {
			msg = re.Error.Message
		}
		return fmt.Errorf("gemini %s: %w", op, &assist.StatusError{Code: resp.StatusCode, Message: msg})
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("gemini %s: decode: %w", op, err)
	}
	return nil
}

// sampleRate reads "rate=24000" from an audio/L16 MIME type.
func sampleRate(mime string) int {
	for _, p := range strings.Split(mime, ";") {
		k, v, ok := strings.Cut(strings.TrimSpace(p), "=")
		if ok && strings.EqualFold(k, "rate") {
			if n, err := strconv.Atoi(v); err == nil && n > 0 {
				return n
			}
		}
	}
	return 24000
}

// wav prepends a RIFF header for mono 16-bit little-endian PCM.
func wav(pcm []byte, rate int) []byte {
	const (
		channels = 1
		bits     = 16
	)
	var buf bytes.Buffer
	buf.Grow(44 + len(pcm))
	buf.WriteString("RIFF")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(36+len(pcm)))
	buf.WriteString("WAVEfmt ")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(16))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(1))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(rate))
	_ = binary.Write(&buf, binary.LittleEndian, uint32(rate*channels*bits/8))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(channels*bits/8))
	_ = binary.Write(&buf, binary.LittleEndian, uint16(bits))
	buf.WriteString("data")
	_ = binary.Write(&buf, binary.LittleEndian, uint32(len(pcm)))
	buf.Write(pcm)
	return buf.Bytes()
}
