// Package gemini implements assist.Provider on top of Google's Gemini API.
package gemini

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"medassist/api/internal/assist"
)

const defaultBaseURL = "https://generativelanguage.googleapis.com/v1beta"

// Keys holds the API key used per operation. Empty entries fall back to Shared.
type Keys struct {
	Shared   string
	Report   string
	Chat     string
	Symptoms string
	Speech   string
	Maps     string
}

func (k Keys) For(op assist.Operation) string {
	var key string
	switch op {
	case assist.OpReport:
		key = k.Report
	case assist.OpChat, assist.OpTips:
		key = k.Chat
	case assist.OpSymptoms:
		key = k.Symptoms
	case assist.OpSpeech:
		key = k.Speech
	case assist.OpHospitals:
		key = k.Maps
	}
	if key = strings.TrimSpace(key); key != "" {
		return key
	}
	return strings.TrimSpace(k.Shared)
}

type Engine struct {
	keys    Keys
	baseURL string
	httpc   *http.Client
}

func New(keys Keys) *Engine {
	return &Engine{
		keys:    keys,
		baseURL: defaultBaseURL,
		httpc:   &http.Client{Timeout: 90 * time.Second},
	}
}

// WithBaseURL points the REST calls at another endpoint.
func (e *Engine) WithBaseURL(u string) *Engine {
	e.baseURL = strings.TrimRight(u, "/")
	return e
}

func (e *Engine) Name() string { return "gemini" }

// Generate runs a structured or free-text generation. Grounded requests go
// through the REST endpoint since the SDK has no maps tool.
func (e *Engine) Generate(ctx context.Context, req assist.GenerateRequest) (assist.GenerateResponse, error) {
	if req.Grounded {
		return e.grounded(ctx, req)
	}
	key := e.keys.For(req.Op)
	if key == "" {
		return assist.GenerateResponse{}, &assist.StatusError{Code: http.StatusUnauthorized, Message: "GEMINI_API_KEY is empty"}
	}
	cl, err := genai.NewClient(ctx, option.WithAPIKey(key))
	if err != nil {
		return assist.GenerateResponse{}, err
	}
	defer cl.Close()

	m := cl.GenerativeModel(strings.TrimSpace(req.Model))
	if m == nil {
		return assist.GenerateResponse{}, errors.New("gemini: model is nil")
	}
	m.GenerationConfig = genai.GenerationConfig{
		Temperature: ptrFloat32(0.4),
	}
	if req.Contract != nil {
		m.GenerationConfig.Temperature = ptrFloat32(0)
		m.GenerationConfig.ResponseMIMEType = "application/json"
		m.GenerationConfig.ResponseSchema = SchemaOf(req.Contract)
	}
	if req.System != "" {
		m.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(req.System)}}
	}

	var part genai.Part = genai.Text(req.Text)
	if req.Blob != nil {
		part = &genai.Blob{MIMEType: req.Blob.MIMEType, Data: req.Blob.Data}
	}

	var resp *genai.GenerateContentResponse
	if len(req.History) > 0 {
		cs := m.StartChat()
		cs.History = history(req.History)
		resp, err = cs.SendMessage(ctx, part)
	} else {
		resp, err = m.GenerateContent(ctx, part)
	}
	if err != nil {
		return assist.GenerateResponse{}, fmt.Errorf("gemini %s: %w", req.Op, err)
	}
	return assist.GenerateResponse{Text: allText(resp)}, nil
}

// SchemaOf renders a contract as a Gemini response schema.
func SchemaOf(c *assist.Contract) *genai.Schema {
	return objectSchema(c.Fields)
}

func objectSchema(fields []assist.Field) *genai.Schema {
	s := &genai.Schema{Type: genai.TypeObject, Properties: map[string]*genai.Schema{}}
	for _, f := range fields {
		s.Properties[f.Name] = fieldSchema(f)
		if f.Required {
			s.Required = append(s.Required, f.Name)
		}
	}
	return s
}

func fieldSchema(f assist.Field) *genai.Schema {
	var s *genai.Schema
	switch f.Type {
	case assist.TypeObject:
		s = objectSchema(f.Fields)
	case assist.TypeArray:
		s = &genai.Schema{Type: genai.TypeArray}
		if f.Items != nil {
			s.Items = fieldSchema(*f.Items)
		}
	case assist.TypeInteger:
		s = &genai.Schema{Type: genai.TypeInteger}
	case assist.TypeNumber:
		s = &genai.Schema{Type: genai.TypeNumber}
	case assist.TypeBoolean:
		s = &genai.Schema{Type: genai.TypeBoolean}
	default:
		s = &genai.Schema{Type: genai.TypeString}
	}
	s.Description = f.Description
	return s
}

func history(turns []assist.Turn) []*genai.Content {
	out := make([]*genai.Content, 0, len(turns))
	for _, t := range turns {
		text := strings.TrimSpace(t.Text)
		if text == "" {
			continue
		}
		role := assist.RoleUser
		if t.Role == assist.RoleModel {
			role = assist.RoleModel
		}
		out = append(out, &genai.Content{Role: role, Parts: []genai.Part{genai.Text(text)}})
	}
	return out
}

func allText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 {
		return ""
	}
	for _, c := range resp.Candidates {
		if c.Content == nil {
			continue
		}
		var b strings.Builder
		for _, p := range c.Content.Parts {
			if t, ok := p.(genai.Text); ok {
				b.WriteString(string(t))
			}
		}
		if b.Len() > 0 {
			return b.String()
		}
	}
	return ""
}

func ptrFloat32(v float32) *float32 { return &v }
