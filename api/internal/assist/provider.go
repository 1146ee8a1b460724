package assist

import "context"

// Provider is the external generative model endpoint.
type Provider interface {
	Generate(ctx context.Context, req GenerateRequest) (GenerateResponse, error)
	Synthesize(ctx context.Context, req SpeechRequest) (Audio, error)
}

// GenerateRequest is one outbound call. Text and Blob are mutually
// exclusive; Contract nil means free text.
type GenerateRequest struct {
	Op       Operation
	Model    string
	System   string
	Text     string
	Blob     *Blob
	History  []Turn
	Contract *Contract

	// Grounded asks for location-aware search; Geo biases it when set.
	Grounded bool
	Geo      *Geo
}

type GenerateResponse struct {
	Text   string
	Places []Place
}

type SpeechRequest struct {
	Model string
	Voice string
	Text  string
}

// Models names the backing model for each operation.
type Models struct {
	Report           string
	Symptoms         string
	SymptomsFallback string
	Chat             string
	Tips             string
	Maps             string
	Speech           string
	Voice            string
}
