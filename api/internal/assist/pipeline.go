// Package assist executes AI-backed health operations against a generative
// provider: prompt construction, retry on transient server errors, model
// escalation, and strict validation of the structured reply.
package assist

import (
	"context"
	"log/slog"
	"strings"
	"time"
)

// Pipeline is stateless between calls and safe for concurrent use.
type Pipeline struct {
	provider Provider
	models   Models
	log      *slog.Logger

	Retry      Policies
	Escalation Escalation // symptoms only
}

func New(p Provider, m Models, log *slog.Logger) *Pipeline {
	if log == nil {
		log = slog.Default()
	}
	return &Pipeline{
		provider:   p,
		models:     m,
		log:        log,
		Retry:      DefaultPolicies(),
		Escalation: OnUnavailable(m.SymptomsFallback),
	}
}

// AnalyzeReport summarizes a medical report given as text or a file.
func (p *Pipeline) AnalyzeReport(ctx context.Context, in Envelope, prof *Profile) (ReportAnalysis, error) {
	text, blob, err := in.content(OpReport)
	if err != nil {
		return ReportAnalysis{}, err
	}
	req := GenerateRequest{
		Op:       OpReport,
		Model:    p.models.Report,
		System:   reportPreamble + profileContext(prof),
		Text:     text,
		Blob:     blob,
		Contract: ReportContract,
	}
	resp, err := p.call(ctx, req)
	if err != nil {
		return ReportAnalysis{}, err
	}
	var out ReportAnalysis
	if err := Validate(req.Contract, resp.Text, &out); err != nil {
		return ReportAnalysis{}, p.fail(OpReport, err)
	}
	return out, nil
}

// PredictSymptoms lists likely conditions for a symptom description. When
// the primary model is exhausted with a status matching p.Escalation the
// call is issued once against the fallback model.
func (p *Pipeline) PredictSymptoms(ctx context.Context, in Envelope, prof *Profile) (SymptomPrediction, error) {
	text, blob, err := in.content(OpSymptoms)
	if err != nil {
		return SymptomPrediction{}, err
	}
	req := GenerateRequest{
		Op:       OpSymptoms,
		Model:    p.models.Symptoms,
		System:   symptomsPreamble + profileContext(prof),
		Text:     text,
		Blob:     blob,
		Contract: SymptomsContract,
	}
	resp, err := Retry(ctx, p.policy(OpSymptoms), func(ctx context.Context) (GenerateResponse, error) {
		return p.provider.Generate(ctx, req)
	})
	if err != nil && p.Escalation.applies(err) {
		p.log.Warn("primary model unavailable, escalating",
			"op", OpSymptoms, "primary", req.Model, "fallback", p.Escalation.Fallback)
		req.Model = p.Escalation.Fallback
		resp, err = p.provider.Generate(ctx, req)
	}
	if err != nil {
		return SymptomPrediction{}, p.fail(OpSymptoms, err)
	}
	var out SymptomPrediction
	if err := Validate(req.Contract, resp.Text, &out); err != nil {
		return SymptomPrediction{}, p.fail(OpSymptoms, err)
	}
	return out, nil
}

// Chat answers one conversational turn. With Voice set the reply is also
// synthesized; a synthesis failure leaves Audio empty.
func (p *Pipeline) Chat(ctx context.Context, in ChatRequest) (ChatReply, error) {
	reply, audio, err := p.ChatAsync(ctx, in)
	if err != nil {
		return ChatReply{}, err
	}
	if audio != nil {
		reply.Audio = <-audio
	}
	return reply, nil
}

// ChatAsync returns the text reply as soon as it is available. When voice
// is requested the returned channel yields the audio (possibly empty) once
// synthesis resolves; otherwise it is nil.
func (p *Pipeline) ChatAsync(ctx context.Context, in ChatRequest) (ChatReply, <-chan Audio, error) {
	msg := strings.TrimSpace(in.Message)
	if msg == "" {
		return ChatReply{}, nil, inputError(OpChat, "message is required")
	}
	req := GenerateRequest{
		Op:      OpChat,
		Model:   p.models.Chat,
		System:  chatPreamble + profileContext(in.Profile),
		Text:    msg,
		History: in.History,
	}
	resp, err := p.call(ctx, req)
	if err != nil {
		return ChatReply{}, nil, err
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return ChatReply{}, nil, p.fail(OpChat, &Error{Kind: ErrValidation, Err: errEmptyText})
	}
	reply := ChatReply{Text: text}
	if !in.Voice {
		return reply, nil, nil
	}

	audio := make(chan Audio, 1)
	go func() {
		defer close(audio)
		a, err := p.Speak(ctx, text)
		if err != nil {
			p.log.Warn("speech synthesis failed, replying without audio", "err", err)
			a = Audio{}
		}
		audio <- a
	}()
	return reply, audio, nil
}

// Speak converts text to speech.
func (p *Pipeline) Speak(ctx context.Context, text string) (Audio, error) {
	text = strings.TrimSpace(text)
	if text == "" {
		return Audio{}, inputError(OpSpeech, "text is required")
	}
	req := SpeechRequest{Model: p.models.Speech, Voice: p.models.Voice, Text: text}
	a, err := Retry(ctx, p.policy(OpSpeech), func(ctx context.Context) (Audio, error) {
		return p.provider.Synthesize(ctx, req)
	})
	if err != nil {
		return Audio{}, p.fail(OpSpeech, err)
	}
	if a.Empty() {
		return Audio{}, p.fail(OpSpeech, &Error{Kind: ErrValidation, Err: errEmptyAudio})
	}
	return a, nil
}

// FindHospitals looks up nearby care by coordinates or a query string.
func (p *Pipeline) FindHospitals(ctx context.Context, in Envelope) (HospitalLookup, error) {
	geo, query, err := in.location(OpHospitals)
	if err != nil {
		return HospitalLookup{}, err
	}
	req := GenerateRequest{
		Op:       OpHospitals,
		Model:    p.models.Maps,
		System:   hospitalsPreamble,
		Text:     hospitalsRequest(geo, query),
		Grounded: true,
		Geo:      geo,
	}
	resp, err := p.call(ctx, req)
	if err != nil {
		return HospitalLookup{}, err
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return HospitalLookup{}, p.fail(OpHospitals, &Error{Kind: ErrValidation, Err: errEmptyText})
	}
	places := resp.Places
	if places == nil {
		places = []Place{}
	}
	return HospitalLookup{Text: text, Places: places}, nil
}

// Tips generates short health tips, personalized when a profile is given.
func (p *Pipeline) Tips(ctx context.Context, prof *Profile) (Tips, error) {
	req := GenerateRequest{
		Op:       OpTips,
		Model:    p.models.Tips,
		System:   tipsPreamble,
		Text:     tipsRequest(prof),
		Contract: TipsContract,
	}
	resp, err := p.call(ctx, req)
	if err != nil {
		return Tips{}, err
	}
	var out Tips
	if err := Validate(req.Contract, resp.Text, &out); err != nil {
		return Tips{}, p.fail(OpTips, err)
	}
	return out, nil
}

// call runs one Generate inside the operation's retry policy.
func (p *Pipeline) call(ctx context.Context, req GenerateRequest) (GenerateResponse, error) {
	resp, err := Retry(ctx, p.policy(req.Op), func(ctx context.Context) (GenerateResponse, error) {
		return p.provider.Generate(ctx, req)
	})
	if err != nil {
		return GenerateResponse{}, p.fail(req.Op, err)
	}
	return resp, nil
}

func (p *Pipeline) policy(op Operation) RetryPolicy {
	pol := p.Retry.For(op)
	if pol.OnRetry == nil {
		pol.OnRetry = func(attempt int, wait time.Duration, err error) {
			status, _ := StatusOf(err)
			p.log.Info("retrying AI call",
				"op", op, "attempt", attempt, "wait", wait, "status", status, "err", err)
		}
	}
	return pol
}

func (p *Pipeline) fail(op Operation, err error) error {
	err = classify(op, err)
	p.log.Error("AI call failed", "op", op, "err", err)
	return err
}
