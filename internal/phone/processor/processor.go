// Package processor runs the voice provider side of a phone call and keeps
// the call transcript.
package processor

import (
	"context"

	"voicebank-server/internal/clients/googlevoice"
	"voicebank-server/internal/lang"
	"voicebank-server/internal/observability"
	"voicebank-server/internal/store"
	"voicebank-server/internal/voice/audio"

	"github.com/google/uuid"
)

// VoiceProvider opens a live voice session for one call.
type VoiceProvider interface {
	StartVoiceSession(ctx context.Context, audioStream <-chan []byte,
		language lang.Language, instructions string) <-chan googlevoice.VoiceResult
}

// TranscriptStore persists call transcript turns.
type TranscriptStore interface {
	CreateTranscriptEntry(ctx context.Context, sessionID uuid.UUID, role string, content string) (store.TranscriptEntry, error)
}

type PhoneProcessor struct {
	provider    VoiceProvider
	pack        *lang.Pack
	transcripts TranscriptStore
	logger      *observability.Logger
}

// New creates a PhoneProcessor. transcripts may be nil.
func New(provider VoiceProvider, pack *lang.Pack, transcripts TranscriptStore, logger *observability.Logger) *PhoneProcessor {
	return &PhoneProcessor{provider: provider, pack: pack, transcripts: transcripts, logger: logger}
}

// StartVoiceSession wires a live voice session to pipeline provider
// channels. Audio in is 8kHz mu-law from the caller; audio out is 8kHz
// mu-law for Twilio. Transcript events are persisted as they arrive.
func (p *PhoneProcessor) StartVoiceSession(ctx context.Context, sessionID uuid.UUID,
	language lang.Language) (chan []byte, <-chan []byte) {
	providerIn := make(chan []byte, 4096)
	providerOut := make(chan []byte, 4096)

	if p.provider == nil {
		p.logger.Warn(ctx, "no voice provider configured, closing call stream")
		close(providerOut)
		return providerIn, providerOut
	}

	results := p.provider.StartVoiceSession(ctx, providerIn, language, p.pack.Instructions(language))

	go func() {
		defer close(providerOut)
		for result := range results {
			switch {
			case result.Error != nil:
				p.logger.Error(ctx, "voice session error", result.Error)

			case result.AudioData != nil:
				mulaw := audio.PCM24kToMuLaw(result.AudioData)
				select {
				case providerOut <- mulaw:
				case <-ctx.Done():
					return
				}

			case result.UserTranscript != "":
				p.record(ctx, sessionID, store.TranscriptRoleUser, result.UserTranscript)

			case result.AgentTranscript != "":
				p.record(ctx, sessionID, store.TranscriptRoleAssistant, result.AgentTranscript)
			}
		}
	}()

	return providerIn, providerOut
}

func (p *PhoneProcessor) record(ctx context.Context, sessionID uuid.UUID, role string, content string) {
	if p.transcripts == nil {
		return
	}
	if _, err := p.transcripts.CreateTranscriptEntry(ctx, sessionID, role, content); err != nil {
		p.logger.Error(ctx, "failed to persist call transcript entry", err)
	}
}
