package processor

import (
	"context"

	"voicebank-server/internal/agent"
	"voicebank-server/internal/clients/banking"
	"voicebank-server/internal/clients/googlevoice"
	openaiClient "voicebank-server/internal/clients/openai"
	"voicebank-server/internal/lang"
	"voicebank-server/internal/observability"
	"voicebank-server/internal/voice/audio"

	"github.com/google/uuid"
)

const transcriptionModel = "gpt-4o-transcribe"

// AgentVoiceProvider runs a call through transcription, the tool-calling
// conversation agent, and speech synthesis. Unlike the native dialog
// provider, this path can use the banking tools mid-call. Phone callers
// carry no banking token, so money movement fails closed until the caller
// authenticates through the app.
type AgentVoiceProvider struct {
	realtime *openaiClient.RealtimeClient
	agent    *agent.Agent
	logger   *observability.Logger
}

func NewAgentVoiceProvider(realtime *openaiClient.RealtimeClient, a *agent.Agent, logger *observability.Logger) *AgentVoiceProvider {
	return &AgentVoiceProvider{realtime: realtime, agent: a, logger: logger}
}

// StartVoiceSession implements VoiceProvider. Transcript persistence is
// handled by the agent itself, so only audio events are emitted here.
func (p *AgentVoiceProvider) StartVoiceSession(ctx context.Context, audioStream <-chan []byte,
	language lang.Language, _ string) <-chan googlevoice.VoiceResult {
	results := make(chan googlevoice.VoiceResult, 100)

	go func() {
		defer close(results)

		conv := p.agent.NewConversation(uuid.New(), language, banking.SessionAuth{}, nil)

		// Convert caller mu-law to the PCM the transcription session expects.
		pcmStream := make(chan []byte, 256)
		go func() {
			defer close(pcmStream)
			for chunk := range audioStream {
				select {
				case pcmStream <- audio.MuLawToPCM16k(chunk):
				case <-ctx.Done():
					return
				}
			}
		}()

		transcriptions, err := p.realtime.StartTranscription(ctx, pcmStream, openaiClient.TranscriptionConfig{
			Model:    transcriptionModel,
			Language: language,
			VAD:      true,
		})
		if err != nil {
			results <- googlevoice.VoiceResult{Error: err}
			return
		}

		p.speak(ctx, p.agent.Greeting(conv), language, results)

		for result := range transcriptions {
			if result.Type != "completed" || result.Transcript == "" {
				continue
			}

			reply, err := p.agent.HandleUtterance(ctx, conv, result.Transcript)
			if err != nil {
				p.logger.Error(ctx, "failed to handle call utterance", err)
				continue
			}
			p.speak(ctx, reply, language, results)
		}
	}()

	return results
}

func (p *AgentVoiceProvider) speak(ctx context.Context, text string, language lang.Language,
	results chan<- googlevoice.VoiceResult) {
	if text == "" {
		return
	}
	pcm, err := p.realtime.SynthesizeSpeech(ctx, text, language)
	if err != nil {
		p.logger.Error(ctx, "failed to synthesize reply", err)
		return
	}
	select {
	case results <- googlevoice.VoiceResult{AudioData: pcm}:
	case <-ctx.Done():
	}
}
