// Package googlevoice drives a two-way voice conversation over Google's
// Live API, with per-locale voices for the supported languages.
package googlevoice

import (
	"context"
	"fmt"
	"strings"

	"voicebank-server/internal/lang"
	"voicebank-server/internal/observability"
	"voicebank-server/internal/voice/audio"

	"google.golang.org/genai"
)

const liveModel = "gemini-2.5-flash-preview-native-audio-dialog"

// localeVoice pairs a Live API prebuilt voice with a BCP-47 speech code.
type localeVoice struct {
	Voice      string
	SpeechCode string
}

// Nigerian locales use the -NG regional codes where Google supports them;
// Hausa speech uses the Latin-script variant.
var localeVoices = map[lang.Language]localeVoice{
	lang.English: {Voice: "Aoede", SpeechCode: "en-NG"},
	lang.French:  {Voice: "Puck", SpeechCode: "fr-FR"},
	lang.Pidgin:  {Voice: "Aoede", SpeechCode: "en-NG"},
	lang.Igbo:    {Voice: "Kore", SpeechCode: "ig-NG"},
	lang.Hausa:   {Voice: "Kore", SpeechCode: "ha-Latn-NG"},
	lang.Yoruba:  {Voice: "Kore", SpeechCode: "yo-NG"},
}

// VoiceResult is one event from a live voice session. Exactly one field is
// set per event.
type VoiceResult struct {
	AudioData       []byte // 24kHz PCM reply audio
	UserTranscript  string // what the caller said
	AgentTranscript string // what the agent said
	Error           error
}

// LiveClient holds a connection factory for live voice sessions.
type LiveClient struct {
	client *genai.Client
	logger *observability.Logger
}

// NewLiveClient creates a live voice client. Returns an error when the API
// key is missing.
func NewLiveClient(apiKey string, logger *observability.Logger) (*LiveClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("Google AI API key is required")
	}
	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{APIKey: apiKey})
	if err != nil {
		return nil, fmt.Errorf("failed to create Google AI client: %w", err)
	}
	return &LiveClient{client: client, logger: logger}, nil
}

// StartVoiceSession opens a live session in the given language. Caller audio
// arrives on audioStream as 8kHz mu-law; events come back on the returned
// channel until the stream closes or ctx is cancelled.
func (g *LiveClient) StartVoiceSession(ctx context.Context, audioStream <-chan []byte,
	language lang.Language, instructions string) <-chan VoiceResult {
	results := make(chan VoiceResult, 100)
	sessionCtx, cancel := context.WithCancel(ctx)

	voice, ok := localeVoices[language]
	if !ok {
		voice = localeVoices[lang.DefaultLanguage]
	}

	go func() {
		defer close(results)
		defer cancel()

		config := &genai.LiveConnectConfig{
			ResponseModalities: []genai.Modality{genai.Modality("AUDIO")},
			SystemInstruction: &genai.Content{
				Parts: []*genai.Part{{Text: instructions}},
			},
			InputAudioTranscription:  &genai.AudioTranscriptionConfig{},
			OutputAudioTranscription: &genai.AudioTranscriptionConfig{},
			SpeechConfig: &genai.SpeechConfig{
				LanguageCode: voice.SpeechCode,
				VoiceConfig: &genai.VoiceConfig{
					PrebuiltVoiceConfig: &genai.PrebuiltVoiceConfig{VoiceName: voice.Voice},
				},
			},
			RealtimeInputConfig: &genai.RealtimeInputConfig{
				AutomaticActivityDetection: &genai.AutomaticActivityDetection{Disabled: false},
			},
		}

		session, err := g.client.Live.Connect(sessionCtx, liveModel, config)
		if err != nil {
			g.logger.Error(ctx, "failed to connect to live API", err)
			results <- VoiceResult{Error: fmt.Errorf("failed to connect: %w", err)}
			return
		}
		defer session.Close()

		g.logger.Info(ctx, fmt.Sprintf("live voice session opened, language %s voice %s", language, voice.Voice))

		go g.receive(sessionCtx, session, results)

		for {
			select {
			case <-sessionCtx.Done():
				return
			case chunk, ok := <-audioStream:
				if !ok {
					session.Close()
					return
				}
				pcm := audio.MuLawToPCM16k(chunk)
				err := session.SendRealtimeInput(genai.LiveRealtimeInput{
					Audio: &genai.Blob{Data: pcm, MIMEType: "audio/pcm;rate=16000"},
				})
				if err != nil {
					g.logger.Error(ctx, "failed to send audio chunk", err)
					select {
					case results <- VoiceResult{Error: fmt.Errorf("failed to send audio: %w", err)}:
					case <-sessionCtx.Done():
					}
					return
				}
			}
		}
	}()

	return results
}

func (g *LiveClient) receive(ctx context.Context, session *genai.Session, results chan<- VoiceResult) {
	for {
		select {
		case <-ctx.Done():
			return
		default:
		}

		msg, err := session.Receive()
		if err != nil {
			if ctx.Err() != nil {
				return
			}
			if strings.Contains(err.Error(), "closed") {
				return
			}
			g.logger.Error(ctx, "live session receive failed", err)
			select {
			case results <- VoiceResult{Error: err}:
			case <-ctx.Done():
			}
			return
		}

		if msg.ServerContent == nil {
			continue
		}

		if msg.ServerContent.ModelTurn != nil {
			for _, part := range msg.ServerContent.ModelTurn.Parts {
				if part.InlineData != nil && part.InlineData.Data != nil {
					select {
					case results <- VoiceResult{AudioData: part.InlineData.Data}:
					case <-ctx.Done():
						return
					}
				}
			}
		}

		if t := msg.ServerContent.InputTranscription; t != nil && t.Text != "" {
			select {
			case results <- VoiceResult{UserTranscript: t.Text}:
			case <-ctx.Done():
				return
			}
		}

		if t := msg.ServerContent.OutputTranscription; t != nil && t.Text != "" {
			select {
			case results <- VoiceResult{AgentTranscript: t.Text}:
			case <-ctx.Done():
				return
			}
		}
	}
}
