// Package openai streams caller audio to OpenAI's realtime transcription
// endpoint and synthesizes spoken replies.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"voicebank-server/internal/lang"
	"voicebank-server/internal/observability"

	"github.com/gorilla/websocket"
)

const realtimeURL = "wss://api.openai.com/v1/audio/transcriptions/stream"
const speechURL = "https://api.openai.com/v1/audio/speech"

// transcription language hints per locale. Pidgin has no ISO-639-1 code, so
// it rides on the English model with a prompt hint.
var transcriptionLanguages = map[lang.Language]string{
	lang.English: "en",
	lang.French:  "fr",
	lang.Pidgin:  "en",
	lang.Igbo:    "ig",
	lang.Hausa:   "ha",
	lang.Yoruba:  "yo",
}

// speechVoices maps each locale to a TTS voice.
var speechVoices = map[lang.Language]string{
	lang.English: "alloy",
	lang.French:  "nova",
	lang.Pidgin:  "alloy",
	lang.Igbo:    "shimmer",
	lang.Hausa:   "shimmer",
	lang.Yoruba:  "shimmer",
}

// TranscriptionConfig holds the per-session transcription settings.
type TranscriptionConfig struct {
	Model    string
	Language lang.Language
	Prompt   string
	VAD      bool
}

// TranscriptionResult is a partial or final transcription event.
type TranscriptionResult struct {
	Type       string // "delta", "completed" or "error"
	Delta      string
	Transcript string
	ItemID     string
}

type RealtimeClient struct {
	apiKey     string
	httpClient *http.Client
	logger     *observability.Logger
}

func NewRealtimeClient(apiKey string, logger *observability.Logger) (*RealtimeClient, error) {
	if apiKey == "" {
		return nil, fmt.Errorf("OpenAI API key is required")
	}
	return &RealtimeClient{
		apiKey:     apiKey,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		logger:     logger,
	}, nil
}

// StartTranscription opens a realtime session and streams audio from
// audioStream until it closes or ctx is cancelled. Results arrive on the
// returned channel; it is closed when the session ends.
func (c *RealtimeClient) StartTranscription(ctx context.Context, audioStream <-chan []byte, cfg TranscriptionConfig) (<-chan TranscriptionResult, error) {
	results := make(chan TranscriptionResult)

	go func() {
		defer close(results)

		headers := http.Header{}
		headers.Set("Authorization", "Bearer "+c.apiKey)
		conn, _, err := websocket.DefaultDialer.DialContext(ctx, realtimeURL, headers)
		if err != nil {
			c.logger.Error(ctx, "failed to connect to realtime endpoint", err)
			results <- TranscriptionResult{Type: "error", Delta: err.Error()}
			return
		}
		defer conn.Close()

		sessionReq := map[string]any{
			"object":             "realtime.transcription_session",
			"input_audio_format": "pcm16",
			"input_audio_transcription": []map[string]string{
				{
					"model":    cfg.Model,
					"prompt":   cfg.Prompt,
					"language": transcriptionLanguages[cfg.Language],
				},
			},
		}
		if cfg.VAD {
			sessionReq["turn_detection"] = map[string]any{
				"type":                "server_vad",
				"threshold":           0.5,
				"prefix_padding_ms":   300,
				"silence_duration_ms": 500,
			}
		} else {
			sessionReq["turn_detection"] = nil
		}
		if err := conn.WriteJSON(sessionReq); err != nil {
			c.logger.Error(ctx, "failed to configure realtime session", err)
			results <- TranscriptionResult{Type: "error", Delta: err.Error()}
			return
		}

		go func() {
			for {
				_, msg, err := conn.ReadMessage()
				if err != nil {
					return
				}
				var event map[string]any
				if err := json.Unmarshal(msg, &event); err != nil {
					continue
				}
				eventType, _ := event["type"].(string)
				itemID, _ := event["item_id"].(string)
				switch eventType {
				case "conversation.item.input_audio_transcription.delta":
					delta, _ := event["delta"].(string)
					results <- TranscriptionResult{Type: "delta", Delta: delta, ItemID: itemID}
				case "conversation.item.input_audio_transcription.completed":
					transcript, _ := event["transcript"].(string)
					results <- TranscriptionResult{Type: "completed", Transcript: transcript, ItemID: itemID}
				}
			}
		}()

		for {
			select {
			case <-ctx.Done():
				return
			case chunk, ok := <-audioStream:
				if !ok {
					return
				}
				appendEvent := map[string]any{
					"type": "input_audio_buffer.append",
					"data": chunk,
				}
				if err := conn.WriteJSON(appendEvent); err != nil {
					c.logger.Error(ctx, "failed to send audio chunk", err)
					return
				}
			}
		}
	}()

	return results, nil
}

// SynthesizeSpeech renders text in the locale's voice. The response is raw
// 24kHz 16-bit PCM so it can go straight through the mu-law converter.
func (c *RealtimeClient) SynthesizeSpeech(ctx context.Context, text string, language lang.Language) ([]byte, error) {
	voice, ok := speechVoices[language]
	if !ok {
		voice = speechVoices[lang.DefaultLanguage]
	}

	body, err := json.Marshal(map[string]any{
		"model":           "tts-1",
		"voice":           voice,
		"input":           text,
		"response_format": "pcm",
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal speech request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, speechURL, bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("failed to create speech request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("speech request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		respBody, _ := io.ReadAll(resp.Body)
		return nil, fmt.Errorf("speech synthesis failed with status %d: %s", resp.StatusCode, string(respBody))
	}
	return io.ReadAll(resp.Body)
}
