// Package agent runs the voice banking conversation: it routes user
// utterances through the language model, dispatches tool calls, and gates
// money movement behind a keyword-classified confirmation step.
package agent

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"voicebank-server/internal/clients/banking"
	"voicebank-server/internal/intent"
	"voicebank-server/internal/lang"
	"voicebank-server/internal/metrics"
	"voicebank-server/internal/observability"
	"voicebank-server/internal/store"
	"voicebank-server/internal/temperature"
	"voicebank-server/internal/transfer/processor"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
	openaiOption "github.com/openai/openai-go/option"
)

const chatModel = openai.ChatModelGPT4o

// maxToolRounds bounds one utterance's model loop so a misbehaving model
// cannot spin tool calls forever.
const maxToolRounds = 8

// OpenAIChatModel is the production ChatModel backed by the OpenAI API.
type OpenAIChatModel struct {
	client openai.Client
}

// NewOpenAIChatModel creates a ChatModel using the given API key.
func NewOpenAIChatModel(apiKey string) *OpenAIChatModel {
	return &OpenAIChatModel{client: openai.NewClient(openaiOption.WithAPIKey(apiKey))}
}

func (m *OpenAIChatModel) Complete(ctx context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	return m.client.Chat.Completions.New(ctx, params)
}

// Agent is the shared conversation engine. One Agent serves all sessions;
// per-session state lives in Conversation.
type Agent struct {
	model       ChatModel
	pack        *lang.Pack
	classifier  *intent.Classifier
	transfers   TransferService
	zones       temperature.ZoneStore
	transcripts TranscriptStore
	logger      *observability.Logger
}

// New creates an Agent. transcripts may be nil when persistence is disabled.
func New(model ChatModel, pack *lang.Pack, classifier *intent.Classifier,
	transfers TransferService, zones temperature.ZoneStore,
	transcripts TranscriptStore, logger *observability.Logger) *Agent {
	return &Agent{
		model:       model,
		pack:        pack,
		classifier:  classifier,
		transfers:   transfers,
		zones:       zones,
		transcripts: transcripts,
		logger:      logger,
	}
}

// Conversation is the per-session state: the model transcript, session auth
// and any transfer staged for confirmation.
type Conversation struct {
	SessionID uuid.UUID
	Language  lang.Language
	Auth      banking.SessionAuth

	notifier       CompletionNotifier
	history        []openai.ChatCompletionMessageParamUnion
	pending        *banking.TransferRequest
	pendingDisplay string
	lastReceipt    json.RawMessage
}

// NewConversation opens a conversation for one session. The notifier is
// bound to the session's data channel and may be nil for channels with no
// app to signal, such as phone calls. The system instructions are localised
// once here and fixed for the session.
func (a *Agent) NewConversation(sessionID uuid.UUID, language lang.Language,
	auth banking.SessionAuth, notifier CompletionNotifier) *Conversation {
	metrics.SessionsStarted.WithLabelValues(string(language)).Inc()
	return &Conversation{
		SessionID: sessionID,
		Language:  language,
		Auth:      auth,
		notifier:  notifier,
		history: []openai.ChatCompletionMessageParamUnion{
			openai.SystemMessage(a.pack.Instructions(language)),
		},
	}
}

// Greeting returns the session opening line in the conversation's language.
func (a *Agent) Greeting(conv *Conversation) string {
	return a.pack.Greeting(conv.Language)
}

// HandleUtterance processes one transcribed user utterance and returns the
// agent's spoken reply. When a transfer is staged, the utterance is first
// classified as confirm or cancel; the model only sees it when the
// classification is unclear.
func (a *Agent) HandleUtterance(ctx context.Context, conv *Conversation, text string) (string, error) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "session_id", Value: conv.SessionID.String()})
	a.recordTranscript(ctx, conv, store.TranscriptRoleUser, text)

	if conv.pending != nil {
		verdict := a.classifier.Classify(text, conv.Language)
		metrics.IntentClassifications.WithLabelValues(verdict.String(), string(conv.Language)).Inc()

		switch verdict {
		case intent.Confirm:
			conv.history = append(conv.history, openai.UserMessage(text))
			reply := a.executePending(ctx, conv)
			conv.history = append(conv.history, openai.AssistantMessage(reply))
			a.recordTranscript(ctx, conv, store.TranscriptRoleAssistant, reply)
			return reply, nil
		case intent.Cancel:
			conv.pending = nil
			conv.pendingDisplay = ""
			reply := a.pack.Phrase(conv.Language, lang.PhraseCancelled)
			conv.history = append(conv.history,
				openai.UserMessage(text), openai.AssistantMessage(reply))
			a.recordTranscript(ctx, conv, store.TranscriptRoleAssistant, reply)
			return reply, nil
		}
		// Unclear: keep the transfer staged and let the model ask again.
	}

	conv.history = append(conv.history, openai.UserMessage(text))
	reply, err := a.runModel(ctx, conv)
	if err != nil {
		return "", err
	}
	a.recordTranscript(ctx, conv, store.TranscriptRoleAssistant, reply)
	return reply, nil
}

// runModel drives the tool-calling loop until the model produces a spoken
// reply or stages a transfer.
func (a *Agent) runModel(ctx context.Context, conv *Conversation) (string, error) {
	for round := 0; round < maxToolRounds; round++ {
		resp, err := a.model.Complete(ctx, openai.ChatCompletionNewParams{
			Model:    chatModel,
			Messages: conv.history,
			Tools:    toolDefinitions(),
		})
		if err != nil {
			a.logger.Error(ctx, "model completion failed", err)
			return "", fmt.Errorf("model completion failed: %w", err)
		}
		if len(resp.Choices) == 0 {
			return "", fmt.Errorf("model returned no choices")
		}

		msg := resp.Choices[0].Message
		conv.history = append(conv.history, msg.ToParam())

		if len(msg.ToolCalls) == 0 {
			return msg.Content, nil
		}

		staged := false
		for _, call := range msg.ToolCalls {
			result, didStage := a.dispatchTool(ctx, conv, call.Function.Name, call.Function.Arguments)
			staged = staged || didStage
			conv.history = append(conv.history, openai.ToolMessage(result, call.ID))
		}

		// A staged transfer ends the round: the confirmation question goes
		// straight to the user, bypassing another model turn.
		if staged {
			reply := a.pack.Phrase(conv.Language, lang.PhraseConfirmTransfer,
				"amount", conv.pending.Amount, "recipient", conv.pendingDisplay)
			conv.history = append(conv.history, openai.AssistantMessage(reply))
			return reply, nil
		}
	}
	return "", fmt.Errorf("model exceeded %d tool rounds", maxToolRounds)
}

// dispatchTool executes one tool call and returns the tool result text plus
// whether a transfer was staged.
func (a *Agent) dispatchTool(ctx context.Context, conv *Conversation, name string, arguments string) (string, bool) {
	ctx = observability.WithFields(ctx, observability.Field{Key: "tool", Value: name})

	switch name {
	case ToolGetSimilarRecipients:
		var args searchArgs
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return "invalid arguments: " + err.Error(), false
		}
		return a.searchRecipients(ctx, conv, args.Name), false

	case ToolMakeTransfer:
		var args transferArgs
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return "invalid arguments: " + err.Error(), false
		}
		request := args.request()
		conv.pending = &request
		conv.pendingDisplay = args.displayName()
		return "transfer staged, awaiting spoken confirmation from the user", true

	case ToolSignalTransferSuccess:
		if conv.lastReceipt == nil || conv.notifier == nil {
			return "no completed transfer to signal", false
		}
		if err := conv.notifier.NotifyTransferCompleted(ctx, conv.lastReceipt); err != nil {
			a.logger.Warn(ctx, "completion signal failed")
			return "signal failed", false
		}
		return "signalled", false

	case ToolGetTemperature:
		var args temperatureArgs
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return "invalid arguments: " + err.Error(), false
		}
		temp, ok, err := a.zones.Get(ctx, args.Zone)
		if err != nil {
			a.logger.Error(ctx, "failed to read zone temperature", err)
			return "temperature is unavailable right now", false
		}
		if !ok {
			return unknownZoneMessage(args.Zone), false
		}
		return fmt.Sprintf("%s is at %d degrees", args.Zone, temp), false

	case ToolSetTemperature:
		var args temperatureArgs
		if err := json.Unmarshal([]byte(arguments), &args); err != nil {
			return "invalid arguments: " + err.Error(), false
		}
		ok, err := a.zones.Set(ctx, args.Zone, args.Temperature)
		if err != nil {
			a.logger.Error(ctx, "failed to set zone temperature", err)
			return "temperature is unavailable right now", false
		}
		if !ok {
			return unknownZoneMessage(args.Zone), false
		}
		return fmt.Sprintf("%s set to %d degrees", args.Zone, args.Temperature), false
	}

	a.logger.Warn(ctx, "model called unknown tool")
	return "unknown tool: " + name, false
}

// searchRecipients runs the recipient lookup and renders the result for the
// model.
func (a *Agent) searchRecipients(ctx context.Context, conv *Conversation, name string) string {
	candidates, err := a.transfers.Resolve(ctx, name, conv.Auth)
	if err != nil {
		a.logger.Error(ctx, "recipient search failed", err)
		var svcErr *banking.ServiceError
		if errors.As(err, &svcErr) {
			return fmt.Sprintf("recipient search failed with status %d", svcErr.StatusCode)
		}
		return "recipient search is unavailable right now"
	}
	if len(candidates) == 0 {
		return "no recipients matched"
	}
	rendered, err := json.Marshal(candidates)
	if err != nil {
		return "recipient search is unavailable right now"
	}
	return string(rendered)
}

// executePending submits the staged transfer exactly once and clears it.
func (a *Agent) executePending(ctx context.Context, conv *Conversation) string {
	request := *conv.pending
	conv.pending = nil
	conv.pendingDisplay = ""

	result, err := a.transfers.Execute(ctx, conv.SessionID, request, conv.Auth)
	if err != nil {
		// Validation failures: the staged request was malformed, nothing
		// was sent to the bank.
		a.logger.Error(ctx, "staged transfer failed validation", err)
		return a.pack.Phrase(conv.Language, lang.PhraseFailed)
	}

	switch result.Outcome {
	case processor.OutcomeSuccess:
		conv.lastReceipt = result.Receipt
		if conv.notifier != nil {
			if err := conv.notifier.NotifyTransferCompleted(ctx, result.Receipt); err != nil {
				a.logger.Warn(ctx, "completion signal failed")
			}
		}
		return a.pack.Phrase(conv.Language, lang.PhraseSuccess)
	default:
		return a.pack.Phrase(conv.Language, lang.PhraseFailed)
	}
}

// recordTranscript persists one turn. Persistence failures are logged and
// never interrupt the conversation.
func (a *Agent) recordTranscript(ctx context.Context, conv *Conversation, role string, content string) {
	if a.transcripts == nil {
		return
	}
	if _, err := a.transcripts.CreateTranscriptEntry(ctx, conv.SessionID, role, content); err != nil {
		a.logger.Error(ctx, "failed to persist transcript entry", err)
	}
}

func unknownZoneMessage(zone string) string {
	msg := "unknown zone " + zone + "; known zones:"
	for _, z := range temperature.KnownZones() {
		msg += " " + z
	}
	return msg
}
