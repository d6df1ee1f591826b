package agent

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"voicebank-server/internal/clients/banking"
	"voicebank-server/internal/intent"
	"voicebank-server/internal/lang"
	"voicebank-server/internal/observability"
	"voicebank-server/internal/temperature"
	"voicebank-server/internal/transfer/processor"

	"github.com/google/uuid"
	"github.com/openai/openai-go"
)

// fakeModel replays scripted completions and captures each request.
type fakeModel struct {
	responses []*openai.ChatCompletion
	requests  []openai.ChatCompletionNewParams
	err       error
}

func (f *fakeModel) Complete(_ context.Context, params openai.ChatCompletionNewParams) (*openai.ChatCompletion, error) {
	f.requests = append(f.requests, params)
	if f.err != nil {
		return nil, f.err
	}
	if len(f.responses) == 0 {
		return nil, errors.New("fakeModel: no scripted response left")
	}
	resp := f.responses[0]
	f.responses = f.responses[1:]
	return resp, nil
}

func textResponse(content string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{Content: content}},
		},
	}
}

func toolResponse(callID, name, arguments string) *openai.ChatCompletion {
	return &openai.ChatCompletion{
		Choices: []openai.ChatCompletionChoice{
			{Message: openai.ChatCompletionMessage{
				ToolCalls: []openai.ChatCompletionMessageToolCall{
					{
						ID: callID,
						Function: openai.ChatCompletionMessageToolCallFunction{
							Name:      name,
							Arguments: arguments,
						},
					},
				},
			}},
		},
	}
}

type fakeTransfers struct {
	candidates []banking.RecipientCandidate
	resolveErr error

	executed    bool
	executedReq banking.TransferRequest
	result      processor.TransferResult
	executeErr  error
}

func (f *fakeTransfers) Resolve(_ context.Context, name string, _ banking.SessionAuth) ([]banking.RecipientCandidate, error) {
	return f.candidates, f.resolveErr
}

func (f *fakeTransfers) Execute(_ context.Context, _ uuid.UUID, request banking.TransferRequest, _ banking.SessionAuth) (processor.TransferResult, error) {
	f.executed = true
	f.executedReq = request
	return f.result, f.executeErr
}

type fakeNotifier struct {
	receipt json.RawMessage
	calls   int
}

func (f *fakeNotifier) NotifyTransferCompleted(_ context.Context, receipt json.RawMessage) error {
	f.calls++
	f.receipt = receipt
	return nil
}

func newTestAgent(model ChatModel, transfers TransferService) *Agent {
	pack := lang.NewPack()
	return New(model, pack, intent.New(pack, intent.CancelWins), transfers,
		temperature.NewMemoryStore(), nil, observability.NewLogger())
}

func TestHandleUtterance_PlainReply(t *testing.T) {
	model := &fakeModel{responses: []*openai.ChatCompletion{textResponse("How much?")}}
	a := newTestAgent(model, &fakeTransfers{})
	conv := a.NewConversation(uuid.New(), lang.English, banking.SessionAuth{}, &fakeNotifier{})

	reply, err := a.HandleUtterance(context.Background(), conv, "I want to send money")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply != "How much?" {
		t.Errorf("unexpected reply %q", reply)
	}
	if len(model.requests) != 1 {
		t.Fatalf("expected one model round, got %d", len(model.requests))
	}
	if len(model.requests[0].Tools) != 5 {
		t.Errorf("expected 5 tools advertised, got %d", len(model.requests[0].Tools))
	}
}

func TestHandleUtterance_RecipientSearchToolLoop(t *testing.T) {
	model := &fakeModel{responses: []*openai.ChatCompletion{
		toolResponse("call1", ToolGetSimilarRecipients, `{"name":"John"}`),
		textResponse("I found John Doe. How much?"),
	}}
	transfers := &fakeTransfers{candidates: []banking.RecipientCandidate{{ID: "r1", DisplayName: "John Doe"}}}
	a := newTestAgent(model, transfers)
	conv := a.NewConversation(uuid.New(), lang.English, banking.SessionAuth{AccessToken: "tok"}, &fakeNotifier{})

	reply, err := a.HandleUtterance(context.Background(), conv, "Send money to John")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply != "I found John Doe. How much?" {
		t.Errorf("unexpected reply %q", reply)
	}
	if len(model.requests) != 2 {
		t.Fatalf("expected two model rounds, got %d", len(model.requests))
	}
}

func TestHandleUtterance_MakeTransferStagesWithoutExecuting(t *testing.T) {
	model := &fakeModel{responses: []*openai.ChatCompletion{
		toolResponse("call1", ToolMakeTransfer, `{"amount":"50","recipient_id":"r1","recipient_name":"John Doe"}`),
	}}
	transfers := &fakeTransfers{}
	a := newTestAgent(model, transfers)
	conv := a.NewConversation(uuid.New(), lang.English, banking.SessionAuth{}, &fakeNotifier{})

	reply, err := a.HandleUtterance(context.Background(), conv, "Send 50 to John Doe")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply != "50 to John Doe. Confirm?" {
		t.Errorf("unexpected confirmation prompt %q", reply)
	}
	if transfers.executed {
		t.Error("transfer must not execute before spoken confirmation")
	}
	if conv.pending == nil {
		t.Fatal("expected a staged transfer")
	}
}

func TestHandleUtterance_ConfirmExecutesStagedTransfer(t *testing.T) {
	receipt := json.RawMessage(`{"id":"tx1","status":"completed"}`)
	model := &fakeModel{responses: []*openai.ChatCompletion{
		toolResponse("call1", ToolMakeTransfer, `{"amount":"50","recipient_id":"r1","recipient_name":"John Doe"}`),
	}}
	transfers := &fakeTransfers{result: processor.TransferResult{Outcome: processor.OutcomeSuccess, Receipt: receipt}}
	notifier := &fakeNotifier{}
	a := newTestAgent(model, transfers)
	conv := a.NewConversation(uuid.New(), lang.English, banking.SessionAuth{}, notifier)

	if _, err := a.HandleUtterance(context.Background(), conv, "Send 50 to John Doe"); err != nil {
		t.Fatal(err)
	}

	reply, err := a.HandleUtterance(context.Background(), conv, "yes, go ahead")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply != "Transfer successful!" {
		t.Errorf("unexpected reply %q", reply)
	}
	if !transfers.executed {
		t.Fatal("expected transfer to execute on confirmation")
	}
	if transfers.executedReq.Amount != "50" || transfers.executedReq.RecipientID != "r1" {
		t.Errorf("unexpected executed request %+v", transfers.executedReq)
	}
	if notifier.calls != 1 || string(notifier.receipt) != string(receipt) {
		t.Errorf("expected one completion signal with the receipt, got %d", notifier.calls)
	}
	if conv.pending != nil {
		t.Error("expected staged transfer to be cleared")
	}
}

func TestHandleUtterance_CancelClearsStagedTransfer(t *testing.T) {
	model := &fakeModel{responses: []*openai.ChatCompletion{
		toolResponse("call1", ToolMakeTransfer, `{"amount":"50","recipient_id":"r1"}`),
	}}
	transfers := &fakeTransfers{}
	a := newTestAgent(model, transfers)
	conv := a.NewConversation(uuid.New(), lang.English, banking.SessionAuth{}, &fakeNotifier{})

	if _, err := a.HandleUtterance(context.Background(), conv, "Send 50 to r1"); err != nil {
		t.Fatal(err)
	}

	reply, err := a.HandleUtterance(context.Background(), conv, "no, cancel that")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply != "Cancelled." {
		t.Errorf("unexpected reply %q", reply)
	}
	if transfers.executed {
		t.Error("cancelled transfer must not execute")
	}
	if conv.pending != nil {
		t.Error("expected staged transfer to be cleared")
	}
}

func TestHandleUtterance_UnclearKeepsTransferStaged(t *testing.T) {
	model := &fakeModel{responses: []*openai.ChatCompletion{
		toolResponse("call1", ToolMakeTransfer, `{"amount":"50","recipient_id":"r1","recipient_name":"John"}`),
		textResponse("50 to John. Should I send it?"),
	}}
	transfers := &fakeTransfers{}
	a := newTestAgent(model, transfers)
	conv := a.NewConversation(uuid.New(), lang.English, banking.SessionAuth{}, &fakeNotifier{})

	if _, err := a.HandleUtterance(context.Background(), conv, "Send 50 to John"); err != nil {
		t.Fatal(err)
	}

	reply, err := a.HandleUtterance(context.Background(), conv, "how is the weather")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply != "50 to John. Should I send it?" {
		t.Errorf("unexpected reply %q", reply)
	}
	if conv.pending == nil {
		t.Error("unclear utterance must keep the transfer staged")
	}
	if transfers.executed {
		t.Error("unclear utterance must not execute the transfer")
	}
}

func TestHandleUtterance_RemoteRejectionSpeaksFailure(t *testing.T) {
	model := &fakeModel{responses: []*openai.ChatCompletion{
		toolResponse("call1", ToolMakeTransfer, `{"amount":"50","recipient_id":"r1"}`),
	}}
	transfers := &fakeTransfers{result: processor.TransferResult{Outcome: processor.OutcomeFailure, StatusCode: 422}}
	notifier := &fakeNotifier{}
	a := newTestAgent(model, transfers)
	conv := a.NewConversation(uuid.New(), lang.English, banking.SessionAuth{}, notifier)

	if _, err := a.HandleUtterance(context.Background(), conv, "Send 50"); err != nil {
		t.Fatal(err)
	}

	reply, err := a.HandleUtterance(context.Background(), conv, "yes")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply != "Failed. Try again?" {
		t.Errorf("unexpected reply %q", reply)
	}
	if notifier.calls != 0 {
		t.Error("failed transfer must not signal completion")
	}
}

func TestHandleUtterance_ValidationErrorSpeaksFailure(t *testing.T) {
	model := &fakeModel{responses: []*openai.ChatCompletion{
		toolResponse("call1", ToolMakeTransfer, `{"amount":"50"}`),
	}}
	transfers := &fakeTransfers{executeErr: processor.ErrNoDestination}
	a := newTestAgent(model, transfers)
	conv := a.NewConversation(uuid.New(), lang.English, banking.SessionAuth{}, &fakeNotifier{})

	if _, err := a.HandleUtterance(context.Background(), conv, "Send 50"); err != nil {
		t.Fatal(err)
	}

	reply, err := a.HandleUtterance(context.Background(), conv, "yes")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply != "Failed. Try again?" {
		t.Errorf("unexpected reply %q", reply)
	}
}

func TestHandleUtterance_ConfirmInOtherLanguages(t *testing.T) {
	cases := []struct {
		language lang.Language
		confirm  string
	}{
		{lang.French, "oui"},
		{lang.Pidgin, "na so"},
		{lang.Yoruba, "bẹẹni"},
	}
	for _, tc := range cases {
		model := &fakeModel{responses: []*openai.ChatCompletion{
			toolResponse("call1", ToolMakeTransfer, `{"amount":"50","recipient_id":"r1"}`),
		}}
		transfers := &fakeTransfers{result: processor.TransferResult{Outcome: processor.OutcomeSuccess, Receipt: json.RawMessage(`{}`)}}
		a := newTestAgent(model, transfers)
		conv := a.NewConversation(uuid.New(), tc.language, banking.SessionAuth{}, &fakeNotifier{})

		if _, err := a.HandleUtterance(context.Background(), conv, "transfer"); err != nil {
			t.Fatal(err)
		}
		if _, err := a.HandleUtterance(context.Background(), conv, tc.confirm); err != nil {
			t.Fatal(err)
		}
		if !transfers.executed {
			t.Errorf("%s: expected %q to confirm the transfer", tc.language, tc.confirm)
		}
	}
}

func TestHandleUtterance_UnknownToolIsReportedToModel(t *testing.T) {
	model := &fakeModel{responses: []*openai.ChatCompletion{
		toolResponse("call1", "delete_account", `{}`),
		textResponse("Sorry, I can't do that."),
	}}
	a := newTestAgent(model, &fakeTransfers{})
	conv := a.NewConversation(uuid.New(), lang.English, banking.SessionAuth{}, &fakeNotifier{})

	reply, err := a.HandleUtterance(context.Background(), conv, "delete my account")
	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if reply != "Sorry, I can't do that." {
		t.Errorf("unexpected reply %q", reply)
	}
}

func TestHandleUtterance_SignalWithoutReceipt(t *testing.T) {
	model := &fakeModel{responses: []*openai.ChatCompletion{
		toolResponse("call1", ToolSignalTransferSuccess, `{}`),
		textResponse("Nothing to signal."),
	}}
	notifier := &fakeNotifier{}
	a := newTestAgent(model, &fakeTransfers{})
	conv := a.NewConversation(uuid.New(), lang.English, banking.SessionAuth{}, notifier)

	if _, err := a.HandleUtterance(context.Background(), conv, "signal success"); err != nil {
		t.Fatal(err)
	}
	if notifier.calls != 0 {
		t.Error("no receipt means no completion signal")
	}
}

func TestHandleUtterance_TemperatureTools(t *testing.T) {
	model := &fakeModel{responses: []*openai.ChatCompletion{
		toolResponse("call1", ToolSetTemperature, `{"zone":"bedroom","temperature":18}`),
		textResponse("Bedroom set to 18."),
		toolResponse("call2", ToolGetTemperature, `{"zone":"bedroom"}`),
		textResponse("Bedroom is at 18 degrees."),
	}}
	a := newTestAgent(model, &fakeTransfers{})
	conv := a.NewConversation(uuid.New(), lang.English, banking.SessionAuth{}, &fakeNotifier{})

	if _, err := a.HandleUtterance(context.Background(), conv, "set bedroom to 18"); err != nil {
		t.Fatal(err)
	}
	reply, err := a.HandleUtterance(context.Background(), conv, "how warm is the bedroom")
	if err != nil {
		t.Fatal(err)
	}
	if reply != "Bedroom is at 18 degrees." {
		t.Errorf("unexpected reply %q", reply)
	}
}

func TestHandleUtterance_ModelErrorPropagates(t *testing.T) {
	model := &fakeModel{err: errors.New("rate limited")}
	a := newTestAgent(model, &fakeTransfers{})
	conv := a.NewConversation(uuid.New(), lang.English, banking.SessionAuth{}, &fakeNotifier{})

	if _, err := a.HandleUtterance(context.Background(), conv, "hello"); err == nil {
		t.Fatal("expected model error to propagate")
	}
}

func TestGreeting(t *testing.T) {
	a := newTestAgent(&fakeModel{}, &fakeTransfers{})
	conv := a.NewConversation(uuid.New(), lang.French, banking.SessionAuth{}, &fakeNotifier{})
	if got := a.Greeting(conv); got == "" {
		t.Error("expected a greeting")
	}
}
