package agent

import (
	"strings"

	"voicebank-server/internal/clients/banking"

	"github.com/openai/openai-go"
)

// Tool names exposed to the model. The set is closed: a tool call with any
// other name is answered with an error message instead of being dispatched.
const (
	ToolGetSimilarRecipients  = "get_similar_recipients"
	ToolMakeTransfer          = "make_transfer"
	ToolSignalTransferSuccess = "signal_transfer_success"
	ToolGetTemperature        = "get_temperature"
	ToolSetTemperature        = "set_temperature"
)

// searchArgs are the arguments of get_similar_recipients.
type searchArgs struct {
	Name string `json:"name"`
}

// transferArgs are the arguments of make_transfer. RecipientName is only
// used to phrase the spoken confirmation; the banking API never sees it.
type transferArgs struct {
	Amount        string `json:"amount"`
	RecipientID   string `json:"recipient_id"`
	RecipientName string `json:"recipient_name"`
	ToAccountID   string `json:"to_account_id"`
	Description   string `json:"description"`
	Category      string `json:"category"`
	Reference     string `json:"reference"`
	FromAccountID string `json:"from_account_id"`
	ScheduledAt   string `json:"scheduled_at"`
}

func (a transferArgs) request() banking.TransferRequest {
	return banking.TransferRequest{
		Amount:        a.Amount,
		RecipientID:   a.RecipientID,
		ToAccountID:   a.ToAccountID,
		Description:   a.Description,
		Category:      a.Category,
		Reference:     a.Reference,
		FromAccountID: a.FromAccountID,
		ScheduledAt:   a.ScheduledAt,
	}
}

// displayName returns what to call the destination out loud.
func (a transferArgs) displayName() string {
	if name := strings.TrimSpace(a.RecipientName); name != "" {
		return name
	}
	if strings.TrimSpace(a.ToAccountID) != "" {
		return "account " + a.ToAccountID
	}
	return a.RecipientID
}

// temperatureArgs are the arguments of get_temperature and set_temperature.
type temperatureArgs struct {
	Zone        string `json:"zone"`
	Temperature int    `json:"temperature"`
}

// toolDefinitions returns the closed tool set advertised to the model.
func toolDefinitions() []openai.ChatCompletionToolParam {
	return []openai.ChatCompletionToolParam{
		{
			Function: openai.FunctionDefinitionParam{
				Name:        ToolGetSimilarRecipients,
				Description: openai.String("Search the user's saved recipients by name. Returns a JSON list of candidates with id and display_name."),
				Parameters: openai.FunctionParameters{
					"type": "object",
					"properties": map[string]any{
						"name": map[string]any{
							"type":        "string",
							"description": "Recipient name as spoken by the user",
						},
					},
					"required": []string{"name"},
				},
			},
		},
		{
			Function: openai.FunctionDefinitionParam{
				Name:        ToolMakeTransfer,
				Description: openai.String("Stage a money transfer for user confirmation. Provide exactly one of recipient_id or to_account_id. The transfer executes only after the user confirms out loud."),
				Parameters: openai.FunctionParameters{
					"type": "object",
					"properties": map[string]any{
						"amount": map[string]any{
							"type":        "string",
							"description": "Transfer amount, digits only",
						},
						"recipient_id": map[string]any{
							"type":        "string",
							"description": "Recipient id from get_similar_recipients",
						},
						"recipient_name": map[string]any{
							"type":        "string",
							"description": "Recipient display name, used for the spoken confirmation",
						},
						"to_account_id": map[string]any{
							"type":        "string",
							"description": "Destination account id for own-account transfers",
						},
						"description": map[string]any{
							"type": "string",
						},
						"category": map[string]any{
							"type": "string",
						},
						"reference": map[string]any{
							"type": "string",
						},
						"from_account_id": map[string]any{
							"type": "string",
						},
						"scheduled_at": map[string]any{
							"type":        "string",
							"description": "ISO-8601 timestamp for a scheduled transfer, empty for immediate",
						},
					},
					"required": []string{"amount"},
				},
			},
		},
		{
			Function: openai.FunctionDefinitionParam{
				Name:        ToolSignalTransferSuccess,
				Description: openai.String("Notify the user's app that the last transfer completed."),
				Parameters: openai.FunctionParameters{
					"type":       "object",
					"properties": map[string]any{},
				},
			},
		},
		{
			Function: openai.FunctionDefinitionParam{
				Name:        ToolGetTemperature,
				Description: openai.String("Read the current temperature of a home zone."),
				Parameters: openai.FunctionParameters{
					"type": "object",
					"properties": map[string]any{
						"zone": map[string]any{
							"type":        "string",
							"description": "One of: living_room, bedroom, kitchen, bathroom, office",
						},
					},
					"required": []string{"zone"},
				},
			},
		},
		{
			Function: openai.FunctionDefinitionParam{
				Name:        ToolSetTemperature,
				Description: openai.String("Set the target temperature of a home zone in degrees Celsius."),
				Parameters: openai.FunctionParameters{
					"type": "object",
					"properties": map[string]any{
						"zone": map[string]any{
							"type":        "string",
							"description": "One of: living_room, bedroom, kitchen, bathroom, office",
						},
						"temperature": map[string]any{
							"type": "integer",
						},
					},
					"required": []string{"zone", "temperature"},
				},
			},
		},
	}
}
