package payments

import "context"

type IntentStatus string

const (
	IntentStatusSucceeded      IntentStatus = "succeeded"
	IntentStatusProcessing     IntentStatus = "processing"
	IntentStatusRequiresAction IntentStatus = "requires_action"
	IntentStatusCanceled       IntentStatus = "canceled"
)

// Intent is the processor-side record of an attempted charge. ClientSecret is
// only populated on creation.
type Intent struct {
	ID           string
	ClientSecret string
	Status       IntentStatus
}

// Processor abstracts the external payment processor. CreateIntent is not
// safe to retry (it can mint duplicate intents); RetrieveIntent is read-only
// and retryable.
type Processor interface {
	CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (*Intent, error)
	RetrieveIntent(ctx context.Context, id string) (*Intent, error)
}
