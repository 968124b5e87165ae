package jobqueue

import (
	"context"
	"errors"
	"sync"

	"github.com/thumbworks/freshbot/internal/pkg/freshbooks"
)

// ProviderAPI is the slice of the FreshBooks client the job processors call.
// *freshbooks.Client satisfies it.
type ProviderAPI interface {
	CreateWebhook(ctx context.Context, accountID, accessToken string, event freshbooks.EventType, callbackURI string) (*freshbooks.NewCallback, error)
	FetchInvoices(ctx context.Context, accountID, accessToken string, page int) (*freshbooks.InvoicesMetaData, error)
}

var (
	providerMu  sync.RWMutex
	providerAPI ProviderAPI
)

// SetProviderAPI installs the provider client used by job processors. Called
// once during startup before the queue starts.
func SetProviderAPI(api ProviderAPI) {
	providerMu.Lock()
	defer providerMu.Unlock()
	providerAPI = api
}

func getProviderAPI() (ProviderAPI, error) {
	providerMu.RLock()
	defer providerMu.RUnlock()
	if providerAPI == nil {
		return nil, errors.New("provider API not configured")
	}
	return providerAPI, nil
}
