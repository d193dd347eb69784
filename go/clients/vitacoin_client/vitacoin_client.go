package vitacoin_client

import (
	"github.com/vitacoin/vitacoin-go/go/clients"
)

// VitacoinClient is the typed client for the Vitacoin rewards backend. All
// methods except Login and Register require a bearer token, attached once via
// SetBearerToken and sent on every subsequent request.
type VitacoinClient struct {
	*clients.BaseClient
}

func NewVitacoinClient(baseURL string) *VitacoinClient {
	return &VitacoinClient{
		BaseClient: clients.NewBaseClient(baseURL),
	}
}
