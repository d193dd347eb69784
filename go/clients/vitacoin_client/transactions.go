package vitacoin_client

import (
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"

	"github.com/vitacoin/vitacoin-go/go/internal/models"
)

// Transactions fetches a page of the user's coin ledger, most recent first.
func (c *VitacoinClient) Transactions(limit, offset int) ([]models.Transaction, error) {
	endpoint := TransactionsEndpoint
	query := url.Values{}
	if limit > 0 {
		query.Set("limit", strconv.Itoa(limit))
	}
	if offset > 0 {
		query.Set("offset", strconv.Itoa(offset))
	}
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	body, err := c.Get(endpoint)
	if err != nil {
		return nil, fmt.Errorf("failed to get transactions: %w", err)
	}

	var transactions []models.Transaction
	if err := json.Unmarshal(body, &transactions); err != nil {
		return nil, fmt.Errorf("failed to unmarshal response: %w, raw response: %s", err, string(body))
	}

	return transactions, nil
}
