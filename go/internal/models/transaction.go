package models

import "time"

// TransactionType marks a ledger entry as a credit or a debit.
type TransactionType string

const (
	TransactionCredit TransactionType = "credit"
	TransactionDebit  TransactionType = "debit"
)

// Transaction is one entry of the user's coin ledger, owned by the server.
type Transaction struct {
	ID          string          `json:"id"`
	UserID      string          `json:"user_id"`
	Amount      int             `json:"amount"`
	Type        TransactionType `json:"type"`
	RuleKey     string          `json:"rule_key"`
	Description string          `json:"description"`
	TaskID      *string         `json:"task_id,omitempty"`
	CreatedAt   time.Time       `json:"created_at"`
}
