package nats

import (
	"fmt"
	"time"
)

// DepositEvent is published to "deposits.{validator}" after a funding
// transaction has been accepted by the RPC node.
type DepositEvent struct {
	// Transaction identifiers
	Signature string `json:"signature"`
	Network   string `json:"network"`

	// Accounts
	Validator      string `json:"validator"`
	DepositAddress string `json:"deposit_address"`
	FromAddress    string `json:"from_address"`
	ProgramID      string `json:"program_id"`

	// Transfer details
	Lamports uint64 `json:"lamports"`
	Bump     uint8  `json:"bump"`

	// Metadata
	SubmittedAt time.Time `json:"submitted_at"`
	PublishedAt time.Time `json:"published_at"`
}

// Subject returns the JetStream subject for the event.
func (e *DepositEvent) Subject() string {
	return fmt.Sprintf("deposits.%s", e.Validator)
}
