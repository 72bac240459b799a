package amqp

import (
	"encoding/json"
	"time"
)

const (
	OpCreate = "create"
	OpDelete = "delete"
)

// TransactionChangedMessage tells the report worker that a couple's
// transactions changed. It carries identifiers only; the worker re-reads the
// full data from the store before recomputing.
type TransactionChangedMessage struct {
	CoupleID      string    `json:"couple_id"`
	TransactionID int64     `json:"transaction_id"`
	Op            string    `json:"op"`
	Timestamp     time.Time `json:"timestamp"`
}

func NewTransactionChangedMessage(coupleID string, transactionID int64, op string) *TransactionChangedMessage {
	return &TransactionChangedMessage{
		CoupleID:      coupleID,
		TransactionID: transactionID,
		Op:            op,
		Timestamp:     time.Now(),
	}
}

// ToJSON converts the message to JSON bytes.
func (m *TransactionChangedMessage) ToJSON() ([]byte, error) {
	return json.Marshal(m)
}

// TransactionChangedMessageFromJSON creates a message from JSON bytes.
func TransactionChangedMessageFromJSON(data []byte) (*TransactionChangedMessage, error) {
	var msg TransactionChangedMessage
	if err := json.Unmarshal(data, &msg); err != nil {
		return nil, err
	}
	return &msg, nil
}
