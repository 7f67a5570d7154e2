package domain

import "context"

// LedgerObject is the decoded content of an on-chain object. Fields is the raw
// JSON field map as returned by the gateway; table entries may nest the actual
// payload under a "value" wrapper.
type LedgerObject struct {
	ID      string         `json:"objectId"`
	Version uint64         `json:"version"`
	Type    string         `json:"type"`
	Fields  map[string]any `json:"fields"`
}

// DynamicFieldInfo describes one entry of an on-chain table when enumerating
// its dynamic fields. ObjectID is the id of the entry object holding the value.
type DynamicFieldInfo struct {
	ObjectID string `json:"objectId"`
	Name     any    `json:"name"`
}

// TransactionRequest describes a transaction to submit to the ledger. Payment
// is always set for registration calls: priced events carry the unit price,
// free events carry an explicit zero value rather than no payment at all.
type TransactionRequest struct {
	Sender   string  `json:"sender"`
	Function string  `json:"function"`
	Args     []any   `json:"args"`
	Payment  *uint64 `json:"payment,omitempty"`
}

// TransactionResult is the digest/effects-status pair returned on submission.
type TransactionResult struct {
	Digest string `json:"digest"`
	Status string `json:"status"`
	Error  string `json:"error,omitempty"`
}

// Succeeded reports whether the transaction effects committed successfully.
func (r *TransactionResult) Succeeded() bool {
	return r != nil && r.Status == "success"
}

// LedgerGateway is the read/submit capability of the external ledger network.
// All calls are network-bound and honor context cancellation.
type LedgerGateway interface {
	GetObject(ctx context.Context, objectID string) (*LedgerObject, error)
	GetDynamicFields(ctx context.Context, parentID string) ([]DynamicFieldInfo, error)
	ExecuteTransaction(ctx context.Context, tx *TransactionRequest) (*TransactionResult, error)
}
