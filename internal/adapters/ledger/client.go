// Package ledger implements the gateway client for the external ledger
// network: object reads, dynamic-field enumeration, and transaction
// submission over JSON-RPC, plus the decoding of on-chain event state.
package ledger

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"

	"web3events/internal/domain"
)

type rpcRequest struct {
	JSONRPC string `json:"jsonrpc"`
	ID      int    `json:"id"`
	Method  string `json:"method"`
	Params  []any  `json:"params"`
}

type rpcError struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

type rpcResponse struct {
	Result json.RawMessage `json:"result"`
	Error  *rpcError       `json:"error"`
}

type dynamicFieldPage struct {
	Data        []domain.DynamicFieldInfo `json:"data"`
	NextCursor  string                    `json:"nextCursor"`
	HasNextPage bool                      `json:"hasNextPage"`
}

type client struct {
	httpClient *http.Client
	endpoint   string
}

// NewClient returns a LedgerGateway that speaks JSON-RPC to the given endpoint.
func NewClient(httpClient *http.Client, endpoint string) domain.LedgerGateway {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return &client{httpClient: httpClient, endpoint: endpoint}
}

func (c *client) call(ctx context.Context, method string, params []any, out any) error {
	payload, err := json.Marshal(rpcRequest{JSONRPC: "2.0", ID: 1, Method: method, Params: params})
	if err != nil {
		return fmt.Errorf("failed to encode rpc request: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to reach ledger rpc: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("ledger rpc returned status: %d", resp.StatusCode)
	}

	var rpcResp rpcResponse
	if err := json.NewDecoder(resp.Body).Decode(&rpcResp); err != nil {
		return fmt.Errorf("failed to decode rpc response: %w", err)
	}
	if rpcResp.Error != nil {
		return fmt.Errorf("ledger rpc error %d: %s", rpcResp.Error.Code, rpcResp.Error.Message)
	}
	if out != nil {
		if err := json.Unmarshal(rpcResp.Result, out); err != nil {
			return fmt.Errorf("failed to decode rpc result: %w", err)
		}
	}
	return nil
}

func (c *client) GetObject(ctx context.Context, objectID string) (*domain.LedgerObject, error) {
	var obj domain.LedgerObject
	if err := c.call(ctx, "ledger_getObject", []any{objectID}, &obj); err != nil {
		return nil, err
	}
	if obj.ID == "" {
		obj.ID = objectID
	}
	return &obj, nil
}

func (c *client) GetDynamicFields(ctx context.Context, parentID string) ([]domain.DynamicFieldInfo, error) {
	var all []domain.DynamicFieldInfo
	cursor := ""
	for {
		params := []any{parentID}
		if cursor != "" {
			params = append(params, cursor)
		}
		var page dynamicFieldPage
		if err := c.call(ctx, "ledger_getDynamicFields", params, &page); err != nil {
			return nil, err
		}
		all = append(all, page.Data...)
		if !page.HasNextPage || page.NextCursor == "" {
			break
		}
		cursor = page.NextCursor
	}
	return all, nil
}

func (c *client) ExecuteTransaction(ctx context.Context, tx *domain.TransactionRequest) (*domain.TransactionResult, error) {
	var result domain.TransactionResult
	if err := c.call(ctx, "ledger_executeTransaction", []any{tx}, &result); err != nil {
		return nil, err
	}
	return &result, nil
}
