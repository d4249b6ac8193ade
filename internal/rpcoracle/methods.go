package rpcoracle

import (
	"context"
	"encoding/json"
	"fmt"
	"math/big"

	"github.com/ethdenver2026/relay/internal/types"
)

func hexAddr(a types.Address) string { return a.Hex() }

func hexBig(n *big.Int) string {
	if n == nil || n.Sign() == 0 {
		return "0x0"
	}
	return "0x" + n.Text(16)
}

func hexData(b []byte) string { return "0x" + hexString(b) }

func hexString(b []byte) string {
	const hextable = "0123456789abcdef"
	out := make([]byte, len(b)*2)
	for i, v := range b {
		out[i*2] = hextable[v>>4]
		out[i*2+1] = hextable[v&0x0f]
	}
	return string(out)
}

// CallMsg is the eth_call / eth_estimateGas message shape.
type CallMsg struct {
	From types.Address
	To   types.Address
	Data []byte
}

func (m CallMsg) params() map[string]any {
	return map[string]any{
		"from": hexAddr(m.From),
		"to":   hexAddr(m.To),
		"data": hexData(m.Data),
	}
}

// EthCall performs eth_call against the "latest" block and returns the raw
// return data (or revert data, which arrives as the `result` on some nodes
// and as an RPCApplication error on others — callers must handle both).
func (c *Client) EthCall(ctx context.Context, msg CallMsg) ([]byte, error) {
	raw, err := c.Call(ctx, "eth_call", msg.params(), "latest")
	if err != nil {
		return nil, err
	}
	return parseHexBytes(raw)
}

// EstimateGas performs eth_estimateGas.
func (c *Client) EstimateGas(ctx context.Context, msg CallMsg) (uint64, error) {
	raw, err := c.Call(ctx, "eth_estimateGas", msg.params())
	if err != nil {
		return 0, err
	}
	return parseHexUint64(raw)
}

// GetBalance performs eth_getBalance against the "latest" block.
func (c *Client) GetBalance(ctx context.Context, addr types.Address) (*big.Int, error) {
	raw, err := c.Call(ctx, "eth_getBalance", hexAddr(addr), "latest")
	if err != nil {
		return nil, err
	}
	return parseHexBigInt(raw)
}

// GetTransactionCount performs eth_getTransactionCount at the given block
// tag (the coordinator always passes "pending", spec.md 4.7).
func (c *Client) GetTransactionCount(ctx context.Context, addr types.Address, blockTag string) (uint64, error) {
	raw, err := c.Call(ctx, "eth_getTransactionCount", hexAddr(addr), blockTag)
	if err != nil {
		return 0, err
	}
	return parseHexUint64(raw)
}

// Block is the subset of eth_getBlockByNumber's result the fee planner needs.
type Block struct {
	BaseFeePerGas *big.Int // nil if the node predates EIP-1559 (spec.md 4.6)
}

// GetBlockByNumber performs eth_getBlockByNumber("latest", false).
func (c *Client) GetBlockByNumber(ctx context.Context) (Block, error) {
	raw, err := c.Call(ctx, "eth_getBlockByNumber", "latest", false)
	if err != nil {
		return Block{}, err
	}
	var body struct {
		BaseFeePerGas *string `json:"baseFeePerGas"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return Block{}, &RPCTransport{Reason: fmt.Sprintf("decode block: %v", err)}
	}
	if body.BaseFeePerGas == nil {
		return Block{}, nil
	}
	n, err := parseHexBigInt(json.RawMessage(`"` + *body.BaseFeePerGas + `"`))
	if err != nil {
		return Block{}, err
	}
	return Block{BaseFeePerGas: n}, nil
}

// MaxPriorityFeePerGas performs eth_maxPriorityFeePerGas.
func (c *Client) MaxPriorityFeePerGas(ctx context.Context) (*big.Int, error) {
	raw, err := c.Call(ctx, "eth_maxPriorityFeePerGas")
	if err != nil {
		return nil, err
	}
	return parseHexBigInt(raw)
}

// SendRawTransaction performs eth_sendRawTransaction and returns the
// node-reported transaction hash. Callers should prefer the locally
// computed hash (spec.md 4.2) over this one, except to confirm the node
// accepted the envelope.
func (c *Client) SendRawTransaction(ctx context.Context, rawTx []byte) (types.Hash, error) {
	raw, err := c.Call(ctx, "eth_sendRawTransaction", hexData(rawTx))
	if err != nil {
		return types.Hash{}, err
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return types.Hash{}, &RPCTransport{Reason: fmt.Sprintf("decode tx hash: %v", err)}
	}
	h, err := types.ParseHash(s)
	if err != nil {
		return types.Hash{}, &RPCTransport{Reason: fmt.Sprintf("invalid tx hash: %v", err)}
	}
	return h, nil
}
