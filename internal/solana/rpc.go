package solana

import "context"

// RPCClient defines the subset of the Solana JSON-RPC HTTP interface used by the scanner.
type RPCClient interface {
	// GetProgramAccounts returns jsonParsed token accounts owned by programID that match all filters.
	GetProgramAccounts(ctx context.Context, programID string, filters []ProgramAccountFilter) ([]TokenAccount, error)

	// GetSlot returns the current slot at the client's commitment.
	GetSlot(ctx context.Context) (int64, error)
}

// TokenAccount is an SPL token account as returned by getProgramAccounts with jsonParsed encoding.
type TokenAccount struct {
	Pubkey   string
	Lamports uint64
	Mint     string
	Owner    string
	Amount   string // raw base units, decimal string
	Decimals int
	UIAmount *float64 // nil when the node omits uiAmount
}

// IsEmpty reports whether the displayed token balance is exactly zero.
func (a TokenAccount) IsEmpty() bool {
	return a.UIAmount != nil && *a.UIAmount == 0
}
