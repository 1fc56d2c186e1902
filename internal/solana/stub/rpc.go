package stub

import (
	"context"
	"sync"

	"rent-reclaim-bot/internal/solana"
)

// RPCClient implements solana.RPCClient for testing.
// Accounts are keyed by owner; the owner is taken from the memcmp filter.
type RPCClient struct {
	mu       sync.Mutex
	Accounts map[string][]solana.TokenAccount
	Err      error
	Slot     int64

	calls       int
	lastProgram string
	lastFilters []solana.ProgramAccountFilter
}

// NewRPCClient creates a new stub RPC client.
func NewRPCClient() *RPCClient {
	return &RPCClient{
		Accounts: make(map[string][]solana.TokenAccount),
	}
}

// GetProgramAccounts returns the accounts registered for the owner named in the memcmp filter.
func (c *RPCClient) GetProgramAccounts(_ context.Context, programID string, filters []solana.ProgramAccountFilter) ([]solana.TokenAccount, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.calls++
	c.lastProgram = programID
	c.lastFilters = filters

	if c.Err != nil {
		return nil, c.Err
	}

	for _, f := range filters {
		if f.Memcmp != nil {
			return c.Accounts[f.Memcmp.Bytes], nil
		}
	}
	return nil, nil
}

// GetSlot returns the configured slot.
func (c *RPCClient) GetSlot(_ context.Context) (int64, error) {
	if c.Err != nil {
		return 0, c.Err
	}
	return c.Slot, nil
}

// AddAccounts registers token accounts for an owner address.
func (c *RPCClient) AddAccounts(owner string, accounts ...solana.TokenAccount) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.Accounts[owner] = append(c.Accounts[owner], accounts...)
}

// Calls returns the number of GetProgramAccounts invocations.
func (c *RPCClient) Calls() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

// LastRequest returns the program ID and filters of the most recent call.
func (c *RPCClient) LastRequest() (string, []solana.ProgramAccountFilter) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.lastProgram, c.lastFilters
}

var _ solana.RPCClient = (*RPCClient)(nil)
