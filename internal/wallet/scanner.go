package wallet

import (
	"context"
	"fmt"

	"github.com/duke-git/lancet/v2/slice"
	solanago "github.com/gagliardetto/solana-go"

	"rent-reclaim-bot/internal/solana"
)

const (
	// TokenAccountSize is the data length of an SPL token account.
	TokenAccountSize = 165

	// OwnerOffset is the byte offset of the owner field in SPL token account data.
	OwnerOffset = 32
)

// TokenProgramID is the SPL Token program.
var TokenProgramID = solanago.TokenProgramID.String()

// ScanResult is the outcome of one wallet scan.
type ScanResult struct {
	EmptyAccounts int
	TotalAccounts int
}

// ChainQueryError wraps any failure of the token account query.
type ChainQueryError struct {
	Err error
}

func (e *ChainQueryError) Error() string {
	return fmt.Sprintf("chain query failed: %v", e.Err)
}

func (e *ChainQueryError) Unwrap() error {
	return e.Err
}

// Scanner counts zero-balance token accounts owned by a wallet.
type Scanner struct {
	rpc solana.RPCClient
}

// NewScanner creates a scanner backed by rpc.
func NewScanner(rpc solana.RPCClient) *Scanner {
	return &Scanner{rpc: rpc}
}

// CountEmptyAccounts issues a single getProgramAccounts query for token accounts owned by addr
// and counts those whose displayed balance is exactly zero.
// Any failure yields a *ChainQueryError and no partial result.
func (s *Scanner) CountEmptyAccounts(ctx context.Context, addr Address) (ScanResult, error) {
	filters := []solana.ProgramAccountFilter{
		solana.DataSizeFilter(TokenAccountSize),
		solana.MemcmpFilter(OwnerOffset, addr.Bytes()),
	}

	accounts, err := s.rpc.GetProgramAccounts(ctx, TokenProgramID, filters)
	if err != nil {
		return ScanResult{}, &ChainQueryError{Err: err}
	}

	empty := slice.Filter(accounts, func(_ int, acc solana.TokenAccount) bool {
		return acc.IsEmpty()
	})

	return ScanResult{
		EmptyAccounts: len(empty),
		TotalAccounts: len(accounts),
	}, nil
}
