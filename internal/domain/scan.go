package domain

// ScanOutcome classifies a finished wallet scan.
type ScanOutcome string

// Scan outcome constants
const (
	ScanOutcomeInvalidAddress ScanOutcome = "invalid_address"
	ScanOutcomeChainError     ScanOutcome = "chain_error"
	ScanOutcomeClean          ScanOutcome = "clean"
	ScanOutcomeReclaimable    ScanOutcome = "reclaimable"
)

// Address kind constants
const (
	AddressKindWallet   = "wallet"    // ed25519 point
	AddressKindOffCurve = "off_curve" // program derived
)

// ScanRecord is an anonymous audit row for one scan.
// It carries no user identifier and no wallet address.
// Corresponds to scan_log table in PostgreSQL.
type ScanRecord struct {
	ScanID        string      // PRIMARY KEY, UUID
	ScannedAt     int64       // Unix timestamp in milliseconds
	Outcome       ScanOutcome // clean | reclaimable | chain_error
	AddressKind   string      // wallet | off_curve
	TotalAccounts int         // token accounts returned by the chain query
	EmptyAccounts int         // accounts with zero displayed balance
	NetSOL        float64     // fee-adjusted reclaimable SOL
	PriceUSD      float64     // price used for NetUSD (0 if not looked up)
	NetUSD        float64     // NetSOL * PriceUSD
	DurationMs    int64       // scan wall time
	CreatedAt     int64       // record creation timestamp (ms)
}

// ScanSummary aggregates scan records over a time range.
type ScanSummary struct {
	Scans         int
	Reclaimable   int
	Clean         int
	ChainErrors   int
	EmptyAccounts int
	NetSOL        float64
}
