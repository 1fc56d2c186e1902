package solana

import "github.com/mr-tron/base58"

// ProgramAccountFilter is a server-side getProgramAccounts filter.
// Exactly one of DataSize or Memcmp is set.
type ProgramAccountFilter struct {
	DataSize *uint64
	Memcmp   *Memcmp
}

// Memcmp matches account data at Offset against base58 encoded Bytes.
type Memcmp struct {
	Offset uint64
	Bytes  string
}

// DataSizeFilter matches accounts whose data length equals size.
func DataSizeFilter(size uint64) ProgramAccountFilter {
	return ProgramAccountFilter{DataSize: &size}
}

// MemcmpFilter matches accounts whose data at offset equals b.
func MemcmpFilter(offset uint64, b []byte) ProgramAccountFilter {
	return ProgramAccountFilter{Memcmp: &Memcmp{Offset: offset, Bytes: base58.Encode(b)}}
}

func (f ProgramAccountFilter) params() map[string]interface{} {
	switch {
	case f.DataSize != nil:
		return map[string]interface{}{"dataSize": *f.DataSize}
	case f.Memcmp != nil:
		return map[string]interface{}{
			"memcmp": map[string]interface{}{
				"offset": f.Memcmp.Offset,
				"bytes":  f.Memcmp.Bytes,
			},
		}
	default:
		return nil
	}
}
