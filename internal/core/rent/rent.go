package rent

// Rent constants matching the defaults of a freshly created cluster.
const (
	// AccountStorageOverhead is the number of bytes charged for every account
	// in addition to its data.
	AccountStorageOverhead uint64 = 128

	// DefaultLamportsPerByteYear is the default rental rate.
	DefaultLamportsPerByteYear uint64 = 1_000_000_000 / 100 * 365 / (1024 * 1024)

	// DefaultExemptionThreshold is the number of years of rent an account
	// must hold to be exempt from collection.
	DefaultExemptionThreshold float64 = 2.0

	// DefaultBurnPercent is the share of collected rent that is burned.
	DefaultBurnPercent uint8 = 50
)

// Rent holds the rent parameters of a ledger.
type Rent struct {
	LamportsPerByteYear uint64  `mapstructure:"lamports_per_byte_year"`
	ExemptionThreshold  float64 `mapstructure:"exemption_threshold"`
	BurnPercent         uint8   `mapstructure:"burn_percent"`
}

// Default returns the default rent configuration.
func Default() Rent {
	return Rent{
		LamportsPerByteYear: DefaultLamportsPerByteYear,
		ExemptionThreshold:  DefaultExemptionThreshold,
		BurnPercent:         DefaultBurnPercent,
	}
}

// MinimumBalance returns the minimum balance an account holding dataLen
// bytes needs to be rent exempt.
func (r Rent) MinimumBalance(dataLen int) uint64 {
	bytes := AccountStorageOverhead + uint64(dataLen)
	return uint64(float64(bytes*r.LamportsPerByteYear) * r.ExemptionThreshold)
}

// IsExempt reports whether lamports covers the exemption minimum for dataLen bytes.
func (r Rent) IsExempt(lamports uint64, dataLen int) bool {
	return lamports >= r.MinimumBalance(dataLen)
}
