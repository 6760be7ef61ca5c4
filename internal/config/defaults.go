package config

import (
	"time"

	"github.com/spf13/viper"

	"github.com/LeJamon/programtest/internal/core/genesis"
	"github.com/LeJamon/programtest/internal/storage/accountstore"
)

// DefaultListen is the JSON-RPC listen address of a local validator.
const DefaultListen = "127.0.0.1:8899"

// setDefaults sets every default value.
func setDefaults(v *viper.Viper) {
	// 1. Server
	v.SetDefault("server.listen", DefaultListen)
	v.SetDefault("server.request_timeout", "30s")
	v.SetDefault("server.shutdown_timeout", "5s")

	// 2. Logging
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "console")

	// 3. Ledger
	g := genesis.DefaultConfig()
	v.SetDefault("genesis.ticks_per_slot", g.TicksPerSlot)
	v.SetDefault("genesis.target_tick_duration", g.TargetTickDuration.String())
	v.SetDefault("genesis.slots_per_epoch", g.SlotsPerEpoch)
	v.SetDefault("genesis.creation_time", g.CreationTime.Format(time.RFC3339))
	v.SetDefault("genesis.lamports_per_signature", g.LamportsPerSignature)
	v.SetDefault("genesis.rent.lamports_per_byte_year", g.Rent.LamportsPerByteYear)
	v.SetDefault("genesis.rent.exemption_threshold", g.Rent.ExemptionThreshold)
	v.SetDefault("genesis.rent.burn_percent", g.Rent.BurnPercent)

	s := accountstore.DefaultConfig()
	v.SetDefault("store.backend", s.Backend)
	v.SetDefault("store.path", s.Path)
	v.SetDefault("store.cache_size", s.CacheSize)
	v.SetDefault("store.compress", s.Compress)
}
