package rpc

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"sync"
)

// Request is a JSON-RPC request: {"method": "name", "params": [{...}]}.
type Request struct {
	Method string            `json:"method"`
	Params []json.RawMessage `json:"params,omitempty"`
}

// RpcContext carries request-scoped values into a method handler.
type RpcContext struct {
	Context  context.Context
	ClientIP string
}

// MethodHandler is implemented by every RPC method.
type MethodHandler interface {
	Handle(ctx *RpcContext, params json.RawMessage) (any, *RpcError)
}

// HandlerFunc adapts a function to MethodHandler.
type HandlerFunc func(ctx *RpcContext, params json.RawMessage) (any, *RpcError)

func (f HandlerFunc) Handle(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	return f(ctx, params)
}

// MethodRegistry maps method names to handlers.
type MethodRegistry struct {
	mu      sync.RWMutex
	methods map[string]MethodHandler
}

func NewMethodRegistry() *MethodRegistry {
	return &MethodRegistry{methods: make(map[string]MethodHandler)}
}

// Register adds a handler for name.
func (r *MethodRegistry) Register(name string, h MethodHandler) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.methods[name]; exists {
		return fmt.Errorf("handler already registered for method: %s", name)
	}
	r.methods[name] = h
	return nil
}

// MustRegister adds a handler and panics if registration fails.
func (r *MethodRegistry) MustRegister(name string, h MethodHandler) {
	if err := r.Register(name, h); err != nil {
		panic(err)
	}
}

func (r *MethodRegistry) Get(name string) (MethodHandler, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	h, ok := r.methods[name]
	return h, ok
}

// List returns the registered method names, sorted.
func (r *MethodRegistry) List() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.methods))
	for name := range r.methods {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// AccountInfo is the wire form of an account.
type AccountInfo struct {
	Lamports   uint64 `json:"lamports"`
	Owner      string `json:"owner"`
	Data       string `json:"data"`
	Executable bool   `json:"executable"`
	RentEpoch  uint64 `json:"rent_epoch"`
}

// ClockInfo is the wire form of the clock sysvar.
type ClockInfo struct {
	Slot                uint64 `json:"slot"`
	EpochStartTimestamp int64  `json:"epoch_start_timestamp"`
	Epoch               uint64 `json:"epoch"`
	LeaderScheduleEpoch uint64 `json:"leader_schedule_epoch"`
	UnixTimestamp       int64  `json:"unix_timestamp"`
}

// RentInfo is the wire form of the rent parameters.
type RentInfo struct {
	LamportsPerByteYear uint64  `json:"lamports_per_byte_year"`
	ExemptionThreshold  float64 `json:"exemption_threshold"`
	BurnPercent         uint8   `json:"burn_percent"`
}

// GenesisInfo is the wire form of the genesis configuration.
type GenesisInfo struct {
	TicksPerSlot         uint64   `json:"ticks_per_slot"`
	TargetTickDurationNs int64    `json:"target_tick_duration_ns"`
	SlotsPerEpoch        uint64   `json:"slots_per_epoch"`
	CreationTime         int64    `json:"creation_time"`
	LamportsPerSignature uint64   `json:"lamports_per_signature"`
	Rent                 RentInfo `json:"rent"`
}

// KeyedAccountInfo is an account and its address, as listed by
// getProgramAccounts.
type KeyedAccountInfo struct {
	Pubkey  string       `json:"pubkey"`
	Account *AccountInfo `json:"account"`
}

type blockhashResult struct {
	Blockhash string `json:"blockhash"`
}

type signatureResult struct {
	Signature string `json:"signature"`
}

type accountResult struct {
	Value *AccountInfo `json:"value"`
}

type addressParams struct {
	Address string `json:"address"`
}

type ownerParams struct {
	Owner string `json:"owner"`
}

type programAccountsResult struct {
	Accounts []KeyedAccountInfo `json:"accounts"`
}

type transactionParams struct {
	Transaction string `json:"transaction"`
}

type slotParams struct {
	Slot uint64 `json:"slot"`
}
