package rpc

import (
	"encoding/json"

	"github.com/gagliardetto/solana-go"
)

func (s *Server) registerAllMethods() {
	s.registry.MustRegister("ping", HandlerFunc(s.ping))
	s.registry.MustRegister("getGenesis", HandlerFunc(s.getGenesis))
	s.registry.MustRegister("getLatestBlockhash", HandlerFunc(s.getLatestBlockhash))
	s.registry.MustRegister("sendTransaction", HandlerFunc(s.sendTransaction))
	s.registry.MustRegister("getAccountInfo", HandlerFunc(s.getAccountInfo))
	s.registry.MustRegister("getClock", HandlerFunc(s.getClock))
	s.registry.MustRegister("getRent", HandlerFunc(s.getRent))
	s.registry.MustRegister("setClock", HandlerFunc(s.setClock))
	s.registry.MustRegister("warpToSlot", HandlerFunc(s.warpToSlot))
	if s.scanner != nil {
		s.registry.MustRegister("getProgramAccounts", HandlerFunc(s.getProgramAccounts))
	}
}

func parseParams(params json.RawMessage, v any) *RpcError {
	if len(params) == 0 {
		return RpcErrorInvalidParams("missing params")
	}
	if err := json.Unmarshal(params, v); err != nil {
		return RpcErrorInvalidParams("Invalid parameters: " + err.Error())
	}
	return nil
}

func (s *Server) ping(*RpcContext, json.RawMessage) (any, *RpcError) {
	return map[string]any{}, nil
}

func (s *Server) getGenesis(*RpcContext, json.RawMessage) (any, *RpcError) {
	return toGenesisInfo(s.genesis), nil
}

func (s *Server) getLatestBlockhash(ctx *RpcContext, _ json.RawMessage) (any, *RpcError) {
	h, err := s.client.LatestBlockhash(ctx.Context)
	if err != nil {
		return nil, toRpcError(err)
	}
	return blockhashResult{Blockhash: h.String()}, nil
}

func (s *Server) sendTransaction(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var req transactionParams
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	tx, err := DecodeTransaction(req.Transaction)
	if err != nil {
		return nil, RpcErrorInvalidParams("Invalid transaction: " + err.Error())
	}
	if len(tx.Signatures) == 0 {
		return nil, RpcErrorInvalidParams("Invalid transaction: no signatures")
	}

	if err := s.client.ProcessTransaction(ctx.Context, tx); err != nil {
		return nil, toRpcError(err)
	}
	return signatureResult{Signature: tx.Signatures[0].String()}, nil
}

func (s *Server) getAccountInfo(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var req addressParams
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	addr, err := solana.PublicKeyFromBase58(req.Address)
	if err != nil {
		return nil, RpcErrorInvalidParams("Invalid address: " + err.Error())
	}

	acct, err := s.client.GetAccount(ctx.Context, addr)
	if err != nil {
		return nil, toRpcError(err)
	}
	return accountResult{Value: toAccountInfo(acct)}, nil
}

func (s *Server) getProgramAccounts(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var req ownerParams
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	owner, err := solana.PublicKeyFromBase58(req.Owner)
	if err != nil {
		return nil, RpcErrorInvalidParams("Invalid owner: " + err.Error())
	}

	accts, err := s.scanner.GetProgramAccounts(ctx.Context, owner)
	if err != nil {
		return nil, toRpcError(err)
	}
	res := programAccountsResult{Accounts: make([]KeyedAccountInfo, 0, len(accts))}
	for _, a := range accts {
		res.Accounts = append(res.Accounts, KeyedAccountInfo{Pubkey: a.Address.String(), Account: toAccountInfo(a.Account)})
	}
	return res, nil
}

func (s *Server) getClock(ctx *RpcContext, _ json.RawMessage) (any, *RpcError) {
	c, err := s.client.GetClock(ctx.Context)
	if err != nil {
		return nil, toRpcError(err)
	}
	return toClockInfo(c), nil
}

func (s *Server) getRent(ctx *RpcContext, _ json.RawMessage) (any, *RpcError) {
	r, err := s.client.GetRent(ctx.Context)
	if err != nil {
		return nil, toRpcError(err)
	}
	return toRentInfo(r), nil
}

func (s *Server) setClock(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var req ClockInfo
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	if err := s.warper.SetClock(ctx.Context, req.clock()); err != nil {
		return nil, toRpcError(err)
	}
	s.log.Info().Uint64("slot", req.Slot).Int64("unix_timestamp", req.UnixTimestamp).Msg("clock set")
	return req, nil
}

func (s *Server) warpToSlot(ctx *RpcContext, params json.RawMessage) (any, *RpcError) {
	var req slotParams
	if rpcErr := parseParams(params, &req); rpcErr != nil {
		return nil, rpcErr
	}
	if err := s.warper.WarpToSlot(ctx.Context, req.Slot); err != nil {
		return nil, toRpcError(err)
	}
	s.log.Info().Uint64("slot", req.Slot).Msg("warped")
	return slotParams{Slot: req.Slot}, nil
}
