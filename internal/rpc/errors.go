package rpc

import (
	"context"
	"errors"

	"github.com/LeJamon/programtest/internal/core/bank"
	"github.com/LeJamon/programtest/internal/core/invoke"
	"github.com/LeJamon/programtest/internal/core/programs/token"
)

// RpcError is the error object carried in a failed response.
type RpcError struct {
	Code        int    `json:"error_code"`
	ErrorString string `json:"error"`
	Message     string `json:"error_message,omitempty"`

	// Instruction and Cause are set for transactions that failed during
	// execution.
	Instruction *int   `json:"instruction_index,omitempty"`
	Cause       string `json:"cause,omitempty"`
}

func (e *RpcError) Error() string {
	if e.Message != "" {
		return e.Message
	}
	return e.ErrorString
}

// Error codes.
const (
	RpcUNKNOWN          = -1
	RpcJSON_RPC         = -32600
	RpcMETHOD_NOT_FOUND = -32601
	RpcINVALID_PARAMS   = -32602
	RpcINTERNAL         = -32603
	RpcPARSE_ERROR      = -32700

	RpcNOT_STARTED         = 4
	RpcACT_NOT_FOUND       = 19
	RpcBLOCKHASH_NOT_FOUND = 30
	RpcALREADY_PROCESSED   = 31
	RpcSIGNATURE_FAILURE   = 32
	RpcSANITIZE_FAILURE    = 33
	RpcINSUFFICIENT_FEE    = 34
	RpcINVALID_WARP_SLOT   = 35
	RpcTRANSACTION_FAILED  = 36
	RpcCANCELLED           = 37
)

// ErrRemote is wrapped by client errors whose code has no local sentinel.
var ErrRemote = errors.New("remote ledger error")

type errorKind struct {
	code int
	name string
	err  error
}

var errorKinds = []errorKind{
	{RpcNOT_STARTED, "notStarted", bank.ErrNotStarted},
	{RpcACT_NOT_FOUND, "actNotFound", bank.ErrAccountNotFound},
	{RpcBLOCKHASH_NOT_FOUND, "blockhashNotFound", bank.ErrBlockhashNotFound},
	{RpcALREADY_PROCESSED, "alreadyProcessed", bank.ErrAlreadyProcessed},
	{RpcSIGNATURE_FAILURE, "signatureFailure", bank.ErrSignatureFailure},
	{RpcSANITIZE_FAILURE, "sanitizeFailure", bank.ErrSanitizeFailure},
	{RpcINSUFFICIENT_FEE, "insufficientFundsForFee", bank.ErrInsufficientFundsForFee},
	{RpcINVALID_WARP_SLOT, "invalidWarpSlot", bank.ErrInvalidWarpSlot},
	{RpcCANCELLED, "cancelled", context.Canceled},
	{RpcCANCELLED, "deadlineExceeded", context.DeadlineExceeded},
}

// Instruction failure causes, by wire name.
var causes = []struct {
	name string
	err  error
}{
	{"AccountAlreadyInUse", invoke.ErrAccountAlreadyInUse},
	{"InsufficientFunds", invoke.ErrInsufficientFunds},
	{"MissingRequiredSignature", invoke.ErrMissingRequiredSignature},
	{"AccountAlreadyInitialized", invoke.ErrAlreadyInitialized},
	{"UninitializedAccount", invoke.ErrUninitializedAccount},
	{"InvalidAccountData", invoke.ErrInvalidAccountData},
	{"IncorrectProgramId", invoke.ErrIncorrectProgramID},
	{"InvalidInstructionData", invoke.ErrInvalidInstructionData},
	{"NotEnoughAccountKeys", invoke.ErrNotEnoughAccountKeys},
	{"ReadonlyDataModified", invoke.ErrReadonlyAccount},
	{"InvalidArgument", invoke.ErrInvalidArgument},
	{"InvalidSeeds", invoke.ErrInvalidSeeds},
	{"ArithmeticOverflow", invoke.ErrArithmeticOverflow},
	{"UnsupportedProgramId", invoke.ErrUnsupportedProgramID},
	{"InsufficientFundsForRent", invoke.ErrInsufficientFundsForRent},
	{"UnbalancedTransaction", bank.ErrUnbalancedTransaction},
	{"TokenNotRentExempt", token.ErrNotRentExempt},
	{"TokenInsufficientFunds", token.ErrInsufficientFunds},
	{"TokenInvalidMint", token.ErrInvalidMint},
	{"TokenMintMismatch", token.ErrMintMismatch},
	{"TokenOwnerMismatch", token.ErrOwnerMismatch},
	{"TokenFixedSupply", token.ErrFixedSupply},
	{"TokenAccountFrozen", token.ErrAccountFrozen},
	{"TokenOverflow", token.ErrOverflow},
}

func NewRpcError(code int, errorString, message string) *RpcError {
	return &RpcError{Code: code, ErrorString: errorString, Message: message}
}

func RpcErrorInvalidParams(message string) *RpcError {
	return NewRpcError(RpcINVALID_PARAMS, "invalidParams", message)
}

func RpcErrorMethodNotFound(method string) *RpcError {
	return NewRpcError(RpcMETHOD_NOT_FOUND, "unknownCmd", "Unknown method: "+method)
}

func RpcErrorInternal(message string) *RpcError {
	return NewRpcError(RpcINTERNAL, "internal", message)
}

// toRpcError classifies a ledger error for the wire.
func toRpcError(err error) *RpcError {
	var te *bank.TransactionError
	if errors.As(err, &te) {
		idx := te.Index
		e := NewRpcError(RpcTRANSACTION_FAILED, "transactionFailed", te.Err.Error())
		e.Instruction = &idx
		for _, c := range causes {
			if errors.Is(te.Err, c.err) {
				e.Cause = c.name
				break
			}
		}
		return e
	}
	for _, k := range errorKinds {
		if errors.Is(err, k.err) {
			return NewRpcError(k.code, k.name, err.Error())
		}
	}
	return RpcErrorInternal(err.Error())
}

// remoteError keeps the server's message while matching the local sentinel.
type remoteError struct {
	msg string
	err error
}

func (e *remoteError) Error() string { return e.msg }
func (e *remoteError) Unwrap() error { return e.err }

// Err converts e back into an error that matches the sentinel the server
// classified it by.
func (e *RpcError) Err() error {
	if e.Code == RpcTRANSACTION_FAILED && e.Instruction != nil {
		cause := ErrRemote
		for _, c := range causes {
			if c.name == e.Cause {
				cause = c.err
				break
			}
		}
		return &bank.TransactionError{Index: *e.Instruction, Err: &remoteError{msg: e.Message, err: cause}}
	}
	for _, k := range errorKinds {
		if k.code == e.Code && k.name == e.ErrorString {
			return &remoteError{msg: e.Error(), err: k.err}
		}
	}
	return &remoteError{msg: e.Error(), err: ErrRemote}
}
