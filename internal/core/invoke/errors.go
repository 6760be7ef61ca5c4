package invoke

import "errors"

// Instruction errors raised by builtin programs and the bank.
var (
	ErrAccountAlreadyInUse      = errors.New("account already in use")
	ErrInsufficientFunds        = errors.New("insufficient funds for instruction")
	ErrMissingRequiredSignature = errors.New("missing required signature for instruction")
	ErrAlreadyInitialized       = errors.New("account already initialized")
	ErrUninitializedAccount     = errors.New("attempt to operate on an uninitialized account")
	ErrInvalidAccountData       = errors.New("invalid account data for instruction")
	ErrIncorrectProgramID       = errors.New("incorrect program id for instruction")
	ErrInvalidInstructionData   = errors.New("invalid instruction data")
	ErrNotEnoughAccountKeys     = errors.New("insufficient account keys for instruction")
	ErrReadonlyAccount          = errors.New("instruction attempted to modify a readonly account")
	ErrInvalidArgument          = errors.New("invalid program argument")
	ErrInvalidSeeds             = errors.New("provided seeds do not result in a valid address")
	ErrArithmeticOverflow       = errors.New("arithmetic overflowed")
	ErrUnsupportedProgramID     = errors.New("unsupported program id")
	ErrInsufficientFundsForRent = errors.New("account does not hold enough lamports to be rent exempt")
)
