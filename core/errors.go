package core

import (
	"github.com/pkg/errors"
)

// Kind classifies an engine error so callers can react without matching messages.
type Kind uint8

const (
	KindUnknown Kind = iota
	KindAuthorization
	KindValidation
	KindState
	KindConflict
	KindArithmetic
	KindDataIntegrity
	KindNotFound
)

func (k Kind) String() string {
	switch k {
	case KindAuthorization:
		return "authorization"
	case KindValidation:
		return "validation"
	case KindState:
		return "state"
	case KindConflict:
		return "conflict"
	case KindArithmetic:
		return "arithmetic"
	case KindDataIntegrity:
		return "data_integrity"
	case KindNotFound:
		return "not_found"
	default:
		return "unknown"
	}
}

type Error struct {
	Kind Kind
	msg  string
}

func (e *Error) Error() string {
	return e.msg
}

func newError(kind Kind, msg string) *Error {
	return &Error{Kind: kind, msg: msg}
}

// KindOf returns the kind of the first *Error found in err's chain.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}

var (
	ErrUnauthorized       = newError(KindAuthorization, "unauthorized operation")
	ErrNotCommitteeMember = newError(KindAuthorization, "not a committee member")

	ErrInvalidThreshold           = newError(KindValidation, "invalid threshold value")
	ErrInvalidFeeRate             = newError(KindValidation, "invalid fee rate")
	ErrInvalidVotingPeriod        = newError(KindValidation, "invalid voting period")
	ErrInvalidProposalTitle       = newError(KindValidation, "invalid proposal title length")
	ErrInvalidProposalDescription = newError(KindValidation, "invalid proposal description length")
	ErrInvalidProposalType        = newError(KindValidation, "invalid proposal type")
	ErrInvalidVoteType            = newError(KindValidation, "invalid vote type")
	ErrInsufficientDeposit        = newError(KindValidation, "insufficient proposal deposit")
	ErrInsufficientVotingPower    = newError(KindValidation, "insufficient voting power")
	ErrInvalidExecutionData       = newError(KindValidation, "invalid execution data")
	ErrInvalidURLFormat           = newError(KindValidation, "invalid URL format")
	ErrInvalidHashFormat          = newError(KindValidation, "invalid hash format")
	ErrTooManyEvidenceURLs        = newError(KindValidation, "too many evidence URLs")
	ErrInvalidSlashAmount         = newError(KindValidation, "invalid slash amount")
	ErrInvalidDisputeParties      = newError(KindValidation, "invalid dispute parties")
	ErrInvalidCounter             = newError(KindValidation, "proposal counter cannot decrease")
	ErrCommitteeFull              = newError(KindValidation, "committee is full")
	ErrMemberAlreadyExists        = newError(KindValidation, "member already exists")
	ErrMemberNotFound             = newError(KindValidation, "member not found")
	ErrInsufficientTokenBalance   = newError(KindValidation, "insufficient token balance")

	ErrNotInitialized        = newError(KindState, "governance system not initialized")
	ErrAlreadyInitialized    = newError(KindState, "governance system already initialized")
	ErrProposalNotActive     = newError(KindState, "proposal not active")
	ErrProposalNotExecutable = newError(KindState, "proposal not executable")
	ErrVotingPeriodEnded     = newError(KindState, "voting period ended")
	ErrVotingPeriodNotEnded  = newError(KindState, "voting period not ended")
	ErrVoteAlreadyRevoked    = newError(KindState, "vote already revoked")
	ErrCannotRevokeVote      = newError(KindState, "cannot revoke vote")
	ErrTestModeOnly          = newError(KindState, "operation only allowed in test mode")

	ErrAlreadyVoted = newError(KindConflict, "already voted")

	ErrMathOverflow = newError(KindArithmetic, "math overflow")

	ErrInvalidAccountData = newError(KindDataIntegrity, "invalid account data")
	ErrInvalidTokenMint   = newError(KindDataIntegrity, "invalid token mint")
	ErrInvalidOwner       = newError(KindDataIntegrity, "invalid account owner")

	ErrProposalNotFound = newError(KindNotFound, "proposal not found")
	ErrVoteNotFound     = newError(KindNotFound, "vote not found")
)
