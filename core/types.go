package core

import (
	"fmt"

	"github.com/ethereum/go-ethereum/common"
)

type ProposalStatus uint8

const (
	// Pending is the only status that accepts votes
	Pending ProposalStatus = iota
	Passed
	Rejected
	Vetoed
	Executed
)

var proposalStatusNames = map[ProposalStatus]string{
	Pending:  "Pending",
	Passed:   "Passed",
	Rejected: "Rejected",
	Vetoed:   "Vetoed",
	Executed: "Executed",
}

func (s ProposalStatus) String() string {
	if name, ok := proposalStatusNames[s]; ok {
		return name
	}
	return fmt.Sprintf("ProposalStatus(%d)", uint8(s))
}

// Terminal reports whether no further lifecycle transition leaves s.
func (s ProposalStatus) Terminal() bool {
	return s == Rejected || s == Vetoed || s == Executed
}

type ProposalType uint8

const (
	// SlashMerchant is a proposal for punishing a merchant listing illegal products
	SlashMerchant ProposalType = iota

	// DisputeArbitration is a proposal for arbitrating a trade dispute
	DisputeArbitration

	// RuleUpdate is a proposal for changing the rule registry
	RuleUpdate

	// ConfigUpdate is a proposal for changing governance parameters
	ConfigUpdate
)

var proposalTypeNames = map[ProposalType]string{
	SlashMerchant:      "SlashMerchant",
	DisputeArbitration: "DisputeArbitration",
	RuleUpdate:         "RuleUpdate",
	ConfigUpdate:       "ConfigUpdate",
}

func (t ProposalType) String() string {
	if name, ok := proposalTypeNames[t]; ok {
		return name
	}
	return fmt.Sprintf("ProposalType(%d)", uint8(t))
}

func (t ProposalType) Valid() bool {
	_, ok := proposalTypeNames[t]
	return ok
}

// ParseProposalType accepts the names printed by String.
func ParseProposalType(s string) (ProposalType, error) {
	for t, name := range proposalTypeNames {
		if name == s {
			return t, nil
		}
	}
	return 0, ErrInvalidProposalType
}

type VoteType uint8

const (
	Yes VoteType = iota
	No
	Abstain
	NoWithVeto
)

var voteTypeNames = map[VoteType]string{
	Yes:        "Yes",
	No:         "No",
	Abstain:    "Abstain",
	NoWithVeto: "NoWithVeto",
}

func (v VoteType) String() string {
	if name, ok := voteTypeNames[v]; ok {
		return name
	}
	return fmt.Sprintf("VoteType(%d)", uint8(v))
}

func (v VoteType) Valid() bool {
	_, ok := voteTypeNames[v]
	return ok
}

func ParseVoteType(s string) (VoteType, error) {
	for v, name := range voteTypeNames {
		if name == s {
			return v, nil
		}
	}
	return 0, ErrInvalidVoteType
}

type Proposal struct {
	ID            uint64
	Proposer      common.Address
	Type          ProposalType
	Title         string
	Description   string
	DepositAmount uint64
	CreatedAt     int64
	VotingStart   int64
	VotingEnd     int64
	Status        ProposalStatus

	YesVotes     uint64
	NoVotes      uint64
	AbstainVotes uint64
	VetoVotes    uint64
	// TotalVotes is the sum of the four buckets, written by finalize
	TotalVotes uint64

	Payload         ExecutionPayload `json:"-"`
	ExecutionResult *string
}

// CanVote reports whether a vote cast at now is inside the voting window.
func (p *Proposal) CanVote(now int64) bool {
	return p.Status == Pending && now <= p.VotingEnd
}

func (p *Proposal) VotingEnded(now int64) bool {
	return now > p.VotingEnd
}

type VoteRecord struct {
	ProposalID uint64
	Voter      common.Address
	VoteType   VoteType
	Timestamp  int64
	// BalanceSnapshot is the raw token amount held when the vote was cast
	BalanceSnapshot uint64
	Revoked         bool
	RevokedAt       *int64
}

// Valid votes are counted by the tally.
func (v *VoteRecord) Valid() bool {
	return !v.Revoked && v.BalanceSnapshot > 0
}

// VotingPower derives the record's weight from its frozen snapshot.
func (v *VoteRecord) VotingPower(decimals uint8) (uint64, error) {
	if !v.Valid() {
		return 0, nil
	}
	return Power(v.BalanceSnapshot, decimals)
}
