package core

import (
	"math/big"

	"github.com/ethereum/go-ethereum/common/math"
	"github.com/pkg/errors"
)

// VoteStats is the weighted result of a proposal's valid votes.
type VoteStats struct {
	TotalVotes   uint64
	YesVotes     uint64
	NoVotes      uint64
	AbstainVotes uint64
	VetoVotes    uint64
	VoterCount   uint32
}

// Rates are basis-point ratios; a zero divisor yields zero.
type Rates struct {
	Participation uint64
	Approval      uint64
	Veto          uint64
}

// Thresholds are the basis-point cutoffs of the resolution rule.
type Thresholds struct {
	Participation uint16
	Approval      uint16
	Veto          uint16
}

func (c *GovernanceConfig) Thresholds() Thresholds {
	return Thresholds{
		Participation: c.ParticipationThreshold,
		Approval:      c.ApprovalThreshold,
		Veto:          c.VetoThreshold,
	}
}

// TallyVotes weights every valid record of proposalID by its frozen balance
// snapshot. Records for other proposals are ignored.
func TallyVotes(proposalID uint64, records []*VoteRecord, decimals uint8) (VoteStats, error) {
	var stats VoteStats
	for _, record := range records {
		if record.ProposalID != proposalID || !record.Valid() {
			continue
		}
		power, err := record.VotingPower(decimals)
		if err != nil {
			return VoteStats{}, err
		}

		var bucket *uint64
		switch record.VoteType {
		case Yes:
			bucket = &stats.YesVotes
		case No:
			bucket = &stats.NoVotes
		case Abstain:
			bucket = &stats.AbstainVotes
		case NoWithVeto:
			bucket = &stats.VetoVotes
		default:
			return VoteStats{}, errors.Wrapf(ErrInvalidVoteType, "voter %s", record.Voter)
		}
		if err := addTo(bucket, power); err != nil {
			return VoteStats{}, err
		}
		if err := addTo(&stats.TotalVotes, power); err != nil {
			return VoteStats{}, err
		}
		stats.VoterCount++
	}
	return stats, nil
}

// TotalVotingPower sums the whole-token power of the live committee balances.
func TotalVotingPower(balances []uint64, decimals uint8) (uint64, error) {
	var total uint64
	for _, balance := range balances {
		power, err := Power(balance, decimals)
		if err != nil {
			return 0, err
		}
		if err := addTo(&total, power); err != nil {
			return 0, err
		}
	}
	return total, nil
}

func (s *VoteStats) Rates(totalVotingPower uint64) Rates {
	return Rates{
		Participation: s.ParticipationRate(totalVotingPower),
		Approval:      s.ApprovalRate(),
		Veto:          s.VetoRate(),
	}
}

func (s *VoteStats) ParticipationRate(totalVotingPower uint64) uint64 {
	return mulDiv(s.TotalVotes, BasisPoints, totalVotingPower)
}

func (s *VoteStats) ApprovalRate() uint64 {
	return mulDiv(s.YesVotes, BasisPoints, s.TotalVotes)
}

func (s *VoteStats) VetoRate() uint64 {
	return mulDiv(s.VetoVotes, BasisPoints, s.TotalVotes)
}

// Resolve applies the decision rule in strict order: veto, quorum, approval.
// Approval must exceed its threshold, equality rejects.
func (s *VoteStats) Resolve(totalVotingPower uint64, t Thresholds) ProposalStatus {
	if s.VetoRate() >= uint64(t.Veto) {
		return Vetoed
	}
	if s.ParticipationRate(totalVotingPower) < uint64(t.Participation) {
		return Rejected
	}
	if s.ApprovalRate() > uint64(t.Approval) {
		return Passed
	}
	return Rejected
}

func addTo(dst *uint64, v uint64) error {
	sum, overflow := math.SafeAdd(*dst, v)
	if overflow {
		return ErrMathOverflow
	}
	*dst = sum
	return nil
}

// mulDiv returns floor(a*b/d), or 0 when d is 0. The quotient saturates at
// the uint64 maximum.
func mulDiv(a, b, d uint64) uint64 {
	if d == 0 {
		return 0
	}
	if product, overflow := math.SafeMul(a, b); !overflow {
		return product / d
	}
	q := new(big.Int).Mul(new(big.Int).SetUint64(a), new(big.Int).SetUint64(b))
	q.Quo(q, new(big.Int).SetUint64(d))
	if !q.IsUint64() {
		return ^uint64(0)
	}
	return q.Uint64()
}
