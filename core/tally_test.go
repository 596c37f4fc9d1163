package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var defaultThresholds = Thresholds{Participation: 4000, Approval: 5000, Veto: 3000}

func TestResolveWorkedScenario(t *testing.T) {
	stats := VoteStats{TotalVotes: 75, YesVotes: 55, VetoVotes: 20}

	assert.Equal(t, uint64(7500), stats.ParticipationRate(100))
	assert.Equal(t, uint64(7333), stats.ApprovalRate())
	assert.Equal(t, uint64(2666), stats.VetoRate())
	assert.Equal(t, Passed, stats.Resolve(100, defaultThresholds))
}

func TestResolveOrder(t *testing.T) {
	tests := []struct {
		name   string
		stats  VoteStats
		total  uint64
		expect ProposalStatus
	}{
		{
			name:   "veto wins over approval",
			stats:  VoteStats{TotalVotes: 100, YesVotes: 70, VetoVotes: 30},
			total:  100,
			expect: Vetoed,
		},
		{
			name:   "veto checked before quorum",
			stats:  VoteStats{TotalVotes: 10, VetoVotes: 10},
			total:  100,
			expect: Vetoed,
		},
		{
			name:   "quorum not met",
			stats:  VoteStats{TotalVotes: 39, YesVotes: 39},
			total:  100,
			expect: Rejected,
		},
		{
			name:   "quorum exactly met",
			stats:  VoteStats{TotalVotes: 40, YesVotes: 40},
			total:  100,
			expect: Passed,
		},
		{
			name:   "approval equal to threshold rejects",
			stats:  VoteStats{TotalVotes: 100, YesVotes: 50, NoVotes: 50},
			total:  100,
			expect: Rejected,
		},
		{
			name:   "abstain dilutes approval",
			stats:  VoteStats{TotalVotes: 100, YesVotes: 50, AbstainVotes: 40, NoVotes: 10},
			total:  100,
			expect: Rejected,
		},
		{
			name:   "no votes and no power",
			stats:  VoteStats{},
			total:  0,
			expect: Rejected,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.stats.Resolve(tt.total, defaultThresholds))
		})
	}
}

func TestResolveZeroVetoThreshold(t *testing.T) {
	stats := VoteStats{}
	assert.Equal(t, Vetoed, stats.Resolve(100, Thresholds{Participation: 0, Approval: 0, Veto: 0}))
}

func TestTallyVotes(t *testing.T) {
	revokedAt := int64(5)
	records := []*VoteRecord{
		{ProposalID: 1, Voter: member1, VoteType: Yes, BalanceSnapshot: 55*testUnit + 999},
		{ProposalID: 1, Voter: member2, VoteType: NoWithVeto, BalanceSnapshot: 20 * testUnit},
		{ProposalID: 1, Voter: member3, VoteType: No, BalanceSnapshot: 25 * testUnit, Revoked: true, RevokedAt: &revokedAt},
		{ProposalID: 2, Voter: outsider, VoteType: Yes, BalanceSnapshot: 100 * testUnit},
		{ProposalID: 1, Voter: proposer, VoteType: Abstain, BalanceSnapshot: 0},
	}

	stats, err := TallyVotes(1, records, testCommitteeDecimals)
	require.Nil(t, err)
	assert.Equal(t, VoteStats{TotalVotes: 75, YesVotes: 55, VetoVotes: 20, VoterCount: 2}, stats)
}

func TestTallyVotesOverflow(t *testing.T) {
	records := []*VoteRecord{
		{ProposalID: 1, Voter: member1, VoteType: Yes, BalanceSnapshot: ^uint64(0)},
		{ProposalID: 1, Voter: member2, VoteType: Yes, BalanceSnapshot: ^uint64(0)},
	}
	_, err := TallyVotes(1, records, 0)
	assert.ErrorIs(t, err, ErrMathOverflow)
}

func TestTotalVotingPower(t *testing.T) {
	total, err := TotalVotingPower([]uint64{55 * testUnit, 20*testUnit + 1, testUnit - 1}, testCommitteeDecimals)
	require.Nil(t, err)
	assert.Equal(t, uint64(75), total)

	_, err = TotalVotingPower([]uint64{^uint64(0), 1}, 0)
	assert.ErrorIs(t, err, ErrMathOverflow)
}

func TestMulDiv(t *testing.T) {
	assert.Equal(t, uint64(0), mulDiv(10, BasisPoints, 0))
	assert.Equal(t, uint64(3333), mulDiv(1, BasisPoints, 3))
	// a*b overflows but the quotient fits
	assert.Equal(t, ^uint64(0)/2, mulDiv(^uint64(0), BasisPoints, 2*BasisPoints))
	assert.Equal(t, ^uint64(0), mulDiv(^uint64(0), BasisPoints, 1))
}
