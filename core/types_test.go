package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTypes(t *testing.T) {
	for _, pt := range []ProposalType{SlashMerchant, DisputeArbitration, RuleUpdate, ConfigUpdate} {
		parsed, err := ParseProposalType(pt.String())
		require.Nil(t, err)
		assert.Equal(t, pt, parsed)
	}
	_, err := ParseProposalType("Treasury")
	assert.ErrorIs(t, err, ErrInvalidProposalType)

	voteType, err := ParseVoteType("NoWithVeto")
	require.Nil(t, err)
	assert.Equal(t, NoWithVeto, voteType)
	_, err = ParseVoteType("Maybe")
	assert.ErrorIs(t, err, ErrInvalidVoteType)

	assert.Equal(t, "VoteType(9)", VoteType(9).String())
}

func TestProposalWindow(t *testing.T) {
	p := &Proposal{Status: Pending, VotingEnd: 100}
	assert.True(t, p.CanVote(100))
	assert.False(t, p.CanVote(101))
	assert.False(t, p.VotingEnded(100))
	assert.True(t, p.VotingEnded(101))

	p.Status = Passed
	assert.False(t, p.CanVote(50))
	assert.True(t, Vetoed.Terminal())
	assert.False(t, Pending.Terminal())
}
