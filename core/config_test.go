package core

import (
	"fmt"
	"testing"

	"github.com/ethereum/go-ethereum/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRoster(t *testing.T) {
	var roster Roster

	for i := 0; i < CommitteeCapacity; i++ {
		slot, err := roster.Add(common.HexToAddress(fmt.Sprintf("0x%040x", i+1)))
		require.Nil(t, err)
		assert.Equal(t, i, slot)
	}
	assert.Equal(t, CommitteeCapacity, roster.Count())

	_, err := roster.Add(outsider)
	assert.ErrorIs(t, err, ErrCommitteeFull)

	third := common.HexToAddress(fmt.Sprintf("0x%040x", 3))
	_, err = roster.Add(third)
	assert.ErrorIs(t, err, ErrMemberAlreadyExists)

	slot, err := roster.Remove(third)
	require.Nil(t, err)
	assert.Equal(t, 2, slot)
	assert.False(t, roster.Contains(third))
	assert.Nil(t, roster[2])

	_, err = roster.Remove(third)
	assert.ErrorIs(t, err, ErrMemberNotFound)

	// the freed slot is reused first
	slot, err = roster.Add(outsider)
	require.Nil(t, err)
	assert.Equal(t, 2, slot)
	assert.Equal(t, outsider, roster.Members()[2])
}

func TestValidateVotingPeriod(t *testing.T) {
	assert.Nil(t, ValidateVotingPeriod(30, true))
	assert.ErrorIs(t, ValidateVotingPeriod(29, true), ErrInvalidVotingPeriod)
	assert.ErrorIs(t, ValidateVotingPeriod(30, false), ErrInvalidVotingPeriod)
	assert.Nil(t, ValidateVotingPeriod(24*60*60, false))
	assert.Nil(t, ValidateVotingPeriod(30*24*60*60, false))
	assert.ErrorIs(t, ValidateVotingPeriod(30*24*60*60+1, true), ErrInvalidVotingPeriod)
}

func TestValidateThresholds(t *testing.T) {
	assert.Nil(t, ValidateThreshold(0))
	assert.Nil(t, ValidateThreshold(BasisPoints))
	assert.ErrorIs(t, ValidateThreshold(BasisPoints+1), ErrInvalidThreshold)
	assert.Equal(t, KindValidation, KindOf(ValidateThreshold(BasisPoints+1)))
	assert.ErrorIs(t, ValidateFeeRate(BasisPoints+1), ErrInvalidFeeRate)
}

func TestValidateURLAndHash(t *testing.T) {
	for _, url := range []string{"https://rules.example/doc", "ipfs://bafy", "ar://tx"} {
		assert.Nil(t, ValidateURL(url), url)
	}
	for _, url := range []string{"http://rules.example", "ftp://x", ""} {
		assert.ErrorIs(t, ValidateURL(url), ErrInvalidURLFormat, url)
	}

	assert.Nil(t, ValidateHash(testHash))
	assert.ErrorIs(t, ValidateHash(testHash[:63]), ErrInvalidHashFormat)
	assert.ErrorIs(t, ValidateHash(testHash[:63]+"g"), ErrInvalidHashFormat)
}

func TestConfigUpdateParams(t *testing.T) {
	cfg := &GovernanceConfig{VotingPeriod: 100, FeeRate: 1000, TestMode: true}

	short := uint64(60)
	production := false
	update := ConfigUpdateParams{VotingPeriod: &short}
	assert.Nil(t, update.Validate(cfg.TestMode))

	// the period is checked against the mode the update switches to
	update.TestMode = &production
	assert.ErrorIs(t, update.Validate(cfg.TestMode), ErrInvalidVotingPeriod)

	fee := uint16(500)
	update = ConfigUpdateParams{FeeRate: &fee}
	require.Nil(t, update.Validate(cfg.TestMode))
	update.ApplyTo(cfg, 42)
	assert.Equal(t, uint16(500), cfg.FeeRate)
	assert.Equal(t, uint64(100), cfg.VotingPeriod)
	assert.Equal(t, int64(42), cfg.UpdatedAt)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindUnknown, KindOf(nil))
	assert.Equal(t, KindUnknown, KindOf(fmt.Errorf("plain")))
	assert.Equal(t, KindConflict, KindOf(fmt.Errorf("cast: %w", ErrAlreadyVoted)))
	assert.Equal(t, "conflict", KindConflict.String())
}
