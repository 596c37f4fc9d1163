package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSplitDeposit(t *testing.T) {
	tests := []struct {
		status   ProposalStatus
		deposit  uint64
		refund   uint64
		retained uint64
		settle   bool
	}{
		{Passed, 100_000_000, 90_000_000, 10_000_000, true},
		{Rejected, 100_000_000, 90_000_000, 10_000_000, true},
		{Executed, 100_000_000, 90_000_000, 10_000_000, true},
		{Vetoed, 100_000_000, 0, 100_000_000, true},
		{Passed, 15, 13, 2, true},
		{Passed, 0, 0, 0, true},
		{Pending, 100_000_000, 0, 0, false},
	}

	for _, tt := range tests {
		refund, retained, settle := SplitDeposit(tt.status, tt.deposit)
		assert.Equal(t, tt.settle, settle, tt.status.String())
		assert.Equal(t, tt.refund, refund, tt.status.String())
		if tt.settle {
			assert.Equal(t, tt.deposit, refund+retained, "deposit is conserved")
		}
		assert.Equal(t, tt.retained, retained, tt.status.String())
	}
}

func TestSettle(t *testing.T) {
	store := newTestStore(t)
	settlement := DepositSettlement{}

	err := store.Update(func(tx *Txn) error {
		require.Nil(t, settlement.Tokens.Credit(tx, depositMint, proposer, 100_000_000))
		return settlement.Tokens.Transfer(tx, depositMint, proposer, VaultAddress, 100_000_000)
	})
	require.Nil(t, err)

	p := &Proposal{ID: 1, Proposer: proposer, DepositAmount: 100_000_000, Status: Pending}
	err = store.Update(func(tx *Txn) error {
		s, err := settlement.Settle(tx, depositMint, p)
		require.Nil(t, err)
		assert.Nil(t, s)

		p.Status = Passed
		s, err = settlement.Settle(tx, depositMint, p)
		require.Nil(t, err)
		assert.Equal(t, &Settlement{ProposalID: 1, Status: Passed, Deposit: 100_000_000, Refund: 90_000_000, Retained: 10_000_000}, s)
		return nil
	})
	require.Nil(t, err)

	err = store.View(func(tx *Txn) error {
		assert.Equal(t, uint64(90_000_000), settlement.Tokens.BalanceOf(tx, depositMint, proposer))
		assert.Equal(t, uint64(10_000_000), settlement.Tokens.BalanceOf(tx, depositMint, VaultAddress))
		return nil
	})
	require.Nil(t, err)
}

func TestSettleEmptyVault(t *testing.T) {
	store := newTestStore(t)

	p := &Proposal{ID: 1, Proposer: proposer, DepositAmount: 100_000_000, Status: Rejected}
	err := store.Update(func(tx *Txn) error {
		_, err := DepositSettlement{}.Settle(tx, depositMint, p)
		return err
	})
	assert.ErrorIs(t, err, ErrInsufficientTokenBalance)
}

func TestTokenLedger(t *testing.T) {
	store := newTestStore(t)
	tokens := TokenLedger{}

	err := store.Update(func(tx *Txn) error {
		require.Nil(t, tokens.Credit(tx, depositMint, proposer, 10))
		require.Nil(t, tokens.Transfer(tx, depositMint, proposer, outsider, 4))
		assert.ErrorIs(t, tokens.Transfer(tx, depositMint, proposer, outsider, 7), ErrInsufficientTokenBalance)
		assert.ErrorIs(t, tokens.Credit(tx, depositMint, outsider, ^uint64(0)), ErrMathOverflow)
		// balances are kept per mint
		assert.Equal(t, uint64(0), tokens.BalanceOf(tx, committeeMint, proposer))
		return nil
	})
	require.Nil(t, err)

	err = store.View(func(tx *Txn) error {
		assert.Equal(t, uint64(6), tokens.BalanceOf(tx, depositMint, proposer))
		assert.Equal(t, uint64(4), tokens.BalanceOf(tx, depositMint, outsider))
		return nil
	})
	require.Nil(t, err)
}

func TestCommitteeFee(t *testing.T) {
	cfg := &GovernanceConfig{FeeRate: 1000}
	assert.Equal(t, uint64(10_000_000), cfg.CommitteeFee(100_000_000))
	assert.Equal(t, uint64(90_000_000), cfg.ProposerRefund(100_000_000))

	cfg.FeeRate = 0
	assert.Equal(t, uint64(0), cfg.CommitteeFee(100_000_000))
}
