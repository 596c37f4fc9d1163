package core

import (
	"github.com/ethereum/go-ethereum/common"
)

// refundPercent of a non-vetoed deposit goes back to the proposer.
const refundPercent = 90

// Settlement is the outcome of processing a proposal deposit.
type Settlement struct {
	ProposalID uint64
	Status     ProposalStatus
	Deposit    uint64
	// Refund is paid from the vault to the proposer
	Refund uint64
	// Retained stays in the vault as the committee fee
	Retained uint64
}

// SplitDeposit decides how a deposit is divided for a terminal status.
// Passed, Rejected and Executed refund floor(90%) and retain the rest;
// Vetoed retains everything; other statuses move nothing.
func SplitDeposit(status ProposalStatus, deposit uint64) (refund, retained uint64, settle bool) {
	switch status {
	case Passed, Rejected, Executed:
		refund = mulDiv(deposit, refundPercent, 100)
		return refund, deposit - refund, true
	case Vetoed:
		return 0, deposit, true
	default:
		return 0, 0, false
	}
}

// DepositSettlement pays out a finalized proposal's deposit from the vault.
type DepositSettlement struct {
	Tokens TokenLedger
}

// Settle moves the refund share to the proposer. The retained share never
// leaves the vault so it needs no transfer.
func (d DepositSettlement) Settle(tx *Txn, mint common.Address, p *Proposal) (*Settlement, error) {
	refund, retained, ok := SplitDeposit(p.Status, p.DepositAmount)
	if !ok {
		return nil, nil
	}
	if refund > 0 {
		if err := d.Tokens.Transfer(tx, mint, VaultAddress, p.Proposer, refund); err != nil {
			return nil, err
		}
	}
	return &Settlement{
		ProposalID: p.ID,
		Status:     p.Status,
		Deposit:    p.DepositAmount,
		Refund:     refund,
		Retained:   retained,
	}, nil
}
