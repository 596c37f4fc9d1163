package core

import (
	"encoding/json"

	"github.com/ethereum/go-ethereum/common"
	"github.com/pkg/errors"
)

// VoteRevocationWindow is how long before the end of voting a vote can no
// longer be revoked, in seconds.
const VoteRevocationWindow = 3600

// VoteLedger records one vote per (proposal, voter) with the voter's balance
// frozen at cast time.
type VoteLedger struct{}

// Cast appends a new vote record. The caller has already checked committee
// membership and the voting window; Cast enforces the balance minimum and
// rejects a second record for the same key.
func (VoteLedger) Cast(tx *Txn, proposalID uint64, voter common.Address, voteType VoteType, rawBalance uint64, decimals uint8, now int64) (*VoteRecord, error) {
	if !voteType.Valid() {
		return nil, ErrInvalidVoteType
	}
	min, err := MinimumPower(decimals)
	if err != nil {
		return nil, err
	}
	if rawBalance < min {
		return nil, errors.Wrapf(ErrInsufficientVotingPower, "balance %d below %d", rawBalance, min)
	}

	key := voteKey(proposalID, voter)
	if tx.has(key) {
		return nil, errors.Wrapf(ErrAlreadyVoted, "voter %s on proposal %d", voter, proposalID)
	}

	record := &VoteRecord{
		ProposalID:      proposalID,
		Voter:           voter,
		VoteType:        voteType,
		Timestamp:       now,
		BalanceSnapshot: rawBalance,
	}
	if err := tx.putJSON(key, record); err != nil {
		return nil, err
	}
	return record, nil
}

// Revoke marks an existing vote as revoked so the tally skips it.
func (VoteLedger) Revoke(tx *Txn, proposalID uint64, voter common.Address, now int64) (*VoteRecord, error) {
	record, err := VoteLedger{}.Get(tx, proposalID, voter)
	if err != nil {
		return nil, err
	}
	if record.Revoked {
		return nil, ErrVoteAlreadyRevoked
	}
	record.Revoked = true
	record.RevokedAt = &now
	if err := tx.putJSON(voteKey(proposalID, voter), record); err != nil {
		return nil, err
	}
	return record, nil
}

func (VoteLedger) Get(tx *Txn, proposalID uint64, voter common.Address) (*VoteRecord, error) {
	record := &VoteRecord{}
	ok, err := tx.getJSON(voteKey(proposalID, voter), record)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, errors.Wrapf(ErrVoteNotFound, "voter %s on proposal %d", voter, proposalID)
	}
	return record, nil
}

// ReadAll returns every record of a proposal, revoked ones included, ordered
// by voter address.
func (VoteLedger) ReadAll(tx *Txn, proposalID uint64) ([]*VoteRecord, error) {
	var records []*VoteRecord
	for _, data := range tx.scan(votesOfProposalPrefix(proposalID)) {
		record := &VoteRecord{}
		if err := json.Unmarshal(data, record); err != nil {
			return nil, errors.Wrap(err, "decode vote record")
		}
		records = append(records, record)
	}
	return records, nil
}
