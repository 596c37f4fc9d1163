package core

import (
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/rlp"
	"github.com/pkg/errors"
)

// TokenAccount is the wire form of a committee member's live token holding.
type TokenAccount struct {
	Mint   common.Address
	Owner  common.Address
	Amount uint64
}

func EncodeTokenAccount(acc *TokenAccount) ([]byte, error) {
	return rlp.EncodeToBytes(acc)
}

func DecodeTokenAccount(data []byte) (*TokenAccount, error) {
	acc := &TokenAccount{}
	if err := rlp.DecodeBytes(data, acc); err != nil {
		return nil, errors.Wrap(ErrInvalidAccountData, err.Error())
	}
	return acc, nil
}

// voteAccount is the wire form of a VoteRecord. RLP has no signed integers,
// timestamps travel as their two's complement bits.
type voteAccount struct {
	ProposalID      uint64
	Voter           common.Address
	VoteType        uint8
	Timestamp       uint64
	BalanceSnapshot uint64
	Revoked         bool
	RevokedAt       uint64
	HasRevokedAt    bool
}

func EncodeVoteRecord(v *VoteRecord) ([]byte, error) {
	acc := voteAccount{
		ProposalID:      v.ProposalID,
		Voter:           v.Voter,
		VoteType:        uint8(v.VoteType),
		Timestamp:       uint64(v.Timestamp),
		BalanceSnapshot: v.BalanceSnapshot,
		Revoked:         v.Revoked,
	}
	if v.RevokedAt != nil {
		acc.RevokedAt = uint64(*v.RevokedAt)
		acc.HasRevokedAt = true
	}
	return rlp.EncodeToBytes(&acc)
}

func DecodeVoteRecord(data []byte) (*VoteRecord, error) {
	acc := voteAccount{}
	if err := rlp.DecodeBytes(data, &acc); err != nil {
		return nil, errors.Wrap(ErrInvalidAccountData, err.Error())
	}
	if !VoteType(acc.VoteType).Valid() {
		return nil, errors.Wrapf(ErrInvalidAccountData, "vote type %d", acc.VoteType)
	}
	v := &VoteRecord{
		ProposalID:      acc.ProposalID,
		Voter:           acc.Voter,
		VoteType:        VoteType(acc.VoteType),
		Timestamp:       int64(acc.Timestamp),
		BalanceSnapshot: acc.BalanceSnapshot,
		Revoked:         acc.Revoked,
	}
	if acc.HasRevokedAt {
		revokedAt := int64(acc.RevokedAt)
		v.RevokedAt = &revokedAt
	}
	return v, nil
}

// FinalizeInput carries the externally assembled records finalize reads.
//
// Balances is positional: entry i is the token account of committee slot i.
// Empty slots may hold nil, and a missing entry for an occupied slot counts
// that member as zero power. Votes holds every vote record of the proposal;
// omitted records are simply not counted. The caller is responsible for
// completeness, only authenticity is checked.
type FinalizeInput struct {
	Balances [][]byte
	Votes    [][]byte
}

// committeeBalances decodes the positional balance set against the roster.
func committeeBalances(cfg *GovernanceConfig, balances [][]byte) ([]uint64, error) {
	var amounts []uint64
	for i, member := range cfg.Committee {
		if member == nil || i >= len(balances) || balances[i] == nil {
			continue
		}
		acc, err := DecodeTokenAccount(balances[i])
		if err != nil {
			return nil, errors.Wrapf(err, "committee slot %d", i)
		}
		if acc.Owner != *member {
			return nil, errors.Wrapf(ErrInvalidOwner, "committee slot %d: account of %s", i, acc.Owner)
		}
		if acc.Mint != cfg.CommitteeMint {
			return nil, errors.Wrapf(ErrInvalidTokenMint, "committee slot %d: mint %s", i, acc.Mint)
		}
		amounts = append(amounts, acc.Amount)
	}
	return amounts, nil
}

// proposalVotes decodes the vote set and checks each record against the
// ledger. Records of other proposals are skipped.
func proposalVotes(tx *Txn, proposalID uint64, votes [][]byte) ([]*VoteRecord, error) {
	seen := make(map[common.Address]struct{}, len(votes))
	var records []*VoteRecord
	for i, data := range votes {
		record, err := DecodeVoteRecord(data)
		if err != nil {
			return nil, errors.Wrapf(err, "vote record %d", i)
		}
		if record.ProposalID != proposalID {
			continue
		}
		if _, dup := seen[record.Voter]; dup {
			return nil, errors.Wrapf(ErrInvalidAccountData, "vote record %d: duplicate voter %s", i, record.Voter)
		}
		seen[record.Voter] = struct{}{}

		stored, err := VoteLedger{}.Get(tx, proposalID, record.Voter)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidAccountData, "vote record %d: %s", i, err)
		}
		if !sameVote(stored, record) {
			return nil, errors.Wrapf(ErrInvalidAccountData, "vote record %d does not match ledger", i)
		}
		records = append(records, record)
	}
	return records, nil
}

func sameVote(a, b *VoteRecord) bool {
	if a.ProposalID != b.ProposalID || a.Voter != b.Voter || a.VoteType != b.VoteType ||
		a.Timestamp != b.Timestamp || a.BalanceSnapshot != b.BalanceSnapshot || a.Revoked != b.Revoked {
		return false
	}
	if (a.RevokedAt == nil) != (b.RevokedAt == nil) {
		return false
	}
	return a.RevokedAt == nil || *a.RevokedAt == *b.RevokedAt
}
