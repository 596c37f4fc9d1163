package core

import (
	"encoding/binary"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/pkg/errors"
)

const vaultSeed = "governance_token_vault"

// VaultAddress is the custody account holding locked deposits. No key
// controls it; only settlement moves funds out of it.
var VaultAddress = common.BytesToAddress(crypto.Keccak256([]byte(vaultSeed)))

// TokenLedger keeps raw token balances per (mint, owner) next to the
// governance records so a transfer commits with the operation that caused it.
type TokenLedger struct{}

func (TokenLedger) BalanceOf(tx *Txn, mint, owner common.Address) uint64 {
	data := tx.get(balanceKey(mint, owner))
	if len(data) != 8 {
		return 0
	}
	return binary.BigEndian.Uint64(data)
}

func (l TokenLedger) setBalance(tx *Txn, mint, owner common.Address, amount uint64) error {
	return tx.put(balanceKey(mint, owner), uint64Bytes(amount))
}

func (l TokenLedger) Transfer(tx *Txn, mint, from, to common.Address, amount uint64) error {
	if amount == 0 || from == to {
		return nil
	}
	fromBalance := l.BalanceOf(tx, mint, from)
	if fromBalance < amount {
		return errors.Wrapf(ErrInsufficientTokenBalance, "%s holds %d, needs %d", from, fromBalance, amount)
	}
	toBalance, overflow := math.SafeAdd(l.BalanceOf(tx, mint, to), amount)
	if overflow {
		return ErrMathOverflow
	}
	if err := l.setBalance(tx, mint, from, fromBalance-amount); err != nil {
		return err
	}
	return l.setBalance(tx, mint, to, toBalance)
}

// Credit mints amount to owner.
func (l TokenLedger) Credit(tx *Txn, mint, owner common.Address, amount uint64) error {
	balance, overflow := math.SafeAdd(l.BalanceOf(tx, mint, owner), amount)
	if overflow {
		return ErrMathOverflow
	}
	return l.setBalance(tx, mint, owner, balance)
}
