package core

import (
	"context"
	"math/big"
	"time"

	"github.com/Rican7/retry"
	"github.com/Rican7/retry/backoff"
	"github.com/Rican7/retry/strategy"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/pkg/errors"
)

// BalanceSource reports the live raw token holding of an owner.
type BalanceSource interface {
	BalanceOf(ctx context.Context, mint, owner common.Address) (uint64, error)
}

var (
	_ BalanceSource = (*LocalBalances)(nil)
	_ BalanceSource = (*ERC20Balances)(nil)
)

// LocalBalances reads the token ledger kept in the governance store.
type LocalBalances struct {
	Store *Store
}

func (l *LocalBalances) BalanceOf(_ context.Context, mint, owner common.Address) (uint64, error) {
	var balance uint64
	err := l.Store.View(func(tx *Txn) error {
		balance = TokenLedger{}.BalanceOf(tx, mint, owner)
		return nil
	})
	return balance, err
}

var balanceOfSelector = crypto.Keccak256([]byte("balanceOf(address)"))[:4]

// ERC20Balances reads balances from an ERC-20 contract over JSON-RPC.
type ERC20Balances struct {
	Client        Client
	RetryLimit    uint
	RetryInterval time.Duration
}

// DialERC20Balances connects to url, retrying while the node is unreachable.
func DialERC20Balances(ctx context.Context, url string, limit uint, interval time.Duration) (*ERC20Balances, error) {
	var client *ethclient.Client
	action := func(attempt uint) error {
		var err error
		client, err = ethclient.DialContext(ctx, url)
		return err
	}
	if err := retry.Retry(action, strategy.Limit(limit), strategy.Backoff(backoff.Fibonacci(interval))); err != nil {
		return nil, errors.Wrapf(err, "dial %s", url)
	}

	return &ERC20Balances{
		Client:        client,
		RetryLimit:    limit,
		RetryInterval: interval,
	}, nil
}

func (e *ERC20Balances) BalanceOf(ctx context.Context, mint, owner common.Address) (uint64, error) {
	data := append(append([]byte{}, balanceOfSelector...), common.LeftPadBytes(owner.Bytes(), 32)...)
	msg := ethereum.CallMsg{To: &mint, Data: data}

	var out []byte
	action := func(attempt uint) error {
		var err error
		out, err = e.Client.CallContract(ctx, msg, nil)
		return err
	}
	limit := e.RetryLimit
	if limit == 0 {
		limit = 1
	}
	if err := retry.Retry(action, strategy.Limit(limit), strategy.Backoff(backoff.Fibonacci(e.RetryInterval))); err != nil {
		return 0, errors.Wrapf(err, "balanceOf %s on %s", owner, mint)
	}

	if len(out) != 32 {
		return 0, errors.Wrapf(ErrInvalidAccountData, "balanceOf returned %d bytes", len(out))
	}
	amount := new(big.Int).SetBytes(out)
	if !amount.IsUint64() {
		return 0, errors.Wrapf(ErrMathOverflow, "balance of %s", owner)
	}
	return amount.Uint64(), nil
}
