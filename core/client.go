package core

import (
	"context"
	"errors"
	"math/big"
	"sync"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
)

// Client is the subset of the Ethereum RPC used to read committee token balances.
type Client interface {
	CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error)
}

var _ Client = (*MockClient)(nil)

// MockClient answers balanceOf calls from an in-memory table.
type MockClient struct {
	mutex    sync.Mutex
	balances map[common.Address]map[common.Address]*big.Int
	// FailCalls makes the next n calls fail
	FailCalls int
	Calls     int
}

func NewMockClient() *MockClient {
	return &MockClient{balances: make(map[common.Address]map[common.Address]*big.Int)}
}

func (mc *MockClient) SetBalance(token, owner common.Address, amount *big.Int) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	if mc.balances[token] == nil {
		mc.balances[token] = make(map[common.Address]*big.Int)
	}
	mc.balances[token][owner] = amount
}

func (mc *MockClient) CallContract(ctx context.Context, call ethereum.CallMsg, blockNumber *big.Int) ([]byte, error) {
	mc.mutex.Lock()
	defer mc.mutex.Unlock()

	mc.Calls++
	if mc.FailCalls > 0 {
		mc.FailCalls--
		return nil, errors.New("mock connection refused")
	}
	if call.To == nil || len(call.Data) != 4+32 {
		return nil, errors.New("mock: unsupported call")
	}

	owner := common.BytesToAddress(call.Data[4:])
	amount := mc.balances[*call.To][owner]
	if amount == nil {
		amount = new(big.Int)
	}
	return common.LeftPadBytes(amount.Bytes(), 32), nil
}
