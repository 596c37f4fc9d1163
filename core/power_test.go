package core

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPower(t *testing.T) {
	power, err := Power(55*testUnit+testUnit-1, testCommitteeDecimals)
	require.Nil(t, err)
	assert.Equal(t, uint64(55), power)

	power, err = Power(testUnit-1, testCommitteeDecimals)
	require.Nil(t, err)
	assert.Equal(t, uint64(0), power)

	power, err = Power(7, 0)
	require.Nil(t, err)
	assert.Equal(t, uint64(7), power)

	_, err = Power(1, MaxDecimals+1)
	assert.ErrorIs(t, err, ErrMathOverflow)
}

func TestMinimumPower(t *testing.T) {
	min, err := MinimumPower(testCommitteeDecimals)
	require.Nil(t, err)
	assert.Equal(t, testUnit, min)

	min, err = MinimumPower(MaxDecimals)
	require.Nil(t, err)
	assert.Equal(t, uint64(10_000_000_000_000_000_000), min)
}

func TestScaleAmount(t *testing.T) {
	scaled, err := ScaleAmount(100, testDepositDecimals)
	require.Nil(t, err)
	assert.Equal(t, uint64(100_000_000), scaled)

	_, err = ScaleAmount(^uint64(0), 1)
	assert.ErrorIs(t, err, ErrMathOverflow)
	assert.Equal(t, KindArithmetic, KindOf(err))
}
