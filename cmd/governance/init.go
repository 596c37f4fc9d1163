package main

import (
	"fmt"
	"time"

	"github.com/axiomesh/governance/core"
	"github.com/axiomesh/governance/repo"
	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"
)

var initCMD = &cli.Command{
	Name:   "init",
	Usage:  "Create the governance config from the genesis section of the repo config",
	Action: initialize,
}

func initialize(ctx *cli.Context) error {
	return withGovernance(ctx, func(g *core.Governance) error {
		authority, params := genesisParams(g.Config)
		if err := g.Initialize(authority, params); err != nil {
			return err
		}
		fmt.Printf("governance initialized, authority %s\n", authority)
		return nil
	})
}

func genesisParams(cfg *repo.Config) (common.Address, core.InitParams) {
	genesis := cfg.Genesis
	return common.HexToAddress(genesis.Authority), core.InitParams{
		CommitteeMint:          common.HexToAddress(cfg.Token.CommitteeMint),
		DepositMint:            common.HexToAddress(cfg.Token.DepositMint),
		CommitteeDecimals:      genesis.CommitteeDecimals,
		DepositDecimals:        genesis.DepositDecimals,
		ProposalDepositRaw:     genesis.ProposalDepositRaw,
		VotingPeriod:           genesis.VotingPeriod,
		ParticipationThreshold: genesis.ParticipationThreshold,
		ApprovalThreshold:      genesis.ApprovalThreshold,
		VetoThreshold:          genesis.VetoThreshold,
		FeeRate:                genesis.FeeRate,
		TestMode:               genesis.TestMode,
	}
}

// resolvedGenesis is what `init` would write, with the deposit scaled to base
// units of the deposit mint.
type resolvedGenesis struct {
	Authority              common.Address
	CommitteeMint          common.Address
	DepositMint            common.Address
	ProposalDeposit        uint64
	VotingPeriod           string
	ParticipationThreshold uint16
	ApprovalThreshold      uint16
	VetoThreshold          uint16
	FeeRate                uint16
	TestMode               bool
}

func resolveGenesis(cfg *repo.Config) (*resolvedGenesis, error) {
	authority, params := genesisParams(cfg)
	if err := params.Validate(); err != nil {
		return nil, err
	}
	deposit, err := core.ScaleAmount(params.ProposalDepositRaw, params.DepositDecimals)
	if err != nil {
		return nil, err
	}
	return &resolvedGenesis{
		Authority:              authority,
		CommitteeMint:          params.CommitteeMint,
		DepositMint:            params.DepositMint,
		ProposalDeposit:        deposit,
		VotingPeriod:           (time.Duration(params.VotingPeriod) * time.Second).String(),
		ParticipationThreshold: params.ParticipationThreshold,
		ApprovalThreshold:      params.ApprovalThreshold,
		VetoThreshold:          params.VetoThreshold,
		FeeRate:                params.FeeRate,
		TestMode:               params.TestMode,
	}, nil
}
