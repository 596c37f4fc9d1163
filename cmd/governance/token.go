package main

import (
	"fmt"
	"strconv"

	"github.com/axiomesh/governance/core"
	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"
)

var mintFlag = &cli.StringFlag{
	Name:  "mint",
	Usage: "committee, deposit or a token address",
	Value: "committee",
}

var tokenCMD = &cli.Command{
	Name:  "token",
	Usage: "The token ledger commands",
	Subcommands: []*cli.Command{
		{
			Name:      "credit",
			Usage:     "Mint raw token units to an owner, test mode only",
			ArgsUsage: "<owner> <amount>",
			Flags:     []cli.Flag{mintFlag},
			Action:    credit,
		},
		{
			Name:      "balance",
			Usage:     "Show the raw token balance of an owner",
			ArgsUsage: "<owner>",
			Flags:     []cli.Flag{mintFlag},
			Action:    balance,
		},
	},
}

func resolveMint(ctx *cli.Context, cfg *core.GovernanceConfig) (common.Address, error) {
	switch mint := ctx.String("mint"); mint {
	case "committee":
		return cfg.CommitteeMint, nil
	case "deposit":
		return cfg.DepositMint, nil
	default:
		return parseAddress("mint", mint)
	}
}

func credit(ctx *cli.Context) error {
	from, err := fromAddress(ctx)
	if err != nil {
		return err
	}
	owner, err := parseAddress("owner", ctx.Args().Get(0))
	if err != nil {
		return err
	}
	amount, err := strconv.ParseUint(ctx.Args().Get(1), 10, 64)
	if err != nil {
		return fmt.Errorf("amount: %w", err)
	}

	return withGovernance(ctx, func(g *core.Governance) error {
		cfg, err := g.GovernanceConfig()
		if err != nil {
			return err
		}
		mint, err := resolveMint(ctx, cfg)
		if err != nil {
			return err
		}
		if err := g.Credit(from, mint, owner, amount); err != nil {
			return err
		}
		fmt.Printf("credited %d of %s to %s\n", amount, mint, owner)
		return nil
	})
}

func balance(ctx *cli.Context) error {
	owner, err := parseAddress("owner", ctx.Args().First())
	if err != nil {
		return err
	}

	return withGovernance(ctx, func(g *core.Governance) error {
		cfg, err := g.GovernanceConfig()
		if err != nil {
			return err
		}
		mint, err := resolveMint(ctx, cfg)
		if err != nil {
			return err
		}
		amount, err := g.Balances.BalanceOf(ctx.Context, mint, owner)
		if err != nil {
			return err
		}
		fmt.Println(amount)
		return nil
	})
}
