package main

import (
	"fmt"
	"math"
	"strconv"

	"github.com/axiomesh/governance/core"
	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"
)

var adminCMD = &cli.Command{
	Name:  "admin",
	Usage: "Authority-only governance parameter commands",
	Subcommands: []*cli.Command{
		{
			Name:  "update-config",
			Usage: "Change the given governance parameters",
			Flags: []cli.Flag{
				&cli.Uint64Flag{Name: "deposit", Usage: "proposal deposit in raw deposit token units"},
				&cli.Uint64Flag{Name: "voting-period", Usage: "voting period in seconds"},
				&cli.UintFlag{Name: "participation-threshold", Usage: "basis points"},
				&cli.UintFlag{Name: "approval-threshold", Usage: "basis points"},
				&cli.UintFlag{Name: "veto-threshold", Usage: "basis points"},
				&cli.UintFlag{Name: "fee-rate", Usage: "basis points"},
				&cli.BoolFlag{Name: "test-mode"},
			},
			Action: updateConfig,
		},
		{
			Name:      "set-counter",
			Usage:     "Move the proposal id counter forward",
			ArgsUsage: "<counter>",
			Action:    setCounter,
		},
		{
			Name:      "set-total-power",
			Usage:     "Overwrite the cached total voting power",
			ArgsUsage: "<power>",
			Action:    setTotalPower,
		},
	},
}

func updateConfig(ctx *cli.Context) error {
	from, err := fromAddress(ctx)
	if err != nil {
		return err
	}

	update := core.ConfigUpdateParams{}
	if ctx.IsSet("deposit") {
		v := ctx.Uint64("deposit")
		update.ProposalDeposit = &v
	}
	if ctx.IsSet("voting-period") {
		v := ctx.Uint64("voting-period")
		update.VotingPeriod = &v
	}
	for name, dst := range map[string]**uint16{
		"participation-threshold": &update.ParticipationThreshold,
		"approval-threshold":      &update.ApprovalThreshold,
		"veto-threshold":          &update.VetoThreshold,
		"fee-rate":                &update.FeeRate,
	} {
		if !ctx.IsSet(name) {
			continue
		}
		v := ctx.Uint(name)
		if v > math.MaxUint16 {
			return fmt.Errorf("%s: %d out of range", name, v)
		}
		bp := uint16(v)
		*dst = &bp
	}
	if ctx.IsSet("test-mode") {
		v := ctx.Bool("test-mode")
		update.TestMode = &v
	}

	return withGovernance(ctx, func(g *core.Governance) error {
		if err := g.UpdateConfig(from, update); err != nil {
			return err
		}
		fmt.Println("governance config updated")
		return nil
	})
}

func setCounter(ctx *cli.Context) error {
	return setUint64(ctx, "counter", (*core.Governance).SetProposalCounter)
}

func setTotalPower(ctx *cli.Context) error {
	return setUint64(ctx, "power", (*core.Governance).SetTotalVotingPower)
}

func setUint64(ctx *cli.Context, name string, set func(g *core.Governance, caller common.Address, v uint64) error) error {
	from, err := fromAddress(ctx)
	if err != nil {
		return err
	}
	v, err := strconv.ParseUint(ctx.Args().First(), 10, 64)
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	return withGovernance(ctx, func(g *core.Governance) error {
		if err := set(g, from, v); err != nil {
			return err
		}
		fmt.Printf("%s set to %d\n", name, v)
		return nil
	})
}
