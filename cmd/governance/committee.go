package main

import (
	"fmt"

	"github.com/axiomesh/governance/core"
	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"
)

var committeeCMD = &cli.Command{
	Name:  "committee",
	Usage: "The committee roster commands",
	Subcommands: []*cli.Command{
		{
			Name:      "add",
			Usage:     "Add a member to the first empty committee slot",
			ArgsUsage: "<member>",
			Action:    addMember,
		},
		{
			Name:      "remove",
			Usage:     "Remove a member and free its slot",
			ArgsUsage: "<member>",
			Action:    removeMember,
		},
		{
			Name:   "list",
			Usage:  "List committee slots with their live voting power",
			Action: listMembers,
		},
	},
}

func addMember(ctx *cli.Context) error {
	return changeRoster(ctx, (*core.Governance).AddCommitteeMember)
}

func removeMember(ctx *cli.Context) error {
	return changeRoster(ctx, (*core.Governance).RemoveCommitteeMember)
}

func changeRoster(ctx *cli.Context, change func(g *core.Governance, caller, member common.Address) error) error {
	from, err := fromAddress(ctx)
	if err != nil {
		return err
	}
	member, err := parseAddress("member", ctx.Args().First())
	if err != nil {
		return err
	}
	return withGovernance(ctx, func(g *core.Governance) error {
		if err := change(g, from, member); err != nil {
			return err
		}
		fmt.Println("committee updated")
		return nil
	})
}

func listMembers(ctx *cli.Context) error {
	return withGovernance(ctx, func(g *core.Governance) error {
		cfg, err := g.GovernanceConfig()
		if err != nil {
			return err
		}
		for i, member := range cfg.Committee {
			if member == nil {
				fmt.Printf("%d: <empty>\n", i)
				continue
			}
			balance, err := g.Balances.BalanceOf(ctx.Context, cfg.CommitteeMint, *member)
			if err != nil {
				return err
			}
			power, err := core.Power(balance, cfg.CommitteeDecimals)
			if err != nil {
				return err
			}
			fmt.Printf("%d: %s power=%d\n", i, member.Hex(), power)
		}
		return nil
	})
}
