package main

import (
	"fmt"

	"github.com/axiomesh/governance/core"
	"github.com/urfave/cli/v2"
)

var voteCMD = &cli.Command{
	Name:  "vote",
	Usage: "The committee vote commands",
	Subcommands: []*cli.Command{
		{
			Name:      "cast",
			Usage:     "Vote on a proposal with the current committee token balance",
			ArgsUsage: "<id> <Yes|No|Abstain|NoWithVeto>",
			Action:    castVote,
		},
		{
			Name:      "revoke",
			Usage:     "Revoke a vote before the revocation deadline",
			ArgsUsage: "<id>",
			Action:    revokeVote,
		},
	},
}

func castVote(ctx *cli.Context) error {
	from, err := fromAddress(ctx)
	if err != nil {
		return err
	}
	id, err := proposalID(ctx)
	if err != nil {
		return err
	}
	voteType, err := core.ParseVoteType(ctx.Args().Get(1))
	if err != nil {
		return err
	}

	return withGovernance(ctx, func(g *core.Governance) error {
		err := g.CastVote(ctx.Context, core.CastVoteRequest{
			ProposalID: id,
			Voter:      from,
			VoteType:   voteType,
		})
		if err != nil {
			return err
		}
		fmt.Printf("voted %s on proposal %d\n", voteType, id)
		return nil
	})
}

func revokeVote(ctx *cli.Context) error {
	from, err := fromAddress(ctx)
	if err != nil {
		return err
	}
	id, err := proposalID(ctx)
	if err != nil {
		return err
	}
	return withGovernance(ctx, func(g *core.Governance) error {
		if err := g.RevokeVote(id, from); err != nil {
			return err
		}
		fmt.Printf("vote on proposal %d revoked\n", id)
		return nil
	})
}
