package main

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/axiomesh/governance/core"
	"github.com/urfave/cli/v2"
)

var proposalCMD = &cli.Command{
	Name:  "proposal",
	Usage: "The proposal lifecycle commands",
	Subcommands: []*cli.Command{
		{
			Name:  "create",
			Usage: "Create a proposal and lock its deposit",
			Flags: []cli.Flag{
				&cli.StringFlag{Name: "title", Required: true},
				&cli.StringFlag{Name: "description", Required: true},
				&cli.StringFlag{
					Name:     "type",
					Usage:    "SlashMerchant, DisputeArbitration, RuleUpdate or ConfigUpdate",
					Required: true,
				},
				&cli.StringFlag{Name: "payload", Usage: "path of a JSON execution payload"},
				&cli.Uint64Flag{Name: "deposit", Usage: "custom deposit in whole deposit tokens"},
			},
			Action: createProposal,
		},
		{
			Name:      "show",
			Usage:     "Show a proposal and its votes",
			ArgsUsage: "<id>",
			Action:    showProposal,
		},
		{
			Name:   "list",
			Usage:  "List all proposals",
			Action: listProposals,
		},
		{
			Name:      "finalize",
			Usage:     "Tally a proposal whose voting has ended and settle its deposit",
			ArgsUsage: "<id>",
			Action:    finalizeProposal,
		},
		{
			Name:      "execute",
			Usage:     "Mark a passed proposal as executed",
			ArgsUsage: "<id>",
			Action:    executeProposal,
		},
		{
			Name:      "query",
			Usage:     "Show the current tally against live voting power",
			ArgsUsage: "<id>",
			Action:    queryProposal,
		},
	},
}

func proposalID(ctx *cli.Context) (uint64, error) {
	id, err := strconv.ParseUint(ctx.Args().First(), 10, 64)
	if err != nil {
		return 0, fmt.Errorf("proposal id: %w", err)
	}
	return id, nil
}

func createProposal(ctx *cli.Context) error {
	from, err := fromAddress(ctx)
	if err != nil {
		return err
	}
	proposalType, err := core.ParseProposalType(ctx.String("type"))
	if err != nil {
		return err
	}

	req := core.CreateProposalRequest{
		Proposer:    from,
		Title:       ctx.String("title"),
		Description: ctx.String("description"),
		Type:        proposalType,
	}
	if path := ctx.String("payload"); path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		if req.Payload, err = core.DecodePayload(proposalType, data); err != nil {
			return err
		}
	}
	if ctx.IsSet("deposit") {
		deposit := ctx.Uint64("deposit")
		req.CustomDepositRaw = &deposit
	}

	return withGovernance(ctx, func(g *core.Governance) error {
		id, err := g.CreateProposal(req)
		if err != nil {
			return err
		}
		fmt.Printf("proposal %d created\n", id)
		return nil
	})
}

func showProposal(ctx *cli.Context) error {
	id, err := proposalID(ctx)
	if err != nil {
		return err
	}
	return withGovernance(ctx, func(g *core.Governance) error {
		p, err := g.Proposal(id)
		if err != nil {
			return err
		}
		votes, err := g.Votes(id)
		if err != nil {
			return err
		}
		return printJSON(struct {
			Proposal *core.Proposal
			Votes    []*core.VoteRecord
		}{p, votes})
	})
}

func listProposals(ctx *cli.Context) error {
	return withGovernance(ctx, func(g *core.Governance) error {
		proposals, err := g.Proposals()
		if err != nil {
			return err
		}
		for _, p := range proposals {
			fmt.Printf("%d\t%s\t%s\t%s\tends %s\n", p.ID, p.Status, p.Type, p.Title,
				time.Unix(p.VotingEnd, 0).UTC().Format(time.RFC3339))
		}
		return nil
	})
}

func finalizeProposal(ctx *cli.Context) error {
	id, err := proposalID(ctx)
	if err != nil {
		return err
	}
	return withGovernance(ctx, func(g *core.Governance) error {
		input, err := g.Collect(ctx.Context, id)
		if err != nil {
			return err
		}
		result, err := g.Finalize(id, *input)
		if err != nil {
			return err
		}
		return printJSON(result)
	})
}

func executeProposal(ctx *cli.Context) error {
	id, err := proposalID(ctx)
	if err != nil {
		return err
	}
	return withGovernance(ctx, func(g *core.Governance) error {
		if err := g.Execute(id); err != nil {
			return err
		}
		p, err := g.Proposal(id)
		if err != nil {
			return err
		}
		fmt.Println(*p.ExecutionResult)
		return nil
	})
}

func queryProposal(ctx *cli.Context) error {
	id, err := proposalID(ctx)
	if err != nil {
		return err
	}
	return withGovernance(ctx, func(g *core.Governance) error {
		report, err := g.Query(ctx.Context, id)
		if err != nil {
			return err
		}
		return printJSON(report)
	})
}
