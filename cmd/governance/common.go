package main

import (
	"encoding/json"
	"fmt"
	"path/filepath"

	"github.com/axiomesh/axiom-kit/log"
	"github.com/axiomesh/governance"
	"github.com/axiomesh/governance/core"
	"github.com/axiomesh/governance/repo"
	"github.com/ethereum/go-ethereum/common"
	"github.com/urfave/cli/v2"
)

// openGovernance loads the repo, sets up file logging and opens the engine.
// The caller closes the returned engine.
func openGovernance(ctx *cli.Context) (*core.Governance, error) {
	p, err := getRootPath(ctx)
	if err != nil {
		return nil, err
	}
	r, err := repo.Load(p)
	if err != nil {
		return nil, err
	}

	err = log.Initialize(
		log.WithReportCaller(r.Config.Log.ReportCaller),
		log.WithPersist(true),
		log.WithFilePath(filepath.Join(r.Config.RepoRoot, repo.LogsDirName)),
		log.WithFileName(r.Config.Log.Filename),
		log.WithMaxAge(r.Config.Log.MaxAge),
		log.WithRotationTime(r.Config.Log.RotationTime),
	)
	if err != nil {
		return nil, fmt.Errorf("log initialize: %w", err)
	}

	g, err := core.NewGovernance(ctx.Context, r.Config)
	if err != nil {
		return nil, fmt.Errorf("open governance: %w", err)
	}
	return g, nil
}

// withGovernance runs fn against an opened engine and closes it afterwards.
func withGovernance(ctx *cli.Context, fn func(g *core.Governance) error) error {
	g, err := openGovernance(ctx)
	if err != nil {
		return err
	}
	defer g.Close()

	if err := fn(g); err != nil {
		return describeError(err)
	}
	return nil
}

func describeError(err error) error {
	if kind := core.KindOf(err); kind != core.KindUnknown {
		return fmt.Errorf("%s error: %w", kind, err)
	}
	return err
}

func parseAddress(name, s string) (common.Address, error) {
	if !common.IsHexAddress(s) {
		return common.Address{}, fmt.Errorf("%s: %q is not an address", name, s)
	}
	return common.HexToAddress(s), nil
}

func fromAddress(ctx *cli.Context) (common.Address, error) {
	from := ctx.String("from")
	if from == "" {
		return common.Address{}, fmt.Errorf("--from is required")
	}
	return parseAddress("from", from)
}

func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(data))
	return nil
}

func printVersion() {
	fmt.Printf("Governance version: %s-%s-%s\n", governance.CurrentVersion, governance.CurrentBranch, governance.CurrentCommit)
	fmt.Printf("App build date: %s\n", governance.BuildDate)
	fmt.Printf("System version: %s\n", governance.Platform)
	fmt.Printf("Golang version: %s\n", governance.GoVersion)
	fmt.Println()
}
