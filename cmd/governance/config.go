package main

import (
	"fmt"
	"os"

	"github.com/axiomesh/governance/repo"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
)

var configCMD = &cli.Command{
	Name:  "config",
	Usage: "The config manage commands",
	Subcommands: []*cli.Command{
		{
			Name:   "generate",
			Usage:  "Generate default config",
			Action: generate,
		},
		{
			Name:   "show",
			Usage:  "Show the config processed by the environment variables and the genesis it resolves to",
			Action: show,
		},
		{
			Name:   "check",
			Usage:  "Check if the config file and its genesis section are valid",
			Action: check,
		},
		{
			Name:   "rewrite-with-env",
			Usage:  "Rewrite config with env",
			Action: rewriteWithEnv,
		},
	},
}

func generate(ctx *cli.Context) error {
	p, err := getRootPath(ctx)
	if err != nil {
		return err
	}
	if repo.Exist(p) {
		fmt.Println("governance repo already exists")
		return nil
	}

	if err := os.MkdirAll(p, 0755); err != nil {
		return err
	}

	r := &repo.Repo{
		Config: repo.DefaultConfig(p),
	}
	if err := r.Flush(); err != nil {
		return err
	}

	fmt.Printf("initializing governance repo at %s\n", p)
	return nil
}

func show(ctx *cli.Context) error {
	p, err := getRootPath(ctx)
	if err != nil {
		return err
	}
	if !repo.Exist(p) {
		fmt.Println("governance repo not exist")
		return nil
	}

	r, err := repo.Load(p)
	if err != nil {
		return err
	}
	str, err := repo.MarshalConfig(r.Config)
	if err != nil {
		return err
	}
	fmt.Println(str)

	genesis, err := resolveGenesis(r.Config)
	if err != nil {
		return errors.Wrap(err, "resolve genesis")
	}
	fmt.Println("resolved genesis:")
	return printJSON(genesis)
}

func check(ctx *cli.Context) error {
	p, err := getRootPath(ctx)
	if err != nil {
		return err
	}
	if !repo.Exist(p) {
		fmt.Println("governance repo not exist")
		return nil
	}

	r, err := repo.Load(p)
	if err != nil {
		fmt.Println("config file format error, please check:", err)
		os.Exit(1)
		return nil
	}
	if _, err := resolveGenesis(r.Config); err != nil {
		fmt.Println("genesis section is invalid:", err)
		os.Exit(1)
		return nil
	}

	fmt.Println("config file is valid")
	return nil
}

func rewriteWithEnv(ctx *cli.Context) error {
	p, err := getRootPath(ctx)
	if err != nil {
		return err
	}
	if !repo.Exist(p) {
		fmt.Println("governance repo not exist")
		return nil
	}

	r, err := repo.Load(p)
	if err != nil {
		return err
	}
	return r.Flush()
}

func getRootPath(ctx *cli.Context) (string, error) {
	return repo.LoadRepoRootFromEnv(ctx.String("repo"))
}
