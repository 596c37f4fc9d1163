package main

import (
	"fmt"
	"os"
	"time"

	"github.com/urfave/cli/v2"
)

func main() {
	app := cli.NewApp()
	app.Name = "Governance"
	app.Usage = "Committee governance for merchant disputes and platform rules"
	app.Compiled = time.Now()

	cli.VersionPrinter = func(c *cli.Context) {
		printVersion()
	}

	// global flags
	app.Flags = []cli.Flag{
		&cli.StringFlag{
			Name:  "repo",
			Usage: "Governance storage repo path",
		},
		&cli.StringFlag{
			Name:    "from",
			Usage:   "Address the command is issued by",
			EnvVars: []string{"GOVERNANCE_FROM"},
		},
	}

	app.Commands = []*cli.Command{
		configCMD,
		initCMD,
		committeeCMD,
		adminCMD,
		tokenCMD,
		proposalCMD,
		voteCMD,
		{
			Name:    "version",
			Aliases: []string{"v"},
			Usage:   "Governance version",
			Action: func(ctx *cli.Context) error {
				printVersion()
				return nil
			},
		},
	}

	err := app.Run(os.Args)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}
