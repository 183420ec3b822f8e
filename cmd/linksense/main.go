package main

import (
	"fmt"
	"os"

	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "linksense",
		Usage: "Summarize links, render teaser videos and talk about them",
		Commands: []*cli.Command{
			{
				Name:   "serve",
				Usage:  "Run the HTTP and voice server",
				Action: serveAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "port",
						Usage:   "listen port, overrides PORT",
						EnvVars: []string{"LINKSENSE_PORT"},
					},
				},
			},
			{
				Name:      "summarize",
				Usage:     "Summarize URLs once and print the export text",
				ArgsUsage: "<url> [url...]",
				Action:    summarizeAction,
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:    "style",
						Aliases: []string{"s"},
						Usage:   "Short, Detailed, Bullet Points or Key Takeaways",
					},
					&cli.StringFlag{
						Name:    "language",
						Aliases: []string{"l"},
						Usage:   "target language",
					},
					&cli.StringFlag{
						Name:    "out",
						Aliases: []string{"o"},
						Usage:   "directory to write one export file per result",
					},
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
