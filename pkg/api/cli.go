package api

import (
	"github.com/travigo/rtproxy/pkg/realtime/proxies"
	"github.com/urfave/cli/v2"
)

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "web-api",
		Usage: "Provides the realtime passages web API",
		Subcommands: []*cli.Command{
			{
				Name:  "run",
				Usage: "run web api server",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "listen",
						Value: ":8080",
						Usage: "listen target for the web server",
					},
					&cli.StringFlag{
						Name:    "config",
						Usage:   "realtime proxy configuration file",
						EnvVars: []string{"TRAVIGO_REALTIME_PROXY_CONFIG"},
					},
				},
				Action: func(c *cli.Context) error {
					manager, err := proxies.Setup(c.String("config"))
					if err != nil {
						return err
					}

					return SetupServer(c.String("listen"), manager)
				},
			},
		},
	}
}
