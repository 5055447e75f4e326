package realtime

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/kr/pretty"
	"github.com/rs/zerolog/log"
	"github.com/travigo/rtproxy/pkg/ctdf"
	"github.com/travigo/rtproxy/pkg/realtime/proxies"
	"github.com/urfave/cli/v2"
)

var configFlag = &cli.StringFlag{
	Name:    "config",
	Usage:   "realtime proxy configuration file",
	EnvVars: []string{"TRAVIGO_REALTIME_PROXY_CONFIG"},
}

func RegisterCLI() *cli.Command {
	return &cli.Command{
		Name:  "realtime",
		Usage: "Realtime passage proxies",
		Subcommands: []*cli.Command{
			{
				Name:  "next-passages",
				Usage: "fetch the next realtime passages of route points from a provider",
				Flags: []cli.Flag{
					configFlag,
					&cli.StringFlag{
						Name:     "provider",
						Usage:    "provider id",
						Required: true,
					},
					&cli.StringSliceFlag{
						Name:     "point",
						Usage:    "route point as route:stop, may be repeated",
						Required: true,
					},
					&cli.IntFlag{
						Name:  "count",
						Usage: "maximum number of passages requested from the provider",
					},
					&cli.StringFlag{
						Name:  "datetime",
						Usage: "RFC3339 reference time, defaults to the provider's own",
					},
				},
				Action: func(c *cli.Context) error {
					manager, err := proxies.Setup(c.String("config"))
					if err != nil {
						return err
					}

					proxy, err := manager.Get(c.String("provider"))
					if err != nil {
						return err
					}

					var from *time.Time
					if c.String("datetime") != "" {
						dateTime, err := time.Parse(time.RFC3339, c.String("datetime"))
						if err != nil {
							return err
						}
						from = &dateTime
					}

					var requests []proxies.PassageRequest
					for _, value := range c.StringSlice("point") {
						point, err := parseRoutePoint(proxy.ObjectIDTag(), value)
						if err != nil {
							return err
						}

						requests = append(requests, proxies.PassageRequest{
							ProviderID: proxy.ID(),
							Point:      point,
							Count:      c.Int("count"),
							From:       from,
						})
					}

					for _, result := range manager.NextPassagesConcurrently(context.Background(), requests) {
						if result.Error != nil {
							log.Error().Err(result.Error).Str("id", result.Request.ProviderID).Msg("Failed to get next passages")
							continue
						}
						if result.Passages == nil {
							log.Info().Str("id", result.Request.ProviderID).Msg("No realtime data, use the base schedule")
						}

						pretty.Println(result.Request.Point, result.Passages)
					}

					return nil
				},
			},
			{
				Name:  "status",
				Usage: "print the status of every configured provider",
				Flags: []cli.Flag{
					configFlag,
				},
				Action: func(c *cli.Context) error {
					manager, err := proxies.Setup(c.String("config"))
					if err != nil {
						return err
					}

					pretty.Println(manager.Statuses())

					return nil
				},
			},
		},
	}
}

func parseRoutePoint(tag string, value string) (*ctdf.RoutePoint, error) {
	routeID, stopID, found := strings.Cut(value, ":")
	if !found || routeID == "" || stopID == "" {
		return nil, fmt.Errorf("route point %q should be formatted as route:stop", value)
	}

	return ctdf.NewRoutePoint(tag, routeID, stopID), nil
}
