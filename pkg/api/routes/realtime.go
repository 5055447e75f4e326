package routes

import (
	"errors"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/liip/sheriff"
	"github.com/rs/zerolog/log"
	"github.com/travigo/rtproxy/pkg/ctdf"
	"github.com/travigo/rtproxy/pkg/realtime/proxies"
	"github.com/travigo/rtproxy/pkg/realtime/synthese"
)

func RealtimeRouter(router fiber.Router, manager *proxies.Manager) {
	router.Get("/status", func(c *fiber.Ctx) error {
		return c.JSON(manager.Statuses())
	})

	router.Get("/:provider/status", func(c *fiber.Ctx) error {
		proxy, err := manager.Get(c.Params("provider"))
		if err != nil {
			c.SendStatus(fiber.StatusNotFound)
			return c.JSON(fiber.Map{
				"error": "Could not find realtime provider matching identifier",
			})
		}

		return c.JSON(proxy.Status())
	})

	router.Get("/:provider/next_passages", func(c *fiber.Ctx) error {
		return getNextPassages(c, manager)
	})
}

func getNextPassages(c *fiber.Ctx, manager *proxies.Manager) error {
	proxy, err := manager.Get(c.Params("provider"))
	if err != nil {
		c.SendStatus(fiber.StatusNotFound)
		return c.JSON(fiber.Map{
			"error": "Could not find realtime provider matching identifier",
		})
	}

	routeIdentifier := c.Query("route")
	stopIdentifier := c.Query("stop")
	countString := c.Query("count")
	dateTimeString := c.Query("datetime")

	if routeIdentifier == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter route is required",
		})
	}

	if stopIdentifier == "" {
		c.SendStatus(fiber.StatusBadRequest)
		return c.JSON(fiber.Map{
			"error": "Parameter stop is required",
		})
	}

	var count int
	if countString != "" {
		count, err = strconv.Atoi(countString)

		if err != nil || count < 0 {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Parameter count should be a positive integer",
			})
		}
	}

	var from *time.Time
	if dateTimeString != "" {
		dateTime, err := time.Parse(time.RFC3339, dateTimeString)

		if err != nil {
			c.SendStatus(fiber.StatusBadRequest)
			return c.JSON(fiber.Map{
				"error": "Parameter datetime should be an RFC3339/ISO8601 datetime",
			})
		}

		from = &dateTime
	}

	routePoint := ctdf.NewRoutePoint(proxy.ObjectIDTag(), routeIdentifier, stopIdentifier)

	passages, err := proxy.NextPassages(c.UserContext(), routePoint, count, from)
	if errors.Is(err, synthese.ErrInvalidDocument) {
		c.SendStatus(fiber.StatusBadGateway)
		return c.JSON(fiber.Map{
			"error": "Realtime provider returned an invalid document",
		})
	} else if err != nil {
		log.Error().Err(err).Str("id", proxy.ID()).Msg("Failed to get next passages")
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Could not get next passages",
		})
	}

	if passages == nil {
		passages = []ctdf.RealTimePassage{}
	}

	passagesReduced, err := sheriff.Marshal(&sheriff.Options{
		Groups: []string{"basic"},
	}, passages)

	if err != nil {
		c.SendStatus(fiber.StatusInternalServerError)
		return c.JSON(fiber.Map{
			"error": "Sherrif could not reduce passages",
		})
	}

	return c.JSON(fiber.Map{
		"realtime": len(passages) > 0,
		"passages": passagesReduced,
	})
}
