package api

import (
	"github.com/gofiber/fiber/v2"
	"github.com/travigo/rtproxy/pkg/api/routes"
	"github.com/travigo/rtproxy/pkg/realtime/proxies"
)

func NewApp(manager *proxies.Manager) *fiber.App {
	webApp := fiber.New(fiber.Config{
		DisableStartupMessage: true,
	})
	webApp.Use(NewLogger())

	group := webApp.Group("/realtime")

	group.Get("version", routes.APIVersion)

	routes.RealtimeRouter(group, manager)

	return webApp
}

func SetupServer(listen string, manager *proxies.Manager) error {
	return NewApp(manager).Listen(listen)
}
