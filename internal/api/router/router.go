package router

import (
	"github.com/wb-go/wbf/ginext"

	"github.com/Madhu097/foodremainder-sub000/internal/api/handlers/notification"
	"github.com/Madhu097/foodremainder-sub000/internal/api/handlers/scheduler"
	"github.com/Madhu097/foodremainder-sub000/internal/api/respond"
	"github.com/Madhu097/foodremainder-sub000/internal/middlewares"
)

// New wires the route tree. apiSecret guards the cron-triggered and
// scheduler-control endpoints; user-scoped endpoints stay open for the
// web client.
func New(notif *notification.Handler, sched *scheduler.Handler, apiSecret string) *ginext.Engine {
	e := ginext.New()
	e.Use(middlewares.CORSMiddleware())
	e.Use(ginext.Logger())
	e.Use(ginext.Recovery())

	e.GET("/health", func(c *ginext.Context) {
		respond.OK(c.Writer, map[string]string{"status": "ok"})
	})

	api := e.Group("/api/notifications")
	{
		// cron providers differ on whether they issue GET or POST
		api.GET("/check-all", middlewares.APIKeyAuth(apiSecret), notif.CheckAll)
		api.POST("/check-all", middlewares.APIKeyAuth(apiSecret), notif.CheckAll)

		api.POST("/test/:userId", notif.Test)
		api.PUT("/preferences/:userId", notif.UpdatePreferences)

		api.GET("/push/vapid-key", notif.VapidKey)
		api.POST("/push/subscribe/:userId", notif.Subscribe)
		api.DELETE("/push/subscribe/:userId", notif.Unsubscribe)
	}

	sch := e.Group("/api/scheduler", middlewares.APIKeyAuth(apiSecret))
	{
		sch.GET("/status", sched.Status)
		sch.POST("/start", sched.Start)
		sch.POST("/stop", sched.Stop)
	}

	return e
}
