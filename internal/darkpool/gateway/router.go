package gateway

import "github.com/gin-gonic/gin"

// RegisterRoutes wires the REST surface spec §1/§6 names: submit/cancel
// order, list-user-orders, list-user-matches, get-order-book,
// create/activate/revoke session key, create/resize/list channels, get
// ledger balances. Structured as route groups, following the teacher's
// router.go convention.
func RegisterRoutes(engine *gin.Engine, h *Handlers) {
	engine.GET("/health", h.health)

	api := engine.Group("/api")

	orders := api.Group("/orders")
	{
		orders.POST("", h.submitOrder)
		orders.POST("/:id/cancel", h.cancelOrder)
		orders.GET("", h.listUserOrders)
	}

	matches := api.Group("/matches")
	{
		matches.GET("", h.listUserMatches)
	}

	api.GET("/orderbook", h.getOrderBook)

	sessionKeys := api.Group("/session-keys")
	{
		sessionKeys.POST("", h.createSessionKey)
		sessionKeys.POST("/:id/activate", h.activateSessionKey)
		sessionKeys.POST("/:id/revoke", h.revokeSessionKey)
	}

	channels := api.Group("/channels")
	{
		channels.POST("", h.createChannel)
		channels.POST("/:id/resize", h.resizeChannel)
		channels.GET("", h.listChannels)
	}

	api.GET("/ledger", h.getLedgerBalances)
}
