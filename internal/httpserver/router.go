package httpserver

import (
	"log"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/jackc/pgx/v5/pgxpool"

	"storefront-engine/internal/identity"
	storerepo "storefront-engine/internal/repository/store"
	checkoutsvc "storefront-engine/internal/service/checkout"
	couponsvc "storefront-engine/internal/service/coupon"
	guestlinksvc "storefront-engine/internal/service/guestlink"
	ordersvc "storefront-engine/internal/service/order"
	shippingsvc "storefront-engine/internal/service/shipping"
)

// Deps bundles everything the routes need.
type Deps struct {
	CheckoutSvc  *checkoutsvc.Service
	OrderSvc     *ordersvc.Service
	CouponSvc    *couponsvc.Service
	ShippingSvc  *shippingsvc.Service
	GuestLinkSvc *guestlinksvc.Service
	Verifier     identity.Verifier
	Stores       storerepo.Repository
}

// buildRouter wires routes for the API.
func buildRouter(logger *log.Logger, db *pgxpool.Pool, deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	router := gin.New()
	router.Use(gin.LoggerWithWriter(logger.Writer()), gin.Recovery())
	router.Use(cors.New(cors.Config{
		AllowAllOrigins: true,
		AllowMethods:    []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowHeaders:    []string{"Authorization", "Content-Type"},
	}))

	router.GET("/healthz", healthHandler)
	router.GET("/readyz", readyHandler(db))

	h := &handlers{deps: deps, logger: logger}

	api := router.Group("/api")
	{
		api.POST("/orders", h.optionalAuth, h.createOrder)
		api.GET("/orders", h.requireAuth, h.listOrders)
		api.POST("/coupon", h.requireAuth, h.evaluateCoupon)
		api.GET("/shipping", h.getShipping)
		api.POST("/user/link-guest-orders", h.requireAuth, h.linkGuestOrders)

		store := api.Group("/store", h.requireAuth, h.requireSeller)
		{
			store.GET("/coupons", h.listStoreCoupons)
			store.POST("/coupons", h.createCoupon)
			store.DELETE("/coupons/:code", h.deleteCoupon)
			store.PUT("/shipping", h.updateShipping)
			store.GET("/orders", h.listStoreOrders)
			store.PUT("/orders/:id/status", h.updateOrderStatus)
		}
	}

	return router
}
