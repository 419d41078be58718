package httpserver

import (
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-engine/internal/domain"
	checkoutsvc "storefront-engine/internal/service/checkout"
	ordersvc "storefront-engine/internal/service/order"
)

type handlers struct {
	deps   Deps
	logger *log.Logger
}

type createOrderRequest struct {
	AddressID     string                 `json:"addressId"`
	Items         []checkoutsvc.LineItem `json:"items" binding:"required"`
	CouponCode    string                 `json:"couponCode"`
	PaymentMethod domain.PaymentMethod   `json:"paymentMethod" binding:"required"`
	IsGuest       bool                   `json:"isGuest"`
	GuestInfo     *checkoutsvc.GuestInfo `json:"guestInfo"`
	Express       bool                   `json:"express"`
}

func (h *handlers) createOrder(c *gin.Context) {
	var req createOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "missing order details."})
		return
	}

	in := checkoutsvc.CreateInput{
		AddressID:     req.AddressID,
		Items:         req.Items,
		CouponCode:    req.CouponCode,
		PaymentMethod: req.PaymentMethod,
		Express:       req.Express,
	}
	if req.IsGuest {
		if req.GuestInfo == nil {
			writeError(c, domain.Invalid("missing guest information", "guestInfo"))
			return
		}
		in.Guest = req.GuestInfo
	} else {
		id, ok := callerIdentity(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "not authorized"})
			return
		}
		in.UserID = id.UID
		in.IsPlusMember = id.IsPlusMember()
	}

	result, err := h.deps.CheckoutSvc.Create(c.Request.Context(), in)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}

func (h *handlers) listOrders(c *gin.Context) {
	id, _ := callerIdentity(c)
	orders, err := h.deps.OrderSvc.ListForUser(c.Request.Context(), id.UID)
	if err != nil {
		writeError(c, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *handlers) listStoreOrders(c *gin.Context) {
	orders, err := h.deps.OrderSvc.ListForStore(c.Request.Context(), callerStoreID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if orders == nil {
		orders = []domain.Order{}
	}
	c.JSON(http.StatusOK, gin.H{"orders": orders})
}

func (h *handlers) updateOrderStatus(c *gin.Context) {
	var req ordersvc.StatusInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid status payload"})
		return
	}
	order, err := h.deps.OrderSvc.UpdateStatus(c.Request.Context(), callerStoreID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"order": order})
}

func (h *handlers) linkGuestOrders(c *gin.Context) {
	var req struct {
		Email string `json:"email"`
		Phone string `json:"phone"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "email or phone required"})
		return
	}
	id, _ := callerIdentity(c)
	if req.Email == "" {
		req.Email = id.Email
	}
	result, err := h.deps.GuestLinkSvc.Link(c.Request.Context(), id.UID, req.Email, req.Phone)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, result)
}
