package httpserver

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"storefront-engine/internal/domain"
	couponsvc "storefront-engine/internal/service/coupon"
)

type evaluateCouponRequest struct {
	Code           string   `json:"code" binding:"required"`
	CartTotalCents int64    `json:"cartTotalCents"`
	ProductIDs     []string `json:"productIds"`
	StoreID        string   `json:"storeId"`
}

func (h *handlers) evaluateCoupon(c *gin.Context) {
	var req evaluateCouponRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "coupon code required"})
		return
	}
	id, _ := callerIdentity(c)
	coupon, err := h.deps.CouponSvc.Evaluate(c.Request.Context(), couponsvc.EvaluateInput{
		Code:           req.Code,
		CartTotalCents: req.CartTotalCents,
		ProductIDs:     req.ProductIDs,
		StoreID:        req.StoreID,
		UserID:         id.UID,
		IsPlusMember:   id.IsPlusMember(),
	})
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"coupon": coupon})
}

func (h *handlers) listStoreCoupons(c *gin.Context) {
	coupons, err := h.deps.CouponSvc.ListForStore(c.Request.Context(), callerStoreID(c))
	if err != nil {
		writeError(c, err)
		return
	}
	if coupons == nil {
		coupons = []domain.Coupon{}
	}
	c.JSON(http.StatusOK, gin.H{"coupons": coupons})
}

func (h *handlers) createCoupon(c *gin.Context) {
	var req couponsvc.CreateInput
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid coupon payload"})
		return
	}
	coupon, err := h.deps.CouponSvc.Create(c.Request.Context(), callerStoreID(c), req)
	if err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusCreated, gin.H{"coupon": coupon})
}

func (h *handlers) deleteCoupon(c *gin.Context) {
	if err := h.deps.CouponSvc.Delete(c.Request.Context(), callerStoreID(c), c.Param("code")); err != nil {
		writeError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"message": "coupon deleted"})
}
