package handlers

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/shopspring/decimal"

	"vcasino_wallet/internal/conversion"
	"vcasino_wallet/internal/models"
	"vcasino_wallet/internal/repository"
)

//go:generate mockgen -source=http_handlers.go -destination=../../test/mock_wallet_service.go -package=test WalletService

type WalletService interface {
	CreateWallet(ctx context.Context, walletID int64) (models.Wallet, error)
	GetWallet(ctx context.Context, walletID int64) (models.Wallet, error)
	ConvertVcoinsToVdollars(ctx context.Context, walletID int64, amount decimal.Decimal) (models.VcoinsToVdollarsResponse, error)
	ConvertVdollarsToVcoins(ctx context.Context, walletID int64, amount decimal.Decimal) (models.VdollarsToVcoinsResponse, error)
	ReserveBalance(ctx context.Context, walletID int64, amount decimal.Decimal) (models.Wallet, error)
	ReleaseReserved(ctx context.Context, walletID int64, amount decimal.Decimal) (models.Wallet, error)
	FreezeWallet(ctx context.Context, walletID int64, frozen bool) error
}

type WalletHTTPHandler struct {
	service WalletService
}

func NewWalletHTTPHandler(service WalletService) *WalletHTTPHandler {
	return &WalletHTTPHandler{service: service}
}

func (h *WalletHTTPHandler) RegisterRoutes(r *gin.Engine) {
	v1 := r.Group("/api/v1")
	{
		v1.POST("/wallet", h.HandleCreateWallet)
		v1.GET("/wallet/:wallet_id", h.HandleGetWallet)
		v1.POST("/currency/vcoins/vdollars", h.HandleVcoinsToVdollars)
		v1.POST("/currency/vdollars/vcoins", h.HandleVdollarsToVcoins)
		v1.POST("/wallet/:wallet_id/reserve", h.HandleReserve)
		v1.POST("/wallet/:wallet_id/release", h.HandleRelease)
		v1.POST("/wallet/:wallet_id/freeze", h.HandleFreeze(true))
		v1.POST("/wallet/:wallet_id/unfreeze", h.HandleFreeze(false))
	}
}

func (h *WalletHTTPHandler) HandleCreateWallet(c *gin.Context) {
	var req models.CreateWalletRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	wallet, err := h.service.CreateWallet(c.Request.Context(), req.WalletID)
	if err != nil {
		if errors.Is(err, repository.ErrWalletAlreadyExist) {
			c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusCreated, wallet)
}

func (h *WalletHTTPHandler) HandleGetWallet(c *gin.Context) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}
	wallet, err := h.service.GetWallet(c.Request.Context(), walletID)
	if err != nil {
		status := http.StatusServiceUnavailable
		if errors.Is(err, repository.ErrWalletNotFound) {
			status = http.StatusNotFound
		}
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}
	c.JSON(http.StatusOK, wallet)
}

func (h *WalletHTTPHandler) HandleVcoinsToVdollars(c *gin.Context) {
	var req models.ConversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	res, err := h.service.ConvertVcoinsToVdollars(c.Request.Context(), req.WalletID, req.Amount)
	if err != nil {
		writeConversionError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *WalletHTTPHandler) HandleVdollarsToVcoins(c *gin.Context) {
	var req models.ConversionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	res, err := h.service.ConvertVdollarsToVcoins(c.Request.Context(), req.WalletID, req.Amount)
	if err != nil {
		writeConversionError(c, err)
		return
	}
	c.JSON(http.StatusOK, res)
}

func (h *WalletHTTPHandler) HandleReserve(c *gin.Context) {
	h.handleReservedMutation(c, h.service.ReserveBalance)
}

func (h *WalletHTTPHandler) HandleRelease(c *gin.Context) {
	h.handleReservedMutation(c, h.service.ReleaseReserved)
}

func (h *WalletHTTPHandler) handleReservedMutation(
	c *gin.Context,
	op func(ctx context.Context, walletID int64, amount decimal.Decimal) (models.Wallet, error),
) {
	walletID, ok := walletIDParam(c)
	if !ok {
		return
	}
	var req models.ReserveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid request", "details": err.Error()})
		return
	}
	wallet, err := op(c.Request.Context(), walletID, req.Amount)
	if err != nil {
		writeConversionError(c, err)
		return
	}
	c.JSON(http.StatusOK, wallet)
}

func (h *WalletHTTPHandler) HandleFreeze(frozen bool) gin.HandlerFunc {
	return func(c *gin.Context) {
		walletID, ok := walletIDParam(c)
		if !ok {
			return
		}
		if err := h.service.FreezeWallet(c.Request.Context(), walletID, frozen); err != nil {
			status := http.StatusServiceUnavailable
			if errors.Is(err, repository.ErrWalletNotFound) {
				status = http.StatusNotFound
			}
			c.JSON(status, gin.H{"error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"frozen": frozen})
	}
}

func walletIDParam(c *gin.Context) (int64, bool) {
	walletID, err := strconv.ParseInt(c.Param("wallet_id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid wallet_id"})
		return 0, false
	}
	return walletID, true
}

func writeConversionError(c *gin.Context, err error) {
	status := http.StatusServiceUnavailable
	switch {
	case errors.Is(err, conversion.ErrInvalidAmount),
		errors.Is(err, conversion.ErrBelowMinimumAmount),
		errors.Is(err, conversion.ErrInsufficientFunds),
		errors.Is(err, repository.ErrInsufficientFunds),
		errors.Is(err, repository.ErrInsufficientReserve):
		status = http.StatusBadRequest
	case errors.Is(err, repository.ErrWalletFrozen):
		status = http.StatusForbidden
	case errors.Is(err, repository.ErrWalletNotFound):
		status = http.StatusNotFound
	case errors.Is(err, repository.ErrVersionConflict):
		status = http.StatusConflict
	}
	c.JSON(status, gin.H{"error": err.Error()})
}
