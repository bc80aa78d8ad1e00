package models

import (
	"github.com/shopspring/decimal"
)

type CreateWalletRequest struct {
	WalletID int64 `json:"walletId" binding:"required"`
}

type ConversionRequest struct {
	WalletID int64           `json:"walletId" binding:"required"`
	Amount   decimal.Decimal `json:"amount" binding:"required"`
}

type ReserveRequest struct {
	Amount decimal.Decimal `json:"amount" binding:"required"`
}

// VcoinsToVdollarsResponse is returned for the VCoin->VDollar direction: the
// caller is the clicker frontend, so the updated account is the headline.
type VcoinsToVdollarsResponse struct {
	Account       Account         `json:"account"`
	WalletBalance decimal.Decimal `json:"walletBalance"`
}

// VdollarsToVcoinsResponse is returned for the VDollar->VCoin direction.
type VdollarsToVcoinsResponse struct {
	Account              Account         `json:"account"`
	UpdatedWalletBalance decimal.Decimal `json:"updatedWalletBalance"`
}
