package database

import (
	"sort"

	"github.com/user/brokerage/backend/internal/models"
)

func sortHoldings(holdings []*models.Holding) {
	sort.Slice(holdings, func(i, j int) bool {
		return holdings[i].AssetSymbol < holdings[j].AssetSymbol
	})
}

func sortOrdersNewestFirst(orders []*models.Order) {
	sort.Slice(orders, func(i, j int) bool {
		return orders[i].CreatedAt.After(orders[j].CreatedAt)
	})
}
