// Package shop holds the pure pricing functions for the shell economy.
package shop

import (
	"hash/fnv"
	"math"

	"github.com/hackclub/shipwrecked-sub001/internal/model"
)

// progressDollarValue is the USD value of one percent of island progress.
const progressDollarValue = 14.0

// ShellPrice converts an item's USD cost into shells at the configured
// dollars-per-hour rate. A non-positive rate prices everything at zero.
func ShellPrice(usdCost, dollarsPerHour float64) int {
	if dollarsPerHour <= 0 {
		return 0
	}
	return int(math.Round(usdCost * 10 * dollarsPerHour))
}

// RandomizedPrice jitters a base price deterministically per (user, item):
// the same user always sees the same price for the same item, but different
// users or items land elsewhere in [minPercent, maxPercent] of the base.
func RandomizedPrice(userID, itemID string, basePrice, minPercent, maxPercent int) int {
	if maxPercent < minPercent {
		minPercent, maxPercent = maxPercent, minPercent
	}
	span := maxPercent - minPercent + 1
	pct := minPercent + int(pairHash(userID, itemID)%uint32(span))
	return int(math.Round(float64(basePrice) * float64(pct) / 100))
}

// pairHash is FNV-1a over "userID:itemID". Any stable hash works here; the
// contract is only determinism per pair.
func pairHash(userID, itemID string) uint32 {
	h := fnv.New32a()
	_, _ = h.Write([]byte(userID))
	_, _ = h.Write([]byte{':'})
	_, _ = h.Write([]byte(itemID))
	return h.Sum32()
}

// OrderUSDValue computes the USD value of an order against its item.
//
// Fixed-cost items are a straight multiply. Config-cost items are either an
// hours-based stipend (dollars_per_hour) or a progress grant
// (progress_per_hour, valued at $14 per percent). Anything else falls back
// to usdCost*quantity when that is positive.
func OrderUSDValue(item model.ShopItem, order model.ShopOrder) float64 {
	qty := float64(order.Quantity)
	if item.CostType == model.CostTypeConfig {
		if item.Config.DollarsPerHour > 0 {
			hours := order.Config.Hours
			if hours <= 0 {
				hours = qty
			}
			return hours * item.Config.DollarsPerHour
		}
		if item.Config.ProgressPerHour > 0 {
			percent := order.Config.Percent
			if percent <= 0 {
				percent = qty * item.Config.ProgressPerHour
			}
			return percent * progressDollarValue
		}
	}
	if item.CostType == model.CostTypeFixed {
		return item.USDCost * qty
	}
	if item.USDCost > 0 {
		return item.USDCost * qty
	}
	return 0
}
