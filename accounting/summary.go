package accounting

import "roastsync/ent"

type CashSummary struct {
	ExpectedCash          float64 `json:"expected_cash"`
	TotalSales            float64 `json:"total_sales"`
	TotalPurchases        float64 `json:"total_purchases"`
	TotalExpenses         float64 `json:"total_expenses"`
	OutstandingDebt       float64 `json:"outstanding_debt"`
	CoffeeInventoryValue  float64 `json:"coffee_inventory_value"`
	GreenInventoryValue   float64 `json:"green_inventory_value"`
	RoastedInventoryValue float64 `json:"roasted_inventory_value"`
}

type InventorySummary struct {
	GreenAvailableG   float64 `json:"green_available_g"`
	RoastedAvailableG float64 `json:"roasted_available_g"`
}

type ProductionSummary struct {
	TotalGreenPurchasedG  float64 `json:"total_green_purchased_g"`
	TotalGreenUsedG       float64 `json:"total_green_used_g"`
	TotalRoastedProducedG float64 `json:"total_roasted_produced_g"`
	TotalRoastedSoldG     float64 `json:"total_roasted_sold_g"`
}

type Summary struct {
	Cash       CashSummary       `json:"cash"`
	Inventory  InventorySummary  `json:"inventory"`
	Production ProductionSummary `json:"production"`
}

// Summarize reduces a full snapshot into the dashboard summary. It is a pure
// function of its inputs; sales must carry their items.
//
// Valuation rule: green inventory is valued per lot at that lot's purchase
// price per gram; roasted inventory at the average realized sale price per
// gram across all sales (zero when nothing has been sold yet).
func Summarize(lots []ent.CoffeeLot, roasts []ent.RoastBatch, sales []ent.Sale, expenses []ent.Expense, adjustments []ent.InventoryAdjustment) Summary {
	var items []ent.SaleItem
	for _, s := range sales {
		items = append(items, s.Items...)
	}

	var p ProductionSummary
	var purchaseCosts, greenValue, greenAvailable float64
	for _, lot := range lots {
		p.TotalGreenPurchasedG += lot.GreenWeightG
		purchaseCosts += lot.GreenWeightG * lot.PricePerG

		remaining := Clamped(AvailableGreen(lot, roasts, 0))
		greenAvailable += remaining
		greenValue += remaining * lot.PricePerG
	}

	for _, r := range roasts {
		p.TotalGreenUsedG += r.GreenInputG
		p.TotalRoastedProducedG += r.RoastedOutputG
	}

	var totalSales, outstanding float64
	for _, s := range sales {
		totalSales += s.TotalPrice
		p.TotalRoastedSoldG += s.TotalQuantityG
		outstanding += BalanceDue(s)
	}

	var roastedAvailable float64
	for _, r := range roasts {
		roastedAvailable += Clamped(AvailableRoasted(r, items, adjustments, 0))
	}

	var totalExpenses float64
	for _, e := range expenses {
		totalExpenses += e.Amount
	}

	avgSalePricePerG := 0.0
	if p.TotalRoastedSoldG > 0 {
		avgSalePricePerG = totalSales / p.TotalRoastedSoldG
	}
	roastedValue := roastedAvailable * avgSalePricePerG

	return Summary{
		Cash: CashSummary{
			ExpectedCash:          totalSales - purchaseCosts - totalExpenses,
			TotalSales:            totalSales,
			TotalPurchases:        purchaseCosts,
			TotalExpenses:         totalExpenses,
			OutstandingDebt:       outstanding,
			CoffeeInventoryValue:  greenValue + roastedValue,
			GreenInventoryValue:   greenValue,
			RoastedInventoryValue: roastedValue,
		},
		Inventory: InventorySummary{
			GreenAvailableG:   greenAvailable,
			RoastedAvailableG: roastedAvailable,
		},
		Production: p,
	}
}
