package accounting

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"roastsync/ent"
)

func roast(id, lotID int64, greenIn, roastedOut float64) ent.RoastBatch {
	return ent.RoastBatch{ID: id, LotID: lotID, GreenInputG: greenIn, RoastedOutputG: roastedOut}
}

func item(saleID, roastID int64, bagSize, bags int32, bagPrice float64) ent.SaleItem {
	return ent.SaleItem{SaleID: saleID, RoastBatchID: roastID, BagSizeG: bagSize, Bags: bags, BagPrice: bagPrice}
}

func TestAvailableGreen(t *testing.T) {
	lot := ent.CoffeeLot{ID: 1, GreenWeightG: 5000}
	roasts := []ent.RoastBatch{
		roast(1, 1, 3000, 2500),
		roast(2, 1, 1500, 1300),
		roast(3, 2, 9000, 8000), // other lot, ignored
	}

	assert.Equal(t, 500.0, AvailableGreen(lot, roasts, 0))
	assert.Equal(t, 2000.0, AvailableGreen(lot, roasts, 2), "edited batch excluded")
	assert.Equal(t, 5000.0, AvailableGreen(lot, nil, 0))
}

func TestAvailableGreenNegativeIsNotMasked(t *testing.T) {
	lot := ent.CoffeeLot{ID: 1, GreenWeightG: 1000}
	roasts := []ent.RoastBatch{roast(1, 1, 1200, 1000)}

	assert.Equal(t, -200.0, AvailableGreen(lot, roasts, 0))
	assert.Equal(t, 0.0, Clamped(AvailableGreen(lot, roasts, 0)))
}

func TestAvailableRoasted(t *testing.T) {
	r := roast(1, 1, 1000, 820)
	items := []ent.SaleItem{
		item(10, 1, 250, 2, 12000),
		item(11, 1, 500, 1, 22000),
		item(12, 2, 500, 4, 22000), // other roast, ignored
	}
	adjustments := []ent.InventoryAdjustment{
		{RoastBatchID: 1, AdjustmentG: -50},
		{RoastBatchID: 2, AdjustmentG: -500},
	}

	// 820 - (500 + 500) - 50
	assert.Equal(t, -230.0, AvailableRoasted(r, items, adjustments, 0))
	// excluding sale 11 frees its 500 g
	assert.Equal(t, 270.0, AvailableRoasted(r, items, adjustments, 11))
	assert.Equal(t, 820.0, AvailableRoasted(r, nil, nil, 0))
}

func TestValidateRoastBatchRejectsNonPositiveQuantities(t *testing.T) {
	lot := ent.CoffeeLot{ID: 1, GreenWeightG: 5000}

	err := ValidateRoastBatch(roast(0, 1, 0, 100), lot, nil)
	require.Error(t, err)
	assert.Equal(t, NonPositiveQuantity, err.(Rejection).Kind)
	assert.Equal(t, "green_input_g", err.(Rejection).Field)

	err = ValidateRoastBatch(roast(0, 1, 1000, -5), lot, nil)
	require.Error(t, err)
	assert.Equal(t, NonPositiveQuantity, err.(Rejection).Kind)
	assert.Equal(t, "roasted_output_g", err.(Rejection).Field)
}

func TestValidateRoastBatchRejectsMassCreation(t *testing.T) {
	lot := ent.CoffeeLot{ID: 1, GreenWeightG: 5000}

	err := ValidateRoastBatch(roast(0, 1, 1000, 1001), lot, nil)
	require.Error(t, err)
	assert.Equal(t, RoastedExceedsGreen, err.(Rejection).Kind)
}

func TestValidateRoastBatchRejectsGreenOverdraft(t *testing.T) {
	lot := ent.CoffeeLot{ID: 1, GreenWeightG: 5000}
	existing := []ent.RoastBatch{roast(1, 1, 4800, 4000)}

	err := ValidateRoastBatch(roast(0, 1, 300, 250), lot, existing)
	require.Error(t, err)
	rej := err.(Rejection)
	assert.Equal(t, ExceedsAvailableStock, rej.Kind)
	assert.Contains(t, rej.Message, "200 g available")

	// exactly the remaining 200 g passes
	assert.NoError(t, ValidateRoastBatch(roast(0, 1, 200, 170), lot, existing))
}

func TestValidateRoastBatchEditExcludesItself(t *testing.T) {
	lot := ent.CoffeeLot{ID: 1, GreenWeightG: 5000}
	existing := []ent.RoastBatch{roast(7, 1, 4800, 4000)}

	// growing batch 7 itself from 4800 to 5000 is fine
	assert.NoError(t, ValidateRoastBatch(roast(7, 1, 5000, 4100), lot, existing))
}

func TestShrinkage(t *testing.T) {
	assert.Equal(t, 18.0, Shrinkage(1000, 820))
	assert.Equal(t, 0.0, Shrinkage(1000, 1000))
	assert.InDelta(t, 16.5, Shrinkage(2000, 1670), 1e-9)
}

func unlimited(int64) float64 { return 1e12 }

func TestValidateSaleRejectsEmptyItemSet(t *testing.T) {
	rejs := ValidateSale(ent.Sale{IsPaid: true}, unlimited, DefaultBagSizes)
	require.Len(t, rejs, 1)
	assert.Equal(t, EmptyLineItemSet, rejs[0].Kind)
}

func TestValidateSaleRejectsBadItems(t *testing.T) {
	sale := ent.Sale{
		IsPaid: true,
		Items: []ent.SaleItem{
			item(0, 1, 250, 0, 12000),
			item(0, 1, 250, 2, 0),
			item(0, 1, 123, 2, 12000),
		},
	}

	rejs := ValidateSale(sale, unlimited, DefaultBagSizes)
	require.Len(t, rejs, 3)
	assert.Equal(t, NonPositiveQuantity, rejs[0].Kind)
	assert.Equal(t, "items[0].bags", rejs[0].Field)
	assert.Equal(t, NonPositiveQuantity, rejs[1].Kind)
	assert.Equal(t, "items[1].bag_price", rejs[1].Field)
	assert.Equal(t, InvalidBagSize, rejs[2].Kind)
}

func TestValidateSaleRejectsRoastedOverdraft(t *testing.T) {
	sale := ent.Sale{
		IsPaid: true,
		Items:  []ent.SaleItem{item(0, 1, 500, 3, 22000)},
	}
	available := func(roastBatchID int64) float64 {
		require.Equal(t, int64(1), roastBatchID)
		return 1000
	}

	rejs := ValidateSale(sale, available, DefaultBagSizes)
	require.Len(t, rejs, 1)
	assert.Equal(t, ExceedsAvailableStock, rejs[0].Kind)
	assert.Contains(t, rejs[0].Message, "1000 g available")
}

func TestValidateSaleGroupsItemsByRoastBatch(t *testing.T) {
	// two items of 500 g against the same batch with 800 g free: each fits
	// alone, together they overdraw
	sale := ent.Sale{
		IsPaid: true,
		Items: []ent.SaleItem{
			item(0, 1, 250, 2, 12000),
			item(0, 1, 500, 1, 22000),
		},
	}

	rejs := ValidateSale(sale, func(int64) float64 { return 800 }, DefaultBagSizes)
	require.Len(t, rejs, 1)
	assert.Equal(t, ExceedsAvailableStock, rejs[0].Kind)

	assert.Empty(t, ValidateSale(sale, func(int64) float64 { return 1000 }, DefaultBagSizes))
}

func TestValidateSalePaymentBounds(t *testing.T) {
	sale := ent.Sale{
		Items: []ent.SaleItem{item(0, 1, 250, 4, 12000)}, // total 48000
	}

	sale.AmountPaid = -1
	rejs := ValidateSale(sale, unlimited, DefaultBagSizes)
	require.Len(t, rejs, 1)
	assert.Equal(t, OverpaidAmount, rejs[0].Kind)

	sale.AmountPaid = 48001
	rejs = ValidateSale(sale, unlimited, DefaultBagSizes)
	require.Len(t, rejs, 1)
	assert.Equal(t, OverpaidAmount, rejs[0].Kind)

	sale.AmountPaid = 48000
	assert.Empty(t, ValidateSale(sale, unlimited, DefaultBagSizes))

	// a fully-paid sale ignores the stale amount, SettleSale snaps it
	sale.IsPaid = true
	sale.AmountPaid = -5
	assert.Empty(t, ValidateSale(sale, unlimited, DefaultBagSizes))
}

func TestSettleSaleTotals(t *testing.T) {
	items := []ent.SaleItem{
		item(0, 1, 250, 4, 12000),
		item(0, 2, 500, 2, 22000),
	}

	s := SettleSale(items, true, 0, time.Now())
	assert.Equal(t, 92000.0, s.TotalPrice)
	assert.Equal(t, 2000.0, s.TotalQuantityG)
	assert.Equal(t, 92000.0, s.AmountPaid)
	assert.True(t, s.IsPaid)
	assert.Equal(t, 0.0, s.BalanceDue)
	require.NotNil(t, s.PaidAt)
}

func TestSettleSalePartialPayment(t *testing.T) {
	items := []ent.SaleItem{
		item(0, 1, 250, 4, 12000),
		item(0, 2, 500, 2, 22000),
	}

	s := SettleSale(items, false, 50000, time.Now())
	assert.Equal(t, 92000.0, s.TotalPrice)
	assert.Equal(t, 42000.0, s.BalanceDue)
	assert.Equal(t, 50000.0, s.AmountPaid)
	assert.False(t, s.IsPaid)
	assert.Nil(t, s.PaidAt)
}

func TestSettleSalePaymentCoveringTotalIsPaid(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	items := []ent.SaleItem{item(0, 1, 250, 1, 12000)}

	s := SettleSale(items, false, 12000, now)
	assert.True(t, s.IsPaid)
	assert.Equal(t, 0.0, s.BalanceDue)
	require.NotNil(t, s.PaidAt)
	assert.Equal(t, now, *s.PaidAt)
}

func TestBalanceDue(t *testing.T) {
	assert.Equal(t, 42000.0, BalanceDue(ent.Sale{TotalPrice: 92000, AmountPaid: 50000}))
	assert.Equal(t, 0.0, BalanceDue(ent.Sale{TotalPrice: 100, AmountPaid: 100}))
	// overpaid legacy rows never report a negative balance
	assert.Equal(t, 0.0, BalanceDue(ent.Sale{TotalPrice: 100, AmountPaid: 150}))
}
