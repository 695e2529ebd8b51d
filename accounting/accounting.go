// Package accounting is the inventory and settlement core: pure functions
// over already-loaded snapshots of lots, roast batches, sales and
// adjustments. Nothing here performs I/O or mutates persisted state; the web
// layer loads a snapshot, validates against it, and writes only when
// validation passes.
package accounting

import (
	"fmt"
	"time"

	"roastsync/ent"
)

// RejectionKind classifies why a submission was refused.
type RejectionKind string

const (
	NonPositiveQuantity   RejectionKind = "non_positive_quantity"
	ExceedsAvailableStock RejectionKind = "exceeds_available_stock"
	RoastedExceedsGreen   RejectionKind = "roasted_exceeds_green"
	InvalidBagSize        RejectionKind = "invalid_bag_size"
	OverpaidAmount        RejectionKind = "overpaid_amount"
	EmptyLineItemSet      RejectionKind = "empty_line_item_set"
)

// Rejection is a single field-attributed validation failure.
type Rejection struct {
	Kind    RejectionKind `json:"kind"`
	Field   string        `json:"field"`
	Message string        `json:"message"`
}

func (r Rejection) Error() string { return r.Message }

// Rejections collects every failure found in one submission.
type Rejections []Rejection

func (rs Rejections) Error() string {
	if len(rs) == 0 {
		return "no rejections"
	}
	return rs[0].Message
}

// DefaultBagSizes is the allowed retail bag-size set in grams. Deployments
// may override it via configuration.
var DefaultBagSizes = []int32{250, 340, 500, 2500}

// AvailableGreen returns the unallocated green grams of lot: its purchased
// weight minus the green input of every roast batch drawn from it. A roast
// batch being edited is excluded by passing its id (0 excludes nothing).
//
// The result is raw: a negative value marks pre-existing inconsistent data
// and must not be masked where the value feeds validation. Clamp it with
// Clamped at display sites only.
func AvailableGreen(lot ent.CoffeeLot, roasts []ent.RoastBatch, excludeRoastID int64) float64 {
	used := 0.0
	for _, r := range roasts {
		if r.LotID != lot.ID || r.ID == excludeRoastID {
			continue
		}
		used += r.GreenInputG
	}
	return lot.GreenWeightG - used
}

// AvailableRoasted returns the unsold roasted grams of roast: its output
// minus the grams drawn by sale items against it, plus the signed
// adjustments recorded for it. Items of a sale being edited are excluded by
// passing the sale id (0 excludes nothing). Raw like AvailableGreen.
func AvailableRoasted(roast ent.RoastBatch, items []ent.SaleItem, adjustments []ent.InventoryAdjustment, excludeSaleID int64) float64 {
	sold := 0.0
	for _, it := range items {
		if it.RoastBatchID != roast.ID || it.SaleID == excludeSaleID {
			continue
		}
		sold += float64(it.BagSizeG) * float64(it.Bags)
	}

	adjusted := 0.0
	for _, a := range adjustments {
		if a.RoastBatchID != roast.ID {
			continue
		}
		adjusted += a.AdjustmentG
	}

	return roast.RoastedOutputG - sold + adjusted
}

// Clamped floors an availability at zero for display.
func Clamped(grams float64) float64 {
	if grams < 0 {
		return 0
	}
	return grams
}

// ValidateRoastBatch checks a new or edited roast batch against its lot and
// the lot's existing roast batches. When editing, in.ID excludes the batch's
// own previous green input from the availability sum. Returns nil or a
// single Rejection.
func ValidateRoastBatch(in ent.RoastBatch, lot ent.CoffeeLot, roasts []ent.RoastBatch) error {
	if in.GreenInputG <= 0 {
		return Rejection{
			Kind:    NonPositiveQuantity,
			Field:   "green_input_g",
			Message: "green input must be greater than zero",
		}
	}
	if in.RoastedOutputG <= 0 {
		return Rejection{
			Kind:    NonPositiveQuantity,
			Field:   "roasted_output_g",
			Message: "roasted output must be greater than zero",
		}
	}
	if in.RoastedOutputG > in.GreenInputG {
		return Rejection{
			Kind:    RoastedExceedsGreen,
			Field:   "roasted_output_g",
			Message: "roasted output cannot exceed green input",
		}
	}

	available := AvailableGreen(lot, roasts, in.ID)
	if in.GreenInputG > available {
		return Rejection{
			Kind:    ExceedsAvailableStock,
			Field:   "green_input_g",
			Message: fmt.Sprintf("insufficient green stock: %.0f g available", available),
		}
	}

	return nil
}

// Shrinkage returns the percentage of mass lost in roasting. Validation
// guarantees greenIn > 0 before a batch reaches this.
func Shrinkage(greenIn, roastedOut float64) float64 {
	return (greenIn - roastedOut) / greenIn * 100
}

// ValidateSale checks a sale submission: its line items, the roasted stock
// they draw on, and its payment amount. available reports the roasted grams
// still free on a roast batch, with the sale under edit already excluded.
// Every failure found is returned, not just the first.
func ValidateSale(sale ent.Sale, available func(roastBatchID int64) float64, bagSizes []int32) Rejections {
	var rejections Rejections

	if len(sale.Items) == 0 {
		return Rejections{{
			Kind:    EmptyLineItemSet,
			Field:   "items",
			Message: "at least one line item is required",
		}}
	}

	totalPrice := 0.0
	gramsByRoast := map[int64]float64{}
	roastOrder := []int64{}

	for i, it := range sale.Items {
		if it.Bags <= 0 {
			rejections = append(rejections, Rejection{
				Kind:    NonPositiveQuantity,
				Field:   fmt.Sprintf("items[%d].bags", i),
				Message: "bags must be greater than zero",
			})
		}
		if it.BagPrice <= 0 {
			rejections = append(rejections, Rejection{
				Kind:    NonPositiveQuantity,
				Field:   fmt.Sprintf("items[%d].bag_price", i),
				Message: "bag price must be greater than zero",
			})
		}
		if !allowedBagSize(it.BagSizeG, bagSizes) {
			rejections = append(rejections, Rejection{
				Kind:    InvalidBagSize,
				Field:   fmt.Sprintf("items[%d].bag_size_g", i),
				Message: fmt.Sprintf("bag size %d g is not allowed (allowed: %v)", it.BagSizeG, bagSizes),
			})
			continue
		}
		if it.Bags <= 0 || it.BagPrice <= 0 {
			continue
		}

		if _, seen := gramsByRoast[it.RoastBatchID]; !seen {
			roastOrder = append(roastOrder, it.RoastBatchID)
		}
		gramsByRoast[it.RoastBatchID] += float64(it.BagSizeG) * float64(it.Bags)
		totalPrice += float64(it.Bags) * it.BagPrice
	}

	for _, roastID := range roastOrder {
		free := available(roastID)
		if gramsByRoast[roastID] > free {
			rejections = append(rejections, Rejection{
				Kind:    ExceedsAvailableStock,
				Field:   "items",
				Message: fmt.Sprintf("insufficient roasted stock for roast batch %d: %.0f g available", roastID, free),
			})
		}
	}

	if !sale.IsPaid {
		if sale.AmountPaid < 0 {
			rejections = append(rejections, Rejection{
				Kind:    OverpaidAmount,
				Field:   "amount_paid",
				Message: "amount paid cannot be negative",
			})
		} else if sale.AmountPaid > totalPrice {
			rejections = append(rejections, Rejection{
				Kind:    OverpaidAmount,
				Field:   "amount_paid",
				Message: fmt.Sprintf("amount paid exceeds total price of %.0f", totalPrice),
			})
		}
	}

	return rejections
}

func allowedBagSize(size int32, bagSizes []int32) bool {
	for _, s := range bagSizes {
		if s == size {
			return true
		}
	}
	return false
}

// Settlement is the derived payment state of a sale.
type Settlement struct {
	TotalPrice     float64
	TotalQuantityG float64
	AmountPaid     float64
	IsPaid         bool
	BalanceDue     float64
	PaidAt         *time.Time
}

// SettleSale derives the totals and payment state for a validated item set.
// When markPaid is set the amount paid snaps to the total; otherwise the
// given amount stands and the sale is paid once it covers the total. PaidAt
// is now for a paid sale and nil otherwise; callers editing a sale that was
// already paid keep the original timestamp.
func SettleSale(items []ent.SaleItem, markPaid bool, amountPaid float64, now time.Time) Settlement {
	totalPrice := 0.0
	totalQuantity := 0.0
	for _, it := range items {
		totalPrice += float64(it.Bags) * it.BagPrice
		totalQuantity += float64(it.Bags) * float64(it.BagSizeG)
	}

	if markPaid {
		amountPaid = totalPrice
	}

	s := Settlement{
		TotalPrice:     totalPrice,
		TotalQuantityG: totalQuantity,
		AmountPaid:     amountPaid,
		IsPaid:         amountPaid >= totalPrice,
		BalanceDue:     totalPrice - amountPaid,
	}
	if s.BalanceDue < 0 {
		s.BalanceDue = 0
	}
	if s.IsPaid {
		s.PaidAt = &now
	}
	return s
}

// BalanceDue returns the unpaid portion of a stored sale.
func BalanceDue(sale ent.Sale) float64 {
	due := sale.TotalPrice - sale.AmountPaid
	if due < 0 {
		return 0
	}
	return due
}
