// Package ent holds the persisted entities of the roastery. All weights are
// grams; lot purchase prices are per gram.
package ent

import "time"

type Farm struct {
	ID       int64   `json:"id" db:"id"`
	Name     string  `json:"name" db:"name"`
	Location *string `json:"location" db:"location"`
	Notes    *string `json:"notes" db:"notes"`
}

type Variety struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	Description *string `json:"description" db:"description"`
}

// CoffeeLot is a purchased batch of green coffee. Its green weight is the
// ceiling for every roast batch drawn from it.
type CoffeeLot struct {
	ID            int64     `json:"id" db:"id"`
	FarmID        int64     `json:"farm_id" db:"farm_id"`
	VarietyID     int64     `json:"variety_id" db:"variety_id"`
	Process       string    `json:"process" db:"process"`
	PurchaseDate  Date      `json:"purchase_date" db:"purchase_date"`
	GreenWeightG  float64   `json:"green_weight_g" db:"green_weight_g"`
	PricePerG     float64   `json:"price_per_g" db:"price_per_g"`
	MoistureLevel *float64  `json:"moisture_level" db:"moisture_level"`
	Notes         *string   `json:"notes" db:"notes"`
}

// RoastBatch is one roasting run consuming green coffee from exactly one lot.
type RoastBatch struct {
	ID             int64     `json:"id" db:"id"`
	LotID          int64     `json:"lot_id" db:"lot_id"`
	RoastDate      Date      `json:"roast_date" db:"roast_date"`
	GreenInputG    float64   `json:"green_input_g" db:"green_input_g"`
	RoastedOutputG float64   `json:"roasted_output_g" db:"roasted_output_g"`
	RoastLevel     *string   `json:"roast_level" db:"roast_level"`
	ShrinkagePct   float64   `json:"shrinkage_pct" db:"shrinkage_pct"`
	Notes          *string   `json:"notes" db:"notes"`
}

// InventoryAdjustment is a signed manual correction against a roast batch's
// available roasted stock. Negative values record losses, positive values
// corrections; zero is rejected at validation.
type InventoryAdjustment struct {
	ID             int64     `json:"id" db:"id"`
	RoastBatchID   int64     `json:"roast_batch_id" db:"roast_batch_id"`
	AdjustmentG    float64   `json:"adjustment_g" db:"adjustment_g"`
	AdjustmentDate Date      `json:"adjustment_date" db:"adjustment_date"`
	Reason         *string   `json:"reason" db:"reason"`
	CreatedAt      time.Time `json:"created_at" db:"created_at"`
}

type Customer struct {
	ID          int64   `json:"id" db:"id"`
	Name        string  `json:"name" db:"name"`
	ContactInfo *string `json:"contact_info" db:"contact_info"`
}

// Sale is one transaction selling roasted coffee. A nil CustomerID marks a
// counter sale. TotalPrice and TotalQuantityG are derived from the items and
// stored alongside the row.
type Sale struct {
	ID             int64      `json:"id" db:"id"`
	CustomerID     *int64     `json:"customer_id" db:"customer_id"`
	SaleDate       Date       `json:"sale_date" db:"sale_date"`
	Notes          *string    `json:"notes" db:"notes"`
	IsPaid         bool       `json:"is_paid" db:"is_paid"`
	AmountPaid     float64    `json:"amount_paid" db:"amount_paid"`
	PaidAt         *time.Time `json:"paid_at" db:"paid_at"`
	TotalPrice     float64    `json:"total_price" db:"total_price"`
	TotalQuantityG float64    `json:"total_quantity_g" db:"total_quantity_g"`

	Items []SaleItem `json:"items" db:"-"`
}

// SaleItem is one line of a sale: bags of a fixed size drawn from one roast
// batch. BagPrice is per bag, so the line contributes bags*bag_price to the
// sale total and bags*bag_size_g grams against the roast batch.
type SaleItem struct {
	ID           int64   `json:"id" db:"id"`
	SaleID       int64   `json:"sale_id" db:"sale_id"`
	RoastBatchID int64   `json:"roast_batch_id" db:"roast_batch_id"`
	BagSizeG     int32   `json:"bag_size_g" db:"bag_size_g"`
	Bags         int32   `json:"bags" db:"bags"`
	BagPrice     float64 `json:"bag_price" db:"bag_price"`
	Notes        *string `json:"notes" db:"notes"`
}

// PriceReference is an advisory sale price for a variety/process/bag-size
// combination. A nil VarietyID makes it a general reference.
type PriceReference struct {
	ID        int64   `json:"id" db:"id"`
	VarietyID *int64  `json:"variety_id" db:"variety_id"`
	Process   string  `json:"process" db:"process"`
	BagSizeG  int32   `json:"bag_size_g" db:"bag_size_g"`
	Price     float64 `json:"price" db:"price"`
	Notes     *string `json:"notes" db:"notes"`
}

type Expense struct {
	ID          int64     `json:"id" db:"id"`
	ExpenseDate Date      `json:"expense_date" db:"expense_date"`
	Category    string    `json:"category" db:"category"`
	Amount      float64   `json:"amount" db:"amount"`
	Notes       *string   `json:"notes" db:"notes"`
}

type User struct {
	ID             int64   `json:"id" db:"id"`
	Email          string  `json:"email" db:"email"`
	FullName       *string `json:"full_name" db:"full_name"`
	IsActive       bool    `json:"is_active" db:"is_active"`
	IsSuperuser    bool    `json:"is_superuser" db:"is_superuser"`
	HashedPassword string  `json:"-" db:"hashed_password"`
}

// RoastedInventoryEntry is one row of the roasted-inventory report: a roast
// batch joined with its lot, farm and variety, plus the sold and adjusted
// grams accumulated against it. AvailableG is left unclamped so callers can
// surface negative stock as a data-inconsistency warning.
type RoastedInventoryEntry struct {
	RoastID        int64     `json:"roast_id" db:"roast_id"`
	RoastDate      Date      `json:"roast_date" db:"roast_date"`
	RoastLevel     *string   `json:"roast_level" db:"roast_level"`
	LotID          int64     `json:"lot_id" db:"lot_id"`
	LotProcess     string    `json:"lot_process" db:"lot_process"`
	FarmName       string    `json:"farm_name" db:"farm_name"`
	VarietyName    string    `json:"variety_name" db:"variety_name"`
	GreenInputG    float64   `json:"green_input_g" db:"green_input_g"`
	RoastedOutputG float64   `json:"roasted_output_g" db:"roasted_output_g"`
	SoldG          float64   `json:"sold_g" db:"sold_g"`
	AdjustmentsG   float64   `json:"adjustments_g" db:"adjustments_g"`
	AvailableG     float64   `json:"available_g" db:"available_g"`
	ShrinkagePct   float64   `json:"shrinkage_pct" db:"shrinkage_pct"`
	Notes          *string   `json:"notes" db:"notes"`
}
