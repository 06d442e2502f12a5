package model

// Course is the snapshot of a marketplace course the engine needs at
// checkout: the price and whether an administrator-level discount is already
// applied (which blocks agent coupons entirely).
type Course struct {
	ID                  string // UUID
	Title               string
	Price               int64 // paise
	HasAdminDiscount    bool
	AdminDiscountAmount int64 // paise; informational, the engine never stacks on it
}
