// Package models provides the data structures used throughout the application.
package models

// Category is a spending category label assigned to a transaction description.
// The full set of valid categories is defined by the rule catalog; the
// constants below cover the built-in set shipped with the default catalog.
type Category string

// Built-in categories. CategoryOther is special: it always exists, regardless
// of catalog contents, and serves as the universal fallback.
const (
	CategoryFood          Category = "food"
	CategoryTransport     Category = "transport"
	CategoryEntertainment Category = "entertainment"
	CategoryUtilities     Category = "utilities"
	CategoryShopping      Category = "shopping"
	CategoryBills         Category = "bills"
	CategoryRent          Category = "rent"
	CategoryTransfer      Category = "transfer"
	CategoryOther         Category = "other"
)

// String returns the category name.
func (c Category) String() string {
	return string(c)
}
