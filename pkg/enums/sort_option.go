package enums

// SortOption enumerates the supported product listing sort orders.
type SortOption string

const (
	SortNewest    SortOption = "newest"
	SortPriceLow  SortOption = "price_low"
	SortPriceHigh SortOption = "price_high"
	SortName      SortOption = "name"
)

var validSortOptions = []SortOption{
	SortNewest,
	SortPriceLow,
	SortPriceHigh,
	SortName,
}

// IsValid reports whether the value is a known SortOption.
func (s SortOption) IsValid() bool {
	for _, candidate := range validSortOptions {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseSortOption normalizes raw input, falling back to newest for unknown values.
func ParseSortOption(value string) SortOption {
	for _, candidate := range validSortOptions {
		if string(candidate) == value {
			return candidate
		}
	}
	return SortNewest
}
