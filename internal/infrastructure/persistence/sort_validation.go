package persistence

import "strings"

// ValidateSortOrder normalizes the sort direction to ASC or DESC,
// defaulting to DESC for anything unrecognized.
func ValidateSortOrder(orderDir string) string {
	if strings.EqualFold(strings.TrimSpace(orderDir), "asc") {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField checks a caller-supplied sort column against a
// whitelist. Column names reach the ORDER BY clause verbatim, so
// anything outside the whitelist falls back to defaultField.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// SubscriptionSortFields contains allowed sort fields for subscription history
var SubscriptionSortFields = map[string]bool{
	"created_at": true,
	"started_at": true,
	"expires_at": true,
	"status":     true,
}

// VoucherSortFields contains allowed sort fields for voucher listings
var VoucherSortFields = map[string]bool{
	"created_at":  true,
	"code":        true,
	"valid_until": true,
	"max_uses":    true,
}
