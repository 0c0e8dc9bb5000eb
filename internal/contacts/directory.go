package contacts

import (
	"fmt"

	"glpi-notify/internal/glpi"
)

// BuildDirectory fetches the full UserEmail collection once and returns the
// login → default-address mapping. A user may carry several email records;
// only the one flagged is_default is kept.
func BuildDirectory(inv glpi.Inventory) (map[string]string, error) {
	items, err := inv.GetAllItems("UserEmail")
	if err != nil {
		return nil, fmt.Errorf("build email directory: %w", err)
	}

	emails := make(map[string]string, len(items))
	for _, item := range items {
		if !truthy(item["is_default"]) {
			continue
		}
		login, ok := item["users_id"].(string)
		if !ok || login == "" {
			continue
		}
		email, ok := item["email"].(string)
		if !ok || email == "" {
			continue
		}
		emails[login] = email
	}
	return emails, nil
}

func truthy(v any) bool {
	switch t := v.(type) {
	case bool:
		return t
	case float64:
		return t != 0
	case string:
		return t != "" && t != "0"
	default:
		return false
	}
}
