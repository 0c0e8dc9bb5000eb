package expiry

import (
	"fmt"

	"glpi-notify/internal/models"
)

// SelectExpiring filters a raw SoftwareLicense collection down to the
// records expiring on or before the threshold date and normalizes each one.
// A record qualifies iff its expire field is present, not later than the
// threshold, and the record is not soft-deleted. A null expiration means a
// perpetual license and is always excluded, never treated as already
// expired. Threshold and expire are ISO calendar dates, so string
// comparison orders them correctly.
func SelectExpiring(items []map[string]any, threshold string) []models.License {
	selected := []models.License{}
	for _, item := range items {
		expire := OrNone(item["expire"])
		if expire == nil || *expire > threshold {
			continue
		}
		if truthy(item["is_deleted"]) {
			continue
		}

		id, _ := asInt(item["id"])
		selected = append(selected, models.License{
			ID:        id,
			Name:      OrNone(item["name"]),
			TechUser:  OrNone(item["users_id_tech"]),
			Software:  OrNone(item["softwares_id"]),
			State:     OrNone(item["states_id"]),
			Expire:    expire,
			Comment:   OrNone(item["comment"]),
			TechGroup: OrNone(item["groups_id_tech"]),
		})
	}
	return selected
}

// OrNone collapses GLPI's null sentinels to an explicit absent marker: 0,
// "" and null all become nil, anything else its string form. Foreign-key
// fields use 0 as the reference system's null, so a zero here is never a
// real value.
func OrNone(v any) *string {
	switch t := v.(type) {
	case nil:
		return nil
	case string:
		if t == "" {
			return nil
		}
		return &t
	case float64:
		if t == 0 {
			return nil
		}
		s := fmt.Sprintf("%v", t)
		if t == float64(int64(t)) {
			s = fmt.Sprintf("%d", int64(t))
		}
		return &s
	case int:
		if t == 0 {
			return nil
		}
		s := fmt.Sprintf("%d", t)
		return &s
	default:
		s := fmt.Sprintf("%v", t)
		return &s
	}
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

func asInt(v any) (int, bool) {
	switch t := v.(type) {
	case float64:
		return int(t), true
	case int:
		return t, true
	default:
		return 0, false
	}
}
