package contacts

import (
	"fmt"

	"glpi-notify/internal/glpi"
	"glpi-notify/internal/logging"
)

// Cache resolves technical owners to email addresses. User lookups hit the
// prebuilt directory; group expansions go to the API once per group and are
// memoized for the remainder of the run. Group membership is assumed stable
// for the duration of a single execution, so entries are never invalidated.
// Run-scoped: build a fresh Cache per invocation.
type Cache struct {
	inv    glpi.Inventory
	logger *logging.Logger
	emails map[string]string
	groups map[string]map[string]*string
}

// NewCache builds the email directory and returns a run-scoped Cache.
func NewCache(inv glpi.Inventory, logger *logging.Logger) (*Cache, error) {
	emails, err := BuildDirectory(inv)
	if err != nil {
		return nil, err
	}
	logger.Infof("Email directory built: %d default addresses", len(emails))
	return &Cache{
		inv:    inv,
		logger: logger,
		emails: emails,
		groups: make(map[string]map[string]*string),
	}, nil
}

// ResolveUserEmail looks up a user's default address. Returns nil when the
// user is absent or has no directory entry.
func (c *Cache) ResolveUserEmail(user *string) *string {
	if user == nil {
		return nil
	}
	email, ok := c.emails[*user]
	if !ok {
		return nil
	}
	return &email
}

// ResolveGroupEmails expands a group to its member → email mapping. The
// first call for a group issues the underlying lookups; later calls are
// served from the cache with no network access. An unresolvable group
// yields an empty mapping, not an error: the license simply gets no
// group-derived recipients.
func (c *Cache) ResolveGroupEmails(group *string) (map[string]*string, error) {
	if group == nil {
		return map[string]*string{}, nil
	}
	if cached, ok := c.groups[*group]; ok {
		return cached, nil
	}

	members, err := c.expandGroup(*group)
	if err != nil {
		return nil, err
	}
	c.groups[*group] = members
	return members, nil
}

func (c *Cache) expandGroup(group string) (map[string]*string, error) {
	members := map[string]*string{}

	groupID, found, err := c.groupID(group)
	if err != nil {
		return nil, err
	}
	if !found {
		c.logger.Warnf("Group %q not found, no group recipients", group)
		return members, nil
	}

	rows, err := c.inv.GetSubItems("Group", groupID, "Group_User")
	if err != nil {
		return nil, fmt.Errorf("expand group %q: %w", group, err)
	}
	for _, row := range rows {
		login, ok := row["users_id"].(string)
		if !ok || login == "" {
			continue
		}
		members[login] = c.ResolveUserEmail(&login)
	}
	return members, nil
}

// groupID resolves a group name to its id via the search engine.
func (c *Cache) groupID(group string) (int, bool, error) {
	rows, err := c.inv.Search("Group", []glpi.Criterion{
		{Field: 1, SearchType: "contains", Value: group},
	})
	if err != nil {
		return 0, false, fmt.Errorf("search group %q: %w", group, err)
	}
	if len(rows) == 0 {
		return 0, false, nil
	}
	// The id column appears under its uid name when the field definitions
	// resolve it, under the raw code otherwise.
	for _, key := range []string{"Group.id", "2", "id"} {
		if id, ok := asInt(rows[0][key]); ok {
			return id, true, nil
		}
	}
	return 0, false, nil
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
