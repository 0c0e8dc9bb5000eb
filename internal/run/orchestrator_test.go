package run

import (
	"bytes"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"glpi-notify/internal/certcheck"
	"glpi-notify/internal/config"
	"glpi-notify/internal/glpi"
	"glpi-notify/internal/logging"
	"glpi-notify/internal/models"
)

type fakeInventory struct {
	collections map[string][]map[string]any
	items       map[string]map[string]any
	subItems    map[string][]map[string]any
	searches    map[string][]map[string]any
}

func (f *fakeInventory) GetAllItems(itemType string) ([]map[string]any, error) {
	items, ok := f.collections[itemType]
	if !ok {
		return nil, fmt.Errorf("no such collection %s", itemType)
	}
	return items, nil
}

func (f *fakeInventory) GetItem(itemType string, id int) (map[string]any, error) {
	item, ok := f.items[fmt.Sprintf("%s/%d", itemType, id)]
	if !ok {
		return nil, fmt.Errorf("no such item %s %d", itemType, id)
	}
	return item, nil
}

func (f *fakeInventory) GetSubItems(itemType string, id int, subType string) ([]map[string]any, error) {
	return f.subItems[fmt.Sprintf("%s/%d/%s", itemType, id, subType)], nil
}

func (f *fakeInventory) Search(itemType string, criteria []glpi.Criterion) ([]map[string]any, error) {
	return f.searches[fmt.Sprintf("%s/%s", itemType, criteria[0].Value)], nil
}

func testConfig() config.Config {
	var cfg config.Config
	cfg.GLPI.URL = "https://glpi.example.com"
	cfg.Mail.Host = "localhost"
	cfg.Mail.Port = 25
	cfg.Mail.From = "noreply@x.com"
	cfg.Mail.AdminEmail = "admin@x.com"
	cfg.Testing = true
	return cfg
}

func testRunner(t *testing.T, inv glpi.Inventory) (*Runner, *[]models.Message, *bytes.Buffer) {
	t.Helper()
	logger, err := logging.New(t.TempDir(), "error", "test")
	require.NoError(t, err)

	r := New(inv, "https://glpi.example.com", testConfig(), logger)
	sent := &[]models.Message{}
	r.dispatch = func(msg models.Message) error {
		*sent = append(*sent, msg)
		return nil
	}
	out := &bytes.Buffer{}
	r.out = out
	return r, sent, out
}

func TestLicenseExpireCheckScenario(t *testing.T) {
	inv := &fakeInventory{
		collections: map[string][]map[string]any{
			"UserEmail": {
				{"users_id": "u1", "email": "a@x.com", "is_default": float64(1)},
			},
			"SoftwareLicense": {
				{
					"id":             float64(7),
					"name":           "Acme Suite",
					"expire":         "2025-03-01",
					"users_id_tech":  float64(0),
					"groups_id_tech": float64(5),
					"is_deleted":     float64(0),
				},
				{
					"id":         float64(8),
					"name":       "perpetual",
					"expire":     nil,
					"is_deleted": float64(0),
				},
			},
		},
		searches: map[string][]map[string]any{
			"Group/5": {{"Group.id": float64(5)}},
		},
		subItems: map[string][]map[string]any{
			"Group/5/Group_User": {{"users_id": "u1"}},
		},
	}

	r, sent, _ := testRunner(t, inv)
	err := r.Execute(Options{
		Action: ActionLicenseExpireCheck,
		Days:   []int{30},
		Today:  time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	require.Len(t, *sent, 1)
	msg := (*sent)[0]
	assert.Equal(t, "[glpi] licence 'Acme Suite' will expire 2025-03-01", msg.Subject)
	assert.Equal(t, []string{"a@x.com"}, msg.To)
	assert.Equal(t, "noreply@x.com", msg.From)
	assert.Contains(t, msg.Body, "/front/softwarelicense.form.php?id=7")
}

func TestLicenseExpireCheckNotifiesOncePerRun(t *testing.T) {
	inv := &fakeInventory{
		collections: map[string][]map[string]any{
			"UserEmail": {},
			"SoftwareLicense": {
				{
					"id":         float64(1),
					"name":       "soon",
					"expire":     "2025-02-05",
					"is_deleted": float64(0),
				},
			},
		},
	}

	r, sent, _ := testRunner(t, inv)
	err := r.Execute(Options{
		Action: ActionLicenseExpireCheck,
		Days:   []int{7, 30},
		Today:  time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	require.Len(t, *sent, 1, "a license matching several horizons is notified once")
	assert.Equal(t, []string{"admin@x.com"}, (*sent)[0].To, "no resolvable owner falls back to admin")
}

func TestUnknownActionIsNonFatal(t *testing.T) {
	r, sent, out := testRunner(t, &fakeInventory{})

	err := r.Execute(Options{Action: "frobnicate", Days: []int{7}, Today: time.Now()})

	require.NoError(t, err)
	assert.Empty(t, *sent)
	assert.Empty(t, out.String())
}

func TestCertificateCheckUnreachableAppliance(t *testing.T) {
	inv := &fakeInventory{
		collections: map[string][]map[string]any{
			"Appliance": {
				{"id": float64(1), "name": " web01 "},
			},
		},
		subItems: map[string][]map[string]any{
			"Appliance/1/Certificate_Item": {{"certificates_id": float64(3)}},
		},
		items: map[string]map[string]any{
			"Certificate/3": {
				"id":              float64(3),
				"name":            "wildcard",
				"is_deleted":      float64(0),
				"date_expiration": "2030-01-01",
			},
		},
		// no appliance search entry: no advertised URL
		searches: map[string][]map[string]any{},
	}

	r, _, out := testRunner(t, inv)
	r.probe = certcheck.Probe

	err := r.Execute(Options{
		Action: ActionCertificateValid,
		Days:   []int{30},
		Today:  time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	report := out.String()
	assert.Contains(t, report, `"cert_name": "wildcard"`)
	assert.Contains(t, report, `"status": false`)
	assert.Contains(t, report, "no https")
}

func TestCertificateExpireCheckFiltersByOldestHorizon(t *testing.T) {
	inv := &fakeInventory{
		collections: map[string][]map[string]any{
			"Appliance": {
				{"id": float64(1), "name": "web01"},
			},
		},
		subItems: map[string][]map[string]any{
			"Appliance/1/Certificate_Item": {{"certificates_id": float64(3)}},
		},
		items: map[string]map[string]any{
			"Certificate/3": {
				"id":              float64(3),
				"name":            "wildcard",
				"is_deleted":      float64(0),
				"date_expiration": "2030-01-01",
			},
		},
		searches: map[string][]map[string]any{},
	}

	r, _, out := testRunner(t, inv)
	err := r.Execute(Options{
		Action: ActionCertificateExpire,
		Days:   []int{30},
		Today:  time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Equal(t, "[]\n", out.String(), "certificate far from expiry is excluded")
}

func TestCertificateCheckSkipsDeleted(t *testing.T) {
	inv := &fakeInventory{
		collections: map[string][]map[string]any{
			"Appliance": {
				{"id": float64(1), "name": "web01"},
			},
		},
		subItems: map[string][]map[string]any{
			"Appliance/1/Certificate_Item": {{"certificates_id": float64(3)}},
		},
		items: map[string]map[string]any{
			"Certificate/3": {
				"id":              float64(3),
				"name":            "gone",
				"is_deleted":      float64(1),
				"date_expiration": "2025-02-10",
			},
		},
		searches: map[string][]map[string]any{},
	}

	r, _, out := testRunner(t, inv)
	err := r.Execute(Options{
		Action: ActionCertificateValid,
		Days:   []int{30},
		Today:  time.Date(2025, 2, 1, 9, 0, 0, 0, time.UTC),
	})

	require.NoError(t, err)
	assert.Equal(t, "[]\n", out.String())
}
