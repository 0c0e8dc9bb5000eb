package glpi

import (
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"glpi-notify/internal/config"
	"glpi-notify/internal/logging"
)

const (
	// maxRange covers a full collection in one request; pagination beyond
	// this is not expected for the inventories this tool reports on.
	maxRange = "0-10000"

	connectionTimeout = 60 * time.Second
)

// Client talks to the GLPI REST API. It implements Inventory.
type Client struct {
	baseURL      string
	appToken     string
	sessionToken string
	http         *http.Client
	logger       *logging.Logger

	// search option uid lookup, cached per item type for the run
	searchOpts map[string]map[string]string
}

// Connect opens a GLPI session. A failure here means the API rejected
// authentication or is unreachable; callers treat that as fatal.
func Connect(cfg config.Config, logger *logging.Logger) (*Client, error) {
	transport := &http.Transport{
		TLSClientConfig: &tls.Config{InsecureSkipVerify: !cfg.GLPI.VerifyCerts},
	}
	c := &Client{
		baseURL:    strings.TrimRight(cfg.GLPI.URL, "/"),
		appToken:   cfg.GLPI.AppToken,
		http:       &http.Client{Timeout: connectionTimeout, Transport: transport},
		logger:     logger,
		searchOpts: make(map[string]map[string]string),
	}

	req, err := http.NewRequest(http.MethodGet, c.baseURL+"/initSession", nil)
	if err != nil {
		return nil, fmt.Errorf("build initSession request: %w", err)
	}
	req.Header.Set("Authorization", "user_token "+cfg.GLPI.UserToken)
	req.Header.Set("App-Token", c.appToken)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("initSession failed: %w", err)
	}
	defer resp.Body.Close()

	body, _ := io.ReadAll(resp.Body)
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("initSession returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}

	var session struct {
		SessionToken string `json:"session_token"`
	}
	if err := json.Unmarshal(body, &session); err != nil {
		return nil, fmt.Errorf("decode initSession response: %w", err)
	}
	if session.SessionToken == "" {
		return nil, fmt.Errorf("initSession returned no session token")
	}
	c.sessionToken = session.SessionToken

	logger.Infof("GLPI session opened on %s", c.baseURL)
	return c, nil
}

// Close terminates the GLPI session. Best effort; the session expires
// server-side anyway.
func (c *Client) Close() {
	if c.sessionToken == "" {
		return
	}
	if _, err := c.get("/killSession", nil); err != nil {
		c.logger.Warnf("killSession failed: %v", err)
	}
	c.sessionToken = ""
}

// BaseURL returns the configured GLPI URL, used for deep links in
// notification bodies.
func (c *Client) BaseURL() string {
	return c.baseURL
}

// GetAllItems fetches a full collection with dropdowns expanded.
func (c *Client) GetAllItems(itemType string) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("range", maxRange)
	q.Set("expand_dropdowns", "1")

	body, err := c.get("/"+itemType, q)
	if err != nil {
		return nil, fmt.Errorf("fetch %s collection: %w", itemType, err)
	}

	var items []map[string]any
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("decode %s collection: %w", itemType, err)
	}
	return items, nil
}

// GetItem fetches a single record by id with dropdowns expanded.
func (c *Client) GetItem(itemType string, id int) (map[string]any, error) {
	q := url.Values{}
	q.Set("expand_dropdowns", "1")

	body, err := c.get(fmt.Sprintf("/%s/%d", itemType, id), q)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %d: %w", itemType, id, err)
	}

	var item map[string]any
	if err := json.Unmarshal(body, &item); err != nil {
		return nil, fmt.Errorf("decode %s %d: %w", itemType, id, err)
	}
	return item, nil
}

// GetSubItems fetches the child collection of a parent record.
func (c *Client) GetSubItems(itemType string, id int, subType string) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("range", maxRange)
	q.Set("expand_dropdowns", "1")

	body, err := c.get(fmt.Sprintf("/%s/%d/%s", itemType, id, subType), q)
	if err != nil {
		return nil, fmt.Errorf("fetch %s %d %s: %w", itemType, id, subType, err)
	}

	var items []map[string]any
	if err := json.Unmarshal(body, &items); err != nil {
		return nil, fmt.Errorf("decode %s %d %s: %w", itemType, id, subType, err)
	}
	return items, nil
}

// Search runs the GLPI search engine and remaps the numeric field codes of
// each result row to the type's field uid names.
func (c *Client) Search(itemType string, criteria []Criterion) ([]map[string]any, error) {
	q := url.Values{}
	q.Set("range", maxRange)
	q.Set("expand_dropdowns", "1")
	for i, crit := range criteria {
		q.Set(fmt.Sprintf("criteria[%d][field]", i), fmt.Sprintf("%d", crit.Field))
		q.Set(fmt.Sprintf("criteria[%d][searchtype]", i), crit.SearchType)
		q.Set(fmt.Sprintf("criteria[%d][value]", i), crit.Value)
	}

	body, err := c.get("/search/"+itemType, q)
	if err != nil {
		return nil, fmt.Errorf("search %s: %w", itemType, err)
	}

	var result struct {
		Data []map[string]any `json:"data"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("decode %s search result: %w", itemType, err)
	}

	fields, err := c.fieldNames(itemType)
	if err != nil {
		return nil, err
	}

	rows := make([]map[string]any, 0, len(result.Data))
	for _, row := range result.Data {
		remapped := make(map[string]any, len(row))
		for code, v := range row {
			if name, ok := fields[code]; ok {
				remapped[name] = v
			} else {
				remapped[code] = v
			}
		}
		rows = append(rows, remapped)
	}
	return rows, nil
}

// fieldNames resolves an item type's search-option codes to uid names,
// fetching the definition once per run.
func (c *Client) fieldNames(itemType string) (map[string]string, error) {
	if fields, ok := c.searchOpts[itemType]; ok {
		return fields, nil
	}

	body, err := c.get("/listSearchOptions/"+itemType, nil)
	if err != nil {
		return nil, fmt.Errorf("fetch %s search options: %w", itemType, err)
	}

	// listSearchOptions mixes option objects with plain group labels, so
	// decode loosely and keep only entries carrying a uid.
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("decode %s search options: %w", itemType, err)
	}

	fields := make(map[string]string, len(raw))
	for code, msg := range raw {
		var opt struct {
			UID string `json:"uid"`
		}
		if err := json.Unmarshal(msg, &opt); err != nil {
			continue
		}
		if opt.UID != "" {
			fields[code] = opt.UID
		}
	}
	c.searchOpts[itemType] = fields
	return fields, nil
}

func (c *Client) get(path string, q url.Values) ([]byte, error) {
	u := c.baseURL + path
	if len(q) > 0 {
		u += "?" + q.Encode()
	}

	req, err := http.NewRequest(http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Session-Token", c.sessionToken)
	req.Header.Set("App-Token", c.appToken)

	c.logger.Debugf("GET %s", u)
	resp, err := c.http.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}
	// GLPI answers 206 when the range covers only part of a collection.
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusPartialContent {
		return nil, fmt.Errorf("GLPI returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return body, nil
}
