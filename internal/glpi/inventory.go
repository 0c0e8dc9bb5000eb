package glpi

// Criterion is one search condition passed to the GLPI search engine.
type Criterion struct {
	Field      int    `json:"field"`
	SearchType string `json:"searchtype"`
	Value      string `json:"value"`
}

// Inventory is the read surface this tool needs from the asset-management
// API. Every operation returns records with dropdown fields expanded to
// readable values and requests the maximal page range, so one call yields
// a full collection.
type Inventory interface {
	GetAllItems(itemType string) ([]map[string]any, error)
	GetItem(itemType string, id int) (map[string]any, error)
	GetSubItems(itemType string, id int, subType string) ([]map[string]any, error)
	Search(itemType string, criteria []Criterion) ([]map[string]any, error)
}
