package model

// DishKey is a normalized identifier for a dish within a country scope.
type DishKey string

// DishRecord is one entry of the dish catalog.
type DishRecord struct {
	Key         DishKey  `json:"key"`
	Name        string   `json:"name"`
	Country     string   `json:"country"`
	City        string   `json:"city,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Description string   `json:"description,omitempty"`
	Images      []string `json:"images"`

	seen map[string]struct{}
}

// AddImage appends url for the given asset ID unless that asset was already
// added to this record. Returns false for a duplicate.
func (d *DishRecord) AddImage(assetID, url string) bool {
	if d.seen == nil {
		d.seen = make(map[string]struct{}, len(d.Images)+1)
	}
	if _, dup := d.seen[assetID]; dup {
		return false
	}
	d.seen[assetID] = struct{}{}
	d.Images = append(d.Images, url)
	return true
}

// Catalog maps DishKey to DishRecord. Lookup is by key; iteration follows
// insertion order so generated artifacts diff minimally between runs.
type Catalog struct {
	order   []DishKey
	records map[DishKey]*DishRecord
}

// NewCatalog returns an empty catalog.
func NewCatalog() *Catalog {
	return &Catalog{records: make(map[DishKey]*DishRecord)}
}

// Get returns the record stored under key.
func (c *Catalog) Get(key DishKey) (*DishRecord, bool) {
	r, ok := c.records[key]
	return r, ok
}

// Put stores rec under rec.Key. Replacing an existing key keeps its position.
func (c *Catalog) Put(rec *DishRecord) {
	if _, ok := c.records[rec.Key]; !ok {
		c.order = append(c.order, rec.Key)
	}
	c.records[rec.Key] = rec
}

// Delete removes key from the catalog.
func (c *Catalog) Delete(key DishKey) {
	if _, ok := c.records[key]; !ok {
		return
	}
	delete(c.records, key)
	for i, k := range c.order {
		if k == key {
			c.order = append(c.order[:i], c.order[i+1:]...)
			break
		}
	}
}

// Len returns the number of dishes.
func (c *Catalog) Len() int {
	return len(c.order)
}

// Keys returns the keys in insertion order.
func (c *Catalog) Keys() []DishKey {
	out := make([]DishKey, len(c.order))
	copy(out, c.order)
	return out
}

// Records returns the records in insertion order.
func (c *Catalog) Records() []*DishRecord {
	out := make([]*DishRecord, 0, len(c.order))
	for _, k := range c.order {
		out = append(out, c.records[k])
	}
	return out
}
