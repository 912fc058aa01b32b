package model

// SheetRecord is one spreadsheet row mapped onto dish fields. Row is the
// 1-based row number in the source, header included.
type SheetRecord struct {
	Row         int      `json:"row"`
	Name        string   `json:"name"`
	Country     string   `json:"country"`
	City        string   `json:"city,omitempty"`
	Latitude    *float64 `json:"latitude,omitempty"`
	Longitude   *float64 `json:"longitude,omitempty"`
	Description string   `json:"description,omitempty"`
}
