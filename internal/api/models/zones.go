package models

// ZoneSummary is one zone file in a listing.
type ZoneSummary struct {
	Name string `json:"name"`
	Type string `json:"type"` // "forward" or "reverse"
	Size int64  `json:"size"`
}

// ZoneListResponse contains a list of zones.
type ZoneListResponse struct {
	ServerID string        `json:"server_id"`
	Zones    []ZoneSummary `json:"zones"`
	Count    int           `json:"count"`
}

// ZoneDetailResponse contains a parsed zone file.
type ZoneDetailResponse struct {
	ServerID   string       `json:"server_id"`
	Name       string       `json:"name"`
	Type       string       `json:"type"`
	Records    []ZoneRecord `json:"records"`
	RawContent string       `json:"raw_content"`
}

// ZoneRecord is one record line. ID and Index are valid only until the zone
// is next modified.
type ZoneRecord struct {
	ID    string `json:"id"`
	Index int    `json:"index"`
	Name  string `json:"name"`
	Type  string `json:"type"`
	Value string `json:"value"`
	TTL   uint32 `json:"ttl"`
}

// ZoneCreateRequest creates a zone from the standard template.
type ZoneCreateRequest struct {
	Name       string `json:"name" binding:"required"`
	SOAEmail   string `json:"soa_email" binding:"required"`
	Serial     int64  `json:"serial,omitempty"`
	NameServer string `json:"name_server,omitempty"`
	Address    string `json:"address,omitempty"` // forward zones only
}

// RecordCreateRequest appends one record to a zone.
type RecordCreateRequest struct {
	Name  string `json:"name" binding:"required"`
	Type  string `json:"type" binding:"required"`
	Value string `json:"value" binding:"required"`
	TTL   uint32 `json:"ttl,omitempty"`
}
