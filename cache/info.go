package cache

import "time"

// Info is the cache state report a manager exposes for debugging and
// admin tooling.
type Info struct {
	Enabled       bool          `json:"enabled"`
	SupportsTotal bool          `json:"supports_total"`
	Threshold     int           `json:"threshold"`
	Valid         bool          `json:"valid"`
	Overflow      bool          `json:"overflow"`
	ItemCount     int           `json:"item_count"`
	Total         int           `json:"total"`
	LoadedAt      time.Time     `json:"loaded_at"`
	Asymmetric    bool          `json:"asymmetric"`
	DetailEnabled bool          `json:"detail_enabled"`
	DetailTTL     time.Duration `json:"detail_ttl"`
	DetailSize    int           `json:"detail_size"`
}
