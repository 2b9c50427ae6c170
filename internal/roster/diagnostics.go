package roster

import (
	"encoding/json"
	"math"
	"time"
)

// Status says whether a read was answered by the cache.
type Status string

const (
	StatusHit  Status = "hit"
	StatusMiss Status = "miss"
)

// Source names where a snapshot came from.
type Source string

const (
	SourceCache        Source = "cache"
	SourceDurableStore Source = "durable-store"
)

// Diagnostics describes how a single read was served.
type Diagnostics struct {
	Status Status
	Source Source
	// TTLRemaining is the cache entry's remaining life. On a miss it is the
	// window just set. Negative means the cache store could not report it.
	TTLRemaining time.Duration
	Window       time.Duration
	Latency      time.Duration
}

// TTLSeconds returns the remaining life in whole seconds, truncated. A hit
// never reports the full window: the entry was written by an earlier read, so
// it is at least a second old.
func (d Diagnostics) TTLSeconds() (int64, bool) {
	if d.TTLRemaining < 0 {
		return 0, false
	}
	ttl := int64(d.TTLRemaining / time.Second)
	if window := int64(d.Window / time.Second); d.Status == StatusHit && window >= 1 && ttl >= window {
		ttl = window - 1
	}
	return ttl, true
}

// AgeSeconds returns window minus remaining life. Age is unknown when the
// remaining life is not positive, e.g. the entry expired as it was read.
func (d Diagnostics) AgeSeconds() (int64, bool) {
	ttl, ok := d.TTLSeconds()
	if !ok || ttl <= 0 {
		return 0, false
	}
	age := int64(d.Window/time.Second) - ttl
	if age < 0 {
		age = 0
	}
	return age, true
}

// ResponseTimeMS is the latency in milliseconds rounded to two decimals.
func (d Diagnostics) ResponseTimeMS() float64 {
	ms := float64(d.Latency) / float64(time.Millisecond)
	return math.Round(ms*100) / 100
}

// CacheInfo is the wire form of Diagnostics.
type CacheInfo struct {
	Status          Status  `json:"status"`
	Source          Source  `json:"source"`
	TTLSeconds      *int64  `json:"ttl_seconds"`
	CacheAgeSeconds *int64  `json:"cache_age_seconds"`
	ResponseTimeMS  float64 `json:"response_time_ms"`
}

// Info converts d to its wire form; unknown values become null.
func (d Diagnostics) Info() CacheInfo {
	info := CacheInfo{
		Status:         d.Status,
		Source:         d.Source,
		ResponseTimeMS: d.ResponseTimeMS(),
	}
	if ttl, ok := d.TTLSeconds(); ok {
		info.TTLSeconds = &ttl
	}
	if age, ok := d.AgeSeconds(); ok {
		info.CacheAgeSeconds = &age
	}
	return info
}

// MarshalJSON encodes d in its wire form, see Info.
func (d Diagnostics) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.Info())
}
