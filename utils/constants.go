package utils

import (
	"time"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour
)

// CORS and security constants
const (
	// CORSMaxAge is the maximum age for CORS preflight requests (24 hours)
	CORSMaxAge = 86400
)

// Context keys
const (
	// RequestIDKey is the context key carrying the inbound request ID for audit logging
	RequestIDKey = "X-Request-ID"

	// UserAgentKey is the context key carrying the client user agent
	UserAgentKey = "User-Agent"

	// IPAddressKey is the context key carrying the client IP address
	IPAddressKey = "IP-Address"

	// EndpointKey is the context key carrying the matched endpoint path
	EndpointKey = "Endpoint"

	// TimeoutKey is the context key carrying the request timeout
	TimeoutKey = "Timeout"

	// CancelFuncKey stores the context cancel function for cleanup
	CancelFuncKey = "Cancel-Func"
)

// Engagement workflow constants
const (
	// RupeeCurrency is the currency code used for all negotiated amounts
	RupeeCurrency = "INR"

	// CampaignSnapshotCacheKey is the redis key suffix for cached campaign snapshots
	CampaignSnapshotCacheKey = "campaign:snapshot"

	// CampaignSnapshotCacheTTL bounds staleness of the cached aggregate snapshot
	CampaignSnapshotCacheTTL = 5 * time.Minute

	// MaxShortlistBatchSize caps the number of creators accepted in one shortlist upload
	MaxShortlistBatchSize = 500
)
