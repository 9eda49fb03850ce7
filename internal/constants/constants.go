package constants

import "time"

const (
	PageFetchTimeout = 15 * time.Second
	DatabaseTimeout  = 5 * time.Second
	RequestTimeout   = 30 * time.Second
	CollectTimeout   = 5 * time.Minute
)

const (
	DBMaxOpenConns    = 100
	DBMaxIdleConns    = 10
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
	DBBatchSize       = 100
)

const (
	ShutdownTimeout = 5 * time.Second
)

// trailing windows, in matches
const (
	RecentWinsWindow = 5
	OverWindowShort  = 10
	OverWindowMedium = 20
	OverWindowLong   = 30
)

const (
	MaxSetsPerMatch = 5

	// both sides at this score means the set went to deuce
	DeuceScore = 10
)

const (
	RecomputeConcurrency = 8
	PageFetchConcurrency = 4
	MaxMatchLinks        = 50
)

const (
	TopMatchupsDefaultLimit = 20
	TopMatchupsMaxLimit     = 200
)
