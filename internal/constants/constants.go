package constants

import "time"

const (
	ExternalAPITimeout = 10 * time.Second
	DatabaseTimeout    = 5 * time.Second
	RequestTimeout     = 30 * time.Second
	RunTimeout         = 2 * time.Hour
)

const (
	DBMaxOpenConns    = 4
	DBMaxIdleConns    = 4
	DBConnMaxLifetime = 1 * time.Hour
	DBMaxIdleTime     = 10 * time.Minute
)

const (
	// ChunkSize bounds how many jobs fan out against the API at once.
	ChunkSize = 15

	// osu! API v1 allows 1200/min; stay well below it.
	APIRequestsPerMinute = 300
	APIBurst             = 30

	ScoresLimit       = 50
	DiscoverPageLimit = 500
	DiscoverLookback  = 24 * time.Hour
)

const (
	LeaseName = "tracker"
	LeaseTTL  = 30 * time.Minute
)

const (
	ShutdownTimeout = 5 * time.Second
)

const (
	SchedulerTick = 30 * time.Second
)
