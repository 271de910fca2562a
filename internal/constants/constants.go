package constants

import "time"

const (
	DatabaseTimeout = 5 * time.Second
	RequestTimeout  = 30 * time.Second
	UploadTimeout   = 60 * time.Second
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

const (
	DefaultLeaderboardSize = 3
	MaxLeaderboardSize     = 100
	DefaultMaxUploadBytes  = 10 << 20
)

const (
	// KillPointTargetMultiplier scales starting power into the kill-point target.
	KillPointTargetMultiplier = 3
	KillPointGatePercentage   = 50.0
	KpiGatePercentage         = 200.0
)
