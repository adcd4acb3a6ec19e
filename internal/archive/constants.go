package archive

import "time"

const (
	SQLiteFilename = "runs.db"

	DBBusyTimeout  = 30 * time.Second
	DBCacheSizeKiB = 64 * 1024

	DefaultListLimit = 50
)
