package config

import "fmt"

// ArchiveConfig selects the snapshot store backend.
type ArchiveConfig struct {
	// Backend is "fs" or "gcs".
	Backend   string `env:"CADENCE_ARCHIVE_BACKEND" default:"fs"`
	FSDir     string `env:"CADENCE_ARCHIVE_FS_DIR" default:"./cadence-archive"`
	GCSBucket string `env:"CADENCE_ARCHIVE_GCS_BUCKET"`
}

// Validate validates the archive configuration.
func (c *ArchiveConfig) Validate() error {
	switch c.Backend {
	case "fs":
		if c.FSDir == "" {
			return fmt.Errorf("CADENCE_ARCHIVE_FS_DIR is required when CADENCE_ARCHIVE_BACKEND is 'fs'")
		}
	case "gcs":
		if c.GCSBucket == "" {
			return fmt.Errorf("CADENCE_ARCHIVE_GCS_BUCKET is required when CADENCE_ARCHIVE_BACKEND is 'gcs'")
		}
	default:
		return fmt.Errorf("unknown CADENCE_ARCHIVE_BACKEND: %s", c.Backend)
	}
	return nil
}
