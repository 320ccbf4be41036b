// Package storage persists run artifacts (the textual report and the raw
// harness log) on a local disk or an S3-compatible bucket.
//
//	disk, err := storage.Open(storage.Options{Driver: "local", Root: "reports"})
//	...
//	disk.Put("2026-08-30/results.txt", report)
package storage

import "fmt"

// Disk is a flat artifact store. Paths use forward slashes.
type Disk interface {
	Put(path string, content []byte) error
	Get(path string) ([]byte, error)
	Exists(path string) bool
	URL(path string) string
}

// Options selects and configures a driver.
type Options struct {
	Driver string // "local" (default) or "s3"

	// local
	Root string // root directory, default "reports"

	// s3
	Bucket   string
	Region   string
	Key      string
	Secret   string
	Endpoint string // leave empty for real AWS; set for MinIO / R2 / Spaces
}

// Open builds the Disk described by opts.
func Open(opts Options) (Disk, error) {
	switch opts.Driver {
	case "", "local":
		return newLocalDisk(opts), nil
	case "s3":
		return newS3Disk(opts)
	default:
		return nil, fmt.Errorf("storage: unknown driver %q (supported: local, s3)", opts.Driver)
	}
}
