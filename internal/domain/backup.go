package domain

import (
	"fmt"
	"regexp"
	"time"
)

const (
	ArtifactPrefix    = "backup_"
	ArtifactExt       = ".sql.gz"
	QuarantineSuffix  = ".corrupt"
	TimestampLayout   = "20060102_150405"
	partialFilePrefix = "."
	partialFileSuffix = ".partial"
)

var artifactPattern = regexp.MustCompile(`^backup_(.+)_(\d{8}_\d{6})\.sql\.gz(\.corrupt)?$`)

// Artifact is one compressed dump file in the backup directory.
type Artifact struct {
	DatabaseName string
	Filename     string
	FilePath     string
	Size         int64
	CreatedAt    time.Time
	ModTime      time.Time
	Quarantined  bool
}

// Compressed is always true; every artifact is a gzip stream.
func (a Artifact) Compressed() bool {
	return true
}

// RetentionPolicy bounds disk usage by artifact age.
type RetentionPolicy struct {
	MaxAgeDays int
	AgeSource  AgeSource
}

// Cutoff returns the instant before which artifacts are eligible for deletion.
func (p RetentionPolicy) Cutoff(now time.Time) time.Time {
	return now.AddDate(0, 0, -p.MaxAgeDays)
}

// Expired reports whether the artifact is strictly older than the cutoff.
func (p RetentionPolicy) Expired(a Artifact, now time.Time) bool {
	created := a.CreatedAt
	if p.AgeSource == AgeSourceModTime {
		created = a.ModTime
	}
	return created.Before(p.Cutoff(now))
}

type AgeSource string

const (
	AgeSourceName    AgeSource = "name"
	AgeSourceModTime AgeSource = "mtime"
)

// CycleStats is recomputed from a directory scan after every cycle.
type CycleStats struct {
	Artifacts   int
	TotalBytes  int64
	Quarantined int
}

// ArtifactName builds backup_<db>_<YYYYMMDD_HHMMSS>.sql.gz in UTC.
func ArtifactName(databaseName string, at time.Time) string {
	return fmt.Sprintf("%s%s_%s%s", ArtifactPrefix, databaseName, at.UTC().Format(TimestampLayout), ArtifactExt)
}

// PartialName is the hidden name an artifact is written under before commit.
func PartialName(filename string) string {
	return partialFilePrefix + filename + partialFileSuffix
}

// ParseArtifactName extracts the database name and creation time from an
// artifact filename. The boolean result is false for unrelated files.
func ParseArtifactName(filename string) (databaseName string, createdAt time.Time, quarantined bool, ok bool) {
	matches := artifactPattern.FindStringSubmatch(filename)
	if matches == nil {
		return "", time.Time{}, false, false
	}

	ts, err := time.ParseInLocation(TimestampLayout, matches[2], time.UTC)
	if err != nil {
		return "", time.Time{}, false, false
	}

	return matches[1], ts, matches[3] != "", true
}
