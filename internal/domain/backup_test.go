package domain

import (
	"testing"
	"time"

	. "github.com/smartystreets/goconvey/convey"
)

func TestArtifactName(t *testing.T) {
	Convey("Given artifact naming", t, func() {
		at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

		Convey("ArtifactName uses the deterministic pattern", func() {
			So(ArtifactName("testdb", at), ShouldEqual, "backup_testdb_20260304_050607.sql.gz")
		})

		Convey("ArtifactName converts to UTC", func() {
			loc := time.FixedZone("UTC+2", 2*60*60)
			So(ArtifactName("testdb", at.In(loc)), ShouldEqual, "backup_testdb_20260304_050607.sql.gz")
		})

		Convey("ParseArtifactName round-trips", func() {
			name, ts, quarantined, ok := ParseArtifactName(ArtifactName("my_db", at))
			So(ok, ShouldBeTrue)
			So(name, ShouldEqual, "my_db")
			So(ts.Equal(at), ShouldBeTrue)
			So(quarantined, ShouldBeFalse)
		})

		Convey("ParseArtifactName recognises quarantined artifacts", func() {
			_, _, quarantined, ok := ParseArtifactName("backup_testdb_20260304_050607.sql.gz.corrupt")
			So(ok, ShouldBeTrue)
			So(quarantined, ShouldBeTrue)
		})

		Convey("ParseArtifactName rejects unrelated files", func() {
			for _, name := range []string{
				"notes.txt",
				"backup_testdb.sql.gz",
				"backup_testdb_20260304_050607.sql",
				".backup_testdb_20260304_050607.sql.gz.partial",
				"backup_testdb_20261399_999999.sql.gz",
			} {
				_, _, _, ok := ParseArtifactName(name)
				So(ok, ShouldBeFalse)
			}
		})
	})
}

func TestRetentionPolicy(t *testing.T) {
	Convey("Given a retention policy of 7 days", t, func() {
		now := time.Date(2026, 10, 18, 12, 0, 0, 0, time.UTC)
		policy := RetentionPolicy{MaxAgeDays: 7, AgeSource: AgeSourceName}
		cutoff := now.AddDate(0, 0, -7)

		Convey("An artifact exactly at the threshold is kept", func() {
			So(policy.Expired(Artifact{CreatedAt: cutoff}, now), ShouldBeFalse)
		})

		Convey("An artifact one second older than the threshold expires", func() {
			So(policy.Expired(Artifact{CreatedAt: cutoff.Add(-time.Second)}, now), ShouldBeTrue)
		})

		Convey("The mtime source ignores the name timestamp", func() {
			policy.AgeSource = AgeSourceModTime
			a := Artifact{CreatedAt: now, ModTime: now.AddDate(0, 0, -10)}
			So(policy.Expired(a, now), ShouldBeTrue)
		})

		Convey("Zero days expires anything older than now", func() {
			policy.MaxAgeDays = 0
			So(policy.Expired(Artifact{CreatedAt: now.Add(-time.Second)}, now), ShouldBeTrue)
		})
	})
}
