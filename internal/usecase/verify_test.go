package usecase

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/juju/clock/testclock"
	. "github.com/smartystreets/goconvey/convey"

	"github.com/semmidev/dumpkeeper/internal/adapter/compressor"
	"github.com/semmidev/dumpkeeper/internal/domain"
)

func TestVerifier(t *testing.T) {
	Convey("Given a verifier over a local directory", t, func() {
		log, logs := newObservedLogger()
		local, dir := newTempStorage(t)
		gz := compressor.NewGzip(6)
		ctx := context.Background()

		Convey("When the artifact was written by a successful backup", func() {
			db := &fakeDatabase{name: "testdb", payload: []byte("SELECT 1;\n")}
			artifact, err := NewBackup(db, local, gz, testclock.NewClock(testNow), log, time.Minute).Execute(ctx)
			So(err, ShouldBeNil)

			err = NewVerifier(local, gz, log, true).Execute(ctx, artifact)

			Convey("It should pass", func() {
				So(err, ShouldBeNil)
				So(len(entriesWithEvent(logs, domain.EventIntegrityOK)), ShouldEqual, 1)
				So(dirEntries(dir), ShouldResemble, []string{artifact.Filename})
			})
		})

		name := domain.ArtifactName("testdb", testNow)
		corrupt := domain.Artifact{DatabaseName: "testdb", Filename: name, FilePath: filepath.Join(dir, name)}
		writeCorrupt := func() {
			So(os.WriteFile(corrupt.FilePath, []byte("definitely not gzip"), 0644), ShouldBeNil)
		}

		Convey("When the artifact is corrupt and quarantine is enabled", func() {
			writeCorrupt()
			err := NewVerifier(local, gz, log, true).Execute(ctx, corrupt)

			Convey("It should fail and rename the artifact", func() {
				So(errors.Is(err, domain.ErrIntegrityCheckFailed), ShouldBeTrue)
				So(err.Error(), ShouldContainSubstring, name)
				So(dirEntries(dir), ShouldResemble, []string{name + domain.QuarantineSuffix})
			})

			Convey("It should log the failure and the quarantine", func() {
				So(events(logs), ShouldResemble, []string{
					domain.EventIntegrityFailed,
					domain.EventArtifactQuarantined,
				})
			})
		})

		Convey("When the artifact is corrupt and quarantine is disabled", func() {
			writeCorrupt()
			err := NewVerifier(local, gz, log, false).Execute(ctx, corrupt)

			Convey("It should fail and leave the file in place", func() {
				So(errors.Is(err, domain.ErrIntegrityCheckFailed), ShouldBeTrue)
				So(dirEntries(dir), ShouldResemble, []string{name})
				So(events(logs), ShouldResemble, []string{domain.EventIntegrityFailed})
			})
		})

		Convey("When the artifact has disappeared", func() {
			err := NewVerifier(local, gz, log, true).Execute(ctx, corrupt)

			Convey("It should fail without quarantining anything", func() {
				So(errors.Is(err, domain.ErrIntegrityCheckFailed), ShouldBeTrue)
				So(dirEntries(dir), ShouldBeEmpty)
				So(len(entriesWithEvent(logs, domain.EventArtifactQuarantined)), ShouldEqual, 0)
			})
		})
	})
}
