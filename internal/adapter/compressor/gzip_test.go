package compressor

import (
	"bytes"
	stdgzip "compress/gzip"
	"io"
	"testing"

	. "github.com/smartystreets/goconvey/convey"
)

func compress(t *testing.T, g *GzipCompressor, content []byte) []byte {
	var buf bytes.Buffer
	w, err := g.NewWriter(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := w.Write(content); err != nil {
		t.Fatal(err)
	}
	if err := w.Close(); err != nil {
		t.Fatal(err)
	}
	return buf.Bytes()
}

func TestGzipCompressor(t *testing.T) {
	Convey("Given a GzipCompressor", t, func() {
		compressor := NewGzip(6)
		content := bytes.Repeat([]byte("INSERT INTO predictions VALUES (1, 'cat', 0.97);\n"), 500)

		Convey("NewWriter method", func() {
			data := compress(t, compressor, content)

			Convey("It should produce a standard gzip stream", func() {
				reader, err := stdgzip.NewReader(bytes.NewReader(data))
				So(err, ShouldBeNil)
				decoded, err := io.ReadAll(reader)
				So(err, ShouldBeNil)
				So(decoded, ShouldResemble, content)
				So(len(data), ShouldBeLessThan, len(content))
			})
		})

		Convey("NewGzip with an out of range level", func() {
			Convey("It should fall back to the default level", func() {
				So(NewGzip(42).level, ShouldEqual, -1)
				So(NewGzip(0).level, ShouldEqual, -1)
			})
		})

		Convey("Test method", func() {
			Convey("When the stream is valid", func() {
				data := compress(t, compressor, content)

				Convey("It should pass", func() {
					So(compressor.Test(bytes.NewReader(data)), ShouldBeNil)
				})
			})

			Convey("When the stream has several members", func() {
				data := append(compress(t, compressor, content), compress(t, compressor, []byte("tail"))...)

				Convey("It should pass", func() {
					So(compressor.Test(bytes.NewReader(data)), ShouldBeNil)
				})
			})

			Convey("When the stream is truncated", func() {
				data := compress(t, compressor, content)
				truncated := data[:len(data)/2]

				Convey("It should fail", func() {
					err := compressor.Test(bytes.NewReader(truncated))
					So(err, ShouldNotBeNil)
					So(err.Error(), ShouldContainSubstring, "failed to decompress")
				})
			})

			Convey("When the trailer is corrupted", func() {
				data := compress(t, compressor, content)
				corrupted := append([]byte(nil), data...)
				corrupted[len(corrupted)-5] ^= 0xff

				Convey("It should fail the checksum", func() {
					So(compressor.Test(bytes.NewReader(corrupted)), ShouldNotBeNil)
				})
			})

			Convey("When the stream is not gzip at all", func() {
				err := compressor.Test(bytes.NewReader([]byte("not a gzip file")))

				Convey("It should fail", func() {
					So(err, ShouldNotBeNil)
					So(err.Error(), ShouldContainSubstring, "failed to create gzip reader")
				})
			})

			Convey("When the stream is empty", func() {
				err := compressor.Test(bytes.NewReader(nil))

				Convey("It should fail", func() {
					So(err, ShouldNotBeNil)
					So(err.Error(), ShouldContainSubstring, "empty gzip stream")
				})
			})
		})
	})
}
