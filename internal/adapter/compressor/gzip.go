package compressor

import (
	"errors"
	"fmt"
	"io"

	"github.com/klauspost/compress/gzip"
)

type GzipCompressor struct {
	level int
}

func NewGzip(level int) *GzipCompressor {
	if level < gzip.BestSpeed || level > gzip.BestCompression {
		level = gzip.DefaultCompression
	}
	return &GzipCompressor{level: level}
}

func (g *GzipCompressor) NewWriter(w io.Writer) (io.WriteCloser, error) {
	gzipWriter, err := gzip.NewWriterLevel(w, g.level)
	if err != nil {
		return nil, fmt.Errorf("failed to create gzip writer: %w", err)
	}
	return gzipWriter, nil
}

// Test reads every member of the gzip stream to the end, which checks the
// header, the deflate data and the CRC32/size trailer of each member.
func (g *GzipCompressor) Test(r io.Reader) error {
	gzipReader, err := gzip.NewReader(r)
	if err != nil {
		if errors.Is(err, io.EOF) {
			return fmt.Errorf("empty gzip stream: %w", io.ErrUnexpectedEOF)
		}
		return fmt.Errorf("failed to create gzip reader: %w", err)
	}
	defer gzipReader.Close()

	if _, err := io.Copy(io.Discard, gzipReader); err != nil {
		return fmt.Errorf("failed to decompress: %w", err)
	}

	return nil
}
