package domain

import "io"

type Compressor interface {
	// NewWriter wraps w so that everything written is compressed.
	NewWriter(w io.Writer) (io.WriteCloser, error)
	// Test decodes the whole stream without keeping the output.
	Test(r io.Reader) error
}
