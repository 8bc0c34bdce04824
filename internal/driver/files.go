package driver

import (
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/zstd"
)

// compressedSuffix marks input and report files stored zstd-compressed.
const compressedSuffix = ".zst"

type zstdReadCloser struct {
	dec  *zstd.Decoder
	file *os.File
}

func (r *zstdReadCloser) Read(p []byte) (int, error) { return r.dec.Read(p) }

func (r *zstdReadCloser) Close() error {
	r.dec.Close()
	return r.file.Close()
}

type zstdWriteCloser struct {
	enc  *zstd.Encoder
	file *os.File
}

func (w *zstdWriteCloser) Write(p []byte) (int, error) { return w.enc.Write(p) }

func (w *zstdWriteCloser) Close() error {
	if err := w.enc.Close(); err != nil {
		_ = w.file.Close()
		return err
	}
	return w.file.Close()
}

// openInput opens path for reading, decompressing *.zst files.
func openInput(path string) (io.ReadCloser, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, newError(CodeOpeningInputFile, path, err)
	}
	if !strings.HasSuffix(strings.ToLower(path), compressedSuffix) {
		return f, nil
	}
	dec, err := zstd.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, newError(CodeOpeningInputFile, path, err)
	}
	return &zstdReadCloser{dec: dec, file: f}, nil
}

// createOutput truncates or creates path, compressing *.zst files.
func createOutput(path string) (io.WriteCloser, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, newError(CodeOpeningOutputFile, path, err)
	}
	if !strings.HasSuffix(strings.ToLower(path), compressedSuffix) {
		return f, nil
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = f.Close()
		return nil, newError(CodeOpeningOutputFile, path, err)
	}
	return &zstdWriteCloser{enc: enc, file: f}, nil
}
