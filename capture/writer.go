// Package capture saves requested frames to disk as PNG files.
package capture

import (
	"fmt"
	"image"
	"image/png"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/errgroup"
)

// Writer encodes PNGs on a bounded set of goroutines. The first failure is
// kept and every later Submit is refused with it.
type Writer struct {
	group   errgroup.Group
	logger  *slog.Logger
	written atomic.Int64

	mu  sync.Mutex
	err error

	// OnWritten, if set, is called from the writing goroutine after each
	// successful write.
	OnWritten func(path string)
}

// NewWriter returns a writer running at most concurrency encodes at once.
func NewWriter(concurrency int, logger *slog.Logger) *Writer {
	if logger == nil {
		logger = slog.Default()
	}
	w := &Writer{logger: logger}
	w.group.SetLimit(max(concurrency, 1))
	return w
}

// Submit queues img for writing to path, blocking while every worker is
// busy. img must not be modified afterwards.
func (w *Writer) Submit(path string, img image.Image) error {
	if err := w.Err(); err != nil {
		return err
	}

	w.group.Go(func() error {
		if err := WritePNG(path, img); err != nil {
			w.fail(err)
			return err
		}
		w.written.Add(1)
		w.logger.Debug("screenshot written", "path", path)
		if w.OnWritten != nil {
			w.OnWritten(path)
		}
		return nil
	})
	return nil
}

func (w *Writer) fail(err error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.err == nil {
		w.err = err
		w.logger.Error("screenshot failed", "err", err)
	}
}

// Err returns the first write failure, if any.
func (w *Writer) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.err
}

// Wait blocks until every submitted write has finished.
func (w *Writer) Wait() error {
	if err := w.group.Wait(); err != nil {
		return err
	}
	return w.Err()
}

// Written returns the number of files written so far.
func (w *Writer) Written() int {
	return int(w.written.Load())
}

var encoder = png.Encoder{CompressionLevel: png.BestSpeed}

// WritePNG encodes img to a new file at path. The parent directory must exist.
func WritePNG(path string, img image.Image) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("create %s: %w", path, err)
	}
	if err := encoder.Encode(f, img); err != nil {
		f.Close()
		return fmt.Errorf("encode %s: %w", path, err)
	}
	return f.Close()
}

// FromPremultiplied converts premultiplied RGBA bytes, as returned by GPU
// readbacks, to a straight-alpha image.
func FromPremultiplied(pixels []byte, width, height int) *image.NRGBA {
	img := image.NewNRGBA(image.Rect(0, 0, width, height))
	for i := 0; i+3 < len(pixels) && i < len(img.Pix); i += 4 {
		r, g, b, a := pixels[i], pixels[i+1], pixels[i+2], pixels[i+3]
		if a > 0 && a < 255 {
			r = uint8(min(int(r)*255/int(a), 255))
			g = uint8(min(int(g)*255/int(a), 255))
			b = uint8(min(int(b)*255/int(a), 255))
		}
		img.Pix[i] = r
		img.Pix[i+1] = g
		img.Pix[i+2] = b
		img.Pix[i+3] = a
	}
	return img
}
