// Package export writes animations out as PNG sequences and project
// archives, and reads project archives back.
package export

import (
	"archive/zip"
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"io"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/ivlev/anim8/internal/model"
	"github.com/ivlev/anim8/internal/raster"
)

var ErrEmptyAnimation = errors.New("animation has no frames")

type Options struct {
	// Workers bounds parallel PNG encoding. Zero means runtime.NumCPU.
	Workers int
	// Build is recorded in project manifests.
	Build string
}

func (o Options) workers() int {
	if o.Workers > 0 {
		return o.Workers
	}
	return runtime.NumCPU()
}

// FrameName is the archive entry for frame i.
func FrameName(i int) string {
	return fmt.Sprintf("frame_%04d.png", i)
}

// ArchiveName is the file name of the sequence archive for an animation.
func ArchiveName(name string) string {
	name = strings.Map(func(r rune) rune {
		if r == '/' || r == '\\' || r == 0 {
			return '_'
		}
		return r
	}, strings.TrimSpace(name))
	if name == "" {
		name = model.DefaultName
	}
	return name + ".zip"
}

// Frames flattens every frame in order.
func Frames(st model.State, reg *raster.Registry) []image.Image {
	out := make([]image.Image, len(st.Animation.Frames))
	for i, f := range st.Animation.Frames {
		out[i] = raster.Flatten(f, reg)
	}
	return out
}

// Sequence writes a zip with one PNG per frame. reg must not be mutated
// while Sequence runs; pass a snapshot.
func Sequence(ctx context.Context, w io.Writer, st model.State, reg *raster.Registry, opts Options) error {
	frames := st.Animation.Frames
	if len(frames) == 0 {
		return ErrEmptyAnimation
	}

	encoded := make([][]byte, len(frames))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(opts.workers())
	for i, f := range frames {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			data, err := encodePNG(raster.Flatten(f, reg))
			if err != nil {
				return fmt.Errorf("frame %d: %w", i, err)
			}
			encoded[i] = data
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	zw := zip.NewWriter(w)
	for i, data := range encoded {
		if err := writeEntry(zw, FrameName(i), data); err != nil {
			return err
		}
	}
	if err := zw.Close(); err != nil {
		return fmt.Errorf("close archive: %w", err)
	}
	logger().Info("sequence exported", "frames", len(frames))
	return nil
}

// SequenceFile writes the sequence archive into dir and returns its path.
func SequenceFile(ctx context.Context, dir string, st model.State, reg *raster.Registry, opts Options) (string, error) {
	path := filepath.Join(dir, ArchiveName(st.Animation.Name))
	err := writeFile(path, func(w io.Writer) error {
		return Sequence(ctx, w, st, reg, opts)
	})
	return path, err
}

func writeFile(path string, fn func(w io.Writer) error) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := fn(f); err != nil {
		f.Close()
		os.Remove(path)
		return err
	}
	return f.Close()
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("encode png: %w", err)
	}
	return buf.Bytes(), nil
}

// writeEntry stores data without recompressing; PNG is already deflated.
func writeEntry(zw *zip.Writer, name string, data []byte) error {
	fw, err := zw.CreateHeader(&zip.FileHeader{Name: name, Method: zip.Store})
	if err != nil {
		return fmt.Errorf("create %s: %w", name, err)
	}
	if _, err := fw.Write(data); err != nil {
		return fmt.Errorf("write %s: %w", name, err)
	}
	return nil
}
