// Package video renders a frame sequence to H.264 through ffmpeg.
package video

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/draw"
	"io"
	"os/exec"

	"github.com/ivlev/anim8/internal/system"
)

var ErrNoFrames = errors.New("no frames to encode")

// Params describe the output stream. Frames are played back Loops times
// (at least once) at FPS.
type Params struct {
	Width, Height int
	FPS           int
	Loops         int
	Encoder       string
	Quality       int
}

type Encoder interface {
	Encode(ctx context.Context, frames []image.Image, path string, p Params) error
}

// FFmpegEncoder pipes raw RGBA frames into the ffmpeg binary.
type FFmpegEncoder struct {
	// Binary defaults to "ffmpeg".
	Binary string
}

func (e *FFmpegEncoder) Encode(ctx context.Context, frames []image.Image, path string, p Params) error {
	if len(frames) == 0 {
		return ErrNoFrames
	}
	if p.Encoder == "" {
		p.Encoder = system.BestH264Encoder()
	}
	if p.Quality == 0 {
		p.Quality = system.DefaultQuality(p.Encoder)
	}

	bin := e.Binary
	if bin == "" {
		bin = "ffmpeg"
	}
	cmd := exec.CommandContext(ctx, bin, BuildArgs(path, p)...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return fmt.Errorf("stdin pipe error: %w", err)
	}
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("ffmpeg start error: %w", err)
	}

	werr := writeFrames(stdin, frames, p)
	stdin.Close()
	if err := cmd.Wait(); err != nil {
		return fmt.Errorf("ffmpeg wait error: %w, output: %s", err, stderr.String())
	}
	if werr != nil {
		return fmt.Errorf("write raw error: %w", werr)
	}
	return nil
}

// BuildArgs returns the ffmpeg arguments for a rawvideo stdin stream.
func BuildArgs(path string, p Params) []string {
	args := []string{
		"-y",
		"-f", "rawvideo",
		"-pixel_format", "rgba",
		"-video_size", fmt.Sprintf("%dx%d", p.Width, p.Height),
		"-framerate", fmt.Sprintf("%d", max(p.FPS, 1)),
		"-i", "-",
		"-pix_fmt", "yuv420p",
		"-c:v", p.Encoder,
	}

	// yuv420p требует чётных размеров
	if p.Width%2 != 0 || p.Height%2 != 0 {
		args = append(args, "-vf", "pad=ceil(iw/2)*2:ceil(ih/2)*2")
	}

	// Качество в зависимости от энкодера
	switch p.Encoder {
	case "h264_videotoolbox":
		args = append(args, "-b:v", fmt.Sprintf("%dk", p.Quality*100))
	case "h264_nvenc":
		args = append(args, "-cq", fmt.Sprintf("%d", p.Quality))
	default: // libx264
		args = append(args, "-crf", fmt.Sprintf("%d", p.Quality), "-preset", "medium")
	}

	return append(args, path)
}

func writeFrames(w io.Writer, frames []image.Image, p Params) error {
	rect := image.Rect(0, 0, p.Width, p.Height)
	for range max(p.Loops, 1) {
		for _, img := range frames {
			if err := writeRawRGBA(w, img, rect); err != nil {
				return err
			}
		}
	}
	return nil
}

// writeRawRGBA writes img as tightly packed RGBA of size rect, converting
// through a pooled buffer when the layout differs.
func writeRawRGBA(w io.Writer, img image.Image, rect image.Rectangle) error {
	if rgba, ok := img.(*image.RGBA); ok && rgba.Rect == rect && rgba.Stride == rect.Dx()*4 {
		_, err := w.Write(rgba.Pix)
		return err
	}
	buf := system.GetImage(rect)
	defer system.PutImage(buf)
	draw.Draw(buf, rect, img, img.Bounds().Min, draw.Src)
	_, err := w.Write(buf.Pix)
	return err
}
