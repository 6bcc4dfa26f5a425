// Package media inspects trip photos and downsizes oversized ones with ffmpeg.
package media

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"math"
	"os/exec"
	"strings"

	_ "golang.org/x/image/webp"
)

// DefaultMaxDimension bounds the longest side of a stored photo.
const DefaultMaxDimension = 2048

var (
	ErrEmptyImage       = errors.New("media: empty image data")
	ErrUnsupportedImage = errors.New("media: unsupported image type")
	ErrDecode           = errors.New("media: cannot decode image")
	ErrTranscode        = errors.New("media: transcode failed")
)

type Upload struct {
	Reader      io.Reader
	Size        int64
	FileName    string
	ContentType string
}

type Result struct {
	Bytes       []byte
	ContentType string
	Width       int
	Height      int
	Resized     bool
}

type Processor interface {
	Process(ctx context.Context, upload Upload, maxDimension int) (*Result, error)
}

// FFMPEGProcessor shells out to an ffmpeg binary for every photo that needs
// shrinking. Photos within bounds never reach ffmpeg.
type FFMPEGProcessor struct {
	binary       string
	maxDimension int
}

func NewFFMPEGProcessor(binaryPath string, maxDimension int) *FFMPEGProcessor {
	binary := strings.TrimSpace(binaryPath)
	if binary == "" {
		binary = "ffmpeg"
	}
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}
	return &FFMPEGProcessor{binary: binary, maxDimension: maxDimension}
}

// Process returns the photo unchanged when it already fits maxDimension and a
// downscaled copy otherwise. A failing ffmpeg run yields ErrTranscode together
// with the untouched result so callers may keep the original.
func (p *FFMPEGProcessor) Process(ctx context.Context, upload Upload, maxDimension int) (*Result, error) {
	if upload.Reader == nil {
		return nil, ErrEmptyImage
	}
	data, err := io.ReadAll(upload.Reader)
	if err != nil {
		return nil, fmt.Errorf("media: read image: %w", err)
	}
	if len(data) == 0 {
		return nil, ErrEmptyImage
	}

	format, ok := lookupFormat(NormalizeContentType(upload.ContentType, upload.FileName))
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnsupportedImage, NormalizeContentType(upload.ContentType, upload.FileName))
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: invalid dimensions %dx%d", ErrDecode, cfg.Width, cfg.Height)
	}
	original := &Result{Bytes: data, ContentType: format.contentType, Width: cfg.Width, Height: cfg.Height}

	if maxDimension <= 0 {
		maxDimension = p.maxDimension
	}
	if cfg.Width <= maxDimension && cfg.Height <= maxDimension {
		return original, nil
	}

	w, h := scaleToFit(cfg.Width, cfg.Height, maxDimension)
	out, err := p.run(ctx, data, format, w, h)
	if err != nil {
		return original, fmt.Errorf("%w: %v", ErrTranscode, err)
	}
	return &Result{Bytes: out, ContentType: format.contentType, Width: w, Height: h, Resized: true}, nil
}

// scaleToFit keeps the aspect ratio with the longest side at maxDim. Neither
// side drops below 2 pixels.
func scaleToFit(width, height, maxDim int) (int, int) {
	long, short := width, height
	if height > width {
		long, short = height, width
	}
	scaled := max(2, int(math.Round(float64(short)*float64(maxDim)/float64(long))))
	maxDim = max(2, maxDim)
	if height > width {
		return scaled, maxDim
	}
	return maxDim, scaled
}

func (p *FFMPEGProcessor) run(ctx context.Context, data []byte, format photoFormat, width, height int) ([]byte, error) {
	args := []string{
		"-hide_banner", "-loglevel", "error",
		"-i", "pipe:0",
		"-vf", fmt.Sprintf("scale=%d:%d:flags=lanczos", width, height),
		"-frames:v", "1",
		"-f", "image2",
		"-c:v", format.encoder,
	}
	args = append(args, format.quality...)
	args = append(args, "pipe:1")

	var stdout, stderr bytes.Buffer
	cmd := exec.CommandContext(ctx, p.binary, args...)
	cmd.Stdin = bytes.NewReader(data)
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		if msg := strings.TrimSpace(stderr.String()); msg != "" {
			return nil, fmt.Errorf("ffmpeg: %v: %s", err, msg)
		}
		return nil, fmt.Errorf("ffmpeg: %w", err)
	}
	if stdout.Len() == 0 {
		return nil, errors.New("ffmpeg: produced empty output")
	}
	return stdout.Bytes(), nil
}
