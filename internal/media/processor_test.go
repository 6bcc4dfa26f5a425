package media

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"testing"
)

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	img.Set(0, 0, color.RGBA{R: 255, A: 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	return buf.Bytes()
}

func TestProcessKeepsSmallImage(t *testing.T) {
	data := pngBytes(t, 40, 20)
	p := NewFFMPEGProcessor("/nonexistent/ffmpeg", 100)

	res, err := p.Process(context.Background(), Upload{Reader: bytes.NewReader(data), ContentType: "image/png"}, 0)
	if err != nil {
		t.Fatalf("Process: %v", err)
	}
	if res.Resized || !bytes.Equal(res.Bytes, data) || res.Width != 40 || res.Height != 20 {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestProcessTranscodeFailureKeepsOriginal(t *testing.T) {
	data := pngBytes(t, 300, 100)
	p := NewFFMPEGProcessor("/nonexistent/ffmpeg", 100)

	res, err := p.Process(context.Background(), Upload{Reader: bytes.NewReader(data), FileName: "rysy.png"}, 0)
	if !errors.Is(err, ErrTranscode) {
		t.Fatalf("expected ErrTranscode, got %v", err)
	}
	if res == nil || !bytes.Equal(res.Bytes, data) {
		t.Fatalf("expected original bytes alongside the error")
	}
}

func TestProcessRejectsBadInput(t *testing.T) {
	p := NewFFMPEGProcessor("", 0)

	if _, err := p.Process(context.Background(), Upload{Reader: bytes.NewReader(nil)}, 0); !errors.Is(err, ErrEmptyImage) {
		t.Fatalf("expected ErrEmptyImage, got %v", err)
	}
	if _, err := p.Process(context.Background(), Upload{Reader: bytes.NewReader([]byte("GIF89a")), ContentType: "image/gif"}, 0); !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("expected ErrUnsupportedImage, got %v", err)
	}
	if _, err := p.Process(context.Background(), Upload{Reader: bytes.NewReader([]byte("not an image")), ContentType: "image/jpeg"}, 0); !errors.Is(err, ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestScaleToFit(t *testing.T) {
	if w, h := scaleToFit(4000, 2000, 2048); w != 2048 || h != 1024 {
		t.Fatalf("landscape: got %dx%d", w, h)
	}
	if w, h := scaleToFit(1000, 3000, 300); w != 100 || h != 300 {
		t.Fatalf("portrait: got %dx%d", w, h)
	}
	if w, h := scaleToFit(5000, 1, 100); w != 100 || h != 2 {
		t.Fatalf("thin: got %dx%d", w, h)
	}
}

func TestNormalizeContentTypeAndSniff(t *testing.T) {
	cases := map[[2]string]string{
		{"IMAGE/JPG", ""}:                      "image/jpeg",
		{"image/png; charset=binary", ""}:      "image/png",
		{"", "photo.WEBP"}:                     "image/webp",
		{"application/octet-stream", "a.jpeg"}: "image/jpeg",
		{"text/plain", "a.png"}:                "text/plain",
	}
	for in, want := range cases {
		if got := NormalizeContentType(in[0], in[1]); got != want {
			t.Fatalf("NormalizeContentType(%q, %q) = %q, want %q", in[0], in[1], got, want)
		}
	}
	if got := Sniff(pngBytes(t, 2, 2)); got != "image/png" {
		t.Fatalf("Sniff returned %q", got)
	}
	if IsAllowed("image/gif") || !IsAllowed("image/webp") {
		t.Fatalf("unexpected allow list")
	}
}

func TestExtension(t *testing.T) {
	cases := map[string]string{
		"image/jpeg":      ".jpg",
		"image/png":       ".png",
		"image/webp":      ".webp",
		"application/pdf": ".jpg",
	}
	for ct, want := range cases {
		if got := Extension(ct); got != want {
			t.Fatalf("Extension(%q) = %q, want %q", ct, got, want)
		}
	}
}
