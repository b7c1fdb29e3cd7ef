package pinning

import (
	"bytes"
	"encoding/binary"
	"errors"
	"hash/crc32"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"strings"
	"testing"
)

func testImage(w, h int) image.Image {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for x := 0; x < w; x++ {
		for y := 0; y < h; y++ {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 200, A: 255})
		}
	}
	return img
}

func TestPrepareIcon_ResizesJPEG(t *testing.T) {
	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, testImage(64, 32), nil); err != nil {
		t.Fatalf("encode jpeg: %v", err)
	}

	out, err := PrepareIcon(&buf, 1<<20, 0, 420)
	if err != nil {
		t.Fatalf("PrepareIcon: %v", err)
	}

	img, err := png.Decode(bytes.NewReader(out))
	if err != nil {
		t.Fatalf("output is not a PNG: %v", err)
	}
	if b := img.Bounds(); b.Dx() != 420 || b.Dy() != 420 {
		t.Errorf("expected 420x420, got %dx%d", b.Dx(), b.Dy())
	}
}

func TestPrepareIcon_TooLarge(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(32, 32)); err != nil {
		t.Fatalf("encode png: %v", err)
	}

	_, err := PrepareIcon(&buf, 16, 0, 420)
	if !errors.Is(err, ErrIconTooLarge) {
		t.Fatalf("expected ErrIconTooLarge, got %v", err)
	}
}

func TestPrepareIcon_NotAnImage(t *testing.T) {
	_, err := PrepareIcon(strings.NewReader("definitely not an image"), 1<<20, 0, 420)
	if !errors.Is(err, ErrUnsupportedImage) {
		t.Fatalf("expected ErrUnsupportedImage, got %v", err)
	}
}

// hugePNG encodes a 1x1 PNG and rewrites its header to declare w x h.
func hugePNG(t *testing.T, w, h uint32) []byte {
	t.Helper()
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(1, 1)); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	raw := buf.Bytes()

	// signature(8) | length(4) "IHDR" width height ... | crc over type+data
	binary.BigEndian.PutUint32(raw[16:20], w)
	binary.BigEndian.PutUint32(raw[20:24], h)
	binary.BigEndian.PutUint32(raw[29:33], crc32.ChecksumIEEE(raw[12:29]))
	return raw
}

func TestPrepareIcon_HugeDimensions(t *testing.T) {
	raw := hugePNG(t, 50000, 50000)
	if len(raw) > 1024 {
		t.Fatalf("fixture is %d bytes, expected a tiny file", len(raw))
	}

	_, err := PrepareIcon(bytes.NewReader(raw), 1<<20, 4096, 420)
	if !errors.Is(err, ErrIconTooLarge) {
		t.Fatalf("expected ErrIconTooLarge, got %v", err)
	}
}

func TestPrepareIcon_DimensionLimit(t *testing.T) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, testImage(64, 8)); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	raw := buf.Bytes()

	if _, err := PrepareIcon(bytes.NewReader(raw), 1<<20, 32, 420); !errors.Is(err, ErrIconTooLarge) {
		t.Errorf("64px wide with limit 32: expected ErrIconTooLarge, got %v", err)
	}
	if _, err := PrepareIcon(bytes.NewReader(raw), 1<<20, 64, 420); err != nil {
		t.Errorf("64px wide with limit 64: %v", err)
	}
}
