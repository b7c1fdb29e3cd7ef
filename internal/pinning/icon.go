package pinning

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"

	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"
)

var (
	// ErrIconTooLarge is returned for uploads above the configured limit.
	ErrIconTooLarge = errors.New("icon is too large")

	// ErrUnsupportedImage is returned for data that is not a PNG, JPEG, GIF or WebP image.
	ErrUnsupportedImage = errors.New("unsupported image format")
)

// DefaultMaxDimension bounds the width and height of an upload when no
// limit is given.
const DefaultMaxDimension = 4096

// PrepareIcon reads at most maxBytes from r, scales the image to a
// size x size square and re-encodes it as PNG. Images wider or taller
// than maxDimension are rejected from their header, before the pixel
// buffer is allocated.
func PrepareIcon(r io.Reader, maxBytes int64, maxDimension, size int) ([]byte, error) {
	if maxDimension <= 0 {
		maxDimension = DefaultMaxDimension
	}

	raw, err := io.ReadAll(io.LimitReader(r, maxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("read icon: %w", err)
	}
	if int64(len(raw)) > maxBytes {
		return nil, fmt.Errorf("%w: limit is %d bytes", ErrIconTooLarge, maxBytes)
	}

	cfg, _, err := image.DecodeConfig(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}
	if cfg.Width <= 0 || cfg.Height <= 0 {
		return nil, fmt.Errorf("%w: empty image", ErrUnsupportedImage)
	}
	if cfg.Width > maxDimension || cfg.Height > maxDimension {
		return nil, fmt.Errorf("%w: %dx%d exceeds %d pixels per side", ErrIconTooLarge, cfg.Width, cfg.Height, maxDimension)
	}

	src, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnsupportedImage, err)
	}

	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), draw.Over, nil)

	var out bytes.Buffer
	if err := png.Encode(&out, dst); err != nil {
		return nil, fmt.Errorf("encode icon: %w", err)
	}
	return out.Bytes(), nil
}
