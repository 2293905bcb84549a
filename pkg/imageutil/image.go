package imageutil

import (
	"fmt"
	"image"
	_ "image/gif"
	"image/jpeg"
	_ "image/png"
	"io"
	"os"

	_ "golang.org/x/image/bmp"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/tiff"
	_ "golang.org/x/image/webp"
)

const (
	DefaultThumbnailSize = 256
	MaxThumbnailSize     = 1024
)

// Dimensions reads only the image header to get its pixel size.
func Dimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	return DimensionsFromReader(f)
}

func DimensionsFromReader(r io.Reader) (int, int, error) {
	cfg, format, err := image.DecodeConfig(r)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image config: %w", err)
	}

	if cfg.Width <= 0 || cfg.Height <= 0 {
		return 0, 0, fmt.Errorf("invalid %s image size %dx%d", format, cfg.Width, cfg.Height)
	}

	return cfg.Width, cfg.Height, nil
}

// DecodedDimensions decodes the whole image, so a file with a valid header but a
// corrupt body is reported as an error.
func DecodedDimensions(path string) (int, int, error) {
	f, err := os.Open(path)
	if err != nil {
		return 0, 0, err
	}
	defer f.Close()

	img, format, err := image.Decode(f)
	if err != nil {
		return 0, 0, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := img.Bounds()
	if bounds.Dx() <= 0 || bounds.Dy() <= 0 {
		return 0, 0, fmt.Errorf("invalid %s image size %dx%d", format, bounds.Dx(), bounds.Dy())
	}

	return bounds.Dx(), bounds.Dy(), nil
}

// Thumbnail scales the image so its longest edge equals size. Smaller images are not upscaled.
func Thumbnail(path string, size int) (image.Image, error) {
	if size <= 0 {
		size = DefaultThumbnailSize
	}
	size = min(size, MaxThumbnailSize)

	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}

	bounds := src.Bounds()
	w, h := bounds.Dx(), bounds.Dy()
	if w <= size && h <= size {
		return src, nil
	}

	var tw, th int
	if w >= h {
		tw = size
		th = max(h*size/w, 1)
	} else {
		th = size
		tw = max(w*size/h, 1)
	}

	dst := image.NewRGBA(image.Rect(0, 0, tw, th))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, bounds, draw.Over, nil)

	return dst, nil
}

func EncodeJPEG(w io.Writer, img image.Image) error {
	return jpeg.Encode(w, img, &jpeg.Options{Quality: 85})
}
