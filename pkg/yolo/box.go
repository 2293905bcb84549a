package yolo

import (
	"fmt"
	"strconv"
	"strings"
)

// Box is a detector-relative bounding box: center and size as fractions of the image size.
type Box struct {
	ClassIndex int
	CenterX    float64
	CenterY    float64
	Width      float64
	Height     float64
}

// Normalize converts a top-left pixel box into a normalized center box.
// Every value is clamped to [0,1] so boxes drawn past the image border stay valid.
func Normalize(a Annotation, classIndex int, imageWidth, imageHeight int) (Box, error) {
	if imageWidth <= 0 || imageHeight <= 0 {
		return Box{}, fmt.Errorf("invalid image size %dx%d", imageWidth, imageHeight)
	}

	w := float64(imageWidth)
	h := float64(imageHeight)

	return Box{
		ClassIndex: classIndex,
		CenterX:    clamp01((a.X + a.Width/2) / w),
		CenterY:    clamp01((a.Y + a.Height/2) / h),
		Width:      clamp01(a.Width / w),
		Height:     clamp01(a.Height / h),
	}, nil
}

// String renders the box as a label line: "<class> <cx> <cy> <w> <h>".
func (b Box) String() string {
	return strings.Join([]string{
		strconv.Itoa(b.ClassIndex),
		formatFloat(b.CenterX),
		formatFloat(b.CenterY),
		formatFloat(b.Width),
		formatFloat(b.Height),
	}, " ")
}

func formatFloat(v float64) string {
	return strconv.FormatFloat(v, 'f', -1, 64)
}

func clamp01(v float64) float64 {
	// NaN compares false both ways, treat it as zero
	if !(v > 0) {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// ClassIndex maps class names to their position in the class list.
// Duplicate names are rejected because they would make the index ambiguous.
func ClassIndex(classes []string) (map[string]int, error) {
	index := make(map[string]int, len(classes))
	for i, name := range classes {
		if _, ok := index[name]; ok {
			return nil, fmt.Errorf("%w: %q", ErrDuplicateClass, name)
		}
		index[name] = i
	}
	return index, nil
}

// LabelLines converts annotations to label lines, dropping labels that are not in the class index.
func LabelLines(annotations []Annotation, classIndex map[string]int, imageWidth, imageHeight int) ([]string, error) {
	lines := make([]string, 0, len(annotations))
	for _, a := range annotations {
		idx, ok := classIndex[a.Label]
		if !ok {
			continue
		}

		box, err := Normalize(a, idx, imageWidth, imageHeight)
		if err != nil {
			return nil, err
		}
		lines = append(lines, box.String())
	}
	return lines, nil
}
