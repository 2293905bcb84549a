package detector

import (
	"context"
	"errors"

	"github.com/SeakMengs/OpenSight/pkg/yolo"
)

// ErrUnavailable wraps every failure to reach the detector or a non-200 reply from it.
var ErrUnavailable = errors.New("detector unavailable")

type Detector interface {
	Predict(ctx context.Context, imagePath string) ([]Detection, error)
	Train(ctx context.Context, req TrainRequest) (*TrainResult, error)
	Health(ctx context.Context) error
}

// Detection is a box in corner form, absolute pixels.
type Detection struct {
	X1         float64 `json:"x1"`
	Y1         float64 `json:"y1"`
	X2         float64 `json:"x2"`
	Y2         float64 `json:"y2"`
	Confidence float64 `json:"confidence"`
	ClassID    int     `json:"class_id"`
	Label      string  `json:"label"`
}

// ToAnnotation converts the corner form to a top-left origin with width and height.
func (d Detection) ToAnnotation(id string) yolo.Annotation {
	return yolo.Annotation{
		ID:     id,
		X:      d.X1,
		Y:      d.Y1,
		Width:  d.X2 - d.X1,
		Height: d.Y2 - d.Y1,
		Label:  d.Label,
	}
}

type TrainRequest struct {
	// Absolute path of the dataset manifest, readable by the detector
	Data      string `json:"data"`
	Epochs    int    `json:"epochs"`
	ImageSize int    `json:"imgsz"`
	Device    string `json:"device"`
	Model     string `json:"model"`
	// Output grouping used by the detector, usually the project id and run id
	Project string `json:"project,omitempty"`
	Name    string `json:"name,omitempty"`
}

type TrainResult struct {
	WeightsPath string             `json:"weights"`
	Metrics     map[string]float64 `json:"metrics"`
}
