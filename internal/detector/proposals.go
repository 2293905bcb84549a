package detector

import (
	"github.com/SeakMengs/OpenSight/internal/util"
	"github.com/SeakMengs/OpenSight/pkg/yolo"
)

// Proposals turns detections into unsaved annotations with fresh "auto-" ids.
// Detections below minConfidence are dropped.
func Proposals(detections []Detection, minConfidence float64) ([]yolo.Annotation, error) {
	annotations := make([]yolo.Annotation, 0, len(detections))

	for _, d := range detections {
		if d.Confidence < minConfidence {
			continue
		}

		id, err := util.GenerateAutoAnnotationID()
		if err != nil {
			return nil, err
		}

		annotations = append(annotations, d.ToAnnotation(id))
	}

	return annotations, nil
}
