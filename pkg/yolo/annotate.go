package yolo

// Annotation is a labeled bounding box in absolute pixel coordinates with a top-left origin.
type Annotation struct {
	ID     string  `json:"id" form:"id" binding:"required"`
	X      float64 `json:"x" form:"x"`
	Y      float64 `json:"y" form:"y"`
	Width  float64 `json:"width" form:"width" binding:"gte=0"`
	Height float64 `json:"height" form:"height" binding:"gte=0"`
	Label  string  `json:"label" form:"label" binding:"required,strNotEmpty"`
}

// Project directory layout shared by the storage layer and the converter.
const (
	ImagesDirName    = "images"
	LabelsDirName    = "labels"
	ClassesFileName  = "classes.json"
	DatasetDirName   = "dataset"
	ManifestFileName = "data.yaml"
)

// Annotation files are named after the image id they belong to.
const AnnotationFileExt = ".json"

// Label files are named after the image file they describe.
const LabelFileExt = ".txt"
