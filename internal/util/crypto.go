package util

import (
	"github.com/SeakMengs/OpenSight/internal/constant"
	gonanoid "github.com/matoous/go-nanoid/v2"
)

const hexAlphabet = "0123456789abcdef"

func GenerateNChar(n int) (string, error) {
	id, err := gonanoid.New(n)
	if err != nil {
		return "", err
	}
	return id, nil
}

// GenerateAutoAnnotationID returns an id such as "auto-3f9a2c1e" for detector proposals.
func GenerateAutoAnnotationID() (string, error) {
	id, err := gonanoid.Generate(hexAlphabet, constant.AUTO_ANNOTATION_ID_LENGTH)
	if err != nil {
		return "", err
	}
	return constant.AUTO_ANNOTATION_PREFIX + id, nil
}
