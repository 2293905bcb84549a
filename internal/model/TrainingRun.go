package model

import (
	"time"

	"github.com/SeakMengs/OpenSight/internal/constant"
)

type TrainingRun struct {
	BaseModel
	ProjectID string                  `gorm:"type:text;not null;index" json:"projectId" form:"projectId"`
	Status    constant.TrainingStatus `gorm:"type:integer;default:0;not null" json:"status" form:"status"`

	Classes   []string `gorm:"type:text;serializer:json" json:"classes" form:"classes"`
	Epochs    int      `gorm:"type:integer;not null" json:"epochs" form:"epochs"`
	ImageSize int      `gorm:"type:integer;not null" json:"imageSize" form:"imageSize"`
	Model     string   `gorm:"type:text;not null" json:"model" form:"model"`
	Device    string   `gorm:"type:varchar(30);not null" json:"device" form:"device"`

	// Operator name from the bearer token, "anonymous" when auth is disabled
	RequestedBy string `gorm:"type:varchar(100)" json:"requestedBy" form:"requestedBy"`

	ManifestPath string             `gorm:"type:text" json:"manifestPath" form:"manifestPath"`
	WeightsPath  string             `gorm:"type:text" json:"weightsPath" form:"weightsPath"`
	Metrics      map[string]float64 `gorm:"type:text;serializer:json" json:"metrics" form:"metrics"`
	Error        string             `gorm:"type:text" json:"error,omitempty" form:"error"`

	StartedAt  *time.Time `json:"startedAt" form:"startedAt"`
	FinishedAt *time.Time `json:"finishedAt" form:"finishedAt"`
}

func (tr TrainingRun) TableName() string {
	return "training_runs"
}
