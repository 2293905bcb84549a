package model

type Project struct {
	BaseModel
	Name        string  `gorm:"type:varchar(100);not null;" json:"name" form:"name"`
	Description *string `gorm:"type:text" json:"description" form:"description"`

	Images       []Image       `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"images" form:"images"`
	TrainingRuns []TrainingRun `gorm:"constraint:OnUpdate:CASCADE,OnDelete:CASCADE;" json:"-" form:"-"`
}

func (p Project) TableName() string {
	return "projects"
}
