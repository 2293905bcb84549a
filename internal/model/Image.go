package model

type Image struct {
	BaseModel
	ProjectID string `gorm:"type:text;not null;index" json:"projectId" form:"projectId"`
	// Original name of the uploaded file
	FileName string `gorm:"type:text;not null" json:"fileName" form:"fileName"`
	// Stored name inside the project's images directory, "<uuid><ext>"
	FilePath string `gorm:"type:text;not null;uniqueIndex" json:"filePath" form:"filePath"`
	FileSize int64  `gorm:"type:bigint;not null" json:"fileSize" form:"fileSize"`
	Width    *int   `gorm:"type:integer" json:"width" form:"width"`
	Height   *int   `gorm:"type:integer" json:"height" form:"height"`
}

func (i Image) TableName() string {
	return "images"
}
