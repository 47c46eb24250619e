package model

import "time"

// swagger:model LectureProgress
type LectureProgress struct {
	BaseModel
	UserID          uint       `gorm:"not null;uniqueIndex:idx_progress_user_lecture" json:"userId"`
	LectureID       uint       `gorm:"not null;uniqueIndex:idx_progress_user_lecture" json:"lectureId"`
	IsCompleted     bool       `gorm:"default:false" json:"isCompleted"`
	WatchedDuration int        `gorm:"default:0" json:"watchedDuration"` // seconds
	LastPosition    int        `gorm:"default:0" json:"lastPosition"`    // seconds
	CompletedAt     *time.Time `json:"completedAt"`
}

func (LectureProgress) TableName() string {
	return "lecture_progress"
}
