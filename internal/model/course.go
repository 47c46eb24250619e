package model

type CourseStatus string

const (
	CourseDraft     CourseStatus = "draft"
	CoursePublished CourseStatus = "published"
	CourseArchived  CourseStatus = "archived"
)

type CourseLevel string

const (
	LevelBeginner     CourseLevel = "beginner"
	LevelIntermediate CourseLevel = "intermediate"
	LevelAdvanced     CourseLevel = "advanced"
	LevelAllLevels    CourseLevel = "all_levels"
)

// swagger:model Category
type Category struct {
	BaseModel
	Name string `gorm:"size:100;unique;not null" json:"name"`
	Slug string `gorm:"size:100;uniqueIndex;not null" json:"slug"`
}

func (Category) TableName() string {
	return "categories"
}

// Course aggregates (AverageRating, TotalReviews, TotalStudents) are rollups
// maintained by the review and fulfillment services, never edited directly.
// swagger:model Course
type Course struct {
	BaseModel
	Title         string       `gorm:"size:200;not null" json:"title"`
	Slug          string       `gorm:"size:200;uniqueIndex;not null" json:"slug"`
	Subtitle      string       `gorm:"size:255" json:"subtitle"`
	Description   string       `gorm:"type:text" json:"description"`
	Thumbnail     string       `gorm:"size:255" json:"thumbnail"`
	Price         float64      `gorm:"not null;default:0" json:"price"`
	DiscountPrice *float64     `json:"discountPrice"`
	IsFree        bool         `gorm:"default:false" json:"isFree"`
	Status        CourseStatus `gorm:"size:20;default:'draft';index" json:"status"`
	Level         CourseLevel  `gorm:"size:20;default:'all_levels'" json:"level"`
	Language      string       `gorm:"size:30;default:'English'" json:"language"`
	AverageRating float64      `gorm:"default:0" json:"averageRating"`
	TotalReviews  int          `gorm:"default:0" json:"totalReviews"`
	TotalStudents int          `gorm:"default:0" json:"totalStudents"`
	TotalDuration int          `gorm:"default:0" json:"totalDuration"` // seconds, sum of lecture durations
	InstructorID  uint         `gorm:"not null;index" json:"instructorId"`
	Instructor    *User        `gorm:"foreignKey:InstructorID" json:"instructor,omitempty"`
	CategoryID    *uint        `gorm:"index" json:"categoryId"`
	Category      *Category    `gorm:"foreignKey:CategoryID" json:"category,omitempty"`
	Sections      []Section    `gorm:"foreignKey:CourseID" json:"sections,omitempty"`
}

func (Course) TableName() string {
	return "courses"
}

// CurrentPrice is the price a buyer pays right now.
func (c *Course) CurrentPrice() float64 {
	if c.IsFree {
		return 0
	}
	if c.DiscountPrice != nil {
		return *c.DiscountPrice
	}
	return c.Price
}

// swagger:model Section
type Section struct {
	BaseModel
	Title    string    `gorm:"size:200;not null" json:"title"`
	Order    int       `gorm:"not null;default:0" json:"order"`
	CourseID uint      `gorm:"not null;index" json:"courseId"`
	Lectures []Lecture `gorm:"foreignKey:SectionID" json:"lectures,omitempty"`
}

func (Section) TableName() string {
	return "sections"
}

type LectureType string

const (
	LectureVideo LectureType = "video"
	LectureText  LectureType = "text"
	LectureQuiz  LectureType = "quiz"
)

// swagger:model Lecture
type Lecture struct {
	BaseModel
	Title     string      `gorm:"size:200;not null" json:"title"`
	Type      LectureType `gorm:"size:20;default:'video'" json:"type"`
	Order     int         `gorm:"not null;default:0" json:"order"`
	VideoURL  string      `gorm:"size:255" json:"videoUrl"`
	Content   string      `gorm:"type:text" json:"content"`
	Duration  int         `gorm:"default:0" json:"duration"` // seconds
	IsPreview bool        `gorm:"default:false" json:"isPreview"`
	SectionID uint        `gorm:"not null;index" json:"sectionId"`
	Section   *Section    `gorm:"foreignKey:SectionID" json:"section,omitempty"`
}

func (Lecture) TableName() string {
	return "lectures"
}
