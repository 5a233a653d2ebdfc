package model

// Student 学生表 — 对应 students
// FullName 是自由文本显示名（如 "Scout Mark"），核对匹配只消费这一个字段
type Student struct {
	StudentID string `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"student_id"`
	FullName  string `gorm:"type:varchar(200);not null"                     json:"full_name"`
	Email     string `gorm:"type:varchar(255)"                              json:"email,omitempty"`
	VersionedModel
}

// TableName 指定表名
func (Student) TableName() string { return "students" }
