package dto

// ── 提交模块 DTO ──

// SubmissionResponse 提交记录响应
type SubmissionResponse struct {
	ID                      string  `json:"id"`
	AssignmentID            string  `json:"assignment_id"`
	FileName                string  `json:"file_name"`
	SourceArchivePath       string  `json:"source_archive_path"`
	RestructuredArchivePath *string `json:"restructured_archive_path,omitempty"`
	CreatedAt               string  `json:"created_at"`
	UpdatedAt               string  `json:"updated_at"`
}

// RestructureResponse 重组流水线结果响应
type RestructureResponse struct {
	Submission     *SubmissionResponse `json:"submission,omitempty"`
	ProcessedCount int                 `json:"processed_count"` // 成功重组的学生目录数
	SkippedCount   int                 `json:"skipped_count"`   // 处理失败被跳过的学生目录数
	NoSubmission   bool                `json:"no_submission"`   // TP 尚无提交，本次为空操作
}

// StudentStatusResponse 学生提交状态响应
type StudentStatusResponse struct {
	ID              string `json:"id"`
	StudentID       string `json:"student_id"`
	StudentName     string `json:"student_name"`
	AssignmentID    string `json:"assignment_id"`
	SubmissionState string `json:"submission_state"`
}
