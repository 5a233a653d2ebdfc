package dto

// ── TP 模块 DTO ──

// CreateAssignmentRequest 创建 TP 请求
type CreateAssignmentRequest struct {
	Seq   int    `json:"seq"   binding:"required,min=1"`
	Title string `json:"title" binding:"omitempty,max=200"`
}

// UpdateAssignmentRequest 更新 TP 请求
type UpdateAssignmentRequest struct {
	Title *string `json:"title" binding:"omitempty,max=200"`
}

// AssignmentResponse TP 信息响应
type AssignmentResponse struct {
	ID         string              `json:"id"`
	CourseID   string              `json:"course_id"`
	Seq        int                 `json:"seq"`
	Title      string              `json:"title"`
	Submission *SubmissionResponse `json:"submission,omitempty"`
	CreatedAt  string              `json:"created_at"`
	UpdatedAt  string              `json:"updated_at"`
}
