package dto

// ── 学生模块 DTO ──

// CreateStudentRequest 创建学生请求
type CreateStudentRequest struct {
	FullName string `json:"full_name" binding:"required,min=2,max=200"`
	Email    string `json:"email"     binding:"omitempty,email"`
}

// UpdateStudentRequest 更新学生请求
type UpdateStudentRequest struct {
	FullName *string `json:"full_name" binding:"omitempty,min=2,max=200"`
	Email    *string `json:"email"     binding:"omitempty,email"`
}

// StudentResponse 学生信息响应
type StudentResponse struct {
	ID       string `json:"id"`
	FullName string `json:"full_name"`
	Email    string `json:"email,omitempty"`
}
