package dto

// ── 课程模块 DTO ──

// CreateCourseRequest 创建课程请求
type CreateCourseRequest struct {
	Code           string `json:"code"             binding:"required,min=2,max=50"`
	Name           string `json:"name"             binding:"required,min=2,max=200"`
	ProjectTypeTag string `json:"project_type_tag" binding:"omitempty,oneof=java python javaee"`
}

// UpdateCourseRequest 更新课程请求
type UpdateCourseRequest struct {
	Name           *string `json:"name"             binding:"omitempty,min=2,max=200"`
	ProjectTypeTag *string `json:"project_type_tag" binding:"omitempty,oneof=java python javaee"`
}

// EnrollRequest 选课请求
type EnrollRequest struct {
	StudentIDs []string `json:"student_ids" binding:"required,min=1"`
}

// CourseResponse 课程信息响应
type CourseResponse struct {
	ID             string `json:"id"`
	Code           string `json:"code"`
	Name           string `json:"name"`
	ProjectTypeTag string `json:"project_type_tag"`
	CreatedAt      string `json:"created_at"`
	UpdatedAt      string `json:"updated_at"`
}
