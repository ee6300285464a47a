package rest

// CourseDTO is a course as returned by GET /teacher/courses
type CourseDTO struct {
	ID           int64   `json:"id"`
	Name         string  `json:"name"`
	Price        float64 `json:"price"`
	ThumbnailURL *string `json:"thumbnailUrl"`
}

// DivisionDTO is a division as returned by GET /teacher/courses/{id}/divisions
type DivisionDTO struct {
	ID    int64  `json:"id"`
	Title string `json:"title"`
	Order int    `json:"order"`
}

// ContentDTO is a content as returned by GET /teacher/divisions/{id}/contents
type ContentDTO struct {
	ID       int64  `json:"id"`
	Title    string `json:"title"`
	Type     string `json:"type"`
	Category string `json:"category"`
	FileURL  string `json:"fileUrl"`
	Duration *int   `json:"duration"`
}

// TeacherDTO identifies the signed-in teacher
type TeacherDTO struct {
	Email string `json:"email"`
	Name  string `json:"name"`
}

// SignInRequest is the body of POST /teacher/signin
type SignInRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// SignInResponse is returned by POST /teacher/signin
type SignInResponse struct {
	Message string     `json:"message"`
	Teacher TeacherDTO `json:"teacher"`
}

// VerifyResponse is returned by GET /teacher/verify
type VerifyResponse struct {
	Authenticated bool       `json:"authenticated"`
	IsNew         bool       `json:"isNew"`
	Teacher       TeacherDTO `json:"teacher"`
}

// CreateCourseRequest is the body of POST /teacher/courses
type CreateCourseRequest struct {
	Name  string  `json:"name"`
	Price float64 `json:"price"`
}

// CreateDivisionRequest is the body of POST /teacher/courses/{id}/divisions
type CreateDivisionRequest struct {
	Title string `json:"title"`
	Order int    `json:"order"`
}
