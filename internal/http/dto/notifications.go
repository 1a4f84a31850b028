package dto

type DispatchNotificationRequest struct {
	UserIDs      []string `json:"userIds"`
	Title        string   `json:"title"`
	Message      string   `json:"message"`
	Type         string   `json:"type"`
	ClassroomID  *string  `json:"classroomId"`
	AssignmentID *string  `json:"assignmentId"`
	Metadata     *string  `json:"metadata"`
}

type MarkReadRequest struct {
	IDs []int64 `json:"ids"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type StatusResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
