package server

import (
	"teamline/internal/domain"
)

type CreateUserRequest struct {
	ID              *string  `json:"id,omitempty"`
	Name            string   `json:"name"`
	Email           *string  `json:"email,omitempty"`
	Score           *float64 `json:"score,omitempty"`
	Availability    *float64 `json:"availability,omitempty"`
	AssignmentRules *string  `json:"assignment_rules,omitempty"`
	Expertise       *string  `json:"expertise,omitempty"`
}

type UpdateUserRequest struct {
	Name            *string  `json:"name,omitempty"`
	Email           *string  `json:"email,omitempty"`
	Score           *float64 `json:"score,omitempty"`
	Availability    *float64 `json:"availability,omitempty"`
	AssignmentRules *string  `json:"assignment_rules,omitempty"`
	Expertise       *string  `json:"expertise,omitempty"`
}

type CreateProjectRequest struct {
	ID             *string  `json:"id,omitempty"`
	Name           string   `json:"name"`
	Description    *string  `json:"description,omitempty"`
	WorkloadFactor *float64 `json:"workload_factor,omitempty"`
}

type UpdateProjectRequest struct {
	Name           *string  `json:"name,omitempty"`
	Description    *string  `json:"description,omitempty"`
	WorkloadFactor *float64 `json:"workload_factor,omitempty"`
}

type CreateTeamRequest struct {
	Name string `json:"name"`
}

type CreateTaskRequest struct {
	ID             *string  `json:"id,omitempty"`
	Title          string   `json:"title"`
	Description    *string  `json:"description,omitempty"`
	StatusID       *int64   `json:"status_id,omitempty"`
	TypeID         *int64   `json:"type_id,omitempty"`
	WorkloadWeight *float64 `json:"workload_weight,omitempty"`
	DueDate        *string  `json:"due_date,omitempty"`
	AssigneeID     *string  `json:"assignee_id,omitempty"`
	RequiredSkills *string  `json:"required_skills,omitempty"`
}

type UpdateTaskRequest struct {
	Title          *string  `json:"title,omitempty"`
	Description    *string  `json:"description,omitempty"`
	StatusID       *int64   `json:"status_id,omitempty"`
	TypeID         *int64   `json:"type_id,omitempty"`
	WorkloadWeight *float64 `json:"workload_weight,omitempty"`
	DueDate        *string  `json:"due_date,omitempty"`
	AssigneeID     *string  `json:"assignee_id,omitempty"`
	RequiredSkills *string  `json:"required_skills,omitempty"`
}

type CreateCommentRequest struct {
	Body string `json:"body"`
}

type CreateAttachmentRequest struct {
	FileName  string  `json:"file_name"`
	SizeBytes int64   `json:"size_bytes,omitempty"`
	StorageID *string `json:"storage_id,omitempty"`
}

type UserResponse struct {
	User domain.User `json:"user"`
}

type UserListResponse struct {
	Users []domain.User `json:"users"`
}

type ProjectResponse struct {
	Project domain.Project `json:"project"`
}

type ProjectListResponse struct {
	Projects []domain.Project `json:"projects"`
}

type TeamResponse struct {
	Team domain.Team `json:"team"`
}

type TeamListResponse struct {
	Teams []domain.Team `json:"teams"`
}

type TaskResponse struct {
	Task domain.Task `json:"task"`
}

type TaskListResponse struct {
	Tasks []domain.Task `json:"tasks"`
}

type CommentResponse struct {
	Comment domain.Comment `json:"comment"`
}

type CommentListResponse struct {
	Comments []domain.Comment `json:"comments"`
}

type AttachmentResponse struct {
	Attachment domain.Attachment `json:"attachment"`
}

type AttachmentListResponse struct {
	Attachments []domain.Attachment `json:"attachments"`
}

type NotificationListResponse struct {
	Notifications []domain.Notification `json:"notifications"`
}

type CreateStatusRequest struct {
	Name string `json:"name"`
}

type StatusResponse struct {
	Status domain.Status `json:"status"`
}

type StatusListResponse struct {
	Statuses []domain.Status `json:"statuses"`
}

type EventListResponse struct {
	Events []domain.Event `json:"events"`
}

type WorkloadReportResponse struct {
	Entries []domain.WorkloadSummaryEntry `json:"entries"`
}

type SuggestionResponse struct {
	Result domain.SuggestionResult `json:"result"`
}

func stringOrEmpty(v *string) string {
	if v == nil {
		return ""
	}
	return *v
}

func floatOrZero(v *float64) float64 {
	if v == nil {
		return 0
	}
	return *v
}
