package domain

type User struct {
	ID              string  `json:"id"`
	Name            string  `json:"name"`
	Email           string  `json:"email,omitempty"`
	Score           float64 `json:"score"`
	Availability    float64 `json:"availability"`
	CurrentTasks    int     `json:"current_tasks"`
	AssignmentRules *string `json:"assignment_rules,omitempty"`
	Expertise       string  `json:"expertise,omitempty"`
	CreatedAt       string  `json:"created_at" format:"date-time"`
}

type Project struct {
	ID             string  `json:"id"`
	Name           string  `json:"name"`
	Description    string  `json:"description,omitempty"`
	WorkloadFactor float64 `json:"workload_factor"`
	CreatedAt      string  `json:"created_at" format:"date-time"`
}

type Team struct {
	ID        string   `json:"id"`
	ProjectID string   `json:"project_id"`
	Name      string   `json:"name"`
	MemberIDs []string `json:"member_ids,omitempty"`
	CreatedAt string   `json:"created_at" format:"date-time"`
}

type Status struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

type Task struct {
	ID                  string  `json:"id"`
	ProjectID           string  `json:"project_id"`
	Title               string  `json:"title"`
	Description         string  `json:"description,omitempty"`
	StatusID            int64   `json:"status_id"`
	TypeID              *int64  `json:"type_id,omitempty"`
	WorkloadWeight      float64 `json:"workload_weight"`
	DueDate             *string `json:"due_date,omitempty" format:"date-time"`
	AssigneeID          *string `json:"assignee_id,omitempty"`
	SuggestedAssigneeID *string `json:"suggested_assignee_id,omitempty"`
	RequiredSkills      *string `json:"required_skills,omitempty"`
	CreatedAt           string  `json:"created_at" format:"date-time"`
	UpdatedAt           string  `json:"updated_at" format:"date-time"`
}

type Comment struct {
	ID        string `json:"id"`
	TaskID    string `json:"task_id"`
	AuthorID  string `json:"author_id"`
	Body      string `json:"body"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

// Attachment is a metadata row only; blob storage lives elsewhere.
type Attachment struct {
	ID        string `json:"id"`
	TaskID    string `json:"task_id"`
	FileName  string `json:"file_name"`
	SizeBytes int64  `json:"size_bytes"`
	StorageID string `json:"storage_id,omitempty"`
	CreatedAt string `json:"created_at" format:"date-time"`
}

type Notification struct {
	ID        string  `json:"id"`
	UserID    string  `json:"user_id"`
	Kind      string  `json:"kind"`
	Message   string  `json:"message"`
	TaskID    *string `json:"task_id,omitempty"`
	Read      bool    `json:"read"`
	CreatedAt string  `json:"created_at" format:"date-time"`
}

// Rule is one entry of a user's assignment rules. Any subset of fields may
// be present; absent fields contribute nothing when scoring a candidate.
type Rule struct {
	Skill    string   `json:"skill,omitempty"`
	TypeID   *int64   `json:"type_id,omitempty"`
	Priority *float64 `json:"priority,omitempty"`
}

// WorkloadSummaryEntry is the per-user row of the global workload report.
// Float fields are rounded to 2 decimals for presentation.
type WorkloadSummaryEntry struct {
	UserID                string  `json:"user_id"`
	Name                  string  `json:"name"`
	UserScore             float64 `json:"user_score"`
	GlobalTasksCount      int     `json:"global_tasks_count"`
	TotalTasksDone        int     `json:"total_tasks_done"`
	TotalProjectsInvolved int     `json:"total_projects_involved"`
	GlobalWorkload        float64 `json:"global_workload"`
	WorkloadAssessment    string  `json:"workload_assessment" enum:"Highly Overloaded,Overloaded,Underutilized,Optimal"`
	WorkloadBalanceIndex  float64 `json:"workload_balance_index"`
}

// SuggestionResult is the outcome of scoring a task's candidate pool.
// Found is false when the project has no team members; that is an
// informational result, not an error.
type SuggestionResult struct {
	Found       bool     `json:"found"`
	CandidateID string   `json:"candidate_id,omitempty"`
	Name        string   `json:"name,omitempty"`
	Score       *float64 `json:"score,omitempty"`
	Message     string   `json:"message"`
}

type Event struct {
	ID         int64  `json:"id"`
	TS         string `json:"ts" format:"date-time"`
	Type       string `json:"type"`
	ProjectID  string `json:"project_id,omitempty"`
	EntityKind string `json:"entity_kind"`
	EntityID   string `json:"entity_id,omitempty"`
	ActorID    string `json:"actor_id"`
	Payload    string `json:"payload_json"`
}
