package engine

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"teamline/internal/config"
	"teamline/internal/domain"
	"teamline/internal/events"
	"teamline/internal/repo"
)

type Engine struct {
	DB     *sql.DB
	Repo   repo.Repo
	Events events.Writer
	Config *config.Config
	Now    func() time.Time
}

func New(db *sql.DB, cfg *config.Config) Engine {
	return Engine{
		DB:     db,
		Repo:   repo.Repo{DB: db},
		Events: events.Writer{DB: db},
		Config: cfg,
		Now:    time.Now,
	}
}

func (e Engine) now() time.Time {
	if e.Now != nil {
		return e.Now()
	}
	return time.Now()
}

// UserCreateOptions are parameters for creating a user.
type UserCreateOptions struct {
	ID              string
	Name            string
	Email           string
	Score           float64
	Availability    float64
	AssignmentRules string
	Expertise       string
	ActorID         string
}

func (e Engine) CreateUser(ctx context.Context, opts UserCreateOptions) (domain.User, error) {
	if opts.Name == "" {
		return domain.User{}, errors.New("name is required")
	}
	id := opts.ID
	if id == "" {
		id = uuid.New().String()
	}
	u := domain.User{
		ID:           id,
		Name:         opts.Name,
		Email:        opts.Email,
		Score:        opts.Score,
		Availability: opts.Availability,
		Expertise:    opts.Expertise,
		CreatedAt:    e.now().UTC().Format(time.RFC3339),
	}
	if opts.AssignmentRules != "" {
		u.AssignmentRules = &opts.AssignmentRules
	}
	if err := e.Repo.InsertUser(ctx, u); err != nil {
		return domain.User{}, fmt.Errorf("insert user: %w", err)
	}
	if err := e.appendEvent(ctx, "user.created", "", "user", u.ID, opts.ActorID, events.EventPayload{"name": u.Name}); err != nil {
		return domain.User{}, err
	}
	return u, nil
}

// ProjectCreateOptions are parameters for creating a project.
type ProjectCreateOptions struct {
	ID             string
	Name           string
	Description    string
	WorkloadFactor float64
	ActorID        string
}

func (e Engine) CreateProject(ctx context.Context, opts ProjectCreateOptions) (domain.Project, error) {
	if opts.Name == "" {
		return domain.Project{}, errors.New("name is required")
	}
	id := opts.ID
	if id == "" {
		id = uuid.New().String()
	}
	p := domain.Project{
		ID:             id,
		Name:           opts.Name,
		Description:    opts.Description,
		WorkloadFactor: opts.WorkloadFactor,
		CreatedAt:      e.now().UTC().Format(time.RFC3339),
	}
	if err := e.Repo.InsertProject(ctx, p); err != nil {
		return domain.Project{}, fmt.Errorf("insert project: %w", err)
	}
	if err := e.appendEvent(ctx, "project.created", p.ID, "project", p.ID, opts.ActorID, events.EventPayload{"name": p.Name}); err != nil {
		return domain.Project{}, err
	}
	return p, nil
}

func (e Engine) CreateTeam(ctx context.Context, projectID, name, actorID string) (domain.Team, error) {
	if name == "" {
		return domain.Team{}, errors.New("name is required")
	}
	if _, err := e.Repo.GetProject(ctx, projectID); err != nil {
		return domain.Team{}, err
	}
	t := domain.Team{
		ID:        uuid.New().String(),
		ProjectID: projectID,
		Name:      name,
		CreatedAt: e.now().UTC().Format(time.RFC3339),
	}
	if err := e.Repo.InsertTeam(ctx, t); err != nil {
		return domain.Team{}, fmt.Errorf("insert team: %w", err)
	}
	if err := e.appendEvent(ctx, "team.created", projectID, "team", t.ID, actorID, events.EventPayload{"name": t.Name}); err != nil {
		return domain.Team{}, err
	}
	return t, nil
}

func (e Engine) AddTeamMember(ctx context.Context, teamID, userID, actorID string) error {
	t, err := e.Repo.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if _, err := e.Repo.GetUser(ctx, userID); err != nil {
		return err
	}
	if err := e.Repo.AddTeamMember(ctx, teamID, userID); err != nil {
		return err
	}
	return e.appendEvent(ctx, "team.member.added", t.ProjectID, "team", t.ID, actorID, events.EventPayload{"user_id": userID})
}

func (e Engine) RemoveTeamMember(ctx context.Context, teamID, userID, actorID string) error {
	t, err := e.Repo.GetTeam(ctx, teamID)
	if err != nil {
		return err
	}
	if err := e.Repo.RemoveTeamMember(ctx, teamID, userID); err != nil {
		return err
	}
	return e.appendEvent(ctx, "team.member.removed", t.ProjectID, "team", t.ID, actorID, events.EventPayload{"user_id": userID})
}

// TaskCreateOptions are parameters for creating a task.
type TaskCreateOptions struct {
	ID             string
	ProjectID      string
	Title          string
	Description    string
	StatusID       int64
	TypeID         *int64
	WorkloadWeight float64
	DueDate        string
	AssigneeID     string
	RequiredSkills string
	ActorID        string
}

func (e Engine) CreateTask(ctx context.Context, opts TaskCreateOptions) (domain.Task, error) {
	if opts.Title == "" {
		return domain.Task{}, errors.New("title is required")
	}
	if opts.ProjectID == "" {
		return domain.Task{}, errors.New("project is required")
	}
	if _, err := e.Repo.GetProject(ctx, opts.ProjectID); err != nil {
		return domain.Task{}, err
	}
	statusID := opts.StatusID
	if statusID == 0 {
		s, err := e.Repo.GetStatusByName(ctx, "Backlog")
		if err != nil {
			return domain.Task{}, fmt.Errorf("default status: %w", err)
		}
		statusID = s.ID
	} else if _, err := e.Repo.GetStatus(ctx, statusID); err != nil {
		return domain.Task{}, err
	}
	if opts.AssigneeID != "" {
		if _, err := e.Repo.GetUser(ctx, opts.AssigneeID); err != nil {
			return domain.Task{}, err
		}
	}
	id := opts.ID
	now := e.now().UTC().Format(time.RFC3339)
	if id == "" {
		id = uuid.NewSHA1(uuid.NameSpaceOID, []byte(opts.ProjectID+"|"+opts.Title+"|"+now)).String()
	}
	t := domain.Task{
		ID:             id,
		ProjectID:      opts.ProjectID,
		Title:          opts.Title,
		Description:    opts.Description,
		StatusID:       statusID,
		TypeID:         opts.TypeID,
		WorkloadWeight: opts.WorkloadWeight,
		DueDate:        optionalString(opts.DueDate),
		AssigneeID:     optionalString(opts.AssigneeID),
		RequiredSkills: optionalString(opts.RequiredSkills),
		CreatedAt:      now,
		UpdatedAt:      now,
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Task{}, err
	}
	defer tx.Rollback()

	if err := e.Repo.InsertTask(ctx, tx, t); err != nil {
		return domain.Task{}, err
	}
	if t.AssigneeID != nil {
		if err := e.Repo.AdjustCurrentTasksTx(ctx, tx, *t.AssigneeID, 1); err != nil {
			return domain.Task{}, err
		}
		if err := e.notifyTx(ctx, tx, *t.AssigneeID, "task.assigned", fmt.Sprintf("You were assigned to %q", t.Title), t.ID); err != nil {
			return domain.Task{}, err
		}
	}
	if err := e.Events.Append(ctx, tx, "task.created", t.ProjectID, "task", t.ID, opts.ActorID, events.EventPayload{"title": t.Title}); err != nil {
		return domain.Task{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Task{}, err
	}
	return t, nil
}

// TaskUpdateOptions encapsulates allowed updates.
type TaskUpdateOptions struct {
	ID              string
	Title           *string
	Description     *string
	StatusID        *int64
	TypeID          *int64
	TypeProvided    bool
	WorkloadWeight  *float64
	DueDate         *string
	DueDateProvided bool
	Assign          *string
	AssignProvided  bool
	RequiredSkills  *string
	ActorID         string
}

func (e Engine) UpdateTask(ctx context.Context, opts TaskUpdateOptions) (domain.Task, error) {
	t, err := e.Repo.GetTask(ctx, opts.ID)
	if err != nil {
		return t, err
	}
	prevAssignee := t.AssigneeID

	if opts.Title != nil {
		if *opts.Title == "" {
			return t, errors.New("title is required")
		}
		t.Title = *opts.Title
	}
	if opts.Description != nil {
		t.Description = *opts.Description
	}
	if opts.StatusID != nil {
		if _, err := e.Repo.GetStatus(ctx, *opts.StatusID); err != nil {
			return t, err
		}
		t.StatusID = *opts.StatusID
	}
	if opts.TypeProvided {
		t.TypeID = opts.TypeID
	}
	if opts.WorkloadWeight != nil {
		t.WorkloadWeight = *opts.WorkloadWeight
	}
	if opts.DueDateProvided {
		t.DueDate = opts.DueDate
	}
	if opts.RequiredSkills != nil {
		t.RequiredSkills = optionalString(*opts.RequiredSkills)
	}
	assigneeChanged := false
	if opts.AssignProvided {
		if opts.Assign == nil || *opts.Assign == "" {
			assigneeChanged = t.AssigneeID != nil
			t.AssigneeID = nil
		} else {
			if _, err := e.Repo.GetUser(ctx, *opts.Assign); err != nil {
				return t, err
			}
			assigneeChanged = t.AssigneeID == nil || *t.AssigneeID != *opts.Assign
			t.AssigneeID = opts.Assign
		}
	}
	t.UpdatedAt = e.now().UTC().Format(time.RFC3339)

	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return t, err
	}
	defer tx.Rollback()

	if err := e.Repo.UpdateTask(ctx, tx, t); err != nil {
		return t, err
	}
	if assigneeChanged {
		if prevAssignee != nil {
			if err := e.Repo.AdjustCurrentTasksTx(ctx, tx, *prevAssignee, -1); err != nil {
				return t, err
			}
		}
		if t.AssigneeID != nil {
			if err := e.Repo.AdjustCurrentTasksTx(ctx, tx, *t.AssigneeID, 1); err != nil {
				return t, err
			}
			if err := e.notifyTx(ctx, tx, *t.AssigneeID, "task.assigned", fmt.Sprintf("You were assigned to %q", t.Title), t.ID); err != nil {
				return t, err
			}
		}
	}
	if err := e.Events.Append(ctx, tx, "task.updated", t.ProjectID, "task", t.ID, opts.ActorID, events.EventPayload{
		"status_id": t.StatusID,
	}); err != nil {
		return t, err
	}
	if err := tx.Commit(); err != nil {
		return t, err
	}
	return t, nil
}

func (e Engine) AddComment(ctx context.Context, taskID, authorID, body string) (domain.Comment, error) {
	if body == "" {
		return domain.Comment{}, errors.New("body is required")
	}
	t, err := e.Repo.GetTask(ctx, taskID)
	if err != nil {
		return domain.Comment{}, err
	}
	c := domain.Comment{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		AuthorID:  authorID,
		Body:      body,
		CreatedAt: e.now().UTC().Format(time.RFC3339),
	}
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return domain.Comment{}, err
	}
	defer tx.Rollback()

	if err := e.Repo.InsertCommentTx(ctx, tx, c); err != nil {
		return domain.Comment{}, err
	}
	if t.AssigneeID != nil && *t.AssigneeID != authorID {
		if err := e.notifyTx(ctx, tx, *t.AssigneeID, "task.commented", fmt.Sprintf("New comment on %q", t.Title), t.ID); err != nil {
			return domain.Comment{}, err
		}
	}
	if err := e.Events.Append(ctx, tx, "comment.created", t.ProjectID, "comment", c.ID, authorID, events.EventPayload{"task_id": taskID}); err != nil {
		return domain.Comment{}, err
	}
	if err := tx.Commit(); err != nil {
		return domain.Comment{}, err
	}
	return c, nil
}

func (e Engine) AddAttachment(ctx context.Context, taskID, fileName string, sizeBytes int64, storageID, actorID string) (domain.Attachment, error) {
	if fileName == "" {
		return domain.Attachment{}, errors.New("file_name is required")
	}
	t, err := e.Repo.GetTask(ctx, taskID)
	if err != nil {
		return domain.Attachment{}, err
	}
	a := domain.Attachment{
		ID:        uuid.New().String(),
		TaskID:    taskID,
		FileName:  fileName,
		SizeBytes: sizeBytes,
		StorageID: storageID,
		CreatedAt: e.now().UTC().Format(time.RFC3339),
	}
	if err := e.Repo.InsertAttachment(ctx, a); err != nil {
		return domain.Attachment{}, err
	}
	if err := e.appendEvent(ctx, "attachment.added", t.ProjectID, "attachment", a.ID, actorID, events.EventPayload{"task_id": taskID, "file_name": fileName}); err != nil {
		return domain.Attachment{}, err
	}
	return a, nil
}

func (e Engine) notifyTx(ctx context.Context, tx *sql.Tx, userID, kind, message, taskID string) error {
	n := domain.Notification{
		ID:        uuid.New().String(),
		UserID:    userID,
		Kind:      kind,
		Message:   message,
		TaskID:    optionalString(taskID),
		CreatedAt: e.now().UTC().Format(time.RFC3339),
	}
	return e.Repo.InsertNotificationTx(ctx, tx, n)
}

func (e Engine) appendEvent(ctx context.Context, evtType, projectID, entityKind, entityID, actorID string, payload events.EventPayload) error {
	tx, err := e.DB.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()
	if err := e.Events.Append(ctx, tx, evtType, projectID, entityKind, entityID, actorID, payload); err != nil {
		return err
	}
	return tx.Commit()
}

// --- helpers ---

func optionalString(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
