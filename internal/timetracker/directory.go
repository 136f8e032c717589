package timetracker

import (
	"context"
	"errors"
	"strings"

	"timetracker/internal/storage"
	"timetracker/internal/storage/models"

	"github.com/google/uuid"
)

// DefaultProjectColor is used for projects created without a color
const DefaultProjectColor = "#03a9f4"

// ListClients returns every client
func (s *Service) ListClients(ctx context.Context) ([]models.Client, error) {
	clients, err := s.db.Queries().ListClients(ctx)
	return clients, translate(err)
}

// ListActiveProjects returns projects that are not archived
func (s *Service) ListActiveProjects(ctx context.Context) ([]models.Project, error) {
	projects, err := s.db.Queries().ListProjects(ctx, true)
	return projects, translate(err)
}

// ListActiveTasks returns active tasks, optionally of a single project
func (s *Service) ListActiveTasks(ctx context.Context, projectID string) ([]models.Task, error) {
	tasks, err := s.db.Queries().ListTasks(ctx, projectID, true)
	return tasks, translate(err)
}

// CreateClient adds a client to the directory
func (s *Service) CreateClient(ctx context.Context, name, email, company string) (*models.Client, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationf("client name is required")
	}
	c := &models.Client{
		ID:      uuid.NewString(),
		Name:    name,
		Email:   strings.TrimSpace(email),
		Company: strings.TrimSpace(company),
	}
	if err := s.db.Queries().InsertClient(ctx, c); err != nil {
		return nil, translate(err)
	}
	return c, nil
}

// CreateProject adds a project owned by an existing client
func (s *Service) CreateProject(ctx context.Context, name, clientID string) (*models.Project, error) {
	var p *models.Project
	err := s.db.WithTx(ctx, func(q *storage.Queries) error {
		var err error
		p, err = createProject(ctx, q, name, clientID)
		return err
	})
	return p, translate(err)
}

// CreateTask adds an active task to an existing project
func (s *Service) CreateTask(ctx context.Context, name, projectID string) (*models.Task, error) {
	var t *models.Task
	err := s.db.WithTx(ctx, func(q *storage.Queries) error {
		if _, err := existingProject(ctx, q, projectID); err != nil {
			return err
		}
		var err error
		t, err = createTask(ctx, q, name, projectID)
		return err
	})
	return t, translate(err)
}

func createProject(ctx context.Context, q *storage.Queries, name, clientID string) (*models.Project, error) {
	name = strings.TrimSpace(name)
	clientID = strings.TrimSpace(clientID)
	if name == "" {
		return nil, validationf("new project name is required")
	}
	if clientID == "" {
		return nil, validationf("new project client is required")
	}
	if _, err := q.GetClient(ctx, clientID); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, validationf("client %q does not exist", clientID)
		}
		return nil, err
	}
	p := &models.Project{
		ID:       uuid.NewString(),
		ClientID: clientID,
		Name:     name,
		Color:    DefaultProjectColor,
	}
	if err := q.InsertProject(ctx, p); err != nil {
		return nil, err
	}
	return p, nil
}

func createTask(ctx context.Context, q *storage.Queries, name, projectID string) (*models.Task, error) {
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, validationf("new task name is required")
	}
	if projectID == "" {
		return nil, validationf("a project is required to create a task")
	}
	t := &models.Task{
		ID:        uuid.NewString(),
		ProjectID: projectID,
		Name:      name,
		IsActive:  true,
	}
	if err := q.InsertTask(ctx, t); err != nil {
		return nil, err
	}
	return t, nil
}

// existingProject returns a selectable project or a ValidationError
func existingProject(ctx context.Context, q *storage.Queries, id string) (*models.Project, error) {
	p, err := q.GetProject(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, validationf("project %q does not exist", id)
		}
		return nil, err
	}
	if p.Archived {
		return nil, validationf("project %q is archived", p.Name)
	}
	return p, nil
}

// existingTask returns a task of the given project or a ValidationError
func existingTask(ctx context.Context, q *storage.Queries, id string, projectID *string) (*models.Task, error) {
	t, err := q.GetTask(ctx, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return nil, validationf("task %q does not exist", id)
		}
		return nil, err
	}
	if projectID == nil || t.ProjectID != *projectID {
		return nil, validationf("task %q does not belong to the selected project", t.Name)
	}
	return t, nil
}
