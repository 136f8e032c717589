package storage

import (
	"context"

	"timetracker/internal/storage/models"
)

// InsertClient inserts a new client
func (q *Queries) InsertClient(ctx context.Context, c *models.Client) error {
	_, err := q.exec(ctx,
		`INSERT INTO clients (id, name, email, company) VALUES (?, ?, ?, ?)`,
		c.ID, c.Name, c.Email, c.Company,
	)
	return err
}

// GetClient returns a client by id
func (q *Queries) GetClient(ctx context.Context, id string) (*models.Client, error) {
	var c models.Client
	err := q.queryRow(ctx, `SELECT id, name, email, company FROM clients WHERE id = ?`, id).
		Scan(&c.ID, &c.Name, &c.Email, &c.Company)
	if err != nil {
		return nil, mapError(err)
	}
	return &c, nil
}

// ListClients returns every client ordered by name
func (q *Queries) ListClients(ctx context.Context) ([]models.Client, error) {
	rows, err := q.query(ctx, `SELECT id, name, email, company FROM clients ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	clients := []models.Client{}
	for rows.Next() {
		var c models.Client
		if err := rows.Scan(&c.ID, &c.Name, &c.Email, &c.Company); err != nil {
			return nil, mapError(err)
		}
		clients = append(clients, c)
	}
	return clients, mapError(rows.Err())
}

// InsertProject inserts a new project
func (q *Queries) InsertProject(ctx context.Context, p *models.Project) error {
	_, err := q.exec(ctx,
		`INSERT INTO projects (id, client_id, name, color, archived) VALUES (?, ?, ?, ?, ?)`,
		p.ID, p.ClientID, p.Name, p.Color, boolToInt(p.Archived),
	)
	return err
}

// GetProject returns a project by id
func (q *Queries) GetProject(ctx context.Context, id string) (*models.Project, error) {
	var (
		p        models.Project
		archived int64
	)
	err := q.queryRow(ctx, `SELECT id, client_id, name, color, archived FROM projects WHERE id = ?`, id).
		Scan(&p.ID, &p.ClientID, &p.Name, &p.Color, &archived)
	if err != nil {
		return nil, mapError(err)
	}
	p.Archived = archived != 0
	return &p, nil
}

// ListProjects returns projects ordered by name, optionally only the
// non-archived ones
func (q *Queries) ListProjects(ctx context.Context, activeOnly bool) ([]models.Project, error) {
	query := `SELECT id, client_id, name, color, archived FROM projects`
	if activeOnly {
		query += ` WHERE archived = 0`
	}
	query += ` ORDER BY name, id`

	rows, err := q.query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	projects := []models.Project{}
	for rows.Next() {
		var (
			p        models.Project
			archived int64
		)
		if err := rows.Scan(&p.ID, &p.ClientID, &p.Name, &p.Color, &archived); err != nil {
			return nil, mapError(err)
		}
		p.Archived = archived != 0
		projects = append(projects, p)
	}
	return projects, mapError(rows.Err())
}

// InsertTask inserts a new task
func (q *Queries) InsertTask(ctx context.Context, t *models.Task) error {
	_, err := q.exec(ctx,
		`INSERT INTO tasks (id, project_id, name, estimated_minutes, is_active) VALUES (?, ?, ?, ?, ?)`,
		t.ID, t.ProjectID, t.Name, t.EstimatedMinutes, boolToInt(t.IsActive),
	)
	return err
}

// GetTask returns a task by id
func (q *Queries) GetTask(ctx context.Context, id string) (*models.Task, error) {
	var (
		t      models.Task
		active int64
	)
	err := q.queryRow(ctx, `SELECT id, project_id, name, estimated_minutes, is_active FROM tasks WHERE id = ?`, id).
		Scan(&t.ID, &t.ProjectID, &t.Name, &t.EstimatedMinutes, &active)
	if err != nil {
		return nil, mapError(err)
	}
	t.IsActive = active != 0
	return &t, nil
}

// ListTasks returns tasks ordered by name. An empty projectID lists tasks
// of every project.
func (q *Queries) ListTasks(ctx context.Context, projectID string, activeOnly bool) ([]models.Task, error) {
	query := `SELECT id, project_id, name, estimated_minutes, is_active FROM tasks WHERE 1 = 1`
	var args []any
	if projectID != "" {
		query += ` AND project_id = ?`
		args = append(args, projectID)
	}
	if activeOnly {
		query += ` AND is_active = 1`
	}
	query += ` ORDER BY name, id`

	rows, err := q.query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	tasks := []models.Task{}
	for rows.Next() {
		var (
			t      models.Task
			active int64
		)
		if err := rows.Scan(&t.ID, &t.ProjectID, &t.Name, &t.EstimatedMinutes, &active); err != nil {
			return nil, mapError(err)
		}
		t.IsActive = active != 0
		tasks = append(tasks, t)
	}
	return tasks, mapError(rows.Err())
}
