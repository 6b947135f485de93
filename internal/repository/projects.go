package repository

import (
	"context"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/okanelab/ledgersheet/internal/domain"
	"github.com/okanelab/ledgersheet/internal/sheets"
)

const (
	projectsSheet       = "Projects"
	projectsDataRange   = projectsSheet + "!A2:I"
	projectsAppendRange = projectsSheet + "!A:A"
)

// ProjectRepository is the project access contract.
type ProjectRepository interface {
	FindAll(ctx context.Context) ([]domain.Project, error)
	FindByID(ctx context.Context, id string) (*domain.Project, error)
	Create(ctx context.Context, in domain.CreateProjectInput) (*domain.Project, error)
	Update(ctx context.Context, id string, in domain.UpdateProjectInput) (*domain.Project, error)
	Delete(ctx context.Context, id string) error
}

// Projects is the project repository over the tabular store. Same access
// pattern as Transactions: full-range reads, in-memory filtering, and a
// mutex serializing mutations.
type Projects struct {
	store sheets.Store
	codec projectCodec
	log   zerolog.Logger

	mu  sync.Mutex
	now func() time.Time
}

// NewProjects creates the project repository.
func NewProjects(store sheets.Store, log zerolog.Logger) *Projects {
	return &Projects{
		store: store,
		codec: projectCodec{log: log, now: time.Now},
		log:   log,
		now:   time.Now,
	}
}

func (r *Projects) fetchAll(ctx context.Context) ([]domain.Project, error) {
	raw, err := r.store.GetRange(ctx, projectsDataRange)
	if err != nil {
		return nil, fmt.Errorf("fetchAll: %w", err)
	}

	projects := make([]domain.Project, 0, len(raw))
	for _, row := range raw {
		if len(row) == 0 || cellString(row, 0) == "" {
			continue
		}
		projects = append(projects, r.codec.decode(row))
	}
	return projects, nil
}

// FindAll returns every project.
func (r *Projects) FindAll(ctx context.Context) ([]domain.Project, error) {
	return r.fetchAll(ctx)
}

// FindByID returns the project with the given id, or ErrProjectNotFound.
func (r *Projects) FindByID(ctx context.Context, id string) (*domain.Project, error) {
	all, err := r.fetchAll(ctx)
	if err != nil {
		return nil, fmt.Errorf("FindByID: %w", err)
	}
	for i := range all {
		if all[i].ID == id {
			return &all[i], nil
		}
	}
	return nil, fmt.Errorf("FindByID %s: %w", id, domain.ErrProjectNotFound)
}

// Create appends a new project row. Name is required; status defaults to
// active.
func (r *Projects) Create(ctx context.Context, in domain.CreateProjectInput) (*domain.Project, error) {
	if in.Name == "" {
		return nil, fmt.Errorf("Create: name is required: %w", domain.ErrInvalidInput)
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.now()
	status := in.Status
	if status == "" {
		status = domain.ProjectActive
	}

	p := domain.Project{
		ID:          fmt.Sprintf("%d-%d", now.UnixMilli(), rand.Intn(1000)),
		Name:        in.Name,
		Code:        in.Code,
		Description: in.Description,
		Status:      status,
		StartDate:   in.StartDate,
		EndDate:     in.EndDate,
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := r.store.Append(ctx, projectsAppendRange, [][]interface{}{r.codec.encode(p)}); err != nil {
		return nil, fmt.Errorf("Create: %w", err)
	}
	return &p, nil
}

// Update merges the patch onto the stored project and overwrites its row.
func (r *Projects) Update(ctx context.Context, id string, in domain.UpdateProjectInput) (*domain.Project, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	raw, err := r.store.GetRange(ctx, projectsDataRange)
	if err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}

	rowIdx := -1
	for i, row := range raw {
		if cellString(row, 0) == id {
			rowIdx = i
			break
		}
	}
	if rowIdx == -1 {
		return nil, fmt.Errorf("Update %s: %w", id, domain.ErrProjectNotFound)
	}

	p := r.codec.decode(raw[rowIdx])
	if in.Name != nil {
		if *in.Name == "" {
			return nil, fmt.Errorf("Update: name is required: %w", domain.ErrInvalidInput)
		}
		p.Name = *in.Name
	}
	if in.Code != nil {
		p.Code = *in.Code
	}
	if in.Description != nil {
		p.Description = *in.Description
	}
	if in.Status != nil {
		p.Status = *in.Status
	}
	if in.StartDate != nil {
		p.StartDate = in.StartDate
	}
	if in.EndDate != nil {
		p.EndDate = in.EndDate
	}
	p.UpdatedAt = r.now()

	sheetRow := rowIdx + 2
	updateRange := fmt.Sprintf("%s!A%d:I%d", projectsSheet, sheetRow, sheetRow)
	if err := r.store.Update(ctx, updateRange, [][]interface{}{r.codec.encode(p)}); err != nil {
		return nil, fmt.Errorf("Update: %w", err)
	}
	return &p, nil
}

// Delete physically removes the project row via read-filter-clear-rewrite.
// Deleting an unknown id is a no-op. Archiving (a status update) is the
// intended removal path; this is the hard variant.
func (r *Projects) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	all, err := r.fetchAll(ctx)
	if err != nil {
		return fmt.Errorf("Delete: %w", err)
	}

	kept := make([]domain.Project, 0, len(all))
	for _, p := range all {
		if p.ID != id {
			kept = append(kept, p)
		}
	}
	if len(kept) == len(all) {
		return nil
	}

	if err := r.store.Clear(ctx, projectsDataRange); err != nil {
		return fmt.Errorf("Delete: %w", err)
	}
	if len(kept) > 0 {
		rows := make([][]interface{}, 0, len(kept))
		for _, p := range kept {
			rows = append(rows, r.codec.encode(p))
		}
		if err := r.store.Append(ctx, projectsAppendRange, rows); err != nil {
			return fmt.Errorf("Delete: rewriting retained rows: %w", err)
		}
	}

	r.log.Info().Str("project_id", id).Msg("deleted project")
	return nil
}
