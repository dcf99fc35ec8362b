package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/samber/lo"
	"go.uber.org/zap"

	"ai2sql/internal/adapter/dbinspect"
	"ai2sql/internal/dto"
	"ai2sql/internal/model"
	"ai2sql/internal/pkg/auth"
	"ai2sql/internal/pkg/logger"
	"ai2sql/internal/repository"
	pkgErrors "ai2sql/pkg/errors"
)

// MetadataService keeps the schema description of a project's target database
type MetadataService interface {
	List(userID, projectID int64) ([]*dto.TableMetadataResponse, error)
	// Extract re-reads the schema, keeping descriptions of tables and columns that still exist
	Extract(ctx context.Context, userID, projectID int64) (*dto.ExtractMetadataResponse, error)
	Update(userID, projectID, tableID int64, req *dto.UpdateTableMetadataRequest) (*dto.TableMetadataResponse, error)
}

type metadataService struct {
	authz       AuthorizationService
	repo        repository.TableMetadataRepository
	connRepo    repository.ConnectionRepository
	connections ConnectionService
	inspector   dbinspect.Inspector
}

func NewMetadataService(
	authz AuthorizationService,
	repo repository.TableMetadataRepository,
	connRepo repository.ConnectionRepository,
	connections ConnectionService,
	inspector dbinspect.Inspector,
) MetadataService {
	return &metadataService{
		authz:       authz,
		repo:        repo,
		connRepo:    connRepo,
		connections: connections,
		inspector:   inspector,
	}
}

func (s *metadataService) List(userID, projectID int64) ([]*dto.TableMetadataResponse, error) {
	if _, err := s.authz.RequireProject(userID, projectID, auth.PermMetadataView); err != nil {
		return nil, err
	}

	tables, err := s.repo.ListByProject(projectID)
	if err != nil {
		return nil, err
	}

	return lo.Map(tables, func(t *model.TableMetadata, _ int) *dto.TableMetadataResponse {
		return toTableMetadataResponse(t)
	}), nil
}

func (s *metadataService) Extract(ctx context.Context, userID, projectID int64) (*dto.ExtractMetadataResponse, error) {
	if _, err := s.authz.RequireProject(userID, projectID, auth.PermMetadataUpdate); err != nil {
		return nil, err
	}

	conn, err := s.connRepo.FindByProject(projectID)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, pkgErrors.ErrNoConnection
		}
		return nil, err
	}

	target, err := s.connections.Target(conn)
	if err != nil {
		return nil, err
	}

	extracted, err := s.inspector.Tables(ctx, target)
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeUpstreamError, "read database schema failed", err)
	}

	existing, err := s.repo.ListByProject(projectID)
	if err != nil {
		return nil, err
	}

	tables := mergeTableMetadata(projectID, extracted, existing, time.Now())
	if err := s.repo.Replace(projectID, tables); err != nil {
		return nil, err
	}

	resp := &dto.ExtractMetadataResponse{Tables: len(tables)}
	for _, t := range tables {
		resp.Columns += len(t.Columns)
	}

	logger.Info("table metadata extracted",
		zap.Int64("project_id", projectID),
		zap.Int("tables", resp.Tables),
		zap.Int("columns", resp.Columns))

	return resp, nil
}

func (s *metadataService) Update(userID, projectID, tableID int64, req *dto.UpdateTableMetadataRequest) (*dto.TableMetadataResponse, error) {
	if _, err := s.authz.RequireProject(userID, projectID, auth.PermMetadataUpdate); err != nil {
		return nil, err
	}

	table, err := s.repo.FindByID(tableID)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, tableNotFound()
		}
		return nil, err
	}
	if table.ProjectID != projectID {
		return nil, tableNotFound()
	}

	if req.Description != nil {
		d := strings.TrimSpace(*req.Description)
		table.Description = lo.Ternary(d == "", nil, &d)
	}
	for name, description := range req.Columns {
		found := false
		for i := range table.Columns {
			if table.Columns[i].Name == name {
				table.Columns[i].Description = strings.TrimSpace(description)
				found = true
				break
			}
		}
		if !found {
			return nil, pkgErrors.New(pkgErrors.CodeValidationError, "unknown column "+name)
		}
	}

	if err := s.repo.Update(table); err != nil {
		return nil, err
	}

	return toTableMetadataResponse(table), nil
}

// mergeTableMetadata converts extracted tables, carrying over descriptions by qualified name
func mergeTableMetadata(projectID int64, extracted []dbinspect.Table, existing []*model.TableMetadata, now time.Time) []*model.TableMetadata {
	previous := lo.KeyBy(existing, func(t *model.TableMetadata) string {
		return t.QualifiedName()
	})

	tables := make([]*model.TableMetadata, 0, len(extracted))
	for _, et := range extracted {
		table := &model.TableMetadata{
			ProjectID:   projectID,
			SchemaName:  et.Schema,
			Name:        et.Name,
			ExtractedAt: now,
		}

		var oldColumns map[string]model.ColumnMetadata
		if old, ok := previous[table.QualifiedName()]; ok {
			table.Description = old.Description
			oldColumns = lo.KeyBy(old.Columns, func(c model.ColumnMetadata) string { return c.Name })
		}

		columns := make([]model.ColumnMetadata, 0, len(et.Columns))
		for _, c := range et.Columns {
			columns = append(columns, model.ColumnMetadata{
				Name:         c.Name,
				Type:         c.Type,
				Nullable:     c.Nullable,
				IsPrimaryKey: c.PrimaryKey,
				IsForeignKey: c.ForeignKey,
				References:   c.References,
				Description:  oldColumns[c.Name].Description,
			})
		}
		table.Columns = columns
		tables = append(tables, table)
	}
	return tables
}

func tableNotFound() error {
	return pkgErrors.New(pkgErrors.CodeNotFound, "table metadata not found")
}

func toTableMetadataResponse(table *model.TableMetadata) *dto.TableMetadataResponse {
	return &dto.TableMetadataResponse{
		ID:          table.ID,
		ProjectID:   table.ProjectID,
		SchemaName:  table.SchemaName,
		TableName:   table.Name,
		Description: table.Description,
		Columns:     table.Columns,
		ExtractedAt: table.ExtractedAt,
	}
}
