package service

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"ai2sql/internal/adapter/llm"
	"ai2sql/internal/dto"
	"ai2sql/internal/model"
	"ai2sql/internal/pkg/auth"
	"ai2sql/internal/pkg/logger"
	"ai2sql/internal/pkg/similarity"
	"ai2sql/internal/repository"
	"ai2sql/pkg/constants"
	pkgErrors "ai2sql/pkg/errors"
)

const (
	exampleQuestionMaxLen = 1000
	exampleSQLMaxLen      = 10000

	RetrievalEmbedding = "embedding"
	RetrievalLexical   = "lexical"
)

var exampleCSVHeader = []string{"natural_language_query", "sql_query"}

type SQLExampleService interface {
	List(userID, projectID int64, query *dto.SQLExampleListQuery) ([]*dto.SQLExampleResponse, int64, error)
	Get(userID, projectID, exampleID int64) (*dto.SQLExampleResponse, error)
	Create(ctx context.Context, userID, projectID int64, req *dto.SQLExampleRequest) (*dto.SQLExampleResponse, error)
	Update(ctx context.Context, userID, projectID, exampleID int64, req *dto.SQLExampleRequest) (*dto.SQLExampleResponse, error)
	Delete(userID, projectID, exampleID int64) error
	// Search ranks the project's examples against query with the caller's settings
	Search(ctx context.Context, userID, projectID int64, query string) ([]*dto.ScoredExampleResponse, error)
	Export(userID, projectID int64, format string, w io.Writer) error
	Import(ctx context.Context, userID, projectID int64, format string, r io.Reader) (*dto.SQLExampleImportResponse, error)
	// Retrieve is Search without the access check, for callers that already hold access
	Retrieve(ctx context.Context, projectID int64, query string, settings *model.AppSettings) ([]similarity.Scored[*model.SQLExample], string, error)
}

type sqlExampleService struct {
	authz    AuthorizationService
	repo     repository.SQLExampleRepository
	settings SettingsService
	embedder llm.Embedder
}

// NewSQLExampleService wires the library; embedder may be nil
func NewSQLExampleService(
	authz AuthorizationService,
	repo repository.SQLExampleRepository,
	settings SettingsService,
	embedder llm.Embedder,
) SQLExampleService {
	return &sqlExampleService{
		authz:    authz,
		repo:     repo,
		settings: settings,
		embedder: embedder,
	}
}

func (s *sqlExampleService) List(userID, projectID int64, query *dto.SQLExampleListQuery) ([]*dto.SQLExampleResponse, int64, error) {
	if _, err := s.authz.RequireProject(userID, projectID, auth.PermExampleView); err != nil {
		return nil, 0, err
	}

	examples, total, err := s.repo.List(projectID, query.GetOffset(), query.GetPageSize(), strings.TrimSpace(query.Keyword))
	if err != nil {
		return nil, 0, err
	}

	return lo.Map(examples, func(e *model.SQLExample, _ int) *dto.SQLExampleResponse {
		return toSQLExampleResponse(e)
	}), total, nil
}

func (s *sqlExampleService) Get(userID, projectID, exampleID int64) (*dto.SQLExampleResponse, error) {
	if _, err := s.authz.RequireProject(userID, projectID, auth.PermExampleView); err != nil {
		return nil, err
	}
	example, err := s.find(projectID, exampleID)
	if err != nil {
		return nil, err
	}
	return toSQLExampleResponse(example), nil
}

func (s *sqlExampleService) Create(ctx context.Context, userID, projectID int64, req *dto.SQLExampleRequest) (*dto.SQLExampleResponse, error) {
	if _, err := s.authz.RequireProject(userID, projectID, auth.PermExampleCreate); err != nil {
		return nil, err
	}

	question, sql, err := normalizeExample(req)
	if err != nil {
		return nil, err
	}

	example := &model.SQLExample{
		ProjectID:            projectID,
		UserID:               userID,
		NaturalLanguageQuery: question,
		SQLQuery:             sql,
		Embedding:            s.embed(ctx, question),
	}
	if err := s.repo.Create(example); err != nil {
		return nil, err
	}

	return toSQLExampleResponse(example), nil
}

func (s *sqlExampleService) Update(ctx context.Context, userID, projectID, exampleID int64, req *dto.SQLExampleRequest) (*dto.SQLExampleResponse, error) {
	if _, err := s.authz.RequireProject(userID, projectID, auth.PermExampleUpdate); err != nil {
		return nil, err
	}

	example, err := s.find(projectID, exampleID)
	if err != nil {
		return nil, err
	}

	question, sql, err := normalizeExample(req)
	if err != nil {
		return nil, err
	}

	if question != example.NaturalLanguageQuery {
		example.Embedding = s.embed(ctx, question)
	}
	example.NaturalLanguageQuery = question
	example.SQLQuery = sql

	if err := s.repo.Update(example); err != nil {
		return nil, err
	}

	return toSQLExampleResponse(example), nil
}

func (s *sqlExampleService) Delete(userID, projectID, exampleID int64) error {
	if _, err := s.authz.RequireProject(userID, projectID, auth.PermExampleDelete); err != nil {
		return err
	}
	if _, err := s.find(projectID, exampleID); err != nil {
		return err
	}
	return s.repo.Delete(exampleID)
}

func (s *sqlExampleService) Search(ctx context.Context, userID, projectID int64, query string) ([]*dto.ScoredExampleResponse, error) {
	if _, err := s.authz.RequireProject(userID, projectID, auth.PermExampleView); err != nil {
		return nil, err
	}
	if strings.TrimSpace(query) == "" {
		return nil, pkgErrors.New(pkgErrors.CodeValidationError, "query is required")
	}

	settings, err := s.settings.Effective(userID)
	if err != nil {
		return nil, err
	}

	ranked, _, err := s.Retrieve(ctx, projectID, query, settings)
	if err != nil {
		return nil, err
	}
	return toScoredExamples(ranked), nil
}

func (s *sqlExampleService) Retrieve(ctx context.Context, projectID int64, query string, settings *model.AppSettings) ([]similarity.Scored[*model.SQLExample], string, error) {
	examples, err := s.repo.ListAll(projectID)
	if err != nil {
		return nil, "", err
	}

	method := RetrievalLexical
	queryVector := s.embed(ctx, query)
	if len(queryVector) > 0 {
		method = RetrievalEmbedding
	}

	score := func(e *model.SQLExample) float64 {
		if len(queryVector) > 0 && len(e.Embedding) > 0 {
			return similarity.Vectors(queryVector, e.Embedding)
		}
		return similarity.Text(query, e.NaturalLanguageQuery)
	}

	ranked := similarity.Rank(examples, score, settings.RagSimilarityThreshold, settings.RagExamplesCount)
	return ranked, method, nil
}

func (s *sqlExampleService) Export(userID, projectID int64, format string, w io.Writer) error {
	if _, err := s.authz.RequireProject(userID, projectID, auth.PermExampleView); err != nil {
		return err
	}

	examples, err := s.repo.ListAll(projectID)
	if err != nil {
		return err
	}

	rows := lo.Map(examples, func(e *model.SQLExample, _ int) dto.SQLExampleRequest {
		return dto.SQLExampleRequest{NaturalLanguageQuery: e.NaturalLanguageQuery, SQLQuery: e.SQLQuery}
	})

	switch ExampleFormat(format) {
	case constants.FormatYAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(rows); err != nil {
			return pkgErrors.Wrap(pkgErrors.CodeInternalError, "encode yaml failed", err)
		}
		return enc.Close()
	default:
		cw := csv.NewWriter(w)
		if err := cw.Write(exampleCSVHeader); err != nil {
			return pkgErrors.Wrap(pkgErrors.CodeInternalError, "write csv failed", err)
		}
		for _, row := range rows {
			if err := cw.Write([]string{row.NaturalLanguageQuery, row.SQLQuery}); err != nil {
				return pkgErrors.Wrap(pkgErrors.CodeInternalError, "write csv failed", err)
			}
		}
		cw.Flush()
		return cw.Error()
	}
}

func (s *sqlExampleService) Import(ctx context.Context, userID, projectID int64, format string, r io.Reader) (*dto.SQLExampleImportResponse, error) {
	if _, err := s.authz.RequireProject(userID, projectID, auth.PermExampleCreate); err != nil {
		return nil, err
	}

	var rows []dto.SQLExampleRequest
	var err error
	switch ExampleFormat(format) {
	case constants.FormatYAML:
		rows, err = readExampleYAML(r)
	default:
		rows, err = readExampleCSV(r)
	}
	if err != nil {
		return nil, err
	}

	result := &dto.SQLExampleImportResponse{}
	examples := make([]*model.SQLExample, 0, len(rows))
	for i := range rows {
		question, sql, err := normalizeExample(&rows[i])
		if err != nil {
			result.Skipped++
			continue
		}
		examples = append(examples, &model.SQLExample{
			ProjectID:            projectID,
			UserID:               userID,
			NaturalLanguageQuery: question,
			SQLQuery:             sql,
			Embedding:            s.embed(ctx, question),
		})
	}

	if err := s.repo.BatchCreate(examples); err != nil {
		return nil, err
	}
	result.Imported = len(examples)

	logger.Info("sql examples imported",
		zap.Int64("project_id", projectID),
		zap.Int("imported", result.Imported),
		zap.Int("skipped", result.Skipped))

	return result, nil
}

func (s *sqlExampleService) find(projectID, exampleID int64) (*model.SQLExample, error) {
	example, err := s.repo.FindByID(exampleID)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, exampleNotFound()
		}
		return nil, err
	}
	if example.ProjectID != projectID {
		return nil, exampleNotFound()
	}
	return example, nil
}

// embed returns nil without an embedder or on failure, retrieval then falls back to text
func (s *sqlExampleService) embed(ctx context.Context, text string) []float32 {
	if s.embedder == nil {
		return nil
	}
	vector, err := s.embedder.Embed(ctx, text)
	if err != nil {
		logger.Warn("embed text failed", zap.Error(err))
		return nil
	}
	return vector
}

func readExampleCSV(r io.Reader) ([]dto.SQLExampleRequest, error) {
	cr := csv.NewReader(r)
	cr.FieldsPerRecord = -1
	cr.LazyQuotes = true

	records, err := cr.ReadAll()
	if err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeBadRequest, "invalid csv file", err)
	}

	rows := make([]dto.SQLExampleRequest, 0, len(records))
	for i, rec := range records {
		if i == 0 && isExampleHeader(rec) {
			continue
		}
		row := dto.SQLExampleRequest{}
		if len(rec) > 0 {
			row.NaturalLanguageQuery = rec[0]
		}
		if len(rec) > 1 {
			row.SQLQuery = rec[1]
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func readExampleYAML(r io.Reader) ([]dto.SQLExampleRequest, error) {
	var rows []dto.SQLExampleRequest
	if err := yaml.NewDecoder(r).Decode(&rows); err != nil && !errors.Is(err, io.EOF) {
		return nil, pkgErrors.Wrap(pkgErrors.CodeBadRequest, "invalid yaml file", err)
	}
	return rows, nil
}

func isExampleHeader(rec []string) bool {
	if len(rec) < 2 {
		return false
	}
	return strings.EqualFold(strings.TrimSpace(strings.TrimPrefix(rec[0], "\ufeff")), exampleCSVHeader[0]) &&
		strings.EqualFold(strings.TrimSpace(rec[1]), exampleCSVHeader[1])
}

// ExampleFormat maps a requested format to csv or yaml, csv by default
func ExampleFormat(format string) string {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case constants.FormatYAML, "yml":
		return constants.FormatYAML
	default:
		return constants.FormatCSV
	}
}

func normalizeExample(req *dto.SQLExampleRequest) (string, string, error) {
	question := strings.TrimSpace(req.NaturalLanguageQuery)
	sql := strings.TrimSpace(req.SQLQuery)
	if question == "" || sql == "" {
		return "", "", pkgErrors.New(pkgErrors.CodeValidationError, "natural language query and sql query are required")
	}
	if utf8.RuneCountInString(question) > exampleQuestionMaxLen {
		return "", "", pkgErrors.New(pkgErrors.CodeValidationError,
			fmt.Sprintf("natural language query must be at most %d characters", exampleQuestionMaxLen))
	}
	if utf8.RuneCountInString(sql) > exampleSQLMaxLen {
		return "", "", pkgErrors.New(pkgErrors.CodeValidationError,
			fmt.Sprintf("sql query must be at most %d characters", exampleSQLMaxLen))
	}
	return question, sql, nil
}

func exampleNotFound() error {
	return pkgErrors.New(pkgErrors.CodeNotFound, "sql example not found")
}

func toSQLExampleResponse(example *model.SQLExample) *dto.SQLExampleResponse {
	return &dto.SQLExampleResponse{
		ID:                   example.ID,
		ProjectID:            example.ProjectID,
		UserID:               example.UserID,
		NaturalLanguageQuery: example.NaturalLanguageQuery,
		SQLQuery:             example.SQLQuery,
		CreatedAt:            example.CreatedAt,
		UpdatedAt:            example.UpdatedAt,
	}
}

func toScoredExamples(ranked []similarity.Scored[*model.SQLExample]) []*dto.ScoredExampleResponse {
	return lo.Map(ranked, func(r similarity.Scored[*model.SQLExample], _ int) *dto.ScoredExampleResponse {
		return &dto.ScoredExampleResponse{
			SQLExampleResponse: *toSQLExampleResponse(r.Item),
			Score:              r.Score,
		}
	})
}
