package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.uber.org/zap"

	"ai2sql/internal/adapter/dbinspect"
	"ai2sql/internal/adapter/notification"
	"ai2sql/internal/dto"
	"ai2sql/internal/model"
	"ai2sql/internal/pkg/auth"
	"ai2sql/internal/pkg/crypto"
	"ai2sql/internal/pkg/logger"
	"ai2sql/internal/repository"
	"ai2sql/pkg/constants"
	pkgErrors "ai2sql/pkg/errors"
)

const defaultConnectionPort = 5432

// ConnectionService manages the single target database of a project
type ConnectionService interface {
	Get(userID, projectID int64) (*dto.ConnectionResponse, error)
	Create(userID, projectID int64, req *dto.CreateConnectionRequest) (*dto.ConnectionResponse, error)
	Update(userID, projectID int64, req *dto.UpdateConnectionRequest) (*dto.ConnectionResponse, error)
	Delete(userID, projectID int64) error
	Test(ctx context.Context, userID, projectID int64) (*dto.ConnectionTestResponse, error)
	// CheckAll re-tests every stored connection, used by the scheduler
	CheckAll(ctx context.Context) error
	// Target decrypts conn for the inspector
	Target(conn *model.DatabaseConnection) (dbinspect.Target, error)
}

type connectionService struct {
	authz       AuthorizationService
	repo        repository.ConnectionRepository
	projectRepo repository.ProjectRepository
	inspector   dbinspect.Inspector
	notifier    notification.Notifier
	aesKey      string
}

func NewConnectionService(
	authz AuthorizationService,
	repo repository.ConnectionRepository,
	projectRepo repository.ProjectRepository,
	inspector dbinspect.Inspector,
	notifier notification.Notifier,
	aesKey string,
) ConnectionService {
	return &connectionService{
		authz:       authz,
		repo:        repo,
		projectRepo: projectRepo,
		inspector:   inspector,
		notifier:    notifier,
		aesKey:      aesKey,
	}
}

func (s *connectionService) Get(userID, projectID int64) (*dto.ConnectionResponse, error) {
	if _, err := s.authz.RequireProject(userID, projectID, auth.PermConnectionView); err != nil {
		return nil, err
	}
	conn, err := s.byProject(projectID)
	if err != nil {
		return nil, err
	}
	return toConnectionResponse(conn), nil
}

func (s *connectionService) Create(userID, projectID int64, req *dto.CreateConnectionRequest) (*dto.ConnectionResponse, error) {
	if _, err := s.authz.RequireProject(userID, projectID, auth.PermConnectionCreate); err != nil {
		return nil, err
	}

	if _, err := s.repo.FindByProject(projectID); err == nil {
		return nil, pkgErrors.New(pkgErrors.CodeConflict, "project already has a database connection")
	} else if !errors.Is(err, pkgErrors.ErrRecordNotFound) {
		return nil, err
	}

	conn := &model.DatabaseConnection{
		ProjectID:  projectID,
		Name:       strings.TrimSpace(req.Name),
		Driver:     req.Driver,
		Host:       strings.TrimSpace(req.Host),
		Port:       req.Port,
		Username:   strings.TrimSpace(req.Username),
		Database:   strings.TrimSpace(req.Database),
		SSL:        req.SSL,
		LastStatus: constants.ConnectionStatusUnknown,
	}
	if conn.Driver == "" {
		conn.Driver = constants.DriverPostgres
	}
	if conn.Port == 0 {
		conn.Port = defaultConnectionPort
	}
	if conn.Name == "" || conn.Host == "" || conn.Username == "" || conn.Database == "" {
		return nil, pkgErrors.New(pkgErrors.CodeValidationError, "name, host, username and database are required")
	}

	if req.Password != "" {
		sealed, err := crypto.EncryptSecret(s.aesKey, req.Password)
		if err != nil {
			return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "encrypt password failed", err)
		}
		conn.PasswordEncrypted = sealed
	}

	if err := s.repo.Create(conn); err != nil {
		if errors.Is(err, pkgErrors.ErrRecordExists) {
			return nil, pkgErrors.New(pkgErrors.CodeConflict, "project already has a database connection")
		}
		return nil, err
	}
	if err := s.projectRepo.SetConnection(projectID, &conn.ID); err != nil {
		return nil, err
	}

	return toConnectionResponse(conn), nil
}

func (s *connectionService) Update(userID, projectID int64, req *dto.UpdateConnectionRequest) (*dto.ConnectionResponse, error) {
	if _, err := s.authz.RequireProject(userID, projectID, auth.PermConnectionUpdate); err != nil {
		return nil, err
	}

	conn, err := s.byProject(projectID)
	if err != nil {
		return nil, err
	}

	if req.Name != nil {
		conn.Name = strings.TrimSpace(*req.Name)
	}
	if req.Driver != nil {
		conn.Driver = *req.Driver
	}
	if req.Host != nil {
		conn.Host = strings.TrimSpace(*req.Host)
	}
	if req.Port != nil {
		conn.Port = *req.Port
	}
	if req.Username != nil {
		conn.Username = strings.TrimSpace(*req.Username)
	}
	if req.Database != nil {
		conn.Database = strings.TrimSpace(*req.Database)
	}
	if req.SSL != nil {
		conn.SSL = *req.SSL
	}
	// an empty password keeps the stored one
	if req.Password != nil && *req.Password != "" {
		sealed, err := crypto.EncryptSecret(s.aesKey, *req.Password)
		if err != nil {
			return nil, pkgErrors.Wrap(pkgErrors.CodeInternalError, "encrypt password failed", err)
		}
		conn.PasswordEncrypted = sealed
	}
	if conn.Name == "" || conn.Host == "" || conn.Username == "" || conn.Database == "" {
		return nil, pkgErrors.New(pkgErrors.CodeValidationError, "name, host, username and database are required")
	}

	conn.LastStatus = constants.ConnectionStatusUnknown
	conn.LastError = nil
	if err := s.repo.Update(conn); err != nil {
		return nil, err
	}

	return toConnectionResponse(conn), nil
}

func (s *connectionService) Delete(userID, projectID int64) error {
	if _, err := s.authz.RequireProject(userID, projectID, auth.PermConnectionDelete); err != nil {
		return err
	}
	conn, err := s.byProject(projectID)
	if err != nil {
		return err
	}
	return s.repo.Delete(conn.ID)
}

func (s *connectionService) Test(ctx context.Context, userID, projectID int64) (*dto.ConnectionTestResponse, error) {
	if _, err := s.authz.RequireProject(userID, projectID, auth.PermConnectionTest); err != nil {
		return nil, err
	}
	conn, err := s.byProject(projectID)
	if err != nil {
		return nil, err
	}
	return s.check(ctx, conn)
}

func (s *connectionService) CheckAll(ctx context.Context) error {
	conns, err := s.repo.ListAll()
	if err != nil {
		return err
	}

	failed := 0
	for _, conn := range conns {
		if ctx.Err() != nil {
			return ctx.Err()
		}
		previous := conn.LastStatus
		result, err := s.check(ctx, conn)
		if err != nil {
			logger.Error("check connection failed", zap.Int64("connection_id", conn.ID), zap.Error(err))
			continue
		}
		if result.Success {
			continue
		}
		failed++
		if previous != constants.ConnectionStatusFailed {
			s.notifyUnhealthy(conn, result.Message)
		}
	}

	logger.Info("connection health check finished", zap.Int("total", len(conns)), zap.Int("failed", failed))
	return nil
}

// check pings conn and records the outcome; a failed ping is a result, not an error
func (s *connectionService) check(ctx context.Context, conn *model.DatabaseConnection) (*dto.ConnectionTestResponse, error) {
	target, err := s.Target(conn)
	if err != nil {
		return nil, err
	}

	start := time.Now()
	pingErr := s.inspector.Ping(ctx, target)
	checkedAt := time.Now()

	resp := &dto.ConnectionTestResponse{
		Success:   pingErr == nil,
		Message:   "connection succeeded",
		LatencyMS: checkedAt.Sub(start).Milliseconds(),
		CheckedAt: checkedAt,
	}

	status := constants.ConnectionStatusOK
	var lastError *string
	if pingErr != nil {
		status = constants.ConnectionStatusFailed
		msg := pingErr.Error()
		lastError = &msg
		resp.Message = msg
	}

	if err := s.repo.UpdateStatus(conn.ID, status, lastError, checkedAt); err != nil {
		return nil, err
	}
	conn.LastStatus = status
	conn.LastError = lastError
	conn.LastCheckedAt = &checkedAt

	return resp, nil
}

func (s *connectionService) Target(conn *model.DatabaseConnection) (dbinspect.Target, error) {
	var password string
	if conn.PasswordEncrypted != "" {
		var err error
		password, err = crypto.DecryptSecret(s.aesKey, conn.PasswordEncrypted)
		if err != nil {
			return dbinspect.Target{}, pkgErrors.Wrap(pkgErrors.CodeInternalError, "decrypt password failed", err)
		}
	}
	return dbinspect.Target{
		Driver:   conn.Driver,
		Host:     conn.Host,
		Port:     conn.Port,
		Username: conn.Username,
		Password: password,
		Database: conn.Database,
		SSL:      conn.SSL,
	}, nil
}

func (s *connectionService) byProject(projectID int64) (*model.DatabaseConnection, error) {
	conn, err := s.repo.FindByProject(projectID)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, pkgErrors.ErrNoConnection
		}
		return nil, err
	}
	return conn, nil
}

func (s *connectionService) notifyUnhealthy(conn *model.DatabaseConnection, reason string) {
	event := &notification.ProjectEvent{
		Type:      notification.NotifyConnectionUnhealthy,
		ProjectID: conn.ProjectID,
		Actor:     "scheduler",
		Subject:   conn.Name + ": " + reason,
	}
	if project, err := s.projectRepo.FindByID(conn.ProjectID); err == nil {
		event.ProjectName = project.Name
	}
	notifyProjectEvent(s.notifier, event)
}

func toConnectionResponse(conn *model.DatabaseConnection) *dto.ConnectionResponse {
	return &dto.ConnectionResponse{
		ID:            conn.ID,
		ProjectID:     conn.ProjectID,
		Name:          conn.Name,
		Driver:        conn.Driver,
		Host:          conn.Host,
		Port:          conn.Port,
		Username:      conn.Username,
		Database:      conn.Database,
		SSL:           conn.SSL,
		HasPassword:   conn.PasswordEncrypted != "",
		LastStatus:    conn.LastStatus,
		LastError:     conn.LastError,
		LastCheckedAt: conn.LastCheckedAt,
		CreatedAt:     conn.CreatedAt,
		UpdatedAt:     conn.UpdatedAt,
	}
}
