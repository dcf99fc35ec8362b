package service

import (
	"errors"

	"github.com/go-playground/validator/v10"

	"ai2sql/internal/dto"
	"ai2sql/internal/model"
	"ai2sql/internal/repository"
	pkgErrors "ai2sql/pkg/errors"
	"ai2sql/pkg/utils"
)

type SettingsService interface {
	Get(userID int64) (*dto.AppSettingsResponse, error)
	Update(userID int64, req *dto.UpdateAppSettingsRequest) (*dto.AppSettingsResponse, error)
	// Effective returns the stored settings or the defaults
	Effective(userID int64) (*model.AppSettings, error)
}

// settingsRules is checked after merging a partial update
type settingsRules struct {
	RagExamplesCount       int     `validate:"min=1,max=10"`
	RagSimilarityThreshold float64 `validate:"min=0,max=1"`
}

type settingsService struct {
	repo     repository.SettingsRepository
	validate *validator.Validate
}

func NewSettingsService(repo repository.SettingsRepository) SettingsService {
	return &settingsService{
		repo:     repo,
		validate: validator.New(),
	}
}

func (s *settingsService) Effective(userID int64) (*model.AppSettings, error) {
	settings, err := s.repo.FindByUser(userID)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return model.DefaultAppSettings(userID), nil
		}
		return nil, err
	}
	return settings, nil
}

func (s *settingsService) Get(userID int64) (*dto.AppSettingsResponse, error) {
	settings, err := s.Effective(userID)
	if err != nil {
		return nil, err
	}
	return toSettingsResponse(settings), nil
}

func (s *settingsService) Update(userID int64, req *dto.UpdateAppSettingsRequest) (*dto.AppSettingsResponse, error) {
	settings, err := s.Effective(userID)
	if err != nil {
		return nil, err
	}

	if req.RagExamplesCount != nil {
		settings.RagExamplesCount = *req.RagExamplesCount
	}
	if req.DebugMode != nil {
		settings.DebugMode = *req.DebugMode
	}
	if req.RagSimilarityThreshold != nil {
		settings.RagSimilarityThreshold = *req.RagSimilarityThreshold
	}

	rules := settingsRules{
		RagExamplesCount:       settings.RagExamplesCount,
		RagSimilarityThreshold: settings.RagSimilarityThreshold,
	}
	if err := s.validate.Struct(rules); err != nil {
		return nil, pkgErrors.Wrap(pkgErrors.CodeValidationError, utils.FormatValidationError(err), err)
	}

	if err := s.repo.Save(settings); err != nil {
		return nil, err
	}

	return toSettingsResponse(settings), nil
}

func toSettingsResponse(settings *model.AppSettings) *dto.AppSettingsResponse {
	return &dto.AppSettingsResponse{
		RagExamplesCount:       settings.RagExamplesCount,
		DebugMode:              settings.DebugMode,
		RagSimilarityThreshold: settings.RagSimilarityThreshold,
	}
}
