package service

import (
	"errors"
	"strings"
	"unicode/utf8"

	"github.com/samber/lo"

	"ai2sql/internal/dto"
	"ai2sql/internal/model"
	"ai2sql/internal/pkg/auth"
	"ai2sql/internal/repository"
	pkgErrors "ai2sql/pkg/errors"
)

const (
	noteTitleMaxLen   = 200
	noteContentMaxLen = 10000
)

// NoteService manages notes private to their author
type NoteService interface {
	List(userID, projectID int64) ([]*dto.NoteResponse, error)
	Get(userID, projectID, noteID int64) (*dto.NoteResponse, error)
	Create(userID, projectID int64, req *dto.NoteRequest) (*dto.NoteResponse, error)
	Update(userID, projectID, noteID int64, req *dto.NoteRequest) (*dto.NoteResponse, error)
	Delete(userID, projectID, noteID int64) error
}

type noteService struct {
	authz AuthorizationService
	repo  repository.NoteRepository
}

func NewNoteService(authz AuthorizationService, repo repository.NoteRepository) NoteService {
	return &noteService{
		authz: authz,
		repo:  repo,
	}
}

func (s *noteService) List(userID, projectID int64) ([]*dto.NoteResponse, error) {
	if _, err := s.authz.RequireProject(userID, projectID, auth.PermNoteView); err != nil {
		return nil, err
	}

	notes, err := s.repo.ListByOwner(projectID, userID)
	if err != nil {
		return nil, err
	}

	return lo.Map(notes, func(n *model.Note, _ int) *dto.NoteResponse {
		return toNoteResponse(n)
	}), nil
}

func (s *noteService) Get(userID, projectID, noteID int64) (*dto.NoteResponse, error) {
	if _, err := s.authz.RequireProject(userID, projectID, auth.PermNoteView); err != nil {
		return nil, err
	}

	note, err := s.owned(userID, projectID, noteID)
	if err != nil {
		return nil, err
	}
	return toNoteResponse(note), nil
}

func (s *noteService) Create(userID, projectID int64, req *dto.NoteRequest) (*dto.NoteResponse, error) {
	if _, err := s.authz.RequireProject(userID, projectID, auth.PermNoteCreate); err != nil {
		return nil, err
	}

	title, content, err := normalizeNote(req)
	if err != nil {
		return nil, err
	}

	note := &model.Note{
		ProjectID: projectID,
		UserID:    userID,
		Title:     title,
		Content:   content,
	}
	if err := s.repo.Create(note); err != nil {
		return nil, err
	}

	return toNoteResponse(note), nil
}

func (s *noteService) Update(userID, projectID, noteID int64, req *dto.NoteRequest) (*dto.NoteResponse, error) {
	if _, err := s.authz.RequireProject(userID, projectID, auth.PermNoteUpdate); err != nil {
		return nil, err
	}

	note, err := s.owned(userID, projectID, noteID)
	if err != nil {
		return nil, err
	}

	title, content, err := normalizeNote(req)
	if err != nil {
		return nil, err
	}

	note.Title = title
	note.Content = content
	if err := s.repo.Update(note); err != nil {
		return nil, err
	}

	return toNoteResponse(note), nil
}

func (s *noteService) Delete(userID, projectID, noteID int64) error {
	if _, err := s.authz.RequireProject(userID, projectID, auth.PermNoteDelete); err != nil {
		return err
	}

	if _, err := s.owned(userID, projectID, noteID); err != nil {
		return err
	}
	return s.repo.Delete(noteID)
}

// owned hides other users' notes behind a not found
func (s *noteService) owned(userID, projectID, noteID int64) (*model.Note, error) {
	note, err := s.repo.FindByID(noteID)
	if err != nil {
		if errors.Is(err, pkgErrors.ErrRecordNotFound) {
			return nil, noteNotFound()
		}
		return nil, err
	}
	if note.ProjectID != projectID || note.UserID != userID {
		return nil, noteNotFound()
	}
	return note, nil
}

func normalizeNote(req *dto.NoteRequest) (string, string, error) {
	title := strings.TrimSpace(req.Title)
	content := strings.TrimSpace(req.Content)
	if title == "" || content == "" {
		return "", "", pkgErrors.New(pkgErrors.CodeValidationError, "title and content are required")
	}
	if utf8.RuneCountInString(title) > noteTitleMaxLen {
		return "", "", pkgErrors.New(pkgErrors.CodeValidationError, "title must be at most 200 characters")
	}
	if utf8.RuneCountInString(content) > noteContentMaxLen {
		return "", "", pkgErrors.New(pkgErrors.CodeValidationError, "content must be at most 10000 characters")
	}
	return title, content, nil
}

func noteNotFound() error {
	return pkgErrors.New(pkgErrors.CodeNotFound, "note not found")
}

func toNoteResponse(note *model.Note) *dto.NoteResponse {
	return &dto.NoteResponse{
		ID:        note.ID,
		ProjectID: note.ProjectID,
		Title:     note.Title,
		Content:   note.Content,
		CreatedAt: note.CreatedAt,
		UpdatedAt: note.UpdatedAt,
	}
}
