package service

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai2sql/internal/dto"
	"ai2sql/internal/pkg/auth"
	pkgErrors "ai2sql/pkg/errors"
)

func TestNotesArePrivate(t *testing.T) {
	env := newTestEnv(t)
	p := env.project(t, "Analytics")
	other := env.project(t, "Billing")
	alice := env.member(t, p.ID, "alice@corp.io", auth.ProjectRoleViewer)
	bob := env.member(t, p.ID, "bob@corp.io", auth.ProjectRoleAdmin)

	note, err := env.svc.Note.Create(alice.ID, p.ID, &dto.NoteRequest{Title: " Fiscal year ", Content: " starts in April "})
	require.NoError(t, err)
	assert.Equal(t, "Fiscal year", note.Title)
	assert.Equal(t, "starts in April", note.Content)

	notes, err := env.svc.Note.List(bob.ID, p.ID)
	require.NoError(t, err)
	assert.Empty(t, notes)

	_, err = env.svc.Note.Get(bob.ID, p.ID, note.ID)
	assert.Equal(t, pkgErrors.CodeNotFound, pkgErrors.CodeOf(err))
	_, err = env.svc.Note.Update(bob.ID, p.ID, note.ID, &dto.NoteRequest{Title: "x", Content: "y"})
	assert.Equal(t, pkgErrors.CodeNotFound, pkgErrors.CodeOf(err))
	err = env.svc.Note.Delete(bob.ID, p.ID, note.ID)
	assert.Equal(t, pkgErrors.CodeNotFound, pkgErrors.CodeOf(err))

	// the superuser sees the project but still not the note
	_, err = env.svc.Note.Get(env.root.ID, p.ID, note.ID)
	assert.Equal(t, pkgErrors.CodeNotFound, pkgErrors.CodeOf(err))

	// a note is bound to its project
	_, err = env.svc.Note.Get(env.root.ID, other.ID, note.ID)
	assert.Equal(t, pkgErrors.CodeNotFound, pkgErrors.CodeOf(err))

	updated, err := env.svc.Note.Update(alice.ID, p.ID, note.ID, &dto.NoteRequest{Title: "FY", Content: "April to March"})
	require.NoError(t, err)
	assert.Equal(t, "FY", updated.Title)

	notes, err = env.svc.Note.List(alice.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, notes, 1)
	assert.Equal(t, "April to March", notes[0].Content)

	require.NoError(t, env.svc.Note.Delete(alice.ID, p.ID, note.ID))
	_, err = env.svc.Note.Get(alice.ID, p.ID, note.ID)
	assert.Equal(t, pkgErrors.CodeNotFound, pkgErrors.CodeOf(err))
}

func TestNoteValidation(t *testing.T) {
	env := newTestEnv(t)
	p := env.project(t, "Analytics")

	_, err := env.svc.Note.Create(env.root.ID, p.ID, &dto.NoteRequest{Title: "  ", Content: "body"})
	assert.Equal(t, pkgErrors.CodeValidationError, pkgErrors.CodeOf(err))

	outsider := env.user(t, "x@corp.io", auth.GlobalRoleUser)
	_, err = env.svc.Note.Create(outsider.ID, p.ID, &dto.NoteRequest{Title: "t", Content: "c"})
	assert.ErrorIs(t, err, pkgErrors.ErrProjectAccessDenied)
}
