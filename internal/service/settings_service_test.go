package service

import (
	"testing"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai2sql/internal/dto"
	"ai2sql/internal/model"
	pkgErrors "ai2sql/pkg/errors"
)

func TestSettings(t *testing.T) {
	env := newTestEnv(t)
	uid := env.root.ID

	got, err := env.svc.Settings.Get(uid)
	require.NoError(t, err)
	assert.Equal(t, &dto.AppSettingsResponse{
		RagExamplesCount:       model.DefaultRagExamplesCount,
		DebugMode:              model.DefaultDebugMode,
		RagSimilarityThreshold: model.DefaultRagSimilarityThreshold,
	}, got)

	got, err = env.svc.Settings.Update(uid, &dto.UpdateAppSettingsRequest{RagExamplesCount: lo.ToPtr(5)})
	require.NoError(t, err)
	assert.Equal(t, 5, got.RagExamplesCount)
	assert.True(t, got.DebugMode)

	got, err = env.svc.Settings.Update(uid, &dto.UpdateAppSettingsRequest{
		DebugMode:              lo.ToPtr(false),
		RagSimilarityThreshold: lo.ToPtr(0.75),
	})
	require.NoError(t, err)
	assert.Equal(t, &dto.AppSettingsResponse{RagExamplesCount: 5, DebugMode: false, RagSimilarityThreshold: 0.75}, got)

	var rows int64
	require.NoError(t, env.db.Model(&model.AppSettings{}).Where("user_id = ?", uid).Count(&rows).Error)
	assert.EqualValues(t, 1, rows)

	for _, req := range []*dto.UpdateAppSettingsRequest{
		{RagExamplesCount: lo.ToPtr(0)},
		{RagExamplesCount: lo.ToPtr(11)},
		{RagSimilarityThreshold: lo.ToPtr(1.5)},
		{RagSimilarityThreshold: lo.ToPtr(-0.1)},
	} {
		_, err := env.svc.Settings.Update(uid, req)
		assert.Equal(t, pkgErrors.CodeValidationError, pkgErrors.CodeOf(err))
	}

	got, err = env.svc.Settings.Get(uid)
	require.NoError(t, err)
	assert.Equal(t, 5, got.RagExamplesCount, "rejected updates are not stored")
	assert.Equal(t, 0.75, got.RagSimilarityThreshold)
}
