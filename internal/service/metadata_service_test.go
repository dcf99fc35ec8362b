package service

import (
	"context"
	"testing"
	"time"

	"github.com/samber/lo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai2sql/internal/adapter/dbinspect"
	"ai2sql/internal/dto"
	"ai2sql/internal/model"
	"ai2sql/internal/pkg/auth"
	pkgErrors "ai2sql/pkg/errors"
)

var shopTables = []dbinspect.Table{
	{
		Schema: "public",
		Name:   "users",
		Columns: []dbinspect.Column{
			{Name: "id", Type: "bigint", PrimaryKey: true},
			{Name: "email", Type: "text"},
		},
	},
	{
		Schema: "public",
		Name:   "orders",
		Columns: []dbinspect.Column{
			{Name: "id", Type: "bigint", PrimaryKey: true},
			{Name: "user_id", Type: "bigint", ForeignKey: true, References: "public.users.id"},
			{Name: "amount", Type: "numeric", Nullable: true},
		},
	},
}

func TestMergeTableMetadata(t *testing.T) {
	desc := "registered customers"
	existing := []*model.TableMetadata{
		{
			SchemaName:  "public",
			Name:        "users",
			Description: &desc,
			Columns: []model.ColumnMetadata{
				{Name: "id", Type: "bigint", Description: "surrogate key"},
				{Name: "legacy", Type: "text", Description: "dropped column"},
			},
		},
		{SchemaName: "public", Name: "gone", Description: &desc},
	}
	now := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)

	merged := mergeTableMetadata(7, shopTables, existing, now)
	require.Len(t, merged, 2)

	users := merged[0]
	assert.Equal(t, int64(7), users.ProjectID)
	assert.Equal(t, "public.users", users.QualifiedName())
	assert.Equal(t, &desc, users.Description)
	assert.Equal(t, now, users.ExtractedAt)
	assert.Equal(t, []model.ColumnMetadata{
		{Name: "id", Type: "bigint", IsPrimaryKey: true, Description: "surrogate key"},
		{Name: "email", Type: "text"},
	}, []model.ColumnMetadata(users.Columns))

	orders := merged[1]
	assert.Nil(t, orders.Description)
	assert.Equal(t, "public.users.id", orders.Columns[1].References)
	assert.True(t, orders.Columns[1].IsForeignKey)
	assert.True(t, orders.Columns[2].Nullable)
}

func TestMetadataExtractAndUpdate(t *testing.T) {
	env := newTestEnv(t)
	ctx := context.Background()
	p := env.project(t, "Analytics")
	viewer := env.member(t, p.ID, "viewer@corp.io", auth.ProjectRoleViewer)
	editor := env.member(t, p.ID, "editor@corp.io", auth.ProjectRoleEditor)

	_, err := env.svc.Metadata.Extract(ctx, editor.ID, p.ID)
	assert.ErrorIs(t, err, pkgErrors.ErrNoConnection)

	createConnection(t, env, p.ID)
	env.inspector.tables = shopTables

	_, err = env.svc.Metadata.Extract(ctx, viewer.ID, p.ID)
	assert.ErrorIs(t, err, pkgErrors.ErrForbidden)

	result, err := env.svc.Metadata.Extract(ctx, editor.ID, p.ID)
	require.NoError(t, err)
	assert.Equal(t, &dto.ExtractMetadataResponse{Tables: 2, Columns: 5}, result)

	tables, err := env.svc.Metadata.List(viewer.ID, p.ID)
	require.NoError(t, err)
	require.Len(t, tables, 2)
	users, ok := lo.Find(tables, func(tm *dto.TableMetadataResponse) bool { return tm.TableName == "users" })
	require.True(t, ok)

	updated, err := env.svc.Metadata.Update(editor.ID, p.ID, users.ID, &dto.UpdateTableMetadataRequest{
		Description: lo.ToPtr(" customers "),
		Columns:     map[string]string{"email": "login, unique"},
	})
	require.NoError(t, err)
	assert.Equal(t, "customers", *updated.Description)
	assert.Equal(t, "login, unique", updated.Columns[1].Description)

	_, err = env.svc.Metadata.Update(editor.ID, p.ID, users.ID, &dto.UpdateTableMetadataRequest{
		Columns: map[string]string{"missing": "x"},
	})
	assert.Equal(t, pkgErrors.CodeValidationError, pkgErrors.CodeOf(err))

	_, err = env.svc.Metadata.Update(viewer.ID, p.ID, users.ID, &dto.UpdateTableMetadataRequest{Description: lo.ToPtr("x")})
	assert.ErrorIs(t, err, pkgErrors.ErrForbidden)

	// re-extraction keeps what was written by hand
	_, err = env.svc.Metadata.Extract(ctx, editor.ID, p.ID)
	require.NoError(t, err)
	tables, err = env.svc.Metadata.List(viewer.ID, p.ID)
	require.NoError(t, err)
	users, ok = lo.Find(tables, func(tm *dto.TableMetadataResponse) bool { return tm.TableName == "users" })
	require.True(t, ok)
	require.NotNil(t, users.Description)
	assert.Equal(t, "customers", *users.Description)
	assert.Equal(t, "login, unique", users.Columns[1].Description)

	other := env.project(t, "Billing")
	_, err = env.svc.Metadata.Update(env.root.ID, other.ID, users.ID, &dto.UpdateTableMetadataRequest{})
	assert.Equal(t, pkgErrors.CodeNotFound, pkgErrors.CodeOf(err))
}
