package llm

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ai2sql/internal/pkg/config"
)

func TestExtractSQL(t *testing.T) {
	text := "Top customers:\n```sql\nSELECT *\nFROM customers;\n```\nDone."
	assert.Equal(t, "SELECT *\nFROM customers;", ExtractSQL(text))

	assert.Equal(t, "SELECT 1", ExtractSQL("```\nSELECT 1\n```"))
	assert.Empty(t, ExtractSQL("no code here"))
}

func TestStaticGenerator(t *testing.T) {
	g := NewStaticGenerator()

	res, err := g.Generate(context.Background(), &Request{Question: "who ordered most?"})
	require.NoError(t, err)
	assert.Equal(t, staticContent, res.Content)
	assert.Contains(t, res.SQL, "LEFT JOIN orders o ON u.id = o.user_id")
	assert.Equal(t, StaticName, g.Name())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = g.Generate(ctx, &Request{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestBuildContext(t *testing.T) {
	out := BuildContext(&Request{
		Dialect: "postgres",
		Tables: []Table{{
			Name:    "public.orders",
			Comment: "customer orders",
			Columns: []Column{
				{Name: "id", Type: "bigint", PrimaryKey: true},
				{Name: "user_id", Type: "bigint", References: "public.users.id", Nullable: true},
			},
		}},
		Notes:    []Note{{Title: "fiscal year", Content: "starts in April"}},
		Examples: []Example{{Question: "count users", SQL: "SELECT COUNT(*) FROM users"}},
	})

	assert.Contains(t, out, "Target SQL dialect: postgres")
	assert.Contains(t, out, "TABLE public.orders -- customer orders")
	assert.Contains(t, out, "  id bigint PRIMARY KEY NOT NULL")
	assert.Contains(t, out, "  user_id bigint REFERENCES public.users.id")
	assert.Contains(t, out, "- fiscal year: starts in April")
	assert.Contains(t, out, "Q: count users\n```sql\nSELECT COUNT(*) FROM users\n```")

	assert.Empty(t, BuildContext(&Request{}))
}

func TestNewProviderDefaultsToStatic(t *testing.T) {
	p, err := NewProvider(context.Background(), config.LLMConfig{Provider: "gemini"})
	require.NoError(t, err)
	assert.Equal(t, StaticName, p.Generator.Name())
	assert.Nil(t, p.Embedder)
	assert.NoError(t, p.Close())
}
