package llm

import "context"

const (
	StaticName = "static"

	staticContent = "Here is an SQL query based on your request:"
	staticSQL     = `SELECT u.id, u.name, u.email, COUNT(o.id) as order_count
FROM users u
LEFT JOIN orders o ON u.id = o.user_id
WHERE u.status = 'active'
GROUP BY u.id, u.name, u.email
ORDER BY order_count DESC;`
)

// StaticGenerator answers every question with the same canned query. It is the
// default when no model is configured.
type StaticGenerator struct{}

func NewStaticGenerator() *StaticGenerator {
	return &StaticGenerator{}
}

func (g *StaticGenerator) Name() string {
	return StaticName
}

func (g *StaticGenerator) Generate(ctx context.Context, _ *Request) (*Result, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return &Result{Content: staticContent, SQL: staticSQL}, nil
}
