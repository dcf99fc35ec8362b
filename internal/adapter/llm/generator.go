package llm

import (
	"context"
	"fmt"
	"regexp"
	"strings"
)

// Generator turns a question plus project context into an answer with SQL
type Generator interface {
	Name() string
	Generate(ctx context.Context, req *Request) (*Result, error)
}

// Embedder maps text to a vector for example retrieval
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

type Turn struct {
	Role    string // user or assistant
	Content string
}

type Note struct {
	Title   string
	Content string
}

type Example struct {
	Question string
	SQL      string
	Score    float64
}

type Column struct {
	Name       string
	Type       string
	Nullable   bool
	PrimaryKey bool
	References string
	Comment    string
}

type Table struct {
	Name    string
	Comment string
	Columns []Column
}

// Request is everything the generator may use. History excludes Question.
type Request struct {
	Question string
	Dialect  string
	History  []Turn
	Notes    []Note
	Examples []Example
	Tables   []Table
}

type Result struct {
	Content string
	SQL     string
}

var sqlFence = regexp.MustCompile("(?s)```(?:sql|SQL)?\\s*\\n(.*?)```")

// ExtractSQL returns the first fenced code block of text, trimmed
func ExtractSQL(text string) string {
	m := sqlFence.FindStringSubmatch(text)
	if len(m) < 2 {
		return ""
	}
	return strings.TrimSpace(m[1])
}

// BuildContext renders schema, notes and examples as a prompt section
func BuildContext(req *Request) string {
	var b strings.Builder

	if req.Dialect != "" {
		fmt.Fprintf(&b, "Target SQL dialect: %s\n\n", req.Dialect)
	}

	if len(req.Tables) > 0 {
		b.WriteString("Database schema:\n")
		for _, t := range req.Tables {
			fmt.Fprintf(&b, "TABLE %s", t.Name)
			if t.Comment != "" {
				fmt.Fprintf(&b, " -- %s", t.Comment)
			}
			b.WriteString("\n")
			for _, c := range t.Columns {
				fmt.Fprintf(&b, "  %s %s", c.Name, c.Type)
				if c.PrimaryKey {
					b.WriteString(" PRIMARY KEY")
				}
				if !c.Nullable {
					b.WriteString(" NOT NULL")
				}
				if c.References != "" {
					fmt.Fprintf(&b, " REFERENCES %s", c.References)
				}
				if c.Comment != "" {
					fmt.Fprintf(&b, " -- %s", c.Comment)
				}
				b.WriteString("\n")
			}
		}
		b.WriteString("\n")
	}

	if len(req.Notes) > 0 {
		b.WriteString("Notes from the user:\n")
		for _, n := range req.Notes {
			fmt.Fprintf(&b, "- %s: %s\n", n.Title, n.Content)
		}
		b.WriteString("\n")
	}

	if len(req.Examples) > 0 {
		b.WriteString("Similar solved examples:\n")
		for _, e := range req.Examples {
			fmt.Fprintf(&b, "Q: %s\n```sql\n%s\n```\n", e.Question, e.SQL)
		}
		b.WriteString("\n")
	}

	return b.String()
}
