// Package suggest asks the generation service for an over-the-counter
// product and splits its reply into a product name and a description.
package suggest

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"smart-store-agent/internal/llm"
)

// ErrService wraps every failure of the generation service.
var ErrService = errors.New("generation service failed")

const (
	promptTemplate = `A customer says: "%s". Suggest one over-the-counter product or medicine and explain why it's helpful.`
	productLabel   = "Suggested Product:"
)

// Prompt builds the fixed prompt for a complaint.
func Prompt(problem string) string {
	return fmt.Sprintf(promptTemplate, problem)
}

type Generator struct {
	client llm.Client
}

func NewGenerator(client llm.Client) *Generator {
	return &Generator{client: client}
}

// Suggest returns the raw reply of the generation service. There is no retry;
// deadlines come from ctx.
func (g *Generator) Suggest(ctx context.Context, problem string) (string, error) {
	resp, err := g.client.Generate(ctx, []llm.Message{{Role: llm.RoleUser, Content: Prompt(problem)}})
	if err != nil {
		return "", fmt.Errorf("%w: %w", ErrService, err)
	}
	return resp.Content, nil
}

// Parse treats the first line of reply as the product name, dropping the
// "Suggested Product:" label and surrounding spaces, asterisks and colons.
// The remaining lines form the description. Replies of another shape are
// not rejected; they just produce an odd product or an empty description.
func Parse(reply string) (product, description string) {
	lines := strings.Split(strings.ReplaceAll(reply, "\r\n", "\n"), "\n")
	product = strings.Trim(strings.ReplaceAll(lines[0], productLabel, ""), " *:")
	description = strings.TrimSpace(strings.Join(lines[1:], "\n"))
	return product, description
}
