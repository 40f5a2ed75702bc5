package depoports

import "context"

// Generator produces text for one pipeline stage. Implementations bind a
// concrete model and its sampling options; callers only supply prompts.
type Generator interface {
	Generate(ctx context.Context, system, user string) (string, error)
}
