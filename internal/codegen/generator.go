// Package codegen produces manim scene code for a concept, either through
// the completion provider or from the deterministic template set.
package codegen

import (
	"context"
	"errors"
	"fmt"
	"log"
	"regexp"
	"strings"

	"github.com/Suryansh777777/Mathmatika/internal/prompt"
)

// ErrNoCode is returned when neither the provider nor the template set can
// produce scene code for the concept.
var ErrNoCode = errors.New("no scene code produced")

// RepairMode selects the repair prompt variant.
type RepairMode string

const (
	RepairModeLint   RepairMode = "lint"
	RepairModeRender RepairMode = "render"
)

// CompletionClient is the provider surface the generator needs. Satisfied by
// client.OpenRouterClient.
type CompletionClient interface {
	ChatCompletion(ctx context.Context, system, user string) (string, error)
	IsConfigured() bool
}

// Generator turns refined concept prompts into scene code.
type Generator struct {
	client CompletionClient
}

func NewGenerator(client CompletionClient) *Generator {
	return &Generator{client: client}
}

const systemDirective = "You are a senior Manim expert. Generate only valid Python code for Manim. " +
	"Create a scene class named MainScene (or ThreeDScene when appropriate). " +
	"Use MathTex for any mathematical expressions. Do not include markdown."

var fencedCode = regexp.MustCompile("(?i)```(?:python)?\n([\\s\\S]*?)```")

// ExtractCode pulls Python source out of a provider response, preferring a
// fenced code block over the raw text.
func ExtractCode(text string) string {
	if m := fencedCode.FindStringSubmatch(text); m != nil {
		return strings.TrimSpace(m[1])
	}
	return strings.TrimSpace(text)
}

func buildScenePrompt(concept string) string {
	return fmt.Sprintf(`Create a detailed Manim animation to demonstrate and explain: %s

Create a Scene class named MainScene that follows these requirements:

1. Scene Setup:
   - For 3D concepts: Use ThreeDScene with appropriate camera angles
   - For 2D concepts: Use Scene with NumberPlane when relevant
   - Add title and clear mathematical labels

2. Mathematical Elements:
   - Use MathTex for equations with proper LaTeX syntax
   - Include step-by-step derivations when showing formulas
   - Add mathematical annotations and explanations

3. Visual Elements:
   - Create clear geometric shapes and diagrams
   - Use color coding to highlight important parts
   - Include coordinate axes when relevant

4. Animation Flow:
   - Break down complex concepts into simple steps
   - Use smooth transitions between steps
   - Add pauses (self.wait()) at key moments
   - Use transform animations to show changes

Only output valid Manim Python code without any additional text or markdown.`, concept)
}

func buildFallbackPrompt(concept string) string {
	return fmt.Sprintf("Write a short Manim scene class named MainScene that animates: %s. "+
		"Keep it simple: one scene, standard imports, MathTex for math. "+
		"Output only Python code.", concept)
}

func buildRepairPrompt(intent, code, diagnostics string, mode RepairMode) string {
	var failure string
	switch mode {
	case RepairModeLint:
		failure = "The code below failed static validation with these findings:"
	default:
		failure = "The code below failed to render. The renderer reported:"
	}
	return fmt.Sprintf(`The goal of this scene is: %s

%s

%s

Current code:
`+"```python\n%s\n```"+`

Fix the code so it runs with current Manim. Keep the scene class named MainScene.
Only output the corrected Python code without any additional text or markdown.`,
		intent, failure, diagnostics, code)
}

// Generate produces scene code for a concept. It returns the code and whether
// the provider produced it (false means a deterministic template or LaTeX
// scene was used).
func (g *Generator) Generate(ctx context.Context, concept string) (string, bool, error) {
	if g.client != nil && g.client.IsConfigured() {
		refined := prompt.Refine(concept)

		code, err := g.complete(ctx, buildScenePrompt(refined))
		if err == nil && code != "" {
			return code, true, nil
		}
		if err != nil {
			log.Printf("codegen: provider generation failed: %v", err)
		}

		// One retry with a simpler prompt before giving up on the provider.
		code, err = g.complete(ctx, buildFallbackPrompt(refined))
		if err == nil && code != "" {
			return code, true, nil
		}
		if err != nil {
			log.Printf("codegen: provider fallback failed: %v", err)
		}
	}

	if code := FromConcept(concept); code != "" {
		return code, false, nil
	}
	return "", false, ErrNoCode
}

// RepairCode asks the provider to fix failing scene code. Returns ErrNoCode
// when the provider is unavailable or returns nothing usable.
func (g *Generator) RepairCode(ctx context.Context, intent, code, diagnostics string, mode RepairMode) (string, error) {
	if g.client == nil || !g.client.IsConfigured() {
		return "", ErrNoCode
	}
	fixed, err := g.complete(ctx, buildRepairPrompt(intent, code, diagnostics, mode))
	if err != nil {
		return "", err
	}
	if fixed == "" {
		return "", ErrNoCode
	}
	return fixed, nil
}

func (g *Generator) complete(ctx context.Context, userPrompt string) (string, error) {
	raw, err := g.client.ChatCompletion(ctx, systemDirective, userPrompt)
	if err != nil {
		return "", err
	}
	return ExtractCode(raw), nil
}

// FromConcept is the deterministic generation path: a LaTeX scene for bare
// expressions, otherwise the best keyword-matching template.
func FromConcept(concept string) string {
	if IsLikelyLaTeX(concept) {
		return LaTeXSceneCode(concept)
	}
	return SelectTemplate(concept)
}
