// Package prompt rewrites raw concept requests into directive rendering
// instructions. Everything here is deterministic: no I/O, no failures.
package prompt

import (
	"fmt"
	"regexp"
	"strings"
	"unicode"
)

// DefaultInstruction is returned for empty input.
const DefaultInstruction = "Show a simple title that says 'Welcome to Manim' with smooth fade-in animation."

// colorHex maps named colors to fixed hex codes so downstream scenes stay
// visually consistent across generations.
var colorHex = map[string]string{
	"red":     "#e07a5f",
	"blue":    "#525893",
	"green":   "#87c2a5",
	"black":   "#343434",
	"white":   "#ffffff",
	"yellow":  "#f4d35e",
	"purple":  "#9b5de5",
	"orange":  "#f8961e",
	"brown":   "#a0522d",
	"pink":    "#ff69b4",
	"gray":    "#808080",
	"grey":    "#808080",
	"cyan":    "#00ffff",
	"magenta": "#ff00ff",
}

var colorPattern = regexp.MustCompile(`(?i)\b(red|blue|green|black|white|yellow|purple|orange|brown|pink|gray|grey|cyan|magenta)\b`)

// CanonicalizeColors replaces named colors with their hex codes.
func CanonicalizeColors(s string) string {
	return colorPattern.ReplaceAllStringFunc(s, func(m string) string {
		if hex, ok := colorHex[strings.ToLower(m)]; ok {
			return hex
		}
		return m
	})
}

var transformationIndicators = []string{
	"transform", "morph", "change into", "becomes", "turns into",
	"point to", "circle to", "square to", "convert", "→", "->",
	"into a", "to a", "evolve", "transition",
}

func isTransformationRequest(s string) bool {
	lower := strings.ToLower(s)
	for _, indicator := range transformationIndicators {
		if strings.Contains(lower, indicator) {
			return true
		}
	}
	return false
}

var transformationSeparators = []*regexp.Regexp{
	regexp.MustCompile(`\s+to\s+`),
	regexp.MustCompile(`\s*→\s*`),
	regexp.MustCompile(`\s*->\s*`),
	regexp.MustCompile(`\s+into\s+`),
	regexp.MustCompile(`\s+becomes\s+`),
	regexp.MustCompile(`\s+transforms?\s+to\s+`),
	regexp.MustCompile(`\s+morphs?\s+to\s+`),
	regexp.MustCompile(`\s+changes?\s+into\s+`),
}

var (
	fillerWords  = regexp.MustCompile(`\b(a|an|the|from|change|transform|morph)\b`)
	trailingPart = regexp.MustCompile(`\b(transformation|into|to)\b.*`)
)

// extractTransformationSequence pulls the ordered entity names out of a
// transformation request ("circle to square" -> ["circle", "square"]).
func extractTransformationSequence(s string) []string {
	lower := strings.ToLower(s)

	for _, sep := range transformationSeparators {
		parts := sep.Split(lower, -1)
		if len(parts) < 2 {
			continue
		}

		var sequence []string
		for _, part := range parts {
			cleaned := fillerWords.ReplaceAllString(strings.TrimSpace(part), "")
			cleaned = strings.TrimSpace(trailingPart.ReplaceAllString(cleaned, ""))

			for _, word := range strings.Fields(cleaned) {
				if len(word) > 1 && isAlpha(word) {
					sequence = append(sequence, word)
					break
				}
			}
		}

		if len(sequence) > 1 {
			return sequence
		}
	}

	return nil
}

func isAlpha(s string) bool {
	for _, r := range s {
		if !unicode.IsLetter(r) {
			return false
		}
	}
	return s != ""
}

type keywordRule struct {
	keyword     string
	enhancement string
}

// Ordered tables: first match wins, so iteration order must be stable.
var educationalRules = []keywordRule{
	{"explain", "Create a step-by-step educational animation with clear visual progression and text explanations"},
	{"prove", "Create an animated mathematical proof with step-by-step derivations using MathTex and transitions"},
	{"solve", "Animate the solving process step-by-step showing each mathematical operation with transforms"},
	{"derive", "Show the mathematical derivation process with animated equation transformations"},
	{"demonstrate", "Provide an animated demonstration with clear visual examples and smooth transitions"},
	{"teach", "Create an educational animation that teaches the concept with visual aids and text"},
	{"illustrate", "Illustrate the concept with visual examples, diagrams, and smooth animations"},
}

var mathRules = []keywordRule{
	{"quadratic", "Animate quadratic functions with parabola graphing, vertex highlighting, and smooth transitions"},
	{"limit", "Visualize limits with animated approaching values and epsilon-delta visualization"},
	{"integration", "Show integration as area calculation with animated Riemann sums and smooth filling"},
	{"differentiation", "Animate derivatives as changing slopes with tangent lines and smooth transitions"},
	{"trigonometry", "Create animated trigonometric visualizations with unit circle and smooth wave animations"},
	{"vector", "Animate vector operations in 2D/3D space with arrow animations and transformations"},
	{"matrix", "Display matrix operations with animated transformations and element-wise operations"},
	{"equation", "Display and animate mathematical equation solving with step-by-step transforms"},
	{"function", "Plot mathematical function with animated axes, grid, and smooth curve drawing"},
	{"graph", "Create animated graph with coordinate system, gridlines, and smooth plotting"},
}

var shapeRules = []keywordRule{
	{"circle", "Draw an animated circle with smooth FadeIn, rotation, and color effects"},
	{"square", "Draw an animated square with transformations, scaling, and color transitions"},
	{"triangle", "Draw an animated triangle with smooth entry and geometric properties"},
	{"rectangle", "Draw an animated rectangle with dimension labels and transformations"},
	{"polygon", "Draw an animated polygon with smooth construction and angle highlights"},
	{"line", "Draw animated lines with smooth drawing effect and arrow endpoints"},
	{"arrow", "Draw animated arrows with emphasis effects and smooth movements"},
}

// Refine rewrites a raw concept into a directive instruction. It never
// fails; empty input maps to DefaultInstruction. Classification order:
// transformation requests, educational keywords, math topic keywords, shape
// keywords, then a generic default embedding the verbatim concept.
func Refine(concept string) string {
	concept = strings.TrimSpace(concept)
	if concept == "" {
		return DefaultInstruction
	}

	concept = CanonicalizeColors(concept)

	if isTransformationRequest(concept) {
		sequence := extractTransformationSequence(concept)

		switch {
		case len(sequence) >= 4:
			steps := strings.Join(sequence, " → ")
			return fmt.Sprintf("Create a complex animated transformation sequence: %s. "+
				"Use Manim objects with smooth Transform animations, proper timing delays, "+
				"and fade transitions between each step. Include color changes and scaling effects.", steps)
		case len(sequence) == 3:
			return fmt.Sprintf("Create a smooth animated transformation sequence: %s transforms to "+
				"%s which then transforms to %s. Use appropriate Manim shapes "+
				"with Transform animations, FadeOut/FadeIn transitions, and smooth timing.",
				sequence[0], sequence[1], sequence[2])
		case len(sequence) == 2:
			return fmt.Sprintf("Create a smooth animated transformation: %s transforms into %s. "+
				"Use appropriate Manim shapes with Transform animation, color transitions, "+
				"and smooth FadeIn/FadeOut effects.", sequence[0], sequence[1])
		}
	}

	lower := strings.ToLower(concept)

	for _, rule := range educationalRules {
		if strings.Contains(lower, rule.keyword) {
			return fmt.Sprintf("%s. Based on user request: '%s'. Use smooth FadeIn/FadeOut transitions throughout.", rule.enhancement, concept)
		}
	}

	for _, rule := range mathRules {
		if strings.Contains(lower, rule.keyword) {
			return fmt.Sprintf("%s. Based on user request: '%s'. Include smooth transitions and visual effects.", rule.enhancement, concept)
		}
	}

	for _, rule := range shapeRules {
		if strings.Contains(lower, rule.keyword) {
			return fmt.Sprintf("%s. Based on user request: '%s'. Use Transform and FadeIn/FadeOut effects.", rule.enhancement, concept)
		}
	}

	return fmt.Sprintf("Create an animated Manim scene that illustrates: '%s'. "+
		"Use appropriate visual elements with smooth FadeIn/FadeOut transitions, "+
		"Transform animations for morphing, and proper timing with run_time parameters.", concept)
}
