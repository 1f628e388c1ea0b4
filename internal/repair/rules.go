// Package repair applies deterministic pattern fixes to scene code that
// failed validation or rendering. Rules are keyed on the diagnostic text and
// tried in order; the first rule that changes the code wins.
package repair

import (
	"fmt"
	"regexp"
	"strings"
)

// Rule pairs a diagnostic matcher with a code rewrite.
type Rule struct {
	Name  string
	Match func(diagnostics string) bool
	Apply func(code string) string
}

// Fix runs the rule table against the code. It returns the rewritten code and
// true when some rule produced a change, otherwise the original code and
// false. Every rewrite is idempotent: applying Fix to its own output with the
// same diagnostics yields no further change.
func Fix(code, diagnostics string) (string, bool) {
	for _, rule := range rules {
		if !rule.Match(diagnostics) {
			continue
		}
		if fixed := rule.Apply(code); fixed != code {
			return fixed, true
		}
	}
	return code, false
}

var rules = []Rule{
	{
		Name: "get_area_lambda",
		Match: func(d string) bool {
			return strings.Contains(d, "get_area") && strings.Contains(d, "'function' object has no attribute")
		},
		Apply: func(code string) string { return rewriteLambdaCall(code, "get_area") },
	},
	{
		Name: "riemann_lambda",
		Match: func(d string) bool {
			return strings.Contains(d, "get_riemann_rectangles") && strings.Contains(d, "'function' object")
		},
		Apply: func(code string) string { return rewriteLambdaCall(code, "get_riemann_rectangles") },
	},
	{
		Name: "missing_numpy",
		Match: func(d string) bool {
			return (strings.Contains(d, "np.") || strings.Contains(d, "numpy")) && strings.Contains(d, "NameError")
		},
		Apply: addNumpyImport,
	},
	{
		Name: "color_names",
		Match: func(d string) bool {
			return strings.Contains(strings.ToLower(d), "color") || strings.Contains(d, "attribute")
		},
		Apply: fixColorNames,
	},
	{
		Name:  "renamed_animations",
		Match: func(d string) bool { return strings.Contains(d, "AttributeError") },
		Apply: fixAnimationNames,
	},
	{
		Name: "missing_main_scene",
		Match: func(d string) bool {
			return strings.Contains(d, "MainScene") && strings.Contains(d, "not defined")
		},
		Apply: ensureMainScene,
	},
	{
		Name: "rectangle_kwargs",
		Match: func(d string) bool {
			if !strings.Contains(d, "Rectangle") {
				return false
			}
			return strings.Contains(d, "bottom_left") || strings.Contains(d, "bottom_right") ||
				strings.Contains(d, "unexpected keyword argument")
		},
		Apply: rebuildRectangles,
	},
	{
		Name: "square_kwargs",
		Match: func(d string) bool {
			return strings.Contains(d, "Square") && strings.Contains(d, "unexpected keyword argument")
		},
		Apply: rebuildSquares,
	},
}

// rewriteLambdaCall handles axes.get_area(lambda x: ...) style mistakes:
// plot the lambda into a graph object first, then pass the graph.
func rewriteLambdaCall(code, method string) string {
	callPattern := regexp.MustCompile(`(\w+)\.` + method + `\s*\(\s*lambda\s+(\w+)\s*:\s*([^,\)]+)`)
	inlinePattern := regexp.MustCompile(method + `\s*\(\s*lambda\s+\w+\s*:[^,\)]+`)

	lines := strings.Split(code, "\n")
	fixed := make([]string, 0, len(lines)+1)

	for _, line := range lines {
		if !strings.Contains(line, method) || !strings.Contains(line, "lambda") {
			fixed = append(fixed, line)
			continue
		}
		m := callPattern.FindStringSubmatch(line)
		if m == nil {
			fixed = append(fixed, line)
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " "))]
		expr := strings.TrimRight(strings.TrimSpace(m[3]), ",)")

		fixed = append(fixed, fmt.Sprintf("%sgraph = %s.plot(lambda %s: %s)", indent, m[1], m[2], expr))
		fixed = append(fixed, inlinePattern.ReplaceAllString(line, method+"(graph"))
	}
	return strings.Join(fixed, "\n")
}

func addNumpyImport(code string) string {
	if strings.Contains(code, "import numpy") || strings.Contains(code, "from numpy") {
		return code
	}
	lines := strings.Split(code, "\n")
	fixed := make([]string, 0, len(lines)+1)
	for _, line := range lines {
		fixed = append(fixed, line)
		if strings.Contains(line, "from manim import") || strings.Contains(line, "import manim") {
			fixed = append(fixed, "import numpy as np")
		}
	}
	return strings.Join(fixed, "\n")
}

// colorRenames is ordered: variant names go before their prefix so GOLD_B is
// never left as YELLOW_B by a bare GOLD rewrite. Matches are identifier
// bounded, which keeps the rewrite a fixed point (PURPLE_C stays PURPLE_C).
var colorRenames = []struct{ from, to string }{
	{"GOLD_A", "YELLOW"},
	{"GOLD_B", "YELLOW"},
	{"GOLD_C", "YELLOW"},
	{"GOLD_D", "YELLOW"},
	{"GOLD_E", "YELLOW"},
	{"GOLD", "YELLOW"},
	{"TEAL", "BLUE_C"},
	{"MAROON", "RED_C"},
	{"PURPLE", "PURPLE_C"},
}

func fixColorNames(code string) string {
	for _, r := range colorRenames {
		code = replaceIdentifier(code, r.from, r.to)
	}
	return code
}

// animationRenames is ordered longest-first for the same fixed-point reason.
var animationRenames = []struct{ from, to string }{
	{"ShowCreationThenDestruction", "Create"},
	{"ShowCreationThenFadeOut", "Create"},
	{"ShowCreation", "Create"},
	{"ShowIncreasingSubsets", "Create"},
	{"ShowSubmobjectsOneByOne", "Create"},
	{"FadeInFromDown", "FadeIn"},
	{"FadeOutAndShift", "FadeOut"},
	{"FadeInFromLarge", "FadeIn"},
	{"GrowFromCenter", "GrowFromPoint"},
}

func fixAnimationNames(code string) string {
	for _, r := range animationRenames {
		code = replaceIdentifier(code, r.from, r.to)
	}
	return code
}

func replaceIdentifier(code, from, to string) string {
	re := regexp.MustCompile(`\b` + from + `\b`)
	return re.ReplaceAllString(code, to)
}

var sceneClassPattern = regexp.MustCompile(`class \w+Scene\(Scene\)`)

// ensureMainScene renames an existing Scene subclass to MainScene, or wraps
// bare statements in one when no Scene class exists at all.
func ensureMainScene(code string) string {
	if strings.Contains(code, "class MainScene") {
		return code
	}
	if renamed := sceneClassPattern.ReplaceAllString(code, "class MainScene(Scene)"); renamed != code {
		return renamed
	}

	lines := strings.Split(code, "\n")
	body := make([]string, 0, len(lines))
	for _, line := range lines {
		if strings.TrimSpace(line) == "" {
			body = append(body, line)
		} else {
			body = append(body, "        "+line)
		}
	}
	return "from manim import *\n\nclass MainScene(Scene):\n    def construct(self):\n" + strings.Join(body, "\n")
}

var (
	badRectParams = []string{"bottom_left", "bottom_right", "top_left", "top_right"}

	colorParam   = regexp.MustCompile(`color\s*=\s*(\w+)`)
	opacityParam = regexp.MustCompile(`fill_opacity\s*=\s*([\d.]+)`)
	sideParam    = regexp.MustCompile(`side_length\s*=\s*([\d.]+)`)
)

// rebuildRectangles replaces Rectangle calls that use corner-point keywords
// with a plain width/height constructor, carrying over color and opacity.
func rebuildRectangles(code string) string {
	lines := strings.Split(code, "\n")
	fixed := make([]string, 0, len(lines))

	for _, line := range lines {
		if !strings.Contains(line, "Rectangle(") || !containsAny(line, badRectParams) {
			fixed = append(fixed, line)
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " "))]
		params := []string{"width=1", "height=0.5"}
		if m := colorParam.FindStringSubmatch(line); m != nil {
			params = append(params, "color="+m[1])
		}
		if m := opacityParam.FindStringSubmatch(line); m != nil {
			params = append(params, "fill_opacity="+m[1])
		}
		fixed = append(fixed, indent+"Rectangle("+strings.Join(params, ", ")+")")
	}
	return strings.Join(fixed, "\n")
}

// rebuildSquares rewrites Square calls carrying Rectangle-style keywords,
// keeping only the parameters Square actually accepts.
func rebuildSquares(code string) string {
	lines := strings.Split(code, "\n")
	fixed := make([]string, 0, len(lines))

	for _, line := range lines {
		if !strings.Contains(line, "Square(") || !containsAny(line, []string{"width", "height", "radius"}) {
			fixed = append(fixed, line)
			continue
		}
		indent := line[:len(line)-len(strings.TrimLeft(line, " "))]
		var params []string
		if m := sideParam.FindStringSubmatch(line); m != nil {
			params = append(params, "side_length="+m[1])
		}
		if m := colorParam.FindStringSubmatch(line); m != nil {
			params = append(params, "color="+m[1])
		}
		if m := opacityParam.FindStringSubmatch(line); m != nil {
			params = append(params, "fill_opacity="+m[1])
		}
		fixed = append(fixed, indent+"Square("+strings.Join(params, ", ")+")")
	}
	return strings.Join(fixed, "\n")
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
