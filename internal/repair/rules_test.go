package repair

import (
	"strings"
	"testing"
)

func TestFixGetAreaLambda(t *testing.T) {
	code := "from manim import *\n\n" +
		"class MainScene(Scene):\n" +
		"    def construct(self):\n" +
		"        axes = Axes()\n" +
		"        area = axes.get_area(lambda x: x**2, x_range=[0, 1])\n"
	diag := "AttributeError: 'function' object has no attribute 'underlying_function' in get_area"

	fixed, changed := Fix(code, diag)
	if !changed {
		t.Fatal("expected a fix")
	}
	if !strings.Contains(fixed, "graph = axes.plot(lambda x: x**2)") {
		t.Errorf("graph line not inserted:\n%s", fixed)
	}
	if !strings.Contains(fixed, "get_area(graph") {
		t.Errorf("call not rewritten to use graph:\n%s", fixed)
	}
	if strings.Contains(fixed, "get_area(lambda") {
		t.Errorf("lambda still passed to get_area:\n%s", fixed)
	}

	// Indentation of the inserted line matches the original statement.
	for _, line := range strings.Split(fixed, "\n") {
		if strings.Contains(line, "graph = axes.plot") && !strings.HasPrefix(line, "        ") {
			t.Errorf("inserted line lost indentation: %q", line)
		}
	}
}

func TestFixRiemannLambda(t *testing.T) {
	code := "rects = axes.get_riemann_rectangles(lambda x: x**2, dx=0.1)"
	diag := "TypeError: 'function' object is not subscriptable in get_riemann_rectangles"

	fixed, changed := Fix(code, diag)
	if !changed {
		t.Fatal("expected a fix")
	}
	if !strings.Contains(fixed, "graph = axes.plot(lambda x: x**2)") {
		t.Errorf("graph line not inserted:\n%s", fixed)
	}
	if !strings.Contains(fixed, "get_riemann_rectangles(graph") {
		t.Errorf("call not rewritten:\n%s", fixed)
	}
}

func TestFixMissingNumpyImport(t *testing.T) {
	code := "from manim import *\n\nclass MainScene(Scene):\n    pass\n"
	diag := "z = np.sin(x)\nNameError: name 'np' is not defined"

	fixed, changed := Fix(code, diag)
	if !changed {
		t.Fatal("expected a fix")
	}
	lines := strings.Split(fixed, "\n")
	if lines[0] != "from manim import *" || lines[1] != "import numpy as np" {
		t.Errorf("numpy import not inserted after manim import:\n%s", fixed)
	}
}

func TestFixNumpyImportAlreadyPresent(t *testing.T) {
	code := "from manim import *\nimport numpy as np\n"
	diag := "z = np.sin(x)\nNameError: name 'np' is not defined"

	if _, changed := Fix(code, diag); changed {
		t.Error("no change expected when numpy is already imported")
	}
}

func TestFixColorNames(t *testing.T) {
	code := "c = Circle(color=GOLD)\ns = Square(color=TEAL)\nt = Triangle(color=MAROON)\np = Dot(color=PURPLE)"
	diag := "AttributeError: module 'manim' has no attribute color constant"

	fixed, changed := Fix(code, diag)
	if !changed {
		t.Fatal("expected a fix")
	}
	for _, want := range []string{"color=YELLOW", "color=BLUE_C", "color=RED_C", "color=PURPLE_C"} {
		if !strings.Contains(fixed, want) {
			t.Errorf("missing %s in:\n%s", want, fixed)
		}
	}
}

func TestFixColorNamesIdempotent(t *testing.T) {
	// PURPLE_C must not become PURPLE_C_C, GOLD_B must not become YELLOW_B.
	code := "a = Dot(color=PURPLE)\nb = Dot(color=GOLD_B)"
	diag := "AttributeError: color"

	fixed, changed := Fix(code, diag)
	if !changed {
		t.Fatal("expected a fix")
	}
	if !strings.Contains(fixed, "color=PURPLE_C") || !strings.Contains(fixed, "color=YELLOW") {
		t.Fatalf("unexpected rewrite:\n%s", fixed)
	}

	again, changed := Fix(fixed, diag)
	if changed {
		t.Errorf("fix is not a fixed point:\nfirst:  %s\nsecond: %s", fixed, again)
	}
}

func TestFixRenamedAnimations(t *testing.T) {
	code := "self.play(ShowCreation(circle))\nself.play(ShowCreationThenDestruction(square))\nself.play(FadeInFromDown(text))"
	diag := "AttributeError: ShowCreation is not defined"

	fixed, changed := Fix(code, diag)
	if !changed {
		t.Fatal("expected a fix")
	}
	if !strings.Contains(fixed, "Create(circle)") {
		t.Errorf("ShowCreation not renamed:\n%s", fixed)
	}
	if !strings.Contains(fixed, "Create(square)") {
		t.Errorf("ShowCreationThenDestruction not renamed:\n%s", fixed)
	}
	if !strings.Contains(fixed, "FadeIn(text)") {
		t.Errorf("FadeInFromDown not renamed:\n%s", fixed)
	}
	if strings.Contains(fixed, "CreateThenDestruction") {
		t.Errorf("prefix rewrite corrupted longer name:\n%s", fixed)
	}
}

func TestFixRenameSceneClass(t *testing.T) {
	code := "from manim import *\n\nclass CircleScene(Scene):\n    def construct(self):\n        pass\n"
	diag := "Error: MainScene is not defined in the script"

	fixed, changed := Fix(code, diag)
	if !changed {
		t.Fatal("expected a fix")
	}
	if !strings.Contains(fixed, "class MainScene(Scene)") {
		t.Errorf("scene class not renamed:\n%s", fixed)
	}
}

func TestFixWrapBareCode(t *testing.T) {
	code := "circle = Circle()\nself.play(Create(circle))"
	diag := "Error: MainScene is not defined"

	fixed, changed := Fix(code, diag)
	if !changed {
		t.Fatal("expected a fix")
	}
	if !strings.HasPrefix(fixed, "from manim import *\n\nclass MainScene(Scene):\n    def construct(self):\n") {
		t.Errorf("code not wrapped in MainScene:\n%s", fixed)
	}
	if !strings.Contains(fixed, "        circle = Circle()") {
		t.Errorf("body not indented:\n%s", fixed)
	}
}

func TestFixRectangleKwargs(t *testing.T) {
	code := "        rect = Rectangle(bottom_left=[0,0,0], top_right=[2,1,0], color=BLUE, fill_opacity=0.5)"
	diag := "TypeError: Rectangle.__init__() got an unexpected keyword argument 'bottom_left'"

	fixed, changed := Fix(code, diag)
	if !changed {
		t.Fatal("expected a fix")
	}
	if !strings.Contains(fixed, "Rectangle(width=1, height=0.5, color=BLUE, fill_opacity=0.5)") {
		t.Errorf("rectangle not rebuilt:\n%s", fixed)
	}
	if !strings.HasPrefix(fixed, "        ") {
		t.Errorf("indentation lost:\n%q", fixed)
	}
}

func TestFixSquareKwargs(t *testing.T) {
	code := "sq = Square(width=2, height=2, side_length=1.5, color=RED, fill_opacity=0.3)"
	diag := "TypeError: Square.__init__() got an unexpected keyword argument 'width'"

	fixed, changed := Fix(code, diag)
	if !changed {
		t.Fatal("expected a fix")
	}
	if !strings.Contains(fixed, "Square(side_length=1.5, color=RED, fill_opacity=0.3)") {
		t.Errorf("square not rebuilt:\n%s", fixed)
	}
}

func TestFixNoRuleMatches(t *testing.T) {
	code := "print('hello')"
	diag := "SyntaxError: invalid syntax"

	fixed, changed := Fix(code, diag)
	if changed {
		t.Errorf("no rule should match, got:\n%s", fixed)
	}
	if fixed != code {
		t.Error("unmatched input must come back unchanged")
	}
}

func TestFixMatchedRuleNoChange(t *testing.T) {
	// Diagnostic matches the color rule but the code has no offending names.
	code := "c = Circle(color=YELLOW)"
	diag := "AttributeError: color trouble"

	if _, changed := Fix(code, diag); changed {
		t.Error("expected no change when code has nothing to rewrite")
	}
}
