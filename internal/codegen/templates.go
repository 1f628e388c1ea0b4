package codegen

import (
	"fmt"
	"regexp"
	"strings"
)

// LaTeX detection: concepts that are really bare expressions get a direct
// MathTex scene instead of a generated one.

var latexCommandHints = []string{
	`\frac`, `\sum`, `\int`, `\sqrt`, `\alpha`, `\beta`,
	`\pi`, `\sin`, `\cos`, `\tan`, `\left`, `\right`,
}

var latexDelimiters = []string{"$$", "$", `\(`, `\)`, `\[`, `\]`}

// IsLikelyLaTeX reports whether the text looks like a LaTeX expression
// rather than a natural-language concept.
func IsLikelyLaTeX(text string) bool {
	t := strings.TrimSpace(text)
	if t == "" {
		return false
	}
	for _, d := range latexDelimiters {
		if strings.Contains(t, d) {
			return true
		}
	}
	for _, cmd := range latexCommandHints {
		if strings.Contains(t, cmd) {
			return true
		}
	}
	head := t
	if len(head) > 3 {
		head = head[:3]
	}
	if (strings.Contains(t, "^") || strings.Contains(t, "_")) && !strings.Contains(head, " ") {
		return true
	}
	return false
}

var (
	dollarDelims  = regexp.MustCompile(`^\$+|\$+$`)
	parenDelims   = regexp.MustCompile(`^\\\(|\\\)$`)
	bracketDelims = regexp.MustCompile(`^\\\[|\\\]$`)
)

// CleanLaTeX strips common math delimiters from an expression.
func CleanLaTeX(text string) string {
	t := strings.TrimSpace(text)
	t = dollarDelims.ReplaceAllString(t, "")
	t = parenDelims.ReplaceAllString(t, "")
	t = bracketDelims.ReplaceAllString(t, "")
	return strings.TrimSpace(t)
}

// LaTeXSceneCode builds a minimal scene that typesets the expression.
func LaTeXSceneCode(expr string) string {
	expr = CleanLaTeX(expr)
	return fmt.Sprintf(`from manim import *

class MainScene(Scene):
    def construct(self):
        title = Title('LaTeX Expression')
        eq = MathTex(r"%s").scale(1.2)
        self.play(Write(title))
        self.play(Write(eq))
        self.wait()
`, expr)
}

// Template describes one deterministic scene template.
type Template struct {
	Name     string
	Keywords []string
	Code     string
}

// templates is the deterministic generation path: no provider call, no
// network, usable even when the completion provider is unconfigured.
var templates = []Template{
	{"pythagorean", []string{"pythagoras", "pythagorean", "right triangle", "hypotenuse"}, pythagoreanCode},
	{"quadratic", []string{"quadratic", "parabola", "x squared", "x^2"}, quadraticCode},
	{"trigonometry", []string{"sine", "cosine", "trigonometry", "trig", "unit circle"}, trigCode},
	{"3d_surface", []string{"3d surface", "surface plot", "3d plot", "three dimensional"}, surfaceCode},
	{"sphere", []string{"sphere", "ball", "spherical"}, sphereCode},
	{"cube", []string{"cube", "cubic", "box"}, cubeCode},
	{"derivative", []string{"derivative", "differentiation", "slope", "rate of change"}, derivativeCode},
	{"integral", []string{"integration", "integral", "area under curve", "antiderivative"}, integralCode},
	{"matrix", []string{"matrix", "matrices", "linear transformation"}, matrixCode},
	{"eigenvalue", []string{"eigenvalue", "eigenvector", "characteristic"}, eigenvalueCode},
	{"complex", []string{"complex", "imaginary", "complex plane"}, complexCode},
	{"differential_equation", []string{"differential equation", "ode", "pde"}, diffEqCode},
}

// SelectTemplate returns the best keyword-matching template code for the
// concept, or "" when nothing matches.
func SelectTemplate(concept string) string {
	concept = strings.ToLower(strings.TrimSpace(concept))

	var best string
	maxMatches := 0
	for _, tpl := range templates {
		matches := 0
		for _, kw := range tpl.Keywords {
			if strings.Contains(concept, kw) {
				matches++
			}
		}
		if matches > maxMatches {
			maxMatches = matches
			best = tpl.Code
		}
	}
	return best
}

// TemplateInfo is the catalogue entry exposed over HTTP.
type TemplateInfo struct {
	Name        string   `json:"name"`
	Keywords    []string `json:"keywords"`
	Description string   `json:"description"`
}

// TemplateCatalogue lists the available deterministic templates.
func TemplateCatalogue() []TemplateInfo {
	infos := make([]TemplateInfo, 0, len(templates))
	for _, tpl := range templates {
		infos = append(infos, TemplateInfo{
			Name:        tpl.Name,
			Keywords:    tpl.Keywords,
			Description: fmt.Sprintf("Visualizes %s concepts", strings.ReplaceAll(tpl.Name, "_", " ")),
		})
	}
	return infos
}

const pythagoreanCode = `from manim import *

class MainScene(Scene):
    def construct(self):
        triangle = Polygon(
            ORIGIN, RIGHT*3, UP*4,
            color=WHITE
        )

        a_label = MathTex("a").next_to(triangle, DOWN)
        b_label = MathTex("b").next_to(triangle, RIGHT)
        c_label = MathTex("c").next_to(
            triangle.get_center() + UP + RIGHT,
            UP+RIGHT
        )

        equation = MathTex(r"a^2 + b^2 = c^2").scale(1.1).to_edge(UP)

        self.play(Create(triangle))
        self.play(Write(a_label), Write(b_label), Write(c_label))
        self.play(Write(equation))
        self.wait()
`

const quadraticCode = `from manim import *

class MainScene(Scene):
    def construct(self):
        axes = Axes(
            x_range=[-4, 4],
            y_range=[-2, 8],
            axis_config={"include_tip": True}
        )

        x_label = MathTex("x").next_to(axes.x_axis.get_end(), RIGHT)
        y_label = MathTex("y").next_to(axes.y_axis.get_end(), UP)

        def func(x):
            return x**2

        graph = axes.plot(
            func,
            color=BLUE,
            x_range=[-3, 3]
        )

        equation = MathTex("f(x) = x^2").to_corner(UL)

        x = ValueTracker(-3)
        dot = always_redraw(
            lambda: Dot(
                axes.c2p(
                    x.get_value(),
                    func(x.get_value())
                ),
                color=YELLOW
            )
        )

        self.play(Create(axes), Write(x_label), Write(y_label))
        self.play(Create(graph))
        self.play(Write(equation))
        self.play(Create(dot))
        self.play(
            x.animate.set_value(3),
            run_time=6,
            rate_func=there_and_back
        )
        self.wait()
`

const trigCode = `from manim import *

class MainScene(Scene):
    def construct(self):
        plane = NumberPlane(
            x_range=[-4, 4],
            y_range=[-2, 2],
            axis_config={"include_tip": True}
        )

        circle = Circle(radius=1, color=BLUE)
        theta = ValueTracker(0)

        dot = always_redraw(
            lambda: Dot(
                circle.point_at_angle(theta.get_value()),
                color=YELLOW
            )
        )

        sin_label = MathTex(r"\sin(\theta)").set_color(GREEN).to_corner(UL)
        cos_label = MathTex(r"\cos(\theta)").set_color(RED).next_to(sin_label, DOWN)

        self.play(Create(plane))
        self.play(Create(circle))
        self.play(Create(dot))
        self.play(Write(sin_label), Write(cos_label))
        self.play(
            theta.animate.set_value(2*PI),
            run_time=4,
            rate_func=linear
        )
        self.wait()
`

const surfaceCode = `from manim import *
import numpy as np

class MainScene(ThreeDScene):
    def construct(self):
        axes = ThreeDAxes(
            x_range=[-3, 3, 1],
            y_range=[-3, 3, 1],
            z_range=[-2, 2, 0.5],
            x_length=6,
            y_length=6,
            z_length=4
        )

        def param_surface(u, v):
            x = u
            y = v
            z = np.sin(np.sqrt(x**2 + y**2))
            return np.array([x, y, z])

        surface = Surface(
            lambda u, v: param_surface(u, v),
            u_range=[-3, 3],
            v_range=[-3, 3],
            resolution=(20, 20)
        )
        surface.set_style(
            fill_opacity=0.8,
            stroke_color=BLUE,
            stroke_width=0.5,
            fill_color=BLUE
        )

        self.set_camera_orientation(
            phi=60 * DEGREES,
            theta=45 * DEGREES,
            zoom=0.6
        )

        self.begin_ambient_camera_rotation(rate=0.2)
        self.play(Create(axes))
        self.play(Create(surface))
        self.wait(2)
        self.stop_ambient_camera_rotation()
`

const sphereCode = `from manim import *
import numpy as np

class MainScene(ThreeDScene):
    def construct(self):
        self.set_camera_orientation(phi=75 * DEGREES, theta=30 * DEGREES)
        axes = ThreeDAxes(
            x_range=[-3, 3],
            y_range=[-3, 3],
            z_range=[-3, 3],
            x_length=6,
            y_length=6,
            z_length=6
        )

        radius = 2
        sphere = Surface(
            lambda u, v: np.array([
                radius * np.cos(u) * np.cos(v),
                radius * np.cos(u) * np.sin(v),
                radius * np.sin(u)
            ]),
            u_range=[-PI/2, PI/2],
            v_range=[0, TAU],
            checkerboard_colors=[BLUE_D, BLUE_E],
            resolution=(15, 32)
        )

        radius_line = Line3D(
            start=ORIGIN,
            end=[radius, 0, 0],
            color=YELLOW
        )
        volume_formula = MathTex(r"V = \frac{4}{3}\pi r^3").to_corner(UL)

        self.add(axes)
        self.play(Create(sphere))
        self.wait()
        self.play(Create(radius_line))
        self.play(Write(volume_formula))
        self.wait()

        self.begin_ambient_camera_rotation(rate=0.2)
        self.wait(5)
        self.stop_ambient_camera_rotation()
`

const cubeCode = `from manim import *

class MainScene(ThreeDScene):
    def construct(self):
        self.set_camera_orientation(phi=75 * DEGREES, theta=30 * DEGREES)
        axes = ThreeDAxes(
            x_range=[-3, 3],
            y_range=[-3, 3],
            z_range=[-3, 3]
        )

        cube = Cube(side_length=2, fill_opacity=0.7, stroke_width=2)
        cube.set_color(BLUE)

        a_label = MathTex("a").set_color(YELLOW).next_to(cube, RIGHT)
        area_formula = MathTex("A = 6a^2").to_corner(UL)

        self.add(axes)
        self.play(Create(cube))
        self.wait()
        self.play(Write(a_label))
        self.play(Write(area_formula))
        self.wait()

        self.begin_ambient_camera_rotation(rate=0.2)
        self.wait(5)
        self.stop_ambient_camera_rotation()
`

const derivativeCode = `from manim import *

class MainScene(Scene):
    def construct(self):
        axes = Axes(
            x_range=[-2, 2],
            y_range=[-1, 2],
            axis_config={"include_tip": True}
        )

        x_label = MathTex("x").next_to(axes.x_axis.get_end(), RIGHT)
        y_label = MathTex("y").next_to(axes.y_axis.get_end(), UP)

        def func(x):
            return x**2

        graph = axes.plot(func, color=BLUE)

        def deriv(x):
            return 2*x

        derivative = axes.plot(deriv, color=RED)

        func_label = MathTex("f(x) = x^2").set_color(BLUE).to_corner(UL)
        deriv_label = MathTex("f'(x) = 2x").set_color(RED).next_to(func_label, DOWN)

        self.play(Create(axes), Write(x_label), Write(y_label))
        self.play(Create(graph), Write(func_label))
        self.wait()
        self.play(Create(derivative), Write(deriv_label))
        self.wait()
`

const integralCode = `from manim import *

class MainScene(Scene):
    def construct(self):
        axes = Axes(
            x_range=[-2, 2],
            y_range=[-1, 2],
            axis_config={"include_tip": True}
        )

        x_label = MathTex("x").next_to(axes.x_axis.get_end(), RIGHT)
        y_label = MathTex("y").next_to(axes.y_axis.get_end(), UP)

        def func(x):
            return x**2

        graph = axes.plot(func, color=BLUE)

        area = axes.get_area(
            graph,
            x_range=[0, 1],
            color=YELLOW,
            opacity=0.3
        )

        func_label = MathTex("f(x) = x^2").set_color(BLUE).to_corner(UL)
        integral_label = MathTex(r"\int_0^1 x^2 dx = \frac{1}{3}").set_color(YELLOW).next_to(func_label, DOWN)

        self.play(Create(axes), Write(x_label), Write(y_label))
        self.play(Create(graph), Write(func_label))
        self.wait()
        self.play(FadeIn(area), Write(integral_label))
        self.wait()
`

const matrixCode = `from manim import *

class MainScene(Scene):
    def construct(self):
        matrix_a = Matrix([
            [2, 1],
            [1, 3]
        ])

        matrix_b = Matrix([
            [1],
            [2]
        ])

        result = Matrix([
            [4],
            [7]
        ])

        equation = VGroup(
            matrix_a, MathTex(r"\times"), matrix_b,
            MathTex("="), result
        ).arrange(RIGHT)

        calc1 = MathTex(r"= \begin{bmatrix} 2(1) + 1(2) \\ 1(1) + 3(2) \end{bmatrix}")
        calc2 = MathTex(r"= \begin{bmatrix} 4 \\ 7 \end{bmatrix}")

        calcs = VGroup(calc1, calc2).arrange(DOWN).next_to(equation, DOWN, buff=1)

        self.play(Create(matrix_a))
        self.play(Create(matrix_b))
        self.play(Write(equation[1]), Write(equation[3]))
        self.play(Create(result))
        self.wait()

        self.play(Write(calcs))
        self.wait()
`

const eigenvalueCode = `from manim import *

class MainScene(Scene):
    def construct(self):
        matrix = Matrix([
            [2, 1],
            [1, 2]
        ])

        vector = Matrix([
            ["v_1"],
            ["v_2"]
        ])

        lambda_text = MathTex(r"\lambda")
        equation = MathTex(r"Av = \lambda v")

        group = VGroup(matrix, vector, lambda_text, equation).arrange(RIGHT)
        group.to_edge(UP)

        char_eq = MathTex(r"\det(A - \lambda I) = 0")
        expanded = MathTex(r"\begin{vmatrix} 2-\lambda & 1 \\ 1 & 2-\lambda \end{vmatrix} = 0")
        solved = MathTex(r"(2-\lambda)^2 - 1 = 0")
        result = MathTex(r"\lambda = 1, 3")

        steps = VGroup(char_eq, expanded, solved, result).arrange(DOWN).next_to(group, DOWN, buff=1)

        self.play(Create(matrix), Create(vector))
        self.play(Write(lambda_text), Write(equation))
        self.wait()

        self.play(Write(char_eq))
        self.play(Write(expanded))
        self.play(Write(solved))
        self.play(Write(result))
        self.wait()
`

const diffEqCode = `from manim import *
import numpy as np

class MainScene(Scene):
    def construct(self):
        eq = MathTex(r"\frac{dy}{dx} + 2y = e^x")

        step1 = MathTex(r"y = e^{-2x}\int e^x \cdot e^{2x} dx")
        step2 = MathTex(r"y = e^{-2x}\int e^{3x} dx")
        step3 = MathTex(r"y = e^{-2x} \cdot \frac{1}{3}e^{3x} + Ce^{-2x}")
        step4 = MathTex(r"y = \frac{1}{3}e^x + Ce^{-2x}")

        VGroup(eq, step1, step2, step3, step4).arrange(DOWN, buff=0.5)

        axes = Axes(
            x_range=[-2, 2],
            y_range=[-2, 2],
            axis_config={"include_tip": True}
        )

        graph = axes.plot(
            lambda x: (1/3)*np.exp(x),
            color=YELLOW
        )

        self.play(Write(eq))
        self.wait()
        self.play(Write(step1))
        self.wait()
        self.play(Write(step2))
        self.wait()
        self.play(Write(step3))
        self.wait()
        self.play(Write(step4))
        self.wait()

        self.play(FadeOut(VGroup(eq, step1, step2, step3, step4)))
        self.play(Create(axes), Create(graph))
        self.wait()
`

const complexCode = `from manim import *

class MainScene(Scene):
    def construct(self):
        plane = ComplexPlane()
        self.play(Create(plane))

        dot = Dot([3, 2, 0], color=YELLOW)
        vector = Arrow(
            ORIGIN, dot.get_center(),
            buff=0, color=YELLOW
        )
        re_line = DashedLine(
            ORIGIN, [3, 0, 0], color=BLUE
        )
        im_line = DashedLine(
            [3, 0, 0], [3, 2, 0], color=RED
        )

        z_label = MathTex("z = 3 + 2i").next_to(dot, UR)
        re_label = MathTex(r"\text{Re}(z) = 3").next_to(re_line, DOWN)
        im_label = MathTex(r"\text{Im}(z) = 2").next_to(im_line, RIGHT)

        self.play(Create(vector))
        self.play(Write(z_label))
        self.wait()
        self.play(Create(re_line), Create(im_line))
        self.play(Write(re_label), Write(im_label))
        self.wait()
`
