package glutils_test

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/xopoww/go-triangle/glutils"
	"github.com/xopoww/go-triangle/glutils/glfake"
	"github.com/xopoww/go-triangle/shaders"
)

func vertSource() glutils.ShaderSource {
	return glutils.NewShaderSource(shaders.Vert, glutils.VertexShader)
}

func fragSource(t *testing.T) glutils.ShaderSource {
	t.Helper()
	src, err := glutils.NewShaderSourceFromTemplate("frag", shaders.Frag, glutils.FragmentShader,
		shaders.FragData{Precision: shaders.DefaultPrecision})
	require.NoError(t, err)
	return src
}

func TestCompileShader(t *testing.T) {
	for _, tc := range []struct {
		name  string
		src   glutils.ShaderSource
		stage glutils.ShaderStage
	}{
		{"vertex", vertSource(), glutils.VertexShader},
		{"fragment", fragSource(t), glutils.FragmentShader},
	} {
		t.Run(tc.name, func(t *testing.T) {
			gl := glfake.New()
			shader, err := glutils.CompileShader(gl, tc.src)
			require.NoError(t, err)
			assert.NotZero(t, shader.Handle)
			assert.Equal(t, tc.stage, shader.Stage)
			assert.EqualValues(t, glutils.TRUE, gl.GetShaderiv(shader.Handle, glutils.COMPILE_STATUS))
		})
	}
}

func TestCompileShaderMalformed(t *testing.T) {
	gl := glfake.New()
	src := "#version 300 es\nvoid main() {\n  gl_Position = vec4(0.0);\n"
	shader, err := glutils.CompileShader(gl, glutils.NewShaderSource(src, glutils.VertexShader))
	require.Error(t, err)
	assert.Zero(t, shader.Handle)

	var serr *glutils.ShaderError
	require.True(t, errors.As(err, &serr))
	assert.Equal(t, glutils.VertexShader, serr.Stage)
	assert.Contains(t, serr.Log, "syntax error")
	assert.Contains(t, err.Error(), "syntax error")
	assert.Zero(t, gl.Live(), "failed shader must be deleted")
}

func TestCompileShaderMissingVersion(t *testing.T) {
	gl := glfake.New()
	_, err := glutils.CompileShader(gl, glutils.NewShaderSource("void main() {}", glutils.FragmentShader))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "#version")
	assert.Contains(t, err.Error(), "fragment")
}

func TestLinkProgram(t *testing.T) {
	gl := glfake.New()
	vs, err := glutils.CompileShader(gl, vertSource())
	require.NoError(t, err)
	fs, err := glutils.CompileShader(gl, fragSource(t))
	require.NoError(t, err)

	program, err := glutils.LinkProgram(gl, vs, fs)
	require.NoError(t, err)
	assert.NotZero(t, program.Handle)
	assert.EqualValues(t, glutils.TRUE, gl.GetProgramiv(program.Handle, glutils.LINK_STATUS))
	assert.Equal(t, []glutils.Shader{vs, fs}, program.Shaders)
	assert.Equal(t, []uint32{vs.Handle, fs.Handle}, gl.Programs[program.Handle].Attached)
}

func TestLinkProgramInvalidShaders(t *testing.T) {
	gl := glfake.New()
	vs, err := glutils.CompileShader(gl, vertSource())
	require.NoError(t, err)
	fs, err := glutils.CompileShader(gl, fragSource(t))
	require.NoError(t, err)

	for _, tc := range []struct {
		name   string
		vs, fs glutils.Shader
	}{
		{"zero vertex", glutils.Shader{Stage: glutils.VertexShader}, fs},
		{"zero fragment", vs, glutils.Shader{Stage: glutils.FragmentShader}},
		{"swapped", fs, vs},
		{"two vertex", vs, vs},
	} {
		t.Run(tc.name, func(t *testing.T) {
			program, err := glutils.LinkProgram(gl, tc.vs, tc.fs)
			assert.ErrorIs(t, err, glutils.ErrInvalidShader)
			assert.Zero(t, program.Handle)
		})
	}
	assert.Empty(t, gl.Programs, "no program object should be created for invalid input")
}

func TestLinkProgramFailure(t *testing.T) {
	gl := glfake.New()
	vs, err := glutils.CompileShader(gl, vertSource())
	require.NoError(t, err)
	fs, err := glutils.CompileShader(gl, fragSource(t))
	require.NoError(t, err)

	// recompiling with a broken source drops the compiled status
	gl.ShaderSource(fs.Handle, "broken")
	gl.CompileShader(fs.Handle)

	_, err = glutils.LinkProgram(gl, vs, fs)
	var lerr *glutils.LinkError
	require.True(t, errors.As(err, &lerr))
	assert.Contains(t, lerr.Log, "not compiled")
	for _, p := range gl.Programs {
		assert.True(t, p.Deleted)
	}
}

func TestCreateProgramCleansUp(t *testing.T) {
	gl := glfake.New()
	_, err := glutils.CreateProgram(gl,
		vertSource(),
		glutils.NewShaderSource("#version 300 es\n}", glutils.FragmentShader),
	)
	require.Error(t, err)
	assert.Zero(t, gl.Live())

	program, err := glutils.CreateProgram(gl,
		vertSource(),
		fragSource(t),
	)
	require.NoError(t, err)
	assert.Equal(t, 3, gl.Live())

	program.Delete(gl)
	assert.Zero(t, gl.Live())
	assert.Zero(t, program.Handle)
	assert.Empty(t, program.Shaders)

	// deleting twice is harmless
	program.Delete(gl)
	assert.NoError(t, glutils.CheckError(gl))
}

func TestNewShaderSourceFromTemplate(t *testing.T) {
	src := fragSource(t)
	assert.Equal(t, glutils.FragmentShader, src.Stage())
	assert.Contains(t, src.Source(), "precision mediump float;")
	assert.NotContains(t, src.Source(), "{{")

	_, err := glutils.NewShaderSourceFromTemplate("bad", "{{.Oops", glutils.VertexShader, nil)
	assert.Error(t, err)
}

func TestShaderStageString(t *testing.T) {
	assert.Equal(t, "vertex", glutils.VertexShader.String())
	assert.Equal(t, "fragment", glutils.FragmentShader.String())
	assert.Equal(t, "ShaderStage(0x1)", glutils.ShaderStage(1).String())
}
