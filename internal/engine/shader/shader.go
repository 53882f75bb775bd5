// Package shader compiles GLSL programs and exposes them as gpu.Program.
package shader

import (
	"embed"
	"errors"
	"fmt"

	"github.com/go-gl/gl/v4.1-core/gl"
	"github.com/go-gl/mathgl/mgl32"
	"go.uber.org/zap"

	"github.com/Faultbox/scenedemo/internal/engine/asset"
	"github.com/Faultbox/scenedemo/internal/logger"
)

//go:embed shaders/*.vert shaders/*.frag
var builtin embed.FS

// Built-in program names.
const (
	Lit       = "lit"
	Shadow    = "shadow"
	Skybox    = "skybox"
	Billboard = "billboard"
)

// ErrCompile reports a GLSL compile or link failure. The driver log is part
// of the wrapped message.
var ErrCompile = errors.New("shader compile")

// BuiltinSource returns the embedded vertex and fragment sources for name.
func BuiltinSource(name string) (vert, frag string, err error) {
	v, err := builtin.ReadFile("shaders/" + name + ".vert")
	if err != nil {
		return "", "", fmt.Errorf("builtin shader %q: %w", name, err)
	}
	f, err := builtin.ReadFile("shaders/" + name + ".frag")
	if err != nil {
		return "", "", fmt.Errorf("builtin shader %q: %w", name, err)
	}
	return string(v), string(f), nil
}

// CompileProgram compiles vertex and fragment shaders and links them into a program.
// Returns the program ID or an error if compilation/linking fails.
func CompileProgram(vertexSrc, fragmentSrc string) (uint32, error) {
	vertShader, err := compileShader(vertexSrc, gl.VERTEX_SHADER, "vertex")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(vertShader)

	fragShader, err := compileShader(fragmentSrc, gl.FRAGMENT_SHADER, "fragment")
	if err != nil {
		return 0, err
	}
	defer gl.DeleteShader(fragShader)

	program := gl.CreateProgram()
	gl.AttachShader(program, vertShader)
	gl.AttachShader(program, fragShader)
	gl.LinkProgram(program)

	var status int32
	gl.GetProgramiv(program, gl.LINK_STATUS, &status)
	if status == gl.FALSE {
		log := infoLog(program, gl.GetProgramiv, gl.GetProgramInfoLog)
		gl.DeleteProgram(program)
		return 0, fmt.Errorf("%w: link: %s", ErrCompile, log)
	}

	return program, nil
}

func compileShader(source string, shaderType uint32, stage string) (uint32, error) {
	shader := gl.CreateShader(shaderType)
	csource, free := gl.Strs(source + "\x00")
	gl.ShaderSource(shader, 1, csource, nil)
	free()
	gl.CompileShader(shader)

	var status int32
	gl.GetShaderiv(shader, gl.COMPILE_STATUS, &status)
	if status == gl.FALSE {
		log := infoLog(shader, gl.GetShaderiv, gl.GetShaderInfoLog)
		gl.DeleteShader(shader)
		return 0, fmt.Errorf("%w: %s shader: %s", ErrCompile, stage, log)
	}

	return shader, nil
}

func infoLog(
	obj uint32,
	getiv func(uint32, uint32, *int32),
	getLog func(uint32, int32, *int32, *uint8),
) string {
	var logLen int32
	getiv(obj, gl.INFO_LOG_LENGTH, &logLen)
	if logLen <= 1 {
		return "(no log)"
	}
	buf := make([]byte, logLen)
	getLog(obj, logLen, nil, &buf[0])
	return string(buf[:logLen-1])
}

// Program is a linked GLSL program. Uniform locations are looked up once and
// cached; writes go through glProgramUniform* so the program need not be bound.
type Program struct {
	id   uint32
	name string

	vertPath string
	fragPath string

	locations map[string]int32
	log       *zap.Logger
}

// New compiles a program from source strings.
func New(name, vertexSrc, fragmentSrc string) (*Program, error) {
	id, err := CompileProgram(vertexSrc, fragmentSrc)
	if err != nil {
		return nil, asset.Wrap("shader", name, err)
	}
	return newProgram(id, name), nil
}

// NewBuiltin compiles one of the embedded programs.
func NewBuiltin(name string) (*Program, error) {
	vert, frag, err := BuiltinSource(name)
	if err != nil {
		return nil, asset.Wrap("shader", name, err)
	}
	return New(name, vert, frag)
}

// Load reads and compiles a program from two files. A missing file or a
// compile/link failure is returned as an *asset.Error.
func Load(vertPath, fragPath string) (*Program, error) {
	id, err := compileFiles(vertPath, fragPath)
	if err != nil {
		return nil, err
	}
	p := newProgram(id, vertPath+"+"+fragPath)
	p.vertPath, p.fragPath = vertPath, fragPath
	return p, nil
}

func compileFiles(vertPath, fragPath string) (uint32, error) {
	vert, err := asset.ReadFile("shader", vertPath)
	if err != nil {
		return 0, err
	}
	frag, err := asset.ReadFile("shader", fragPath)
	if err != nil {
		return 0, err
	}
	id, err := CompileProgram(string(vert), string(frag))
	if err != nil {
		return 0, asset.Wrap("shader", vertPath+"+"+fragPath, err)
	}
	return id, nil
}

func newProgram(id uint32, name string) *Program {
	p := &Program{
		id:        id,
		name:      name,
		locations: make(map[string]int32),
		log:       logger.Named("shader").With(zap.String("program", name)),
	}
	p.log.Debug("program linked", zap.Uint32("id", id))
	return p
}

// ID returns the GL program handle.
func (p *Program) ID() uint32 { return p.id }

// Name returns the program's name or its source paths.
func (p *Program) Name() string { return p.name }

// Paths returns the source files of a program created with Load.
func (p *Program) Paths() (vert, frag string, ok bool) {
	return p.vertPath, p.fragPath, p.vertPath != ""
}

// Reload recompiles a file-backed program. On failure the current program
// stays in use and the error is returned.
func (p *Program) Reload() error {
	if p.vertPath == "" {
		return fmt.Errorf("program %s has no source files", p.name)
	}
	id, err := compileFiles(p.vertPath, p.fragPath)
	if err != nil {
		return err
	}
	gl.DeleteProgram(p.id)
	p.id = id
	clear(p.locations)
	p.log.Info("program reloaded", zap.Uint32("id", id))
	return nil
}

func (p *Program) Use()   { gl.UseProgram(p.id) }
func (p *Program) Unuse() { gl.UseProgram(0) }

// location returns the cached location of name. Inactive uniforms resolve to
// -1, which GL ignores on write; they are reported once.
func (p *Program) location(name string) int32 {
	if loc, ok := p.locations[name]; ok {
		return loc
	}
	loc := gl.GetUniformLocation(p.id, gl.Str(name+"\x00"))
	if loc < 0 {
		p.log.Warn("uniform not active", zap.String("uniform", name))
	}
	p.locations[name] = loc
	return loc
}

func (p *Program) SetMat4(name string, m mgl32.Mat4) {
	gl.ProgramUniformMatrix4fv(p.id, p.location(name), 1, false, &m[0])
}

func (p *Program) SetVec4(name string, v mgl32.Vec4) {
	gl.ProgramUniform4f(p.id, p.location(name), v[0], v[1], v[2], v[3])
}

func (p *Program) SetVec3(name string, v mgl32.Vec3) {
	gl.ProgramUniform3f(p.id, p.location(name), v[0], v[1], v[2])
}

func (p *Program) SetFloat(name string, f float32) {
	gl.ProgramUniform1f(p.id, p.location(name), f)
}

func (p *Program) SetInt(name string, i int32) {
	gl.ProgramUniform1i(p.id, p.location(name), i)
}

// Delete frees the GL program.
func (p *Program) Delete() {
	if p.id != 0 {
		gl.DeleteProgram(p.id)
		p.id = 0
	}
}
