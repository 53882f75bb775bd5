package config

import (
	"errors"
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
)

// SceneConfig describes what the demo loads and animates.
type SceneConfig struct {
	Objects    []ObjectConfig    `yaml:"objects" toml:"objects"`
	Animations []AnimationConfig `yaml:"animations" toml:"animations"`
	Skybox     []string          `yaml:"skybox" toml:"skybox"` // +X, -X, +Y, -Y, +Z, -Z
	Billboards []BillboardConfig `yaml:"billboards" toml:"billboards"`
	Light      LightConfig       `yaml:"light" toml:"light"`

	// Dir is the directory relative asset paths resolve against: the
	// directory of the file the scene was read from.
	Dir string `yaml:"-" toml:"-"`
}

// ObjectConfig is one imported model or grouping node.
type ObjectConfig struct {
	Name        string          `yaml:"name" toml:"name"`
	Model       string          `yaml:"model" toml:"model"` // empty for a grouping node
	FlipUV      bool            `yaml:"flip_uv" toml:"flip_uv"`
	GenNormals  *bool           `yaml:"gen_normals" toml:"gen_normals"`
	GenUV       bool            `yaml:"gen_uv" toml:"gen_uv"`
	Position    [3]float32      `yaml:"position" toml:"position"`
	Orientation [3]float32      `yaml:"orientation" toml:"orientation"` // degrees
	Scale       *[3]float32     `yaml:"scale" toml:"scale"`
	Center      [3]float32      `yaml:"center" toml:"center"`
	Material    *[4]float32     `yaml:"material" toml:"material"` // r, g, b, shininess
	Textures    []TextureConfig `yaml:"textures" toml:"textures"`
	Children    []ObjectConfig  `yaml:"children" toml:"children"`
	CastsShadow *bool           `yaml:"casts_shadow" toml:"casts_shadow"`
}

// GenerateNormals defaults to true.
func (o ObjectConfig) GenerateNormals() bool {
	return o.GenNormals == nil || *o.GenNormals
}

// ShadowCaster defaults to true.
func (o ObjectConfig) ShadowCaster() bool {
	return o.CastsShadow == nil || *o.CastsShadow
}

// ScaleOrOne returns Scale, or unit scale when unset.
func (o ObjectConfig) ScaleOrOne() [3]float32 {
	if o.Scale == nil {
		return [3]float32{1, 1, 1}
	}
	return *o.Scale
}

// TextureConfig is an extra texture map attached to an object's mesh.
type TextureConfig struct {
	Path  string `yaml:"path" toml:"path"`
	Usage string `yaml:"usage" toml:"usage"`
}

// Animation kinds.
const (
	KindTranslation         = "translation"
	KindTranslationRotation = "translation_rotation"
	KindCompositeWobble     = "composite_wobble"
)

// AnimationConfig is one animation bound to a named object.
type AnimationConfig struct {
	Kind   string `yaml:"kind" toml:"kind"`
	Target string `yaml:"target" toml:"target"`
	// Parts are object names, or "name/i" for child i of an object. An
	// imported model's extra sub-meshes are its first children.
	Parts    []string   `yaml:"parts" toml:"parts"`
	Duration float32    `yaml:"duration" toml:"duration"`
	Move     [3]float32 `yaml:"move" toml:"move"`
	Rotate   [3]float32 `yaml:"rotate" toml:"rotate"` // degrees
	PartMove [3]float32 `yaml:"part_move" toml:"part_move"`
	// Group places the animation in its own animator; animators run
	// side by side.
	Group string `yaml:"group" toml:"group"`
}

// PartRef is a parsed composite part reference.
type PartRef struct {
	Object string
	Child  int // -1 for the object itself
}

// ParsePart parses "name" or "name/i".
func ParsePart(s string) (PartRef, error) {
	name, idx, found := strings.Cut(s, "/")
	if name == "" {
		return PartRef{}, fmt.Errorf("part %q: missing object name", s)
	}
	if !found {
		return PartRef{Object: name, Child: -1}, nil
	}
	i, err := strconv.Atoi(idx)
	if err != nil || i < 0 {
		return PartRef{}, fmt.Errorf("part %q: child index must be a non-negative integer", s)
	}
	return PartRef{Object: name, Child: i}, nil
}

// BillboardConfig is a camera-facing textured quad.
type BillboardConfig struct {
	Texture  string     `yaml:"texture" toml:"texture"`
	Position [3]float32 `yaml:"position" toml:"position"`
	Width    float32    `yaml:"width" toml:"width"`
	Height   float32    `yaml:"height" toml:"height"`
}

// LightConfig is the sun.
type LightConfig struct {
	Azimuth   float32    `yaml:"azimuth" toml:"azimuth"`     // degrees
	Elevation float32    `yaml:"elevation" toml:"elevation"` // degrees
	Ambient   [3]float32 `yaml:"ambient" toml:"ambient"`
	Diffuse   [3]float32 `yaml:"diffuse" toml:"diffuse"`
}

// Resolve returns path relative to the scene's directory.
func (s SceneConfig) Resolve(path string) string {
	if path == "" || filepath.IsAbs(path) || s.Dir == "" {
		return path
	}
	return filepath.Join(s.Dir, filepath.FromSlash(path))
}

// Validate checks names, references and durations.
func (s SceneConfig) Validate() error {
	var errs []error
	names := make(map[string]bool)
	var visit func(prefix string, objs []ObjectConfig)
	visit = func(prefix string, objs []ObjectConfig) {
		for i, o := range objs {
			where := fmt.Sprintf("%sobjects[%d]", prefix, i)
			if o.Name == "" {
				errs = append(errs, fmt.Errorf("%s: name is required", where))
			} else if names[o.Name] {
				errs = append(errs, fmt.Errorf("%s: duplicate object name %q", where, o.Name))
			} else if strings.Contains(o.Name, "/") {
				errs = append(errs, fmt.Errorf("%s: object name %q must not contain '/'", where, o.Name))
			}
			names[o.Name] = true
			visit(where+".", o.Children)
		}
	}
	visit("", s.Objects)

	for i, a := range s.Animations {
		where := fmt.Sprintf("animations[%d]", i)
		switch a.Kind {
		case KindTranslation, KindTranslationRotation, KindCompositeWobble:
		default:
			errs = append(errs, fmt.Errorf("%s: unknown kind %q", where, a.Kind))
		}
		if a.Duration <= 0 {
			errs = append(errs, fmt.Errorf("%s: duration %v must be positive", where, a.Duration))
		}
		if !names[a.Target] {
			errs = append(errs, fmt.Errorf("%s: unknown target %q", where, a.Target))
		}
		for _, p := range a.Parts {
			ref, err := ParsePart(p)
			if err != nil {
				errs = append(errs, fmt.Errorf("%s: %w", where, err))
			} else if !names[ref.Object] {
				errs = append(errs, fmt.Errorf("%s: unknown part %q", where, p))
			}
		}
	}

	if n := len(s.Skybox); n != 0 && n != 6 {
		errs = append(errs, fmt.Errorf("skybox needs 6 faces, got %d", n))
	}
	for i, b := range s.Billboards {
		if b.Texture == "" {
			errs = append(errs, fmt.Errorf("billboards[%d]: texture is required", i))
		}
		if b.Width <= 0 || b.Height <= 0 {
			errs = append(errs, fmt.Errorf("billboards[%d]: size %vx%v must be positive", i, b.Width, b.Height))
		}
	}
	return errors.Join(errs...)
}
