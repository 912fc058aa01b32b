package classify

import (
	"os"
	"sort"
	"strings"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Default thresholds.
const (
	DefaultMinDimension   = 100
	DefaultSquareMinRatio = 0.9
	DefaultSquareMaxRatio = 1.1
	DefaultSquareMaxBytes = 20000
	DefaultMinAspect      = 0.25
	DefaultMaxAspect      = 4.0
)

// Preset names.
const (
	PresetDefault = "default"
	PresetStrict  = "strict"
	PresetLenient = "lenient"
)

// defaultKeywords flag decorative or reference imagery that ends up in dish
// folders: logos, icons, flags, watermarks, Wikimedia boilerplate and
// typography or diagram assets.
var defaultKeywords = []string{
	"logo", "icon", "favicon", "flag", "watermark", "emblem", "coat_of_arms",
	"coat of arms", "crest", "badge", "sprite", "banner", "button", "avatar",
	"placeholder", "wikimedia", "commons", "wikipedia", "public domain",
	"cc-by", "creative commons", "diagram", "chart", "infographic",
	"locator_map", "map_of", "typography", "typeface", "lettering",
	"signature", "qrcode", "qr-code", "screenshot",
}

// strictExtraKeywords are added by the strict preset.
var strictExtraKeywords = []string{
	"clipart", "clip-art", "vector", "illustration", "cartoon", "drawing",
	"sticker", "stamp", "poster", "menu", "label", "packaging",
}

// Rules is the single table of classification heuristics. It can be loaded
// from YAML and versioned separately from code.
type Rules struct {
	Keywords       []string `yaml:"keywords" mapstructure:"keywords"`
	NonFoodFormats []string `yaml:"non_food_formats" mapstructure:"non_food_formats"`
	MinDimension   int      `yaml:"min_dimension" mapstructure:"min_dimension"`
	SquareMinRatio float64  `yaml:"square_min_ratio" mapstructure:"square_min_ratio"`
	SquareMaxRatio float64  `yaml:"square_max_ratio" mapstructure:"square_max_ratio"`
	SquareMaxBytes int64    `yaml:"square_max_bytes" mapstructure:"square_max_bytes"`
	MinAspect      float64  `yaml:"min_aspect" mapstructure:"min_aspect"`
	MaxAspect      float64  `yaml:"max_aspect" mapstructure:"max_aspect"`
}

// DefaultRules returns the default preset.
func DefaultRules() Rules {
	return Rules{
		Keywords:       append([]string(nil), defaultKeywords...),
		NonFoodFormats: []string{"svg", "ico"},
		MinDimension:   DefaultMinDimension,
		SquareMinRatio: DefaultSquareMinRatio,
		SquareMaxRatio: DefaultSquareMaxRatio,
		SquareMaxBytes: DefaultSquareMaxBytes,
		MinAspect:      DefaultMinAspect,
		MaxAspect:      DefaultMaxAspect,
	}
}

// Preset returns the named rule preset.
//   - default: the documented thresholds
//   - strict: more keywords, larger minimum size and small-file cutoff
//   - lenient: keyword and very-small rules only
func Preset(name string) (Rules, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", PresetDefault:
		return DefaultRules(), nil
	case PresetStrict:
		r := DefaultRules()
		r.Keywords = append(r.Keywords, strictExtraKeywords...)
		r.NonFoodFormats = append(r.NonFoodFormats, "gif")
		r.MinDimension = 200
		r.SquareMaxBytes = 50000
		r.MinAspect = 1.0 / 3.0
		r.MaxAspect = 3.0
		return r, nil
	case PresetLenient:
		r := DefaultRules()
		r.SquareMaxBytes = 0
		r.MinAspect = 0
		r.MaxAspect = 0
		return r, nil
	default:
		return Rules{}, eris.Errorf("classify: unknown preset %q", name)
	}
}

// LoadRules reads a YAML rules file. Fields absent from the file keep the
// values of base.
func LoadRules(path string, base Rules) (Rules, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Rules{}, eris.Wrapf(err, "classify: read rules %s", path)
	}
	r := base
	if err := yaml.Unmarshal(data, &r); err != nil {
		return Rules{}, eris.Wrapf(err, "classify: parse rules %s", path)
	}
	return r.normalized(), r.Validate()
}

// Overrides holds optional numeric threshold overrides from configuration.
// Zero values leave the rule unchanged.
type Overrides struct {
	ExtraKeywords  []string
	MinDimension   int
	SquareMaxBytes int64
	MinAspect      float64
	MaxAspect      float64
}

// WithOverrides returns a copy of r with non-zero overrides applied.
func (r Rules) WithOverrides(o Overrides) Rules {
	out := r
	out.Keywords = append(append([]string(nil), r.Keywords...), o.ExtraKeywords...)
	if o.MinDimension > 0 {
		out.MinDimension = o.MinDimension
	}
	if o.SquareMaxBytes > 0 {
		out.SquareMaxBytes = o.SquareMaxBytes
	}
	if o.MinAspect > 0 {
		out.MinAspect = o.MinAspect
	}
	if o.MaxAspect > 0 {
		out.MaxAspect = o.MaxAspect
	}
	return out.normalized()
}

// Validate checks threshold consistency.
func (r Rules) Validate() error {
	if r.MinDimension < 0 {
		return eris.New("classify: min_dimension must not be negative")
	}
	if r.SquareMaxBytes > 0 && r.SquareMinRatio > r.SquareMaxRatio {
		return eris.Errorf("classify: square ratio range [%g, %g] is empty", r.SquareMinRatio, r.SquareMaxRatio)
	}
	if r.MinAspect > 0 && r.MaxAspect > 0 && r.MinAspect >= r.MaxAspect {
		return eris.Errorf("classify: min_aspect %g must be below max_aspect %g", r.MinAspect, r.MaxAspect)
	}
	return nil
}

// normalized lower-cases, trims and dedupes keywords and formats.
func (r Rules) normalized() Rules {
	r.Keywords = lowerSet(r.Keywords)
	r.NonFoodFormats = lowerSet(r.NonFoodFormats)
	return r
}

func lowerSet(in []string) []string {
	seen := make(map[string]struct{}, len(in))
	out := make([]string, 0, len(in))
	for _, s := range in {
		s = strings.ToLower(strings.TrimSpace(s))
		if s == "" {
			continue
		}
		if _, ok := seen[s]; ok {
			continue
		}
		seen[s] = struct{}{}
		out = append(out, s)
	}
	sort.Strings(out)
	return out
}
