package prompt

import (
	"fmt"
	"math"
	"os"
	"sort"
	"strings"
	"text/template"

	"github.com/pookan/stockbot/models"
	"gopkg.in/yaml.v3"
)

const DefaultTemplate = "single-agent"

// Definition is one named prompt template.
type Definition struct {
	Description string `yaml:"description"`
	Body        string `yaml:"body"`
}

type templateFile struct {
	Templates map[string]Definition `yaml:"templates"`
}

// Data is the view every template renders against.
type Data struct {
	Request     models.AnalysisRequest
	Snapshot    *models.MarketSnapshot
	Indicators  models.IndicatorSet
	Technical   models.TechnicalSignals
	Fundamental models.FundamentalSignals
	Risk        models.RiskAssessment
	Regime      models.MarketRegime
	Anomaly     models.Anomaly
	Degraded    []string
}

// Price is the latest close.
func (d Data) Price() models.Reading {
	if last, ok := d.Snapshot.Last(); ok {
		return models.Value(last.Close)
	}
	return models.Insufficient()
}

// Change is the last daily change in percent.
func (d Data) Change() models.Reading {
	return d.Snapshot.ChangePercent()
}

// Builder renders the active template.
type Builder struct {
	set          *template.Template
	descriptions map[string]string
	active       string
}

// NewBuilder parses the built-in templates plus, when path is set, the
// YAML file that adds or overrides them. active must name one of them.
func NewBuilder(active, path string) (*Builder, error) {
	defs := make(map[string]Definition, len(builtins))
	for name, def := range builtins {
		defs[name] = def
	}

	if path != "" {
		loaded, err := loadFile(path)
		if err != nil {
			return nil, err
		}
		for name, def := range loaded {
			defs[name] = def
		}
	}

	set, err := template.New("partials").Funcs(funcs).Parse(partials)
	if err != nil {
		return nil, fmt.Errorf("parsing partials: %w", err)
	}

	descriptions := make(map[string]string, len(defs))
	for name, def := range defs {
		if strings.TrimSpace(def.Body) == "" {
			return nil, fmt.Errorf("template %q has an empty body", name)
		}
		if _, err := set.New(name).Parse(def.Body); err != nil {
			return nil, fmt.Errorf("parsing template %q: %w", name, err)
		}
		descriptions[name] = def.Description
	}

	if active == "" {
		active = DefaultTemplate
	}
	if _, ok := descriptions[active]; !ok {
		return nil, fmt.Errorf("unknown prompt template %q (available: %s)", active, strings.Join(sortedKeys(descriptions), ", "))
	}

	return &Builder{set: set, descriptions: descriptions, active: active}, nil
}

func loadFile(path string) (map[string]Definition, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading prompt templates: %w", err)
	}
	var file templateFile
	if err := yaml.Unmarshal(raw, &file); err != nil {
		return nil, fmt.Errorf("parsing prompt templates %s: %w", path, err)
	}
	return file.Templates, nil
}

// Active returns the selected template name.
func (b *Builder) Active() string { return b.active }

// Names lists every known template, sorted.
func (b *Builder) Names() []string { return sortedKeys(b.descriptions) }

// Description returns the one-line summary of a template.
func (b *Builder) Description(name string) string { return b.descriptions[name] }

// Render executes the active template.
func (b *Builder) Render(data Data) (string, error) {
	return b.RenderWith(b.active, data)
}

// RenderWith executes a named template.
func (b *Builder) RenderWith(name string, data Data) (string, error) {
	if data.Snapshot == nil {
		return "", fmt.Errorf("render %s: missing market snapshot", name)
	}
	var sb strings.Builder
	if err := b.set.ExecuteTemplate(&sb, name, data); err != nil {
		return "", fmt.Errorf("render %s: %w", name, err)
	}
	return strings.TrimSpace(sb.String()), nil
}

var funcs = template.FuncMap{
	"reading": func(r models.Reading, verb string) string { return r.Format(verb) },
	"num": func(v float64, verb string) string {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "n/a"
		}
		return fmt.Sprintf(verb, v)
	},
	"percent": func(v float64) string {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return "n/a"
		}
		return fmt.Sprintf("%.1f%%", v*100)
	},
	"money": Money,
	"join":  strings.Join,
}

// Money abbreviates large dollar amounts.
func Money(v float64) string {
	switch {
	case math.IsNaN(v) || math.IsInf(v, 0):
		return "n/a"
	case math.Abs(v) >= 1e12:
		return fmt.Sprintf("$%.2fT", v/1e12)
	case math.Abs(v) >= 1e9:
		return fmt.Sprintf("$%.2fB", v/1e9)
	case math.Abs(v) >= 1e6:
		return fmt.Sprintf("$%.2fM", v/1e6)
	default:
		return fmt.Sprintf("$%.0f", v)
	}
}

func sortedKeys(m map[string]string) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
