// Package evaluation grades an event detector against a labeled corpus of
// conversations, both on detection and on calendar readiness.
package evaluation

import (
	_ "embed"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

var (
	// ErrCaseNotFound is returned by Select for an unknown case name.
	ErrCaseNotFound = errors.New("test case not found")
	// ErrConflictingFilters is returned by Select when both filters are set.
	ErrConflictingFilters = errors.New("difficulty and name are mutually exclusive")
)

// DefaultMinConfidence applies when an expected event omits min_confidence.
const DefaultMinConfidence = 0.5

// Difficulty tiers cases by how explicit their event language is.
type Difficulty string

const (
	Easy    Difficulty = "EASY"
	Medium  Difficulty = "MEDIUM"
	Hard    Difficulty = "HARD"
	Extreme Difficulty = "EXTREME"
)

// Difficulties lists the tiers in report order.
var Difficulties = []Difficulty{Easy, Medium, Hard, Extreme}

// ParseDifficulty accepts a tier name in any case.
func ParseDifficulty(value string) (Difficulty, error) {
	d := Difficulty(strings.ToUpper(strings.TrimSpace(value)))
	for _, known := range Difficulties {
		if d == known {
			return d, nil
		}
	}
	return "", fmt.Errorf("unknown difficulty %q", value)
}

// ExpectedEvent is one labeled event a case should produce.
type ExpectedEvent struct {
	Title         string  `json:"title"`
	HasDateTime   bool    `json:"has_date_time"`
	HasLocation   bool    `json:"has_location"`
	MinConfidence float64 `json:"min_confidence"`
}

// Case is one labeled conversation.
type Case struct {
	Name         string          `json:"name"`
	Conversation string          `json:"conversation"`
	Expected     []ExpectedEvent `json:"expected"`
	Difficulty   Difficulty      `json:"difficulty"`
	Description  string          `json:"description"`
}

// Corpus is an immutable, ordered set of cases.
type Corpus struct {
	cases  []Case
	byName map[string]int
}

//go:embed corpus.yaml
var corpusYAML []byte

type yamlExpected struct {
	Title         string   `yaml:"title"`
	HasDateTime   bool     `yaml:"has_date_time"`
	HasLocation   bool     `yaml:"has_location"`
	MinConfidence *float64 `yaml:"min_confidence"`
}

type yamlCase struct {
	Name         string         `yaml:"name"`
	Difficulty   string         `yaml:"difficulty"`
	Description  string         `yaml:"description"`
	Conversation string         `yaml:"conversation"`
	Expected     []yamlExpected `yaml:"expected"`
}

type yamlCorpus struct {
	Cases []yamlCase `yaml:"cases"`
}

// LoadCorpus parses the embedded corpus.
func LoadCorpus() (*Corpus, error) {
	return ParseCorpus(corpusYAML)
}

// MustLoadCorpus is LoadCorpus for package-level initialization.
func MustLoadCorpus() *Corpus {
	c, err := LoadCorpus()
	if err != nil {
		panic(err)
	}
	return c
}

// ParseCorpus decodes a YAML corpus and checks names and tiers.
func ParseCorpus(data []byte) (*Corpus, error) {
	var raw yamlCorpus
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("failed to parse corpus: %w", err)
	}

	cases := make([]Case, 0, len(raw.Cases))
	for _, rc := range raw.Cases {
		c, err := rc.toCase()
		if err != nil {
			return nil, err
		}
		cases = append(cases, c)
	}
	return NewCorpus(cases)
}

// NewCorpus builds a corpus from cases. Names must be unique.
func NewCorpus(cases []Case) (*Corpus, error) {
	c := &Corpus{
		cases:  make([]Case, len(cases)),
		byName: make(map[string]int, len(cases)),
	}
	copy(c.cases, cases)
	for i, tc := range c.cases {
		if tc.Name == "" {
			return nil, fmt.Errorf("case %d has no name", i)
		}
		if _, dup := c.byName[tc.Name]; dup {
			return nil, fmt.Errorf("duplicate case name %q", tc.Name)
		}
		c.byName[tc.Name] = i
	}
	return c, nil
}

func (rc yamlCase) toCase() (Case, error) {
	difficulty, err := ParseDifficulty(rc.Difficulty)
	if err != nil {
		return Case{}, fmt.Errorf("case %q: %w", rc.Name, err)
	}

	expected := make([]ExpectedEvent, 0, len(rc.Expected))
	for _, re := range rc.Expected {
		minConfidence := DefaultMinConfidence
		if re.MinConfidence != nil {
			minConfidence = *re.MinConfidence
		}
		expected = append(expected, ExpectedEvent{
			Title:         re.Title,
			HasDateTime:   re.HasDateTime,
			HasLocation:   re.HasLocation,
			MinConfidence: minConfidence,
		})
	}

	return Case{
		Name:         rc.Name,
		Conversation: rc.Conversation,
		Expected:     expected,
		Difficulty:   difficulty,
		Description:  rc.Description,
	}, nil
}

// All returns every case in corpus order.
func (c *Corpus) All() []Case {
	out := make([]Case, len(c.cases))
	copy(out, c.cases)
	return out
}

// Len is the number of cases.
func (c *Corpus) Len() int {
	return len(c.cases)
}

// ByDifficulty returns the cases of one tier in corpus order.
func (c *Corpus) ByDifficulty(d Difficulty) []Case {
	var out []Case
	for _, tc := range c.cases {
		if tc.Difficulty == d {
			out = append(out, tc)
		}
	}
	return out
}

// ByName looks up a case.
func (c *Corpus) ByName(name string) (Case, bool) {
	i, ok := c.byName[name]
	if !ok {
		return Case{}, false
	}
	return c.cases[i], true
}

// Select resolves a run filter: a tier, a single case name, or neither for
// every case. The returned label is the canonical filter, empty for all.
func (c *Corpus) Select(difficulty, name string) ([]Case, string, error) {
	switch {
	case difficulty != "" && name != "":
		return nil, "", ErrConflictingFilters
	case name != "":
		tc, ok := c.ByName(name)
		if !ok {
			return nil, "", fmt.Errorf("%w: %s", ErrCaseNotFound, name)
		}
		return []Case{tc}, name, nil
	case difficulty != "":
		d, err := ParseDifficulty(difficulty)
		if err != nil {
			return nil, "", err
		}
		return c.ByDifficulty(d), string(d), nil
	default:
		return c.All(), "", nil
	}
}
