package extractor

import (
	"errors"
	"fmt"
	"os"
	"sort"

	"gopkg.in/yaml.v3"
)

// RuleKind selects how a JSX component carries its translation.
type RuleKind int

const (
	// RulePair reads the key and the default message from two attributes:
	// <FormattedMessage id="k" defaultMessage="m"/>.
	RulePair RuleKind = iota
	// RuleDescriptor reads a descriptor object from one attribute:
	// <LocalizedInput placeholder={{id: "k", defaultMessage: "m"}}/>.
	RuleDescriptor
)

func (k RuleKind) String() string {
	if k == RuleDescriptor {
		return "descriptor"
	}
	return "pair"
}

// Rule describes where a component keeps a translation.
type Rule struct {
	Kind RuleKind
	// ID and Default name the attributes of a RulePair rule. Default may be
	// empty, in which case the key is recorded with an empty message.
	ID      string
	Default string
	// Attr names the descriptor attribute of a RuleDescriptor rule.
	Attr string
}

// PairRule returns a rule reading the key from idAttr and the message from defaultAttr.
func PairRule(idAttr, defaultAttr string) Rule {
	return Rule{Kind: RulePair, ID: idAttr, Default: defaultAttr}
}

// DescriptorRule returns a rule reading a {id, defaultMessage} object from attr.
func DescriptorRule(attr string) Rule {
	return Rule{Kind: RuleDescriptor, Attr: attr}
}

// RuleSet is an immutable table from JSX component name to its rules. It is
// safe for concurrent use.
type RuleSet struct {
	components map[string][]Rule
}

// NewRuleSet validates and copies components into a RuleSet. Every rule of a
// component must have the same kind.
func NewRuleSet(components map[string][]Rule) (*RuleSet, error) {
	rs := &RuleSet{components: make(map[string][]Rule, len(components))}
	for name, rules := range components {
		if name == "" {
			return nil, errors.New("component name must not be empty")
		}
		if len(rules) == 0 {
			return nil, fmt.Errorf("component %s: no rules", name)
		}
		for i, r := range rules {
			if r.Kind != rules[0].Kind {
				return nil, fmt.Errorf("component %s: mixes %s and %s rules", name, rules[0].Kind, r.Kind)
			}
			switch r.Kind {
			case RulePair:
				if r.ID == "" {
					return nil, fmt.Errorf("component %s: rule %d has no id attribute", name, i)
				}
			case RuleDescriptor:
				if r.Attr == "" {
					return nil, fmt.Errorf("component %s: rule %d has no descriptor attribute", name, i)
				}
			default:
				return nil, fmt.Errorf("component %s: rule %d has unknown kind %d", name, i, r.Kind)
			}
		}
		rs.components[name] = append([]Rule(nil), rules...)
	}
	return rs, nil
}

// DefaultRuleSet returns the components used by the Mattermost webapp and
// mobile apps.
func DefaultRuleSet() *RuleSet {
	pair := []Rule{PairRule("id", "defaultMessage")}
	rs, err := NewRuleSet(map[string][]Rule{
		"FormattedText":            pair,
		"FormattedMessage":         pair,
		"FormattedHTMLMessage":     pair,
		"FormattedMarkdownMessage": pair,
		"FormattedMarkdownText":    pair,
		"FormattedAdminHeader":     pair,
		"LocalizedInput":           {DescriptorRule("placeholder")},
		"LocalizedIcon":            {DescriptorRule("title")},
	})
	if err != nil {
		panic(err)
	}
	return rs
}

// Lookup returns a copy of the rules for a component. Unknown components
// have no rules.
func (rs *RuleSet) Lookup(component string) ([]Rule, bool) {
	if rs == nil {
		return nil, false
	}
	rules, ok := rs.components[component]
	if !ok {
		return nil, false
	}
	return append([]Rule(nil), rules...), true
}

// Components returns the configured component names in lexical order.
func (rs *RuleSet) Components() []string {
	if rs == nil {
		return nil
	}
	names := make([]string, 0, len(rs.components))
	for name := range rs.components {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Len returns the number of configured components.
func (rs *RuleSet) Len() int {
	if rs == nil {
		return 0
	}
	return len(rs.components)
}

// With returns a new RuleSet with other's components added; other wins on
// a shared component name.
func (rs *RuleSet) With(other *RuleSet) *RuleSet {
	merged := &RuleSet{components: make(map[string][]Rule, rs.Len()+other.Len())}
	if rs != nil {
		for name, rules := range rs.components {
			merged.components[name] = rules
		}
	}
	if other != nil {
		for name, rules := range other.components {
			merged.components[name] = rules
		}
	}
	return merged
}

type rulesFile struct {
	// Extend adds the file's components to the defaults instead of
	// replacing them.
	Extend     bool                   `yaml:"extend"`
	Components map[string][]ruleEntry `yaml:"components"`
}

type ruleEntry struct {
	ID         string `yaml:"id"`
	Default    string `yaml:"default"`
	Descriptor string `yaml:"descriptor"`
}

// ParseRuleSet reads a YAML rule table:
//
//	extend: true
//	components:
//	  FormattedMessage: [{id: id, default: defaultMessage}]
//	  LocalizedInput: [{descriptor: placeholder}]
func ParseRuleSet(data []byte) (*RuleSet, error) {
	var file rulesFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse rules: %w", err)
	}
	if len(file.Components) == 0 {
		return nil, errors.New("rules define no components")
	}

	components := make(map[string][]Rule, len(file.Components))
	for name, entries := range file.Components {
		rules := make([]Rule, 0, len(entries))
		for i, e := range entries {
			switch {
			case e.Descriptor != "" && (e.ID != "" || e.Default != ""):
				return nil, fmt.Errorf("component %s: rule %d sets both descriptor and id/default", name, i)
			case e.Descriptor != "":
				rules = append(rules, DescriptorRule(e.Descriptor))
			default:
				rules = append(rules, PairRule(e.ID, e.Default))
			}
		}
		components[name] = rules
	}

	rs, err := NewRuleSet(components)
	if err != nil {
		return nil, err
	}
	if file.Extend {
		return DefaultRuleSet().With(rs), nil
	}
	return rs, nil
}

// LoadRuleSet reads a YAML rule table from path.
func LoadRuleSet(path string) (*RuleSet, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read rules file: %w", err)
	}
	rs, err := ParseRuleSet(data)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return rs, nil
}
