package extractor

import (
	"github.com/mattermost/mmjstool/pkg/ast"
)

// Matcher recognizes translatable shapes while a tree is walked and
// accumulates the matches of one file. A Matcher is not safe for concurrent
// use; create one per file.
type Matcher struct {
	rules  *RuleSet
	result TranslationMap
}

// NewMatcher creates a Matcher for the given JSX rules. A nil rules value
// disables JSX matching.
func NewMatcher(rules *RuleSet) *Matcher {
	return &Matcher{
		rules:  rules,
		result: make(TranslationMap),
	}
}

// Visitor returns the ast.Visitor that feeds the matcher.
func (m *Matcher) Visitor() ast.Visitor {
	return ast.Visitor{
		ast.TypeCallExpression:    m.MatchCall,
		ast.TypeJSXOpeningElement: m.MatchJSX,
	}
}

// Result returns the translations matched so far.
func (m *Matcher) Result() TranslationMap {
	return m.result
}

// Match walks root and returns everything it matched.
func (m *Matcher) Match(root ast.Node) TranslationMap {
	ast.Walk(root, m.Visitor())
	return m.result
}

func (m *Matcher) record(id, defaultMessage string) {
	m.result[id] = defaultMessage
}

// MatchCall handles a CallExpression. Calls are classified by the callee
// identifier or, for member calls such as intl.formatMessage, by the
// property name.
func (m *Matcher) MatchCall(call ast.Node) {
	name, bare := calleeName(call.Callee())
	if name == "" {
		return
	}

	args := call.Arguments()

	switch name {
	case "localizeMessage":
		if len(args) == 0 {
			return
		}
		if first := args[0].Unwrap(); first.Type() == ast.TypeObjectExpression {
			id, msg := readDescriptor(first)
			if id != "" {
				m.record(id, msg)
			}
			return
		}
		id, _ := args[0].StringValue()
		msg := ""
		if len(args) > 1 {
			msg, _ = args[1].StringValue()
		}
		if id != "" {
			m.record(id, msg)
		}

	case "localizeAndFormatMessage", "formatMessage":
		if len(args) == 0 {
			return
		}
		first := args[0].Unwrap()
		if first.Type() != ast.TypeObjectExpression {
			return
		}
		id, msg := readDescriptor(first)
		if id != "" {
			m.record(id, msg)
		}

	case "t":
		if !bare || len(args) == 0 {
			return
		}
		if id, ok := args[0].StringValue(); ok && id != "" {
			m.record(id, "")
		}

	case "defineMessages":
		if len(args) == 0 {
			return
		}
		messages := args[0].Unwrap()
		if messages.Type() != ast.TypeObjectExpression {
			return
		}
		for _, prop := range messages.Properties() {
			descriptor := prop.Value().Unwrap()
			if descriptor.Type() != ast.TypeObjectExpression {
				continue
			}
			m.recordComplete(descriptor)
		}

	case "defineMessage":
		if len(args) == 0 {
			return
		}
		if descriptor := args[0].Unwrap(); descriptor.Type() == ast.TypeObjectExpression {
			m.recordComplete(descriptor)
		}
	}
}

// recordComplete records a descriptor only when both fields are non-empty.
func (m *Matcher) recordComplete(descriptor ast.Node) {
	id, msg := readDescriptor(descriptor)
	if id != "" && msg != "" {
		m.record(id, msg)
	}
}

// MatchJSX handles a JSX opening or self-closing element.
func (m *Matcher) MatchJSX(element ast.Node) {
	rules, ok := m.rules.Lookup(element.Name())
	if !ok {
		return
	}

	attrs := element.Attributes()
	for _, rule := range rules {
		var id, msg string

		switch rule.Kind {
		case RulePair:
			for _, attr := range attrs {
				if attr.Type() != ast.TypeJSXAttribute {
					continue
				}
				switch attr.Name() {
				case rule.ID:
					id, _ = attr.AttributeValue().StringValue()
				case rule.Default:
					msg, _ = attr.AttributeValue().StringValue()
				}
			}
		case RuleDescriptor:
			for _, attr := range attrs {
				if attr.Type() != ast.TypeJSXAttribute || attr.Name() != rule.Attr {
					continue
				}
				descriptor := attr.AttributeValue().Unwrap()
				if descriptor.Type() != ast.TypeObjectExpression {
					continue
				}
				id, msg = readDescriptor(descriptor)
			}
		}

		if id != "" {
			m.record(id, msg)
		}
	}
}

// calleeName returns the name a call is classified by and whether the
// callee is a plain identifier.
func calleeName(callee ast.Node) (string, bool) {
	callee = callee.Unwrap()
	switch callee.Type() {
	case ast.TypeIdentifier:
		return callee.Text(), true
	case ast.TypeMemberExpression:
		if callee.Computed() {
			return "", false
		}
		prop := callee.Property()
		if prop.Type() != ast.TypeIdentifier {
			return "", false
		}
		return prop.Text(), false
	}
	return "", false
}

// readDescriptor reads the literal id and defaultMessage properties of an
// object expression. Missing or non-literal values read as "". Later
// duplicate keys win, as in JavaScript.
func readDescriptor(obj ast.Node) (id, defaultMessage string) {
	for _, prop := range obj.Properties() {
		if prop.Type() != ast.TypeProperty {
			continue
		}
		key, ok := prop.KeyName()
		if !ok {
			continue
		}
		switch key {
		case "id":
			id, _ = prop.Value().StringValue()
		case "defaultMessage":
			defaultMessage, _ = prop.Value().StringValue()
		}
	}
	return id, defaultMessage
}
