// Package ast presents tree-sitter JavaScript/TypeScript syntax trees through
// the ESTree vocabulary (CallExpression, MemberExpression, JSXOpeningElement,
// ...) so that matching code does not depend on grammar-specific node kinds
// and field names.
package ast

import (
	"html"

	ts "github.com/tree-sitter/go-tree-sitter"
)

// Normalized node types. Kinds without an entry here keep their raw
// tree-sitter kind as their type.
const (
	TypeProgram                = "Program"
	TypeCallExpression         = "CallExpression"
	TypeNewExpression          = "NewExpression"
	TypeMemberExpression       = "MemberExpression"
	TypeIdentifier             = "Identifier"
	TypeLiteral                = "Literal"
	TypeTemplateLiteral        = "TemplateLiteral"
	TypeObjectExpression       = "ObjectExpression"
	TypeArrayExpression        = "ArrayExpression"
	TypeProperty               = "Property"
	TypeSpreadElement          = "SpreadElement"
	TypePropertyDefinition     = "PropertyDefinition"
	TypeClassDeclaration       = "ClassDeclaration"
	TypeArrowFunction          = "ArrowFunctionExpression"
	TypeParenthesized          = "ParenthesizedExpression"
	TypeTSAsExpression         = "TSAsExpression"
	TypeTSSatisfiesExpression  = "TSSatisfiesExpression"
	TypeTSNonNullExpression    = "TSNonNullExpression"
	TypeJSXElement             = "JSXElement"
	TypeJSXFragment            = "JSXFragment"
	TypeJSXOpeningElement      = "JSXOpeningElement"
	TypeJSXClosingElement      = "JSXClosingElement"
	TypeJSXAttribute           = "JSXAttribute"
	TypeJSXSpreadAttribute     = "JSXSpreadAttribute"
	TypeJSXExpressionContainer = "JSXExpressionContainer"
	TypeJSXText                = "JSXText"
	TypeComment                = "Comment"
	TypeError                  = "ERROR"
)

var kindToType = map[string]string{
	"program":                       TypeProgram,
	"call_expression":               TypeCallExpression,
	"new_expression":                TypeNewExpression,
	"member_expression":             TypeMemberExpression,
	"subscript_expression":          TypeMemberExpression,
	"identifier":                    TypeIdentifier,
	"property_identifier":           TypeIdentifier,
	"private_property_identifier":   TypeIdentifier,
	"shorthand_property_identifier": TypeProperty,
	"string":                        TypeLiteral,
	"number":                        TypeLiteral,
	"true":                          TypeLiteral,
	"false":                         TypeLiteral,
	"null":                          TypeLiteral,
	"regex":                         TypeLiteral,
	"template_string":               TypeTemplateLiteral,
	"object":                        TypeObjectExpression,
	"array":                         TypeArrayExpression,
	"pair":                          TypeProperty,
	"spread_element":                TypeSpreadElement,
	"field_definition":              TypePropertyDefinition,
	"public_field_definition":       TypePropertyDefinition,
	"class_declaration":             TypeClassDeclaration,
	"class":                         TypeClassDeclaration,
	"arrow_function":                TypeArrowFunction,
	"parenthesized_expression":      TypeParenthesized,
	"as_expression":                 TypeTSAsExpression,
	"satisfies_expression":          TypeTSSatisfiesExpression,
	"non_null_expression":           TypeTSNonNullExpression,
	"jsx_element":                   TypeJSXElement,
	"jsx_fragment":                  TypeJSXFragment,
	"jsx_opening_element":           TypeJSXOpeningElement,
	"jsx_self_closing_element":      TypeJSXOpeningElement,
	"jsx_closing_element":           TypeJSXClosingElement,
	"jsx_attribute":                 TypeJSXAttribute,
	"jsx_expression":                TypeJSXExpressionContainer,
	"jsx_text":                      TypeJSXText,
	"comment":                       TypeComment,
	"html_comment":                  TypeComment,
}

// Node is a read-only view of a tree-sitter node together with the source it
// was parsed from. The zero Node stands for "absent" and every accessor on it
// returns another zero Node or an empty value.
type Node struct {
	n   *ts.Node
	src []byte
}

// Wrap pairs a tree-sitter node with its source. A nil node yields the zero Node.
func Wrap(n *ts.Node, src []byte) Node {
	if n == nil {
		return Node{}
	}
	return Node{n: n, src: src}
}

// Root wraps the root node of a parsed tree.
func Root(tree *ts.Tree, src []byte) Node {
	return Wrap(tree.RootNode(), src)
}

// IsZero reports whether the node is absent.
func (n Node) IsZero() bool {
	return n.n == nil
}

// Raw returns the underlying tree-sitter node (nil for the zero Node).
func (n Node) Raw() *ts.Node {
	return n.n
}

// Kind returns the raw tree-sitter kind.
func (n Node) Kind() string {
	if n.n == nil {
		return ""
	}
	return n.n.Kind()
}

// Type returns the normalized ESTree type name.
func (n Node) Type() string {
	if n.n == nil {
		return ""
	}
	kind := n.n.Kind()
	if kind == "jsx_expression" && n.isSpreadAttribute() {
		return TypeJSXSpreadAttribute
	}
	if t, ok := kindToType[kind]; ok {
		return t
	}
	return kind
}

// Text returns the source text covered by the node.
func (n Node) Text() string {
	if n.n == nil {
		return ""
	}
	return n.n.Utf8Text(n.src)
}

// Position returns the 1-based line and column of the node start.
func (n Node) Position() (line, column int) {
	if n.n == nil {
		return 0, 0
	}
	p := n.n.StartPosition()
	return int(p.Row) + 1, int(p.Column) + 1
}

// Parent returns the enclosing node.
func (n Node) Parent() Node {
	if n.n == nil {
		return Node{}
	}
	return Wrap(n.n.Parent(), n.src)
}

// Field returns the child stored under a grammar field name.
func (n Node) Field(name string) Node {
	if n.n == nil {
		return Node{}
	}
	return Wrap(n.n.ChildByFieldName(name), n.src)
}

// NamedChildren returns the named children, comments excluded.
func (n Node) NamedChildren() []Node {
	if n.n == nil {
		return nil
	}
	count := n.n.NamedChildCount()
	out := make([]Node, 0, count)
	for i := uint(0); i < count; i++ {
		child := Wrap(n.n.NamedChild(i), n.src)
		if child.IsZero() || child.Type() == TypeComment {
			continue
		}
		out = append(out, child)
	}
	return out
}

// Callee returns the function of a CallExpression or the constructor of a
// NewExpression.
func (n Node) Callee() Node {
	switch n.Kind() {
	case "call_expression":
		return n.Field("function")
	case "new_expression":
		return n.Field("constructor")
	}
	return Node{}
}

// Arguments returns the argument expressions of a call. Tagged templates
// (t`...`) have no argument list and yield nil.
func (n Node) Arguments() []Node {
	args := n.Field("arguments")
	if args.Kind() != "arguments" {
		return nil
	}
	return args.NamedChildren()
}

// Object returns the object of a MemberExpression.
func (n Node) Object() Node {
	return n.Field("object")
}

// Property returns the property of a MemberExpression. For computed access
// (a[b]) the index expression is returned.
func (n Node) Property() Node {
	switch n.Kind() {
	case "member_expression":
		return n.Field("property")
	case "subscript_expression":
		return n.Field("index")
	}
	return Node{}
}

// Computed reports whether a MemberExpression uses bracket access.
func (n Node) Computed() bool {
	return n.Kind() == "subscript_expression"
}

// Optional reports whether a call or member access uses optional chaining.
func (n Node) Optional() bool {
	return !n.Field("optional_chain").IsZero()
}

// Properties returns the members of an ObjectExpression: Property,
// SpreadElement and method nodes.
func (n Node) Properties() []Node {
	if n.Kind() != "object" {
		return nil
	}
	return n.NamedChildren()
}

// Key returns the key of a Property.
func (n Node) Key() Node {
	switch n.Kind() {
	case "pair":
		return n.Field("key")
	case "shorthand_property_identifier":
		return n
	}
	return Node{}
}

// KeyName returns the static name of a Property key: identifiers, string
// literals and numbers. Computed keys ([expr]) have no static name.
func (n Node) KeyName() (string, bool) {
	key := n.Key()
	switch key.Kind() {
	case "property_identifier", "identifier", "shorthand_property_identifier",
		"private_property_identifier", "number":
		return key.Text(), true
	case "string":
		return key.StringValue()
	}
	return "", false
}

// Value returns the value of a Property. Shorthand properties have no
// literal value and yield the zero Node.
func (n Node) Value() Node {
	if n.Kind() == "pair" {
		return n.Field("value")
	}
	return Node{}
}

// Name returns the tag name of a JSXOpeningElement (including member names
// such as Foo.Bar), the attribute name of a JSXAttribute, or the text of an
// Identifier.
func (n Node) Name() string {
	switch n.Kind() {
	case "jsx_opening_element", "jsx_self_closing_element", "jsx_closing_element":
		return n.Field("name").Text()
	case "jsx_element":
		return n.OpeningElement().Name()
	case "jsx_attribute":
		children := n.NamedChildren()
		if len(children) == 0 {
			return ""
		}
		return children[0].Text()
	case "identifier", "property_identifier", "shorthand_property_identifier",
		"private_property_identifier", "type_identifier":
		return n.Text()
	}
	return ""
}

// OpeningElement returns the opening tag of a JSXElement. A self-closing
// element is its own opening element.
func (n Node) OpeningElement() Node {
	switch n.Kind() {
	case "jsx_element":
		if open := n.Field("open_tag"); !open.IsZero() {
			return open
		}
		for _, child := range n.NamedChildren() {
			if child.Kind() == "jsx_opening_element" {
				return child
			}
		}
	case "jsx_opening_element", "jsx_self_closing_element":
		return n
	}
	return Node{}
}

// Attributes returns the JSXAttribute and JSXSpreadAttribute nodes of a JSX
// opening element.
func (n Node) Attributes() []Node {
	open := n.OpeningElement()
	if open.IsZero() {
		return nil
	}
	var attrs []Node
	for _, child := range open.NamedChildren() {
		switch child.Type() {
		case TypeJSXAttribute, TypeJSXSpreadAttribute:
			attrs = append(attrs, child)
		}
	}
	return attrs
}

// AttributeValue returns the value of a JSXAttribute, or the zero Node for a
// bare boolean attribute (<Foo disabled/>).
func (n Node) AttributeValue() Node {
	if n.Kind() != "jsx_attribute" {
		return Node{}
	}
	children := n.NamedChildren()
	if len(children) < 2 {
		return Node{}
	}
	return children[len(children)-1]
}

// Expression returns the expression inside a JSXExpressionContainer or the
// argument of a spread.
func (n Node) Expression() Node {
	switch n.Kind() {
	case "jsx_expression":
		children := n.NamedChildren()
		if len(children) == 0 {
			return Node{}
		}
		return children[0]
	case "spread_element":
		children := n.NamedChildren()
		if len(children) == 0 {
			return Node{}
		}
		return children[0]
	}
	return Node{}
}

// Unwrap strips parentheses, TypeScript casts (as, satisfies, !) and JSX
// expression containers around an expression.
func (n Node) Unwrap() Node {
	for {
		switch n.Kind() {
		case "parenthesized_expression", "as_expression", "satisfies_expression", "non_null_expression":
			children := n.NamedChildren()
			if len(children) == 0 {
				return n
			}
			n = children[0]
		case "jsx_expression":
			if n.isSpreadAttribute() {
				return n
			}
			inner := n.Expression()
			if inner.IsZero() {
				return n
			}
			n = inner
		default:
			return n
		}
	}
}

// StringValue returns the static string value of a node: a string literal,
// a template literal without substitutions, or either of those behind
// wrappers. JSX attribute strings are HTML-entity decoded as in JSX;
// JavaScript strings have their escape sequences decoded.
func (n Node) StringValue() (string, bool) {
	n = n.Unwrap()
	switch n.Kind() {
	case "string":
		raw := n.Text()
		if len(raw) < 2 {
			return "", false
		}
		body := raw[1 : len(raw)-1]
		if n.Parent().Kind() == "jsx_attribute" {
			return html.UnescapeString(body), true
		}
		return DecodeString(body)
	case "template_string":
		for _, child := range n.NamedChildren() {
			if child.Kind() == "template_substitution" {
				return "", false
			}
		}
		raw := n.Text()
		if len(raw) < 2 {
			return "", false
		}
		return DecodeTemplate(raw[1 : len(raw)-1])
	}
	return "", false
}

// isSpreadAttribute reports whether a jsx_expression is a {...props} spread
// inside an opening tag.
func (n Node) isSpreadAttribute() bool {
	switch n.Parent().Kind() {
	case "jsx_opening_element", "jsx_self_closing_element":
	default:
		return false
	}
	for _, child := range n.NamedChildren() {
		if child.Kind() == "spread_element" {
			return true
		}
	}
	// Older grammars emit the spread as "..." plus expression.
	text := n.Text()
	for i := 1; i < len(text); i++ {
		switch text[i] {
		case ' ', '\t', '\n', '\r':
			continue
		case '.':
			return len(text) > i+2 && text[i+1] == '.' && text[i+2] == '.'
		}
		return false
	}
	return false
}
