package declare

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
)

// Class is one class declaration recovered from source.
type Class struct {
	Name      string
	Parent    string
	Line      int
	Methods   []string
	Accessors []Accessor
	Fields    []Assign
	Ctor      *Constructor
	// Skipped lists static members, which are not part of the shape.
	Skipped []string
}

// Accessor is a getter and/or setter pair backed by the data member
// "_<Name>".
type Accessor struct {
	Name string
	Get  bool
	Set  bool
}

// Backing returns the data member the accessor reads and writes.
func (a Accessor) Backing() string {
	return "_" + a.Name
}

// Constructor captures the parts of a constructor body that can be
// replayed: the super call and this.<field> assignments.
type Constructor struct {
	Params   []string
	HasSuper bool
	Super    []Expr
	Assigns  []Assign
}

// Assign sets the instance member Name to Value.
type Assign struct {
	Name  string
	Value Expr
}

// Expr is either a constructor parameter reference (Param >= 0) or a
// literal value. Expressions that are neither evaluate to nil.
type Expr struct {
	Param int
	Value any
}

// Literal returns an Expr holding v.
func Literal(v any) Expr {
	return Expr{Param: -1, Value: v}
}

// Eval resolves e against the constructor arguments.
func (e Expr) Eval(args []any) any {
	if e.Param < 0 {
		return e.Value
	}
	if e.Param < len(args) {
		return args[e.Param]
	}
	return nil
}

// Parse extracts the class declarations in src, which is written in lang
// ("javascript" or "typescript"), in source order.
func Parse(ctx context.Context, src []byte, lang string) ([]*Class, error) {
	grammar, ok := ParserForLanguage(lang)
	if !ok {
		return nil, fmt.Errorf("declare: unsupported language %q", lang)
	}

	parser := sitter.NewParser()
	defer parser.Close()
	parser.SetLanguage(grammar)

	tree, err := parser.ParseCtx(ctx, nil, src)
	if err != nil {
		return nil, fmt.Errorf("declare: parse: %w", err)
	}
	defer tree.Close()

	p := &classParser{src: src}
	p.walk(tree.RootNode())
	return p.classes, nil
}

type classParser struct {
	src     []byte
	classes []*Class
}

func (p *classParser) text(n *sitter.Node) string {
	return n.Content(p.src)
}

func (p *classParser) walk(n *sitter.Node) {
	if n == nil {
		return
	}
	switch n.Type() {
	case "class_declaration", "abstract_class_declaration":
		if cls := p.class(n); cls != nil {
			p.classes = append(p.classes, cls)
		}
		return
	}
	for i := 0; i < int(n.NamedChildCount()); i++ {
		p.walk(n.NamedChild(i))
	}
}

func (p *classParser) class(n *sitter.Node) *Class {
	name := n.ChildByFieldName("name")
	body := n.ChildByFieldName("body")
	if name == nil || body == nil {
		return nil
	}
	cls := &Class{Name: p.text(name), Line: int(n.StartPoint().Row) + 1}

	for i := 0; i < int(n.NamedChildCount()); i++ {
		if child := n.NamedChild(i); child.Type() == "class_heritage" {
			cls.Parent = p.heritage(child)
		}
	}

	accessors := make(map[string]int)
	for i := 0; i < int(body.NamedChildCount()); i++ {
		member := body.NamedChild(i)
		switch member.Type() {
		case "method_definition":
			p.method(cls, member, accessors)
		case "field_definition", "public_field_definition":
			p.field(cls, member)
		}
	}
	return cls
}

// heritage returns the extended class name. JavaScript puts the expression
// directly under class_heritage; TypeScript wraps it in an extends_clause.
func (p *classParser) heritage(n *sitter.Node) string {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		child := n.NamedChild(i)
		switch child.Type() {
		case "extends_clause":
			if v := child.ChildByFieldName("value"); v != nil {
				return p.text(v)
			}
			if child.NamedChildCount() > 0 {
				return p.text(child.NamedChild(0))
			}
		case "implements_clause":
		default:
			return p.text(child)
		}
	}
	return ""
}

// modifiers reports the anonymous keyword tokens preceding a member name.
func modifiers(n *sitter.Node) (static bool, kind string) {
	for i := 0; i < int(n.ChildCount()); i++ {
		switch t := n.Child(i).Type(); {
		case strings.HasPrefix(t, "static"):
			static = true
			if strings.HasSuffix(t, "get") {
				kind = "get"
			}
		case t == "get" || t == "set":
			kind = t
		}
	}
	return static, kind
}

func (p *classParser) method(cls *Class, n *sitter.Node, accessors map[string]int) {
	nameNode := n.ChildByFieldName("name")
	if nameNode == nil {
		return
	}
	name := p.text(nameNode)
	static, kind := modifiers(n)
	if static {
		cls.Skipped = append(cls.Skipped, name)
		return
	}

	switch {
	case kind == "get" || kind == "set":
		idx, ok := accessors[name]
		if !ok {
			idx = len(cls.Accessors)
			accessors[name] = idx
			cls.Accessors = append(cls.Accessors, Accessor{Name: name})
		}
		if kind == "get" {
			cls.Accessors[idx].Get = true
		} else {
			cls.Accessors[idx].Set = true
		}
	case name == "constructor":
		cls.Ctor = p.constructor(n)
	default:
		cls.Methods = append(cls.Methods, name)
	}
}

func (p *classParser) field(cls *Class, n *sitter.Node) {
	nameNode := n.ChildByFieldName("property")
	if nameNode == nil {
		nameNode = n.ChildByFieldName("name")
	}
	if nameNode == nil {
		return
	}
	name := p.text(nameNode)
	if static, _ := modifiers(n); static {
		cls.Skipped = append(cls.Skipped, name)
		return
	}
	value := Literal(nil)
	if v := n.ChildByFieldName("value"); v != nil {
		value = p.expr(v, nil)
	}
	cls.Fields = append(cls.Fields, Assign{Name: name, Value: value})
}

func (p *classParser) constructor(n *sitter.Node) *Constructor {
	ctor := &Constructor{}
	if params := n.ChildByFieldName("parameters"); params != nil {
		for i := 0; i < int(params.NamedChildCount()); i++ {
			param := params.NamedChild(i)
			name := p.paramName(param)
			ctor.Params = append(ctor.Params, name)
			// TypeScript parameter properties assign themselves.
			if name != "" && hasChildOfType(param, "accessibility_modifier") {
				ctor.Assigns = append(ctor.Assigns, Assign{Name: name, Value: Expr{Param: i}})
			}
		}
	}

	body := n.ChildByFieldName("body")
	if body == nil {
		return ctor
	}
	for i := 0; i < int(body.NamedChildCount()); i++ {
		stmt := body.NamedChild(i)
		if stmt.Type() != "expression_statement" || stmt.NamedChildCount() == 0 {
			continue
		}
		expr := stmt.NamedChild(0)
		switch expr.Type() {
		case "call_expression":
			fn := expr.ChildByFieldName("function")
			if fn == nil || fn.Type() != "super" {
				continue
			}
			ctor.HasSuper = true
			if args := expr.ChildByFieldName("arguments"); args != nil {
				for j := 0; j < int(args.NamedChildCount()); j++ {
					ctor.Super = append(ctor.Super, p.expr(args.NamedChild(j), ctor.Params))
				}
			}
		case "assignment_expression":
			left := expr.ChildByFieldName("left")
			right := expr.ChildByFieldName("right")
			if left == nil || right == nil || left.Type() != "member_expression" {
				continue
			}
			obj := left.ChildByFieldName("object")
			prop := left.ChildByFieldName("property")
			if obj == nil || prop == nil || obj.Type() != "this" {
				continue
			}
			ctor.Assigns = append(ctor.Assigns, Assign{Name: p.text(prop), Value: p.expr(right, ctor.Params)})
		}
	}
	return ctor
}

func (p *classParser) paramName(n *sitter.Node) string {
	switch n.Type() {
	case "identifier":
		return p.text(n)
	case "assignment_pattern":
		if left := n.ChildByFieldName("left"); left != nil && left.Type() == "identifier" {
			return p.text(left)
		}
	case "required_parameter", "optional_parameter":
		if pat := n.ChildByFieldName("pattern"); pat != nil && pat.Type() == "identifier" {
			return p.text(pat)
		}
	case "rest_pattern":
		if n.NamedChildCount() > 0 {
			return p.text(n.NamedChild(0))
		}
	}
	return ""
}

func hasChildOfType(n *sitter.Node, typ string) bool {
	for i := 0; i < int(n.NamedChildCount()); i++ {
		if n.NamedChild(i).Type() == typ {
			return true
		}
	}
	return false
}

// expr evaluates a literal or resolves an identifier against params.
func (p *classParser) expr(n *sitter.Node, params []string) Expr {
	if n.Type() == "identifier" {
		name := p.text(n)
		for i, param := range params {
			if param == name {
				return Expr{Param: i}
			}
		}
		return Literal(nil)
	}
	v, _ := p.literal(n)
	return Literal(v)
}

func (p *classParser) literal(n *sitter.Node) (any, bool) {
	text := p.text(n)
	switch n.Type() {
	case "number":
		if i, err := strconv.ParseInt(strings.ReplaceAll(text, "_", ""), 0, 64); err == nil {
			return int(i), true
		}
		if f, err := strconv.ParseFloat(strings.ReplaceAll(text, "_", ""), 64); err == nil {
			return f, true
		}
	case "string":
		return unquote(text), true
	case "template_string":
		if n.NamedChildCount() == 0 || !hasChildOfType(n, "template_substitution") {
			return strings.Trim(text, "`"), true
		}
	case "true":
		return true, true
	case "false":
		return false, true
	case "null", "undefined":
		return nil, true
	case "parenthesized_expression":
		if n.NamedChildCount() == 1 {
			return p.literal(n.NamedChild(0))
		}
	case "unary_expression":
		op := n.ChildByFieldName("operator")
		arg := n.ChildByFieldName("argument")
		if op == nil || arg == nil || p.text(op) != "-" {
			break
		}
		switch v, ok := p.literal(arg); x := v.(type) {
		case int:
			return -x, ok
		case float64:
			return -x, ok
		}
	case "array":
		items := make([]any, 0, n.NamedChildCount())
		for i := 0; i < int(n.NamedChildCount()); i++ {
			v, _ := p.literal(n.NamedChild(i))
			items = append(items, v)
		}
		return items, true
	case "object":
		m := make(map[string]any)
		for i := 0; i < int(n.NamedChildCount()); i++ {
			pair := n.NamedChild(i)
			if pair.Type() != "pair" {
				continue
			}
			key := pair.ChildByFieldName("key")
			val := pair.ChildByFieldName("value")
			if key == nil || val == nil {
				continue
			}
			k := p.text(key)
			if key.Type() == "string" {
				k = unquote(k)
			}
			m[k], _ = p.literal(val)
		}
		return m, true
	}
	return nil, false
}

func unquote(s string) string {
	if len(s) >= 2 && s[0] == '"' {
		if u, err := strconv.Unquote(s); err == nil {
			return u
		}
	}
	if len(s) >= 2 {
		return s[1 : len(s)-1]
	}
	return s
}
