package graph

import (
	"strings"

	tree_sitter "github.com/tree-sitter/go-tree-sitter"
)

// category groups tree-sitter kinds that share a labelling rule.
type category int

const (
	catOther category = iota
	catFunction
	catClass
	catAssignment
	catImport
	catImportFrom
	catCall
	catReturn
	catConditional
	catFor
	catWhile
	catLoop
	catTry
	catExcept
	catCatch
)

// categories maps tree-sitter node kinds across every registered grammar onto
// a labelling category. Kinds not listed keep their raw name.
var categories = map[string]category{
	// functions
	"function_definition":  catFunction, // python
	"function_declaration": catFunction, // go, javascript, typescript
	"method_declaration":   catFunction, // go
	"method_definition":    catFunction, // javascript, typescript
	"function_expression":  catFunction,
	"arrow_function":       catFunction,
	"func_literal":         catFunction,
	"function_item":        catFunction, // rust
	"closure_expression":   catFunction,

	// classes and type definitions
	"class_definition":      catClass, // python
	"class_declaration":     catClass,
	"interface_declaration": catClass,
	"enum_declaration":      catClass,
	"type_spec":             catClass, // go
	"struct_item":           catClass, // rust
	"enum_item":             catClass,
	"trait_item":            catClass,

	// assignments and declarations
	"assignment":            catAssignment, // python
	"augmented_assignment":  catAssignment,
	"assignment_expression": catAssignment,
	"variable_declarator":   catAssignment,
	"short_var_declaration": catAssignment, // go
	"var_spec":              catAssignment,
	"const_spec":            catAssignment,
	"let_declaration":       catAssignment, // rust

	// imports
	"import_statement":      catImport,
	"import_declaration":    catImport, // go
	"use_declaration":       catImport, // rust
	"import_from_statement": catImportFrom,

	"call":            catCall, // python
	"call_expression": catCall,

	"return_statement":  catReturn,
	"return_expression": catReturn,

	"if_statement":  catConditional,
	"if_expression": catConditional,

	"for_statement":    catFor,
	"for_in_statement": catFor,
	"for_expression":   catFor,
	"while_statement":  catWhile,
	"while_expression": catWhile,
	"do_statement":     catWhile,
	"loop_expression":  catLoop,

	"try_statement": catTry,
	"except_clause": catExcept,
	"catch_clause":  catCatch,
}

// describe returns the kind and label for a grammar node.
func describe(node *tree_sitter.Node, source []byte) (Kind, string) {
	raw := node.Kind()
	switch categories[raw] {
	case catFunction:
		return KindFunction, "def " + nameOf(node, source) + "(...)"
	case catClass:
		return KindClass, "class " + nameOf(node, source) + "(...)"
	case catAssignment:
		return KindVariable, assignTargets(node, source) + " = ..."
	case catImport:
		return KindImport, "import " + strings.Join(importNames(node, source), ", ")
	case catImportFrom:
		return KindImport, "from " + fromModule(node, source) + " import ..."
	case catCall:
		return KindCall, callLabel(node, source)
	case catReturn:
		return KindReturn, "return ..."
	case catConditional:
		return KindConditional, "if ...:"
	case catFor:
		return KindLoop, "for ... in ...:"
	case catWhile:
		return KindLoop, "while ...:"
	case catLoop:
		return KindLoop, "loop:"
	case catTry:
		return KindTry, "try:"
	case catExcept:
		return KindExceptionHandler, "except ...:"
	case catCatch:
		return KindExceptionHandler, "catch ...:"
	default:
		return Kind(raw), raw
	}
}

func nameOf(node *tree_sitter.Node, source []byte) string {
	if n := node.ChildByFieldName("name"); n != nil {
		return n.Utf8Text(source)
	}
	return "<anonymous>"
}

// assignTargets names the assigned identifiers, or "..." when the target is
// anything other than plain names (attributes, subscripts, destructuring).
func assignTargets(node *tree_sitter.Node, source []byte) string {
	var target *tree_sitter.Node
	for _, field := range []string{"left", "name", "pattern"} {
		if target = node.ChildByFieldName(field); target != nil {
			break
		}
	}
	if target == nil {
		return "..."
	}
	if isIdentifier(target) {
		return target.Utf8Text(source)
	}
	switch target.Kind() {
	case "expression_list", "pattern_list":
		names := make([]string, 0, target.NamedChildCount())
		for i := uint(0); i < target.NamedChildCount(); i++ {
			c := target.NamedChild(i)
			if c == nil || !isIdentifier(c) {
				return "..."
			}
			names = append(names, c.Utf8Text(source))
		}
		if len(names) > 0 {
			return strings.Join(names, ", ")
		}
	}
	return "..."
}

func isIdentifier(n *tree_sitter.Node) bool {
	return n.Kind() == "identifier"
}

func importNames(node *tree_sitter.Node, source []byte) []string {
	var names []string
	for i := uint(0); i < node.NamedChildCount(); i++ {
		c := node.NamedChild(i)
		if c == nil {
			continue
		}
		switch c.Kind() {
		case "dotted_name", "identifier", "scoped_identifier":
			names = append(names, c.Utf8Text(source))
		case "aliased_import":
			if n := c.ChildByFieldName("name"); n != nil {
				names = append(names, n.Utf8Text(source))
			}
		case "string", "interpreted_string_literal", "raw_string_literal":
			names = append(names, strings.Trim(c.Utf8Text(source), "\"'`"))
		case "import_spec":
			if p := c.ChildByFieldName("path"); p != nil {
				names = append(names, strings.Trim(p.Utf8Text(source), "\"`"))
			}
		case "import_spec_list":
			names = append(names, importNames(c, source)...)
		}
	}
	return names
}

// fromModule returns the module of a from-import without its relative-import
// dots; a bare relative import yields ".".
func fromModule(node *tree_sitter.Node, source []byte) string {
	m := node.ChildByFieldName("module_name")
	if m == nil {
		return "."
	}
	if name := strings.TrimLeft(m.Utf8Text(source), "."); name != "" {
		return name
	}
	return "."
}

func callLabel(node *tree_sitter.Node, source []byte) string {
	fn := node.ChildByFieldName("function")
	if fn == nil {
		return "call(...)"
	}
	if isIdentifier(fn) {
		return fn.Utf8Text(source) + "(...)"
	}
	var member *tree_sitter.Node
	switch fn.Kind() {
	case "attribute": // python
		member = fn.ChildByFieldName("attribute")
	case "member_expression": // javascript, typescript
		member = fn.ChildByFieldName("property")
	case "selector_expression", "field_expression": // go, rust
		member = fn.ChildByFieldName("field")
	case "scoped_identifier":
		member = fn.ChildByFieldName("name")
	}
	if member == nil {
		return "call(...)"
	}
	return "..." + member.Utf8Text(source) + "(...)"
}
