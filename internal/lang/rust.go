package lang

import (
	"strings"

	"github.com/smacker/go-tree-sitter/rust"

	"github.com/phobologic/astdistance/internal/ast"
)

func init() {
	Languages["rust"] = &Language{
		Name:       "rust",
		Aliases:    []string{"rs"},
		Extensions: []string{".rs"},
		lang:       rust.GetLanguage(),
		Table:      rustTable,
		Transparent: set(
			"expression_statement_list",
		),
		Ignore: set(
			"attribute_item", "inner_attribute_item", "visibility_modifier",
			"mutable_specifier", "lifetime", "escape_sequence", "function_modifiers",
			"empty_statement", "shebang", "label",
		),
		NameTypes:  set("identifier", "type_identifier", "field_identifier"),
		MarkerCall: rustMarkerCall,
	}
}

var rustTable = map[string]Mapping{
	"source_file": {ast.Module, "file"},

	// declarations
	"use_declaration":          {ast.Declaration, "import"},
	"extern_crate_declaration": {ast.Declaration, "import"},
	"mod_item":                 {ast.Declaration, "module"},
	"const_item":               {ast.Declaration, "const"},
	"static_item":              {ast.Declaration, "const"},
	"type_item":                {ast.Declaration, "alias"},
	"impl_item":                {ast.Declaration, "impl"},
	"declaration_list":         {ast.Declaration, "body"},
	"foreign_mod_item":         {ast.Declaration, "module"},

	// functions
	"function_item":           {ast.Function, "function"},
	"function_signature_item": {ast.Function, "signature"},
	"closure_expression":      {ast.Function, "lambda"},
	"macro_definition":        {ast.Function, "macro"},
	"closure_parameters":      {ast.Field, "params"},

	// types
	"struct_item":                    {ast.Type, "struct"},
	"enum_item":                      {ast.Type, "enum"},
	"union_item":                     {ast.Type, "struct"},
	"trait_item":                     {ast.Type, "interface"},
	"field_declaration_list":         {ast.Type, "body"},
	"ordered_field_declaration_list": {ast.Type, "body"},
	"enum_variant_list":              {ast.Type, "body"},
	"type_identifier":                {ast.Type, "ref"},
	"primitive_type":                 {ast.Type, "ref"},
	"generic_type":                   {ast.Type, "ref"},
	"scoped_type_identifier":         {ast.Type, "ref"},
	"reference_type":                 {ast.Type, "ref"},
	"pointer_type":                   {ast.Type, "ref"},
	"tuple_type":                     {ast.Type, "ref"},
	"array_type":                     {ast.Type, "ref"},
	"function_type":                  {ast.Type, "ref"},
	"abstract_type":                  {ast.Type, "ref"},
	"dynamic_type":                   {ast.Type, "ref"},
	"bounded_type":                   {ast.Type, "ref"},
	"never_type":                     {ast.Type, "ref"},
	"unit_type":                      {ast.Type, "ref"},
	"type_arguments":                 {ast.Type, "args"},
	"type_parameters":                {ast.Type, "params"},
	"type_parameter":                 {ast.Type, "param"},
	"constrained_type_parameter":     {ast.Type, "param"},
	"trait_bounds":                   {ast.Type, "bounds"},
	"where_clause":                   {ast.Type, "bounds"},

	// fields and parameters
	"field_declaration":            {ast.Field, "field"},
	"enum_variant":                 {ast.Field, "variant"},
	"parameters":                   {ast.Field, "params"},
	"parameter":                    {ast.Field, "param"},
	"self_parameter":               {ast.Field, "param"},
	"variadic_parameter":           {ast.Field, "param"},
	"field_initializer":            {ast.Field, "init"},
	"shorthand_field_initializer":  {ast.Field, "init"},
	"base_field_initializer":       {ast.Field, "init"},
	"field_initializer_list":       {ast.Expression, "fields"},
	"associated_type":              {ast.Field, "alias"},

	// statements
	"block":                      {ast.Statement, "block"},
	"let_declaration":            {ast.Statement, "let"},
	"expression_statement":       {ast.Statement, "expr"},
	"if_expression":              {ast.Statement, "if"},
	"if_let_expression":          {ast.Statement, "if"},
	"let_condition":              {ast.Expression, "pattern"},
	"let_chain":                  {ast.Expression, "binary"},
	"else_clause":                {ast.Statement, "else"},
	"match_expression":           {ast.Statement, "match"},
	"match_block":                {ast.Statement, "block"},
	"match_arm":                  {ast.Statement, "case"},
	"last_match_arm":             {ast.Statement, "case"},
	"match_pattern":              {ast.Expression, "pattern"},
	"while_expression":           {ast.Statement, "loop"},
	"while_let_expression":       {ast.Statement, "loop"},
	"loop_expression":            {ast.Statement, "loop"},
	"for_expression":             {ast.Statement, "loop"},
	"return_expression":          {ast.Statement, "return"},
	"break_expression":           {ast.Statement, "break"},
	"continue_expression":        {ast.Statement, "continue"},
	"assignment_expression":      {ast.Statement, "assign"},
	"compound_assignment_expr":   {ast.Statement, "assign"},
	"unsafe_block":               {ast.Statement, "block"},
	"async_block":                {ast.Statement, "block"},
	"const_block":                {ast.Statement, "block"},

	// expressions
	"call_expression":            {ast.Expression, "call"},
	"arguments":                  {ast.Expression, "args"},
	"field_expression":           {ast.Expression, "member"},
	"binary_expression":          {ast.Expression, "binary"},
	"unary_expression":           {ast.Expression, "unary"},
	"reference_expression":       {ast.Expression, "unary"},
	"index_expression":           {ast.Expression, "index"},
	"tuple_expression":           {ast.Expression, "tuple"},
	"array_expression":           {ast.Expression, "array"},
	"struct_expression":          {ast.Expression, "construct"},
	"range_expression":           {ast.Expression, "range"},
	"type_cast_expression":       {ast.Expression, "cast"},
	"try_expression":             {ast.Expression, "try"},
	"await_expression":           {ast.Expression, "await"},
	"macro_invocation":           {ast.Expression, "macro"},
	"parenthesized_expression":   {ast.Expression, "paren"},
	"generic_function":           {ast.Expression, "identifier"},
	"scoped_identifier":          {ast.Expression, "identifier"},
	"identifier":                 {ast.Expression, "identifier"},
	"field_identifier":           {ast.Expression, "identifier"},
	"shorthand_field_identifier": {ast.Expression, "identifier"},
	"self":                       {ast.Expression, "identifier"},
	"super":                      {ast.Expression, "identifier"},
	"crate":                      {ast.Expression, "identifier"},
	"metavariable":               {ast.Expression, "identifier"},
	"token_tree":                 {ast.Expression, "tokens"},
	"tuple_pattern":              {ast.Expression, "pattern"},
	"struct_pattern":             {ast.Expression, "pattern"},
	"tuple_struct_pattern":       {ast.Expression, "pattern"},
	"slice_pattern":              {ast.Expression, "pattern"},
	"ref_pattern":                {ast.Expression, "pattern"},
	"or_pattern":                 {ast.Expression, "pattern"},
	"captured_pattern":           {ast.Expression, "pattern"},
	"range_pattern":              {ast.Expression, "pattern"},
	"field_pattern":              {ast.Expression, "pattern"},
	"remaining_field_pattern":    {ast.Expression, "pattern"},
	"mut_pattern":                {ast.Expression, "pattern"},
	"reference_pattern":          {ast.Expression, "pattern"},

	// literals
	"string_literal":     {ast.Literal, "string"},
	"raw_string_literal": {ast.Literal, "string"},
	"char_literal":       {ast.Literal, "char"},
	"integer_literal":    {ast.Literal, "number"},
	"float_literal":      {ast.Literal, "number"},
	"boolean_literal":    {ast.Literal, "bool"},
	"unit_expression":    {ast.Literal, "unit"},

	// comments
	"line_comment":  {ast.Comment, "line"},
	"block_comment": {ast.Comment, "block"},
}

var rustMarkerMacros = map[string]string{
	"todo":          "todo!",
	"unimplemented": "unimplemented!",
}

func rustMarkerCall(n Native) (string, bool) {
	if n.Type() != "macro_invocation" {
		return "", false
	}
	for _, c := range n.Children() {
		if c.Type() == "identifier" || c.Type() == "scoped_identifier" {
			name := c.Text()
			if i := strings.LastIndex(name, "::"); i >= 0 {
				name = name[i+2:]
			}
			tok, ok := rustMarkerMacros[name]
			return tok, ok
		}
	}
	return "", false
}
