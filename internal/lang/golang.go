package lang

import (
	"github.com/smacker/go-tree-sitter/golang"

	"github.com/phobologic/astdistance/internal/ast"
)

func init() {
	Languages["go"] = &Language{
		Name:       "go",
		Aliases:    []string{"golang"},
		Extensions: []string{".go"},
		lang:       golang.GetLanguage(),
		Table:      goTable,
		ByParent: map[string]map[string]Mapping{
			"var_declaration": {
				"block": {ast.Statement, "let"},
			},
			"const_declaration": {
				"block": {ast.Statement, "let"},
			},
		},
		Transparent: set(
			"type_declaration", "import_spec_list", "field_declaration_list",
			"expression_list", "literal_element", "const_spec", "var_spec",
			"parenthesized_type",
		),
		Ignore: set("escape_sequence", "empty_statement"),
		NameTypes: set("identifier", "field_identifier", "type_identifier",
			"package_identifier"),
	}
}

var goTable = map[string]Mapping{
	"source_file": {ast.Module, "file"},

	// declarations
	"package_clause":     {ast.Declaration, "package"},
	"import_declaration": {ast.Declaration, "imports"},
	"import_spec":        {ast.Declaration, "import"},
	"const_declaration":  {ast.Declaration, "const"},
	"var_declaration":    {ast.Declaration, "const"},

	// functions
	"function_declaration": {ast.Function, "function"},
	"method_declaration":   {ast.Function, "method"},
	"func_literal":         {ast.Function, "lambda"},
	"method_spec":          {ast.Function, "signature"},
	"method_elem":          {ast.Function, "signature"},

	// types
	"type_spec":                  {ast.Type, "class"},
	"type_alias":                 {ast.Declaration, "alias"},
	"struct_type":                {ast.Type, "struct"},
	"interface_type":             {ast.Type, "interface"},
	"type_identifier":            {ast.Type, "ref"},
	"pointer_type":               {ast.Type, "ref"},
	"slice_type":                 {ast.Type, "ref"},
	"array_type":                 {ast.Type, "ref"},
	"map_type":                   {ast.Type, "ref"},
	"channel_type":               {ast.Type, "ref"},
	"function_type":              {ast.Type, "ref"},
	"qualified_type":             {ast.Type, "ref"},
	"generic_type":               {ast.Type, "ref"},
	"type_arguments":             {ast.Type, "args"},
	"type_parameter_list":        {ast.Type, "params"},
	"type_parameter_declaration": {ast.Type, "param"},

	// fields and parameters
	"field_declaration":              {ast.Field, "field"},
	"parameter_list":                 {ast.Field, "params"},
	"parameter_declaration":          {ast.Field, "param"},
	"variadic_parameter_declaration": {ast.Field, "param"},
	"keyed_element":                  {ast.Field, "init"},

	// statements
	"block":                       {ast.Statement, "block"},
	"short_var_declaration":       {ast.Statement, "let"},
	"expression_statement":        {ast.Statement, "expr"},
	"if_statement":                {ast.Statement, "if"},
	"for_statement":               {ast.Statement, "loop"},
	"expression_switch_statement": {ast.Statement, "match"},
	"type_switch_statement":       {ast.Statement, "match"},
	"select_statement":            {ast.Statement, "match"},
	"expression_case":             {ast.Statement, "case"},
	"type_case":                   {ast.Statement, "case"},
	"default_case":                {ast.Statement, "case"},
	"communication_case":          {ast.Statement, "case"},
	"return_statement":            {ast.Statement, "return"},
	"break_statement":             {ast.Statement, "break"},
	"continue_statement":          {ast.Statement, "continue"},
	"assignment_statement":        {ast.Statement, "assign"},
	"inc_statement":               {ast.Statement, "assign"},
	"dec_statement":               {ast.Statement, "assign"},
	"go_statement":                {ast.Statement, "expr"},
	"defer_statement":             {ast.Statement, "expr"},
	"labeled_statement":           {ast.Statement, "expr"},
	"goto_statement":              {ast.Statement, "break"},
	"send_statement":              {ast.Statement, "expr"},

	// expressions
	"call_expression":            {ast.Expression, "call"},
	"argument_list":              {ast.Expression, "args"},
	"selector_expression":        {ast.Expression, "member"},
	"binary_expression":          {ast.Expression, "binary"},
	"unary_expression":           {ast.Expression, "unary"},
	"index_expression":           {ast.Expression, "index"},
	"slice_expression":           {ast.Expression, "index"},
	"parenthesized_expression":   {ast.Expression, "paren"},
	"type_assertion_expression":  {ast.Expression, "cast"},
	"type_conversion_expression": {ast.Expression, "cast"},
	"composite_literal":          {ast.Expression, "construct"},
	"literal_value":              {ast.Expression, "fields"},
	"range_clause":               {ast.Expression, "range"},
	"for_clause":                 {ast.Expression, "range"},
	"identifier":                 {ast.Expression, "identifier"},
	"field_identifier":           {ast.Expression, "identifier"},
	"package_identifier":         {ast.Expression, "identifier"},
	"label_name":                 {ast.Expression, "identifier"},
	"blank_identifier":           {ast.Expression, "identifier"},

	// literals
	"interpreted_string_literal": {ast.Literal, "string"},
	"raw_string_literal":         {ast.Literal, "string"},
	"int_literal":                {ast.Literal, "number"},
	"float_literal":              {ast.Literal, "number"},
	"imaginary_literal":          {ast.Literal, "number"},
	"rune_literal":               {ast.Literal, "char"},
	"true":                       {ast.Literal, "bool"},
	"false":                      {ast.Literal, "bool"},
	"nil":                        {ast.Literal, "null"},
	"iota":                       {ast.Literal, "number"},

	"comment": {ast.Comment, "line"},
}
