package lang

import (
	"github.com/smacker/go-tree-sitter/kotlin"

	"github.com/phobologic/astdistance/internal/ast"
)

func init() {
	Languages["kotlin"] = &Language{
		Name:       "kotlin",
		Aliases:    []string{"kt", "kts"},
		Extensions: []string{".kt", ".kts"},
		lang:       kotlin.GetLanguage(),
		Table:      kotlinTable,
		ByParent: map[string]map[string]Mapping{
			"property_declaration": {
				"statements":  {ast.Statement, "let"},
				"source_file": {ast.Declaration, "const"},
			},
		},
		RoleByToken: map[string]map[string]string{
			"jump_expression": {
				"return":   "return",
				"break":    "break",
				"continue": "continue",
				"throw":    "throw",
			},
			"class_declaration": {
				"interface": "interface",
			},
		},
		Transparent: set(
			"statements", "control_structure_body", "value_argument",
			"call_suffix", "navigation_suffix", "indexing_suffix",
			"type_projection", "annotated_lambda", "import_list",
			"delegation_specifiers", "class_parameters", "parenthesized_type",
			"type_reference",
		),
		Ignore: set(
			"modifiers", "annotation", "file_annotation", "shebang_line",
			"visibility_modifier", "label", "type_constraints",
			"escape_sequence", "member_modifier", "function_modifier",
			"inheritance_modifier", "parameter_modifiers", "class_modifier",
			"platform_modifier", "property_modifier", "variance_modifier",
			"reification_modifier", "use_site_target", "type_modifiers",
			"binding_pattern_kind", "wildcard_import",
		),
		NameTypes:  set("simple_identifier", "type_identifier"),
		MarkerCall: kotlinMarkerCall,
	}
}

var kotlinTable = map[string]Mapping{
	"source_file": {ast.Module, "file"},

	// declarations
	"package_header": {ast.Declaration, "package"},
	"import_header":  {ast.Declaration, "import"},
	"import_alias":   {ast.Declaration, "alias"},
	"type_alias":     {ast.Declaration, "alias"},

	// functions
	"function_declaration":  {ast.Function, "function"},
	"primary_constructor":   {ast.Function, "constructor"},
	"secondary_constructor": {ast.Function, "constructor"},
	"anonymous_initializer": {ast.Function, "init"},
	"lambda_literal":        {ast.Function, "lambda"},
	"anonymous_function":    {ast.Function, "lambda"},
	"getter":                {ast.Function, "accessor"},
	"setter":                {ast.Function, "accessor"},

	// types
	"class_declaration":        {ast.Type, "class"},
	"object_declaration":       {ast.Type, "object"},
	"companion_object":         {ast.Type, "object"},
	"class_body":               {ast.Type, "body"},
	"enum_class_body":          {ast.Type, "body"},
	"delegation_specifier":     {ast.Type, "ref"},
	"type_identifier":          {ast.Type, "ref"},
	"user_type":                {ast.Type, "ref"},
	"nullable_type":            {ast.Type, "ref"},
	"function_type":            {ast.Type, "ref"},
	"function_type_parameters": {ast.Type, "params"},
	"type_arguments":           {ast.Type, "args"},
	"type_parameters":          {ast.Type, "params"},
	"type_parameter":           {ast.Type, "param"},
	"type_constraint":          {ast.Type, "bounds"},

	// fields and parameters
	"property_declaration":       {ast.Field, "property"},
	"class_parameter":            {ast.Field, "field"},
	"enum_entry":                 {ast.Field, "variant"},
	"function_value_parameters":  {ast.Field, "params"},
	"parameter":                  {ast.Field, "param"},
	"lambda_parameters":          {ast.Field, "params"},
	"variable_declaration":       {ast.Expression, "pattern"},
	"multi_variable_declaration": {ast.Expression, "pattern"},
	"property_delegate":          {ast.Expression, "delegate"},

	// statements
	"function_body":       {ast.Statement, "block"},
	"block":               {ast.Statement, "block"},
	"if_expression":       {ast.Statement, "if"},
	"when_expression":     {ast.Statement, "match"},
	"when_entry":          {ast.Statement, "case"},
	"when_subject":        {ast.Expression, "subject"},
	"when_condition":      {ast.Expression, "pattern"},
	"for_statement":       {ast.Statement, "loop"},
	"while_statement":     {ast.Statement, "loop"},
	"do_while_statement":  {ast.Statement, "loop"},
	"jump_expression":     {ast.Statement, "return"},
	"assignment":          {ast.Statement, "assign"},
	"try_expression":      {ast.Statement, "try"},
	"catch_block":         {ast.Statement, "catch"},
	"finally_block":       {ast.Statement, "finally"},

	// expressions
	"call_expression":           {ast.Expression, "call"},
	"value_arguments":           {ast.Expression, "args"},
	"navigation_expression":     {ast.Expression, "member"},
	"callable_reference":        {ast.Expression, "member"},
	"additive_expression":       {ast.Expression, "binary"},
	"multiplicative_expression": {ast.Expression, "binary"},
	"comparison_expression":     {ast.Expression, "binary"},
	"equality_expression":       {ast.Expression, "binary"},
	"conjunction_expression":    {ast.Expression, "binary"},
	"disjunction_expression":    {ast.Expression, "binary"},
	"elvis_expression":          {ast.Expression, "binary"},
	"infix_expression":          {ast.Expression, "binary"},
	"check_expression":          {ast.Expression, "binary"},
	"range_expression":          {ast.Expression, "range"},
	"as_expression":             {ast.Expression, "cast"},
	"prefix_expression":         {ast.Expression, "unary"},
	"postfix_expression":        {ast.Expression, "unary"},
	"indexing_expression":       {ast.Expression, "index"},
	"parenthesized_expression":  {ast.Expression, "paren"},
	"collection_literal":        {ast.Expression, "array"},
	"object_literal":            {ast.Expression, "construct"},
	"constructor_invocation":    {ast.Expression, "call"},
	"spread_expression":         {ast.Expression, "unary"},
	"simple_identifier":         {ast.Expression, "identifier"},
	"identifier":                {ast.Expression, "identifier"},
	"this_expression":           {ast.Expression, "identifier"},
	"super_expression":          {ast.Expression, "identifier"},

	// literals
	"string_literal":            {ast.Literal, "string"},
	"line_string_literal":       {ast.Literal, "string"},
	"multi_line_string_literal": {ast.Literal, "string"},
	"character_literal":         {ast.Literal, "char"},
	"integer_literal":           {ast.Literal, "number"},
	"long_literal":              {ast.Literal, "number"},
	"hex_literal":               {ast.Literal, "number"},
	"bin_literal":               {ast.Literal, "number"},
	"real_literal":              {ast.Literal, "number"},
	"unsigned_literal":          {ast.Literal, "number"},
	"boolean_literal":           {ast.Literal, "bool"},
	"null_literal":              {ast.Literal, "null"},

	// comments
	"line_comment":      {ast.Comment, "line"},
	"multiline_comment": {ast.Comment, "block"},
	"comment":           {ast.Comment, "line"},
}

func kotlinMarkerCall(n Native) (string, bool) {
	if n.Type() != "call_expression" {
		return "", false
	}
	kids := n.Children()
	if len(kids) == 0 {
		return "", false
	}
	if callee := kids[0]; callee.Type() == "simple_identifier" && callee.Text() == "TODO" {
		return "TODO()", true
	}
	return "", false
}
