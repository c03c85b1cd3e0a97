package lang

import (
	"github.com/smacker/go-tree-sitter/python"

	"github.com/phobologic/astdistance/internal/ast"
)

func init() {
	Languages["python"] = &Language{
		Name:       "python",
		Aliases:    []string{"py"},
		Extensions: []string{".py"},
		lang:       python.GetLanguage(),
		Table:      pythonTable,
		Transparent: set(
			"decorated_definition", "expression_list", "pattern_list",
			"parenthesized_list_splat",
		),
		Ignore:    set("decorator", "escape_sequence", "line_continuation"),
		NameTypes: set("identifier"),
	}
}

var pythonTable = map[string]Mapping{
	"module": {ast.Module, "file"},

	// declarations
	"import_statement":        {ast.Declaration, "import"},
	"import_from_statement":   {ast.Declaration, "import"},
	"future_import_statement": {ast.Declaration, "import"},
	"dotted_name":             {ast.Expression, "identifier"},
	"aliased_import":          {ast.Declaration, "alias"},
	"global_statement":        {ast.Declaration, "const"},
	"nonlocal_statement":      {ast.Declaration, "const"},

	// functions and types
	"function_definition": {ast.Function, "function"},
	"lambda":              {ast.Function, "lambda"},
	"class_definition":    {ast.Type, "class"},
	"type":                {ast.Type, "ref"},
	"generic_type":        {ast.Type, "ref"},
	"type_parameter":      {ast.Type, "params"},

	// parameters
	"parameters":               {ast.Field, "params"},
	"lambda_parameters":        {ast.Field, "params"},
	"typed_parameter":          {ast.Field, "param"},
	"default_parameter":        {ast.Field, "param"},
	"typed_default_parameter":  {ast.Field, "param"},
	"list_splat_pattern":       {ast.Field, "param"},
	"dictionary_splat_pattern": {ast.Field, "param"},
	"keyword_argument":         {ast.Field, "init"},
	"pair":                     {ast.Field, "init"},

	// statements
	"block":                {ast.Statement, "block"},
	"expression_statement": {ast.Statement, "expr"},
	"assignment":           {ast.Statement, "assign"},
	"augmented_assignment": {ast.Statement, "assign"},
	"if_statement":         {ast.Statement, "if"},
	"elif_clause":          {ast.Statement, "else"},
	"else_clause":          {ast.Statement, "else"},
	"for_statement":        {ast.Statement, "loop"},
	"while_statement":      {ast.Statement, "loop"},
	"return_statement":     {ast.Statement, "return"},
	"break_statement":      {ast.Statement, "break"},
	"continue_statement":   {ast.Statement, "continue"},
	"raise_statement":      {ast.Statement, "throw"},
	"try_statement":        {ast.Statement, "try"},
	"except_clause":        {ast.Statement, "catch"},
	"finally_clause":       {ast.Statement, "finally"},
	"with_statement":       {ast.Statement, "block"},
	"with_clause":          {ast.Expression, "args"},
	"with_item":            {ast.Expression, "pattern"},
	"pass_statement":       {ast.Statement, "expr"},
	"assert_statement":     {ast.Statement, "expr"},
	"delete_statement":     {ast.Statement, "expr"},
	"match_statement":      {ast.Statement, "match"},
	"case_clause":          {ast.Statement, "case"},

	// expressions
	"call":                     {ast.Expression, "call"},
	"argument_list":            {ast.Expression, "args"},
	"attribute":                {ast.Expression, "member"},
	"binary_operator":          {ast.Expression, "binary"},
	"boolean_operator":         {ast.Expression, "binary"},
	"comparison_operator":      {ast.Expression, "binary"},
	"not_operator":             {ast.Expression, "unary"},
	"unary_operator":           {ast.Expression, "unary"},
	"subscript":                {ast.Expression, "index"},
	"slice":                    {ast.Expression, "range"},
	"conditional_expression":   {ast.Expression, "binary"},
	"parenthesized_expression": {ast.Expression, "paren"},
	"list":                     {ast.Expression, "array"},
	"tuple":                    {ast.Expression, "tuple"},
	"set":                      {ast.Expression, "array"},
	"dictionary":               {ast.Expression, "array"},
	"list_comprehension":       {ast.Expression, "comprehension"},
	"dictionary_comprehension": {ast.Expression, "comprehension"},
	"set_comprehension":        {ast.Expression, "comprehension"},
	"generator_expression":     {ast.Expression, "comprehension"},
	"await":                    {ast.Expression, "await"},
	"identifier":               {ast.Expression, "identifier"},

	// literals
	"string":  {ast.Literal, "string"},
	"integer": {ast.Literal, "number"},
	"float":   {ast.Literal, "number"},
	"true":    {ast.Literal, "bool"},
	"false":   {ast.Literal, "bool"},
	"none":    {ast.Literal, "null"},

	"comment": {ast.Comment, "line"},
}
