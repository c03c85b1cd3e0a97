package lang

import (
	"strings"

	"github.com/smacker/go-tree-sitter/ruby"

	"github.com/phobologic/astdistance/internal/ast"
)

func init() {
	Languages["ruby"] = &Language{
		Name:       "ruby",
		Aliases:    []string{"rb"},
		Extensions: []string{".rb"},
		lang:       ruby.GetLanguage(),
		Table:      rubyTable,
		Transparent: set(
			"body_statement", "then", "do", "argument_list_with_parens",
		),
		Ignore:    set("escape_sequence", "empty_statement", "uninterpreted"),
		NameTypes: set("identifier", "constant"),
		MarkerCall: rubyMarkerCall,
	}
}

var rubyTable = map[string]Mapping{
	"program": {ast.Module, "file"},

	"module":           {ast.Declaration, "module"},
	"method":           {ast.Function, "method"},
	"singleton_method": {ast.Function, "method"},
	"lambda":           {ast.Function, "lambda"},
	"block":            {ast.Function, "lambda"},
	"do_block":         {ast.Function, "lambda"},
	"class":            {ast.Type, "class"},
	"singleton_class":  {ast.Type, "object"},
	"superclass":       {ast.Type, "ref"},
	"constant":         {ast.Type, "ref"},
	"scope_resolution": {ast.Type, "ref"},

	"method_parameters":      {ast.Field, "params"},
	"lambda_parameters":      {ast.Field, "params"},
	"block_parameters":       {ast.Field, "params"},
	"optional_parameter":     {ast.Field, "param"},
	"keyword_parameter":      {ast.Field, "param"},
	"splat_parameter":        {ast.Field, "param"},
	"hash_splat_parameter":   {ast.Field, "param"},
	"block_parameter":        {ast.Field, "param"},
	"pair":                   {ast.Field, "init"},
	"instance_variable":      {ast.Field, "field"},
	"class_variable":         {ast.Field, "field"},

	"if":                  {ast.Statement, "if"},
	"unless":              {ast.Statement, "if"},
	"if_modifier":         {ast.Statement, "if"},
	"unless_modifier":     {ast.Statement, "if"},
	"elsif":               {ast.Statement, "else"},
	"else":                {ast.Statement, "else"},
	"case":                {ast.Statement, "match"},
	"when":                {ast.Statement, "case"},
	"while":               {ast.Statement, "loop"},
	"until":               {ast.Statement, "loop"},
	"for":                 {ast.Statement, "loop"},
	"while_modifier":      {ast.Statement, "loop"},
	"return":              {ast.Statement, "return"},
	"break":               {ast.Statement, "break"},
	"next":                {ast.Statement, "continue"},
	"assignment":          {ast.Statement, "assign"},
	"operator_assignment": {ast.Statement, "assign"},
	"begin":               {ast.Statement, "try"},
	"rescue":              {ast.Statement, "catch"},
	"ensure":              {ast.Statement, "finally"},

	"call":                     {ast.Expression, "call"},
	"argument_list":            {ast.Expression, "args"},
	"binary":                   {ast.Expression, "binary"},
	"unary":                    {ast.Expression, "unary"},
	"element_reference":        {ast.Expression, "index"},
	"parenthesized_statements": {ast.Expression, "paren"},
	"array":                    {ast.Expression, "array"},
	"hash":                     {ast.Expression, "array"},
	"range":                    {ast.Expression, "range"},
	"conditional":              {ast.Expression, "binary"},
	"identifier":               {ast.Expression, "identifier"},
	"self":                     {ast.Expression, "identifier"},
	"global_variable":          {ast.Expression, "identifier"},

	"string":           {ast.Literal, "string"},
	"string_array":     {ast.Literal, "string"},
	"symbol_array":     {ast.Literal, "string"},
	"simple_symbol":    {ast.Literal, "string"},
	"hash_key_symbol":  {ast.Literal, "string"},
	"delimited_symbol": {ast.Literal, "string"},
	"regex":            {ast.Literal, "string"},
	"character":        {ast.Literal, "char"},
	"integer":          {ast.Literal, "number"},
	"float":            {ast.Literal, "number"},
	"rational":         {ast.Literal, "number"},
	"complex":          {ast.Literal, "number"},
	"true":             {ast.Literal, "bool"},
	"false":            {ast.Literal, "bool"},
	"nil":              {ast.Literal, "null"},

	"comment": {ast.Comment, "line"},
}

func rubyMarkerCall(n Native) (string, bool) {
	if n.Type() != "call" {
		return "", false
	}
	if strings.HasPrefix(CollapseWhitespace(n.Text()), "raise NotImplementedError") {
		return "NotImplementedError", true
	}
	return "", false
}
