package laravel

import (
	"strings"

	"github.com/VKCOM/php-parser/pkg/ast"
	"github.com/VKCOM/php-parser/pkg/conf"
	"github.com/VKCOM/php-parser/pkg/errors"
	"github.com/VKCOM/php-parser/pkg/parser"
	"github.com/VKCOM/php-parser/pkg/version"
	"github.com/VKCOM/php-parser/pkg/visitor"
	"github.com/VKCOM/php-parser/pkg/visitor/traverser"
)

// ASTExtractor reads models and migrations from a PHP syntax tree. Its output
// follows the same contract as RegexExtractor but survives reformatted and
// multi-line source. Files the parser rejects fall back to regex matching.
type ASTExtractor struct {
	fallback *RegexExtractor
}

// NewASTExtractor creates an extractor backed by the VKCOM PHP parser
func NewASTExtractor() *ASTExtractor {
	return &ASTExtractor{fallback: NewRegexExtractor()}
}

// ExtractTable implements SourceModelExtractor
func (e *ASTExtractor) ExtractTable(content string) (string, []string, bool) {
	collector, ok := e.collect(content)
	if !ok {
		return e.fallback.ExtractTable(content)
	}

	for _, call := range collector.staticCalls {
		if !isSchemaCreate(call) || len(call.Args) == 0 {
			continue
		}
		table, ok := stringLiteral(argExpr(call.Args[0]))
		if !ok {
			continue
		}
		return table, blueprintColumns(call.Args[1:]), true
	}

	return "", nil, false
}

// ExtractModel implements SourceModelExtractor
func (e *ASTExtractor) ExtractModel(name, content string) ModelDescriptor {
	collector, ok := e.collect(content)
	if !ok {
		return e.fallback.ExtractModel(name, content)
	}

	classNode := collector.classNamed(name)
	if classNode == nil {
		return e.fallback.ExtractModel(name, content)
	}

	model := ModelDescriptor{
		Name:      name,
		TableName: DefaultTableName(name),
		Columns:   []string{},
		Relations: []Relation{},
	}

	var names []string
	for _, stmt := range classNode.Stmts {
		switch node := stmt.(type) {
		case *ast.StmtPropertyList:
			if table, ok := tableProperty(node); ok {
				model.TableName = table
			}

		case *ast.StmtClassMethod:
			if !isPublic(node.Modifiers) {
				continue
			}
			methodName := identifier(node.Name)
			if methodName == "" {
				continue
			}
			names = append(names, methodName)
			if rel := relationFromMethod(methodName, node); rel != nil {
				model.Relations = append(model.Relations, *rel)
			}
		}
	}
	model.Methods = FilterMethods(names, model.Relations)

	return model
}

func (e *ASTExtractor) collect(content string) (*fileCollector, bool) {
	var parserErrors []*errors.Error
	rootNode, err := parser.Parse([]byte(content), conf.Config{
		Version: &version.Version{Major: 8, Minor: 0},
		ErrorHandlerFunc: func(e *errors.Error) {
			parserErrors = append(parserErrors, e)
		},
	})
	if err != nil || rootNode == nil || len(parserErrors) > 0 {
		return nil, false
	}

	collector := &fileCollector{}
	traverser.NewTraverser(collector).Traverse(rootNode)
	return collector, true
}

// fileCollector records the nodes the extractor inspects
type fileCollector struct {
	visitor.Null
	classes     []*ast.StmtClass
	staticCalls []*ast.ExprStaticCall
}

func (v *fileCollector) StmtClass(n *ast.StmtClass) {
	v.classes = append(v.classes, n)
}

func (v *fileCollector) ExprStaticCall(n *ast.ExprStaticCall) {
	v.staticCalls = append(v.staticCalls, n)
}

// classNamed prefers the class matching the file name, then the first named class.
func (v *fileCollector) classNamed(name string) *ast.StmtClass {
	var first *ast.StmtClass
	for _, class := range v.classes {
		className := identifier(class.Name)
		if className == "" {
			continue
		}
		if className == name {
			return class
		}
		if first == nil {
			first = class
		}
	}
	return first
}

func isSchemaCreate(call *ast.ExprStaticCall) bool {
	className := nameString(call.Class)
	if className != "Schema" && !strings.HasSuffix(className, "\\Schema") {
		return false
	}
	return identifier(call.Call) == "create"
}

// blueprintColumns collects $table->type('column') calls from the Blueprint
// closure passed to Schema::create.
func blueprintColumns(args []ast.Vertex) []string {
	columns := []string{}
	for _, arg := range args {
		var calls []MethodCall
		blueprint := "table"

		switch fn := argExpr(arg).(type) {
		case *ast.ExprClosure:
			blueprint = firstParamName(fn.Params, blueprint)
			for _, stmt := range fn.Stmts {
				walkStmts(stmt, &calls)
			}
		case *ast.ExprArrowFunction:
			blueprint = firstParamName(fn.Params, blueprint)
			walkExpr(fn.Expr, &calls)
		default:
			continue
		}

		// walkExpr records chained calls outermost first; the blueprint call
		// is always the innermost, so each chain yields at most one column.
		for _, call := range calls {
			if call.Object != blueprint || len(call.Args) == 0 {
				continue
			}
			if col := call.Args[0]; col.Literal && isWord(col.Value) {
				columns = append(columns, col.Value)
			}
		}
	}
	return columns
}

func tableProperty(list *ast.StmtPropertyList) (string, bool) {
	for _, prop := range list.Props {
		propNode, ok := prop.(*ast.StmtProperty)
		if !ok {
			continue
		}
		varNode, ok := propNode.Var.(*ast.ExprVariable)
		if !ok {
			continue
		}
		if strings.TrimPrefix(identifier(varNode.Name), "$") != "table" {
			continue
		}
		if table, ok := stringLiteral(propNode.Expr); ok && table != "" {
			return table, true
		}
	}
	return "", false
}

// relationFromMethod matches `return $this->kind(Target, ...)` in a method
// without parameters.
func relationFromMethod(methodName string, methodNode *ast.StmtClassMethod) *Relation {
	if len(methodNode.Params) > 0 || methodNode.Stmt == nil {
		return nil
	}

	list, ok := methodNode.Stmt.(*ast.StmtStmtList)
	if !ok {
		return nil
	}

	for _, stmt := range list.Stmts {
		ret, ok := stmt.(*ast.StmtReturn)
		if !ok {
			continue
		}
		var calls []MethodCall
		walkExpr(ret.Expr, &calls)
		for _, call := range calls {
			if call.Object != "this" || !IsRelationKind(call.Method) || len(call.Args) == 0 {
				continue
			}
			return &Relation{
				Method:      methodName,
				Kind:        RelationKind(call.Method),
				TargetModel: call.Args[0].Value,
			}
		}
		return nil
	}

	return nil
}

// MethodCall is an instance method call found in a function body
type MethodCall struct {
	Object string // variable name without "$"; empty for chained receivers
	Method string
	Args   []CallArg
}

// CallArg is an argument rendered back to source-like text
type CallArg struct {
	Value   string
	Literal bool // a plain string literal
}

func walkStmts(stmt ast.Vertex, calls *[]MethodCall) {
	if stmt == nil {
		return
	}

	switch node := stmt.(type) {
	case *ast.StmtStmtList:
		for _, s := range node.Stmts {
			walkStmts(s, calls)
		}
	case *ast.StmtReturn:
		walkExpr(node.Expr, calls)
	case *ast.StmtExpression:
		walkExpr(node.Expr, calls)
	}
}

func walkExpr(expr ast.Vertex, calls *[]MethodCall) {
	node, ok := expr.(*ast.ExprMethodCall)
	if !ok {
		return
	}

	call := MethodCall{Method: identifier(node.Method)}
	if varNode, ok := node.Var.(*ast.ExprVariable); ok {
		call.Object = strings.TrimPrefix(identifier(varNode.Name), "$")
	}
	for _, arg := range node.Args {
		call.Args = append(call.Args, renderArg(argExpr(arg)))
	}

	if call.Method != "" {
		*calls = append(*calls, call)
	}

	// chained call: $table->string('x')->nullable()
	walkExpr(node.Var, calls)
}

func renderArg(expr ast.Vertex) CallArg {
	if s, ok := stringLiteral(expr); ok {
		return CallArg{Value: s, Literal: true}
	}

	switch node := expr.(type) {
	case *ast.ExprClassConstFetch:
		return CallArg{Value: nameString(node.Class) + "::" + identifier(node.Const)}
	case *ast.ExprConstFetch:
		return CallArg{Value: nameString(node.Const)}
	}
	return CallArg{Value: nameString(expr)}
}

func argExpr(arg ast.Vertex) ast.Vertex {
	if a, ok := arg.(*ast.Argument); ok {
		return a.Expr
	}
	return arg
}

func stringLiteral(expr ast.Vertex) (string, bool) {
	node, ok := expr.(*ast.ScalarString)
	if !ok {
		return "", false
	}
	val := string(node.Value)
	if len(val) >= 2 {
		val = val[1 : len(val)-1]
	}
	return val, true
}

func identifier(v ast.Vertex) string {
	if id, ok := v.(*ast.Identifier); ok {
		return string(id.Value)
	}
	return ""
}

func nameString(v ast.Vertex) string {
	switch node := v.(type) {
	case *ast.Name:
		return joinNameParts(node.Parts)
	case *ast.NameFullyQualified:
		return "\\" + joinNameParts(node.Parts)
	case *ast.Identifier:
		return string(node.Value)
	}
	return ""
}

func joinNameParts(parts []ast.Vertex) string {
	var out []string
	for _, part := range parts {
		if p, ok := part.(*ast.NamePart); ok {
			out = append(out, string(p.Value))
		}
	}
	return strings.Join(out, "\\")
}

func firstParamName(params []ast.Vertex, def string) string {
	if len(params) == 0 {
		return def
	}
	p, ok := params[0].(*ast.Parameter)
	if !ok {
		return def
	}
	varNode, ok := p.Var.(*ast.ExprVariable)
	if !ok {
		return def
	}
	if name := strings.TrimPrefix(identifier(varNode.Name), "$"); name != "" {
		return name
	}
	return def
}

// isPublic treats methods without a visibility modifier as public, as PHP does.
func isPublic(modifiers []ast.Vertex) bool {
	for _, mod := range modifiers {
		switch strings.ToLower(identifier(mod)) {
		case "protected", "private":
			return false
		}
	}
	return true
}

func isWord(s string) bool {
	if s == "" {
		return false
	}
	for _, r := range s {
		if r != '_' && (r < '0' || r > '9') && (r < 'a' || r > 'z') && (r < 'A' || r > 'Z') {
			return false
		}
	}
	return true
}
