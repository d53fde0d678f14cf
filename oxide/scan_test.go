package oxide

import "testing"

// parseProgram lexes and parses source the same way RunScript does, failing
// the test immediately on any lex/parse error so later assertions can assume
// a well-formed AST.
func parseProgram(t *testing.T, source string) *Block {
	t.Helper()

	lexer := NewLexer("test.ox", source)
	tokens, tokErr := lexer.Tokenize()
	if tokErr.IsErr() {
		t.Fatalf("lex error: %v", tokErr.Err)
	}

	parser := NewParser(tokens)
	ast := parser.Parse()
	if ast.IsErr() {
		t.Fatalf("parse error: %v", ast.Err)
	}
	return ast.Value
}

func TestScanNonCapturingLambdaNeedsEnv(t *testing.T) {
	program := parseProgram(t, `
let f = fn(x) { return x + 1; };
`)
	graph := Scan(program)

	var lambdaScope *Scope
	for _, s := range graph.AllScopes {
		if _, ok := s.FuncNode.(*FunctionExpr); ok {
			lambdaScope = s
		}
	}
	if lambdaScope == nil {
		t.Fatal("expected a FunctionExpr scope to be scanned")
	}
	if !lambdaScope.NeedsEnv {
		t.Error("every lambda literal must need an env regardless of captures (scenario A)")
	}
	if len(lambdaScope.CapturedOrder) != 0 {
		t.Errorf("non-capturing lambda should capture nothing, got %v", lambdaScope.CapturedOrder)
	}
}

func TestScanCapturesOneLocal(t *testing.T) {
	program := parseProgram(t, `
fn g() {
	let n = 0;
	let inc = fn() {
		n = n + 1;
	};
}
`)
	graph := Scan(program)

	var gScope, lambdaScope *Scope
	for _, s := range graph.AllScopes {
		switch fn := s.FuncNode.(type) {
		case *FunctionDefStmt:
			if fn.Name.Value == "g" {
				gScope = s
			}
		case *FunctionExpr:
			lambdaScope = s
		}
	}
	if gScope == nil || lambdaScope == nil {
		t.Fatal("expected both g's scope and the lambda's scope to be scanned")
	}

	if !gScope.NeedsEnv {
		t.Error("g must need an env since its local n is captured by inc")
	}
	if Index(gScope.CapturedOrder, "n") == -1 {
		t.Errorf("g's captured set should include n, got %v", gScope.CapturedOrder)
	}
	if lambdaScope.EnvParent != gScope {
		t.Errorf("inc's EnvParent should be g's scope after collapse, got %v", lambdaScope.EnvParent)
	}

	nDef := gScope.Defs["n"]
	if nDef == nil || !nDef.IsCaptured {
		t.Error("n's Definition should be marked IsCaptured")
	}
}

func TestScanNestedLambdasTwoLevels(t *testing.T) {
	program := parseProgram(t, `
fn outer() {
	let a = 1;
	let mid = fn() {
		let b = 2;
		let inner = fn() {
			return a + b;
		};
	};
}
`)
	graph := Scan(program)

	var outerScope *Scope
	for _, s := range graph.AllScopes {
		if fn, ok := s.FuncNode.(*FunctionDefStmt); ok && fn.Name.Value == "outer" {
			outerScope = s
		}
	}

	// AllScopes is pre-order (see Scope godoc), so the first FunctionExpr
	// scope encountered is mid and the second is inner.
	var lambdas []*Scope
	for _, s := range graph.AllScopes {
		if _, ok := s.FuncNode.(*FunctionExpr); ok {
			lambdas = append(lambdas, s)
		}
	}
	if len(lambdas) != 2 {
		t.Fatalf("expected 2 lambda scopes, got %d", len(lambdas))
	}
	midScope, innerScope := lambdas[0], lambdas[1]

	if outerScope == nil {
		t.Fatal("expected outer's scope to be scanned")
	}
	if !outerScope.NeedsEnv || Index(outerScope.CapturedOrder, "a") == -1 {
		t.Errorf("outer must capture a, got %v", outerScope.CapturedOrder)
	}
	if !midScope.NeedsEnv || Index(midScope.CapturedOrder, "b") == -1 {
		t.Errorf("mid must need an env and capture its own local b, got %v", midScope.CapturedOrder)
	}
	if Index(midScope.CapturedOrder, "a") != -1 {
		t.Errorf("mid should not carry a field for a, which it neither declares nor reads directly — inner reaches it through mid's parent link, got %v", midScope.CapturedOrder)
	}
	if midScope.EnvParent != outerScope {
		t.Errorf("mid's EnvParent should collapse straight to outer, got %v", midScope.EnvParent)
	}
	if innerScope.EnvParent != midScope {
		t.Errorf("inner's EnvParent should be mid, got %v", innerScope.EnvParent)
	}
}

func TestScanLoopVariableCapture(t *testing.T) {
	program := parseProgram(t, `
let fns = [];
for i in 0:3 {
	fns.append(fn() { return i; });
}
`)
	graph := Scan(program)

	var loopScope *Scope
	for _, s := range graph.AllScopes {
		if s.Kind == ScopeLoop {
			loopScope = s
		}
	}
	if loopScope == nil {
		t.Fatal("expected a ScopeLoop scope for the for-in body")
	}
	if !loopScope.NeedsEnv {
		t.Error("loop scope must need an env since its loop variable i is captured")
	}
	if Index(loopScope.CapturedOrder, "i") == -1 {
		t.Errorf("loop scope should capture i, got %v", loopScope.CapturedOrder)
	}
}

func TestScanArgumentCapture(t *testing.T) {
	program := parseProgram(t, `
fn h(x) {
	return fn() { return x; };
}
`)
	graph := Scan(program)

	var hScope *Scope
	for _, s := range graph.AllScopes {
		if fn, ok := s.FuncNode.(*FunctionDefStmt); ok && fn.Name.Value == "h" {
			hScope = s
		}
	}
	if hScope == nil {
		t.Fatal("expected h's scope to be scanned")
	}
	if !hScope.NeedsEnv || Index(hScope.CapturedOrder, "x") == -1 {
		t.Errorf("h must capture its own parameter x, got %v", hScope.CapturedOrder)
	}
}

func TestScanThisCapture(t *testing.T) {
	program := parseProgram(t, `
class Counter {
	count: int = 0

	fn bump() {
		let inc = fn() { return this.count; };
	}
}
`)
	graph := Scan(program)

	var methodScope *Scope
	for _, s := range graph.AllScopes {
		if _, ok := s.FuncNode.(*MethodDecl); ok {
			methodScope = s
		}
	}
	if methodScope == nil {
		t.Fatal("expected bump's method scope to be scanned")
	}
	if !methodScope.NeedsEnv {
		t.Error("bump must need an env since this is captured by inc")
	}
	thisDef := methodScope.Defs["this"]
	if thisDef == nil || !thisDef.IsCaptured {
		t.Error("this's Definition should be marked IsCaptured")
	}
}
