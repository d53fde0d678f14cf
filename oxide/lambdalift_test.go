package oxide

import "testing"

// findClass returns the top-level ClassDeclStmt named name, synthesized or
// otherwise, from a Lower-ed program.
func findClass(program *Block, name string) *ClassDeclStmt {
	for _, stmt := range program.Statements {
		if c, ok := stmt.(*ClassDeclStmt); ok && c.Name.Value == name {
			return c
		}
	}
	return nil
}

func findMethod(class *ClassDeclStmt, name string) *MethodDecl {
	if class == nil {
		return nil
	}
	for _, m := range class.Methods {
		if m.Name.Value == name {
			return m
		}
	}
	return nil
}

func hasField(class *ClassDeclStmt, name string) bool {
	if class == nil {
		return false
	}
	for _, f := range class.Fields {
		if f.Name.Value == name {
			return true
		}
	}
	return false
}

// noLambdaNodesRemain walks the full program and fails if any *FunctionExpr
// survived conversion anywhere (testable property 1).
func noLambdaNodesRemain(t *testing.T, program *Block) {
	t.Helper()
	Walk(program, WalkFunc(func(n ASTNode) {
		if _, ok := n.(*FunctionExpr); ok {
			t.Errorf("residual *FunctionExpr node after Lower: %v", n)
		}
	}))
}

func mustLower(t *testing.T, source string) *Block {
	t.Helper()
	program := parseProgram(t, source)
	if _, err := Lower(program); err != nil {
		t.Fatalf("Lower failed: %v", err)
	}
	return program
}

// Scenario A: a single non-capturing lambda becomes a run()-only env class
// with no fields and no parent.
func TestConvertSingleNonCapturingLambda(t *testing.T) {
	program := mustLower(t, `
let f = fn(x) { return x + 1; };
let y = f(10);
`)
	noLambdaNodesRemain(t, program)

	class := findClass(program, "FEnv")
	if class == nil {
		t.Fatal("expected a synthesized FEnv class for f")
	}
	if len(class.Fields) != 0 {
		t.Errorf("non-capturing lambda env should have no fields, got %v", class.Fields)
	}
	run := findMethod(class, "run")
	if run == nil {
		t.Fatal("expected a run() method on FEnv")
	}
	if len(run.Params) != 1 || run.Params[0].Name.Value != "x" {
		t.Errorf("run() should keep the original parameter list, got %v", run.Params)
	}

	// f(y) must have become f.run(y).
	var sawRunDispatch bool
	Walk(program, WalkFunc(func(n ASTNode) {
		call, ok := n.(*CallExpr)
		if !ok {
			return
		}
		dot, ok := call.Callee.(*DotExpr)
		if ok && dot.Attr.Value == RtRunMethod {
			sawRunDispatch = true
		}
	}))
	if !sawRunDispatch {
		t.Error("expected the call site f(10) to be rewritten to f.run(10)")
	}
}

// Scenario B: a lambda capturing one enclosing local turns the local into
// an env field and the lambda into an env class with a parent link.
func TestConvertCapturesOneLocal(t *testing.T) {
	program := mustLower(t, `
fn g() {
	let n = 0;
	let inc = fn() {
		n = n + 1;
	};
}
`)
	noLambdaNodesRemain(t, program)

	genv := findClass(program, "GEnv")
	if genv == nil {
		t.Fatal("expected a synthesized GEnv class for g")
	}
	if !hasField(genv, "n") {
		t.Errorf("GEnv should carry field n, got %v", genv.Fields)
	}

	incEnv := findClass(program, "IncEnv")
	if incEnv == nil {
		t.Fatal("expected a synthesized IncEnv class for inc")
	}
	if !hasField(incEnv, "parent") {
		t.Errorf("IncEnv should carry a parent field pointing at GEnv, got %v", incEnv.Fields)
	}
	init := findMethod(incEnv, "init")
	if init == nil || len(init.Params) != 1 {
		t.Fatalf("IncEnv's constructor should take exactly one parent argument, got %v", init)
	}

	run := findMethod(incEnv, "run")
	if run == nil {
		t.Fatal("expected a run() method on IncEnv")
	}
	// n = n + 1 becomes this.parent.n = this.parent.n + 1
	var sawParentFieldWrite bool
	Walk(run.Body, WalkFunc(func(node ASTNode) {
		set, ok := node.(*SetAttrStmt)
		if !ok || set.Attr.Value != "n" {
			return
		}
		if _, ok := set.Obj.(*DotExpr); ok {
			sawParentFieldWrite = true
		}
	}))
	if !sawParentFieldWrite {
		t.Error("expected n = n + 1 to rewrite to this.parent.n = this.parent.n + 1")
	}
}

// Scenario C: two levels of nesting produce two Env classes, the inner one
// reaching the outer capture through its own parent link.
func TestConvertNestedLambdasTwoLevels(t *testing.T) {
	program := mustLower(t, `
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
	noLambdaNodesRemain(t, program)

	outerEnv := findClass(program, "OuterEnv")
	midEnv := findClass(program, "MidEnv")
	innerEnv := findClass(program, "InnerEnv")
	if outerEnv == nil || midEnv == nil || innerEnv == nil {
		t.Fatalf("expected OuterEnv, MidEnv and InnerEnv classes, got outer=%v mid=%v inner=%v", outerEnv, midEnv, innerEnv)
	}
	if !hasField(outerEnv, "a") {
		t.Errorf("OuterEnv should carry field a, got %v", outerEnv.Fields)
	}
	if !hasField(midEnv, "b") {
		t.Errorf("MidEnv should carry its own local b, got %v", midEnv.Fields)
	}
	if hasField(midEnv, "a") {
		t.Errorf("MidEnv should not carry a field for a — it only relays to OuterEnv through its own parent link, got %v", midEnv.Fields)
	}
	if !hasField(midEnv, "parent") {
		t.Errorf("MidEnv should carry a parent field pointing at OuterEnv, got %v", midEnv.Fields)
	}
	if !hasField(innerEnv, "parent") {
		t.Errorf("InnerEnv should carry a parent field, got %v", innerEnv.Fields)
	}
}

// Scenario D: a lambda capturing a loop variable gets a fresh env per
// iteration, so the `new ...Env(...)` construction lives inside the loop
// body block, not hoisted above the loop.
func TestConvertLoopVariableCapture(t *testing.T) {
	program := mustLower(t, `
let fns = [];
for i in 0:3 {
	fns.append(fn() { return i; });
}
`)
	noLambdaNodesRemain(t, program)

	var loopStmt *ForInStmt
	for _, stmt := range program.Statements {
		if f, ok := stmt.(*ForInStmt); ok {
			loopStmt = f
		}
	}
	if loopStmt == nil {
		t.Fatal("expected the top-level for-in statement to survive conversion")
	}

	var sawEnvDeclInBody bool
	for _, stmt := range loopStmt.Body.Statements {
		decl, ok := stmt.(*VarDeclareStmt)
		if !ok || len(decl.Initializers) == 0 {
			continue
		}
		if _, ok := decl.Initializers[0].(*NewExpr); ok {
			sawEnvDeclInBody = true
		}
	}
	if !sawEnvDeclInBody {
		t.Error("expected a `let env = new ILoopEnv(...)` declaration at the top of the loop body")
	}
}

// Scenario E: a captured function argument is prefilled into the env right
// at function entry.
func TestConvertArgumentCapture(t *testing.T) {
	program := mustLower(t, `
fn h(x) {
	return fn() { return x; };
}
`)
	noLambdaNodesRemain(t, program)

	hEnv := findClass(program, "HEnv")
	if hEnv == nil {
		t.Fatal("expected a synthesized HEnv class for h")
	}
	if !hasField(hEnv, "x") {
		t.Errorf("HEnv should carry field x, got %v", hEnv.Fields)
	}

	var h *FunctionDefStmt
	for _, stmt := range program.Statements {
		if fn, ok := stmt.(*FunctionDefStmt); ok && fn.Name.Value == "h" {
			h = fn
		}
	}
	if h == nil {
		t.Fatal("expected h's FunctionDefStmt to survive (it is not itself an env object)")
	}

	var sawPrefill bool
	for _, stmt := range h.Body.Statements {
		set, ok := stmt.(*SetAttrStmt)
		if ok && set.Attr.Value == "x" {
			sawPrefill = true
		}
	}
	if !sawPrefill {
		t.Error("expected env.x = x to be prepended at the top of h's body")
	}
}

// Scenario F: a lambda referencing `this` inside an instance method causes
// `this` to be captured into the method's env under the renamed field
// outerThis.
func TestConvertThisCapture(t *testing.T) {
	program := mustLower(t, `
class Counter {
	count: int = 0

	fn bump() {
		let inc = fn() { return this.count; };
	}
}
`)
	noLambdaNodesRemain(t, program)

	bumpEnv := findClass(program, "BumpEnv")
	if bumpEnv == nil {
		t.Fatal("expected a synthesized BumpEnv class for bump")
	}
	if !hasField(bumpEnv, "outerThis") {
		t.Errorf("BumpEnv should carry field outerThis, got %v", bumpEnv.Fields)
	}

	counter := findClass(program, "Counter")
	if counter == nil {
		t.Fatal("expected the Counter class to survive conversion")
	}
	bump := findMethod(counter, "bump")
	if bump == nil {
		t.Fatal("expected bump method to survive on Counter")
	}
	var sawThisPrefill bool
	for _, stmt := range bump.Body.Statements {
		set, ok := stmt.(*SetAttrStmt)
		if ok && set.Attr.Value == "outerThis" {
			if _, ok := set.Value.(*ThisExpr); ok {
				sawThisPrefill = true
			}
		}
	}
	if !sawThisPrefill {
		t.Error("expected env.outerThis = this to be prepended at the top of bump's body")
	}
}

// Scenario A, continued: the synthesized env class declares conformance to
// its run() interface, and the registry returned by Lower knows about it.
func TestConvertDeclaresInterface(t *testing.T) {
	program := parseProgram(t, `
let f = fn(x) { return x + 1; };
`)
	registry, err := Lower(program)
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}

	class := findClass(program, "FEnv")
	if class == nil {
		t.Fatal("expected a synthesized FEnv class for f")
	}
	if len(class.Interfaces) != 1 {
		t.Fatalf("FEnv should declare exactly one interface, got %v", class.Interfaces)
	}
	ifaceName := class.Interfaces[0].Value
	if ifaceName != rtInterfaceName(1, true) {
		t.Errorf("FEnv should implement %s, got %s", rtInterfaceName(1, true), ifaceName)
	}

	infos := registry.All()
	if len(infos) != 1 {
		t.Fatalf("expected exactly one interface in the registry, got %d", len(infos))
	}
	if infos[0].Name != ifaceName {
		t.Errorf("registry entry name %s should match the class's declared interface %s", infos[0].Name, ifaceName)
	}
	if Index(infos[0].Implementors, "FEnv") == -1 {
		t.Errorf("registry entry for %s should list FEnv as an implementor, got %v", ifaceName, infos[0].Implementors)
	}
}

// Testable property 3: two lambda literals with the same arity and
// return-shape produce env classes that implement the exact same interface.
func TestConvertSameSignatureLambdasShareInterface(t *testing.T) {
	program := parseProgram(t, `
let add = fn(a, b) { return a + b; };
let sub = fn(a, b) { return a - b; };
`)
	registry, err := Lower(program)
	if err != nil {
		t.Fatalf("Lower failed: %v", err)
	}

	addEnv := findClass(program, "AddEnv")
	subEnv := findClass(program, "SubEnv")
	if addEnv == nil || subEnv == nil {
		t.Fatalf("expected AddEnv and SubEnv classes, got add=%v sub=%v", addEnv, subEnv)
	}
	if len(addEnv.Interfaces) != 1 || len(subEnv.Interfaces) != 1 {
		t.Fatalf("both envs should declare exactly one interface, got add=%v sub=%v", addEnv.Interfaces, subEnv.Interfaces)
	}
	if addEnv.Interfaces[0].Value != subEnv.Interfaces[0].Value {
		t.Errorf("same-signature lambdas should implement the same interface, got %s and %s", addEnv.Interfaces[0].Value, subEnv.Interfaces[0].Value)
	}

	infos := registry.All()
	if len(infos) != 1 {
		t.Fatalf("two same-signature lambdas should intern a single interface, got %d", len(infos))
	}
	if Index(infos[0].Implementors, "AddEnv") == -1 || Index(infos[0].Implementors, "SubEnv") == -1 {
		t.Errorf("shared interface should list both AddEnv and SubEnv as implementors, got %v", infos[0].Implementors)
	}
}

// Testable property 7: re-running Lower on already-converted output is a
// no-op at the lambda level — no *FunctionExpr nodes remain to convert, so a
// second pass leaves the program structurally unchanged aside from
// re-synthesizing (identically-shaped) env classes for any that still
// exist from the first pass's own output, of which there are none since
// env classes are plain ClassDeclStmts, not FunctionExprs.
func TestConvertIdempotentAtBoundary(t *testing.T) {
	program := mustLower(t, `
fn g() {
	let n = 0;
	let inc = fn() { n = n + 1; };
}
`)
	before := len(program.Statements)

	if _, err := Lower(program); err != nil {
		t.Fatalf("second Lower call failed: %v", err)
	}
	noLambdaNodesRemain(t, program)

	after := len(program.Statements)
	if before != after {
		t.Errorf("re-running Lower should not change the top-level statement count, got %d then %d", before, after)
	}
}
