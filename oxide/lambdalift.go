package oxide

import "fmt"

// Lower runs the full lambda-to-object conversion over a parsed program:
// Scan builds the scope graph, then ConvertLambdas rewrites the AST in
// place so every lambda literal (and every named function that reads captured
// state of an enclosing function) becomes an instance of a synthesized environment class,
// with captured variables turned into fields instead of stack slots.
func Lower(program *Block) (*InterfaceRegistry, error) {
	graph := Scan(program)
	return ConvertLambdas(program, graph)
}

// ConvertLambdas is the lambda-conversion pass itself. It assumes graph was
// produced by Scan over program and has not been mutated since.
func ConvertLambdas(program *Block, graph *ScopeGraph) (*InterfaceRegistry, error) {
	namer := newEnvNamer()
	for _, s := range graph.AllScopes {
		if s.NeedsEnv {
			s.EnvName = namer.nameFor(s)
			s.EnvVarName = "env"
		}
	}

	lf := &lifter{graph: graph, reg: NewInterfaceRegistry()}
	rewritten, err := lf.rewriteBlock(program, graph.Root)
	if err != nil {
		return nil, err
	}

	program.Statements = append(lf.classes, rewritten.Statements...)
	return lf.reg, nil
}

// lifter carries the conversion pass's running state: the scope graph built
// by Scan, the interface registry every synthesized run() method registers
// into, and the flat list of synthesized environment classes, collected as
// they're created and hoisted to the top of the program at the end so every
// `new` of one is always preceded by its declaration.
type lifter struct {
	graph   *ScopeGraph
	reg     *InterfaceRegistry
	classes []ASTNode
}

// isEnvObjectUnit reports whether scope's own capturing unit is itself
// converted into an environment instance dispatched through run() — true
// for every lambda literal (scenario A, unconditional) and for a named
// function that needs to reach an ancestor's captured state across its own
// call boundary (EnvParent != nil). A method is never promoted this way:
// its scope's parent chain bottoms out at the global scope, so it never
// acquires an EnvParent.
func isEnvObjectUnit(scope *Scope) bool {
	if scope.Kind != ScopeFunction {
		return false
	}
	switch scope.FuncNode.(type) {
	case *FunctionExpr:
		return true
	case *FunctionDefStmt:
		return scope.EnvParent != nil
	}
	return false
}

// envSelfRef is how code lexically inside unit refers to unit's own
// environment instance: `this` when unit is itself a converted lambda/
// promoted function running inside its synthesized run() method, or the
// named local variable holding a plain container environment otherwise.
func envSelfRef(unit *Scope) Expr {
	if isEnvObjectUnit(unit) {
		return &ThisExpr{}
	}
	return &VariableExpr{Name: &Token{Value: unit.EnvVarName}}
}

func fieldAccess(obj Expr, field string) Expr {
	return &DotExpr{Obj: obj, Attr: Token{Value: field}}
}

// captureTarget is the rewritten (object, field) pair an access to a
// captured name resolves to: obj is the chain of `.parent` hops from the
// using unit's own environment reference out to the defining unit's, and
// field is that unit's field for the name.
type captureTarget struct {
	obj   Expr
	field string
}

// resolveCapturedTarget reports how to reach name's storage from scope, if
// name refers to a captured definition at all. A definition is boxed into
// an environment field for its entire lifetime once anything captures it —
// including uses inside the very unit that declares it — so this is the
// single source of truth both reads and writes rewrite through.
func (lf *lifter) resolveCapturedTarget(name string, scope *Scope) (captureTarget, bool) {
	def := scope.lookup(name)
	if def == nil || !def.IsCaptured {
		return captureTarget{}, false
	}

	defUnit := def.Scope.capturingUnit()
	useUnit := scope.capturingUnit()

	base := envSelfRef(useUnit)
	for cur := useUnit; cur != defUnit; cur = cur.EnvParent {
		if cur.EnvParent == nil {
			// Shouldn't happen if propagateCaptures/linkEnvParents ran
			// correctly: every unit between useUnit and defUnit is marked
			// NeedsEnv and chained. Fall back to the innermost reference
			// rather than panic on a malformed graph.
			break
		}
		base = fieldAccess(base, "parent")
	}

	return captureTarget{obj: base, field: envFieldName(name)}, true
}

func buildEnvFields(scope *Scope) []*FieldDecl {
	fields := make([]*FieldDecl, 0, len(scope.CapturedOrder)+1)
	for _, name := range scope.CapturedOrder {
		fields = append(fields, &FieldDecl{Name: &Token{Value: envFieldName(name)}})
	}
	if scope.EnvParent != nil {
		fields = append(fields, &FieldDecl{Name: &Token{Value: "parent"}})
	}
	return fields
}

// buildInitMethod synthesizes the one constructor shape an environment
// class ever needs: capture the parent link. Every other field is filled in
// by an explicit field write at the point its value actually becomes known
// (a parameter copy at the top of run(), a let-binding rewritten directly
// into a field write, or a loop variable copy at the top of each iteration)
// rather than threaded through the constructor.
func (lf *lifter) buildInitMethod(tok *Token) *MethodDecl {
	parentParam := &Parameter{Name: &Token{Value: "parent"}}
	setStmt := &SetAttrStmt{
		Token: tok,
		Obj:   &ThisExpr{Token: tok},
		Attr:  &Token{Value: "parent"},
		Value: &VariableExpr{Name: &Token{Value: "parent"}},
	}
	return &MethodDecl{
		Token:  tok,
		Name:   &Token{Value: "init"},
		Params: []*Parameter{parentParam},
		Body:   &Block{Token: tok, Statements: []ASTNode{setStmt}},
	}
}

// captureCopyPrologue emits one field write per parameter that some
// descendant unit captures, copying it from its ordinary stack-bound local
// into selfRef's environment right as the call begins. Let-bindings don't
// need this: a captured `let` is rewritten into a field write at its own
// declaration site instead of ever occupying a local at all.
func (lf *lifter) captureCopyPrologue(scope *Scope, params []*Parameter, selfRef Expr) []ASTNode {
	var out []ASTNode
	for _, p := range params {
		def, ok := scope.Defs[p.Name.Value]
		if !ok || !def.IsCaptured {
			continue
		}
		out = append(out, &SetAttrStmt{
			Token: p.Name,
			Obj:   selfRef,
			Attr:  &Token{Value: envFieldName(p.Name.Value)},
			Value: &VariableExpr{Name: p.Name},
		})
	}
	return out
}

// containerPrologue synthesizes the plain (non-run()) environment class a
// function, method, or loop needs purely to hold state a nested lambda
// reaches into, and returns the `let env = new XEnv(...)` declaration to
// prepend to that unit's body.
func (lf *lifter) containerPrologue(scope *Scope, tok *Token) []ASTNode {
	var args []Expr
	if scope.EnvParent != nil {
		args = []Expr{envSelfRef(scope.EnvParent)}
	}
	newExpr := &NewExpr{Token: tok, ClassName: &Token{Value: scope.EnvName}, Arguments: args}
	decl := &VarDeclareStmt{
		Token:        tok,
		Names:        []*Token{{Value: scope.EnvVarName}},
		Initializers: []Expr{newExpr},
		IsConst:      true,
	}

	var methods []*MethodDecl
	if scope.EnvParent != nil {
		methods = append(methods, lf.buildInitMethod(tok))
	}
	// No Interfaces here: a container env is never itself called through
	// run(), only read by nested envs through .parent, so it has no
	// Fn/FnVoid signature to declare conformance to.
	lf.classes = append(lf.classes, &ClassDeclStmt{
		Token:   tok,
		Name:    &Token{Value: scope.EnvName},
		Fields:  buildEnvFields(scope),
		Methods: methods,
	})
	return []ASTNode{decl}
}

// synthesizeEnvObject converts a lambda literal or a promoted named function
// into its environment class plus a run() method holding the (rewritten)
// body, and returns the construction expression that replaces the literal
// or declaration at its use site.
func (lf *lifter) synthesizeEnvObject(scope *Scope, params []*Parameter, body *Block, tok *Token) (Expr, error) {
	rewrittenBody, err := lf.rewriteBlock(body, scope)
	if err != nil {
		return nil, err
	}
	prologue := lf.captureCopyPrologue(scope, params, &ThisExpr{Token: tok})
	rewrittenBody.Statements = append(prologue, rewrittenBody.Statements...)

	var methods []*MethodDecl
	var ctorArgs []Expr
	if scope.EnvParent != nil {
		methods = append(methods, lf.buildInitMethod(tok))
		ctorArgs = []Expr{envSelfRef(scope.EnvParent)}
	}
	methods = append(methods, &MethodDecl{
		Token:  tok,
		Name:   &Token{Value: RtRunMethod},
		Params: params,
		Body:   rewrittenBody,
	})

	sig := lambdaSignature(params, body)
	iface := lf.reg.Intern(sig)

	lf.classes = append(lf.classes, &ClassDeclStmt{
		Token:      tok,
		Name:       &Token{Value: scope.EnvName},
		Interfaces: []*Token{{Value: iface.Name}},
		Fields:     buildEnvFields(scope),
		Methods:    methods,
	})

	lf.reg.RegisterImplementor(sig, scope.EnvName)

	return &NewExpr{Token: tok, ClassName: &Token{Value: scope.EnvName}, Arguments: ctorArgs}, nil
}

// isConvertedLambdaDef reports whether a direct call of def's name should
// dispatch through run() instead of calling def's value as an ordinary
// function: always true for a lambda-literal binding, true for a named
// function binding only when that function was itself promoted into an
// environment object.
func isConvertedLambdaDef(def *Definition, graph *ScopeGraph) bool {
	if def == nil || !def.IsLambda {
		return false
	}
	switch def.Node.(type) {
	case *FunctionExpr, *VarDeclareStmt:
		return true
	case *FunctionDefStmt:
		if s, ok := graph.NodeScope[def.Node]; ok {
			return isEnvObjectUnit(s)
		}
	}
	return false
}

func compoundToPlainOp(op *Token) (*Token, error) {
	var kind TokenType
	var text string
	switch op.Kind {
	case TokenPlusEquals:
		kind, text = TokenPlus, "+"
	case TokenMinusEquals:
		kind, text = TokenMinus, "-"
	case TokenMulEquals:
		kind, text = TokenMul, "*"
	case TokenDivEquals:
		kind, text = TokenDiv, "/"
	case TokenModEquals:
		kind, text = TokenMod, "%"
	default:
		return nil, fmt.Errorf("lambda conversion: unsupported compound assignment operator %q at %s", op.Value, op.GetFileLoc())
	}
	plain := NewToken(kind, text, op.Loc, op.SourceName)
	return &plain, nil
}

func (lf *lifter) rewriteBlock(block *Block, scope *Scope) (*Block, error) {
	if block == nil {
		return nil, nil
	}
	var out []ASTNode
	for _, stmt := range block.Statements {
		rewritten, err := lf.rewriteStmt(stmt, scope)
		if err != nil {
			return nil, err
		}
		out = append(out, rewritten...)
	}
	return &Block{Token: block.Token, Statements: out, EndToken: block.EndToken}, nil
}

func (lf *lifter) rewriteMethodDecl(n *MethodDecl) (*MethodDecl, error) {
	fnScope := lf.graph.NodeScope[n]
	bodyBlock, err := lf.rewriteBlock(n.Body, fnScope)
	if err != nil {
		return nil, err
	}
	if fnScope.NeedsEnv {
		prologue := lf.containerPrologue(fnScope, n.Token)
		if def, ok := fnScope.Defs["this"]; ok && def.IsCaptured {
			prologue = append(prologue, &SetAttrStmt{
				Token: n.Token,
				Obj:   envSelfRef(fnScope),
				Attr:  &Token{Value: envFieldName("this")},
				Value: &ThisExpr{Token: n.Token},
			})
		}
		prologue = append(prologue, lf.captureCopyPrologue(fnScope, n.Params, envSelfRef(fnScope))...)
		bodyBlock.Statements = append(prologue, bodyBlock.Statements...)
	}
	return &MethodDecl{
		Token:      n.Token,
		Name:       n.Name,
		Params:     n.Params,
		Body:       bodyBlock,
		ReturnType: n.ReturnType,
		IsStatic:   n.IsStatic,
	}, nil
}

func (lf *lifter) rewriteStmt(node ASTNode, scope *Scope) ([]ASTNode, error) {
	switch n := node.(type) {
	case *VarDeclareStmt:
		var out []ASTNode
		for i, nameTok := range n.Names {
			var init Expr
			if i < len(n.Initializers) {
				rewrittenInit, err := lf.rewriteExpr(n.Initializers[i], scope)
				if err != nil {
					return nil, err
				}
				init = rewrittenInit
			}

			def, ok := scope.Defs[nameTok.Value]
			if ok && def.IsCaptured {
				value := init
				if value == nil {
					value = &NullExpr{Token: nameTok}
				}
				out = append(out, &SetAttrStmt{
					Token: n.Token,
					Obj:   envSelfRef(scope),
					Attr:  &Token{Value: envFieldName(nameTok.Value)},
					Value: value,
				})
				continue
			}

			var inits []Expr
			if init != nil {
				inits = []Expr{init}
			}
			out = append(out, &VarDeclareStmt{
				Token:        n.Token,
				Names:        []*Token{nameTok},
				Initializers: inits,
				IsConst:      n.IsConst,
			})
		}
		return out, nil

	case *AssignStmt:
		val, err := lf.rewriteExpr(n.Value, scope)
		if err != nil {
			return nil, err
		}
		if target, ok := lf.resolveCapturedTarget(n.Name.Value, scope); ok {
			return []ASTNode{&SetAttrStmt{Token: n.Token, Obj: target.obj, Attr: &Token{Value: target.field}, Value: val}}, nil
		}
		return []ASTNode{&AssignStmt{Token: n.Token, Name: n.Name, Value: val}}, nil

	case *CompoundAssignStmt:
		val, err := lf.rewriteExpr(n.Value, scope)
		if err != nil {
			return nil, err
		}
		plainOp, err := compoundToPlainOp(n.Op)
		if err != nil {
			return nil, err
		}
		if target, ok := lf.resolveCapturedTarget(n.Name.Value, scope); ok {
			readTarget, _ := lf.resolveCapturedTarget(n.Name.Value, scope)
			sum := &BinaryOp{Token: n.Token, Left: fieldAccess(readTarget.obj, readTarget.field), Op: plainOp, Right: val}
			return []ASTNode{&SetAttrStmt{Token: n.Token, Obj: target.obj, Attr: &Token{Value: target.field}, Value: sum}}, nil
		}
		sum := &BinaryOp{Token: n.Token, Left: &VariableExpr{Name: n.Name}, Op: plainOp, Right: val}
		return []ASTNode{&AssignStmt{Token: n.Token, Name: n.Name, Value: sum}}, nil

	case *IndexAssignStmt:
		coll, err := lf.rewriteExpr(n.Collection, scope)
		if err != nil {
			return nil, err
		}
		idx, err := lf.rewriteExpr(n.Index, scope)
		if err != nil {
			return nil, err
		}
		val, err := lf.rewriteExpr(n.Value, scope)
		if err != nil {
			return nil, err
		}
		return []ASTNode{&IndexAssignStmt{Token: n.Token, Collection: coll, Index: idx, Value: val}}, nil

	case *SetAttrStmt:
		obj, err := lf.rewriteExpr(n.Obj, scope)
		if err != nil {
			return nil, err
		}
		val, err := lf.rewriteExpr(n.Value, scope)
		if err != nil {
			return nil, err
		}
		return []ASTNode{&SetAttrStmt{Token: n.Token, Obj: obj, Attr: n.Attr, Value: val}}, nil

	case *IfStmt:
		cond, err := lf.rewriteExpr(n.Condition, scope)
		if err != nil {
			return nil, err
		}
		thenScope := lf.graph.NodeScope[n.ThenBranch]
		thenBlock, err := lf.rewriteBlock(n.ThenBranch, thenScope)
		if err != nil {
			return nil, err
		}
		var elseBlock *Block
		if n.ElseBranch != nil {
			elseScope := lf.graph.NodeScope[n.ElseBranch]
			elseBlock, err = lf.rewriteBlock(n.ElseBranch, elseScope)
			if err != nil {
				return nil, err
			}
		}
		return []ASTNode{&IfStmt{Token: n.Token, Condition: cond, ThenBranch: thenBlock, ElseBranch: elseBlock}}, nil

	case *WhileStmt:
		cond, err := lf.rewriteExpr(n.Cond, scope)
		if err != nil {
			return nil, err
		}
		bodyScope := lf.graph.NodeScope[n]
		bodyBlock, err := lf.rewriteBlock(n.Body, bodyScope)
		if err != nil {
			return nil, err
		}
		if bodyScope.NeedsEnv {
			bodyBlock.Statements = append(lf.containerPrologue(bodyScope, n.Token), bodyBlock.Statements...)
		}
		return []ASTNode{&WhileStmt{Token: n.Token, Cond: cond, Body: bodyBlock}}, nil

	case *ForInStmt:
		iter, err := lf.rewriteExpr(n.Iterable, scope)
		if err != nil {
			return nil, err
		}
		bodyScope := lf.graph.NodeScope[n]
		bodyBlock, err := lf.rewriteBlock(&n.Body, bodyScope)
		if err != nil {
			return nil, err
		}
		if bodyScope.NeedsEnv {
			prologue := lf.containerPrologue(bodyScope, n.Token)
			if def, ok := bodyScope.Defs[n.LoopVariable.Value]; ok && def.IsCaptured {
				prologue = append(prologue, &SetAttrStmt{
					Token: n.Token,
					Obj:   envSelfRef(bodyScope),
					Attr:  &Token{Value: envFieldName(n.LoopVariable.Value)},
					Value: &VariableExpr{Name: n.LoopVariable},
				})
			}
			bodyBlock.Statements = append(prologue, bodyBlock.Statements...)
		}
		return []ASTNode{&ForInStmt{Token: n.Token, LoopVariable: n.LoopVariable, Iterable: iter, Body: *bodyBlock}}, nil

	case *FunctionDefStmt:
		fnScope := lf.graph.NodeScope[n]
		if isEnvObjectUnit(fnScope) {
			newExpr, err := lf.synthesizeEnvObject(fnScope, n.Params, n.Body, n.Token)
			if err != nil {
				return nil, err
			}
			decl := &VarDeclareStmt{
				Token:        n.Token,
				Names:        []*Token{n.Name},
				Initializers: []Expr{newExpr},
				IsConst:      true,
			}
			return []ASTNode{decl}, nil
		}

		bodyBlock, err := lf.rewriteBlock(n.Body, fnScope)
		if err != nil {
			return nil, err
		}
		if fnScope.NeedsEnv {
			prologue := lf.containerPrologue(fnScope, n.Token)
			prologue = append(prologue, lf.captureCopyPrologue(fnScope, n.Params, envSelfRef(fnScope))...)
			bodyBlock.Statements = append(prologue, bodyBlock.Statements...)
		}
		return []ASTNode{&FunctionDefStmt{Token: n.Token, Name: n.Name, Params: n.Params, Body: bodyBlock, ReturnType: n.ReturnType}}, nil

	case *MethodDecl:
		md, err := lf.rewriteMethodDecl(n)
		if err != nil {
			return nil, err
		}
		return []ASTNode{md}, nil

	case *ClassDeclStmt:
		fields := make([]*FieldDecl, len(n.Fields))
		for i, f := range n.Fields {
			fld := &FieldDecl{Name: f.Name, Type: f.Type}
			if f.Initializer != nil {
				init, err := lf.rewriteExpr(f.Initializer, scope)
				if err != nil {
					return nil, err
				}
				fld.Initializer = init
			}
			fields[i] = fld
		}
		methods := make([]*MethodDecl, len(n.Methods))
		for i, m := range n.Methods {
			rm, err := lf.rewriteMethodDecl(m)
			if err != nil {
				return nil, err
			}
			methods[i] = rm
		}
		return []ASTNode{&ClassDeclStmt{
			Token:      n.Token,
			Name:       n.Name,
			SuperClass: n.SuperClass,
			Interfaces: n.Interfaces,
			Fields:     fields,
			Methods:    methods,
		}}, nil

	case *ReturnStmt:
		if n.Value == nil {
			return []ASTNode{&ReturnStmt{Token: n.Token, Value: nil}}, nil
		}
		rv, err := lf.rewriteExpr(*n.Value, scope)
		if err != nil {
			return nil, err
		}
		return []ASTNode{&ReturnStmt{Token: n.Token, Value: &rv}}, nil

	case *Block:
		childScope := lf.graph.NodeScope[n]
		rewritten, err := lf.rewriteBlock(n, childScope)
		if err != nil {
			return nil, err
		}
		return []ASTNode{rewritten}, nil

	case Expr:
		rewritten, err := lf.rewriteExpr(n, scope)
		if err != nil {
			return nil, err
		}
		return []ASTNode{rewritten}, nil

	default:
		return []ASTNode{node}, nil
	}
}

func (lf *lifter) rewriteExpr(node Expr, scope *Scope) (Expr, error) {
	if node == nil {
		return nil, nil
	}
	switch n := node.(type) {
	case *VariableExpr:
		if target, ok := lf.resolveCapturedTarget(n.Name.Value, scope); ok {
			return fieldAccess(target.obj, target.field), nil
		}
		return n, nil

	case *ThisExpr:
		if target, ok := lf.resolveCapturedTarget("this", scope); ok {
			return fieldAccess(target.obj, target.field), nil
		}
		return n, nil

	case *BinaryOp:
		l, err := lf.rewriteExpr(n.Left, scope)
		if err != nil {
			return nil, err
		}
		r, err := lf.rewriteExpr(n.Right, scope)
		if err != nil {
			return nil, err
		}
		return &BinaryOp{Token: n.Token, Left: l, Op: n.Op, Right: r}, nil

	case *LogicalOp:
		l, err := lf.rewriteExpr(n.Left, scope)
		if err != nil {
			return nil, err
		}
		r, err := lf.rewriteExpr(n.Right, scope)
		if err != nil {
			return nil, err
		}
		return &LogicalOp{Token: n.Token, Left: l, Op: n.Op, Right: r}, nil

	case *ComparisonOp:
		l, err := lf.rewriteExpr(n.Left, scope)
		if err != nil {
			return nil, err
		}
		r, err := lf.rewriteExpr(n.Right, scope)
		if err != nil {
			return nil, err
		}
		return &ComparisonOp{Token: n.Token, Left: l, Op: n.Op, Right: r}, nil

	case *UnaryOp:
		o, err := lf.rewriteExpr(n.Operand, scope)
		if err != nil {
			return nil, err
		}
		return &UnaryOp{Token: n.Token, Op: n.Op, Operand: o}, nil

	case *PostfixExpr:
		o, err := lf.rewriteExpr(n.Operand, scope)
		if err != nil {
			return nil, err
		}
		return &PostfixExpr{Token: n.Token, Op: n.Op, Operand: o}, nil

	case *CallExpr:
		return lf.rewriteCallExpr(n, scope)

	case *IndexExpr:
		c, err := lf.rewriteExpr(n.Collection, scope)
		if err != nil {
			return nil, err
		}
		i, err := lf.rewriteExpr(n.Index, scope)
		if err != nil {
			return nil, err
		}
		return &IndexExpr{Token: n.Token, Collection: c, Index: i}, nil

	case *DotExpr:
		o, err := lf.rewriteExpr(n.Obj, scope)
		if err != nil {
			return nil, err
		}
		return &DotExpr{Token: n.Token, Obj: o, Attr: n.Attr}, nil

	case *ArrayExpr:
		elems := make([]Expr, len(n.Elements))
		for i, e := range n.Elements {
			re, err := lf.rewriteExpr(e, scope)
			if err != nil {
				return nil, err
			}
			elems[i] = re
		}
		return &ArrayExpr{Token: n.Token, Elements: elems}, nil

	case *MapExpr:
		props := make([]MapProperty, len(n.Properties))
		for i, p := range n.Properties {
			np := p
			if p.IsComputed {
				rk, err := lf.rewriteExpr(p.Key, scope)
				if err != nil {
					return nil, err
				}
				np.Key = rk
			}
			rv, err := lf.rewriteExpr(p.Value, scope)
			if err != nil {
				return nil, err
			}
			np.Value = rv
			props[i] = np
		}
		return &MapExpr{Token: n.Token, Properties: props}, nil

	case *RangeSpecifier:
		s, err := lf.rewriteExpr(n.Start, scope)
		if err != nil {
			return nil, err
		}
		e, err := lf.rewriteExpr(n.End, scope)
		if err != nil {
			return nil, err
		}
		var step *Expr
		if n.Step != nil {
			rs, err := lf.rewriteExpr(*n.Step, scope)
			if err != nil {
				return nil, err
			}
			step = &rs
		}
		return &RangeSpecifier{Token: n.Token, Start: s, End: e, Step: step}, nil

	case *NewExpr:
		args := make([]Expr, len(n.Arguments))
		for i, a := range n.Arguments {
			ra, err := lf.rewriteExpr(a, scope)
			if err != nil {
				return nil, err
			}
			args[i] = ra
		}
		return &NewExpr{Token: n.Token, ClassName: n.ClassName, Arguments: args}, nil

	case *FunctionExpr:
		fnScope := lf.graph.NodeScope[n]
		return lf.synthesizeEnvObject(fnScope, n.Params, n.Body, n.Token)

	default:
		return n, nil
	}
}

// rewriteCallExpr combines the environment-object rewrite of the callee
// expression with the run()-dispatch rewrite: when the callee, before
// rewriting, is a plain name bound to a converted lambda or promoted
// function, the call is rewritten to invoke its run() method. Anything that
// can't be resolved this statically — a lambda pulled out of a collection,
// passed through another function, or otherwise not a direct name
// reference — falls through to the VM's generic run()-dispatch on any
// callable instance.
func (lf *lifter) rewriteCallExpr(n *CallExpr, scope *Scope) (Expr, error) {
	var originalDef *Definition
	if ve, ok := n.Callee.(*VariableExpr); ok {
		originalDef = scope.lookup(ve.Name.Value)
	}

	callee, err := lf.rewriteExpr(n.Callee, scope)
	if err != nil {
		return nil, err
	}
	if isConvertedLambdaDef(originalDef, lf.graph) {
		callee = &DotExpr{Token: n.Token, Obj: callee, Attr: Token{Value: RtRunMethod}}
	}

	args := make([]Expr, len(n.Arguments))
	for i, a := range n.Arguments {
		ra, err := lf.rewriteExpr(a, scope)
		if err != nil {
			return nil, err
		}
		args[i] = ra
	}
	return &CallExpr{Token: n.Token, Callee: callee, Arguments: args}, nil
}
