package oxide

// Scan builds the pre-order scope graph for a parsed program: one Scope per
// block/function, a Definition per let/const/param/named-fn, and a Use per
// variable reference. It then resolves every Use against the Definition it
// refers to and propagates captures up through intermediate function scopes
// (see propagateCaptures) so each scope's Captured set already reflects
// every ancestor variable a nested lambda will need at runtime.
func Scan(program *Block) *ScopeGraph {
	g := &ScopeGraph{NodeScope: make(map[ASTNode]*Scope)}
	root := newScope(ScopeGlobal, nil, nil, &g.nextID)
	g.Root = root
	g.AllScopes = append(g.AllScopes, root)
	g.NodeScope[program] = root

	sc := &scanner{graph: g}
	sc.scanBlock(program, root)
	sc.resolveUses()
	sc.propagateCaptures()

	return g
}

type scanner struct {
	graph *ScopeGraph
}

func (sc *scanner) newChildScope(kind ScopeKind, parent *Scope, funcNode ASTNode) *Scope {
	s := newScope(kind, parent, funcNode, &sc.graph.nextID)
	sc.graph.AllScopes = append(sc.graph.AllScopes, s)
	return s
}

func (sc *scanner) scanBlock(block *Block, scope *Scope) {
	if block == nil {
		return
	}
	for _, stmt := range block.Statements {
		sc.scanStmt(stmt, scope)
	}
}

func (sc *scanner) scanStmt(node ASTNode, scope *Scope) {
	switch n := node.(type) {
	case *VarDeclareStmt:
		for _, init := range n.Initializers {
			sc.scanExpr(init, scope)
		}
		for i, nameTok := range n.Names {
			var init Expr
			if i < len(n.Initializers) {
				init = n.Initializers[i]
			}
			scope.define(nameTok.Value, n, false, n.IsConst, isLambdaValued(init))
			if fnExpr, ok := init.(*FunctionExpr); ok {
				if fnScope, ok := sc.graph.NodeScope[fnExpr]; ok {
					fnScope.NameHint = nameTok.Value
				}
			}
		}

	case *AssignStmt:
		sc.scanExpr(n.Value, scope)
		sc.recordUse(n.Name.Value, scope, nil)

	case *CompoundAssignStmt:
		sc.scanExpr(n.Value, scope)
		sc.recordUse(n.Name.Value, scope, nil)

	case *IndexAssignStmt:
		sc.scanExpr(n.Collection, scope)
		sc.scanExpr(n.Index, scope)
		sc.scanExpr(n.Value, scope)

	case *SetAttrStmt:
		sc.scanExpr(n.Obj, scope)
		sc.scanExpr(n.Value, scope)

	case *IfStmt:
		sc.scanExpr(n.Condition, scope)
		thenScope := sc.newChildScope(ScopeBlock, scope, nil)
		sc.graph.NodeScope[n.ThenBranch] = thenScope
		sc.scanBlock(n.ThenBranch, thenScope)
		if n.ElseBranch != nil {
			elseScope := sc.newChildScope(ScopeBlock, scope, nil)
			sc.graph.NodeScope[n.ElseBranch] = elseScope
			sc.scanBlock(n.ElseBranch, elseScope)
		}

	case *WhileStmt:
		sc.scanExpr(n.Cond, scope)
		bodyScope := sc.newChildScope(ScopeLoop, scope, n)
		sc.graph.NodeScope[n] = bodyScope
		sc.scanBlock(n.Body, bodyScope)

	case *ForInStmt:
		sc.scanExpr(n.Iterable, scope)
		bodyScope := sc.newChildScope(ScopeLoop, scope, n)
		sc.graph.NodeScope[n] = bodyScope
		bodyScope.define(n.LoopVariable.Value, n, false, false, false)
		sc.scanBlock(&n.Body, bodyScope)

	case *FunctionDefStmt:
		// A named function is itself lambda-valued in its defining scope,
		// so capturing it by name works the same as capturing a `let`-bound
		// lambda.
		scope.define(n.Name.Value, n, false, true, true)
		fnScope := sc.newChildScope(ScopeFunction, scope, n)
		sc.graph.NodeScope[n] = fnScope
		for _, p := range n.Params {
			fnScope.define(p.Name.Value, n, true, false, false)
		}
		sc.scanBlock(n.Body, fnScope)

	case *MethodDecl:
		fnScope := sc.newChildScope(ScopeFunction, scope, n)
		sc.graph.NodeScope[n] = fnScope
		fnScope.define("this", n, true, true, false)
		for _, p := range n.Params {
			fnScope.define(p.Name.Value, n, true, false, false)
		}
		sc.scanBlock(n.Body, fnScope)

	case *ClassDeclStmt:
		for _, f := range n.Fields {
			if f.Initializer != nil {
				sc.scanExpr(f.Initializer, scope)
			}
		}
		for _, m := range n.Methods {
			sc.scanStmt(m, scope)
		}

	case *ReturnStmt:
		if n.Value != nil {
			sc.scanExpr(*n.Value, scope)
		}

	case *Block:
		childScope := sc.newChildScope(ScopeBlock, scope, nil)
		sc.graph.NodeScope[n] = childScope
		sc.scanBlock(n, childScope)

	case Expr:
		sc.scanExpr(n, scope)
	}
}

func (sc *scanner) scanExpr(node ASTNode, scope *Scope) {
	if node == nil {
		return
	}
	switch n := node.(type) {
	case *VariableExpr:
		sc.recordUse(n.Name.Value, scope, n)

	case *BinaryOp:
		sc.scanExpr(n.Left, scope)
		sc.scanExpr(n.Right, scope)
	case *LogicalOp:
		sc.scanExpr(n.Left, scope)
		sc.scanExpr(n.Right, scope)
	case *ComparisonOp:
		sc.scanExpr(n.Left, scope)
		sc.scanExpr(n.Right, scope)
	case *UnaryOp:
		sc.scanExpr(n.Operand, scope)
	case *PostfixExpr:
		sc.scanExpr(n.Operand, scope)
	case *CallExpr:
		sc.scanExpr(n.Callee, scope)
		for _, a := range n.Arguments {
			sc.scanExpr(a, scope)
		}
	case *IndexExpr:
		sc.scanExpr(n.Collection, scope)
		sc.scanExpr(n.Index, scope)
	case *DotExpr:
		sc.scanExpr(n.Obj, scope)
	case *ArrayExpr:
		for _, e := range n.Elements {
			sc.scanExpr(e, scope)
		}
	case *MapExpr:
		for _, p := range n.Properties {
			if p.IsComputed {
				sc.scanExpr(p.Key, scope)
			}
			sc.scanExpr(p.Value, scope)
		}
	case *RangeSpecifier:
		sc.scanExpr(n.Start, scope)
		sc.scanExpr(n.End, scope)
		if n.Step != nil {
			sc.scanExpr(*n.Step, scope)
		}
	case *NewExpr:
		for _, a := range n.Arguments {
			sc.scanExpr(a, scope)
		}
	case *FunctionExpr:
		fnScope := sc.newChildScope(ScopeFunction, scope, n)
		sc.graph.NodeScope[n] = fnScope
		// Every lambda literal becomes an environment object regardless of
		// whether it captures anything, since call sites dispatch through
		// its run() method uniformly (scenario A).
		fnScope.NeedsEnv = true
		for _, p := range n.Params {
			fnScope.define(p.Name.Value, n, true, false, false)
		}
		sc.scanBlock(n.Body, fnScope)
	case *ThisExpr:
		sc.recordUse("this", scope, n)
	}
}

func (sc *scanner) recordUse(name string, scope *Scope, node ASTNode) {
	scope.Uses = append(scope.Uses, &Use{Name: name, Scope: scope, Node: node})
}

// isLambdaValued reports whether an initializer expression is (or
// transparently wraps) a function literal. Anything else — including a
// bare variable reference to another lambda — is resolved structurally
// later; this only catches the direct, syntactic case.
func isLambdaValued(init Expr) bool {
	_, ok := init.(*FunctionExpr)
	return ok
}

// resolveUses links every recorded Use to the Definition it refers to by
// walking outward from the use's own scope. Uses of globals/builtins are
// left with a nil Def.
func (sc *scanner) resolveUses() {
	for _, scope := range sc.graph.AllScopes {
		for _, use := range scope.Uses {
			use.Def = scope.lookup(use.Name)
		}
	}
}

// propagateCaptures implements the parent-copy propagation: for every Use
// whose Definition lives in a strictly enclosing capturing unit (a function
// or a loop iteration), promote that Definition into a field on the unit
// that actually owns it — that's what makes the captured variable live in
// an environment field instead of a plain stack slot, so a descendant
// closure can still reach it once the defining call has returned. Every
// capturing unit strictly between the use and that owner also needs its own
// environment (so the parent chain has somewhere to hop through), but it
// never gets a field for a definition it neither declares nor directly
// reads — it only ever sees it through one more `.parent` hop.
//
// linkEnvParents then collapses the chain: once every unit's NeedsEnv is
// final, each one points straight at the nearest enclosing unit that also
// needs an environment, skipping plain scopes that don't. That's the one
// hop a doubly (or deeper) nested lambda needs per ancestor with state,
// never more, and it's why environment objects share mutation correctly —
// every descendant holding a pointer to the same ancestor environment
// reads and writes the exact same field.
func (sc *scanner) propagateCaptures() {
	for _, scope := range sc.graph.AllScopes {
		for _, use := range scope.Uses {
			if use.Def == nil {
				continue
			}
			defUnit := use.Def.Scope.capturingUnit()
			useUnit := use.Scope.capturingUnit()
			if defUnit == useUnit {
				continue // local read, no capture at all
			}
			if defUnit == nil || defUnit.Kind == ScopeGlobal {
				continue // globals are read directly, never captured
			}

			defUnit.addCaptured(use.Def)
			defUnit.NeedsEnv = true

			for cur := useUnit; cur != nil && cur != defUnit; cur = enclosingCapturingUnit(cur) {
				cur.NeedsEnv = true
			}
		}
	}

	sc.linkEnvParents()
}

func (sc *scanner) linkEnvParents() {
	for _, scope := range sc.graph.AllScopes {
		if !scope.NeedsEnv {
			continue
		}
		for cur := enclosingCapturingUnit(scope); cur != nil; cur = enclosingCapturingUnit(cur) {
			if cur.NeedsEnv {
				scope.EnvParent = cur
				break
			}
		}
	}
}
