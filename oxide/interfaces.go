package oxide

// Signature is the shape the lambda-conversion pass dispatches on: how many
// positional parameters a lambda takes, and whether it produces a value.
// Two lambdas with the same Signature are interchangeable at any call site
// that only calls through the synthesized run() method, regardless of what
// each one actually captured.
type Signature struct {
	ArgCount  int
	HasReturn bool
}

// InterfaceInfo describes one synthesized Fn/FnVoid interface. The VM never
// checks these structurally at runtime — dispatch happens the same way the
// interpreter already dispatches any attribute access, by looking up `run`
// on whatever object is in hand — but the registry keeps every environment
// class honest about which run() arity it must emit, and lets oxidedoc
// describe the interface a converted lambda parameter expects.
type InterfaceInfo struct {
	Name      string
	Signature Signature
	// Implementors lists every environment class name synthesized so far
	// that implements this signature.
	Implementors []string
}

// InterfaceRegistry is the (argCount, hasReturn) -> InterfaceInfo table
// built while converting lambdas in one compilation unit.
type InterfaceRegistry struct {
	bySignature map[Signature]*InterfaceInfo
}

func NewInterfaceRegistry() *InterfaceRegistry {
	return &InterfaceRegistry{bySignature: make(map[Signature]*InterfaceInfo)}
}

// Intern returns the InterfaceInfo for sig, creating and naming it the
// first time this signature is seen in this run.
func (r *InterfaceRegistry) Intern(sig Signature) *InterfaceInfo {
	if info, ok := r.bySignature[sig]; ok {
		return info
	}
	info := &InterfaceInfo{
		Name:      rtInterfaceName(sig.ArgCount, sig.HasReturn),
		Signature: sig,
	}
	r.bySignature[sig] = info
	return info
}

func (r *InterfaceRegistry) RegisterImplementor(sig Signature, envClassName string) {
	info := r.Intern(sig)
	info.Implementors = append(info.Implementors, envClassName)
}

func (r *InterfaceRegistry) All() []*InterfaceInfo {
	out := make([]*InterfaceInfo, 0, len(r.bySignature))
	for _, info := range r.bySignature {
		out = append(out, info)
	}
	return out
}

// lambdaSignature derives the Signature for a function literal: arity from
// its parameter list, and hasReturn from a shallow scan for any `return`
// statement carrying a value anywhere in its body (including inside nested
// control flow, but not inside a nested lambda, which has its own
// signature).
func lambdaSignature(params []*Parameter, body *Block) Signature {
	return Signature{ArgCount: len(params), HasReturn: blockHasValueReturn(body)}
}

func blockHasValueReturn(b *Block) bool {
	if b == nil {
		return false
	}
	for _, stmt := range b.Statements {
		if stmtHasValueReturn(stmt) {
			return true
		}
	}
	return false
}

func stmtHasValueReturn(node ASTNode) bool {
	switch n := node.(type) {
	case *ReturnStmt:
		return n.Value != nil && *n.Value != nil
	case *IfStmt:
		if blockHasValueReturn(n.ThenBranch) {
			return true
		}
		return blockHasValueReturn(n.ElseBranch)
	case *WhileStmt:
		return blockHasValueReturn(n.Body)
	case *ForInStmt:
		return blockHasValueReturn(&n.Body)
	case *Block:
		return blockHasValueReturn(n)
	}
	return false
}
