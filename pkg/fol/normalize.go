package fol

import "fmt"

// Normalize runs the full normaliser pipeline (spec §4.2): NNF,
// standardise-apart, Skolemise against env, then drop universals. The
// result has no implies/iff/forall/exists nodes remaining; every not
// wraps an atom, and every free variable is implicitly universal.
func Normalize(n *Node, env *SkolemEnv) *Node {
	n = ToNNF(n)
	n = StandardizeApart(n)
	n = Skolemize(n, env)
	n = DropUniversals(n)
	return n
}

// ToNNF pushes negation to the atoms via De Morgan and quantifier
// duality, eliminating implies and iff along the way (spec §4.2 step 1,
// §8.2 invariant).
func ToNNF(n *Node) *Node {
	return nnf(n, true)
}

// nnf recurses with an explicit polarity flag rather than eagerly
// building and then negating a subtree, so implies/iff are eliminated
// in the same pass that distributes negation.
func nnf(n *Node, polarity bool) *Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindPredicate, KindEquals:
		if polarity {
			return n
		}
		return Not(n)
	case KindNot:
		return nnf(n.Operand, !polarity)
	case KindAnd:
		if polarity {
			return And(nnf(n.Left, true), nnf(n.Right, true))
		}
		return Or(nnf(n.Left, false), nnf(n.Right, false))
	case KindOr:
		if polarity {
			return Or(nnf(n.Left, true), nnf(n.Right, true))
		}
		return And(nnf(n.Left, false), nnf(n.Right, false))
	case KindImplies:
		// l -> r  ==  -l | r
		if polarity {
			return Or(nnf(n.Left, false), nnf(n.Right, true))
		}
		return And(nnf(n.Left, true), nnf(n.Right, false))
	case KindIff:
		// l <-> r  ==  (l & r) | (-l & -r)
		if polarity {
			return Or(And(nnf(n.Left, true), nnf(n.Right, true)), And(nnf(n.Left, false), nnf(n.Right, false)))
		}
		return Or(And(nnf(n.Left, true), nnf(n.Right, false)), And(nnf(n.Left, false), nnf(n.Right, true)))
	case KindForall:
		if polarity {
			return Forall(n.Var, nnf(n.Body, true))
		}
		return Exists(n.Var, nnf(n.Body, false))
	case KindExists:
		if polarity {
			return Exists(n.Var, nnf(n.Body, true))
		}
		return Forall(n.Var, nnf(n.Body, false))
	default:
		return n
	}
}

// StandardizeApart renames every quantified variable to a fresh unique
// name (_v0, _v1, …) so no two quantifiers share a binder name, saving
// and restoring shadowed mappings across recursion so an inner rebind
// never leaks its fresh name to an outer scope once the inner quantifier
// is left behind (spec §4.2 step 2).
func StandardizeApart(n *Node) *Node {
	counter := 0
	return standardizeRec(n, map[string]string{}, &counter)
}

func standardizeRec(n *Node, rename map[string]string, counter *int) *Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindVariable:
		if fresh, ok := rename[n.Name]; ok {
			return Var(fresh)
		}
		return n
	case KindConstant:
		return n
	case KindFunction, KindPredicate:
		args := make([]*Node, len(n.Args))
		for i, a := range n.Args {
			args[i] = standardizeRec(a, rename, counter)
		}
		return &Node{Kind: n.Kind, Name: n.Name, Args: args}
	case KindEquals:
		return &Node{Kind: KindEquals, Left: standardizeRec(n.Left, rename, counter), Right: standardizeRec(n.Right, rename, counter)}
	case KindNot:
		return &Node{Kind: KindNot, Operand: standardizeRec(n.Operand, rename, counter)}
	case KindAnd, KindOr, KindImplies, KindIff:
		return &Node{Kind: n.Kind, Left: standardizeRec(n.Left, rename, counter), Right: standardizeRec(n.Right, rename, counter)}
	case KindForall, KindExists:
		fresh := fmt.Sprintf("_v%d", *counter)
		*counter++
		old, hadOld := rename[n.Var.Name]
		rename[n.Var.Name] = fresh
		body := standardizeRec(n.Body, rename, counter)
		if hadOld {
			rename[n.Var.Name] = old
		} else {
			delete(rename, n.Var.Name)
		}
		return &Node{Kind: n.Kind, Var: Var(fresh), Body: body}
	default:
		return n
	}
}

// SkolemEnv is the clausification state shared by successive Skolemize
// calls (spec §3): a counter that never resets while the env is reused,
// so two successive calls never collide on a generated symbol name. A
// caller that clausifies concurrently against one env must serialise on
// it itself. The Horn engine, the SAT engine and the engine manager each
// create a fresh SkolemEnv per Prove call; Session.SkolemEnv is not
// passed to them.
type SkolemEnv struct {
	counter     int
	skolemFuncs map[string]int // generated symbol -> arity
}

// NewSkolemEnv returns a fresh, empty SkolemEnv.
func NewSkolemEnv() *SkolemEnv {
	return &SkolemEnv{skolemFuncs: map[string]int{}}
}

// SkolemFunctions returns the generated-symbol table (read-only use by
// callers; the map is not copied, so callers must not mutate it).
func (env *SkolemEnv) SkolemFunctions() map[string]int {
	return env.skolemFuncs
}

func (env *SkolemEnv) freshSkolem(arity int) string {
	name := fmt.Sprintf("sk_%d", env.counter)
	env.counter++
	env.skolemFuncs[name] = arity
	return name
}

// Skolemize replaces every exists x.φ with φ[x ↦ sk_k(u1,…,um)] where
// sk_k is fresh in env and u1..um is the stack of universal variables
// currently enclosing the existential (spec §4.2 step 3). Input must
// already be in NNF with standardised-apart binder names.
func Skolemize(n *Node, env *SkolemEnv) *Node {
	return skolemizeRec(n, nil, env)
}

func skolemizeRec(n *Node, universals []string, env *SkolemEnv) *Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindForall:
		inner := append(append([]string{}, universals...), n.Var.Name)
		return &Node{Kind: KindForall, Var: n.Var, Body: skolemizeRec(n.Body, inner, env)}
	case KindExists:
		args := make([]*Node, len(universals))
		for i, name := range universals {
			args[i] = Var(name)
		}
		skolemTerm := Fn(env.freshSkolem(len(universals)), args...)
		substituted := Subst{n.Var.Name: skolemTerm}.Apply(n.Body)
		return skolemizeRec(substituted, universals, env)
	case KindNot:
		return &Node{Kind: KindNot, Operand: skolemizeRec(n.Operand, universals, env)}
	case KindAnd, KindOr, KindImplies, KindIff:
		return &Node{Kind: n.Kind, Left: skolemizeRec(n.Left, universals, env), Right: skolemizeRec(n.Right, universals, env)}
	default:
		// Atoms (predicate, equals) carry no quantifiers in their term
		// arguments; nothing further to Skolemise.
		return n
	}
}

// DropUniversals strips every remaining forall wrapper, leaving its
// bound variable implicitly universal at clause level (spec §4.2 step
// 4). Input must already be Skolemised, so no exists node remains.
func DropUniversals(n *Node) *Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindForall:
		return DropUniversals(n.Body)
	case KindNot:
		return &Node{Kind: KindNot, Operand: DropUniversals(n.Operand)}
	case KindAnd, KindOr, KindImplies, KindIff:
		return &Node{Kind: n.Kind, Left: DropUniversals(n.Left), Right: DropUniversals(n.Right)}
	default:
		return n
	}
}
