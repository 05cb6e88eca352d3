package fol

import "sort"

// Subst is a mapping from variable name to replacement term. The
// normaliser (Skolemisation) and the SAT engine's grounding apply it
// eagerly with Apply; the Horn engine also uses it as its runtime
// binding set, where a binding may name another variable and is
// resolved with walkVar.
type Subst map[string]*Node

// Apply returns a new tree with every free occurrence of a variable in s
// replaced by its mapped term. Bound variables (quantifier binders and
// their bodies) are only rewritten when the binder name itself is not
// shadowed by an inner quantifier of the same name; callers that already
// ran standardise-apart need not worry about shadowing since every binder
// name is unique after that pass.
func (s Subst) Apply(n *Node) *Node {
	if n == nil {
		return nil
	}
	switch n.Kind {
	case KindVariable:
		if repl, ok := s[n.Name]; ok {
			return repl
		}
		return n
	case KindConstant:
		return n
	case KindFunction, KindPredicate:
		args := make([]*Node, len(n.Args))
		for i, a := range n.Args {
			args[i] = s.Apply(a)
		}
		return &Node{Kind: n.Kind, Name: n.Name, Args: args}
	case KindEquals:
		return &Node{Kind: KindEquals, Left: s.Apply(n.Left), Right: s.Apply(n.Right)}
	case KindNot:
		return &Node{Kind: KindNot, Operand: s.Apply(n.Operand)}
	case KindAnd, KindOr, KindImplies, KindIff:
		return &Node{Kind: n.Kind, Left: s.Apply(n.Left), Right: s.Apply(n.Right)}
	case KindForall, KindExists:
		// Do not rewrite the binder itself, and stop substituting a name
		// inside the scope of a quantifier that rebinds it.
		inner := s
		if _, shadowed := s[n.Var.Name]; shadowed {
			inner = make(Subst, len(s))
			for k, v := range s {
				if k != n.Var.Name {
					inner[k] = v
				}
			}
		}
		return &Node{Kind: n.Kind, Var: n.Var, Body: inner.Apply(n.Body)}
	default:
		return n
	}
}

// FreeVariables returns the set of free (unquantified) variable names in
// n, as a sorted slice for deterministic iteration (used by Tseitin
// encoding to fix the argument order of its definitional predicates, and
// by the SAT engine's grounding).
func FreeVariables(n *Node) []string {
	seen := map[string]bool{}
	var walk func(n *Node, bound map[string]bool)
	walk = func(n *Node, bound map[string]bool) {
		if n == nil {
			return
		}
		switch n.Kind {
		case KindVariable:
			if !bound[n.Name] {
				seen[n.Name] = true
			}
		case KindConstant:
		case KindFunction, KindPredicate:
			for _, a := range n.Args {
				walk(a, bound)
			}
		case KindEquals:
			walk(n.Left, bound)
			walk(n.Right, bound)
		case KindNot:
			walk(n.Operand, bound)
		case KindAnd, KindOr, KindImplies, KindIff:
			walk(n.Left, bound)
			walk(n.Right, bound)
		case KindForall, KindExists:
			inner := make(map[string]bool, len(bound)+1)
			for k := range bound {
				inner[k] = true
			}
			inner[n.Var.Name] = true
			walk(n.Body, inner)
		}
	}
	walk(n, map[string]bool{})
	names := make([]string, 0, len(seen))
	for k := range seen {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// NodeCount returns the number of nodes in the tree rooted at n. The
// clausifier's node budget does not call it; it counts the nodes it
// creates instead.
func NodeCount(n *Node) int {
	if n == nil {
		return 0
	}
	count := 1
	for _, a := range n.Args {
		count += NodeCount(a)
	}
	count += NodeCount(n.Left)
	count += NodeCount(n.Right)
	count += NodeCount(n.Operand)
	count += NodeCount(n.Body)
	return count
}

// FormulaSignature is the { predicates, functions, constants, variables }
// tuple extracted from one or more formulas (spec §3), used to drive
// congruence-axiom generation and model-finder enumeration.
type FormulaSignature struct {
	Predicates map[string]int // name -> arity
	Functions  map[string]int
	Constants  map[string]bool
	Variables  map[string]bool
}

// NewFormulaSignature returns an empty signature.
func NewFormulaSignature() *FormulaSignature {
	return &FormulaSignature{
		Predicates: map[string]int{},
		Functions:  map[string]int{},
		Constants:  map[string]bool{},
		Variables:  map[string]bool{},
	}
}

// ExtractSignature walks one or more formulas and accumulates their
// predicate/function/constant/variable symbols into a single signature.
func ExtractSignature(formulas ...*Node) *FormulaSignature {
	sig := NewFormulaSignature()
	for _, f := range formulas {
		sig.absorb(f)
	}
	return sig
}

func (sig *FormulaSignature) absorb(n *Node) {
	if n == nil {
		return
	}
	switch n.Kind {
	case KindVariable:
		sig.Variables[n.Name] = true
	case KindConstant:
		sig.Constants[n.Name] = true
	case KindFunction:
		sig.Functions[n.Name] = len(n.Args)
		for _, a := range n.Args {
			sig.absorb(a)
		}
	case KindPredicate:
		sig.Predicates[n.Name] = len(n.Args)
		for _, a := range n.Args {
			sig.absorb(a)
		}
	case KindEquals:
		sig.absorb(n.Left)
		sig.absorb(n.Right)
	case KindNot:
		sig.absorb(n.Operand)
	case KindAnd, KindOr, KindImplies, KindIff:
		sig.absorb(n.Left)
		sig.absorb(n.Right)
	case KindForall, KindExists:
		sig.absorb(n.Body)
	}
}

// Merge folds other into sig in place.
func (sig *FormulaSignature) Merge(other *FormulaSignature) {
	for k, v := range other.Predicates {
		sig.Predicates[k] = v
	}
	for k, v := range other.Functions {
		sig.Functions[k] = v
	}
	for k := range other.Constants {
		sig.Constants[k] = true
	}
	for k := range other.Variables {
		sig.Variables[k] = true
	}
}

// ConstantNames returns the signature's constants as a sorted slice.
func (sig *FormulaSignature) ConstantNames() []string {
	names := make([]string, 0, len(sig.Constants))
	for k := range sig.Constants {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// CanonicalArgString renders a term for use as part of a canonical
// lookup key (ground-atom keys in the SAT engine and in the Horn engine's
// CheckSat). Terms must already be fully walked/ground.
func CanonicalArgString(n *Node) string {
	return printNode(n, precAtom)
}
