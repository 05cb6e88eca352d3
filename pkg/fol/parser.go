package fol

// Parse turns Prover9-style surface syntax into a formula AST (spec §4.1).
// A trailing period is optional; anything left over after the formula
// (other than a period and trailing whitespace) is a PARSE_ERROR.
//
// Precedence, weakest to strongest: <->, -> (right-associative), |, &,
// unary -, quantifiers (all/exists), atoms and parenthesised formulas.
// Equality is an atom: t1 = t2.
func Parse(text string) (*Node, error) {
	p := &parser{lex: newLexer(text), bound: map[string]bool{}}
	formula, err := p.parseIff()
	if err != nil {
		return nil, err
	}
	if t := p.lex.peek(); t.kind == tokPeriod {
		p.lex.next()
	}
	if t := p.lex.peek(); t.kind != tokEOF {
		return nil, newErrorAt(ParseError, t.pos, "unexpected trailing token %q", t.text)
	}
	return formula, nil
}

type parser struct {
	lex   *lexer
	bound map[string]bool
}

func (p *parser) parseIff() (*Node, error) {
	left, err := p.parseImplies()
	if err != nil {
		return nil, err
	}
	for p.lex.peek().kind == tokIff {
		p.lex.next()
		right, err := p.parseImplies()
		if err != nil {
			return nil, err
		}
		left = Iff(left, right)
	}
	return left, nil
}

func (p *parser) parseImplies() (*Node, error) {
	left, err := p.parseOr()
	if err != nil {
		return nil, err
	}
	if p.lex.peek().kind == tokImplies {
		p.lex.next()
		right, err := p.parseImplies()
		if err != nil {
			return nil, err
		}
		return Implies(left, right), nil
	}
	return left, nil
}

func (p *parser) parseOr() (*Node, error) {
	left, err := p.parseAnd()
	if err != nil {
		return nil, err
	}
	for p.lex.peek().kind == tokOr {
		p.lex.next()
		right, err := p.parseAnd()
		if err != nil {
			return nil, err
		}
		left = Or(left, right)
	}
	return left, nil
}

func (p *parser) parseAnd() (*Node, error) {
	left, err := p.parseUnary()
	if err != nil {
		return nil, err
	}
	for p.lex.peek().kind == tokAnd {
		p.lex.next()
		right, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		left = And(left, right)
	}
	return left, nil
}

func (p *parser) parseUnary() (*Node, error) {
	if p.lex.peek().kind == tokNot {
		p.lex.next()
		operand, err := p.parseUnary()
		if err != nil {
			return nil, err
		}
		return Not(operand), nil
	}
	return p.parseQuantifiedOrAtom()
}

func (p *parser) parseQuantifiedOrAtom() (*Node, error) {
	t := p.lex.peek()
	switch t.kind {
	case tokAll, tokExists:
		p.lex.next()
		nameTok := p.lex.next()
		if nameTok.kind != tokIdent {
			return nil, newErrorAt(ParseError, nameTok.pos, "expected variable name after %q, found %q", t.text, nameTok.text)
		}
		v := Var(nameTok.text)
		wasBound := p.bound[nameTok.text]
		p.bound[nameTok.text] = true
		body, err := p.parseUnary()
		if !wasBound {
			delete(p.bound, nameTok.text)
		}
		if err != nil {
			return nil, err
		}
		if t.kind == tokAll {
			return Forall(v, body), nil
		}
		return Exists(v, body), nil
	case tokLParen:
		p.lex.next()
		inner, err := p.parseIff()
		if err != nil {
			return nil, err
		}
		closeTok := p.lex.next()
		if closeTok.kind != tokRParen {
			return nil, newErrorAt(ParseError, closeTok.pos, "expected ')', found %q", tokenDescription(closeTok))
		}
		return inner, nil
	case tokIdent:
		return p.parseAtomFromIdent()
	default:
		return nil, newErrorAt(ParseError, t.pos, "expected formula, found %q", tokenDescription(t))
	}
}

// parseAtomFromIdent parses an identifier-led atom: either a predicate
// application `p(t1,...,tn)` / propositional atom `p`, or an equality
// atom `t1 = t2` once the first term is classified (spec §4.1: equality
// operands are always parsed as terms regardless of surrounding position).
func (p *parser) parseAtomFromIdent() (*Node, error) {
	nameTok := p.lex.next()
	var args []*Node
	if p.lex.peek().kind == tokLParen {
		var err error
		args, err = p.parseArgList()
		if err != nil {
			return nil, err
		}
	}
	if p.lex.peek().kind == tokEquals {
		p.lex.next()
		left := p.classifyTerm(nameTok.text, args)
		right, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		return Eq(left, right), nil
	}
	return Pred(nameTok.text, args...), nil
}

// parseArgList parses a parenthesised, comma-separated term list; the
// opening '(' must be the current lookahead token.
func (p *parser) parseArgList() ([]*Node, error) {
	p.lex.next() // consume '('
	var args []*Node
	if p.lex.peek().kind == tokRParen {
		p.lex.next()
		return args, nil
	}
	for {
		arg, err := p.parseTerm()
		if err != nil {
			return nil, err
		}
		args = append(args, arg)
		t := p.lex.next()
		if t.kind == tokComma {
			continue
		}
		if t.kind == tokRParen {
			break
		}
		return nil, newErrorAt(ParseError, t.pos, "expected ',' or ')' in argument list, found %q", tokenDescription(t))
	}
	return args, nil
}

// parseTerm parses one term: variable, constant, or function application.
func (p *parser) parseTerm() (*Node, error) {
	t := p.lex.next()
	if t.kind != tokIdent {
		return nil, newErrorAt(ParseError, t.pos, "expected term, found %q", tokenDescription(t))
	}
	var args []*Node
	if p.lex.peek().kind == tokLParen {
		var err error
		args, err = p.parseArgList()
		if err != nil {
			return nil, err
		}
	}
	return p.classifyTerm(t.text, args), nil
}

// classifyTerm implements the identifier classification rules of spec
// §4.1: a name bound by an enclosing quantifier is always a variable;
// a name applied to arguments is a function; otherwise a single
// lowercase letter is an implicitly-universal free variable and any
// other name is a constant.
func (p *parser) classifyTerm(name string, args []*Node) *Node {
	if len(args) > 0 {
		return Fn(name, args...)
	}
	if p.bound[name] {
		return Var(name)
	}
	if isSingleLowerLetter(name) {
		return Var(name)
	}
	return Const(name)
}

func isSingleLowerLetter(name string) bool {
	if len(name) != 1 {
		return false
	}
	c := name[0]
	return c >= 'a' && c <= 'z'
}

func tokenDescription(t token) string {
	if t.kind == tokEOF {
		return "end of input"
	}
	return t.text
}
