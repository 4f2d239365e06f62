package query

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/coredb/coredb/internal/model"
)

// Parser compiles the SQL subset described in spec.md §4.4 into a
// ParsedQuery: SELECT/INSERT/UPDATE/DELETE with a single target, AND-only
// WHERE conjunctions, ORDER BY/LIMIT/OFFSET. CreateSchema/DropSchema
// ParsedQuery values are built directly by schema-management callers, not
// produced by this parser, so it never emits those operations.
//
// The parser is hand-rolled recursive descent over a flat token stream,
// in the style of the teacher's Cypher parser/AST builder: no lexer
// generator, no grammar DSL, explicit position-tracking helpers.
type Parser struct {
	tokens []string
	pos    int
}

// Parse compiles sql into a ParsedQuery, or fails with ErrUnsupported for
// a deliberately-excluded construct (OR, subqueries, joins, aggregates,
// multi-row VALUES) or ErrSyntax for anything else malformed.
func Parse(sql string) (*ParsedQuery, error) {
	tokens := tokenize(sql)
	if len(tokens) == 0 {
		return nil, fmt.Errorf("%w: empty query", ErrSyntax)
	}
	p := &Parser{tokens: tokens}

	switch strings.ToUpper(p.peek()) {
	case "SELECT":
		return p.parseSelect()
	case "INSERT":
		return p.parseInsert()
	case "UPDATE":
		return p.parseUpdate()
	case "DELETE":
		return p.parseDelete()
	default:
		return nil, fmt.Errorf("%w: statement must begin with SELECT, INSERT, UPDATE, or DELETE, got %q", ErrSyntax, p.peek())
	}
}

func (p *Parser) peek() string {
	if p.pos >= len(p.tokens) {
		return ""
	}
	return p.tokens[p.pos]
}

func (p *Parser) peekUpper() string { return strings.ToUpper(p.peek()) }

func (p *Parser) atEnd() bool { return p.pos >= len(p.tokens) }

func (p *Parser) advance() string {
	tok := p.peek()
	p.pos++
	return tok
}

func (p *Parser) expectUpper(want string) error {
	if p.peekUpper() != want {
		return fmt.Errorf("%w: expected %q, got %q", ErrSyntax, want, p.peek())
	}
	p.advance()
	return nil
}

func (p *Parser) expectToken(want string) error {
	if p.peek() != want {
		return fmt.Errorf("%w: expected %q, got %q", ErrSyntax, want, p.peek())
	}
	p.advance()
	return nil
}

// requireEnd rejects trailing tokens, naming the common unsupported
// trailing clauses explicitly so the error is actionable.
func (p *Parser) requireEnd() error {
	if p.atEnd() {
		return nil
	}
	switch p.peekUpper() {
	case "GROUP", "HAVING", "UNION", "JOIN":
		return fmt.Errorf("%w: %s is not supported", ErrUnsupported, p.peekUpper())
	default:
		return fmt.Errorf("%w: unexpected trailing token %q", ErrSyntax, p.peek())
	}
}

func (p *Parser) parseSelect() (*ParsedQuery, error) {
	p.advance() // SELECT

	columns, err := p.parseSelectColumns()
	if err != nil {
		return nil, err
	}

	if err := p.expectUpper("FROM"); err != nil {
		return nil, err
	}
	if p.peek() == "(" {
		return nil, fmt.Errorf("%w: subqueries in FROM are not supported", ErrUnsupported)
	}
	target := p.advance()
	if target == "" {
		return nil, fmt.Errorf("%w: expected table name after FROM", ErrSyntax)
	}
	if p.peek() == "," || p.peekUpper() == "JOIN" {
		return nil, fmt.Errorf("%w: multiple tables/joins are not supported", ErrUnsupported)
	}

	q := &ParsedQuery{Operation: OpSelect, Target: target, Columns: columns}

	if p.peekUpper() == "WHERE" {
		conditions, err := p.parseWhere()
		if err != nil {
			return nil, err
		}
		q.Conditions = conditions
	}

	if p.peekUpper() == "ORDER" {
		orderBy, err := p.parseOrderBy()
		if err != nil {
			return nil, err
		}
		q.OrderBy = orderBy
	}

	if p.peekUpper() == "LIMIT" {
		p.advance()
		n, err := p.parseUint()
		if err != nil {
			return nil, err
		}
		q.Limit = &n
	}

	if p.peekUpper() == "OFFSET" {
		p.advance()
		n, err := p.parseUint()
		if err != nil {
			return nil, err
		}
		q.Offset = &n
	}

	if err := p.requireEnd(); err != nil {
		return nil, err
	}
	return q, nil
}

func (p *Parser) parseSelectColumns() ([]string, error) {
	if p.peek() == "*" {
		p.advance()
		return []string{"*"}, nil
	}
	var cols []string
	for {
		name := p.advance()
		if name == "" || strings.EqualFold(name, "FROM") {
			return nil, fmt.Errorf("%w: expected column name", ErrSyntax)
		}
		if p.peek() == "(" {
			return nil, fmt.Errorf("%w: aggregate functions are not supported (%s)", ErrUnsupported, name)
		}
		cols = append(cols, name)
		if p.peek() == "," {
			p.advance()
			continue
		}
		break
	}
	return cols, nil
}

func (p *Parser) parseWhere() ([]Condition, error) {
	p.advance() // WHERE
	var conditions []Condition
	for {
		cond, err := p.parseCondition()
		if err != nil {
			return nil, err
		}
		conditions = append(conditions, cond)

		switch p.peekUpper() {
		case "AND":
			p.advance()
			continue
		case "OR":
			return nil, fmt.Errorf("%w: OR is not supported, only AND-conjoined conditions", ErrUnsupported)
		default:
			return conditions, nil
		}
	}
}

func (p *Parser) parseCondition() (Condition, error) {
	column := p.advance()
	if column == "" {
		return Condition{}, fmt.Errorf("%w: expected column name in condition", ErrSyntax)
	}

	switch p.peekUpper() {
	case "IS":
		p.advance()
		if p.peekUpper() == "NOT" {
			p.advance()
			if err := p.expectUpper("NULL"); err != nil {
				return Condition{}, err
			}
			return Condition{Column: column, Operator: OpIsNotNull, Value: model.Null}, nil
		}
		if err := p.expectUpper("NULL"); err != nil {
			return Condition{}, err
		}
		return Condition{Column: column, Operator: OpIsNull, Value: model.Null}, nil

	case "LIKE":
		p.advance()
		pattern, err := p.parseValue()
		if err != nil {
			return Condition{}, err
		}
		raw, ok := pattern.AsString()
		if !ok {
			return Condition{}, fmt.Errorf("%w: LIKE pattern must be a string literal", ErrSyntax)
		}
		return Condition{Column: column, Operator: OpLike, Value: model.String(translateLikePattern(raw))}, nil

	case "IN":
		p.advance()
		if err := p.expectToken("("); err != nil {
			return Condition{}, err
		}
		var values []model.Value
		for {
			v, err := p.parseValue()
			if err != nil {
				return Condition{}, err
			}
			values = append(values, v)
			if p.peek() == "," {
				p.advance()
				continue
			}
			break
		}
		if err := p.expectToken(")"); err != nil {
			return Condition{}, err
		}
		return Condition{Column: column, Operator: OpIn, Value: model.Array(values)}, nil

	default:
		op, err := p.parseComparisonOperator()
		if err != nil {
			return Condition{}, err
		}
		value, err := p.parseValue()
		if err != nil {
			return Condition{}, err
		}
		return Condition{Column: column, Operator: op, Value: value}, nil
	}
}

func (p *Parser) parseComparisonOperator() (Operator, error) {
	tok := p.advance()
	switch tok {
	case "=":
		return OpEq, nil
	case "!=", "<>":
		return OpNe, nil
	case "<":
		return OpLt, nil
	case "<=":
		return OpLe, nil
	case ">":
		return OpGt, nil
	case ">=":
		return OpGe, nil
	default:
		return "", fmt.Errorf("%w: expected comparison operator, got %q", ErrSyntax, tok)
	}
}

func (p *Parser) parseValue() (model.Value, error) {
	tok := p.advance()
	if tok == "" {
		return model.Value{}, fmt.Errorf("%w: expected a value", ErrSyntax)
	}
	if isQuoted(tok) {
		return model.String(unquote(tok)), nil
	}
	switch strings.ToUpper(tok) {
	case "NULL":
		return model.Null, nil
	case "TRUE":
		return model.Bool(true), nil
	case "FALSE":
		return model.Bool(false), nil
	case "SELECT":
		return model.Value{}, fmt.Errorf("%w: subqueries are not supported", ErrUnsupported)
	}
	if i, err := strconv.ParseInt(tok, 10, 64); err == nil {
		return model.Int(i), nil
	}
	if f, err := strconv.ParseFloat(tok, 64); err == nil {
		return model.Float(f), nil
	}
	return model.Value{}, fmt.Errorf("%w: %q is not a recognized literal", ErrSyntax, tok)
}

func (p *Parser) parseUint() (uint64, error) {
	tok := p.advance()
	n, err := strconv.ParseUint(tok, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: expected a non-negative integer, got %q", ErrSyntax, tok)
	}
	return n, nil
}

func (p *Parser) parseOrderBy() ([]OrderBy, error) {
	p.advance() // ORDER
	if err := p.expectUpper("BY"); err != nil {
		return nil, err
	}
	var items []OrderBy
	for {
		col := p.advance()
		if col == "" {
			return nil, fmt.Errorf("%w: expected column name in ORDER BY", ErrSyntax)
		}
		item := OrderBy{Column: col}
		switch p.peekUpper() {
		case "DESC":
			item.Descending = true
			p.advance()
		case "ASC":
			p.advance()
		}
		items = append(items, item)
		if p.peek() == "," {
			p.advance()
			continue
		}
		break
	}
	return items, nil
}

func (p *Parser) parseInsert() (*ParsedQuery, error) {
	p.advance() // INSERT
	if err := p.expectUpper("INTO"); err != nil {
		return nil, err
	}
	target := p.advance()
	if target == "" {
		return nil, fmt.Errorf("%w: expected table name after INSERT INTO", ErrSyntax)
	}

	if err := p.expectToken("("); err != nil {
		return nil, err
	}
	var cols []string
	for {
		name := p.advance()
		if name == "" {
			return nil, fmt.Errorf("%w: expected column name", ErrSyntax)
		}
		cols = append(cols, name)
		if p.peek() == "," {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectToken(")"); err != nil {
		return nil, err
	}

	if err := p.expectUpper("VALUES"); err != nil {
		return nil, err
	}
	if err := p.expectToken("("); err != nil {
		return nil, err
	}
	var vals []model.Value
	for {
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		vals = append(vals, v)
		if p.peek() == "," {
			p.advance()
			continue
		}
		break
	}
	if err := p.expectToken(")"); err != nil {
		return nil, err
	}

	if p.peek() == "," {
		return nil, fmt.Errorf("%w: multi-row VALUES are not supported", ErrUnsupported)
	}
	if len(cols) != len(vals) {
		return nil, fmt.Errorf("%w: column count (%d) does not match value count (%d)", ErrSyntax, len(cols), len(vals))
	}
	if err := p.requireEnd(); err != nil {
		return nil, err
	}

	data := model.NewObject()
	for i, c := range cols {
		data.Set(c, vals[i])
	}
	return &ParsedQuery{Operation: OpInsert, Target: target, Data: data}, nil
}

func (p *Parser) parseUpdate() (*ParsedQuery, error) {
	p.advance() // UPDATE
	target := p.advance()
	if target == "" {
		return nil, fmt.Errorf("%w: expected table name after UPDATE", ErrSyntax)
	}
	if err := p.expectUpper("SET"); err != nil {
		return nil, err
	}

	data := model.NewObject()
	for {
		col := p.advance()
		if col == "" {
			return nil, fmt.Errorf("%w: expected column name in SET", ErrSyntax)
		}
		if err := p.expectToken("="); err != nil {
			return nil, err
		}
		v, err := p.parseValue()
		if err != nil {
			return nil, err
		}
		data.Set(col, v)
		if p.peek() == "," {
			p.advance()
			continue
		}
		break
	}

	q := &ParsedQuery{Operation: OpUpdate, Target: target, Data: data}
	if p.peekUpper() == "WHERE" {
		conditions, err := p.parseWhere()
		if err != nil {
			return nil, err
		}
		q.Conditions = conditions
	}
	if err := p.requireEnd(); err != nil {
		return nil, err
	}
	return q, nil
}

func (p *Parser) parseDelete() (*ParsedQuery, error) {
	p.advance() // DELETE
	if err := p.expectUpper("FROM"); err != nil {
		return nil, err
	}
	target := p.advance()
	if target == "" {
		return nil, fmt.Errorf("%w: expected table name after DELETE FROM", ErrSyntax)
	}

	q := &ParsedQuery{Operation: OpDelete, Target: target}
	if p.peekUpper() == "WHERE" {
		conditions, err := p.parseWhere()
		if err != nil {
			return nil, err
		}
		q.Conditions = conditions
	}
	if err := p.requireEnd(); err != nil {
		return nil, err
	}
	return q, nil
}

// translateLikePattern converts a SQL LIKE pattern into a regular
// expression, escaping regex metacharacters and mapping % to .* and _
// to . per spec.md §4.4.
func translateLikePattern(pattern string) string {
	var b strings.Builder
	b.WriteByte('^')
	for _, r := range pattern {
		switch r {
		case '%':
			b.WriteString(".*")
		case '_':
			b.WriteByte('.')
		case '.', '+', '*', '?', '(', ')', '[', ']', '{', '}', '^', '$', '|', '\\':
			b.WriteByte('\\')
			b.WriteRune(r)
		default:
			b.WriteRune(r)
		}
	}
	b.WriteByte('$')
	return b.String()
}
