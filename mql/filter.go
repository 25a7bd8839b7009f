package mql

import (
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/hummerd/rulex"
)

var (
	keyOr  = []byte("or")
	keyAnd = []byte("and")
)

// MustFilter is Filter that panics on error.
func MustFilter(query string, params ...any) bson.D {
	d, err := Filter(query, params...)
	if err != nil {
		panic(fmt.Sprintf("can not compile filter: \"%s\", error: %v", query, err))
	}

	return d
}

// Filter compiles a flat query of the form
//
//	key op value {and|or key op value}
//
// into a bson filter document. op is one of < > <= >= = != or a
// $-prefixed operator key like $regex. Values starting with $ are
// substituted from params, given as string key and value pairs. or
// clauses are grouped under $or.
func Filter(query string, params ...any) (bson.D, error) {
	prmMap, err := makeParamMap(params...)
	if err != nil {
		return nil, err
	}

	l, err := NewLexer([]byte(query), "")
	if err != nil {
		return nil, err
	}

	var groups []bson.D
	var cur bson.D

	for {
		t := l.NextToken()
		if t.Kind == rulex.KindEOF {
			break
		}

		if len(cur) > 0 {
			// Between expressions only a connector is allowed.
			switch {
			case t.Kind == KindKey && bytes.EqualFold(t.Lexeme, keyAnd):
				t = l.NextToken()
			case t.Kind == KindKey && bytes.EqualFold(t.Lexeme, keyOr):
				groups = append(groups, cur)
				cur = nil
				t = l.NextToken()
			default:
				return nil, fmt.Errorf("unexpected token at: line:%d; column: %d", t.Line, t.Column)
			}
		}

		e, err := parseExpression(l, t, prmMap)
		if err != nil {
			return nil, err
		}

		cur = append(cur, e)
	}

	if len(cur) == 0 && len(groups) == 0 {
		return bson.D{}, nil
	}

	if len(cur) == 0 {
		return nil, errors.New("unexpected end of query")
	}

	groups = append(groups, cur)

	if len(groups) == 1 {
		return groups[0], nil
	}

	or := make(bson.A, 0, len(groups))
	for _, g := range groups {
		or = append(or, g)
	}

	return bson.D{{Key: "$or", Value: or}}, nil
}

func parseExpression(l *rulex.Lexer, key rulex.Token, prmMap map[string]any) (bson.E, error) {
	if key.Kind != KindKey {
		return bson.E{}, unexpected(key)
	}

	if bytes.EqualFold(key.Lexeme, keyAnd) || bytes.EqualFold(key.Lexeme, keyOr) {
		return bson.E{}, fmt.Errorf("unexpected '%s' at: line:%d; column: %d", key.Lexeme, key.Line, key.Column)
	}

	op := l.NextToken()

	opName, err := opKey(op)
	if err != nil {
		return bson.E{}, err
	}

	vt := l.NextToken()

	v, err := tokenValue(vt, prmMap)
	if err != nil {
		return bson.E{}, err
	}

	if opName == "" {
		// Plain equality.
		return bson.E{Key: string(key.Lexeme), Value: v}, nil
	}

	return bson.E{
		Key:   string(key.Lexeme),
		Value: bson.D{{Key: opName, Value: v}},
	}, nil
}

// opKey maps an operator token to its mongo operator. The empty string
// stands for plain equality.
func opKey(t rulex.Token) (string, error) {
	switch t.Kind {
	case KindOp:
		switch string(t.Lexeme) {
		case "=":
			return "", nil
		case ">":
			return "$gt", nil
		case "<":
			return "$lt", nil
		case ">=":
			return "$gte", nil
		case "<=":
			return "$lte", nil
		case "!=":
			return "$ne", nil
		}
	case KindKey:
		// Word operators like $regex pass through.
		if len(t.Lexeme) > 1 && t.Lexeme[0] == '$' {
			return string(t.Lexeme), nil
		}
	}

	return "", unexpected(t)
}

func tokenValue(t rulex.Token, prmMap map[string]any) (any, error) {
	switch t.Kind {
	case KindNumber:
		n, err := strconv.ParseInt(string(t.Lexeme), 10, 64)
		if err != nil {
			return nil, unexpected(t)
		}
		return n, nil

	case KindString:
		return string(t.Lexeme[1 : len(t.Lexeme)-1]), nil

	case KindRegex:
		pattern, opts := splitRegex(t.Lexeme)
		return primitive.Regex{Pattern: pattern, Options: opts}, nil

	case KindKey:
		s := string(t.Lexeme)
		switch s {
		case "null":
			return nil, nil
		case "true":
			return true, nil
		case "false":
			return false, nil
		}

		if strings.HasPrefix(s, "$") {
			if pv, ok := prmMap[s]; ok {
				return pv, nil
			}
		}

		return s, nil
	}

	return nil, unexpected(t)
}

// splitRegex takes a /pattern/flags lexeme apart.
func splitRegex(lexeme []byte) (string, string) {
	end := bytes.LastIndexByte(lexeme, '/')
	return string(lexeme[1:end]), string(lexeme[end+1:])
}

func unexpected(t rulex.Token) error {
	if t.Kind == rulex.KindEOF {
		return errors.New("unexpected end of query")
	}

	return fmt.Errorf("unexpected symbol %s at: line:%d; column: %d", t.Lexeme, t.Line, t.Column)
}

func makeParamMap(keyValues ...any) (map[string]any, error) {
	if len(keyValues) == 0 {
		return nil, nil
	}

	if len(keyValues)%2 != 0 {
		return nil, errors.New("keyValues should be pairs of string key and any value")
	}

	prmMap := make(map[string]any, len(keyValues)/2)

	for i := 0; i < len(keyValues); i += 2 {
		s, ok := keyValues[i].(string)
		if !ok {
			return nil, fmt.Errorf("parameter key %v must be string", keyValues[i])
		}

		prmMap[s] = keyValues[i+1]
	}

	return prmMap, nil
}
