package symcalc

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// maxExponent bounds the decimal exponent of a literal such as 1e400.
const maxExponent = 1000

// scanned is input rewritten for the govaluate lexer. Operators are spaced
// apart, runs of unary signs are folded into at most one '-', and numeral k
// of the source is written as the integer k so that its digits are read
// back from literals rather than through float64.
type scanned struct {
	text     string
	literals []string
}

var numericPlaceholder = regexp.MustCompile(`NUMERIC \[(\d+)\]`)

// restore rewrites lexer messages to quote the source numerals.
func (sc scanned) restore(msg string) string {
	return numericPlaceholder.ReplaceAllStringFunc(msg, func(m string) string {
		k, err := strconv.Atoi(numericPlaceholder.FindStringSubmatch(m)[1])
		if err != nil || k >= len(sc.literals) {
			return m
		}
		return "NUMERIC [" + sc.literals[k] + "]"
	})
}

func prescan(text string) (scanned, error) {
	rs := []rune(text)
	var (
		b    strings.Builder
		lits []string
		// operand is true when the previous token can end an operand, so a
		// following sign is binary.
		operand bool
	)
	emit := func(tok string) {
		b.WriteByte(' ')
		b.WriteString(tok)
	}

	for i := 0; i < len(rs); {
		r := rs[i]
		switch {
		case unicode.IsSpace(r):
			i++
		case isDigit(r) || (r == '.' && i+1 < len(rs) && isDigit(rs[i+1])):
			j := scanNumeral(rs, i)
			lit := string(rs[i:j])
			if err := checkExponent(lit); err != nil {
				return scanned{}, &ParseError{Input: text, Msg: err.Error()}
			}
			emit(strconv.Itoa(len(lits)))
			lits = append(lits, lit)
			operand = true
			i = j
		case unicode.IsLetter(r):
			j := i + 1
			for j < len(rs) && (unicode.IsLetter(rs[j]) || unicode.IsDigit(rs[j]) || rs[j] == '_') {
				j++
			}
			emit(string(rs[i:j]))
			operand = true
			i = j
		case r == '+' || r == '-':
			if operand {
				emit(string(r))
				operand = false
				i++
				continue
			}
			neg := false
			for i < len(rs) && (rs[i] == '+' || rs[i] == '-' || unicode.IsSpace(rs[i])) {
				if rs[i] == '-' {
					neg = !neg
				}
				i++
			}
			if neg {
				emit("-")
			}
		case r == '*':
			if i+1 < len(rs) && rs[i+1] == '*' {
				emit("**")
				i += 2
			} else {
				emit("*")
				i++
			}
			operand = false
		case r == '/' || r == '^' || r == '%' || r == '(' || r == ',':
			emit(string(r))
			operand = false
			i++
		case r == ')':
			emit(")")
			operand = true
			i++
		default:
			return scanned{}, &ParseError{Input: text, Msg: fmt.Sprintf("unexpected character %q", r)}
		}
	}
	return scanned{text: b.String(), literals: lits}, nil
}

func isDigit(r rune) bool { return r >= '0' && r <= '9' }

// scanNumeral returns the end of digits[.digits][(e|E)[+-]digits] at i.
func scanNumeral(rs []rune, i int) int {
	j := i
	for j < len(rs) && isDigit(rs[j]) {
		j++
	}
	if j < len(rs) && rs[j] == '.' {
		j++
		for j < len(rs) && isDigit(rs[j]) {
			j++
		}
	}
	if j < len(rs) && (rs[j] == 'e' || rs[j] == 'E') {
		k := j + 1
		if k < len(rs) && (rs[k] == '+' || rs[k] == '-') {
			k++
		}
		if k < len(rs) && isDigit(rs[k]) {
			for k < len(rs) && isDigit(rs[k]) {
				k++
			}
			j = k
		}
	}
	return j
}

func checkExponent(lit string) error {
	at := strings.IndexAny(lit, "eE")
	if at < 0 {
		return nil
	}
	exp := strings.TrimLeft(lit[at+1:], "+-")
	exp = strings.TrimLeft(exp, "0")
	if len(exp) > 4 {
		return fmt.Errorf("number %s is out of range", lit)
	}
	if n, _ := strconv.Atoi(exp); n > maxExponent {
		return fmt.Errorf("number %s is out of range", lit)
	}
	return nil
}
