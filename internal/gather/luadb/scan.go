package luadb

type tokKind int

const (
	tokEOF tokKind = iota
	tokLBrack
	tokRBrack
	tokLBrace
	tokRBrace
	tokEq
	tokComma
	tokNumber
	tokIdent
	tokString
	tokJunk
)

type token struct {
	kind tokKind
	text string
	pos  int // byte offset of the first character
}

// scanner is a minimal lexer for the saved-variables surface syntax. Quoted
// strings are lexed as single tokens so braces inside settings values never
// disturb depth tracking.
type scanner struct {
	src string
	pos int
}

func (s *scanner) next() token {
	for s.pos < len(s.src) {
		c := s.src[s.pos]
		if c == ' ' || c == '\t' || c == '\r' || c == '\n' {
			s.pos++
			continue
		}
		break
	}
	if s.pos >= len(s.src) {
		return token{kind: tokEOF, pos: s.pos}
	}

	start := s.pos
	c := s.src[s.pos]
	switch c {
	case '[':
		s.pos++
		return token{kind: tokLBrack, text: "[", pos: start}
	case ']':
		s.pos++
		return token{kind: tokRBrack, text: "]", pos: start}
	case '{':
		s.pos++
		return token{kind: tokLBrace, text: "{", pos: start}
	case '}':
		s.pos++
		return token{kind: tokRBrace, text: "}", pos: start}
	case '=':
		s.pos++
		return token{kind: tokEq, text: "=", pos: start}
	case ',':
		s.pos++
		return token{kind: tokComma, text: ",", pos: start}
	case '"', '\'':
		quote := c
		s.pos++
		for s.pos < len(s.src) {
			if s.src[s.pos] == '\\' && s.pos+1 < len(s.src) {
				s.pos += 2
				continue
			}
			if s.src[s.pos] == quote {
				s.pos++
				break
			}
			s.pos++
		}
		return token{kind: tokString, text: s.src[start:s.pos], pos: start}
	}

	if c >= '0' && c <= '9' {
		for s.pos < len(s.src) && s.src[s.pos] >= '0' && s.src[s.pos] <= '9' {
			s.pos++
		}
		return token{kind: tokNumber, text: s.src[start:s.pos], pos: start}
	}
	if isIdentStart(c) {
		for s.pos < len(s.src) && isIdentPart(s.src[s.pos]) {
			s.pos++
		}
		return token{kind: tokIdent, text: s.src[start:s.pos], pos: start}
	}

	s.pos++
	return token{kind: tokJunk, text: s.src[start:s.pos], pos: start}
}

func isIdentStart(c byte) bool {
	return c == '_' || (c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z')
}

func isIdentPart(c byte) bool {
	return isIdentStart(c) || (c >= '0' && c <= '9')
}
