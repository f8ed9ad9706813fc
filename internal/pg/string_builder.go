package pg

import "strings"

// stringBuilder builds the SQL and the outputs of `String` methods in this
// package.
type stringBuilder struct {
	strings.Builder
	newLine bool
	indent  int
}

func (s *stringBuilder) Indent() {
	s.indent += 1
}

func (s *stringBuilder) DeIndent() {
	s.indent -= 1
}

func (s *stringBuilder) WriteNewLine() {
	_ = s.Builder.WriteByte('\n')
	s.newLine = true
}

func (s *stringBuilder) WriteString(str string) {
	s.checkNewline()
	_, _ = s.Builder.WriteString(str)
}

func (s *stringBuilder) WriteByte(b byte) error {
	s.checkNewline()
	return s.Builder.WriteByte(b)
}

func (s *stringBuilder) checkNewline() {
	if s.newLine {
		s.newLine = false
		s.Builder.WriteString(strings.Repeat("  ", s.indent))
	}
}
