package schema

import "strings"

// stringBuilder builds the multi-line outputs of `String` methods in this package.
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

// WriteLine writes `str` followed by a line break.
func (s *stringBuilder) WriteLine(str string) {
	s.WriteString(str)
	s.WriteNewLine()
}

func (s *stringBuilder) checkNewline() {
	if !s.newLine {
		return
	}

	s.newLine = false
	_, _ = s.Builder.WriteString(strings.Repeat("  ", s.indent))
}
