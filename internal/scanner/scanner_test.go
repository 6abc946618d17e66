package scanner

import (
	stderrors "errors"
	"testing"

	"github.com/kaiserthe13th/kon/errors"
	"github.com/stretchr/testify/require"
)

func TestPeekAdvance(t *testing.T) {
	s := New("aç=")
	require.Equal(t, 'a', s.Peek())
	require.Equal(t, 'ç', s.PeekAt(1))
	require.Equal(t, '=', s.PeekAt(2))
	require.Equal(t, EOF, s.PeekAt(3))

	s.Advance()
	s.Advance()
	require.Equal(t, 3, s.Offset())
	require.Equal(t, '=', s.Peek())
	s.Advance()
	require.True(t, s.EOF())
	require.Equal(t, EOF, s.Peek())
	s.Advance()
	require.Equal(t, 4, s.Offset())
}

func TestSkipSpace(t *testing.T) {
	s := New(" \t\r\n x")
	s.SkipSpace(false)
	require.Equal(t, '\n', s.Peek())
	s.SkipSpace(true)
	require.Equal(t, 'x', s.Peek())
}

func TestSkipComment(t *testing.T) {
	s := New("# a comment\nnext")
	s.SkipComment()
	require.Equal(t, '\n', s.Peek())

	s = New("# at end")
	s.SkipComment()
	require.True(t, s.EOF())
}

func TestReadIdentifier(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"abc def", "abc"},
		{"a-b-c=1", "a-b-c"},
		{"$var,", "$var"},
		{":sym)", ":sym"},
		{"r2d2(", "r2d2"},
		{"çalış}", "çalış"},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			require.Equal(t, tt.expected, New(tt.input).ReadIdentifier())
		})
	}
}

func TestReadNumber(t *testing.T) {
	tests := []struct {
		input    string
		expected Number
	}{
		{"0", Number{Literal: "0", Digits: "0", Base: 10}},
		{"1234,", Number{Literal: "1234", Digits: "1234", Base: 10}},
		{"0x1ca67b", Number{Literal: "0x1ca67b", Digits: "1ca67b", Base: 16}},
		{"0XFF", Number{Literal: "0", Digits: "0", Base: 10}},
		{"0o1337", Number{Literal: "0o1337", Digits: "1337", Base: 8}},
		{"0b1001", Number{Literal: "0b1001", Digits: "1001", Base: 2}},
		{"0b1021", Number{Literal: "0b10", Digits: "10", Base: 2}},
		{"3.14", Number{Literal: "3.14", Digits: "3.14", Base: 10, Float: true}},
		{"1.", Number{Literal: "1.", Digits: "1.", Base: 10, Float: true}},
		{"1e10", Number{Literal: "1e10", Digits: "1e10", Base: 10, Float: true}},
		{"2.5E-3)", Number{Literal: "2.5E-3", Digits: "2.5E-3", Base: 10, Float: true}},
		{"1e+400", Number{Literal: "1e+400", Digits: "1e+400", Base: 10, Float: true}},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			n, err := New(tt.input).ReadNumber()
			require.NoError(t, err)
			require.Equal(t, tt.expected, n)
		})
	}
}

func TestReadNumberErrors(t *testing.T) {
	for _, input := range []string{"0x", "0o9", "0b", "1e", "1e+", "2.0E-x"} {
		t.Run(input, func(t *testing.T) {
			_, err := New(input).ReadNumber()
			require.Error(t, err)
			require.True(t, stderrors.Is(err, errors.InvalidNumber))
		})
	}
}

func TestReadString(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		expected  string
		multiline bool
		rest      rune
	}{
		{"double", `"hello" x`, "hello", false, ' '},
		{"single", `'it"s'`, `it"s`, false, EOF},
		{"simple escapes", `"a\nb\tc\rd\\e\"f\'g"`, "a\nb\tc\rd\\e\"f'g", false, EOF},
		{"hex", `"\x41\x7e"`, "A~", false, EOF},
		{"hex high", `"\xe9"`, "é", false, EOF},
		{"unicode", `"ç世"`, "ç世", false, EOF},
		{"unknown escape", `"\q\/"`, "q/", false, EOF},
		{"continuation lf", "\"ab\\\ncd\"", "abcd", false, EOF},
		{"continuation crlf", "\"ab\\\r\ncd\"", "abcd", false, EOF},
		{"continuation space", `"ab\ cd"`, "abcd", false, EOF},
		{"raw newline", "\"a\nb\"", "a\nb", true, EOF},
		{"empty", `""`, "", false, EOF},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := New(tt.input)
			text, multiline, err := s.ReadString()
			require.NoError(t, err)
			require.Equal(t, tt.expected, text)
			require.Equal(t, tt.multiline, multiline)
			require.Equal(t, tt.rest, s.Peek())
		})
	}
}

func TestReadStringErrors(t *testing.T) {
	tests := []struct {
		input  string
		start  int
		kind   errors.Kind
		offset int
	}{
		{`"abc`, 0, errors.UnterminatedString, 0},
		{`x = 'abc"`, 4, errors.UnterminatedString, 4},
		{`"abc\`, 0, errors.UnterminatedEscape, 4},
		{`"\x4"`, 0, errors.InvalidEscape, 1},
		{`"\xzz"`, 0, errors.InvalidEscape, 1},
		{`"\u12"`, 0, errors.InvalidEscape, 1},
		{`"\u12g4"`, 0, errors.InvalidEscape, 1},
		{`"\ud800"`, 0, errors.InvalidEscape, 1},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			s := New(tt.input)
			s.pos = tt.start
			_, _, err := s.ReadString()
			require.Error(t, err)

			var pe *errors.ParseError
			require.True(t, stderrors.As(err, &pe))
			require.Equal(t, tt.kind, pe.Kind)
			require.Equal(t, tt.offset, pe.Offset)
		})
	}
}

func TestPosition(t *testing.T) {
	s := New("ab\nçd\n\nx")
	tests := []struct {
		offset int
		line   int
		column int
	}{
		{0, 1, 1},
		{2, 1, 3},
		{3, 2, 1},
		{5, 2, 2}, // after the two-byte rune
		{7, 3, 1},
		{8, 4, 1},
		{100, 4, 2},
	}

	for _, tt := range tests {
		line, col := s.Position(tt.offset)
		require.Equal(t, tt.line, line, "offset %d", tt.offset)
		require.Equal(t, tt.column, col, "offset %d", tt.offset)
	}
}

func TestCheckUTF8(t *testing.T) {
	require.NoError(t, New("ok çç").CheckUTF8())

	err := New("ab\n\xffc").CheckUTF8()
	var pe *errors.ParseError
	require.True(t, stderrors.As(err, &pe))
	require.Equal(t, errors.InvalidUTF8, pe.Kind)
	require.Equal(t, 3, pe.Offset)
	require.Equal(t, 2, pe.Line)
	require.Equal(t, 1, pe.Column)
}
