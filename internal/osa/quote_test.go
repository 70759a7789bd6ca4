package osa

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestQuote(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  string
	}{
		{"plain", "x-coredata://note/p1", `"x-coredata://note/p1"`},
		{"empty", "", `""`},
		{"double quote", `say "hi"`, `"say \"hi\""`},
		{"backslash", `C:\path`, `"C:\\path"`},
		{"backslash before quote", `\"`, `"\\\""`},
		{"newline kept", "a\nb", "\"a\nb\""},
		{"injection attempt", `" & (do shell script "rm -rf ~") & "`, `"\" & (do shell script \"rm -rf ~\") & \""`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Quote(tt.value))
		})
	}
}

func TestQuote_UnquoteInverse(t *testing.T) {
	values := []string{"", "plain", `q"uote`, `back\slash`, `\\"\\`, "multi\nline", "ünïcødé 最近删除"}
	for _, v := range values {
		got, err := Unquote(Quote(v))
		require.NoError(t, err)
		assert.Equal(t, v, got)
	}
}

func TestUnquote_Escapes(t *testing.T) {
	got, err := Unquote(`"a\nb\tc\rd"`)
	require.NoError(t, err)
	assert.Equal(t, "a\nb\tc\rd", got)
}

func TestUnquote_Malformed(t *testing.T) {
	for _, in := range []string{`abc`, `"abc`, `"abc" tail`, `"abc\`} {
		_, err := Unquote(in)
		assert.Error(t, err, "input %q", in)
	}
}
