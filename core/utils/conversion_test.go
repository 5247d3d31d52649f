package utils

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseInt(t *testing.T) {
	tests := []struct {
		name    string
		in      any
		want    int
		wantErr bool
	}{
		{"Int", 3, 3, false},
		{"Int64", int64(7), 7, false},
		{"JSONFloat", float64(2), 2, false},
		{"Fraction", 2.5, 0, true},
		{"String", " 4 ", 4, false},
		{"Negative", "-1", -1, false},
		{"Bytes", []byte("12"), 12, false},
		{"JSONNumber", json.Number("5"), 5, false},
		{"Garbage", "abc", 0, true},
		{"Nil", nil, 0, true},
		{"Bool", true, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseInt(tt.in)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			assert.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestToInt(t *testing.T) {
	assert.Equal(t, 9, ToInt("9"))
	assert.Equal(t, 0, ToInt("nine"))
}

func TestToString(t *testing.T) {
	assert.Equal(t, "", ToString(nil))
	assert.Equal(t, "abc", ToString([]byte("abc")))
	assert.Equal(t, "42", ToString(42))
}

func TestToBool(t *testing.T) {
	for _, v := range []any{true, 1, "1", "true", "TRUE", "yes", " on ", []byte("true")} {
		assert.True(t, ToBool(v), "%v", v)
	}
	for _, v := range []any{false, 0, 2, "", "0", "false", "no", nil, 1.0} {
		assert.False(t, ToBool(v), "%v", v)
	}
}
