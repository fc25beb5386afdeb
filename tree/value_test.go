package tree

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValueConversions(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name   string
		v      Value
		int64  int64
		float  float64
		bool   bool
		string string
	}{
		{"null", Null(), -1, -1, true, "def"},
		{"int", Int(42), 42, 42, true, "42"},
		{"zero", Int(0), 0, 0, false, "0"},
		{"float half even down", Float(2.5), 2, 2.5, true, "2.5"},
		{"float half even up", Float(3.5), 4, 3.5, true, "3.5"},
		{"negative float", Float(-1.5), -2, -1.5, true, "-1.5"},
		{"bool true", Bool(true), 1, 1, true, "true"},
		{"bool false", Bool(false), 0, 0, false, "false"},
		{"numeric string", String(" 17 "), 17, 17, true, " 17 "},
		{"float string", String("2.5"), 2, 2.5, true, "2.5"},
		{"bool string", String("FALSE"), -1, -1, false, "FALSE"},
		{"word", String("dragon"), -1, -1, true, "dragon"},
		{"list", List(Int(1)), -1, -1, true, "def"},
		{"map", Map(nil), -1, -1, true, "def"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.int64, tt.v.AsInt64(-1))
			assert.Equal(t, tt.float, tt.v.AsFloat(-1))
			assert.Equal(t, tt.bool, tt.v.AsBool(true))
			assert.Equal(t, tt.string, tt.v.AsString("def"))
		})
	}
}

func TestValueFloatOutOfRange(t *testing.T) {
	t.Parallel()

	assert.Equal(t, int64(5), Float(math.Inf(1)).AsInt64(5))
	assert.Equal(t, int64(5), Float(math.NaN()).AsInt64(5))
	assert.Equal(t, int64(5), Float(1e300).AsInt64(5))
}

func TestOf(t *testing.T) {
	t.Parallel()

	assert.Equal(t, KindNull, Of(nil).Kind())
	assert.Equal(t, KindInt, Of(int8(3)).Kind())
	assert.Equal(t, KindInt, Of(uint32(3)).Kind())
	assert.Equal(t, KindFloat, Of(uint64(math.MaxUint64)).Kind())
	assert.Equal(t, KindFloat, Of(float32(1.5)).Kind())
	assert.Equal(t, KindInt, Of(json.Number("12")).Kind())
	assert.Equal(t, KindFloat, Of(json.Number("1.2")).Kind())
	assert.Equal(t, KindNull, Of(struct{}{}).Kind())
	assert.Equal(t, KindNull, Of([]int(nil)).Kind())
	assert.Equal(t, KindNull, Of(map[int]string{1: "a"}).Kind())

	n := 9
	assert.Equal(t, int64(9), Of(&n).AsInt64(0))

	list, ok := Of([]string{"a", "b"}).AsList()
	require.True(t, ok)
	assert.Equal(t, "b", list[1].AsString(""))

	m, ok := Of(map[string]int{"x": 1}).AsMap()
	require.True(t, ok)
	assert.Equal(t, int64(1), m["x"].AsInt64(0))

	same := Of(Int(4))
	assert.True(t, same.Equal(Int(4)))
}

func TestValueEqual(t *testing.T) {
	t.Parallel()

	assert.True(t, Null().Equal(Value{}))
	assert.False(t, Int(1).Equal(Float(1)))
	assert.True(t, Float(math.NaN()).Equal(Float(math.NaN())))
	assert.True(t, List(Int(1), String("a")).Equal(List(Int(1), String("a"))))
	assert.False(t, List(Int(1)).Equal(List(Int(1), Int(2))))
	assert.False(t, Of(map[string]any{"a": 1}).Equal(Of(map[string]any{"b": 1})))
}

func TestValueJSON(t *testing.T) {
	t.Parallel()

	v := Of(map[string]any{"b": []any{1, 2.5, "x", nil}, "a": true})
	b, err := json.Marshal(v)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a":true,"b":[1,2.5,"x",null]}`, string(b))
	assert.Equal(t, `{"a":true,"b":[1,2.5,"x",null]}`, v.String())

	var back Value
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, v.Equal(back))
	assert.Equal(t, 2, back.Len())
}
