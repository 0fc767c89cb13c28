package jsonmerge

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func mustJSON(t *testing.T, v Value) string {
	t.Helper()
	out, err := v.MarshalJSON()
	require.NoError(t, err)
	return string(out)
}

func TestMerge_NullSourceReturnsTarget(t *testing.T) {
	target := MustParse(`{"a":1,"b":{"c":2}}`)

	got := Merge(target, Null())

	assert.True(t, got.Equal(target))
}

func TestMerge_NonObjectSourceReplaces(t *testing.T) {
	target := MustParse(`{"a":1}`)

	tests := []struct {
		name   string
		source Value
	}{
		{"string", String("replaced")},
		{"number", Int(7)},
		{"bool", Bool(false)},
		{"array", MustParse(`[1,2,3]`)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(target, tt.source)
			assert.True(t, got.Equal(tt.source))
		})
	}
}

func TestMerge_NestedUpdatePreservesSiblings(t *testing.T) {
	target := MustParse(`{"players":{"p1":{"name":"Alice","wins":1,"showName":true},"p2":{"name":"Bob","wins":0}}}`)
	source := MustParse(`{"players":{"p1":{"wins":3}}}`)

	got := Merge(target, source)

	wins, ok := got.Get("players", "p1", "wins").Num()
	require.True(t, ok)
	assert.Equal(t, 3.0, wins)
	name, _ := got.Get("players", "p1", "name").Str()
	assert.Equal(t, "Alice", name)
	show, _ := got.Get("players", "p1", "showName").BoolVal()
	assert.True(t, show)
	p2, _ := got.Get("players", "p2", "name").Str()
	assert.Equal(t, "Bob", p2)
}

func TestMerge_AddsSourceOnlyKeysAfterTargetKeys(t *testing.T) {
	target := MustParse(`{"b":1,"a":2}`)
	source := MustParse(`{"c":3,"a":4}`)

	got := Merge(target, source)

	assert.Equal(t, `{"b":1,"a":4,"c":3}`, mustJSON(t, got))
}

func TestMerge_ArraysReplaceNotMergeElementwise(t *testing.T) {
	target := MustParse(`{"list":[1,2,3]}`)
	source := MustParse(`{"list":[9]}`)

	got := Merge(target, source)

	assert.Equal(t, `{"list":[9]}`, mustJSON(t, got))
}

func TestMerge_NullValueOverwritesKey(t *testing.T) {
	target := MustParse(`{"settings":{"font":"MrBeast"}}`)
	source := MustParse(`{"settings":{"font":null}}`)

	got := Merge(target, source)

	v, ok := got.Lookup("settings", "font")
	require.True(t, ok)
	assert.True(t, v.IsNull())
}

func TestMerge_ObjectIntoScalarPosition(t *testing.T) {
	target := MustParse(`{"settings":"legacy"}`)
	source := MustParse(`{"settings":{"font":"Impact"}}`)

	got := Merge(target, source)

	assert.Equal(t, `{"settings":{"font":"Impact"}}`, mustJSON(t, got))
}

func TestMerge_NonObjectTargetTreatedAsEmpty(t *testing.T) {
	got := Merge(String("x"), MustParse(`{"a":{"b":1}}`))

	assert.Equal(t, `{"a":{"b":1}}`, mustJSON(t, got))
}

func TestMerge_DoesNotMutateArguments(t *testing.T) {
	target := MustParse(`{"players":{"p1":{"wins":1}}}`)
	source := MustParse(`{"players":{"p1":{"wins":2}},"mode":"dual"}`)
	targetBefore := mustJSON(t, target)
	sourceBefore := mustJSON(t, source)

	_ = Merge(target, source)

	assert.Equal(t, targetBefore, mustJSON(t, target))
	assert.Equal(t, sourceBefore, mustJSON(t, source))
}

func TestMerge_SourceKeyOrderIndependent(t *testing.T) {
	target := MustParse(`{"mode":"single","players":{"p1":{"wins":0}},"maxWins":2}`)
	a := MustParse(`{"maxWins":5,"players":{"p1":{"wins":2}},"mode":"dual"}`)
	b := MustParse(`{"mode":"dual","maxWins":5,"players":{"p1":{"wins":2}}}`)

	assert.True(t, Merge(target, a).Equal(Merge(target, b)))
}

func TestMerge_EveryTargetKeySurvivesUnlessOverridden(t *testing.T) {
	pairs := []struct {
		target string
		source string
	}{
		{`{}`, `{}`},
		{`{"a":1}`, `{}`},
		{`{"a":1,"b":{"x":1,"y":2}}`, `{"b":{"y":3}}`},
		{`{"a":{"b":{"c":{"d":1}}}}`, `{"a":{"b":{"c":{"e":2}}}}`},
		{`{"a":[1],"b":true}`, `{"a":{"k":1},"c":null}`},
	}

	for _, p := range pairs {
		target := MustParse(p.target)
		source := MustParse(p.source)
		got := Merge(target, source)

		for _, key := range target.Keys() {
			_, inSource := source.Lookup(key)
			if inSource {
				continue
			}
			assert.True(t, got.Get(key).Equal(target.Get(key)), "target key %q lost for %s <- %s", key, p.target, p.source)
		}
		for _, key := range source.Keys() {
			sv := source.Get(key)
			if sv.IsObject() {
				assert.True(t, got.Get(key).Equal(Merge(target.Get(key), sv)), "source object %q not merged", key)
				continue
			}
			assert.True(t, got.Get(key).Equal(sv), "source key %q not applied for %s <- %s", key, p.target, p.source)
		}
	}
}
