package tree_test

import (
	"math"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/suite"

	"github.com/KirkDiggler/rpg-statblocks/internal/errors"
	"github.com/KirkDiggler/rpg-statblocks/internal/tree"
)

type TreeTestSuite struct {
	suite.Suite
}

func TestTreeSuite(t *testing.T) {
	suite.Run(t, new(TreeTestSuite))
}

func (s *TreeTestSuite) mustParse(doc string) tree.Value {
	v, err := tree.ParseJSON([]byte(doc))
	s.Require().NoError(err)
	return v
}

func (s *TreeTestSuite) mustObject(doc string) *tree.Object {
	obj, err := tree.AsObject(s.mustParse(doc))
	s.Require().NoError(err)
	return obj
}

func (s *TreeTestSuite) TestParseJSONKeepsKeyOrder() {
	obj := s.mustObject(`{"name":"Goblin","size":["S"],"ac":[15],"cha":8,"_copy":{}}`)

	s.Equal([]string{"name", "size", "ac", "cha", "_copy"}, obj.Keys())
}

func (s *TreeTestSuite) TestParseJSONScalarKinds() {
	testCases := []struct {
		name string
		doc  string
		kind tree.Kind
		text string
	}{
		{name: "integer", doc: `15`, kind: tree.KindInt, text: "15"},
		{name: "negative integer", doc: `-2`, kind: tree.KindInt, text: "-2"},
		{name: "float", doc: `0.5`, kind: tree.KindFloat, text: "0.5"},
		{name: "exponent is float", doc: `1e2`, kind: tree.KindFloat, text: "100"},
		{name: "string", doc: `"natural armor"`, kind: tree.KindString, text: "natural armor"},
		{name: "true", doc: `true`, kind: tree.KindBool, text: "true"},
		{name: "null", doc: `null`, kind: tree.KindNull, text: ""},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			v := s.mustParse(tc.doc)
			s.Equal(tc.kind, v.Kind())
			s.Equal(tc.text, tree.Text(v))
		})
	}
}

func (s *TreeTestSuite) TestParseJSONRejectsInvalid() {
	_, err := tree.ParseJSON([]byte(`{"name": `))
	s.Require().Error(err)
	s.True(errors.IsInvalidArgument(err))
}

func (s *TreeTestSuite) TestSetKeepsPositionAndAppendsNewKeys() {
	obj := s.mustObject(`{"a":1,"b":2,"c":3}`)

	obj.Set("b", tree.String("two"))
	obj.Set("d", tree.Int(4))

	s.Equal([]string{"a", "b", "c", "d"}, obj.Keys())
	v, ok := obj.Get("b")
	s.Require().True(ok)
	s.Equal("two", tree.Text(v))
}

func (s *TreeTestSuite) TestRemove() {
	obj := s.mustObject(`{"a":1,"b":2,"c":3}`)

	s.True(obj.Remove("b"))
	s.False(obj.Remove("b"))
	s.Equal([]string{"a", "c"}, obj.Keys())
	s.False(obj.Has("b"))
}

func (s *TreeTestSuite) TestRename() {
	obj := s.mustObject(`{"dmg1":"1d8","dmgType":"S","damage":"old"}`)

	s.True(obj.Rename("dmg1", "damage"))
	s.Equal([]string{"damage", "dmgType"}, obj.Keys())
	v, _ := obj.Get("damage")
	s.Equal("1d8", tree.Text(v))

	s.False(obj.Rename("missing", "other"))
}

func (s *TreeTestSuite) TestRemoveIf() {
	obj := s.mustObject(`{"_copy":1,"name":"x","hasToken":true,"_meta":{}}`)

	removed := obj.RemoveIf(func(key string) bool {
		return key[0] == '_' || key == "hasToken"
	})

	s.Equal([]string{"_copy", "hasToken", "_meta"}, removed)
	s.Equal([]string{"name"}, obj.Keys())
}

func (s *TreeTestSuite) TestNarrowing() {
	obj := s.mustObject(`{"ac":[15],"name":"Orc","hp":{"average":15},"cr":"1/2","level":3.0,"xp":1e300}`)

	testCases := []struct {
		name    string
		key     string
		narrow  func(tree.Value) error
		wantErr bool
		errMsg  string
	}{
		{
			name:   "array as array",
			key:    "ac",
			narrow: func(v tree.Value) error { _, err := tree.AsArray(v); return err },
		},
		{
			name:    "array as scalar",
			key:     "ac",
			narrow:  func(v tree.Value) error { _, err := tree.AsScalar(v); return err },
			wantErr: true,
			errMsg:  "expected scalar, got array",
		},
		{
			name:    "object as array",
			key:     "hp",
			narrow:  func(v tree.Value) error { _, err := tree.AsArray(v); return err },
			wantErr: true,
			errMsg:  "expected array, got object",
		},
		{
			name:    "string as int",
			key:     "cr",
			narrow:  func(v tree.Value) error { _, err := tree.AsInt(v); return err },
			wantErr: true,
			errMsg:  "expected int, got string",
		},
		{
			name:   "integral float as int",
			key:    "level",
			narrow: func(v tree.Value) error { _, err := tree.AsInt(v); return err },
		},
		{
			name:    "float beyond int64 as int",
			key:     "xp",
			narrow:  func(v tree.Value) error { _, err := tree.AsInt(v); return err },
			wantErr: true,
			errMsg:  "expected int, got float",
		},
		{
			name:    "string as object",
			key:     "name",
			narrow:  func(v tree.Value) error { _, err := tree.AsObject(v); return err },
			wantErr: true,
			errMsg:  "expected object, got string",
		},
	}

	for _, tc := range testCases {
		s.Run(tc.name, func() {
			v, ok := obj.Get(tc.key)
			s.Require().True(ok)

			err := tc.narrow(v)
			if tc.wantErr {
				s.Require().Error(err)
				s.True(errors.IsShapeMismatch(err))
				s.Contains(err.Error(), tc.errMsg)
				return
			}
			s.NoError(err)
		})
	}
}

func (s *TreeTestSuite) TestAsIntRange() {
	n, err := tree.AsInt(tree.Float(-math.Ldexp(1, 63)))
	s.Require().NoError(err)
	s.Equal(int64(math.MinInt64), n)

	_, err = tree.AsInt(tree.Float(math.Ldexp(1, 63)))
	s.True(errors.IsShapeMismatch(err))

	_, err = tree.AsInt(tree.Float(math.NaN()))
	s.True(errors.IsShapeMismatch(err))
}

func (s *TreeTestSuite) TestNarrowingNil() {
	_, err := tree.AsObject(nil)
	s.Require().Error(err)
	s.Contains(err.Error(), "got nothing")
}

func (s *TreeTestSuite) TestTypedFields() {
	obj := s.mustObject(`{"name":"Orc","ac":[13],"walk":30}`)

	name, ok, err := obj.StringField("name")
	s.NoError(err)
	s.True(ok)
	s.Equal("Orc", name)

	_, ok, err = obj.StringField("missing")
	s.NoError(err)
	s.False(ok)

	_, ok, err = obj.StringField("ac")
	s.True(ok)
	s.Require().Error(err)
	s.True(errors.IsShapeMismatch(err))
	s.Equal("ac", errors.GetMeta(err)["field"])

	walk, ok, err := obj.IntField("walk")
	s.NoError(err)
	s.True(ok)
	s.Equal(int64(30), walk)
}

func (s *TreeTestSuite) TestCloneIsDeepAndEqual() {
	docs := []string{
		`{"a":[1,2,{"b":[true,null,"x"]}],"c":{"d":{"e":1.5}}}`,
		`[[],[[]],{},{"":""}]`,
		`"scalar"`,
		`{"spellcasting":[{"name":"Innate Spellcasting","daily":{"1e":["fly",{"entry":"mirror image","hidden":true}]}}]}`,
	}

	for _, doc := range docs {
		s.Run(doc, func() {
			original := s.mustParse(doc)
			copied := tree.Clone(original)

			s.True(tree.Equal(original, copied))
			s.Empty(cmp.Diff(original, copied, cmp.Comparer(tree.Equal)))
		})
	}
}

func (s *TreeTestSuite) TestCloneIsIndependent() {
	original := s.mustObject(`{"ac":[{"ac":15,"from":["natural armor"]}]}`)
	copied := tree.CloneObject(original)

	acs, _, err := copied.ArrayField("ac")
	s.Require().NoError(err)
	inner, err := tree.AsObject(acs.At(0))
	s.Require().NoError(err)
	inner.Set("ac", tree.Int(17))
	copied.Set("name", tree.String("Ogre"))

	s.False(tree.Equal(original, copied))
	s.Equal(`{"ac":[{"ac":15,"from":["natural armor"]}]}`, tree.Text(original))
}

func (s *TreeTestSuite) TestEqualIsOrderSensitive() {
	a := s.mustParse(`{"a":1,"b":2}`)
	b := s.mustParse(`{"b":2,"a":1}`)
	c := s.mustParse(`{"a":1.0,"b":2}`)

	s.False(tree.Equal(a, b))
	s.False(tree.Equal(a, c))
	s.True(tree.Equal(nil, nil))
	s.False(tree.Equal(a, nil))
}

func (s *TreeTestSuite) TestMarshalJSONRoundTrip() {
	doc := `{"name":"Rope <hempen>","entries":["a \"quoted\" word",{"type":"list","items":[1,2.5,false,null]}]}`
	v := s.mustParse(doc)

	out, err := v.MarshalJSON()
	s.Require().NoError(err)
	s.Equal(doc, string(out))
}

func (s *TreeTestSuite) TestArrayHelpers() {
	arr := tree.Strings("a", "b")
	arr.Append(tree.Int(3), nil)

	s.Equal(4, arr.Len())
	s.Equal([]string{"a", "b", "3", ""}, arr.Texts())

	first, ok := arr.First()
	s.True(ok)
	s.Equal("a", tree.Text(first))

	_, ok = tree.NewArray().First()
	s.False(ok)
}
