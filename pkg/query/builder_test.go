package query

import (
	"testing"

	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/soundprediction/kgraph/pkg/types"
)

func TestBuilderRendering(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		builder *Builder
	}{
		{
			name:    "simple",
			builder: NewBuilder().Match("?x", "IS_A", "Human").Select("?x").Limit(10),
		},
		{
			name: "full",
			builder: NewBuilder().
				Match("?a", "part_of", "?b").
				Match("?b", "", "?c").
				Filter("confidence > 0.5").
				Distinct().
				OrderBy("subject", false).
				Offset(5).
				Limit(20),
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			g := goldie.New(t)
			g.Assert(t, "sparql_"+tt.name, []byte(tt.builder.ToSPARQL()))
			g.Assert(t, "cypher_"+tt.name, []byte(tt.builder.ToCypher()))
		})
	}
}

func TestBuilderBuild(t *testing.T) {
	t.Parallel()

	b := NewBuilder().
		Where("?x", "ignored", 1).
		Match("?x", "is_a", "Human").
		Where("?x", "era", "classical").
		Where("?x", "rank", 2.0).
		Match("?x", "knows", "?y").
		Select("?x", "y").
		SelectAll().
		Select("subject")

	q := b.Build()
	require.Len(t, q.Patterns, 2)
	assert.Equal(t, types.IsA, *q.Patterns[0].Predicate)
	assert.Equal(t, types.Properties{
		"era":  types.StringValue("classical"),
		"rank": types.FloatValue(2),
	}, q.Patterns[0].Filters)
	assert.Equal(t, types.Custom, *q.Patterns[1].Predicate)
	assert.Nil(t, q.Patterns[1].Filters)
	assert.Equal(t, []string{"subject"}, q.Select)

	q.Patterns[0].Filters["era"] = types.StringValue("modern")
	assert.Equal(t, types.StringValue("classical"), b.Build().Patterns[0].Filters["era"])
}

func TestBuilderPath(t *testing.T) {
	t.Parallel()

	p := NewBuilder().Path("a", "b").BuildPath()
	assert.Equal(t, types.NewPathQuery("a", "b"), p)

	p = NewBuilder().Path("a", "b").Via(types.IsA, types.PartOf).MaxDepth(3).BuildPath()
	assert.Equal(t, []types.EdgeType{types.IsA, types.PartOf}, p.AllowedEdges)
	assert.Equal(t, 3, p.MaxDepth)
	assert.True(t, p.AllPaths)
	assert.False(t, p.IsShortest())
}

func TestBuilderExecute(t *testing.T) {
	t.Parallel()
	_, e := newPhilosophers(t)

	res := NewBuilder().
		Match("?x", "IS_A", "Human").
		OrderBy("?subject", true).
		Limit(1).
		Execute(e)
	assert.Equal(t, []string{"Plato"}, column(res.Bindings, KeySubject))
	assert.Equal(t, 2, res.TotalMatches)

	paths := NewBuilder().Path("s", "m").Via(types.IsA).MaxDepth(4).ExecutePath(e)
	assert.Equal(t, [][]string{{"s", "h", "m"}}, paths)
}
