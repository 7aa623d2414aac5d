package pagination

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sliceSource struct {
	items   []int
	fetches int
	err     error
}

func (s *sliceSource) Count(_ context.Context) (int64, error) {
	if s.err != nil {
		return 0, s.err
	}
	return int64(len(s.items)), nil
}

func (s *sliceSource) Fetch(_ context.Context, limit, offset int) ([]int, error) {
	s.fetches++
	end := offset + limit
	if end > len(s.items) {
		end = len(s.items)
	}
	return s.items[offset:end], nil
}

func seq(n int) []int {
	out := make([]int, n)
	for i := range out {
		out[i] = i + 1
	}
	return out
}

func TestParseNumber(t *testing.T) {
	t.Parallel()
	tests := []struct {
		raw  string
		want int
	}{
		{"", 1},
		{"abc", 1},
		{"0", 1},
		{"-3", 1},
		{"2", 2},
		{" 7 ", 7},
		{"1.5", 1},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ParseNumber(tt.raw), "raw=%q", tt.raw)
	}
}

func TestSlice_TwelveItemsTenPerPage(t *testing.T) {
	t.Parallel()
	items := seq(12)

	first := Slice(items, 10, "")
	assert.Len(t, first.Items, 10)
	assert.Equal(t, 1, first.Number)
	assert.Equal(t, 2, first.NumPages)
	assert.True(t, first.HasNext)
	assert.False(t, first.HasPrev)
	require.NotNil(t, first.NextNumber)
	assert.Equal(t, 2, *first.NextNumber)
	assert.Nil(t, first.PrevNumber)

	second := Slice(items, 10, "2")
	assert.Equal(t, []int{11, 12}, second.Items)
	assert.False(t, second.HasNext)
	assert.True(t, second.HasPrev)
	require.NotNil(t, second.PrevNumber)
	assert.Equal(t, 1, *second.PrevNumber)
}

func TestSlice_ClampsOutOfRange(t *testing.T) {
	t.Parallel()
	items := seq(12)

	assert.Equal(t, 2, Slice(items, 10, "99").Number)
	assert.Equal(t, []int{11, 12}, Slice(items, 10, "99").Items)
	assert.Equal(t, 1, Slice(items, 10, "-1").Number)
	assert.Equal(t, 1, Slice(items, 10, "zzz").Number)
}

func TestSlice_Empty(t *testing.T) {
	t.Parallel()
	p := Slice([]int{}, 10, "5")
	assert.Equal(t, 1, p.Number)
	assert.Equal(t, 1, p.NumPages)
	assert.Equal(t, int64(0), p.Count)
	assert.NotNil(t, p.Items)
	assert.Empty(t, p.Items)
	assert.False(t, p.HasNext)
	assert.False(t, p.HasPrev)
}

func TestSlice_ExactMultiple(t *testing.T) {
	t.Parallel()
	p := Slice(seq(20), 10, "2")
	assert.Equal(t, 2, p.NumPages)
	assert.Len(t, p.Items, 10)
	assert.False(t, p.HasNext)
}

func TestPaginate_MatchesSlice(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	for _, raw := range []string{"", "1", "2", "3", "0", "x"} {
		src := &sliceSource{items: seq(12)}
		got, err := Paginate[int](ctx, src, 10, raw)
		require.NoError(t, err)
		assert.Equal(t, Slice(seq(12), 10, raw), got, "raw=%q", raw)
	}
}

func TestPaginate_EmptySkipsFetch(t *testing.T) {
	t.Parallel()
	src := &sliceSource{}
	p, err := Paginate[int](context.Background(), src, 10, "3")
	require.NoError(t, err)
	assert.Equal(t, 0, src.fetches)
	assert.Equal(t, 1, p.Number)
	assert.Empty(t, p.Items)
}

func TestPaginate_PropagatesErrors(t *testing.T) {
	t.Parallel()
	src := &sliceSource{err: errors.New("db down")}
	_, err := Paginate[int](context.Background(), src, 10, "1")
	assert.EqualError(t, err, "db down")
}
