package scheduler

import (
	"testing"

	"github.com/specialistvlad/provisiongrid/internal/dag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// diamond: a -> b, a -> c, (b, c) -> d
func diamond(t *testing.T) *dag.Graph {
	t.Helper()
	g := dag.New()
	for _, id := range []string{"a", "b", "c", "d"} {
		g.AddNode(id)
	}
	require.NoError(t, g.AddEdge("a", "b"))
	require.NoError(t, g.AddEdge("a", "c"))
	require.NoError(t, g.AddEdge("b", "d"))
	require.NoError(t, g.AddEdge("c", "d"))
	return g
}

func TestScheduler_FanOutFanIn(t *testing.T) {
	s, err := New(diamond(t))
	require.NoError(t, err)

	assert.Equal(t, []string{"a"}, s.Roots())
	assert.Empty(t, s.Roots(), "roots are handed out once")

	ready, err := s.Complete("a")
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "c"}, ready)

	ready, err = s.Complete("c")
	require.NoError(t, err)
	assert.Empty(t, ready, "d still waits for b")
	assert.Equal(t, []string{"d"}, s.Remaining())

	ready, err = s.Complete("b")
	require.NoError(t, err)
	assert.Equal(t, []string{"d"}, ready)
	assert.Empty(t, s.Remaining())
}

func TestScheduler_Errors(t *testing.T) {
	s, err := New(diamond(t))
	require.NoError(t, err)

	_, err = s.Complete("zzz")
	assert.Error(t, err)

	_, err = s.Complete("a")
	require.NoError(t, err)
	_, err = s.Complete("a")
	assert.Error(t, err)
}

func TestScheduler_Less(t *testing.T) {
	s, err := New(diamond(t))
	require.NoError(t, err)
	assert.True(t, s.Less("a", "d"))
	assert.False(t, s.Less("c", "b"))
}
