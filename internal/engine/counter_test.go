package engine

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T) *Session {
	t.Helper()
	sess, err := NewSession(2, 64<<20, filepath.Join(t.TempDir(), "scratch"))
	require.NoError(t, err)
	return sess
}

func TestNewSession_RejectsBadLimits(t *testing.T) {
	_, err := NewSession(0, 1<<20, t.TempDir())
	assert.Error(t, err)

	_, err = NewSession(2, 0, t.TempDir())
	assert.Error(t, err)

	_, err = NewSession(2, 1<<20, "")
	assert.Error(t, err)
}

func TestSession_StageBudgetSplitsAcrossWorkers(t *testing.T) {
	sess, err := NewSession(4, 1<<30, t.TempDir())
	require.NoError(t, err)
	assert.Equal(t, int64(1<<28), sess.StageBudget())
}

func collectGroups(t *testing.T, c *GroupCounter) map[string][2]int64 {
	t.Helper()
	out := make(map[string][2]int64)
	require.NoError(t, c.Each(func(key string, a, b int64) error {
		out[key] = [2]int64{a, b}
		return nil
	}))
	return out
}

func TestGroupCounter_InMemory(t *testing.T) {
	sess := newTestSession(t)
	c := NewGroupCounter(sess, "test", sess.StageBudget())
	defer c.Close()

	require.NoError(t, c.Add("python", 1, 1))
	require.NoError(t, c.Add("python", 1, 0))
	require.NoError(t, c.Add("excel", 1, 0))

	groups := collectGroups(t, c)
	assert.Equal(t, [2]int64{2, 1}, groups["python"])
	assert.Equal(t, [2]int64{1, 0}, groups["excel"])
}

func TestGroupCounter_SpilledMatchesInMemory(t *testing.T) {
	sess := newTestSession(t)

	// A one-byte budget forces a spill after every Add.
	spilled := NewGroupCounter(sess, "spilled", 1)
	defer spilled.Close()
	resident := NewGroupCounter(sess, "resident", sess.StageBudget())
	defer resident.Close()

	adds := []struct {
		key  string
		a, b int64
	}{
		{"python", 1, 1},
		{"excel", 1, 0},
		{"python", 3, 2},
		{"sql", 1, 1},
		{"excel", 2, 2},
	}
	for _, add := range adds {
		require.NoError(t, spilled.Add(add.key, add.a, add.b))
		require.NoError(t, resident.Add(add.key, add.a, add.b))
	}

	assert.Equal(t, collectGroups(t, resident), collectGroups(t, spilled))
}

func TestGroupCounter_EachPropagatesCallbackError(t *testing.T) {
	sess := newTestSession(t)
	c := NewGroupCounter(sess, "test", sess.StageBudget())
	defer c.Close()

	require.NoError(t, c.Add("python", 1, 0))
	err := c.Each(func(string, int64, int64) error {
		return assert.AnError
	})
	assert.ErrorIs(t, err, assert.AnError)
}

func TestGroupCounter_EmptyEach(t *testing.T) {
	sess := newTestSession(t)
	c := NewGroupCounter(sess, "test", 1)
	defer c.Close()

	calls := 0
	require.NoError(t, c.Each(func(string, int64, int64) error {
		calls++
		return nil
	}))
	assert.Zero(t, calls)
}
