package feedcache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestSetAddAndCheck(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	const key = "follows:u1"
	require.NoError(t, c.Sets.AddMembers(ctx, key, []string{"2", "3", "4"}, 0))

	ok, err := c.Sets.CheckMember(ctx, key, "3")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = c.Sets.CheckMember(ctx, key, "9")
	require.NoError(t, err)
	require.False(t, ok)

	members, err := c.Sets.GetMembers(ctx, key)
	require.NoError(t, err)
	require.ElementsMatch(t, []string{"2", "3", "4"}, members)
}

// CheckMembers is order-aligned with its input regardless of storage order.
func TestCheckMembersAlignment(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	const key = "likes:cast1"
	require.NoError(t, c.Sets.AddMembers(ctx, key, []string{"b", "c"}, 0))

	got, err := c.Sets.CheckMembers(ctx, key, []string{"a", "b", "c"})
	require.NoError(t, err)
	require.Equal(t, []bool{false, true, true}, got)

	got, err = c.Sets.CheckMembers(ctx, key, []string{"c", "a", "b"})
	require.NoError(t, err)
	require.Equal(t, []bool{true, false, true}, got)

	got, err = c.Sets.CheckMembers(ctx, key, nil)
	require.NoError(t, err)
	require.Nil(t, got)
}

// The expiry lands in the same pipeline as the insert; the set is never
// observable without it.
func TestAddMembersTTL(t *testing.T) {
	ctx := context.Background()
	c, srv := newTestClient(t)

	const key = "mutuals:u1:u2"
	require.NoError(t, c.Sets.AddMembers(ctx, key, []string{"x"}, time.Minute))
	require.Greater(t, srv.TTL(key), time.Duration(0))

	srv.FastForward(2 * time.Minute)
	members, err := c.Sets.GetMembers(ctx, key)
	require.NoError(t, err)
	require.Empty(t, members)
}

// Without force, a single add must not revive a set that does not exist.
func TestAddMemberForce(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	const key = "likes:cast2"
	require.NoError(t, c.Sets.AddMember(ctx, key, "u1", false))
	ok, err := c.Sets.CheckMember(ctx, key, "u1")
	require.NoError(t, err)
	require.False(t, ok, "unforced add created a set")

	require.NoError(t, c.Sets.AddMember(ctx, key, "u1", true))
	ok, err = c.Sets.CheckMember(ctx, key, "u1")
	require.NoError(t, err)
	require.True(t, ok)

	// set exists now; unforced adds go through
	require.NoError(t, c.Sets.AddMember(ctx, key, "u2", false))
	ok, err = c.Sets.CheckMember(ctx, key, "u2")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRemoveMembers(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	const key = "recasts:cast1"
	require.NoError(t, c.Sets.AddMembers(ctx, key, []string{"a", "b", "c"}, 0))

	require.NoError(t, c.Sets.RemoveMember(ctx, key, "a"))
	require.NoError(t, c.Sets.RemoveMembers(ctx, key, nil)) // no-op
	require.NoError(t, c.Sets.RemoveMembers(ctx, key, []string{"b", "c"}))

	members, err := c.Sets.GetMembers(ctx, key)
	require.NoError(t, err)
	require.Empty(t, members)

	require.NoError(t, c.Sets.AddMembers(ctx, key, []string{"z"}, 0))
	require.NoError(t, c.Sets.Delete(ctx, key))
	ok, err := c.Scalars.Exists(ctx, key)
	require.NoError(t, err)
	require.False(t, ok)
}

// Empty input never creates a key.
func TestAddMembersEmpty(t *testing.T) {
	ctx := context.Background()
	c, _ := newTestClient(t)

	require.NoError(t, c.Sets.AddMembers(ctx, "empty", nil, time.Minute))
	ok, err := c.Scalars.Exists(ctx, "empty")
	require.NoError(t, err)
	require.False(t, ok)
}
