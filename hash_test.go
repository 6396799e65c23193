package apc_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/apc"
)

func TestHashers(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "3d70412c7e9ea2d96fa23d4f1f1f0a1c", apc.MD5("some_key"))
	assert.Equal(t, "26df19b852b11fb4b4b845134d13f6fa", apc.MD5("some_other_key"))
	assert.Equal(t, "95251fdc9fdd3f92e7aed141fe7fd06b2aeb9dedb6f7ac08e7d9babc7e898b49", apc.SHA256("some_key"))
	assert.Equal(t, "f0cceb60f8215719a48bad178fdb0b5678c999150707657e59ca355d59d5746f", apc.BLAKE2b("some_key"))
}

func TestWithHasher(t *testing.T) {
	t.Parallel()

	b := newMemory(t)

	e, err := apc.New(b, "some_key", 40*time.Second, apc.WithHasher(apc.SHA256))
	require.NoError(t, err)
	assert.Equal(t, apc.SHA256("some_key"), e.ID())

	e, err = apc.New(b, "some_key", 40*time.Second, apc.WithHasher(nil))
	require.NoError(t, err)
	assert.Equal(t, apc.MD5("some_key"), e.ID())

	e, err = apc.New(b, "some_key", 40*time.Second, apc.WithHasher(func(k string) string { return "raw:" + k }))
	require.NoError(t, err)
	assert.Equal(t, "raw:some_key", e.ID())
}
