package command_test

import (
	"bytes"
	"context"
	"errors"
	"io"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/dmitrymomot/apc"
	"github.com/dmitrymomot/apc/internal/command"
	"github.com/dmitrymomot/apc/pkg/cache"
)

// run executes one apc invocation against a bolt file and returns stdout.
func run(t *testing.T, dbPath string, args ...string) (string, error) {
	t.Helper()

	var buf bytes.Buffer
	cmd := command.New("test")
	cmd.Writer = &buf
	cmd.ErrWriter = io.Discard

	argv := append([]string{"apc", "--driver", "bolt", "--bolt-path", dbPath}, args...)
	err := cmd.Run(context.Background(), argv)
	return buf.String(), err
}

func exitCode(t *testing.T, err error) int {
	t.Helper()

	var ec cli.ExitCoder
	require.True(t, errors.As(err, &ec), "expected exit coder, got %v", err)
	return ec.ExitCode()
}

func TestSetGet(t *testing.T) {
	t.Parallel()

	db := filepath.Join(t.TempDir(), "apc.db")

	_, err := run(t, db, "set", "--ttl", "40", "some_key", "foo")
	require.NoError(t, err)

	out, err := run(t, db, "get", "some_key")
	require.NoError(t, err)
	assert.Equal(t, "foo\n", out)

	out, err = run(t, db, "get", "-o", "yaml", "some_key")
	require.NoError(t, err)
	assert.Equal(t, "key: some_key\nid: "+apc.MD5("some_key")+"\nvalue: foo\n", out)
}

func TestSetJSON(t *testing.T) {
	t.Parallel()

	db := filepath.Join(t.TempDir(), "apc.db")

	_, err := run(t, db, "set", "--json", "k", `{"a":1,"b":[true]}`)
	require.NoError(t, err)

	out, err := run(t, db, "get", "--output", "json", "k")
	require.NoError(t, err)
	assert.JSONEq(t, `{"key":"k","id":"`+apc.MD5("k")+`","value":{"a":1,"b":[true]}}`, out)

	out, err = run(t, db, "get", "k")
	require.NoError(t, err)
	assert.Contains(t, out, `"a": (float64) 1`)

	_, err = run(t, db, "set", "--json", "k", `{`)
	require.ErrorIs(t, err, apc.ErrInvalidArgument)
}

func TestGet_Missing(t *testing.T) {
	t.Parallel()

	_, err := run(t, filepath.Join(t.TempDir(), "apc.db"), "get", "missing")
	assert.Equal(t, 1, exitCode(t, err))
}

func TestGet_InvalidOutput(t *testing.T) {
	t.Parallel()

	_, err := run(t, filepath.Join(t.TempDir(), "apc.db"), "get", "-o", "xml", "k")
	require.Error(t, err)
}

func TestExistsDelete(t *testing.T) {
	t.Parallel()

	db := filepath.Join(t.TempDir(), "apc.db")

	_, err := run(t, db, "set", "k", "v")
	require.NoError(t, err)

	out, err := run(t, db, "exists", "k")
	require.NoError(t, err)
	assert.Equal(t, "true\n", out)

	_, err = run(t, db, "delete", "k")
	require.NoError(t, err)

	out, err = run(t, db, "exists", "k")
	assert.Equal(t, "false\n", out)
	assert.Equal(t, 1, exitCode(t, err))

	_, err = run(t, db, "rm", "k")
	assert.Equal(t, 1, exitCode(t, err))
}

func TestSet_Errors(t *testing.T) {
	t.Parallel()

	db := filepath.Join(t.TempDir(), "apc.db")

	_, err := run(t, db, "set", "--ttl", "-1", "k", "v")
	require.ErrorIs(t, err, apc.ErrNegativeTTL)

	_, err = run(t, db, "set", "--ttl", "soon", "k", "v")
	require.ErrorIs(t, err, apc.ErrNonNumericTTL)

	_, err = run(t, db, "set", "k")
	assert.Equal(t, 2, exitCode(t, err))

	_, err = run(t, db, "get")
	assert.Equal(t, 2, exitCode(t, err))
}

func TestClear(t *testing.T) {
	t.Parallel()

	db := filepath.Join(t.TempDir(), "apc.db")

	_, err := run(t, db, "set", "k", "v")
	require.NoError(t, err)

	_, err = run(t, db, "clear", "bogus")
	require.ErrorIs(t, err, apc.ErrInvalidArgument)

	_, err = run(t, db, "clear", "opcode")
	require.NoError(t, err)
	out, _ := run(t, db, "exists", "k")
	assert.Equal(t, "true\n", out)

	storeDefault(t, db, "compiled")

	_, err = run(t, db, "clear")
	require.NoError(t, err)
	out, _ = run(t, db, "exists", "k")
	assert.Equal(t, "false\n", out)
	assert.False(t, existsDefault(t, db, "compiled"), "clear without a scope clears every segment")

	_, err = run(t, db, "set", "k", "v")
	require.NoError(t, err)
	_, err = run(t, db, "clear", "--legacy-scope", "opcode")
	require.NoError(t, err)
	out, _ = run(t, db, "exists", "k")
	assert.Equal(t, "false\n", out)
}

// storeDefault writes id into the default segment of the bolt file, which
// the entry commands never address.
func storeDefault(t *testing.T, dbPath, id string) {
	t.Helper()

	b, err := cache.OpenBolt[any](dbPath, nil)
	require.NoError(t, err)
	defer func() { require.NoError(t, b.Close()) }()

	require.NoError(t, b.In(cache.SegmentDefault).Store(context.Background(), id, "v", 0))
}

func existsDefault(t *testing.T, dbPath, id string) bool {
	t.Helper()

	b, err := cache.OpenBolt[any](dbPath, nil)
	require.NoError(t, err)
	defer func() { require.NoError(t, b.Close()) }()

	ok, err := b.In(cache.SegmentDefault).Exists(context.Background(), id)
	require.NoError(t, err)
	return ok
}

func TestConfigFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "apc.yaml")
	dbPath := filepath.Join(dir, "from-config.db")
	require.NoError(t, os.WriteFile(cfgPath, []byte("driver: bolt\nbolt:\n  path: "+dbPath+"\nlog:\n  level: debug\n"), 0o600))

	runCfg := func(args ...string) (string, error) {
		var buf bytes.Buffer
		cmd := command.New("test")
		cmd.Writer = &buf
		cmd.ErrWriter = io.Discard
		err := cmd.Run(context.Background(), append([]string{"apc", "--config", cfgPath}, args...))
		return buf.String(), err
	}

	_, err := runCfg("set", "k", "v")
	require.NoError(t, err)

	out, err := runCfg("get", "k")
	require.NoError(t, err)
	assert.Equal(t, "v\n", out)

	_, err = os.Stat(dbPath)
	require.NoError(t, err)
}

func TestUnknownDriver(t *testing.T) {
	t.Parallel()

	cmd := command.New("test")
	cmd.Writer = io.Discard
	cmd.ErrWriter = io.Discard

	err := cmd.Run(context.Background(), []string{"apc", "--driver", "apcu", "get", "k"})
	require.Error(t, err)
}
