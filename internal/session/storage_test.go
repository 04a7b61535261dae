package session

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sakura-poetry/poetryctl/internal/errors"
)

// exerciseStorage runs the contract every TokenStorage must satisfy.
func exerciseStorage(t *testing.T, s TokenStorage) {
	t.Helper()
	ctx := context.Background()

	token, err := s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token, "fresh storage must be empty")

	require.NoError(t, s.Save(ctx, "T1"))
	token, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "T1", token)

	require.NoError(t, s.Save(ctx, "T2"))
	token, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Equal(t, "T2", token)

	require.NoError(t, s.Clear(ctx))
	require.NoError(t, s.Clear(ctx), "Clear must be idempotent")
	token, err = s.Load(ctx)
	require.NoError(t, err)
	assert.Empty(t, token)
}

func TestMemoryStorage(t *testing.T) {
	exerciseStorage(t, NewMemoryStorage())
}

func TestFileStorage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "session.json")
	exerciseStorage(t, NewFileStorage(path))
}

func TestFileStorage_Permissions(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	s := NewFileStorage(path)
	require.NoError(t, s.Save(context.Background(), "T1"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0600), info.Mode().Perm())

	_, err = os.Stat(path + ".tmp")
	assert.True(t, os.IsNotExist(err), "temp file must not be left behind")
}

func TestFileStorage_Corrupt(t *testing.T) {
	path := filepath.Join(t.TempDir(), "session.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0600))

	_, err := NewFileStorage(path).Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindStorage))
}

func TestFileStorage_Path(t *testing.T) {
	s := NewFileStorage("/tmp/x/session.json")
	assert.Equal(t, "/tmp/x/session.json", s.Path())
}

func TestDefaultFilePath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	path, err := DefaultFilePath()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join("/home/tester", ".poetryctl", "session.json"), path)
}

func newMiniredis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, client
}

func TestRedisStorage(t *testing.T) {
	_, client := newMiniredis(t)
	exerciseStorage(t, NewRedisStorage(client, "", 0))
}

func TestRedisStorage_KeyAndTTL(t *testing.T) {
	mr, client := newMiniredis(t)
	s := NewRedisStorage(client, "admin:token", time.Hour)

	require.NoError(t, s.Save(context.Background(), "T1"))

	got, err := mr.Get("admin:token")
	require.NoError(t, err)
	assert.Equal(t, "T1", got)
	assert.Equal(t, time.Hour, mr.TTL("admin:token"))

	mr.FastForward(2 * time.Hour)
	token, err := s.Load(context.Background())
	require.NoError(t, err)
	assert.Empty(t, token, "expired key reads as logged out")
}

func TestRedisStorage_DefaultKey(t *testing.T) {
	mr, client := newMiniredis(t)
	s := NewRedisStorage(client, "", 0)
	require.NoError(t, s.Save(context.Background(), "T1"))
	assert.True(t, mr.Exists(DefaultRedisKey))
}

func TestRedisStorage_Unavailable(t *testing.T) {
	mr, client := newMiniredis(t)
	s := NewRedisStorage(client, "", 0)
	mr.Close()

	_, err := s.Load(context.Background())
	require.Error(t, err)
	assert.True(t, errors.IsKind(err, errors.KindStorage))
}
