package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexai-app/lexai/internal/config"
)

// storeFactories returns every Store implementation that can run in this
// environment. Redis is included only when LEXAI_TEST_REDIS_ADDR is set.
func storeFactories(t *testing.T) map[string]func(t *testing.T) Store {
	t.Helper()
	factories := map[string]func(t *testing.T) Store{
		"file": func(t *testing.T) Store {
			s, err := NewFileStore(t.TempDir())
			require.NoError(t, err)
			return s
		},
		"memory": func(t *testing.T) Store {
			return NewMemoryStore()
		},
	}
	if addr := os.Getenv("LEXAI_TEST_REDIS_ADDR"); addr != "" {
		factories["redis"] = func(t *testing.T) Store {
			client := redis.NewClient(&redis.Options{Addr: addr})
			prefix := fmt.Sprintf("lexai-test:%s:", t.Name())
			s := NewRedisStoreWithClient(client, prefix)
			require.NoError(t, s.Clear(context.Background()))
			t.Cleanup(func() {
				_ = s.Clear(context.Background())
				_ = s.Close()
			})
			return s
		}
	}
	return factories
}

func TestStore_Contract(t *testing.T) {
	for name, newStore := range storeFactories(t) {
		t.Run(name, func(t *testing.T) {
			ctx := context.Background()

			t.Run("missing key", func(t *testing.T) {
				s := newStore(t)
				_, err := s.Get(ctx, KeyToken)
				assert.ErrorIs(t, err, ErrNotFound)
			})

			t.Run("set then get", func(t *testing.T) {
				s := newStore(t)
				require.NoError(t, s.Set(ctx, KeyToken, "t1"))

				got, err := s.Get(ctx, KeyToken)
				require.NoError(t, err)
				assert.Equal(t, "t1", got)
			})

			t.Run("set replaces", func(t *testing.T) {
				s := newStore(t)
				require.NoError(t, s.Set(ctx, KeySelectedCategory, "familia"))
				require.NoError(t, s.Set(ctx, KeySelectedCategory, "penal"))

				got, err := s.Get(ctx, KeySelectedCategory)
				require.NoError(t, err)
				assert.Equal(t, "penal", got)
			})

			t.Run("delete absent key is not an error", func(t *testing.T) {
				s := newStore(t)
				assert.NoError(t, s.Delete(ctx, KeyUser))
			})

			t.Run("delete removes only that key", func(t *testing.T) {
				s := newStore(t)
				require.NoError(t, s.Set(ctx, KeyToken, "t1"))
				require.NoError(t, s.Set(ctx, KeyUser, `{"name":"Ana"}`))
				require.NoError(t, s.Delete(ctx, KeyToken))

				_, err := s.Get(ctx, KeyToken)
				assert.ErrorIs(t, err, ErrNotFound)

				user, err := s.Get(ctx, KeyUser)
				require.NoError(t, err)
				assert.JSONEq(t, `{"name":"Ana"}`, user)
			})

			t.Run("clear removes everything", func(t *testing.T) {
				s := newStore(t)
				require.NoError(t, s.Set(ctx, KeyToken, "t1"))
				require.NoError(t, s.Set(ctx, KeyUser, "{}"))
				require.NoError(t, s.Set(ctx, KeySelectedCategory, "civil"))
				require.NoError(t, s.Clear(ctx))

				for _, key := range []string{KeyToken, KeyUser, KeySelectedCategory} {
					_, err := s.Get(ctx, key)
					assert.ErrorIs(t, err, ErrNotFound, key)
				}
			})

			t.Run("rejects invalid keys", func(t *testing.T) {
				s := newStore(t)
				for _, key := range []string{"", "a/b", `a\b`, "..", "."} {
					assert.ErrorIs(t, s.Set(ctx, key, "x"), ErrInvalidKey, key)
					_, err := s.Get(ctx, key)
					assert.ErrorIs(t, err, ErrInvalidKey, key)
					assert.ErrorIs(t, s.Delete(ctx, key), ErrInvalidKey, key)
				}
			})

			t.Run("concurrent writers", func(t *testing.T) {
				s := newStore(t)
				var wg sync.WaitGroup
				for i := range 20 {
					wg.Add(1)
					go func(i int) {
						defer wg.Done()
						assert.NoError(t, s.Set(ctx, KeyToken, fmt.Sprintf("t%d", i)))
						_, _ = s.Get(ctx, KeyToken)
					}(i)
				}
				wg.Wait()

				got, err := s.Get(ctx, KeyToken)
				require.NoError(t, err)
				assert.Regexp(t, `^t\d+$`, got)
			})
		})
	}
}

func TestFileStore_Layout(t *testing.T) {
	dataDir := t.TempDir()
	s, err := NewFileStore(dataDir)
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dataDir, StateDirName), s.baseDir)

	ctx := context.Background()
	require.NoError(t, s.Set(ctx, KeyToken, "secret"))

	info, err := os.Stat(filepath.Join(s.baseDir, KeyToken))
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	entries, err := os.ReadDir(s.baseDir)
	require.NoError(t, err)
	require.Len(t, entries, 1, "no temp files may be left behind")
	assert.Equal(t, KeyToken, entries[0].Name())
}

func TestFileStore_ClearLeavesSiblingFiles(t *testing.T) {
	dataDir := t.TempDir()
	logPath := filepath.Join(dataDir, "lexai.log")
	require.NoError(t, os.WriteFile(logPath, []byte("{}\n"), 0o600))

	s, err := NewFileStore(dataDir)
	require.NoError(t, err)
	require.NoError(t, s.Set(context.Background(), KeyToken, "t1"))
	require.NoError(t, s.Clear(context.Background()))

	_, err = os.Stat(logPath)
	assert.NoError(t, err, "Clear must not touch files outside the state directory")
}

func TestFileStore_PersistsAcrossInstances(t *testing.T) {
	dataDir := t.TempDir()
	ctx := context.Background()

	first, err := NewFileStore(dataDir)
	require.NoError(t, err)
	require.NoError(t, first.Set(ctx, KeyUser, `{"name":"Ana","organization":"Bufete A"}`))

	second, err := NewFileStore(dataDir)
	require.NoError(t, err)
	got, err := second.Get(ctx, KeyUser)
	require.NoError(t, err)
	assert.JSONEq(t, `{"name":"Ana","organization":"Bufete A"}`, got)
}

func TestMemoryStore_Clear(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()
	require.NoError(t, s.Set(ctx, KeyToken, "t1"))
	require.NoError(t, s.Set(ctx, KeyUser, "{}"))
	assert.Equal(t, 2, s.cache.ItemCount())

	require.NoError(t, s.Clear(ctx))
	assert.Equal(t, 0, s.cache.ItemCount())
}

func TestOpen(t *testing.T) {
	ctx := context.Background()

	t.Run("file", func(t *testing.T) {
		dir := t.TempDir()
		s, err := Open(ctx, config.StorageConfig{Backend: config.StorageFile, Dir: dir})
		require.NoError(t, err)
		defer s.Close()

		fs, ok := s.(*FileStore)
		require.True(t, ok, "expected *FileStore, got %T", s)
		assert.Equal(t, filepath.Join(dir, StateDirName), fs.baseDir)
	})

	t.Run("memory", func(t *testing.T) {
		s, err := Open(ctx, config.StorageConfig{Backend: config.StorageMemory})
		require.NoError(t, err)
		assert.IsType(t, &MemoryStore{}, s)
	})

	t.Run("redis with bad url", func(t *testing.T) {
		s, err := Open(ctx, config.StorageConfig{Backend: config.StorageRedis, RedisURL: "not a url"})
		assert.Error(t, err)
		assert.Nil(t, s)
	})

	t.Run("unknown backend", func(t *testing.T) {
		s, err := Open(ctx, config.StorageConfig{Backend: "sqlite"})
		assert.Error(t, err)
		assert.Nil(t, s)
	})
}
