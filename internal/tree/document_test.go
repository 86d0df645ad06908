package tree_test

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/aretw0/tgadmin/internal/mutation"
	"github.com/aretw0/tgadmin/internal/tree"
	"github.com/aretw0/tgadmin/pkg/domain"
	"github.com/aretw0/tgadmin/pkg/ports"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoad_Formats(t *testing.T) {
	for name, content := range map[string]string{
		"cfg.json":  `{"port": 80, /* lenient */}`,
		"cfg.json5": "{port: 0x50, // hex\n}",
		"cfg.yaml":  "port: 80\n",
		"cfg.yml":   "port: 80\n",
		"cfg.toml":  "port = 80\n",
	} {
		t.Run(name, func(t *testing.T) {
			doc, err := tree.Load(writeFile(t, name, content))
			require.NoError(t, err)

			v, ok := doc.Get(domain.NewPath("port"))
			require.True(t, ok)
			assert.Equal(t, domain.Number("80"), v)
		})
	}
}

func TestLoad_Errors(t *testing.T) {
	_, err := tree.Load(writeFile(t, "cfg.ini", "port=80"))
	assert.ErrorIs(t, err, domain.ErrUnsupportedFormat)

	_, err = tree.Load(writeFile(t, "cfg.yaml", "port: [80"))
	assert.ErrorIs(t, err, domain.ErrParse)

	_, err = tree.Load(filepath.Join(t.TempDir(), "missing.json"))
	assert.Error(t, err)
}

func TestGet_ReturnsCopy(t *testing.T) {
	doc, err := tree.Load(writeFile(t, "cfg.json", `{"tags": ["a"]}`))
	require.NoError(t, err)

	v, ok := doc.Get(domain.NewPath("tags"))
	require.True(t, ok)
	v.(*domain.Array).Items = nil

	again, _ := doc.Get(domain.NewPath("tags"))
	assert.Equal(t, 1, again.(*domain.Array).Len())

	_, ok = doc.Get(domain.NewPath("tags", "deeper"))
	assert.False(t, ok)
}

func TestWithWrite_PersistsAtomically(t *testing.T) {
	path := writeFile(t, "cfg.json", `{"age": 25, "tags": ["a", "b"]}`)
	doc, err := tree.Load(path)
	require.NoError(t, err)

	err = doc.WithWrite(context.Background(), func(w *tree.Writer) error {
		if err := mutation.Apply(w.Root(), domain.NewPath("age"), domain.MutationReplace, domain.Int(26)); err != nil {
			return err
		}
		return w.Persist()
	})
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "{\n  \"age\": 26,\n  \"tags\": [\n    \"a\",\n    \"b\"\n  ]\n}\n", string(data))

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")

	changed, err := doc.ReloadIfChanged(context.Background())
	require.NoError(t, err)
	assert.False(t, changed, "our own write is not an external change")
}

func TestWithWrite_RollsBackOnError(t *testing.T) {
	path := writeFile(t, "cfg.toml", "name = \"svc\"\n")
	doc, err := tree.Load(path)
	require.NoError(t, err)

	// TOML has no null, so Persist fails after the mutation succeeded.
	err = doc.WithWrite(context.Background(), func(w *tree.Writer) error {
		if err := mutation.Apply(w.Root(), domain.NewPath("name"), domain.MutationReplace, domain.Null{}); err != nil {
			return err
		}
		return w.Persist()
	})
	assert.ErrorIs(t, err, domain.ErrSerialize)

	v, ok := doc.Get(domain.NewPath("name"))
	require.True(t, ok)
	assert.Equal(t, domain.String("svc"), v, "in-memory tree must be restored")

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "name = \"svc\"\n", string(data))
}

func TestReload(t *testing.T) {
	path := writeFile(t, "cfg.yaml", "a: 1\n")
	doc, err := tree.Load(path)
	require.NoError(t, err)
	ctx := context.Background()

	changed, err := doc.ReloadIfChanged(ctx)
	require.NoError(t, err)
	assert.False(t, changed)

	require.NoError(t, os.WriteFile(path, []byte("a: 2\n"), 0o600))
	changed, err = doc.ReloadIfChanged(ctx)
	require.NoError(t, err)
	assert.True(t, changed)
	v, _ := doc.Get(domain.NewPath("a"))
	assert.Equal(t, domain.Number("2"), v)

	require.NoError(t, os.WriteFile(path, []byte("a: [\n"), 0o600))
	assert.ErrorIs(t, doc.Reload(ctx), domain.ErrParse)
	v, _ = doc.Get(domain.NewPath("a"))
	assert.Equal(t, domain.Number("2"), v, "a broken file must not replace the document")
}

type countingLocker struct {
	mu    sync.Mutex
	held  bool
	calls int
	keys  []string
}

func (l *countingLocker) Lock(ctx context.Context, key string, ttl time.Duration) (ports.UnlockFunc, error) {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.held {
		return nil, errors.New("lock already held")
	}
	l.held = true
	l.calls++
	l.keys = append(l.keys, key)
	return func(context.Context) error {
		l.mu.Lock()
		defer l.mu.Unlock()
		l.held = false
		return nil
	}, nil
}

func TestWithWrite_DistributedLockAndExternalChange(t *testing.T) {
	path := writeFile(t, "cfg.json", `{"a": 1, "b": 1}`)
	locker := &countingLocker{}
	doc, err := tree.Load(path, tree.WithLocker(locker, time.Second))
	require.NoError(t, err)

	// Another process rewrote the file; the write must start from its content.
	require.NoError(t, os.WriteFile(path, []byte(`{"a": 1, "b": 2}`), 0o600))

	err = doc.WithWrite(context.Background(), func(w *tree.Writer) error {
		if err := mutation.Apply(w.Root(), domain.NewPath("a"), domain.MutationReplace, domain.Int(5)); err != nil {
			return err
		}
		return w.Persist()
	})
	require.NoError(t, err)

	assert.Equal(t, 1, locker.calls)
	assert.False(t, locker.held)
	assert.Equal(t, []string{"doc:" + doc.Path()}, locker.keys)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.JSONEq(t, `{"a": 5, "b": 2}`, string(data))
}

func TestConcurrentReadersAndWriters(t *testing.T) {
	doc, err := tree.Load(writeFile(t, "cfg.json", `{"xs": []}`))
	require.NoError(t, err)
	ctx := context.Background()
	xs := domain.NewPath("xs")

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(2)
		go func(i int) {
			defer wg.Done()
			err := doc.WithWrite(ctx, func(w *tree.Writer) error {
				if err := mutation.Apply(w.Root(), xs, domain.MutationAppend, domain.Int(int64(i))); err != nil {
					return err
				}
				return w.Persist()
			})
			assert.NoError(t, err)
		}(i)
		go func() {
			defer wg.Done()
			_ = doc.View(func(root domain.Value) error {
				_, ok := domain.Lookup(root, xs)
				assert.True(t, ok)
				return nil
			})
		}()
	}
	wg.Wait()

	v, _ := doc.Get(xs)
	assert.Equal(t, 20, v.(*domain.Array).Len())
}
