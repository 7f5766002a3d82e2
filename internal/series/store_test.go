package series

import (
	"errors"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"PriceKeeper/internal/model"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func obs(t *testing.T, y, m, d int, price string) model.Observation {
	t.Helper()
	date, err := model.NewDate(y, time.Month(m), d)
	require.NoError(t, err)
	return model.Observation{Date: date, Price: decimal.RequireFromString(price)}
}

func readFile(t *testing.T, path string) string {
	t.Helper()
	b, err := os.ReadFile(path)
	require.NoError(t, err)
	return string(b)
}

func TestAppendBootstrapsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "data", "basf.csv")
	s := NewCSVStore(path)

	_, ok := s.LastDate()
	assert.False(t, ok)

	res, err := s.Append(obs(t, 2024, 3, 1, "101.25"))
	require.NoError(t, err)
	assert.Equal(t, model.Appended, res)
	assert.Equal(t, "Datum,Kurs\n2024-03-01,101.2500\n", readFile(t, path))

	last, ok := s.LastDate()
	require.True(t, ok)
	assert.Equal(t, "2024-03-01", last.String())
}

func TestAppendEmptyFileGetsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.csv")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	_, err := NewCSVStore(path).Append(obs(t, 2024, 3, 1, "1"))
	require.NoError(t, err)
	assert.Equal(t, "Datum,Kurs\n2024-03-01,1.0000\n", readFile(t, path))
}

func TestAppendSkipsDuplicateDate(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.csv")
	s := NewCSVStore(path)

	_, err := s.Append(obs(t, 2024, 3, 1, "101.25"))
	require.NoError(t, err)
	before := readFile(t, path)

	res, err := s.Append(obs(t, 2024, 3, 1, "99"))
	require.NoError(t, err)
	assert.Equal(t, model.SkippedDuplicate, res)
	assert.Equal(t, before, readFile(t, path))
}

func TestAppendKeepsRowsAndRepairsMissingNewline(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.csv")
	require.NoError(t, os.WriteFile(path, []byte("Datum,Kurs\n2024-02-28,50.0000"), 0o644))
	s := NewCSVStore(path)

	_, err := s.Append(obs(t, 2024, 2, 29, "51"))
	require.NoError(t, err)
	assert.Equal(t, "Datum,Kurs\n2024-02-28,50.0000\n2024-02-29,51.0000\n", readFile(t, path))
}

func TestLastDateToleratesBadRows(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.csv")
	content := "Datum,Kurs\n2024-02-27,1\nnot a date,2\n2024-02-29,3\n2024-02-28,4\n,5\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	last, ok := NewCSVStore(path).LastDate()
	require.True(t, ok)
	assert.Equal(t, "2024-02-29", last.String())
}

func TestUnreadableFileIsTreatedAsEmpty(t *testing.T) {
	cases := map[string]string{
		"no date column": "Date,Close\n2024-02-27,1\n",
		"broken header":  "\"Datum,Kurs\n2024-02-27,1\n",
		"header only":    "Datum,Kurs\n",
	}
	for name, content := range cases {
		t.Run(name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "s.csv")
			require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
			s := NewCSVStore(path)

			_, ok := s.LastDate()
			assert.False(t, ok)
			d, _ := model.NewDate(2024, 2, 27)
			assert.False(t, s.Contains(d))
		})
	}
}

func TestMalformedRowKeepsDedup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.csv")
	content := "Datum,Kurs\n2024-03-01,47.1950\n2024-03-02,4\"7\n2024-03-04,48.0000\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	s := NewCSVStore(path)

	d, _ := model.NewDate(2024, 3, 1)
	assert.True(t, s.Contains(d))
	last, ok := s.LastDate()
	require.True(t, ok)
	assert.Equal(t, "2024-03-04", last.String())

	res, err := s.Append(obs(t, 2024, 3, 1, "47.195"))
	require.NoError(t, err)
	assert.Equal(t, model.SkippedDuplicate, res)
	assert.Equal(t, content, readFile(t, path))

	got, err := s.ReadAll()
	require.NoError(t, err)
	assert.Len(t, got, 2)
}

func TestAppendWriteFailure(t *testing.T) {
	dir := t.TempDir()
	s := NewCSVStore(dir)

	res, err := s.Append(obs(t, 2024, 3, 1, "1"))
	require.Error(t, err)
	assert.Equal(t, model.AppendFailed, res)
	assert.True(t, errors.Is(err, ErrStoreWrite))

	var werr *StoreWriteError
	require.True(t, errors.As(err, &werr))
	assert.Equal(t, dir, werr.Path)
}

func TestConcurrentAppendWritesOneRow(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.csv")
	s := NewCSVStore(path)
	o := obs(t, 2024, 3, 1, "101.25")

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		appended int
	)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := s.Append(o)
			assert.NoError(t, err)
			if res == model.Appended {
				mu.Lock()
				appended++
				mu.Unlock()
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, appended)
	assert.Equal(t, "Datum,Kurs\n2024-03-01,101.2500\n", readFile(t, path))
}

func TestReadAllSortsAscending(t *testing.T) {
	path := filepath.Join(t.TempDir(), "s.csv")
	content := "Datum,Kurs\n2024-02-29,3.0000\n2024-02-27,1.0000\nbogus,2\n2024-02-28,x\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	got, err := NewCSVStore(path).ReadAll()
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "2024-02-27 1.0000", got[0].String())
	assert.Equal(t, "2024-02-29 3.0000", got[1].String())
}

func TestReadAllMissingFile(t *testing.T) {
	got, err := NewCSVStore(filepath.Join(t.TempDir(), "nope.csv")).ReadAll()
	require.NoError(t, err)
	assert.Empty(t, got)
}
