package storage

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/xerrors"
)

func Test_KV_Basic(t *testing.T) {
	kv := NewBasicKV()

	require.NoError(t, kv.Put("b", 2))
	require.NoError(t, kv.Put("a", 1))

	v, ok := kv.Get("a")
	require.True(t, ok)
	require.Equal(t, 1, v)
	require.Equal(t, 2, kv.Len())

	_, ok = kv.Get("c")
	require.False(t, ok)
}

func Test_KV_For_In_Key_Order(t *testing.T) {
	kv := NewBasicKV()
	kv.Put("input/002", 3)
	kv.Put("input/000", 1)
	kv.Put("input/001", 2)

	var values []interface{}
	err := kv.For(func(_ string, value interface{}) error {
		values = append(values, value)
		return nil
	})
	require.NoError(t, err)
	require.Equal(t, []interface{}{1, 2, 3}, values)
}

func Test_KV_For_Stops_On_Error(t *testing.T) {
	kv := NewBasicKV()
	kv.Put("a", 1)
	kv.Put("b", 2)

	stop := xerrors.New("stop")
	var seen []string
	err := kv.For(func(key string, _ interface{}) error {
		seen = append(seen, key)
		return stop
	})
	require.ErrorIs(t, err, stop)
	require.Equal(t, []string{"a"}, seen)
}

func Test_KV_Concurrent(t *testing.T) {
	kv := NewBasicKV()

	wg := sync.WaitGroup{}
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			kv.Put(string(rune('a'+i%26)), i)
			kv.For(func(string, interface{}) error { return nil })
		}(i)
	}
	wg.Wait()

	require.Equal(t, 26, kv.Len())
}
