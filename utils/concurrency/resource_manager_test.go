package concurrency

import (
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestConcurrency(t *testing.T) {

	t.Run("NoError", func(t *testing.T) {

		acc := make([]int, 8)

		rm := NewResourceManager(make([]bool, 4))

		for i := range acc {
			rm.Run(func(r bool) (err error) {
				acc[i]++
				return
			})
		}

		require.NoError(t, rm.Wait())

		for i := range acc {
			require.Equal(t, 1, acc[i])
		}
	})

	t.Run("WithError", func(t *testing.T) {

		rm := NewResourceManager(make([]bool, 4))

		for i := 0; i < 8; i++ {
			rm.Run(func(r bool) (err error) {
				if i == 2 {
					return fmt.Errorf("something bad happened")
				}
				return
			})
		}

		require.Error(t, rm.Wait())
	})

	t.Run("ExclusiveResources", func(t *testing.T) {

		resources := []*atomic.Int32{new(atomic.Int32), new(atomic.Int32)}

		rm := NewResourceManager(resources)

		for i := 0; i < 32; i++ {
			rm.Run(func(r *atomic.Int32) (err error) {
				if r.Add(1) != 1 {
					err = fmt.Errorf("resource held twice")
				}
				r.Add(-1)
				return
			})
		}

		require.NoError(t, rm.Wait())
	})
}
