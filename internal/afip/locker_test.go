package afip

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLocalVoucherLockerSerializesSlot(t *testing.T) {
	locker := NewLocalVoucherLocker()
	ctx := context.Background()

	var mu sync.Mutex
	inCritical := 0
	maxInCritical := 0

	var wg sync.WaitGroup
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			release, err := locker.Lock(ctx, 1, 6)
			require.NoError(t, err)
			defer release()

			mu.Lock()
			inCritical++
			if inCritical > maxInCritical {
				maxInCritical = inCritical
			}
			mu.Unlock()

			mu.Lock()
			inCritical--
			mu.Unlock()
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, maxInCritical)
}

func TestLocalVoucherLockerIndependentSlots(t *testing.T) {
	locker := NewLocalVoucherLocker()
	ctx := context.Background()

	release1, err := locker.Lock(ctx, 1, 6)
	require.NoError(t, err)
	defer release1()

	// A different (ptoVta, cbteTipo) pair must not block.
	done := make(chan struct{})
	go func() {
		release2, err := locker.Lock(ctx, 1, 1)
		assert.NoError(t, err)
		release2()
		close(done)
	}()
	<-done
}
