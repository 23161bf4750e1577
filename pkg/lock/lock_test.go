package lock

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
)

// TestKeyedMutexSerializesSameKey проверяет взаимное исключение по одному ключу
func TestKeyedMutexSerializesSameKey(t *testing.T) {
	km := NewKeyedMutex()

	counter := 0
	var wg sync.WaitGroup
	for i := 0; i < 100; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			mu := km.Lock("booking:abc")
			defer mu.Unlock()
			counter++
		}()
	}
	wg.Wait()

	assert.Equal(t, 100, counter)
}

// TestKeyedMutexIndependentKeys проверяет, что разные ключи не блокируют друг друга
func TestKeyedMutexIndependentKeys(t *testing.T) {
	km := NewKeyedMutex()

	first := km.Lock("a")
	second := km.Lock("b") // не должен зависнуть
	second.Unlock()
	first.Unlock()
}

func TestLockKeys(t *testing.T) {
	assert.Equal(t, "ticket:7:12", TicketKey(7, 12))
	assert.Equal(t, "booking:b-1", BookingKey("b-1"))
}
