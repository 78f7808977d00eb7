// Package debounce откладывает действие до паузы во входящих событиях.
package debounce

import (
	"sync"
	"time"
)

// DefaultDelay задаёт паузу по умолчанию перед вызовом действия
const DefaultDelay = 500 * time.Millisecond

// Debouncer вызывает action с последним значением после паузы delay.
// Каждый Trigger отменяет предыдущий таймер и взводит новый.
type Debouncer[T any] struct {
	mu      sync.Mutex
	delay   time.Duration
	action  func(T)
	timer   *time.Timer
	value   T
	gen     uint64
	stopped bool
}

// Убеждаемся, что Debouncer реализует DebouncerInterface
var _ DebouncerInterface[string] = (*Debouncer[string])(nil)

// New создаёт Debouncer; delay <= 0 заменяется на DefaultDelay
func New[T any](delay time.Duration, action func(T)) *Debouncer[T] {
	if delay <= 0 {
		delay = DefaultDelay
	}
	return &Debouncer[T]{
		delay:  delay,
		action: action,
	}
}

// Trigger запоминает value и перезапускает таймер
func (d *Debouncer[T]) Trigger(value T) {
	d.mu.Lock()
	defer d.mu.Unlock()

	if d.stopped {
		return
	}
	if d.timer != nil {
		d.timer.Stop()
	}
	d.gen++
	gen := d.gen
	d.value = value
	d.timer = time.AfterFunc(d.delay, func() { d.fire(gen) })
}

// fire выполняет действие, если таймер gen всё ещё актуален.
// Сработавший, но уже заменённый таймер проверку не пройдёт.
func (d *Debouncer[T]) fire(gen uint64) {
	d.mu.Lock()
	if d.stopped || gen != d.gen {
		d.mu.Unlock()
		return
	}
	value := d.value
	d.timer = nil
	d.mu.Unlock()

	d.action(value)
}

// Stop отменяет ожидающий вызов и отключает Debouncer
func (d *Debouncer[T]) Stop() {
	d.mu.Lock()
	defer d.mu.Unlock()

	d.stopped = true
	d.gen++
	if d.timer != nil {
		d.timer.Stop()
		d.timer = nil
	}
}

// Pending сообщает, ожидается ли вызов действия
func (d *Debouncer[T]) Pending() bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.timer != nil
}
