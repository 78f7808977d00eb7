package debounce

// DebouncerInterface определяет интерфейс для debouncer
type DebouncerInterface[T any] interface {
	// Trigger перезапускает таймер и запоминает последнее значение
	Trigger(value T)
	// Stop отменяет ожидающий вызов; после Stop вызовов больше не будет
	Stop()
	// Pending сообщает, взведён ли таймер
	Pending() bool
}
