// Package iocli ввод-вывод команд CLI.
package iocli

//go:generate moq -out io_mock.go . IO

// IO консоль команды
type IO interface {
	Println(a ...any)
	Printf(format string, a ...any)
	Write(p []byte) (n int, err error)
	// ReadInput выводит prompt и читает одну строку без перевода строки
	ReadInput(prompt string) (string, error)
	// ReadAll читает весь оставшийся ввод (payload из stdin)
	ReadAll() ([]byte, error)
	// Interactive true, если ввод идет с терминала
	Interactive() bool
}
