package logger

import "fmt"

// Logger queues log lines on a channel so request paths never block on the
// consumer; when the buffer fills, the oldest line is dropped instead.
type Logger struct {
	Prints chan string
}

func Init() *Logger {
	return &Logger{make(chan string, 100)}
}

func (l *Logger) Print(s string) {
	for {
		select {
		case l.Prints <- s:
			return
		default:
		}
		// Full: drop the oldest line and retry. A concurrent producer may
		// steal the freed slot, so never fall back to a blocking send.
		select {
		case <-l.Prints:
		default:
		}
	}
}

func (l *Logger) Printf(s string, as ...interface{}) {
	l.Print(fmt.Sprintf(s, as...))
}

func (l *Logger) PrintError(source string, err error) {
	l.Printf("Error(%s) -> %s", source, err.Error())
}
