package logging

import "fmt"

// Printf adapts a Logger to printf-style callers such as the backend client.
type Printf struct {
	L Logger
}

func (p Printf) Debugf(format string, args ...interface{}) {
	OrNop(p.L).Debug(fmt.Sprintf(format, args...))
}

func (p Printf) Infof(format string, args ...interface{}) {
	OrNop(p.L).Info(fmt.Sprintf(format, args...))
}

func (p Printf) Errorf(format string, args ...interface{}) {
	OrNop(p.L).Error(fmt.Sprintf(format, args...))
}
