// Package conlog routes narrow-phase diagnostics to a caller supplied printf.
// Nothing is printed until SetPrintf is called.
package conlog

import "sync/atomic"

type printf func(string, ...interface{})

var p atomic.Pointer[printf]

// SetPrintf installs f as the output. A nil f discards the messages again.
func SetPrintf(f func(string, ...interface{})) {
	if f == nil {
		p.Store(nil)
		return
	}
	fn := printf(f)
	p.Store(&fn)
}

func Printf(format string, v ...interface{}) {
	if f := p.Load(); f != nil {
		(*f)(format, v...)
	}
}
