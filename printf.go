package obstack

import "fmt"

// Printf formats its arguments per fmt rules and appends the result to the
// growing object, returning the number of bytes appended. The whole
// formatted output is kept, however long it turns out to be.
func (o *Obstack) Printf(format string, a ...any) int {
	b := fmt.Appendf(nil, format, a...)
	o.Grow(b)
	return len(b)
}
