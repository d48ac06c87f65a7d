// Package autoinc hands out increasing ids.
package autoinc

import "sync/atomic"

// AutoInc 自增
type AutoInc struct {
	start, step uint64
	n           atomic.Uint64
}

// New 实例化
func New(start, step uint64) *AutoInc {
	return &AutoInc{start: start, step: step}
}

// ID 取id
func (ai *AutoInc) ID() uint64 {
	n := ai.n.Add(1) - 1
	return ai.start + n*ai.step
}
