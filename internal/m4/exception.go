// Copyright © 2024 Jeff Berkowitz (pdxjjb@gmail.com)
//
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published
// by the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// This program is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE. See the
// GNU Affero General Public License for more details.

package m4

import "math"

// ExceptionKind is the closed tag union of exceptions the core models
// (spec §3). Interrupt carries an explicit number since it's the one
// open-ended variant.
type ExceptionKind int

const (
	KindReset ExceptionKind = iota
	KindNMI
	KindHardFault
	KindMemManage
	KindBusFault
	KindUsageFault
	KindSVCall
	KindDebugMonitor
	KindPendSV
	KindSysTick
	KindInterrupt
)

// Exception is a pending or taken exception: its kind plus, for
// KindInterrupt, the external interrupt number.
type Exception struct {
	Kind ExceptionKind
	IRQn int
}

// Convenience values for the fixed-kind exceptions; KindInterrupt needs
// ExcInterrupt(n) since it's parameterized.
var (
	ExcReset        = Exception{Kind: KindReset}
	ExcNMI          = Exception{Kind: KindNMI}
	ExcHardFault    = Exception{Kind: KindHardFault}
	ExcMemManage    = Exception{Kind: KindMemManage}
	ExcBusFault     = Exception{Kind: KindBusFault}
	ExcUsageFault   = Exception{Kind: KindUsageFault}
	ExcSVCall       = Exception{Kind: KindSVCall}
	ExcDebugMonitor = Exception{Kind: KindDebugMonitor}
	ExcPendSV       = Exception{Kind: KindPendSV}
	ExcSysTick      = Exception{Kind: KindSysTick}
)

// ExcInterrupt builds a KindInterrupt exception for external IRQ n.
func ExcInterrupt(n int) Exception {
	return Exception{Kind: KindInterrupt, IRQn: n}
}

// Priority returns the exception's fixed priority: negative for the
// always-wins faults, 0 for everything else (spec §3). Lower wins.
func (e Exception) Priority() int32 {
	switch e.Kind {
	case KindReset:
		return -3
	case KindNMI:
		return -2
	case KindHardFault:
		return -1
	default:
		return 0
	}
}

// Number returns the canonical exception number (spec §3).
func (e Exception) Number() uint32 {
	switch e.Kind {
	case KindReset:
		return 1
	case KindNMI:
		return 2
	case KindHardFault:
		return 3
	case KindMemManage:
		return 4
	case KindBusFault:
		return 5
	case KindUsageFault:
		return 6
	case KindSVCall:
		return 11
	case KindDebugMonitor:
		return 12
	case KindPendSV:
		return 14
	case KindSysTick:
		return 15
	case KindInterrupt:
		return uint32(e.IRQn)
	default:
		return 0
	}
}

func (e Exception) String() string {
	switch e.Kind {
	case KindReset:
		return "Reset"
	case KindNMI:
		return "NMI"
	case KindHardFault:
		return "HardFault"
	case KindMemManage:
		return "MemManage"
	case KindBusFault:
		return "BusFault"
	case KindUsageFault:
		return "UsageFault"
	case KindSVCall:
		return "SVCall"
	case KindDebugMonitor:
		return "DebugMonitor"
	case KindPendSV:
		return "PendSV"
	case KindSysTick:
		return "SysTick"
	case KindInterrupt:
		return "Interrupt"
	default:
		return "Unknown"
	}
}

// noActiveException is the sentinel execution-priority-group value used
// before any exception has been taken. Thread-level code runs at a
// priority below every real exception (including the default priority-0
// faults), so the very first fault of any priority must be enqueueable —
// see DESIGN.md's resolution of the §9 Open Question on throw-gating.
const noActiveException = math.MaxInt32

// NVIC is the priority-ordered pending-exception queue (spec §3, §4.5's
// "Interrupt controller"). It has no notion of instructions or memory; it
// only tracks what's pending and what's currently executing.
type NVIC struct {
	pending       []Exception
	priorityStack []int32
}

// NewNVIC returns an NVIC with an empty queue at thread-level priority.
func NewNVIC() *NVIC {
	return &NVIC{priorityStack: []int32{noActiveException}}
}

// currentPriority is the priority of whichever exception is currently
// being handled, or noActiveException in Thread mode.
func (n *NVIC) currentPriority() int32 {
	return n.priorityStack[len(n.priorityStack)-1]
}

// Raise enqueues e if its priority is strictly less than the current
// execution priority group (spec §3's pending-queue invariant).
func (n *NVIC) Raise(e Exception) {
	if e.Priority() < n.currentPriority() {
		n.pending = append(n.pending, e)
	}
}

// Pending reports whether anything is queued.
func (n *NVIC) Pending() bool {
	return len(n.pending) > 0
}

// Poll removes and returns the highest-priority pending exception: lowest
// Priority() first, ties broken by ascending Number() (spec §8 test 4:
// {MemManage, BusFault, SysTick} — all priority 0 — drain in ascending
// exception-number order).
func (n *NVIC) Poll() (Exception, bool) {
	if len(n.pending) == 0 {
		return Exception{}, false
	}
	best := 0
	for i := 1; i < len(n.pending); i++ {
		if less(n.pending[i], n.pending[best]) {
			best = i
		}
	}
	e := n.pending[best]
	n.pending = append(n.pending[:best], n.pending[best+1:]...)
	return e, true
}

func less(a, b Exception) bool {
	if a.Priority() != b.Priority() {
		return a.Priority() < b.Priority()
	}
	return a.Number() < b.Number()
}

// Enter pushes the priority of the exception now being serviced, raising
// the execution priority group so that only strictly-higher-priority
// exceptions can preempt it.
func (n *NVIC) Enter(e Exception) {
	n.priorityStack = append(n.priorityStack, e.Priority())
}

// Exit pops the innermost serviced priority on exception return.
func (n *NVIC) Exit() {
	if len(n.priorityStack) > 1 {
		n.priorityStack = n.priorityStack[:len(n.priorityStack)-1]
	}
}

// snapshot returns an independent copy of the pending queue, in its
// current (unordered) storage order, for Processor.Snapshot.
func (n *NVIC) snapshot() []Exception {
	cp := make([]Exception, len(n.pending))
	copy(cp, n.pending)
	return cp
}
