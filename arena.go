package meshmirror

import (
	"fmt"
	"unsafe"
)

// slot is satisfied by pointers to the element records stored in an Arena.
type slot[T any] interface {
	*T
	Deleted() bool
	markDeleted()
}

// Arena is a 1-indexed growable array of mesh entities. Index 0 is a
// sentinel that never holds an entity. Slots in 1..Len may be deleted;
// Compact removes them.
//
// Pointers returned by At are invalidated by any call that may grow the
// arena (Reserve, Add). Keep indices, not pointers, across such calls.
type Arena[T any, P slot[T]] struct {
	slots []T // len(slots) == Cap()+1.
	n     int
	// free-list of reusable slots for recycling arenas. next[i] is the
	// slot following i in the list, 0 terminates it.
	next    []int
	head    int
	recycle bool
	size    int64
	mem     *memory
}

func newArena[T any, P slot[T]](recycle bool, size int64, mem *memory) *Arena[T, P] {
	return &Arena[T, P]{
		slots:   make([]T, 1),
		next:    make([]int, 1),
		recycle: recycle,
		size:    size,
		mem:     mem,
	}
}

// Len returns the upper bound of used slots. Deleted slots below it
// are counted.
func (a *Arena[T, P]) Len() int { return a.n }

// Cap returns the number of slots available without growing.
func (a *Arena[T, P]) Cap() int { return len(a.slots) - 1 }

// SetLen claims or releases slots so that Len returns n. Recycling arenas
// rebuild their free-list over the slots past n, so holes below n are
// not reused until the arena is compacted.
func (a *Arena[T, P]) SetLen(n int) {
	if n < 0 || n > a.Cap() {
		panic(fmt.Sprintf("arena length %d out of capacity %d", n, a.Cap()))
	}
	a.n = n
	if a.recycle {
		a.linkFree(n + 1)
	}
}

// Reserve grows the arena so that Cap is at least c, preserving contents.
// It fails with an error wrapping ErrMemory if the mesh memory limit would
// be exceeded, in which case the arena is unchanged.
func (a *Arena[T, P]) Reserve(c int) error {
	old := a.Cap()
	if c <= old {
		return nil
	}
	per := a.size
	if a.recycle {
		per += int64(unsafe.Sizeof(int(0)))
	}
	if err := a.mem.reserve(int64(c-old) * per); err != nil {
		return err
	}
	slots := make([]T, c+1)
	copy(slots, a.slots)
	for i := old + 1; i <= c; i++ {
		P(&slots[i]).markDeleted()
	}
	a.slots = slots
	if a.recycle {
		next := make([]int, c+1)
		copy(next, a.next)
		a.next = next
		// Push new slots in front so they are handed out in order.
		for i := c; i > old; i-- {
			a.next[i] = a.head
			a.head = i
		}
	}
	return nil
}

// At returns a pointer to the record at slot i in 1..Len.
func (a *Arena[T, P]) At(i int) *T {
	a.check(i)
	return &a.slots[i]
}

// Get returns a copy of the record at slot i in 1..Len.
func (a *Arena[T, P]) Get(i int) T {
	a.check(i)
	return a.slots[i]
}

// Set stores e at slot i in 1..Len.
func (a *Arena[T, P]) Set(i int, e T) {
	a.check(i)
	a.slots[i] = e
}

// IsLive reports whether slot i holds an entity.
func (a *Arena[T, P]) IsLive(i int) bool {
	return i >= 1 && i <= a.n && !P(&a.slots[i]).Deleted()
}

// Count returns the number of live slots in 1..Len.
func (a *Arena[T, P]) Count() (n int) {
	for i := 1; i <= a.n; i++ {
		if !P(&a.slots[i]).Deleted() {
			n++
		}
	}
	return n
}

// Add stores e in a free slot, growing the arena if needed, and returns
// the slot index.
func (a *Arena[T, P]) Add(e T) (int, error) {
	i := a.pop()
	if i == 0 {
		c := a.Cap()
		if err := a.Reserve(c + c/2 + 16); err != nil {
			return 0, err
		}
		i = a.pop()
	}
	a.slots[i] = e
	if i > a.n {
		a.n = i
	}
	return i, nil
}

// Delete marks slot i as deleted. Recycling arenas make the slot
// available to Add.
func (a *Arena[T, P]) Delete(i int) {
	a.check(i)
	if P(&a.slots[i]).Deleted() {
		return
	}
	P(&a.slots[i]).markDeleted()
	if a.recycle {
		a.next[i] = a.head
		a.head = i
	}
	if i == a.n {
		a.n--
	}
}

// Compact moves live records from the tail of the arena into deleted slots
// at its head until 1..Len holds only live records. Record order is not
// preserved. It returns the new Len. Recycling arenas rebuild their free-list
// over Len+1..Cap.
func (a *Arena[T, P]) Compact() int {
	if a.n == 0 {
		return 0
	}
	s := a.slots
	k, hi := 1, a.n
	for k < hi {
		if !P(&s[k]).Deleted() {
			k++
			continue
		}
		for hi > k && P(&s[hi]).Deleted() {
			hi--
		}
		if hi == k {
			break
		}
		s[k] = s[hi]
		P(&s[hi]).markDeleted()
		hi--
		k++
	}
	if hi >= 1 && P(&s[hi]).Deleted() {
		hi--
	}
	a.n = hi
	for i := hi + 1; i < len(s); i++ {
		P(&s[i]).markDeleted()
	}
	if a.recycle {
		a.linkFree(hi + 1)
	}
	return hi
}

// linkFree makes the free-list thread slots from..Cap in order.
func (a *Arena[T, P]) linkFree(from int) {
	a.head = 0
	c := a.Cap()
	for i := 1; i < from && i <= c; i++ {
		a.next[i] = 0
	}
	if from > c {
		return
	}
	a.head = from
	for i := from; i < c; i++ {
		a.next[i] = i + 1
	}
	a.next[c] = 0
}

func (a *Arena[T, P]) pop() int {
	if !a.recycle {
		if a.n < a.Cap() {
			return a.n + 1
		}
		return 0
	}
	i := a.head
	if i != 0 {
		a.head = a.next[i]
		a.next[i] = 0
	}
	return i
}

func (a *Arena[T, P]) check(i int) {
	if i < 1 || i > a.n {
		panic(fmt.Sprintf("arena index %d out of range [1,%d]", i, a.n))
	}
}

// memory accounts for the bytes reserved by the arenas of a mesh.
type memory struct {
	limit int64 // <= 0 means unbounded.
	used  int64
}

func (m *memory) reserve(bytes int64) error {
	if m.limit > 0 && m.used+bytes > m.limit {
		return fmt.Errorf("need %d more bytes with %d of %d in use: %w", bytes, m.used, m.limit, ErrMemory)
	}
	m.used += bytes
	return nil
}
