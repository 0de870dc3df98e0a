package button

// Locker is the overridable allocation lock pair. New and Delete take this
// lock while scanning/reclaiming the fixed pool; Step is never covered by
// it (per-instance Step calls are the host's responsibility to serialize).
//
// This is the Go shape of the original C's weak button_lock/button_unlock
// symbols (original_source/modules/button/src/button_overrides.c), which
// default to no-ops and are meant to be overridden by hosts that allocate
// or free buttons from more than one goroutine.
type Locker interface {
	Lock()
	Unlock()
}

type noopLocker struct{}

func (noopLocker) Lock()   {}
func (noopLocker) Unlock() {}

var poolLock Locker = noopLocker{}

// SetPoolLocker installs the Locker used to serialize New and Delete. The
// default is a no-op, suitable for single-goroutine hosts. A preemptive
// host should install one before calling New from more than one goroutine.
func SetPoolLocker(l Locker) {
	if l == nil {
		l = noopLocker{}
	}
	poolLock = l
}

var pool [ButtonMax]Button

// New acquires a free slot from the fixed pool and returns a handle bound
// to the given level reader and (optional) event callback. It returns
// ErrInvalidParam if getState is nil, or ErrPoolExhausted if every slot is
// already allocated.
func New(getState LevelReader, callback EventCallback) (*Button, error) {
	if getState == nil {
		return nil, ErrInvalidParam
	}

	poolLock.Lock()
	var slot *Button
	for i := range pool {
		if !pool[i].allocated {
			slot = &pool[i]
			slot.allocated = true
			break
		}
	}
	poolLock.Unlock()

	if slot == nil {
		return nil, ErrPoolExhausted
	}

	slot.getState = getState
	slot.callback = callback
	slot.param = defaultParam()

	return slot, nil
}

// Delete reclaims btn's slot, zeroing every field. Calling Step on btn
// after Delete is undefined, matching the original button_delete contract.
func Delete(btn *Button) {
	if btn == nil {
		return
	}
	poolLock.Lock()
	*btn = Button{}
	poolLock.Unlock()
}
