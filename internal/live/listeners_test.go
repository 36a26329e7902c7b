package live

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListenerSet_DispatchesInRegistrationOrder(t *testing.T) {
	var set listenerSet[int]
	var order []string

	set.add(func(int) { order = append(order, "first") })
	set.add(func(int) { order = append(order, "second") })
	set.add(func(int) { order = append(order, "third") })

	set.dispatch(1)
	assert.Equal(t, []string{"first", "second", "third"}, order)
}

func seen(log *[]string, tag string) func(int) {
	return func(int) { *log = append(*log, tag) }
}

func TestListenerSet_SameFunctionRegisteredTwiceFiresOnce(t *testing.T) {
	var set listenerSet[int]
	var log []string

	fn := seen(&log, "cb")
	unsub1 := set.add(fn)
	unsub2 := set.add(fn)
	require.Equal(t, 1, set.size(), "set semantics: one entry per function")

	set.dispatch(1)
	assert.Equal(t, []string{"cb"}, log)

	// Either unsubscribe handle removes the single entry.
	unsub1()
	set.dispatch(2)
	assert.Equal(t, []string{"cb"}, log)
	unsub2()
}

func TestListenerSet_DistinctClosuresFromOneLiteralAreDistinct(t *testing.T) {
	var set listenerSet[int]
	fired := map[string]int{}

	// Two subscribers registered through the same code path, as two views
	// sharing one channel would.
	var unsubs []func()
	for _, tag := range []string{"view-a", "view-b"} {
		tag := tag
		unsubs = append(unsubs, set.add(func(int) { fired[tag]++ }))
	}
	require.Equal(t, 2, set.size())

	set.dispatch(1)
	assert.Equal(t, 1, fired["view-a"])
	assert.Equal(t, 1, fired["view-b"])

	// Each handle removes only its own subscriber.
	unsubs[1]()
	set.dispatch(2)
	assert.Equal(t, 2, fired["view-a"])
	assert.Equal(t, 1, fired["view-b"])
}

func TestListenerSet_UnsubscribeDuringDispatch(t *testing.T) {
	var set listenerSet[int]
	var log []string
	var unsubOther func()

	set.add(func(int) {
		log = append(log, "a")
		unsubOther()
	})
	unsubOther = set.add(func(int) { log = append(log, "b") })

	// The in-flight delivery iterates a copy: b still sees the current
	// event, but nothing after it.
	set.dispatch(1)
	assert.Equal(t, []string{"a", "b"}, log)

	set.dispatch(2)
	assert.Equal(t, []string{"a", "b", "a"}, log)
}

func TestListenerSet_SelfUnsubscribeDoesNotPanic(t *testing.T) {
	var set listenerSet[int]
	fired := 0
	var unsub func()
	unsub = set.add(func(int) {
		fired++
		unsub()
	})

	require.NotPanics(t, func() {
		set.dispatch(1)
		set.dispatch(2)
	})
	assert.Equal(t, 1, fired)
	assert.Equal(t, 0, set.size())
}

func TestListenerSet_UnsubscribeIsIdempotent(t *testing.T) {
	var set listenerSet[int]
	kept := 0
	unsub := set.add(func(int) {})
	set.add(func(int) { kept++ })

	unsub()
	unsub()

	set.dispatch(1)
	assert.Equal(t, 1, kept)
	assert.Equal(t, 1, set.size())
}

func TestListenerSet_Clear(t *testing.T) {
	var set listenerSet[int]
	set.add(func(int) { t.Fatal("must not fire after clear") })
	set.clear()
	set.dispatch(1)
	assert.Equal(t, 0, set.size())
}
