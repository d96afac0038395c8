package core

import "sync"

type EventContext struct {
	Data struct {
		U64 [2]uint64
		F64 [2]float64
		U32 [4]uint32
		F32 [4]float32
		U16 [8]uint16
	}
}

// System internal event codes. Application should use codes beyond 255.
type SystemEventCode int

const (
	// Shuts the application down on the next frame.
	EVENT_CODE_APPLICATION_QUIT SystemEventCode = 0x01

	// Keyboard key pressed.
	/* Context usage:
	 * u16 key_code = data.data.u16[0];
	 */
	EVENT_CODE_KEY_PRESSED SystemEventCode = 0x02

	// Keyboard key released.
	/* Context usage:
	 * u16 key_code = data.data.u16[0];
	 */
	EVENT_CODE_KEY_RELEASED SystemEventCode = 0x03

	// Resized/resolution changed from the OS.
	/* Context usage:
	 * u16 width = data.data.u16[0];
	 * u16 height = data.data.u16[1];
	 */
	EVENT_CODE_RESIZED SystemEventCode = 0x08

	MAX_EVENT_CODE SystemEventCode = 0xFF
)

type EventHandler func(code SystemEventCode, context EventContext)

type eventSystemState struct {
	registered map[SystemEventCode][]EventHandler
	mutex      sync.RWMutex
}

var onceEvents sync.Once
var eventsState *eventSystemState = nil

func EventSystemInitialize() bool {
	onceEvents.Do(func() {
		eventsState = &eventSystemState{
			registered: make(map[SystemEventCode][]EventHandler),
		}
	})
	return eventsState != nil
}

func EventRegister(code SystemEventCode, handler EventHandler) {
	eventsState.mutex.Lock()
	defer eventsState.mutex.Unlock()

	eventsState.registered[code] = append(eventsState.registered[code], handler)
}

// EventFire dispatches the event to every registered handler, in
// registration order.
func EventFire(code SystemEventCode, context EventContext) {
	eventsState.mutex.RLock()
	handlers := eventsState.registered[code]
	eventsState.mutex.RUnlock()

	for _, h := range handlers {
		h(code, context)
	}
}
