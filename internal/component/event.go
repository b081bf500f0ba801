package component

import "omxcore/internal/buffer"

// Event enumerates the callback event set the component's EventHandler
// delivers to the application (spec §6 "Event set").
type Event uint8

const (
	EventCmdComplete Event = iota
	EventError
	EventMark
	EventPortSettingsChanged
	EventBufferFlag
	EventResourcesAcquired
	EventComponentResumed
	EventDynamicResourcesAvailable
	EventPortFormatDetected
	EventIndexSettingChanged
	EventPortNeedsDisable
	EventPortNeedsFlush
)

func (e Event) String() string {
	switch e {
	case EventCmdComplete:
		return "CmdComplete"
	case EventError:
		return "Error"
	case EventMark:
		return "Mark"
	case EventPortSettingsChanged:
		return "PortSettingsChanged"
	case EventBufferFlag:
		return "BufferFlag"
	case EventResourcesAcquired:
		return "ResourcesAcquired"
	case EventComponentResumed:
		return "ComponentResumed"
	case EventDynamicResourcesAvailable:
		return "DynamicResourcesAvailable"
	case EventPortFormatDetected:
		return "PortFormatDetected"
	case EventIndexSettingChanged:
		return "IndexSettingChanged"
	case EventPortNeedsDisable:
		return "PortNeedsDisable"
	case EventPortNeedsFlush:
		return "PortNeedsFlush"
	default:
		return "Unknown"
	}
}

// Callbacks is the callback vtable a component invokes on the application
// (spec §6). All three run on the component's own event-loop goroutine —
// callers must not block in them.
type Callbacks struct {
	EventHandler    func(appData any, event Event, data1, data2 int32, eventData any)
	EmptyBufferDone func(appData any, h *buffer.Header)
	FillBufferDone  func(appData any, h *buffer.Header)
}
