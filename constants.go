package profiling

import "github.com/ARM-software/armnn-sub019/internal/constants"

// Re-exported tunables for callers that want the defaults without
// importing the internal package directly.
const (
	DefaultBufferCount           = constants.DefaultBufferCount
	DefaultBufferCapacity        = constants.DefaultBufferCapacity
	MaxCounterUID                = constants.MaxCounterUID
	DefaultCapturePeriod         = constants.DefaultCapturePeriod
	DefaultActivationWaitTimeout = constants.DefaultActivationWaitTimeout
	DefaultSendWaitTimeout       = constants.DefaultSendWaitTimeout
)
