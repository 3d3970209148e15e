package host

import (
	"github.com/relabs-tech/deviceinfo/internal/device"
	"github.com/relabs-tech/deviceinfo/internal/orientation"
)

// Static is a host without an orientation sensor, such as a desktop.
type Static struct {
	class orientation.DeviceClass
}

// NewStatic returns a sensorless host of the given class.
func NewStatic(class orientation.DeviceClass) *Static {
	return &Static{class: class}
}

// Class and HasOrientationSensor describe the host; the manager pins its
// state to notApplicable.
func (s *Static) Class() orientation.DeviceClass { return s.class }
func (s *Static) HasOrientationSensor() bool     { return false }

// Current has nothing to report.
func (s *Static) Current() (orientation.RawInterface, orientation.RawDevice, bool) {
	return orientation.RawInterfaceUnknown, orientation.RawDeviceUnknown, false
}

// BeginNotifications and EndNotifications are no-ops.
func (s *Static) BeginNotifications() error { return nil }
func (s *Static) EndNotifications()         {}

// Subscribe returns a subscription that never delivers.
func (s *Static) Subscribe(func(device.Event)) (device.Subscription, error) {
	return device.SubscriptionFunc(nil), nil
}
