// Package host holds the platforms a device.Manager can run on: a desktop
// without sensor, a mock sweep, a local MPU9250, an MQTT feed and a serial
// sensor hub.
package host

import (
	"fmt"
	"time"

	"github.com/relabs-tech/deviceinfo/internal/config"
	"github.com/relabs-tech/deviceinfo/internal/device"
)

// New builds the host selected by cfg.HostKind.
func New(cfg *config.Config) (device.Host, error) {
	switch cfg.HostKind {
	case config.HostStatic:
		return NewStatic(cfg.DeviceClass), nil
	case config.HostMock:
		return NewMock(cfg.DeviceClass, time.Duration(cfg.MockInterval)*time.Millisecond), nil
	case config.HostIMU:
		p, err := NewIMU(cfg.DeviceClass, cfg.IMUSPIDevice, cfg.IMUCSPin,
			time.Duration(cfg.IMUSampleInterval)*time.Millisecond, cfg.IMUFlatRatio)
		if err != nil {
			return nil, err
		}
		return p, nil
	case config.HostMQTT:
		return NewMQTT(cfg.DeviceClass, cfg.MQTTBroker, cfg.MQTTClientID+"-host", cfg.TopicHostEvents), nil
	case config.HostSerial:
		return NewSerial(cfg.DeviceClass, cfg.SerialPort, cfg.SerialBaudRate), nil
	default:
		return nil, fmt.Errorf("host: unknown host kind %q", cfg.HostKind)
	}
}
