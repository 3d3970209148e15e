// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"fmt"
	"log"

	"periph.io/x/conn/v3/gpio/gpioreg"
	"periph.io/x/devices/v3/mpu9250"
	"periph.io/x/host/v3"
)

type imuSource struct {
	name string
	imu  *mpu9250.MPU9250
}

// NewIMUSource initializes an MPU9250 over SPI and returns a GravitySource
// that reads the raw accelerometer.
func NewIMUSource(name, spiDev, csPin string) (GravitySource, error) {
	if _, err := host.Init(); err != nil {
		return nil, fmt.Errorf("%s IMU: periph host init: %w", name, err)
	}

	cs := gpioreg.ByName(csPin)
	if cs == nil {
		return nil, fmt.Errorf("%s IMU: CS pin %q not found", name, csPin)
	}

	tr, err := mpu9250.NewSpiTransport(spiDev, cs)
	if err != nil {
		return nil, fmt.Errorf("%s IMU: SPI transport (%s): %w", name, spiDev, err)
	}

	imu, err := mpu9250.New(tr)
	if err != nil {
		return nil, fmt.Errorf("%s IMU: device creation: %w", name, err)
	}

	if err := imu.Init(); err != nil {
		return nil, fmt.Errorf("%s IMU: initialization: %w", name, err)
	}

	// Calibration only removes bias; orientation works without it.
	if err := imu.Calibrate(); err != nil {
		log.Printf("Warning: %s IMU calibration failed: %v", name, err)
	} else {
		log.Printf("%s IMU calibration complete", name)
	}

	return &imuSource{name: name, imu: imu}, nil
}

// Next reads one accelerometer sample. Only ratios between the axes matter
// for orientation, so the raw register values are used unscaled.
func (s *imuSource) Next() (Gravity, error) {
	ax, err := s.imu.GetAccelerationX()
	if err != nil {
		return Gravity{}, fmt.Errorf("%s IMU acc X: %w", s.name, err)
	}
	ay, err := s.imu.GetAccelerationY()
	if err != nil {
		return Gravity{}, fmt.Errorf("%s IMU acc Y: %w", s.name, err)
	}
	az, err := s.imu.GetAccelerationZ()
	if err != nil {
		return Gravity{}, fmt.Errorf("%s IMU acc Z: %w", s.name, err)
	}

	return Gravity{X: float64(ax), Y: float64(ay), Z: float64(az)}, nil
}
