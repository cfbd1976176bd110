package services

import (
	"fmt"
	"runtime"
	"runtime/debug"
	"time"

	"github.com/dmitrijs2005/adminauth/internal/common"
)

// Device identifies the installation to the gateway on login and OTP
// verification.
type Device struct {
	UniqueID string
	Model    string
}

// newDevice builds a fresh device id for one request.
func newDevice(now time.Time, model string) Device {
	return Device{
		UniqueID: fmt.Sprintf("device-%d-%d", now.UnixMilli(), common.RandIntn(10000)),
		Model:    model,
	}
}

// DefaultDeviceModel is the user-agent style label sent as devicemodel.
func DefaultDeviceModel() string {
	version := "dev"
	if bi, ok := debug.ReadBuildInfo(); ok && bi.Main.Version != "" && bi.Main.Version != "(devel)" {
		version = bi.Main.Version
	}
	return fmt.Sprintf("adminauth/%s (%s/%s)", version, runtime.GOOS, runtime.GOARCH)
}
