package domain

import (
	"encoding/xml"
	"reflect"
)

// Drone is a single sighting inside a feed snapshot. Only the serial and the
// position are used for infringement detection; the rest is carried through.
type Drone struct {
	SerialNumber string  `xml:"serialNumber"`
	Model        string  `xml:"model"`
	Manufacturer string  `xml:"manufacturer"`
	MAC          string  `xml:"mac"`
	IPv4         string  `xml:"ipv4"`
	IPv6         string  `xml:"ipv6"`
	Firmware     string  `xml:"firmware"`
	PositionY    float64 `xml:"positionY"`
	PositionX    float64 `xml:"positionX"`
	Altitude     float64 `xml:"altitude"`
}

// SensorInfo describes the device that produced a snapshot.
type SensorInfo struct {
	DeviceID         string `xml:"deviceId,attr"`
	ListenRange      int    `xml:"listenRange"`
	DeviceStarted    string `xml:"deviceStarted"`
	UptimeSeconds    int    `xml:"uptimeSeconds"`
	UpdateIntervalMs int    `xml:"updateIntervalMs"`
}

// Capture is the ordered list of drones seen at SnapshotTimestamp.
type Capture struct {
	SnapshotTimestamp string  `xml:"snapshotTimestamp,attr"`
	Drones            []Drone `xml:"drone"`
}

// DronesDocument is one snapshot of the drone feed. It is treated as immutable
// once captured.
type DronesDocument struct {
	XMLName           xml.Name   `xml:"report"`
	DeviceInformation SensorInfo `xml:"deviceInformation"`
	Capture           Capture    `xml:"capture"`
}

// Equal reports whether two snapshots carry the same sensor metadata and the
// same drones in the same order.
func (d *DronesDocument) Equal(other *DronesDocument) bool {
	if d == nil || other == nil {
		return d == other
	}
	return d.DeviceInformation == other.DeviceInformation &&
		d.Capture.SnapshotTimestamp == other.Capture.SnapshotTimestamp &&
		reflect.DeepEqual(normalize(d.Capture.Drones), normalize(other.Capture.Drones))
}

// normalize treats nil and empty drone lists as the same capture.
func normalize(drones []Drone) []Drone {
	if len(drones) == 0 {
		return nil
	}
	return drones
}
