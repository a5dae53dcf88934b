package dc

import (
	"net"
	"strconv"
)

// IDs are small positive integers; anything outside this range is not an
// addressable data center.
const (
	MinID = 1
	MaxID = 1000
)

// Option is one addressable endpoint of a data center.
type Option struct {
	ID   int
	IP   string
	Port int
	Test bool
}

// Addr returns the host:port dial target.
func (o Option) Addr() string {
	return net.JoinHostPort(o.IP, strconv.Itoa(o.Port))
}

var production = []Option{
	{ID: 1, IP: "149.154.175.50", Port: 443},
	{ID: 2, IP: "149.154.167.51", Port: 443},
	{ID: 3, IP: "149.154.175.100", Port: 443},
	{ID: 4, IP: "149.154.167.91", Port: 443},
	{ID: 5, IP: "149.154.171.5", Port: 443},
}

var test = []Option{
	{ID: 1, IP: "149.154.175.10", Port: 443, Test: true},
	{ID: 2, IP: "149.154.167.40", Port: 443, Test: true},
	{ID: 3, IP: "149.154.175.117", Port: 443, Test: true},
}

// Production lists the well-known production endpoints.
func Production() []Option {
	return append([]Option(nil), production...)
}

// Test lists the well-known test endpoints.
func Test() []Option {
	return append([]Option(nil), test...)
}

// List returns the endpoint table for the chosen flavor.
func List(testFlavor bool) []Option {
	if testFlavor {
		return Test()
	}
	return Production()
}

// Find returns the endpoint for id in the chosen flavor.
func Find(id int, testFlavor bool) (Option, bool) {
	for _, o := range List(testFlavor) {
		if o.ID == id {
			return o, true
		}
	}
	return Option{}, false
}

// Valid reports whether id is in the addressable range.
func Valid(id int) bool { return id >= MinID && id <= MaxID }

// WireID returns the dc value carried inside the encrypted inner data.
// Test-flavor data centers are offset by 10000.
func WireID(o Option) int32 {
	if o.Test {
		return int32(o.ID + 10000)
	}
	return int32(o.ID)
}
