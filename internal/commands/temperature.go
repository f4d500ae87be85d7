package commands

// Sensor names reported by the temperature accessor.
const (
	Sensor24GHz = "2.4GHz"
	Sensor5GHz  = "5.0GHz"
	SensorCPU   = "CPU"
)

// TempCommand is one way of reading a sensor. The first output line is split
// on single spaces and the field at Index is converted with Convert.
type TempCommand struct {
	Command string
	Index   int
	Convert func(float64) float64
}

func radioTemp(v float64) float64 { return v/2 + 20 }

// Sensors lists sensor names in reporting order.
var Sensors = []string{Sensor24GHz, Sensor5GHz, SensorCPU}

// TempCommands maps each sensor to its candidate probes, tried in order.
// Radios move between eth1/eth2 and eth5/eth6 depending on the model.
var TempCommands = map[string][]TempCommand{
	Sensor24GHz: {
		{Command: "wl -i eth1 phy_tempsense", Index: 0, Convert: radioTemp},
		{Command: "wl -i eth5 phy_tempsense", Index: 0, Convert: radioTemp},
	},
	Sensor5GHz: {
		{Command: "wl -i eth2 phy_tempsense", Index: 0, Convert: radioTemp},
		{Command: "wl -i eth6 phy_tempsense", Index: 0, Convert: radioTemp},
	},
	SensorCPU: {
		{Command: "head -c20 /proc/dmu/temperature", Index: 2, Convert: func(v float64) float64 { return v }},
		{Command: "head -c5 /sys/class/thermal/thermal_zone0/temp", Index: 0, Convert: func(v float64) float64 { return v / 1000 }},
	},
}
