// Package commands holds the shell commands issued to ASUS-WRT routers.
// The strings are kept exactly as the stock and Merlin firmware shells expect
// them; callers format placeholders with the helpers below.
package commands

import (
	"fmt"
	"strings"

	"github.com/rileyhilliard/asuswrt/internal/util"
)

// PathExport is prepended to every command so busybox applets in /sbin and
// /usr/sbin resolve over non-login sessions.
const PathExport = "PATH=$PATH:/bin:/usr/sbin:/sbin"

// Static commands.
const (
	NetDev     = "cat /proc/net/dev"
	MemInfo    = "cat /proc/meminfo"
	LoadAvg    = "cat /proc/loadavg"
	ClientList = "cat /tmp/clientlist.json"
	NVRAM      = "nvram show"
	IPNeigh    = "ip neigh"
	ARP        = "arp -n"
	Hosts      = "cat /etc/hosts"

	// WL lists associated wireless clients on every radio and virtual
	// interface, using wlanconfig on Qualcomm builds and wl elsewhere.
	WL = "for dev in `nvram get wl1_vifs && nvram get wl0_vifs && " +
		"nvram get wl_ifnames`; do " +
		"if type wlanconfig > /dev/null; then " +
		"wlanconfig $dev list | awk 'FNR > 1 {print substr($1, 0, 18)}';" +
		" else wl -i $dev assoclist; fi; done"
)

// Defaults for router settings.
const (
	DefaultDnsmasqDir    = "/var/lib/misc"
	DefaultWANInterface  = "eth0"
	DefaultVLANInterface = "vlan1"
)

// VPNCount is the number of VPN client slots the firmware exposes.
const VPNCount = 5

// WithPath returns command prefixed with PathExport, the form sent over the wire.
func WithPath(command string) string {
	return PathExport + " && " + command
}

// PidOf returns the pidof probe for a process name. The name is quoted
// when it isn't a plain word.
func PidOf(name string) string {
	return "pidof " + util.ShellQuote(name)
}

// Leases returns the command that prints the dnsmasq lease file in dir.
func Leases(dir string) string {
	return "cat " + util.ShellQuote(strings.TrimSuffix(dir, "/")+"/dnsmasq.leases")
}

// RxBytes returns the sysfs receive counter command for iface.
func RxBytes(iface string) string {
	return "cat " + util.ShellQuote("/sys/class/net/"+iface+"/statistics/rx_bytes")
}

// TxBytes returns the sysfs transmit counter command for iface.
func TxBytes(iface string) string {
	return "cat " + util.ShellQuote("/sys/class/net/"+iface+"/statistics/tx_bytes")
}

// AddHost appends "ip hostname" to /etc/hosts unless already present and
// makes dnsmasq reload it.
func AddHost(ip, hostname string) string {
	return fmt.Sprintf(
		`cat /etc/hosts | grep -q "%[1]s %[2]s" || (echo "%[1]s %[2]s" >> /etc/hosts && kill -HUP `+"`cat /var/run/dnsmasq.pid`"+`)`,
		ip, hostname,
	)
}

// VPNStart returns the service command that starts VPN client id.
func VPNStart(id int) string {
	return fmt.Sprintf("service start_vpnclient%d", id)
}

// VPNStop returns the service command that stops VPN client id.
func VPNStop(id int) string {
	return fmt.Sprintf("service stop_vpnclient%d", id)
}

// VPNProcess is the process name of VPN client id as seen by pidof.
func VPNProcess(id int) string {
	return fmt.Sprintf("vpnclient%d", id)
}

// VPNStateKey is the nvram key holding the persisted state of VPN client id.
func VPNStateKey(id int) string {
	return fmt.Sprintf("vpn_client%d_state", id)
}
