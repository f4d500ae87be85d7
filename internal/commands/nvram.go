package commands

import (
	"sort"
	"strings"
)

// VPNClientList is the nvram key listing configured VPN clients.
const VPNClientList = "vpnc_clientlist"

// NVRAMGroups maps a group name to the nvram keys it reads.
var NVRAMGroups = map[string][]string{
	"DHCP": {
		"dhcp_dns1_x",
		"dhcp_dns2_x",
		"dhcp_enable_x",
		"dhcp_start",
		"dhcp_end",
		"dhcp_lease",
	},
	"MODEL": {
		"model",
	},
	"QOS": {
		"qos_ack",
		"qos_atm",
		"qos_burst0",
		"qos_burst1",
		"qos_default",
		"qos_enable",
		"qos_fin",
		"qos_ibw",
		"qos_ibw1",
		"qos_icmp",
		"qos_irates",
		"qos_method",
		"qos_obw",
		"qos_obw1",
		"qos_orules",
		"qos_overhead",
		"qos_reset",
		"qos_rst",
		"qos_sched",
		"qos_sticky",
		"qos_syn",
		"qos_type",
	},
	"REBOOT": {
		"reboot_schedule",
		"reboot_schedule_enable",
		"reboot_time",
	},
	"WLAN": {
		"wan_dns",
		"wan_domain",
		"wan_enable",
		"wan_expires",
		"wan_gateway",
		"wan_ipaddr",
		"wan_lease",
		"wan_mtu",
		"wan_realip_ip",
		"wan_realip_state",
	},
	"GUEST_2G_1": {
		"wl0.1_bss_enabled",
		"wl0.1_lanaccess",
		"wl0.1_ssid",
		"wl0.1_wpa_psk",
	},
	"GUEST_2G_2": {
		"wl0.2_bss_enabled",
		"wl0.2_lanaccess",
		"wl0.2_ssid",
		"wl0.2_wpa_psk",
	},
	"GUEST_2G_3": {
		"wl0.3_bss_enabled",
		"wl0.3_lanaccess",
		"wl0.3_ssid",
		"wl0.3_wpa_psk",
	},
	"WIFI_2G": {
		"wl0_bss_enabled",
		"wl0_chanspec",
		"wl0_ssid",
		"wl0_wpa_psk",
	},
	"GUEST_5G_1": {
		"wl1.1_bss_enabled",
		"wl1.1_lanaccess",
		"wl1.1_ssid",
		"wl1.1_wpa_psk",
	},
	"GUEST_5G_2": {
		"wl1.2_bss_enabled",
		"wl1.2_lanaccess",
		"wl1.2_ssid",
		"wl1.2_wpa_psk",
	},
	"GUEST_5G_3": {
		"wl1.3_bss_enabled",
		"wl1.3_lanaccess",
		"wl1.3_ssid",
		"wl1.3_wpa_psk",
	},
	"WIFI_5G": {
		"wl1_bss_enabled",
		"wl1_chanspec",
		"wl1_ssid",
		"wl1_wpa_psk",
	},
	"FIRMWARE": {
		"buildinfo",
		"buildno",
		"buildno_org",
		"firmver",
		"firmware_check",
		"firmware_check_enable",
		"firmware_path",
		"firmware_server",
		"webs_last_info",
		"webs_notif_flag",
		"webs_state_REQinfo",
		"webs_state_error",
		"webs_state_flag",
		"webs_state_odm",
		"webs_state_update",
		"webs_state_upgrade",
		"webs_state_url",
	},
	"LABEL_MAC": {
		"label_mac",
	},
	"VPN": vpnKeys(),
}

func vpnKeys() []string {
	keys := []string{VPNClientList}
	for id := 1; id <= VPNCount; id++ {
		keys = append(keys, VPNStateKey(id))
	}
	return keys
}

// NVRAMGroup returns the keys of a group, matched case-insensitively.
func NVRAMGroup(name string) ([]string, bool) {
	keys, ok := NVRAMGroups[strings.ToUpper(name)]
	return keys, ok
}

// NVRAMGroupNames returns the sorted group names.
func NVRAMGroupNames() []string {
	names := make([]string, 0, len(NVRAMGroups))
	for name := range NVRAMGroups {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}
