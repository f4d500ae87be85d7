package parsers

// Captured router output used across the parser tests.
var (
	wlOutput = []string{
		"assoclist 01:02:03:04:06:08\r",
		"assoclist 08:09:10:11:12:14\r",
		"assoclist 08:09:10:11:12:15\r",
		"assoclist AB:CD:DE:AB:CD:EF\r",
	}

	arpOutput = []string{
		"? (123.123.123.125) at 01:02:03:04:06:08 [ether]  on eth0\r",
		"? (123.123.123.126) at 08:09:10:11:12:14 [ether]  on br0\r",
		"? (123.123.123.128) at AB:CD:DE:AB:CD:EF [ether]  on br0\r",
		"? (123.123.123.127) at <incomplete>  on br0\r",
		"? (172.16.10.2) at 00:25:90:12:2D:90 [ether]  on br0\r",
		"? (169.254.0.2) at 0a:0b:0c:0d:0e:0f [ether]  on eth.ai-10",
	}

	neighOutput = []string{
		"123.123.123.125 dev eth0 lladdr 01:02:03:04:06:08 REACHABLE\r",
		"123.123.123.126 dev br0 lladdr 08:09:10:11:12:14 REACHABLE\r",
		"123.123.123.128 dev br0 lladdr ab:cd:de:ab:cd:ef REACHABLE\r",
		"123.123.123.127 dev br0  FAILED\r",
		"123.123.123.129 dev br0 lladdr 08:09:15:15:15:15 DELAY\r",
		"fe80::feff:a6ff:feff:12ff dev br0 lladdr fc:ff:a6:ff:12:ff STALE\r",
	}

	leasesOutput = []string{
		"51910 01:02:03:04:06:08 123.123.123.125 TV 01:02:03:04:06:08\r",
		"79986 01:02:03:04:06:10 123.123.123.127 android 01:02:03:04:06:15\r",
		"23523 08:09:10:11:12:14 123.123.123.126 * 08:09:10:11:12:14\r",
		"duid 00:01:00:01:2a:3b:4c:5d:6e:7f:80:91:a2:b3",
	}

	clientListOutput = `{"A2:2A:54:EC:20:3F":{"2G":{"01:02:03:04:06:08":{"ip":"123.123.123.125","rssi":"-83"}},` +
		`"5G":{"08:09:10:11:12:14":{"ip":"123.123.123.126","rssi": "-68"}},` +
		`"wired_mac":{"08:09:15:15:15:15":{"ip":"123.123.123.129"}}}}`

	netDevOutput = []string{
		"Inter-|   Receive                                                |  Transmit",
		" face |bytes    packets errs drop fifo frame compressed multicast|bytes    packets errs drop fifo colls carrier compressed",
		"    lo: 129406077  639166    0    0    0     0          0         0 129406077  639166    0    0    0     0       0          0",
		"  eth0: 1376394855 180111514    0    0    0     0          0         0 896208608 161258260    0    0    0     0       0          0",
		"  eth1: 240050447 1451957    0    0    0     0          0     47377 2112087504 43036729    0 26277918    0     0       0          0",
		" vlan1: 35966691832 80394316    0    0    0     0          0     91875 29563557562 53006688    0    0    0     0       0          0",
		"ds0.1:       0       0    0    0    0     0          0         0 102404809  805208    0    0    0     0       0          0",
	}

	nvramOutput = []string{
		"model=RT-AC88U",
		"dhcp_start=192.168.1.2",
		"dhcp_end=192.168.1.254",
		"dhcp_dns1_x=",
		"buildinfo=Mon Jan 01 00:00:00 UTC 2020 root@17e",
		"wl0.1_ssid=Guest Network",
		"wl0_1_ssid=not the guest key",
		"size: 61472 bytes (69600 left)",
	}

	hostsOutput = []string{
		"127.0.0.1 localhost.localdomain localhost",
		"192.168.1.1 RT-AC88U-2780. RT-AC88U-2780",
		"# comment line",
		"",
		"192.168.1.20 nas",
		"192.168.1.20 nas backup # trailing comment",
	}
)
