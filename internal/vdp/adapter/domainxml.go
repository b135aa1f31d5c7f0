package adapter

import "encoding/xml"

// domainXML libvirt 域定义
// https://libvirt.org/formatdomain.html
type domainXML struct {
	XMLName xml.Name `xml:"domain"`
	Type    string   `xml:"type,attr"`

	Name string `xml:"name"`
	UUID string `xml:"uuid,omitempty"`

	Memory        domainMemory `xml:"memory"`
	CurrentMemory domainMemory `xml:"currentMemory,omitempty"`
	VCPU          domainVCPU   `xml:"vcpu"`
	OS            domainOS     `xml:"os"`

	Features *domainFeatures `xml:"features,omitempty"`
	Clock    *domainClock    `xml:"clock,omitempty"`

	OnPoweroff string `xml:"on_poweroff,omitempty"`
	OnReboot   string `xml:"on_reboot,omitempty"`
	OnCrash    string `xml:"on_crash,omitempty"`

	Devices domainDevices `xml:"devices"`
}

type domainMemory struct {
	Unit  string `xml:"unit,attr"`
	Value uint64 `xml:",chardata"`
}

type domainVCPU struct {
	Placement string `xml:"placement,attr"`
	Value     uint64 `xml:",chardata"`
}

type domainOS struct {
	Type domainOSType `xml:"type"`
	Boot domainBoot   `xml:"boot"`
}

type domainOSType struct {
	Arch  string `xml:"arch,attr"`
	Value string `xml:",chardata"`
}

type domainBoot struct {
	Dev string `xml:"dev,attr"`
}

type domainFeatures struct {
	ACPI *struct{} `xml:"acpi,omitempty"`
	APIC *struct{} `xml:"apic,omitempty"`
}

type domainClock struct {
	Offset string `xml:"offset,attr"`
}

type domainDevices struct {
	Emulator   string            `xml:"emulator,omitempty"`
	Disks      []domainDisk      `xml:"disk"`
	Interfaces []domainInterface `xml:"interface"`
	Graphics   *domainGraphics   `xml:"graphics,omitempty"`
	Serial     *domainSerial     `xml:"serial,omitempty"`
	Console    *domainConsole    `xml:"console,omitempty"`
	MemBalloon *domainMemBalloon `xml:"memballoon,omitempty"`
	RNG        *domainRNG        `xml:"rng,omitempty"`
}

type domainDisk struct {
	Type   string           `xml:"type,attr"`
	Device string           `xml:"device,attr"`
	Driver domainDiskDriver `xml:"driver"`
	Source domainDiskSource `xml:"source"`
	Target domainDiskTarget `xml:"target"`
}

type domainDiskDriver struct {
	Name string `xml:"name,attr"`
	Type string `xml:"type,attr"`
}

type domainDiskSource struct {
	File string `xml:"file,attr,omitempty"`
}

type domainDiskTarget struct {
	Dev string `xml:"dev,attr"`
	Bus string `xml:"bus,attr"`
}

type domainInterface struct {
	Type   string                `xml:"type,attr"`
	MAC    *domainInterfaceMAC   `xml:"mac,omitempty"`
	Source domainInterfaceSource `xml:"source"`
	Model  domainInterfaceModel  `xml:"model"`
}

type domainInterfaceMAC struct {
	Address string `xml:"address,attr"`
}

type domainInterfaceSource struct {
	Network string `xml:"network,attr,omitempty"`
}

type domainInterfaceModel struct {
	Type string `xml:"type,attr"`
}

type domainGraphics struct {
	Type   string                `xml:"type,attr"`
	Port   int                   `xml:"port,attr,omitempty"`
	Listen *domainGraphicsListen `xml:"listen,omitempty"`
}

type domainGraphicsListen struct {
	Type    string `xml:"type,attr"`
	Address string `xml:"address,attr,omitempty"`
}

type domainSerial struct {
	Type   string             `xml:"type,attr"`
	Target domainSerialTarget `xml:"target"`
}

type domainSerialTarget struct {
	Port int `xml:"port,attr"`
}

type domainConsole struct {
	Type   string              `xml:"type,attr"`
	Target domainConsoleTarget `xml:"target"`
}

type domainConsoleTarget struct {
	Type string `xml:"type,attr"`
	Port int    `xml:"port,attr"`
}

type domainMemBalloon struct {
	Model string `xml:"model,attr"`
}

type domainRNG struct {
	Model   string           `xml:"model,attr"`
	Backend domainRNGBackend `xml:"backend"`
}

type domainRNGBackend struct {
	Model string `xml:"model,attr"`
	Value string `xml:",chardata"`
}

// buildDomainXML 按客户机参数构建域定义
func buildDomainXML(spec *GuestSpec) *domainXML {
	disks := []domainDisk{
		{
			Type:   "file",
			Device: "disk",
			Driver: domainDiskDriver{Name: "qemu", Type: "qcow2"},
			Source: domainDiskSource{File: spec.DiskPath},
			Target: domainDiskTarget{Dev: "vda", Bus: "virtio"},
		},
	}

	// seed ISO 挂为 CDROM，客户机首次启动时由 cloud-init 读取
	if spec.SeedISOPath != "" {
		disks = append(disks, domainDisk{
			Type:   "file",
			Device: "cdrom",
			Driver: domainDiskDriver{Name: "qemu", Type: "raw"},
			Source: domainDiskSource{File: spec.SeedISOPath},
			Target: domainDiskTarget{Dev: "hda", Bus: "ide"},
		})
	}

	var mac *domainInterfaceMAC
	if spec.MAC != "" {
		mac = &domainInterfaceMAC{Address: spec.MAC}
	}

	return &domainXML{
		Type: "kvm",
		Name: spec.Name,
		UUID: spec.UUID,
		Memory: domainMemory{
			Unit:  "MiB",
			Value: spec.MemoryMB,
		},
		CurrentMemory: domainMemory{
			Unit:  "MiB",
			Value: spec.MemoryMB,
		},
		VCPU: domainVCPU{
			Placement: "static",
			Value:     spec.VCPUs,
		},
		OS: domainOS{
			Type: domainOSType{Arch: "x86_64", Value: "hvm"},
			Boot: domainBoot{Dev: "hd"},
		},
		Features: &domainFeatures{
			ACPI: &struct{}{},
			APIC: &struct{}{},
		},
		Clock:      &domainClock{Offset: "utc"},
		OnPoweroff: "destroy",
		OnReboot:   "restart",
		OnCrash:    "destroy",
		Devices: domainDevices{
			Disks: disks,
			Interfaces: []domainInterface{
				{
					Type:   "network",
					MAC:    mac,
					Source: domainInterfaceSource{Network: spec.NetworkName},
					Model:  domainInterfaceModel{Type: "virtio"},
				},
			},
			Graphics: &domainGraphics{
				Type:   "vnc",
				Port:   spec.ConsolePort,
				Listen: &domainGraphicsListen{Type: "address", Address: "127.0.0.1"},
			},
			Serial: &domainSerial{
				Type:   "pty",
				Target: domainSerialTarget{Port: 0},
			},
			Console: &domainConsole{
				Type:   "pty",
				Target: domainConsoleTarget{Type: "serial", Port: 0},
			},
			MemBalloon: &domainMemBalloon{Model: "virtio"},
			RNG: &domainRNG{
				Model:   "virtio",
				Backend: domainRNGBackend{Model: "random", Value: "/dev/urandom"},
			},
		},
	}
}
