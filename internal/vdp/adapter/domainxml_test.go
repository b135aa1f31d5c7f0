package adapter

import (
	"encoding/xml"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildDomainXML(t *testing.T) {
	t.Parallel()

	t.Run("full spec marshals with seed iso and mac", func(t *testing.T) {
		spec := &GuestSpec{
			Name:        "vd-123",
			UUID:        "8f7a2e4c-0000-0000-0000-000000000001",
			VCPUs:       2,
			MemoryMB:    2048,
			DiskPath:    "/var/lib/libvirt/images/vd-123.qcow2",
			SeedISOPath: "/var/lib/vdp/vd-123-seed.iso",
			MAC:         "52:54:00:ab:cd:ef",
			NetworkName: "default",
			ConsolePort: 5901,
		}

		dom := buildDomainXML(spec)
		out, err := xml.MarshalIndent(dom, "", "  ")
		require.NoError(t, err)

		s := string(out)
		assert.Contains(t, s, "<name>vd-123</name>")
		assert.Contains(t, s, `unit="MiB">2048`)
		assert.Contains(t, s, `device="cdrom"`)
		assert.Contains(t, s, `address="52:54:00:ab:cd:ef"`)
		assert.Contains(t, s, `network="default"`)
		assert.Contains(t, s, `port="5901"`)

		// 能被重新解析
		var parsed domainXML
		require.NoError(t, xml.Unmarshal(out, &parsed))
		assert.Equal(t, "vd-123", parsed.Name)
		assert.Len(t, parsed.Devices.Disks, 2)
	})

	t.Run("no seed iso omits cdrom", func(t *testing.T) {
		spec := &GuestSpec{
			Name:        "vd-456",
			VCPUs:       1,
			MemoryMB:    1024,
			DiskPath:    "/var/lib/libvirt/images/vd-456.qcow2",
			NetworkName: "default",
			ConsolePort: 5902,
		}

		dom := buildDomainXML(spec)
		assert.Len(t, dom.Devices.Disks, 1)
		assert.Nil(t, dom.Devices.Interfaces[0].MAC)
	})
}
