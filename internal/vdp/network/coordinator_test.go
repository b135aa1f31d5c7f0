package network

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/jimyag/vdp/internal/vdp/adapter"
)

func testCoordinator(firewall adapter.HostFirewall) *Coordinator {
	return NewCoordinator(firewall, PortRange{
		SSHStart:     2200,
		SSHEnd:       2299,
		ConsoleStart: 5900,
		ConsoleEnd:   5999,
	})
}

func TestCoordinatorPorts(t *testing.T) {
	t.Parallel()

	t.Run("pools are per node", func(t *testing.T) {
		c := testCoordinator(new(adapter.MockFirewall))

		sshA, consoleA, err := c.AllocatePorts("node-a")
		require.NoError(t, err)
		assert.Equal(t, 2200, sshA)
		assert.Equal(t, 5900, consoleA)

		// 另一个节点的池独立，分到同样的起始端口
		sshB, consoleB, err := c.AllocatePorts("node-b")
		require.NoError(t, err)
		assert.Equal(t, 2200, sshB)
		assert.Equal(t, 5900, consoleB)
	})

	t.Run("release returns ports to pool", func(t *testing.T) {
		c := testCoordinator(new(adapter.MockFirewall))

		ssh, console, err := c.AllocatePorts("node-a")
		require.NoError(t, err)

		c.ReleasePorts("node-a", ssh, console)

		ssh2, console2, err := c.AllocatePorts("node-a")
		require.NoError(t, err)
		assert.Equal(t, ssh, ssh2)
		assert.Equal(t, console, console2)
	})

	t.Run("restore keeps existing ports out of pool", func(t *testing.T) {
		c := testCoordinator(new(adapter.MockFirewall))

		c.RestorePorts("node-a", 2200, 5900)

		ssh, console, err := c.AllocatePorts("node-a")
		require.NoError(t, err)
		assert.Equal(t, 2201, ssh)
		assert.Equal(t, 5901, console)
	})

	t.Run("console allocation failure returns ssh port", func(t *testing.T) {
		c := NewCoordinator(new(adapter.MockFirewall), PortRange{
			SSHStart:     2200,
			SSHEnd:       2201,
			ConsoleStart: 5900,
			ConsoleEnd:   5900,
		})

		_, _, err := c.AllocatePorts("node-a")
		require.NoError(t, err)

		// 控制台池耗尽，SSH 端口应被归还
		_, _, err = c.AllocatePorts("node-a")
		require.Error(t, err)

		c.ReleasePorts("node-a", 2200, 5900)
		ssh, _, err := c.AllocatePorts("node-a")
		require.NoError(t, err)
		assert.Equal(t, 2200, ssh)
	})
}

func TestCoordinatorForwards(t *testing.T) {
	t.Parallel()

	t.Run("installs ssh and console rules", func(t *testing.T) {
		firewall := new(adapter.MockFirewall)
		c := testCoordinator(firewall)

		firewall.On("InstallForward", mock.Anything, &adapter.ForwardRule{
			HostPort: 2200, GuestIP: "192.168.122.10", GuestPort: GuestSSHPort, Protocol: "tcp",
		}).Return(nil)
		firewall.On("InstallForward", mock.Anything, &adapter.ForwardRule{
			HostPort: 5900, GuestIP: "192.168.122.10", GuestPort: GuestConsolePort, Protocol: "tcp",
		}).Return(nil)

		err := c.InstallForwards(context.Background(), "192.168.122.10", 2200, 5900)
		assert.NoError(t, err)
		firewall.AssertExpectations(t)
	})

	t.Run("console rule failure rolls back ssh rule", func(t *testing.T) {
		firewall := new(adapter.MockFirewall)
		c := testCoordinator(firewall)

		firewall.On("InstallForward", mock.Anything, mock.MatchedBy(func(r *adapter.ForwardRule) bool {
			return r.GuestPort == GuestSSHPort
		})).Return(nil)
		firewall.On("InstallForward", mock.Anything, mock.MatchedBy(func(r *adapter.ForwardRule) bool {
			return r.GuestPort == GuestConsolePort
		})).Return(errors.New("iptables failed"))
		firewall.On("RemoveForward", mock.Anything, mock.MatchedBy(func(r *adapter.ForwardRule) bool {
			return r.GuestPort == GuestSSHPort
		})).Return(nil)

		err := c.InstallForwards(context.Background(), "192.168.122.10", 2200, 5900)
		assert.Error(t, err)
		firewall.AssertExpectations(t)
	})
}
