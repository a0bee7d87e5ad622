package file

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/gopacket/layers"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"firestige.xyz/seqgap/internal/core"
)

func TestCreateFailsOnMissingDirectory(t *testing.T) {
	_, err := Create(filepath.Join(t.TempDir(), "nope", "out.pcap"), layers.LinkTypeEthernet, 0)
	assert.Error(t, err)
}

func TestWriteBuffersUntilClose(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.pcap")
	s, err := Create(path, layers.LinkTypeLinuxSLL, 1600)
	require.NoError(t, err)

	require.NoError(t, s.Write(core.RawPacket{Data: make([]byte, 100), Timestamp: time.Now()}))
	require.NoError(t, s.Close())

	info, err := os.Stat(path)
	require.NoError(t, err)
	// 24-byte file header, 16-byte record header, 100 bytes of data
	assert.Equal(t, int64(24+16+100), info.Size())
}

func TestLinkTypeFollowsHeader(t *testing.T) {
	dir := t.TempDir()

	eth, err := Create(filepath.Join(dir, "eth.pcap"), layers.LinkTypeEthernet, 0)
	require.NoError(t, err)
	defer eth.Close()
	assert.Equal(t, core.LinkEthernet, eth.LinkType())

	sll, err := Create(filepath.Join(dir, "sll.pcap"), layers.LinkTypeLinuxSLL, 0)
	require.NoError(t, err)
	defer sll.Close()
	assert.Equal(t, core.LinkCooked, sll.LinkType())
}
