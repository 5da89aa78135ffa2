//go:build unix

package netconn_test

import (
	"testing"

	psutil "github.com/reugn/go-psutil"
	"github.com/reugn/go-psutil/internal/assert"
	"github.com/reugn/go-psutil/netconn"
	"golang.org/x/sys/unix"
)

var (
	tcp4 = netconn.Record{FD: 3, Family: unix.AF_INET, Type: unix.SOCK_STREAM, Pid: 10}
	tcp6 = netconn.Record{FD: 4, Family: unix.AF_INET6, Type: unix.SOCK_STREAM, Pid: 10}
	udp4 = netconn.Record{FD: 5, Family: unix.AF_INET, Type: unix.SOCK_DGRAM, Pid: 11}
	udp6 = netconn.Record{FD: 6, Family: unix.AF_INET6, Type: unix.SOCK_DGRAM, Pid: 11}
	sock = netconn.Record{FD: 7, Family: unix.AF_UNIX, Type: unix.SOCK_SEQPACKET, Pid: 12}

	records = []netconn.Record{tcp4, tcp6, udp4, udp6, sock}
)

func TestParseKind(t *testing.T) {
	for _, k := range netconn.Kinds() {
		got, err := netconn.ParseKind(string(k))
		assert.NoError(t, err)
		assert.Equal(t, k, got)
	}

	for _, s := range []string{"", "TCP", "sctp", "inet5"} {
		_, err := netconn.ParseKind(s)
		assert.ErrorIs(t, err, psutil.InvalidArgument)
	}
}

func TestFilter(t *testing.T) {
	tests := []struct {
		kind netconn.Kind
		want []netconn.Record
	}{
		{netconn.KindAll, records},
		{netconn.KindInet, []netconn.Record{tcp4, tcp6, udp4, udp6}},
		{netconn.KindInet4, []netconn.Record{tcp4, udp4}},
		{netconn.KindInet6, []netconn.Record{tcp6, udp6}},
		{netconn.KindTCP, []netconn.Record{tcp4, tcp6}},
		{netconn.KindTCP4, []netconn.Record{tcp4}},
		{netconn.KindTCP6, []netconn.Record{tcp6}},
		{netconn.KindUDP, []netconn.Record{udp4, udp6}},
		{netconn.KindUDP4, []netconn.Record{udp4}},
		{netconn.KindUDP6, []netconn.Record{udp6}},
		{netconn.KindUnix, []netconn.Record{sock}},
	}
	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.want, netconn.Filter(records, tt.kind))
		})
	}
}

func TestFilter_UnknownKind(t *testing.T) {
	assert.Equal(t, []netconn.Record{}, netconn.Filter(records, netconn.Kind("bogus")))
}
