package netconn

import (
	"fmt"
	"slices"

	psutil "github.com/reugn/go-psutil"
	"github.com/reugn/go-psutil/backend"
)

// Kind selects connections by address family and socket type.
type Kind string

const (
	KindInet  Kind = "inet"
	KindInet4 Kind = "inet4"
	KindInet6 Kind = "inet6"
	KindTCP   Kind = "tcp"
	KindTCP4  Kind = "tcp4"
	KindTCP6  Kind = "tcp6"
	KindUDP   Kind = "udp"
	KindUDP4  Kind = "udp4"
	KindUDP6  Kind = "udp6"
	KindUnix  Kind = "unix"
	KindAll   Kind = "all"
)

// Record is an open network endpoint.
type Record = backend.Connection

type kindSpec struct {
	families []uint32
	types    []uint32
}

var (
	inet     = []uint32{familyInet, familyInet6}
	inet4    = []uint32{familyInet}
	inet6    = []uint32{familyInet6}
	tcp      = []uint32{sockStream}
	udp      = []uint32{sockDgram}
	anyType  = []uint32{sockStream, sockDgram}
	unixFams = []uint32{familyUnix}
)

var kinds = map[Kind]kindSpec{
	KindAll:   {families: append(slices.Clone(inet), familyUnix), types: anyType},
	KindInet:  {families: inet, types: anyType},
	KindInet4: {families: inet4, types: anyType},
	KindInet6: {families: inet6, types: anyType},
	KindTCP:   {families: inet, types: tcp},
	KindTCP4:  {families: inet4, types: tcp},
	KindTCP6:  {families: inet6, types: tcp},
	KindUDP:   {families: inet, types: udp},
	KindUDP4:  {families: inet4, types: udp},
	KindUDP6:  {families: inet6, types: udp},
	KindUnix:  {families: unixFams, types: anyType},
}

// ParseKind validates s as a connection kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(s)
	if _, ok := kinds[k]; !ok {
		return "", psutil.NewError(psutil.InvalidArgument, "connections", 0,
			fmt.Errorf("invalid kind %q", s))
	}
	return k, nil
}

// Kinds returns every valid kind.
func Kinds() []Kind {
	return []Kind{KindInet, KindInet4, KindInet6, KindTCP, KindTCP4, KindTCP6,
		KindUDP, KindUDP4, KindUDP6, KindUnix, KindAll}
}

// Matches reports whether r belongs to kind k.
func (k Kind) Matches(r Record) bool {
	spec, ok := kinds[k]
	if !ok {
		return false
	}
	if !slices.Contains(spec.families, r.Family) {
		return false
	}
	// UNIX sockets of any type are reported for "unix" and "all".
	if r.Family == familyUnix {
		return true
	}
	return slices.Contains(spec.types, r.Type)
}

// Filter returns the records of conns matching k, in order.
func Filter(conns []Record, k Kind) []Record {
	out := make([]Record, 0, len(conns))
	for _, c := range conns {
		if k.Matches(c) {
			out = append(out, c)
		}
	}
	return out
}
