package bytecode

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCmdMapRoundTrip(t *testing.T) {
	locs := []CmdLocation{
		{CodeStart: 0, CodeLen: 3, SrcStart: 0, SrcLen: 10},
		{CodeStart: 3, CodeLen: 300, SrcStart: 12, SrcLen: 400},
		{CodeStart: 303, CodeLen: 1, SrcStart: -5, SrcLen: 0},
	}
	enc := EncodeCmdMap(locs)
	got, err := DecodeCmdMap(enc)
	require.NoError(t, err)
	require.Equal(t, locs, got)
}

func TestCmdMapEmpty(t *testing.T) {
	enc := EncodeCmdMap(nil)
	got, err := DecodeCmdMap(enc)
	require.NoError(t, err)
	require.Empty(t, got)
}

func TestCmdMapMonotoneInvariant(t *testing.T) {
	locs := []CmdLocation{
		{CodeStart: 0, CodeLen: 2},
		{CodeStart: 2, CodeLen: 2},
		{CodeStart: 4, CodeLen: 2},
	}
	for i := 1; i < len(locs); i++ {
		require.Greater(t, locs[i].CodeStart, locs[i-1].CodeStart)
	}
}

func TestForeachInfoDup(t *testing.T) {
	fi := &ForeachInfo{
		NumLists: 1,
		VarLists: []ForeachVarList{{NumVars: 2, VarIndexes: []int{1, 2}}},
	}
	dup := fi.Dup().(*ForeachInfo)
	dup.VarLists[0].VarIndexes[0] = 99
	require.Equal(t, 1, fi.VarLists[0].VarIndexes[0])
}

func TestJumptableInfoDup(t *testing.T) {
	j := &JumptableInfo{Hash: map[string]int{"a": 1}}
	dup := j.Dup().(*JumptableInfo)
	dup.Hash["a"] = 2
	require.Equal(t, 1, j.Hash["a"])
}
