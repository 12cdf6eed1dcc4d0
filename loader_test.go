package webifc

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func mustLoad(t *testing.T, src string) *Loader {
	t.Helper()
	l := NewLoader()
	require.NoError(t, l.LoadFile([]byte(src)))
	require.True(t, l.IsOpen())
	return l
}

func TestLoadFileRejectsNilContent(t *testing.T) {
	l := NewLoader()
	require.Error(t, l.LoadFile(nil))
	require.False(t, l.IsOpen())
}

func TestEmptyInput(t *testing.T) {
	l := mustLoad(t, "")
	require.Equal(t, 0, l.NumLines())
}

func TestSimpleProjectLine(t *testing.T) {
	l := mustLoad(t, "#1=IFCPROJECT('x',$,'y');\n")
	require.Equal(t, 1, l.NumLines())

	fp := Crc32([]byte("IFCPROJECT"))
	require.Equal(t, []uint32{1}, l.ExpressIDsWithType(fp))
	require.Equal(t, fp, l.GetLineType(1))

	lineID := l.ExpressIDToLineID(1)
	l.MoveToArgument(lineID, 0)
	require.Equal(t, "x", l.GetStringArgument())

	l.MoveToArgument(lineID, 2)
	require.Equal(t, "y", l.GetStringArgument())
}

func TestNestedSetArgument(t *testing.T) {
	l := mustLoad(t, "#2=IFCREAL((1.5,-2.0,3e2));\n")
	lineID := l.ExpressIDToLineID(2)

	l.MoveToArgument(lineID, 0)
	offsets := l.GetSetArgument()
	require.Len(t, offsets, 3)

	l.MoveTo(offsets[0])
	require.InDelta(t, 1.5, l.GetDoubleArgument(), 1e-9)
	l.MoveTo(offsets[1])
	require.InDelta(t, -2.0, l.GetDoubleArgument(), 1e-9)
	l.MoveTo(offsets[2])
	require.InDelta(t, 300.0, l.GetDoubleArgument(), 1e-9)
}

func TestHeaderLinesExcludedFromTypeQueries(t *testing.T) {
	l := mustLoad(t, "ISO-10303-21;\nHEADER;\n#1=IFCPROJECT('x');\n")
	fp := Crc32([]byte("IFCPROJECT"))
	require.Equal(t, []uint32{1}, l.ExpressIDsWithType(fp))
	require.Equal(t, 3, l.NumLines())
}

func TestDuplicateExpressIDOverwrites(t *testing.T) {
	l := mustLoad(t, "#1=IFCWALL();\n#1=IFCSLAB();\n")
	require.Equal(t, 2, l.NumLines())

	wallFP, slabFP := Crc32([]byte("IFCWALL")), Crc32([]byte("IFCSLAB"))
	require.Equal(t, []uint32{0}, l.LineIDsWithType(wallFP))
	require.Equal(t, []uint32{1}, l.LineIDsWithType(slabFP))

	require.Equal(t, uint32(1), l.ExpressIDToLineID(1))
}

func TestEscapeSequenceBytesKeptVerbatim(t *testing.T) {
	l := mustLoad(t, `#1=IFCTEXT('Type G5 - 800kg/m\X2\00B2\X0\');`+"\n")
	lineID := l.ExpressIDToLineID(1)
	l.MoveToArgument(lineID, 0)
	require.Equal(t, `Type G5 - 800kg/m\X2\00B2\X0\`, l.GetStringArgument())
}

func TestAbsentExpressIDReturnsSentinel(t *testing.T) {
	l := mustLoad(t, "#1=IFCWALL();\n")
	require.Equal(t, uint32(0), l.ExpressIDToLineID(999))
}

func TestCopyTapeForExpressLineRoundTrips(t *testing.T) {
	src := "#1=IFCWALL();\n#2=IFCSLAB();\n"
	l := mustLoad(t, src)

	other := NewLoader()
	require.NoError(t, other.LoadFile([]byte("#1=IFCWALL();\n")))

	got := l.CopyTapeForExpressLine(1)
	want := other.tp.Copy(0, other.tp.WriteOffset())
	require.Equal(t, want, got)
}

func TestGetRefsAndGetAllRefs(t *testing.T) {
	src := "#1=IFCWALL(#2,#3);\n#2=IFCMATERIAL();\n#3=IFCWALLTYPE(#2);\n"
	l := mustLoad(t, src)

	line1 := l.ExpressIDToLineID(1)
	require.ElementsMatch(t, []uint32{2, 3}, l.GetRefs(line1))

	all := l.GetAllRefs(line1)
	require.ElementsMatch(t, []uint32{2, 3}, all)
}

func TestGetRefsToleratesCycles(t *testing.T) {
	src := "#1=IFCWALL(#2);\n#2=IFCWALL(#1);\n"
	l := mustLoad(t, src)
	line1 := l.ExpressIDToLineID(1)

	all := l.GetAllRefs(line1)
	require.ElementsMatch(t, []uint32{2}, all)
}

func TestSchemaFingerprint(t *testing.T) {
	s := NewSchema([]string{"IFCWALL", "IFCSLAB"})
	require.True(t, s.IsKnownType("IFCWALL"))
	require.False(t, s.IsKnownType("IFCDOOR"))
	require.Equal(t, Crc32([]byte("IFCWALL")), s.Fingerprint("IFCWALL"))
	require.Equal(t, Crc32([]byte("IFCDOOR")), s.Fingerprint("IFCDOOR"))
}
