package orientation

import (
	"encoding/json"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/require"
)

func TestStateJSON(t *testing.T) {
	s := State{Device: Tablet, Interface: InterfaceLandscapeRight, Coarse: CoarseLandscape, Detail: DetailLandscapeLeft}

	b, err := json.Marshal(s)
	require.NoError(t, err)
	require.JSONEq(t, `{"device":"tablet","interface":"landscapeRight","orientation":"landscape","orientation_detail":"landscapeLeft"}`, string(b))

	var back State
	require.NoError(t, json.Unmarshal(b, &back))
	if diff := cmp.Diff(s, back); diff != "" {
		t.Errorf("state mismatch (-want +got):\n%s", diff)
	}
}

func TestUnknownNamesDecodeToUnknown(t *testing.T) {
	var s State
	require.NoError(t, json.Unmarshal([]byte(`{"device":"phone","interface":"sideways","orientation":"tilted","orientation_detail":"edge"}`), &s))
	require.Equal(t, InterfaceUnknown, s.Interface)
	require.Equal(t, CoarseUnknown, s.Coarse)
	require.Equal(t, DetailUnknown, s.Detail)

	require.Error(t, json.Unmarshal([]byte(`{"device":"watch"}`), &s))
}

func TestParseRaw(t *testing.T) {
	require.Equal(t, RawDeviceFaceDown, ParseRawDevice("faceDown"))
	require.Equal(t, RawDeviceUnknown, ParseRawDevice("spinning"))
	require.Equal(t, RawInterfaceLandscapeLeft, ParseRawInterface("landscapeLeft"))
	require.Equal(t, RawInterfaceUnknown, ParseRawInterface(""))
}

func TestNotApplicableState(t *testing.T) {
	s := NotApplicableState(Desktop)
	require.Equal(t, "desktop", s.Device.String())
	require.Equal(t, "notApplicable", s.Interface.String())
	require.Equal(t, "notApplicable", s.Coarse.String())
	require.Equal(t, "notApplicable", s.Detail.String())
}
