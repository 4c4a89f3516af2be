package framing

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseMechanism(t *testing.T) {
	for _, tc := range []struct {
		in      string
		want    Mechanism
		wantErr bool
	}{
		{in: "eom", want: EOM},
		{in: "1.0", want: EOM},
		{in: "base:1.0", want: EOM},
		{in: CapabilityBase10, want: EOM},
		{in: "chunk", want: Chunk},
		{in: " Chunked ", want: Chunk},
		{in: "1.1", want: Chunk},
		{in: "base:1.1", want: Chunk},
		{in: CapabilityBase11, want: Chunk},
		{in: "", wantErr: true},
		{in: "2.0", wantErr: true},
	} {
		t.Run(tc.in, func(t *testing.T) {
			ck := assert.New(t)
			got, err := ParseMechanism(tc.in)
			if tc.wantErr {
				ck.Error(err)
				return
			}
			ck.NoError(err)
			ck.Equal(tc.want, got)
		})
	}
}

func TestMechanismText(t *testing.T) {
	ck := assert.New(t)
	b, err := Chunk.MarshalText()
	ck.NoError(err)
	ck.Equal("chunk", string(b))
	var m Mechanism
	ck.NoError(m.UnmarshalText([]byte("eom")))
	ck.Equal(EOM, m)
	ck.NoError(m.UnmarshalText(b))
	ck.Equal(Chunk, m)
	ck.Error(m.UnmarshalText([]byte("bogus")))
	_, err = Mechanism(7).MarshalText()
	ck.Error(err)
	ck.Equal("Mechanism(7)", Mechanism(7).String())
}

func TestMechanismFor(t *testing.T) {
	for _, tc := range []struct {
		name          string
		local, remote []string
		want          Mechanism
		wantErr       bool
	}{
		{
			name:   "both 1.1",
			local:  []string{CapabilityBase10, CapabilityBase11},
			remote: []string{CapabilityBase11},
			want:   Chunk,
		},
		{
			name:   "remote 1.0 only",
			local:  []string{CapabilityBase10, CapabilityBase11},
			remote: []string{CapabilityBase10},
			want:   EOM,
		},
		{
			name:   "capability parameters",
			local:  []string{CapabilityBase11 + "?module=foo"},
			remote: []string{CapabilityBase11},
			want:   Chunk,
		},
		{
			name:    "no common base",
			local:   []string{CapabilityBase10},
			remote:  []string{CapabilityBase11},
			wantErr: true,
		},
		{name: "no capabilities", wantErr: true},
	} {
		t.Run(tc.name, func(t *testing.T) {
			ck := assert.New(t)
			got, err := MechanismFor(tc.local, tc.remote)
			if tc.wantErr {
				ck.Error(err)
				return
			}
			ck.NoError(err)
			ck.Equal(tc.want, got)
		})
	}
}
