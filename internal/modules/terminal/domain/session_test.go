package domain

import (
	"errors"
	"testing"
)

func TestDestinationFromRedirect(t *testing.T) {
	cases := []struct {
		redirect string
		want     string
		ok       bool
	}{
		{redirect: "/kds/cocina", want: "cocina", ok: true},
		{redirect: "http://pos.local/kds/Barra/", want: "barra", ok: true},
		{redirect: "/kds/cocina?x=1", want: "cocina", ok: true},
		{redirect: "/caja", ok: false},
		{redirect: "/kds/", ok: false},
		{redirect: "/kds/a/b", ok: false},
	}
	for _, tc := range cases {
		got, err := DestinationFromRedirect(tc.redirect)
		if tc.ok {
			if err != nil || got.String() != tc.want {
				t.Fatalf("%q: expected %q, got %q (%v)", tc.redirect, tc.want, got, err)
			}
			continue
		}
		if !errors.Is(err, ErrProtocol) {
			t.Fatalf("%q: expected ErrProtocol, got %v", tc.redirect, err)
		}
	}
}
