package component

import (
	"fmt"
	"strings"
)

type BodyKind uint8

const (
	KindOther BodyKind = iota
	KindStar
	KindPlanet
	KindSatellite
	KindAsteroid
	KindComet
	KindArtificial
	KindBarycenter
)

var kindNames = [...]string{
	KindOther:      "other",
	KindStar:       "star",
	KindPlanet:     "planet",
	KindSatellite:  "satellite",
	KindAsteroid:   "asteroid",
	KindComet:      "comet",
	KindArtificial: "artificial",
	KindBarycenter: "barycenter",
}

func (k BodyKind) String() string {
	if int(k) < len(kindNames) {
		return kindNames[k]
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

func ParseBodyKind(s string) (BodyKind, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return KindOther, nil
	}
	for i, name := range kindNames {
		if name == s {
			return BodyKind(i), nil
		}
	}
	return KindOther, fmt.Errorf("component: unknown body kind %q", s)
}

func (k BodyKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

func (k *BodyKind) UnmarshalText(b []byte) error {
	v, err := ParseBodyKind(string(b))
	if err != nil {
		return err
	}
	*k = v
	return nil
}
