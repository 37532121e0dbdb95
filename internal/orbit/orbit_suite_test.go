package orbit_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestOrbit(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Orbit Suite")
}
