package hero

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestHero(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Hero Suite")
}
