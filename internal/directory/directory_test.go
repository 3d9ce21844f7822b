package directory_test

import (
	"testing"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/adportal/adportal/internal/directory"
)

func TestDirectory(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Directory Suite")
}

var _ = Describe("NormalizeLogin", func() {
	It("qualifies a bare login with the domain", func() {
		Expect(directory.NormalizeLogin("jdoe", "example.local")).To(Equal("jdoe@example.local"))
	})

	It("passes an already-qualified login through", func() {
		Expect(directory.NormalizeLogin("jdoe@example.local", "example.local")).To(Equal("jdoe@example.local"))
	})

	It("lower-cases mixed-case input", func() {
		Expect(directory.NormalizeLogin("JDoe@Example.Local", "example.local")).To(Equal("jdoe@example.local"))
	})

	It("returns empty for blank input", func() {
		Expect(directory.NormalizeLogin("   ", "example.local")).To(Equal(""))
	})
})

var _ = Describe("ShortLogin", func() {
	It("strips the domain suffix", func() {
		Expect(directory.ShortLogin("jdoe@example.local")).To(Equal("jdoe"))
	})

	It("leaves bare logins alone", func() {
		Expect(directory.ShortLogin("JDoe")).To(Equal("jdoe"))
	})
})

var _ = Describe("DN helpers", func() {
	Describe("RDN", func() {
		It("extracts the leading CN component", func() {
			rdn, err := directory.RDN("CN=jane doe,OU=IT,OU=New,DC=example,DC=local")
			Expect(err).NotTo(HaveOccurred())
			Expect(rdn).To(Equal("CN=jane doe"))
		})

		It("handles escaped commas in the common name", func() {
			rdn, err := directory.RDN(`CN=doe\, jane,OU=IT,DC=example,DC=local`)
			Expect(err).NotTo(HaveOccurred())
			Expect(rdn).To(Equal(`CN=doe\, jane`))
		})

		It("rejects a DN without a CN prefix", func() {
			_, err := directory.RDN("OU=IT,DC=example,DC=local")
			Expect(err).To(MatchError(directory.ErrMalformedDN))
		})

		It("rejects an empty DN", func() {
			_, err := directory.RDN("")
			Expect(err).To(MatchError(directory.ErrMalformedDN))
		})
	})

	Describe("FirstOU", func() {
		It("returns the OU closest to the entry", func() {
			ou, ok := directory.FirstOU("CN=jane doe,OU=IT,OU=New,DC=example,DC=local")
			Expect(ok).To(BeTrue())
			Expect(ou).To(Equal("IT"))
		})

		It("reports entries outside any OU", func() {
			_, ok := directory.FirstOU("CN=Administrator,CN=Users,DC=example,DC=local")
			Expect(ok).To(BeFalse())
		})
	})

	Describe("DNAfterMove", func() {
		It("rebuilds the DN under the new OU", func() {
			dn, err := directory.DNAfterMove(
				"CN=jane doe,OU=IT,OU=New,DC=example,DC=local",
				"Sales",
				"OU=New,DC=example,DC=local",
			)
			Expect(err).NotTo(HaveOccurred())
			Expect(dn).To(Equal("CN=jane doe,OU=Sales,OU=New,DC=example,DC=local"))
		})

		It("propagates malformed DN failures", func() {
			_, err := directory.DNAfterMove("uid=jdoe,DC=example,DC=local", "Sales", "OU=New,DC=example,DC=local")
			Expect(err).To(MatchError(directory.ErrMalformedDN))
		})
	})
})

var _ = Describe("EncodePassword", func() {
	It("produces quoted UTF-16LE bytes", func() {
		// "Ab1" → "\"Ab1\"" → each rune as little-endian 16-bit code unit
		Expect(directory.EncodePassword("Ab1")).To(Equal([]byte{
			0x22, 0x00, // "
			0x41, 0x00, // A
			0x62, 0x00, // b
			0x31, 0x00, // 1
			0x22, 0x00, // "
		}))
	})

	It("encodes non-ASCII runes as UTF-16", func() {
		encoded := directory.EncodePassword("é")
		Expect(encoded).To(Equal([]byte{0x22, 0x00, 0xE9, 0x00, 0x22, 0x00}))
	})

	It("encodes an empty password as just the quotes", func() {
		Expect(directory.EncodePassword("")).To(Equal([]byte{0x22, 0x00, 0x22, 0x00}))
	})
})

var _ = Describe("Entry", func() {
	It("derives the login from sAMAccountName", func() {
		e := directory.Entry{SAMAccountName: " JDoe "}
		Expect(e.Login()).To(Equal("jdoe"))
	})

	It("reports no login when the attribute is missing", func() {
		Expect(directory.Entry{}.Login()).To(Equal(""))
	})

	It("derives the current OU from the DN", func() {
		e := directory.Entry{DN: "CN=jane doe,OU=IT,OU=New,DC=example,DC=local"}
		Expect(e.OU()).To(Equal("IT"))
	})
})
