package credcache

import (
	"testing"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

func TestCredCache(t *testing.T) {
	RegisterFailHandler(Fail)
	RunSpecs(t, "Credential Cache Suite")
}

var _ = Describe("Cache", func() {
	var (
		cache *Cache
		clock time.Time
	)

	BeforeEach(func() {
		cache = New(5 * time.Minute)
		clock = time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
		cache.now = func() time.Time { return clock }
	})

	It("returns stored credentials before expiry", func() {
		cache.Store(7, Credentials{Login: "jdoe@example.local", Password: "secret"})

		clock = clock.Add(4 * time.Minute)
		creds, ok := cache.Get(7)
		Expect(ok).To(BeTrue())
		Expect(creds.Login).To(Equal("jdoe@example.local"))
		Expect(creds.Password).To(Equal("secret"))
	})

	It("misses once the TTL has elapsed", func() {
		cache.Store(7, Credentials{Login: "jdoe@example.local", Password: "secret"})

		clock = clock.Add(5 * time.Minute)
		_, ok := cache.Get(7)
		Expect(ok).To(BeFalse())
	})

	It("removes an expired entry on read", func() {
		cache.Store(7, Credentials{Login: "jdoe@example.local", Password: "secret"})

		clock = clock.Add(6 * time.Minute)
		cache.Get(7)

		cache.mu.Lock()
		defer cache.mu.Unlock()
		Expect(cache.entries).NotTo(HaveKey(int64(7)))
	})

	It("misses for unknown users", func() {
		_, ok := cache.Get(42)
		Expect(ok).To(BeFalse())
	})

	It("resets the window on re-store", func() {
		cache.Store(7, Credentials{Login: "jdoe@example.local", Password: "secret"})
		clock = clock.Add(4 * time.Minute)
		cache.Store(7, Credentials{Login: "jdoe@example.local", Password: "secret"})

		clock = clock.Add(4 * time.Minute)
		_, ok := cache.Get(7)
		Expect(ok).To(BeTrue())
	})

	It("forgets entries on delete", func() {
		cache.Store(7, Credentials{Login: "jdoe@example.local", Password: "secret"})
		cache.Delete(7)

		_, ok := cache.Get(7)
		Expect(ok).To(BeFalse())
	})
})
