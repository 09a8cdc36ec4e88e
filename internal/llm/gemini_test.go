package llm

import (
	"context"
	"sync"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
)

var _ = Describe("Gemini", func() {
	Describe("NewGemini", func() {
		When("no API key is given", func() {
			It("should return an error", func() {
				_, err := NewGemini("", "gemini-2.5-flash")
				Expect(err).To(HaveOccurred())
			})
		})
	})

	Describe("Complete", func() {
		When("callers complete concurrently with different system prompts", func() {
			It("should not share system instruction state between calls", func() {
				gemini, err := NewGemini("test-key", "")
				Expect(err).NotTo(HaveOccurred())
				defer gemini.Close()

				// No real API behind the client here; the calls fail at
				// the transport and that is fine. The completer is shared
				// by several collaborators, so concurrent calls must not
				// trample each other's system instruction.
				ctx, cancel := context.WithTimeout(context.Background(), time.Second)
				defer cancel()

				systems := []string{
					"You return clean food names.",
					"You return JSON objects.",
				}

				var wg sync.WaitGroup
				for i := 0; i < 8; i++ {
					wg.Add(1)
					go func(system string) {
						defer wg.Done()
						gemini.Complete(ctx, system, "Bananas")
					}(systems[i%2])
				}
				wg.Wait()
			})
		})
	})
})
